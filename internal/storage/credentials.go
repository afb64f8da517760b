package storage

import (
	"context"
	"database/sql"
	"fmt"

	"outlay/internal/core"
)

const credentialColumns = `id, first_name, last_name, email, password_hash, date_of_birth`

func scanCredential(row rowScanner) (*core.Credential, error) {
	var (
		c   core.Credential
		dob sql.NullString
	)
	err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.PasswordHash, &dob)
	if err != nil {
		return nil, err
	}
	if dob.Valid && dob.String != "" {
		date, err := core.ParseDate(dob.String)
		if err != nil {
			return nil, fmt.Errorf("parse stored date of birth %q: %w", dob.String, err)
		}
		c.DateOfBirth = date
	}
	return &c, nil
}

func dobValue(d core.Date) any {
	if d.IsZero() {
		return nil
	}
	return d.String()
}

// CreateCredential persists a credential whose password is already hashed.
// The unique email constraint surfaces as core.ErrDuplicateEmail.
func (r *Repository) CreateCredential(ctx context.Context, cred core.Credential) (*core.Credential, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO credentials (first_name, last_name, email, password_hash, date_of_birth)
		VALUES (?, ?, ?, ?, ?)`,
		cred.FirstName, cred.LastName, cred.Email, cred.PasswordHash, dobValue(cred.DateOfBirth),
	)
	if err != nil {
		if isUniqueViolation(err, "credentials.email") {
			return nil, core.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("insert credential: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("credential insert id: %w", err)
	}
	cred.ID = id
	return &cred, nil
}

// GetCredentialByEmail returns (nil, nil) when no credential matches, so
// the authentication path keeps a constant shape for unknown emails.
func (r *Repository) GetCredentialByEmail(ctx context.Context, email string) (*core.Credential, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+credentialColumns+` FROM credentials WHERE email = ?`, email)

	cred, err := scanCredential(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get credential by email: %w", err)
	}
	return cred, nil
}

func (r *Repository) GetCredentialByID(ctx context.Context, id int64) (*core.Credential, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+credentialColumns+` FROM credentials WHERE id = ?`, id)

	cred, err := scanCredential(row)
	if err == sql.ErrNoRows {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get credential: %w", err)
	}
	return cred, nil
}

func (r *Repository) ListCredentials(ctx context.Context) ([]core.Credential, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+credentialColumns+` FROM credentials ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	defer rows.Close()

	creds := make([]core.Credential, 0)
	for rows.Next() {
		c, err := scanCredential(rows)
		if err != nil {
			return nil, fmt.Errorf("scan credential: %w", err)
		}
		creds = append(creds, *c)
	}
	return creds, rows.Err()
}

// UpdateCredential replaces the profile fields and password hash of an
// existing credential. Deciding whether to re-hash is the service's job;
// this method writes whatever hash it is handed.
func (r *Repository) UpdateCredential(ctx context.Context, id int64, cred core.Credential) (*core.Credential, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE credentials
		SET first_name = ?, last_name = ?, email = ?, password_hash = ?, date_of_birth = ?
		WHERE id = ?`,
		cred.FirstName, cred.LastName, cred.Email, cred.PasswordHash, dobValue(cred.DateOfBirth), id,
	)
	if err != nil {
		if isUniqueViolation(err, "credentials.email") {
			return nil, core.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("update credential: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update credential rows: %w", err)
	}
	if affected == 0 {
		return nil, core.ErrNotFound
	}

	cred.ID = id
	return &cred, nil
}

func (r *Repository) DeleteCredential(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM credentials WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete credential rows: %w", err)
	}
	if affected == 0 {
		return core.ErrNotFound
	}
	return nil
}
