package storage

import (
	"context"
	"database/sql"
	"fmt"

	"outlay/internal/core"
)

func (r *Repository) CreateUser(ctx context.Context, user core.User) (*core.User, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (first_name, last_name, email) VALUES (?, ?, ?)`,
		user.FirstName, user.LastName, user.Email,
	)
	if err != nil {
		if isUniqueViolation(err, "users.email") {
			return nil, core.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("user insert id: %w", err)
	}
	user.ID = id
	return &user, nil
}

func (r *Repository) GetUserByID(ctx context.Context, id int64) (*core.User, error) {
	var u core.User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, first_name, last_name, email FROM users WHERE id = ?`, id,
	).Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email)
	if err == sql.ErrNoRows {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

func (r *Repository) ListUsers(ctx context.Context) ([]core.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, first_name, last_name, email FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]core.User, 0)
	for rows.Next() {
		var u core.User
		if err := rows.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *Repository) UpdateUser(ctx context.Context, id int64, user core.User) (*core.User, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET first_name = ?, last_name = ?, email = ? WHERE id = ?`,
		user.FirstName, user.LastName, user.Email, id,
	)
	if err != nil {
		if isUniqueViolation(err, "users.email") {
			return nil, core.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update user rows: %w", err)
	}
	if affected == 0 {
		return nil, core.ErrNotFound
	}

	user.ID = id
	return &user, nil
}

func (r *Repository) DeleteUser(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user rows: %w", err)
	}
	if affected == 0 {
		return core.ErrNotFound
	}
	return nil
}
