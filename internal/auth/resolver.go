package auth

import (
	"context"
	"fmt"

	"outlay/internal/core"
)

// CredentialReader is the narrow storage view the resolver needs.
type CredentialReader interface {
	GetCredentialByEmail(ctx context.Context, email string) (*core.Credential, error)
}

// Resolver maps a validated token subject to the numeric user id used for
// every ownership check. It performs a single lookup and has no side
// effects; it must only ever see subjects that already passed token
// validation.
type Resolver struct {
	creds CredentialReader
}

func NewResolver(creds CredentialReader) *Resolver {
	return &Resolver{creds: creds}
}

// Resolve returns the owner id for the subject, or core.ErrUnknownSubject
// when no credential matches.
func (r *Resolver) Resolve(ctx context.Context, subject string) (int64, error) {
	cred, err := r.creds.GetCredentialByEmail(ctx, subject)
	if err != nil {
		return 0, fmt.Errorf("lookup subject: %w", err)
	}
	if cred == nil {
		return 0, core.ErrUnknownSubject
	}
	return cred.ID, nil
}
