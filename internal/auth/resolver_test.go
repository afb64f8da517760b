package auth

import (
	"context"
	"errors"
	"testing"

	"outlay/internal/core"
)

type fakeCredentialReader struct {
	creds map[string]*core.Credential
	err   error
}

func (f *fakeCredentialReader) GetCredentialByEmail(_ context.Context, email string) (*core.Credential, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.creds[email], nil
}

func TestResolver_Resolve(t *testing.T) {
	reader := &fakeCredentialReader{creds: map[string]*core.Credential{
		"alice@example.com": {ID: 7, Email: "alice@example.com"},
	}}
	r := NewResolver(reader)

	id, err := r.Resolve(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if id != 7 {
		t.Errorf("id = %d, want 7", id)
	}
}

func TestResolver_UnknownSubject(t *testing.T) {
	r := NewResolver(&fakeCredentialReader{creds: map[string]*core.Credential{}})

	_, err := r.Resolve(context.Background(), "ghost@example.com")
	if !errors.Is(err, core.ErrUnknownSubject) {
		t.Errorf("got %v, want ErrUnknownSubject", err)
	}
}

func TestResolver_StorageError(t *testing.T) {
	storageErr := errors.New("database gone")
	r := NewResolver(&fakeCredentialReader{err: storageErr})

	_, err := r.Resolve(context.Background(), "alice@example.com")
	if !errors.Is(err, storageErr) {
		t.Errorf("storage errors must propagate, got %v", err)
	}
	if errors.Is(err, core.ErrUnknownSubject) {
		t.Error("storage failure must not masquerade as unknown subject")
	}
}
