package repo

import (
	"errors"

	"HealthMate/internal/cli/auth"
)

// ErrNoCredential is returned when no usable credential is persisted.
var ErrNoCredential = errors.New("no stored credential")

// CredentialStore describes a client-side place where the auth token is persisted.
type CredentialStore interface {
	Save(cred auth.Credential) error
	// Load returns ErrNoCredential when nothing usable is stored.
	Load() (auth.Credential, error)
	// Clear removes the stored credential. Clearing an empty store is not an error.
	Clear() error
}
