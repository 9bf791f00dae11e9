package repo

import (
	"errors"

	"HealthMate/internal/cli/auth"
)

// Chain reads from the first store that holds a credential and writes to all of them.
// The first store is the primary (cookie), the rest are fallbacks (local storage).
type Chain []CredentialStore

var _ CredentialStore = Chain(nil)

// Save writes cred to every store; all stores are attempted.
func (c Chain) Save(cred auth.Credential) error {
	var errs []error
	for _, s := range c {
		if err := s.Save(cred); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Load returns the first usable credential in store order.
func (c Chain) Load() (auth.Credential, error) {
	var errs []error
	for _, s := range c {
		cred, err := s.Load()
		if err == nil {
			return cred, nil
		}
		if !errors.Is(err, ErrNoCredential) {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return auth.Credential{}, errors.Join(append([]error{ErrNoCredential}, errs...)...)
	}
	return auth.Credential{}, ErrNoCredential
}

// Clear removes the credential from every store.
func (c Chain) Clear() error {
	var errs []error
	for _, s := range c {
		if err := s.Clear(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Token returns the current bearer token or "" when none is stored.
func (c Chain) Token() string {
	cred, err := c.Load()
	if err != nil {
		return ""
	}
	return cred.Token
}

// Mirrored reads only the primary store; Save and Clear also reach the mirrors.
// Session bootstrap uses it so an expired cookie is not revived from local storage.
type Mirrored struct {
	Primary CredentialStore
	Mirrors Chain
}

var _ CredentialStore = Mirrored{}

func (m Mirrored) all() Chain {
	return append(Chain{m.Primary}, m.Mirrors...)
}

// Save writes cred to the primary and every mirror.
func (m Mirrored) Save(cred auth.Credential) error { return m.all().Save(cred) }

// Load consults the primary store only.
func (m Mirrored) Load() (auth.Credential, error) {
	if m.Primary == nil {
		return auth.Credential{}, ErrNoCredential
	}
	return m.Primary.Load()
}

// Clear removes the credential from the primary and every mirror.
func (m Mirrored) Clear() error { return m.all().Clear() }
