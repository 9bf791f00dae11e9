package fs

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"HealthMate/internal/cli/auth"
	"HealthMate/internal/cli/repo"
)

// CookieStore — файловое хранилище токена с истечением срока, аналог cookie "token".
type CookieStore struct {
	Path string
	Now  func() time.Time
}

var _ repo.CredentialStore = (*CookieStore)(nil)

// NewCookieStore создаёт хранилище, пишущее в указанный файл.
func NewCookieStore(path string) *CookieStore {
	return &CookieStore{Path: path, Now: time.Now}
}

func (s *CookieStore) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// Save сохраняет токен вместе со сроком действия.
func (s *CookieStore) Save(cred auth.Credential) error {
	if cred.Token == "" {
		return errors.New("empty token")
	}
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o700); err != nil {
		return err
	}
	b, err := json.Marshal(cred)
	if err != nil {
		return err
	}
	return os.WriteFile(s.Path, b, 0o600)
}

// Load читает токен. Отсутствующий, пустой или просроченный файл — ErrNoCredential;
// просроченный файл при этом удаляется.
func (s *CookieStore) Load() (auth.Credential, error) {
	b, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return auth.Credential{}, repo.ErrNoCredential
	}
	if err != nil {
		return auth.Credential{}, err
	}
	if len(b) == 0 {
		return auth.Credential{}, repo.ErrNoCredential
	}
	var cred auth.Credential
	if err := json.Unmarshal(b, &cred); err != nil {
		return auth.Credential{}, fmt.Errorf("decode token file: %w", err)
	}
	if !cred.Valid(s.now()) {
		_ = s.Clear()
		return auth.Credential{}, repo.ErrNoCredential
	}
	return cred, nil
}

// Clear удаляет файл токена; отсутствие файла ошибкой не считается.
func (s *CookieStore) Clear() error {
	err := os.Remove(s.Path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
