package tokenstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"github.com/teemow/gdrivehelper/pkg/google"
)

// FileStore keeps the credentials of each account in a JSON file.
type FileStore struct {
	path string
}

// NewFileStore returns a FileStore. When path is empty each account uses
// its own file in the user cache directory; otherwise every account shares
// path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the token file used for account.
func (s *FileStore) Path(account string) string {
	if s.path != "" {
		return s.path
	}
	return DefaultPath(account)
}

// DefaultPath returns the per-account token file in the user cache directory.
func DefaultPath(account string) string {
	return filepath.Join(userCacheDir(), "gdrivehelper", fmt.Sprintf("token-%s.json", account))
}

func (s *FileStore) Latest(_ context.Context, account string) (*google.Credentials, error) {
	if err := ValidateAccountName(account); err != nil {
		return nil, err
	}

	path := s.Path(account)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w for account %s at %s", ErrNoToken, account, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	// Files written by other OAuth tools use "scope" and naive expiries.
	creds, err := google.ParseCredentials(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token file %s: %w", path, err)
	}
	return creds, nil
}

// Save writes creds to the account's token file with owner-only permissions.
func (s *FileStore) Save(_ context.Context, account string, creds *google.Credentials) error {
	if err := ValidateAccountName(account); err != nil {
		return err
	}

	path := s.Path(account)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	data, err := json.MarshalIndent(google.ExportCredentials(creds), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}

	// Written next to the target and renamed into place.
	tmp, err := os.CreateTemp(filepath.Dir(path), ".token-*")
	if err != nil {
		return fmt.Errorf("failed to create token file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set token file permissions: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write token file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to save token file: %w", err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

func userCacheDir() string {
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDir(), "Library", "Caches")
	case "windows":
		for _, ev := range []string{"TEMP", "TMP"} {
			if v := os.Getenv(ev); v != "" {
				return v
			}
		}
		return os.TempDir()
	}
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return xdg
	}
	return filepath.Join(homeDir(), ".cache")
}

func homeDir() string {
	if runtime.GOOS == "windows" {
		return os.Getenv("HOMEDRIVE") + os.Getenv("HOMEPATH")
	}
	return os.Getenv("HOME")
}
