package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/teemow/gdrivehelper/pkg/google"
)

// DefaultAccount is used when no account name is given.
const DefaultAccount = "default"

// Backend names accepted by Open.
const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
)

// ErrNoToken is returned by Latest when no credentials are stored for an account.
var ErrNoToken = errors.New("no stored token")

var accountNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Store persists credentials per account.
type Store interface {
	// Latest returns the most recently saved credentials for account.
	Latest(ctx context.Context, account string) (*google.Credentials, error)

	// Save stores creds as the newest credentials for account.
	Save(ctx context.Context, account string, creds *google.Credentials) error

	Close() error
}

// Ping checks that the backing storage of s is reachable. Stores without a
// remote backend are always reachable.
func Ping(ctx context.Context, s Store) error {
	if p, ok := s.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Config selects and configures a Store backend.
type Config struct {
	// Backend is "file" (default) or "postgres"
	Backend string

	// Path overrides the per-account token file of the file backend
	Path string

	// DatabaseURL is the PostgreSQL connection string of the postgres backend
	DatabaseURL string
}

// Open returns the Store described by cfg.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Backend {
	case "", BackendFile:
		return NewFileStore(cfg.Path), nil
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("database URL is required for the postgres token store")
		}
		return OpenPostgres(ctx, cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unknown token store backend %q (valid: %s, %s)", cfg.Backend, BackendFile, BackendPostgres)
	}
}

// ValidateAccountName checks that account only contains letters, digits,
// hyphens and underscores, so it is safe to use in file names.
func ValidateAccountName(account string) error {
	if account == "" {
		return fmt.Errorf("account name cannot be empty")
	}
	if !accountNamePattern.MatchString(account) {
		return fmt.Errorf("invalid account name %q: must contain only alphanumeric characters, hyphens, and underscores", account)
	}
	return nil
}

// WithDefaultScopes returns a Store whose Latest fills in scopes for
// credentials that were stored without any.
func WithDefaultScopes(s Store, scopes []string) Store {
	if len(scopes) == 0 {
		return s
	}
	return &defaultScopesStore{Store: s, scopes: scopes}
}

type defaultScopesStore struct {
	Store
	scopes []string
}

func (s *defaultScopesStore) Latest(ctx context.Context, account string) (*google.Credentials, error) {
	creds, err := s.Store.Latest(ctx, account)
	if err != nil {
		return nil, err
	}
	if len(creds.Scopes) == 0 {
		creds.Scopes = append([]string(nil), s.scopes...)
	}
	return creds, nil
}

func (s *defaultScopesStore) Ping(ctx context.Context) error {
	return Ping(ctx, s.Store)
}
