package tokenstore

import (
	"context"
	"log/slog"
	"time"

	"github.com/teemow/gdrivehelper/internal/logging"
	"github.com/teemow/gdrivehelper/pkg/google"
)

// saveTimeout bounds a save triggered by a token refresh.
const saveTimeout = 10 * time.Second

// LoadCredentials builds credentials from the latest token stored for
// account. Tokens refreshed while building, or later while a client uses
// the credentials, are saved back to s.
func LoadCredentials(ctx context.Context, s Store, account string, cfg *google.ClientConfig) (*google.Credentials, error) {
	stored, err := s.Latest(ctx, account)
	if err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logging.WithAccount(logger, account)
	hook := func(refreshed *google.Credentials) {
		saveCtx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()

		if err := s.Save(saveCtx, account, refreshed); err != nil {
			logger.Warn("failed to save refreshed token", logging.Err(err))
			return
		}
		logger.Debug("saved refreshed token")
	}

	return cfg.Credentials(ctx, stored, google.WithRefreshHook(hook))
}
