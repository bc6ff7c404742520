package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/teemow/gdrivehelper/internal/tokenstore"
	"github.com/teemow/gdrivehelper/pkg/docs"
	"github.com/teemow/gdrivehelper/pkg/drive"
	"github.com/teemow/gdrivehelper/pkg/google"
	"github.com/teemow/gdrivehelper/pkg/sheets"
)

// session holds the token store and credentials of one CLI invocation.
// Tokens refreshed while the session is open are saved back to the store.
type session struct {
	store tokenstore.Store
	cfg   *google.ClientConfig
	creds *google.Credentials
}

// openStore opens the token store selected by the global flags.
func (g *globalOptions) openStore(ctx context.Context) (tokenstore.Store, error) {
	store, err := tokenstore.Open(ctx, tokenstore.Config{
		Backend:     g.tokenStore,
		Path:        g.tokenPath,
		DatabaseURL: g.databaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open token store: %w", err)
	}
	return tokenstore.WithDefaultScopes(store, g.scopeList()), nil
}

func (g *globalOptions) clientOptions() []google.ClientOption {
	return []google.ClientOption{google.WithLogger(g.logger)}
}

func openSession(ctx context.Context) (*session, error) {
	store, err := globals.openStore(ctx)
	if err != nil {
		return nil, err
	}

	cfg := google.NewClientConfig(globals.clientOptions()...)
	creds, err := tokenstore.LoadCredentials(ctx, store, globals.account, cfg)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to load credentials for account %s: %w", globals.account, err)
	}

	return &session{store: store, cfg: cfg, creds: creds}, nil
}

func (s *session) Close() error {
	return s.store.Close()
}

func (s *session) drive(ctx context.Context) (*drive.Client, error) {
	return drive.NewClientWithConfig(ctx, s.creds, s.cfg)
}

func (s *session) docs(ctx context.Context) (*docs.Client, error) {
	return docs.NewClientWithConfig(ctx, s.creds, s.cfg)
}

func (s *session) sheets(ctx context.Context) (*sheets.Client, error) {
	return sheets.NewClientWithConfig(ctx, s.creds, s.cfg)
}

// withSession opens a session, runs fn and closes the session again.
func withSession(ctx context.Context, fn func(s *session) error) error {
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
