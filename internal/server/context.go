package server

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/teemow/gdrivehelper/internal/instrumentation"
	"github.com/teemow/gdrivehelper/internal/logging"
	"github.com/teemow/gdrivehelper/internal/tokenstore"
	"github.com/teemow/gdrivehelper/pkg/docs"
	"github.com/teemow/gdrivehelper/pkg/drive"
	"github.com/teemow/gdrivehelper/pkg/google"
	"github.com/teemow/gdrivehelper/pkg/sheets"
)

// accountClients are the API clients of one account. They are built from
// one credential and share its token source, so an expired token is
// refreshed once for all three.
type accountClients struct {
	drive  *drive.Client
	docs   *docs.Client
	sheets *sheets.Client
}

// ServerContext holds the context for the MCP server
type ServerContext struct {
	ctx      context.Context
	cancel   context.CancelFunc
	store    tokenstore.Store
	cfg      *google.ClientConfig
	clients  map[string]*accountClients // Maps account name to its clients
	audit    *instrumentation.AuditLogger
	loads    singleflight.Group // one credential load per account at a time
	mu       sync.RWMutex
	shutdown bool
}

// NewServerContext creates a new server context. Clients are created
// lazily from the tokens in store the first time an account is used.
func NewServerContext(ctx context.Context, store tokenstore.Store, opts ...google.ClientOption) (*ServerContext, error) {
	if store == nil {
		return nil, fmt.Errorf("token store is required")
	}

	shutdownCtx, cancel := context.WithCancel(ctx)

	return &ServerContext{
		ctx:     shutdownCtx,
		cancel:  cancel,
		store:   store,
		cfg:     google.NewClientConfig(opts...),
		clients: make(map[string]*accountClients),
	}, nil
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Metrics returns the metrics recorder shared by all clients. It may be nil.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	return sc.cfg.Metrics
}

// Store returns the token store the clients are created from.
func (sc *ServerContext) Store() tokenstore.Store {
	return sc.store
}

func (sc *ServerContext) Logger() *slog.Logger {
	return sc.cfg.Logger
}

// SetAuditLogger enables audit logging of tool invocations.
func (sc *ServerContext) SetAuditLogger(al *instrumentation.AuditLogger) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.audit = al
}

// AuditLogger returns the audit logger, or nil when audit logging is disabled.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.audit
}

// DriveClient returns the Drive client for account, creating it on first use.
func (sc *ServerContext) DriveClient(account string) (*drive.Client, error) {
	c, err := sc.clientsForAccount(account)
	if err != nil {
		return nil, err
	}
	return c.drive, nil
}

// DocsClient returns the Docs client for account, creating it on first use.
func (sc *ServerContext) DocsClient(account string) (*docs.Client, error) {
	c, err := sc.clientsForAccount(account)
	if err != nil {
		return nil, err
	}
	return c.docs, nil
}

// SheetsClient returns the Sheets client for account, creating it on first use.
func (sc *ServerContext) SheetsClient(account string) (*sheets.Client, error) {
	c, err := sc.clientsForAccount(account)
	if err != nil {
		return nil, err
	}
	return c.sheets, nil
}

// SetClients sets the clients of an account, replacing any cached ones.
func (sc *ServerContext) SetClients(account string, driveClient *drive.Client, docsClient *docs.Client, sheetsClient *sheets.Client) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.clients[account] = &accountClients{drive: driveClient, docs: docsClient, sheets: sheetsClient}
}

// Accounts returns the number of accounts with cached clients.
func (sc *ServerContext) Accounts() int {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return len(sc.clients)
}

func (sc *ServerContext) clientsForAccount(account string) (*accountClients, error) {
	if account == "" {
		account = tokenstore.DefaultAccount
	}

	if c, err := sc.cachedClients(account); c != nil || err != nil {
		return c, err
	}

	// Loading may hit the token store and the token endpoint, so it runs
	// without sc.mu held.
	v, err, _ := sc.loads.Do(account, func() (any, error) {
		if c, err := sc.cachedClients(account); c != nil || err != nil {
			return c, err
		}

		c, err := sc.newAccountClients(account)
		if err != nil {
			return nil, err
		}

		sc.mu.Lock()
		defer sc.mu.Unlock()
		if sc.shutdown {
			return nil, fmt.Errorf("server is shutting down")
		}
		if existing, ok := sc.clients[account]; ok {
			return existing, nil
		}
		sc.clients[account] = c
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*accountClients), nil
}

func (sc *ServerContext) cachedClients(account string) (*accountClients, error) {
	sc.mu.RLock()
	defer sc.mu.RUnlock()

	if sc.shutdown {
		return nil, fmt.Errorf("server is shutting down")
	}
	return sc.clients[account], nil
}

func (sc *ServerContext) newAccountClients(account string) (*accountClients, error) {
	// Token sources outlive the request that created them, so they are
	// bound to the server context.
	creds, err := tokenstore.LoadCredentials(sc.ctx, sc.store, account, sc.cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load credentials for account %s: %w", account, err)
	}

	driveClient, err := drive.NewClientWithConfig(sc.ctx, creds, sc.cfg)
	if err != nil {
		return nil, err
	}
	docsClient, err := docs.NewClientWithConfig(sc.ctx, creds, sc.cfg)
	if err != nil {
		return nil, err
	}
	sheetsClient, err := sheets.NewClientWithConfig(sc.ctx, creds, sc.cfg)
	if err != nil {
		return nil, err
	}

	sc.cfg.Logger.Debug("created Google API clients", logging.Account(account))
	return &accountClients{drive: driveClient, docs: docsClient, sheets: sheetsClient}, nil
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
