package google

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/teemow/gdrivehelper/internal/instrumentation"
)

// expiryDelta matches the early-expiry window used by golang.org/x/oauth2.
const expiryDelta = 10 * time.Second

// Expired reports whether the access token is at or past its expiry.
// Credentials without an expiry never expire.
func (c *Credentials) Expired() bool {
	if c.Expiry == nil || c.Expiry.IsZero() {
		return false
	}
	return !time.Now().Before(c.Expiry.Add(-expiryDelta))
}

// Token returns the credential as an oauth2 token.
func (c *Credentials) Token() *oauth2.Token {
	tok := &oauth2.Token{
		AccessToken:  c.AccessToken,
		TokenType:    "Bearer",
		RefreshToken: c.RefreshToken,
	}
	if c.Expiry != nil {
		tok.Expiry = *c.Expiry
	}
	return tok
}

// OAuthConfig returns the oauth2 client configuration that refreshes this
// credential at its token URI.
func (c *Credentials) OAuthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:   google.Endpoint.AuthURL,
			TokenURL:  c.TokenURI,
			AuthStyle: oauth2.AuthStyleInParams,
		},
		Scopes: c.Scopes,
	}
}

// Refresh exchanges the refresh token for a new access token and updates
// the credential in place. The refresh hook, if any, receives a copy.
func (c *Credentials) Refresh(ctx context.Context) error {
	if c.RefreshToken == "" {
		return fmt.Errorf("%w: refresh_token is required to refresh", ErrInvalidCredentials)
	}

	tok, err := c.OAuthConfig().TokenSource(ctx, &oauth2.Token{RefreshToken: c.RefreshToken}).Token()
	if err != nil {
		c.metrics.RecordTokenRefresh(ctx, instrumentation.RefreshResultFailure)
		return fmt.Errorf("failed to refresh access token: %w", err)
	}
	c.metrics.RecordTokenRefresh(ctx, instrumentation.RefreshResultSuccess)

	c.applyToken(tok)
	c.source.reset()
	if c.onRefresh != nil {
		exported := ExportCredentials(c)
		c.onRefresh(&exported)
	}
	return nil
}

func (c *Credentials) applyToken(tok *oauth2.Token) {
	c.AccessToken = tok.AccessToken
	if tok.RefreshToken != "" {
		c.RefreshToken = tok.RefreshToken
	}
	if tok.Expiry.IsZero() {
		c.Expiry = nil
	} else {
		e := tok.Expiry
		c.Expiry = &e
	}
}

// TokenSource returns an auto-refreshing token source. Tokens refreshed by
// the source are reported to the refresh hook but do not modify c.
//
// Credentials from BuildCredentials hand every caller the same source, so
// clients built from one credential refresh it once. The ctx of the first
// call is the one used for refreshes.
func (c *Credentials) TokenSource(ctx context.Context) oauth2.TokenSource {
	if c.source == nil {
		return c.newTokenSource(ctx)
	}
	return c.source.get(func() oauth2.TokenSource { return c.newTokenSource(ctx) })
}

func (c *Credentials) newTokenSource(ctx context.Context) *notifyingSource {
	return &notifyingSource{
		ctx:   ctx,
		base:  c.OAuthConfig().TokenSource(ctx, c.Token()),
		creds: ExportCredentials(c),
		hook:  c.onRefresh,
		m:     c.metrics,
		last:  c.AccessToken,
	}
}

// HTTPClient returns an HTTP client that authenticates requests with the
// credential. Unless ctx carries its own oauth2.HTTPClient the transport
// is pinned to HTTP/1.1.
func (c *Credentials) HTTPClient(ctx context.Context) *http.Client {
	client := oauth2.NewClient(ctx, c.TokenSource(ctx))
	if ctx.Value(oauth2.HTTPClient) != nil {
		return client
	}

	// Force HTTP/1.1 by disabling HTTP/2
	if transport, ok := client.Transport.(*oauth2.Transport); ok {
		transport.Base = &http.Transport{
			Proxy:             http.ProxyFromEnvironment,
			ForceAttemptHTTP2: false,
		}
	}
	return client
}

// sharedSource holds the token source shared by all clients of one
// credential.
type sharedSource struct {
	mu sync.Mutex
	ts oauth2.TokenSource
}

func (s *sharedSource) get(build func() oauth2.TokenSource) oauth2.TokenSource {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ts == nil {
		s.ts = build()
	}
	return s.ts
}

// reset drops the shared source after an explicit Refresh so the next
// caller starts from the new token.
func (s *sharedSource) reset() {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.ts = nil
	s.mu.Unlock()
}

type notifyingSource struct {
	ctx  context.Context
	base oauth2.TokenSource
	hook func(*Credentials)
	m    *instrumentation.Metrics

	mu    sync.Mutex
	creds Credentials
	last  string
}

func (s *notifyingSource) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tok, err := s.base.Token()
	if err != nil {
		s.m.RecordTokenRefresh(s.ctx, instrumentation.RefreshResultFailure)
		return nil, err
	}
	if tok.AccessToken == s.last {
		return tok, nil
	}

	s.last = tok.AccessToken
	s.creds.applyToken(tok)
	s.m.RecordTokenRefresh(s.ctx, instrumentation.RefreshResultSuccess)
	if s.hook != nil {
		exported := ExportCredentials(&s.creds)
		s.hook(&exported)
	}
	return tok, nil
}
