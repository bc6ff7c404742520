package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cast"
	"golang.org/x/oauth2"

	"github.com/teemow/gdrivehelper/internal/instrumentation"
)

// ErrInvalidCredentials is wrapped by every validation error returned from
// BuildCredentials.
var ErrInvalidCredentials = errors.New("invalid credentials")

// requiredFields are checked in this order so error messages are stable.
var requiredFields = []string{"access_token", "refresh_token", "token_uri", "client_id", "client_secret"}

// Credentials is the serializable form of an OAuth2 user credential.
type Credentials struct {
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
	TokenURI     string     `json:"token_uri"`
	ClientID     string     `json:"client_id"`
	ClientSecret string     `json:"client_secret"`
	Scopes       []string   `json:"scopes"`
	Expiry       *time.Time `json:"expiry"`

	onRefresh func(*Credentials)
	metrics   *instrumentation.Metrics
	source    *sharedSource
}

// CredentialInput is anything BuildCredentials accepts: *Credentials,
// Credentials, map[string]any, map[string]string, a JSON object as string,
// []byte or json.RawMessage.
type CredentialInput = any

type buildOptions struct {
	scopes     []string
	scopesSet  bool
	httpClient *http.Client
	onRefresh  func(*Credentials)
	metrics    *instrumentation.Metrics
}

// BuildOption customizes BuildCredentials.
type BuildOption func(*buildOptions)

// WithScopes overrides any scopes carried by the credential input.
func WithScopes(scopes ...string) BuildOption {
	return func(o *buildOptions) {
		o.scopes = scopes
		o.scopesSet = true
	}
}

// WithRefreshHook registers fn to receive a copy of the credentials every
// time the access token is refreshed, at build time or later by a client.
func WithRefreshHook(fn func(*Credentials)) BuildOption {
	return func(o *buildOptions) {
		o.onRefresh = fn
	}
}

// WithTokenHTTPClient sets the HTTP client used to talk to the token endpoint.
func WithTokenHTTPClient(client *http.Client) BuildOption {
	return func(o *buildOptions) {
		o.httpClient = client
	}
}

// WithRefreshMetrics records token refresh attempts on m.
func WithRefreshMetrics(m *instrumentation.Metrics) BuildOption {
	return func(o *buildOptions) {
		o.metrics = m
	}
}

// BuildCredentials normalizes input into validated Credentials. An expired
// access token is refreshed before returning when a refresh token exists.
func BuildCredentials(ctx context.Context, input CredentialInput, opts ...BuildOption) (*Credentials, error) {
	var o buildOptions
	for _, opt := range opts {
		opt(&o)
	}

	data, err := credentialFields(input)
	if err != nil {
		return nil, err
	}

	var missing []string
	values := make(map[string]string, len(requiredFields))
	for _, field := range requiredFields {
		v, err := stringField(data, field)
		if err != nil {
			return nil, err
		}
		if v == "" {
			missing = append(missing, field)
		}
		values[field] = v
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing credentials fields: %s", ErrInvalidCredentials, strings.Join(missing, ", "))
	}

	var scopes []string
	if o.scopesSet {
		scopes = append([]string(nil), o.scopes...)
	} else {
		scopes, err = scopesField(data)
		if err != nil {
			return nil, err
		}
	}
	if len(scopes) == 0 {
		return nil, fmt.Errorf("%w: scopes are required in credentials data or via scopes argument", ErrInvalidCredentials)
	}

	expiry, err := expiryField(data)
	if err != nil {
		return nil, err
	}

	creds := &Credentials{
		AccessToken:  values["access_token"],
		RefreshToken: values["refresh_token"],
		TokenURI:     values["token_uri"],
		ClientID:     values["client_id"],
		ClientSecret: values["client_secret"],
		Scopes:       scopes,
		Expiry:       expiry,
		onRefresh:    o.onRefresh,
		metrics:      o.metrics,
		source:       &sharedSource{},
	}

	if creds.Expired() && creds.RefreshToken != "" {
		if o.httpClient != nil {
			ctx = context.WithValue(ctx, oauth2.HTTPClient, o.httpClient)
		}
		if err := creds.Refresh(ctx); err != nil {
			return nil, err
		}
	}

	return creds, nil
}

// ParseCredentials normalizes input the same way BuildCredentials does,
// including the scope and expires_at aliases and naive UTC expiries, but
// checks no required fields and never refreshes. Token stores use it to
// read files that other tools wrote.
func ParseCredentials(input CredentialInput) (*Credentials, error) {
	data, err := credentialFields(input)
	if err != nil {
		return nil, err
	}

	values := make(map[string]string, len(requiredFields))
	for _, field := range requiredFields {
		if values[field], err = stringField(data, field); err != nil {
			return nil, err
		}
	}
	scopes, err := scopesField(data)
	if err != nil {
		return nil, err
	}
	expiry, err := expiryField(data)
	if err != nil {
		return nil, err
	}

	return &Credentials{
		AccessToken:  values["access_token"],
		RefreshToken: values["refresh_token"],
		TokenURI:     values["token_uri"],
		ClientID:     values["client_id"],
		ClientSecret: values["client_secret"],
		Scopes:       scopes,
		Expiry:       expiry,
	}, nil
}

// ExportCredentials returns a serializable copy of creds. The expiry is
// nil (JSON null) when the credential carries none.
func ExportCredentials(creds *Credentials) Credentials {
	if creds == nil {
		return Credentials{Scopes: []string{}}
	}
	out := Credentials{
		AccessToken:  creds.AccessToken,
		RefreshToken: creds.RefreshToken,
		TokenURI:     creds.TokenURI,
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Scopes:       append([]string{}, creds.Scopes...),
	}
	if creds.Expiry != nil && !creds.Expiry.IsZero() {
		e := *creds.Expiry
		out.Expiry = &e
	}
	return out
}

func credentialFields(input CredentialInput) (map[string]any, error) {
	switch v := input.(type) {
	case nil:
		return nil, fmt.Errorf("%w: credentials are required", ErrInvalidCredentials)
	case *Credentials:
		if v == nil {
			return nil, fmt.Errorf("%w: credentials are required", ErrInvalidCredentials)
		}
		return v.fields(), nil
	case Credentials:
		return v.fields(), nil
	case map[string]any:
		return v, nil
	case map[string]string:
		out := make(map[string]any, len(v))
		for k, s := range v {
			out[k] = s
		}
		return out, nil
	case string:
		return decodeJSONObject([]byte(v))
	case []byte:
		return decodeJSONObject(v)
	case json.RawMessage:
		return decodeJSONObject(v)
	default:
		return nil, fmt.Errorf("%w: credentials must be a Credentials, map, or JSON string, got %T", ErrInvalidCredentials, input)
	}
}

func decodeJSONObject(b []byte) (map[string]any, error) {
	var decoded any
	if err := json.Unmarshal(b, &decoded); err != nil {
		return nil, fmt.Errorf("%w: failed to decode credentials JSON: %w", ErrInvalidCredentials, err)
	}
	obj, ok := decoded.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: credentials JSON must be an object", ErrInvalidCredentials)
	}
	return obj, nil
}

func (c Credentials) fields() map[string]any {
	m := map[string]any{
		"access_token":  c.AccessToken,
		"refresh_token": c.RefreshToken,
		"token_uri":     c.TokenURI,
		"client_id":     c.ClientID,
		"client_secret": c.ClientSecret,
	}
	if len(c.Scopes) > 0 {
		m["scopes"] = c.Scopes
	}
	if c.Expiry != nil {
		m["expiry"] = *c.Expiry
	}
	return m
}

func stringField(data map[string]any, key string) (string, error) {
	v, ok := data[key]
	if !ok || v == nil {
		return "", nil
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return "", fmt.Errorf("%w: %s must be a string", ErrInvalidCredentials, key)
	}
	return s, nil
}

// scopesField reads "scopes", falling back to the "scope" string OAuth
// token responses carry.
func scopesField(data map[string]any) ([]string, error) {
	raw := data["scopes"]
	if isEmptyValue(raw) {
		raw = data["scope"]
	}
	return normalizeScopes(raw)
}

func expiryField(data map[string]any) (*time.Time, error) {
	raw := data["expiry"]
	if isEmptyValue(raw) {
		raw = data["expires_at"]
	}
	return parseExpiry(raw)
}

func isEmptyValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []string:
		return len(t) == 0
	case []any:
		return len(t) == 0
	}
	return false
}

func normalizeScopes(v any) ([]string, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		return strings.Fields(t), nil
	case map[string]any, map[string]string:
		return nil, fmt.Errorf("%w: scopes must be a list or space-delimited string", ErrInvalidCredentials)
	}

	items, err := cast.ToStringSliceE(v)
	if err != nil {
		return nil, fmt.Errorf("%w: scopes must be a list or space-delimited string", ErrInvalidCredentials)
	}
	scopes := make([]string, 0, len(items))
	for _, item := range items {
		if item != "" {
			scopes = append(scopes, item)
		}
	}
	return scopes, nil
}

func parseExpiry(v any) (*time.Time, error) {
	var t time.Time
	switch e := v.(type) {
	case nil:
		return nil, nil
	case time.Time:
		t = e
	case *time.Time:
		if e == nil {
			return nil, nil
		}
		t = *e
	case string:
		s := strings.TrimSpace(e)
		if s == "" {
			return nil, nil
		}
		parsed, err := cast.ToTimeInDefaultLocationE(s, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("%w: expiry must be an ISO-8601 string", ErrInvalidCredentials)
		}
		t = parsed
	default:
		return nil, fmt.Errorf("%w: expiry must be an ISO-8601 string", ErrInvalidCredentials)
	}
	if t.IsZero() {
		return nil, nil
	}
	return &t, nil
}
