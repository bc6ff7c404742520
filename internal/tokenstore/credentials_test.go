package tokenstore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/gdrivehelper/pkg/google"
)

func TestLoadCredentials_SavesRefreshedToken(t *testing.T) {
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "fresh-token",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	}))
	defer tokenServer.Close()

	ctx := context.Background()
	store := NewFileStore(filepath.Join(t.TempDir(), "token.json"))

	expired := testCredentials()
	past := time.Now().Add(-time.Hour).UTC()
	expired.Expiry = &past
	expired.TokenURI = tokenServer.URL
	require.NoError(t, store.Save(ctx, DefaultAccount, expired))

	cfg := google.NewClientConfig()
	creds, err := LoadCredentials(ctx, store, DefaultAccount, cfg)
	require.NoError(t, err)
	assert.Equal(t, "fresh-token", creds.AccessToken)

	saved, err := store.Latest(ctx, DefaultAccount)
	require.NoError(t, err)
	assert.Equal(t, "fresh-token", saved.AccessToken)
	assert.Equal(t, "refresh", saved.RefreshToken)
}

func TestLoadCredentials_NoToken(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "token.json"))

	_, err := LoadCredentials(context.Background(), store, DefaultAccount, google.NewClientConfig())
	assert.ErrorIs(t, err, ErrNoToken)
}
