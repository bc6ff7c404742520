package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/gdrivehelper/internal/tokenstore"
)

func newTestHTTPServer(t *testing.T, config HTTPServerConfig) *HTTPServer {
	t.Helper()

	sc, err := NewServerContext(context.Background(), tokenstore.NewFileStore(filepath.Join(t.TempDir(), "token.json")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })

	s, err := NewHTTPServer(mcpserver.NewMCPServer("gdrivehelper", "test"), sc, config)
	require.NoError(t, err)
	return s
}

func TestNewHTTPServer_Validation(t *testing.T) {
	sc, err := NewServerContext(context.Background(), tokenstore.NewFileStore(filepath.Join(t.TempDir(), "token.json")))
	require.NoError(t, err)

	_, err = NewHTTPServer(nil, sc, HTTPServerConfig{})
	assert.Error(t, err)

	_, err = NewHTTPServer(mcpserver.NewMCPServer("x", "y"), nil, HTTPServerConfig{})
	assert.Error(t, err)

	_, err = NewHTTPServer(mcpserver.NewMCPServer("x", "y"), sc, HTTPServerConfig{TLSCertFile: "cert.pem"})
	assert.ErrorContains(t, err, "both TLS certificate and key files")
}

func TestHTTPServer_Handler(t *testing.T) {
	s := newTestHTTPServer(t, HTTPServerConfig{DisableStreaming: true})
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-03-26","capabilities":{},"clientInfo":{"name":"test","version":"1.0"}}}`
	req, err := http.NewRequest(http.MethodPost, srv.URL+MCPEndpoint, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")

	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHTTPServer_ShutdownMarksNotReady(t *testing.T) {
	health := NewHealthChecker(nil)
	s := newTestHTTPServer(t, HTTPServerConfig{Health: health})

	require.NoError(t, s.Shutdown(context.Background()))
	assert.False(t, health.IsReady())
}
