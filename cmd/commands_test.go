package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/teemow/gdrivehelper/pkg/google"
	"github.com/teemow/gdrivehelper/pkg/sheets"
)

func TestWithScopes(t *testing.T) {
	fields, err := withScopes([]byte(`{"access_token":"a"}`), []string{"s1", "s2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "s2"}, fields["scopes"])

	fields, err = withScopes([]byte(`{"scope":"kept"}`), []string{"s1"})
	require.NoError(t, err)
	assert.Nil(t, fields["scopes"])

	fields, err = withScopes([]byte(`{"scopes":[]}`), []string{"s1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"s1"}, fields["scopes"])

	_, err = withScopes([]byte(`[1,2]`), nil)
	assert.ErrorContains(t, err, "JSON object")
}

func TestReadLines(t *testing.T) {
	lines, err := readLines(strings.NewReader("one\n\nthree\n"), "-")
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "", "three"}, lines)

	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("a\nb"), 0o600))
	lines, err = readLines(nil, path)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, lines)

	_, err = readLines(nil, filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestSmokeValues(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	values, err := smokeValues("", now)
	require.NoError(t, err)
	assert.Equal(t, [][]any{{"SMOKE_TEST 2024-05-01T12:00:00Z"}}, values)

	values, err = smokeValues(`["a","b"]`, now)
	require.NoError(t, err)
	assert.Equal(t, [][]any{{"a", "b"}}, values)

	values, err = smokeValues(`[["a"],["b"]]`, now)
	require.NoError(t, err)
	assert.Len(t, values, 2)

	_, err = smokeValues(`{`, now)
	assert.Error(t, err)
}

func TestTokenImportExport(t *testing.T) {
	for _, env := range []string{"GDRIVEHELPER_ACCOUNT", "GDRIVEHELPER_TOKEN_PATH", "GDRIVEHELPER_TOKEN_STORE", "DATABASE_URL", "SCOPES"} {
		t.Setenv(env, "")
	}

	dir := t.TempDir()
	tokenPath := filepath.Join(dir, "store.json")
	src := filepath.Join(dir, "token.json")
	expiry := time.Now().Add(time.Hour).UTC().Format(time.RFC3339)
	require.NoError(t, os.WriteFile(src, []byte(`{
		"access_token": "ya29.access",
		"refresh_token": "1//refresh",
		"token_uri": "https://oauth2.googleapis.com/token",
		"client_id": "id.apps.googleusercontent.com",
		"client_secret": "secret",
		"scope": "https://www.googleapis.com/auth/drive https://www.googleapis.com/auth/spreadsheets",
		"expiry": "`+expiry+`"
	}`), 0o600))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	rootCmd.SetArgs([]string{"token", "import", src, "--token-path", tokenPath})
	require.NoError(t, rootCmd.Execute())

	out.Reset()
	rootCmd.SetArgs([]string{"token", "export", "--token-path", tokenPath})
	require.NoError(t, rootCmd.Execute())

	var exported google.Credentials
	require.NoError(t, json.Unmarshal(out.Bytes(), &exported))
	assert.Equal(t, "ya29.access", exported.AccessToken)
	assert.Equal(t, []string{google.ScopeDrive, google.ScopeSpreadsheets}, exported.Scopes)
	require.NotNil(t, exported.Expiry)
}

type fakeSmokeSheets struct {
	puts    int
	appends int
}

func (f *fakeSmokeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodGet:
		_, _ = w.Write([]byte(`{"sheets":[{"properties":{"sheetId":1,"title":"Log","gridProperties":{"rowCount":50,"columnCount":5}},
			"tables":[{"tableId":"t1","name":"Runs","range":{"sheetId":1,"startRowIndex":0,"endRowIndex":5,"startColumnIndex":0,"endColumnIndex":2},
			"columnProperties":[{"columnIndex":0,"columnName":"When","columnType":"TEXT"}]}]}]}`))
	case r.Method == http.MethodPut:
		f.puts++
		_, _ = w.Write([]byte(`{"updatedCells":1,"updatedRows":1}`))
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, ":append"):
		f.appends++
		_, _ = w.Write([]byte(`{"updates":{"updatedCells":2}}`))
	default:
		http.Error(w, "unexpected", http.StatusNotFound)
	}
}

func runSmokeAgainst(t *testing.T, api http.Handler, opts smokeOptions) string {
	t.Helper()

	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	client, err := sheets.NewClient(context.Background(), nil, google.WithAPIOptions(
		option.WithHTTPClient(srv.Client()),
		option.WithEndpoint(srv.URL+"/"),
	))
	require.NoError(t, err)

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetContext(context.Background())

	require.NoError(t, runSmoke(cmd, client, opts))
	return out.String()
}

func TestRunSmoke(t *testing.T) {
	t.Run("list only", func(t *testing.T) {
		out := runSmokeAgainst(t, &fakeSmokeSheets{}, smokeOptions{spreadsheetID: "ss"})
		assert.Contains(t, out, "Found 1 table(s).")
		assert.Contains(t, out, "- Runs (id=t1, range=Log!A1:B5)")
		assert.Contains(t, out, "No --table provided.")
	})

	t.Run("columns without writes", func(t *testing.T) {
		api := &fakeSmokeSheets{}
		out := runSmokeAgainst(t, api, smokeOptions{spreadsheetID: "ss", table: "Runs"})
		assert.Contains(t, out, "- index=0 name=When type=TEXT")
		assert.Contains(t, out, "Skipping updates")
		assert.Zero(t, api.puts+api.appends)
	})

	t.Run("unknown table", func(t *testing.T) {
		out := runSmokeAgainst(t, &fakeSmokeSheets{}, smokeOptions{spreadsheetID: "ss", table: "Nope"})
		assert.Contains(t, out, "Table not found: Nope")
	})

	t.Run("write", func(t *testing.T) {
		api := &fakeSmokeSheets{}
		out := runSmokeAgainst(t, api, smokeOptions{spreadsheetID: "ss", table: "t1", write: true})
		assert.Contains(t, out, "update_table succeeded (updated=1).")
		assert.Equal(t, 1, api.puts)
	})

	t.Run("append", func(t *testing.T) {
		api := &fakeSmokeSheets{}
		out := runSmokeAgainst(t, api, smokeOptions{spreadsheetID: "ss", table: "Runs", append: true, values: `[["x","y"]]`})
		assert.Contains(t, out, "append_row_to_table succeeded (updatedCells=2).")
		assert.Equal(t, 1, api.appends)
	})

	t.Run("rejected values", func(t *testing.T) {
		out := runSmokeAgainst(t, &fakeSmokeSheets{}, smokeOptions{spreadsheetID: "ss", table: "Runs", write: true, values: `[[]]`})
		assert.Contains(t, out, "update_table failed safely")
	})
}
