package cmd

import (
	"context"
	"testing"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/gdrivehelper/internal/server"
	"github.com/teemow/gdrivehelper/internal/tokenstore"
)

func TestRegisterAllTools(t *testing.T) {
	sc, err := server.NewServerContext(context.Background(), tokenstore.NewFileStore(t.TempDir()+"/token.json"))
	require.NoError(t, err)
	defer sc.Shutdown()

	tests := []struct {
		name     string
		readOnly bool
		want     []string
		wantNot  []string
		count    int
	}{
		{
			name:     "read-only",
			readOnly: true,
			want:     []string{"drive_list_files", "drive_get_file", "sheets_list_tables", "sheets_get_table_columns"},
			wantNot:  []string{"drive_delete_files", "docs_create_document", "sheets_update_table"},
			count:    6,
		},
		{
			name:     "yolo",
			readOnly: false,
			want:     []string{"drive_delete_files", "drive_upload_file", "docs_create_document", "sheets_append_row", "sheets_append_table_row"},
			count:    15,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := mcpserver.NewMCPServer("test", "0.0.0")
			require.NoError(t, registerAllTools(s, sc, tt.readOnly))

			tools := s.ListTools()
			assert.Len(t, tools, tt.count)
			for _, name := range tt.want {
				assert.Contains(t, tools, name)
			}
			for _, name := range tt.wantNot {
				assert.NotContains(t, tools, name)
			}
		})
	}
}

func TestLoadServeEnvVars(t *testing.T) {
	t.Setenv("MCP_TRANSPORT", "streamable-http")
	t.Setenv("METRICS_ENABLED", "false")
	t.Setenv("METRICS_ADDR", ":9999")
	t.Setenv("MCP_HTTP_ADDR", ":7070")

	cmd := newServeCmd()
	require.NoError(t, cmd.Flags().Parse([]string{"--http-addr", ":8081"}))

	opts := serveOptions{transport: "stdio", httpAddr: ":8081", metricsEnabled: true, metricsAddr: ":9090"}
	loadServeEnvVars(cmd, &opts)

	assert.Equal(t, "streamable-http", opts.transport)
	assert.Equal(t, ":8081", opts.httpAddr, "explicit flag wins over env")
	assert.False(t, opts.metricsEnabled)
	assert.Equal(t, ":9999", opts.metricsAddr)
}

func TestRunServe_UnsupportedTransport(t *testing.T) {
	err := runServe(context.Background(), serveOptions{transport: "sse"})
	assert.ErrorContains(t, err, "unsupported transport type: sse")
}

func TestEnvFallback(t *testing.T) {
	t.Setenv("GDRIVEHELPER_ACCOUNT", "work")

	cmd := &cobra.Command{Use: "x"}
	var account string
	cmd.Flags().StringVar(&account, "account", "default", "")

	envFallback(cmd, "account", "GDRIVEHELPER_ACCOUNT", &account)
	assert.Equal(t, "work", account)

	require.NoError(t, cmd.Flags().Parse([]string{"--account", "personal"}))
	envFallback(cmd, "account", "GDRIVEHELPER_ACCOUNT", &account)
	assert.Equal(t, "personal", account)
}

func TestArgOrEnv(t *testing.T) {
	t.Setenv(evalFolderEnv, "from-env")

	v, err := argOrEnv([]string{"from-arg"}, 0, evalFolderEnv)
	require.NoError(t, err)
	assert.Equal(t, "from-arg", v)

	v, err = argOrEnv(nil, 0, evalFolderEnv)
	require.NoError(t, err)
	assert.Equal(t, "from-env", v)

	t.Setenv(evalFolderEnv, "")
	_, err = argOrEnv(nil, 0, evalFolderEnv)
	assert.ErrorContains(t, err, evalFolderEnv)
}

func TestScopeList(t *testing.T) {
	g := &globalOptions{scopes: "https://a/drive https://a/sheets,https://a/docs"}
	assert.Equal(t, []string{"https://a/drive", "https://a/sheets", "https://a/docs"}, g.scopeList())

	g.scopes = ""
	assert.Empty(t, g.scopeList())
}

func TestGetCategoryFromToolName(t *testing.T) {
	assert.Equal(t, "Google Drive Tools", getCategoryFromToolName("drive_list_files"))
	assert.Equal(t, "Google Docs Tools", getCategoryFromToolName("docs_create_document"))
	assert.Equal(t, "Google Sheets Tools", getCategoryFromToolName("sheets_update_table"))
	assert.Equal(t, "Other", getCategoryFromToolName("slides_create_deck"))
}

func TestToolsMarkdown(t *testing.T) {
	markdown, err := toolsMarkdown()
	require.NoError(t, err)

	assert.Contains(t, markdown, "# MCP Tools Reference")
	assert.Contains(t, markdown, "## Google Sheets Tools")
	assert.Contains(t, markdown, "### sheets_update_table")
	assert.Contains(t, markdown, "- `spreadsheetId` (string, required): The ID of the spreadsheet")
	assert.Contains(t, markdown, "- `account` (string, optional):")
	assert.Contains(t, markdown, "One of: `RAW`, `USER_ENTERED`.")
}
