package drive_tools

import (
	"fmt"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/gdrivehelper/internal/server"
	"github.com/teemow/gdrivehelper/internal/tools/common"
	"github.com/teemow/gdrivehelper/pkg/drive"
)

// getDriveClient resolves the account of a request and returns its Drive client.
func getDriveClient(args map[string]any, sc *server.ServerContext) (*drive.Client, error) {
	account, err := common.ResolveAccount(args)
	if err != nil {
		return nil, err
	}
	client, err := sc.DriveClient(account)
	if err != nil {
		return nil, fmt.Errorf("failed to get Drive client for account %s: %w", account, err)
	}
	return client, nil
}

// RegisterDriveTools registers all Google Drive-related tools with the MCP server
func RegisterDriveTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	if err := registerFileTools(s, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register file tools: %w", err)
	}

	if err := registerFolderTools(s, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register folder tools: %w", err)
	}

	return nil
}
