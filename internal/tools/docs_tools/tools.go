package docs_tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/gdrivehelper/internal/instrumentation"
	"github.com/teemow/gdrivehelper/internal/server"
	"github.com/teemow/gdrivehelper/internal/tools/common"
	"github.com/teemow/gdrivehelper/pkg/docs"
)

// RegisterDocsTools registers all Google Docs-related tools with the MCP server
func RegisterDocsTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	if readOnly {
		return nil
	}

	createDocumentTool := mcp.NewTool("docs_create_document",
		mcp.WithDescription("Create a Google Doc in a Drive folder and write the given lines into it"),
		common.AccountParam(),
		mcp.WithString("folderId",
			mcp.Required(),
			mcp.Description("The ID of the folder to create the document in"),
		),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("The title of the document"),
		),
		mcp.WithString("lines",
			mcp.Description("The document content: an array of lines or newline-separated text"),
		),
	)
	s.AddTool(createDocumentTool, common.InstrumentedToolHandler(common.ToolInfo{
		Name:        "docs_create_document",
		Service:     instrumentation.ServiceDocs,
		Operation:   instrumentation.OperationCreateDocument,
		ResourceArg: "folderId",
	}, sc, handleCreateDocument(sc)))

	return nil
}

func getDocsClient(args map[string]any, sc *server.ServerContext) (*docs.Client, error) {
	account, err := common.ResolveAccount(args)
	if err != nil {
		return nil, err
	}
	client, err := sc.DocsClient(account)
	if err != nil {
		return nil, fmt.Errorf("failed to get Docs client for account %s: %w", account, err)
	}
	return client, nil
}

func handleCreateDocument(sc *server.ServerContext) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		folderID, err := common.RequiredString(args, "folderId")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		title, err := common.RequiredString(args, "title")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		lines, err := parseLines(args["lines"])
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		client, err := getDocsClient(args, sc)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		info, err := client.CreateDocumentInFolder(ctx, folderID, title, lines)
		if err != nil {
			if info != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Document %s was created but is empty: %v", info.ID, err)), nil
			}
			return mcp.NewToolResultError(fmt.Sprintf("Failed to create document: %v", err)), nil
		}

		return common.JSONResult("Document created successfully:", info), nil
	}
}

// parseLines accepts an array of strings or a single newline-separated string.
func parseLines(raw any) ([]string, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case string:
		if v == "" {
			return nil, nil
		}
		return strings.Split(v, "\n"), nil
	case []string:
		return v, nil
	case []any:
		lines := make([]string, 0, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("lines[%d] must be a string", i)
			}
			lines = append(lines, s)
		}
		return lines, nil
	default:
		return nil, fmt.Errorf("lines must be a string or an array of strings")
	}
}
