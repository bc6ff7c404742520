package drive_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/gdrivehelper/internal/instrumentation"
	"github.com/teemow/gdrivehelper/internal/server"
	"github.com/teemow/gdrivehelper/internal/tools/common"
)

// registerFolderTools registers folder management tools
func registerFolderTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	listFoldersTool := mcp.NewTool("drive_list_folders",
		mcp.WithDescription("List the folders directly inside a Google Drive folder"),
		common.AccountParam(),
		mcp.WithString("folderId",
			mcp.Required(),
			mcp.Description("The ID of the parent folder"),
		),
	)
	s.AddTool(listFoldersTool, common.InstrumentedToolHandler(common.ToolInfo{
		Name:        "drive_list_folders",
		Service:     instrumentation.ServiceDrive,
		Operation:   instrumentation.OperationListFolders,
		ResourceArg: "folderId",
		ReadOnly:    true,
	}, sc, handleListFolders(sc)))

	listAllFoldersTool := mcp.NewTool("drive_list_all_folders",
		mcp.WithDescription("List every folder in Google Drive that the account can access"),
		common.AccountParam(),
	)
	s.AddTool(listAllFoldersTool, common.InstrumentedToolHandler(common.ToolInfo{
		Name:      "drive_list_all_folders",
		Service:   instrumentation.ServiceDrive,
		Operation: instrumentation.OperationListAllFolders,
		ReadOnly:  true,
	}, sc, handleListAllFolders(sc)))

	if readOnly {
		return nil
	}

	createFolderTool := mcp.NewTool("drive_create_folder",
		mcp.WithDescription("Create a new folder in Google Drive"),
		common.AccountParam(),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("The name of the folder"),
		),
		mcp.WithString("parentFolders",
			mcp.Description("Comma-separated list of parent folder IDs where the folder should be created"),
		),
	)
	s.AddTool(createFolderTool, common.InstrumentedToolHandler(common.ToolInfo{
		Name:      "drive_create_folder",
		Service:   instrumentation.ServiceDrive,
		Operation: instrumentation.OperationCreateFolder,
	}, sc, handleCreateFolder(sc)))

	renameFolderTool := mcp.NewTool("drive_rename_folder",
		mcp.WithDescription("Rename a folder in Google Drive"),
		common.AccountParam(),
		mcp.WithString("folderId",
			mcp.Required(),
			mcp.Description("The ID of the folder to rename"),
		),
		mcp.WithString("newName",
			mcp.Required(),
			mcp.Description("The new name of the folder"),
		),
	)
	s.AddTool(renameFolderTool, common.InstrumentedToolHandler(common.ToolInfo{
		Name:        "drive_rename_folder",
		Service:     instrumentation.ServiceDrive,
		Operation:   instrumentation.OperationRenameFolder,
		ResourceArg: "folderId",
	}, sc, handleRenameFolder(sc)))

	return nil
}

func handleListFolders(sc *server.ServerContext) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		folderID, err := common.RequiredString(args, "folderId")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		client, err := getDriveClient(args, sc)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		folders, err := client.ListFolders(ctx, folderID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to list folders: %v", err)), nil
		}

		return common.JSONResult(fmt.Sprintf("Found %d folders:", len(folders)), folders), nil
	}
}

func handleListAllFolders(sc *server.ServerContext) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		client, err := getDriveClient(request.GetArguments(), sc)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		folders, err := client.ListAllFolders(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to list folders: %v", err)), nil
		}

		return common.JSONResult(fmt.Sprintf("Found %d folders:", len(folders)), folders), nil
	}
}

func handleCreateFolder(sc *server.ServerContext) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		name, err := common.RequiredString(args, "name")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		parents, err := common.StringList(args, "parentFolders")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		client, err := getDriveClient(args, sc)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		folder, err := client.CreateFolder(ctx, name, parents)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to create folder: %v", err)), nil
		}

		return common.JSONResult("Folder created successfully:", folder), nil
	}
}

func handleRenameFolder(sc *server.ServerContext) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		folderID, err := common.RequiredString(args, "folderId")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		newName, err := common.RequiredString(args, "newName")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		client, err := getDriveClient(args, sc)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		folder, err := client.RenameFolder(ctx, folderID, newName)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to rename folder: %v", err)), nil
		}

		return common.JSONResult("Folder renamed successfully:", folder), nil
	}
}
