package drive_tools

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/gdrivehelper/internal/instrumentation"
	"github.com/teemow/gdrivehelper/internal/server"
	"github.com/teemow/gdrivehelper/internal/tools/batch"
	"github.com/teemow/gdrivehelper/internal/tools/common"
	"github.com/teemow/gdrivehelper/pkg/drive"
)

// maxInlineDownloadSize limits the content returned by drive_download_file
// when no destination is given.
const maxInlineDownloadSize = 10 * 1024 * 1024

// registerFileTools registers file management tools
func registerFileTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	listFilesTool := mcp.NewTool("drive_list_files",
		mcp.WithDescription("List the files in a Google Drive folder with their MIME type, size and modification time"),
		common.AccountParam(),
		mcp.WithString("folderId",
			mcp.Required(),
			mcp.Description("The ID of the folder"),
		),
	)
	s.AddTool(listFilesTool, common.InstrumentedToolHandler(common.ToolInfo{
		Name:        "drive_list_files",
		Service:     instrumentation.ServiceDrive,
		Operation:   instrumentation.OperationListFiles,
		ResourceArg: "folderId",
		ReadOnly:    true,
	}, sc, handleListFiles(sc)))

	getFileTool := mcp.NewTool("drive_get_file",
		mcp.WithDescription("Get the id, name and MIME type of a file in Google Drive"),
		common.AccountParam(),
		mcp.WithString("fileId",
			mcp.Required(),
			mcp.Description("The ID of the file"),
		),
	)
	s.AddTool(getFileTool, common.InstrumentedToolHandler(common.ToolInfo{
		Name:        "drive_get_file",
		Service:     instrumentation.ServiceDrive,
		Operation:   instrumentation.OperationGetFile,
		ResourceArg: "fileId",
		ReadOnly:    true,
	}, sc, handleGetFile(sc)))

	if readOnly {
		return nil
	}

	downloadFileTool := mcp.NewTool("drive_download_file",
		mcp.WithDescription("Download a file from Google Drive. Without a destination the content is returned base64-encoded."),
		common.AccountParam(),
		mcp.WithString("fileId",
			mcp.Required(),
			mcp.Description("The ID of the file to download"),
		),
		mcp.WithString("destination",
			mcp.Description("Path on the server to write the file to"),
		),
	)
	s.AddTool(downloadFileTool, common.InstrumentedToolHandler(common.ToolInfo{
		Name:        "drive_download_file",
		Service:     instrumentation.ServiceDrive,
		Operation:   instrumentation.OperationDownloadFile,
		ResourceArg: "fileId",
	}, sc, handleDownloadFile(sc)))

	uploadFileTool := mcp.NewTool("drive_upload_file",
		mcp.WithDescription("Upload a file into a Google Drive folder, either from a path on the server or from inline content"),
		common.AccountParam(),
		mcp.WithString("folderId",
			mcp.Required(),
			mcp.Description("The ID of the folder to upload into"),
		),
		mcp.WithString("path",
			mcp.Description("Path of a file on the server to upload"),
		),
		mcp.WithString("content",
			mcp.Description("The file content, used when no path is given (base64-encoded unless isBase64 is false)"),
		),
		mcp.WithBoolean("isBase64",
			mcp.Description("Whether the content is base64-encoded (default: true)"),
		),
		mcp.WithString("name",
			mcp.Description("The name of the file in Drive (default: the base name of path)"),
		),
		mcp.WithString("mimeType",
			mcp.Description("The MIME type of the file (default: application/pdf)"),
		),
	)
	s.AddTool(uploadFileTool, common.InstrumentedToolHandler(common.ToolInfo{
		Name:        "drive_upload_file",
		Service:     instrumentation.ServiceDrive,
		Operation:   instrumentation.OperationUploadFile,
		ResourceArg: "folderId",
	}, sc, handleUploadFile(sc)))

	deleteFilesTool := mcp.NewTool("drive_delete_files",
		mcp.WithDescription("Permanently delete one or more files or folders from Google Drive"),
		common.AccountParam(),
		mcp.WithString("fileIds",
			mcp.Required(),
			mcp.Description("File ID (string) or array of file IDs to delete"),
		),
	)
	s.AddTool(deleteFilesTool, common.InstrumentedToolHandler(common.ToolInfo{
		Name:      "drive_delete_files",
		Service:   instrumentation.ServiceDrive,
		Operation: instrumentation.OperationDeleteFile,
	}, sc, handleDeleteFiles(sc)))

	return nil
}

func handleListFiles(sc *server.ServerContext) mcpserver.ToolHandlerFunc {
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

		files, err := client.ListFiles(ctx, folderID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to list files: %v", err)), nil
		}

		return common.JSONResult(fmt.Sprintf("Found %d files:", len(files)), files), nil
	}
}

func handleGetFile(sc *server.ServerContext) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		fileID, err := common.RequiredString(args, "fileId")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		client, err := getDriveClient(args, sc)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		file, err := client.GetFileMetadata(ctx, fileID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to get file: %v", err)), nil
		}

		return common.JSONResult("", file), nil
	}
}

func handleDownloadFile(sc *server.ServerContext) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		fileID, err := common.RequiredString(args, "fileId")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		destination := common.OptionalString(args, "destination")

		client, err := getDriveClient(args, sc)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		path, err := client.DownloadFile(ctx, fileID, destination)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to download file: %v", err)), nil
		}

		if destination != "" {
			return common.JSONResult("File downloaded successfully:", map[string]string{"fileId": fileID, "path": path}), nil
		}

		// Without a destination the file went to a temporary path that is
		// removed once its content has been read.
		defer os.Remove(path)

		content, err := readLimited(path, maxInlineDownloadSize)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to read downloaded file: %v", err)), nil
		}

		return common.JSONResult("", map[string]any{
			"fileId":  fileID,
			"size":    len(content),
			"content": base64.StdEncoding.EncodeToString(content),
		}), nil
	}
}

func handleUploadFile(sc *server.ServerContext) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		folderID, err := common.RequiredString(args, "folderId")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		options := &drive.UploadOptions{
			Name:     common.OptionalString(args, "name"),
			MimeType: common.OptionalString(args, "mimeType"),
		}

		path := common.OptionalString(args, "path")
		contentStr := common.OptionalString(args, "content")
		if path == "" && contentStr == "" {
			return mcp.NewToolResultError("either path or content is required"), nil
		}
		if path == "" && options.Name == "" {
			return mcp.NewToolResultError("name is required when uploading content"), nil
		}

		var content io.Reader
		if path == "" {
			isBase64, err := common.OptionalBool(args, "isBase64", true)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			if isBase64 {
				decoded, err := base64.StdEncoding.DecodeString(contentStr)
				if err != nil {
					return mcp.NewToolResultError(fmt.Sprintf("Failed to decode base64 content: %v", err)), nil
				}
				content = bytes.NewReader(decoded)
			} else {
				content = strings.NewReader(contentStr)
			}
		}

		client, err := getDriveClient(args, sc)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		var file *drive.FileInfo
		if path != "" {
			file, err = client.UploadFileToFolder(ctx, path, folderID, options)
		} else {
			if options.MimeType == "" {
				options.MimeType = drive.DefaultUploadMimeType
			}
			options.ParentFolders = []string{folderID}
			file, err = client.UploadFile(ctx, options.Name, content, options)
		}
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to upload file: %v", err)), nil
		}

		return common.JSONResult("File uploaded successfully:", file), nil
	}
}

func handleDeleteFiles(sc *server.ServerContext) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		fileIDs, err := batch.ParseStringOrArray(args["fileIds"], "fileIds")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		client, err := getDriveClient(args, sc)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		results := batch.ProcessBatch(ctx, fileIDs, batch.DefaultConcurrency, func(ctx context.Context, fileID string) (string, error) {
			if err := client.DeleteFile(ctx, fileID); err != nil {
				return "", err
			}
			return "deleted", nil
		})

		return mcp.NewToolResultText(batch.FormatResults(results)), nil
	}
}

func readLimited(path string, limit int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("file is larger than %d bytes; pass a destination to save it on the server", limit)
	}
	return data, nil
}
