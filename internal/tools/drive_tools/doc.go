// Package drive_tools provides MCP (Model Context Protocol) tools for Google Drive operations.
//
// Read-only tools are always registered:
//   - drive_list_files: List the files in a folder
//   - drive_list_folders: List the child folders of a folder
//   - drive_list_all_folders: List every folder the account can see
//   - drive_get_file: Get id, name and MIME type of a file
//
// Write tools are registered only when the server is not read-only:
//   - drive_download_file: Download a file to the server or return its content
//   - drive_upload_file: Upload a local file or inline content into a folder
//   - drive_create_folder: Create a folder
//   - drive_rename_folder: Rename a folder
//   - drive_delete_files: Delete one or more files
//
// All tools support multi-account functionality through an optional 'account' parameter.
//
// Example tool usage:
//
//	drive_list_files({
//	  account: "work",
//	  folderId: "1AbC..."
//	})
//
//	drive_delete_files({
//	  fileIds: ["1AbC...", "1DeF..."]
//	})
package drive_tools
