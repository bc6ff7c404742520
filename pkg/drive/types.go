package drive

import "time"

// FileInfo is the metadata returned by the Drive operations. Only the
// fields requested by an operation are populated.
type FileInfo struct {
	// ID is the unique identifier for the file
	ID string `json:"id"`

	// Name is the name of the file
	Name string `json:"name"`

	// MimeType is the MIME type of the file
	MimeType string `json:"mimeType,omitempty"`

	// Size is the size of the file in bytes (not populated for folders and Google Docs)
	Size int64 `json:"size,omitempty"`

	// CreatedTime is when the file was created
	CreatedTime *time.Time `json:"createdTime,omitempty"`

	// ModifiedTime is when the file was last modified
	ModifiedTime *time.Time `json:"modifiedTime,omitempty"`

	// WebViewLink is a link for opening the file in a relevant Google editor or viewer
	WebViewLink string `json:"webViewLink,omitempty"`

	// Parents are the IDs of the parent folders
	Parents []string `json:"parents,omitempty"`
}

// IsFolder reports whether the entry is a Drive folder.
func (f *FileInfo) IsFolder() bool {
	return f.MimeType == FolderMimeType
}

// UploadOptions contains options for uploading files
type UploadOptions struct {
	// Name overrides the uploaded file's name. UploadFileToFolder defaults
	// it to the base name of the local path.
	Name string

	// MimeType is the content type of the uploaded media
	// (UploadFileToFolder default: application/pdf)
	MimeType string

	// ParentFolders are the IDs of parent folders
	ParentFolders []string

	// Description is an optional description of the file
	Description string
}
