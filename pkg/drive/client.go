package drive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"

	"github.com/teemow/gdrivehelper/internal/instrumentation"
	"github.com/teemow/gdrivehelper/pkg/google"
)

const (
	// FolderMimeType is the MIME type for Google Drive folders
	FolderMimeType = "application/vnd.google-apps.folder"

	// DefaultUploadMimeType is used by UploadFileToFolder when no MIME type is given
	DefaultUploadMimeType = "application/pdf"
)

// Field selectors for each operation.
const (
	folderListFields    = "nextPageToken, files(id, name, createdTime, modifiedTime)"
	fileListFields      = "nextPageToken, files(id, name, mimeType, size, modifiedTime)"
	allFolderListFields = "nextPageToken, files(id, name)"
	metadataFields      = "id, name, mimeType"
	createdFields       = "id, name, webViewLink"
	renamedFields       = "id, name"
)

// ErrEmptyName is returned when a rename or create is asked to use a blank name.
var ErrEmptyName = errors.New("name must not be empty")

// Client wraps the Google Drive API service
type Client struct {
	service *drive.Service
	cfg     *google.ClientConfig
}

// NewClient creates a Drive client authenticated with creds.
func NewClient(ctx context.Context, creds *google.Credentials, opts ...google.ClientOption) (*Client, error) {
	return NewClientWithConfig(ctx, creds, google.NewClientConfig(opts...))
}

// NewClientWithConfig creates a Drive client from an existing configuration.
func NewClientWithConfig(ctx context.Context, creds *google.Credentials, cfg *google.ClientConfig) (*Client, error) {
	service, err := drive.NewService(ctx, cfg.ServiceOptions(ctx, creds)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Drive service: %w", err)
	}
	return &Client{service: service, cfg: cfg}, nil
}

// NewClientFromInput builds credentials from input and creates a Drive client.
func NewClientFromInput(ctx context.Context, input google.CredentialInput, opts ...google.ClientOption) (*Client, error) {
	cfg := google.NewClientConfig(opts...)
	creds, err := cfg.Credentials(ctx, input)
	if err != nil {
		return nil, err
	}
	return NewClientWithConfig(ctx, creds, cfg)
}

// ListFolders lists the non-trashed child folders of folderID.
func (c *Client) ListFolders(ctx context.Context, folderID string) ([]*FileInfo, error) {
	if folderID == "" {
		return nil, fmt.Errorf("folderID is required")
	}
	folders, err := c.list(ctx, instrumentation.OperationListFolders, folderID, childrenQuery(folderID, true), folderListFields)
	if err != nil {
		return nil, fmt.Errorf("failed to list folders in %s: %w", folderID, err)
	}
	return folders, nil
}

// ListFiles lists the non-trashed children of folderID, folders included.
func (c *Client) ListFiles(ctx context.Context, folderID string) ([]*FileInfo, error) {
	if folderID == "" {
		return nil, fmt.Errorf("folderID is required")
	}
	files, err := c.list(ctx, instrumentation.OperationListFiles, folderID, childrenQuery(folderID, false), fileListFields)
	if err != nil {
		return nil, fmt.Errorf("failed to list files in %s: %w", folderID, err)
	}
	return files, nil
}

// ListAllFolders lists every non-trashed folder visible to the credential.
func (c *Client) ListAllFolders(ctx context.Context) ([]*FileInfo, error) {
	folders, err := c.list(ctx, instrumentation.OperationListAllFolders, "", allFoldersQuery(), allFolderListFields)
	if err != nil {
		return nil, fmt.Errorf("failed to list folders: %w", err)
	}
	return folders, nil
}

// list follows nextPageToken until the listing is exhausted.
func (c *Client) list(ctx context.Context, operation, resourceID, query, fields string) ([]*FileInfo, error) {
	var files []*FileInfo
	err := c.cfg.Observe(ctx, instrumentation.ServiceDrive, operation, resourceID, func(ctx context.Context) error {
		call := c.service.Files.List().
			Q(query).
			Spaces("drive").
			Fields(googleapi.Field(fields))

		return call.Pages(ctx, func(page *drive.FileList) error {
			for _, f := range page.Files {
				files = append(files, convertToFileInfo(f))
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	if files == nil {
		files = []*FileInfo{}
	}
	return files, nil
}

// GetFileMetadata returns the id, name and MIME type of a file.
func (c *Client) GetFileMetadata(ctx context.Context, fileID string) (*FileInfo, error) {
	if fileID == "" {
		return nil, fmt.Errorf("fileID is required")
	}

	var file *drive.File
	err := c.cfg.Observe(ctx, instrumentation.ServiceDrive, instrumentation.OperationGetFile, fileID, func(ctx context.Context) error {
		var err error
		file, err = c.service.Files.Get(fileID).
			Context(ctx).
			Fields(metadataFields).
			Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get file %s: %w", fileID, err)
	}

	return convertToFileInfo(file), nil
}

// DownloadFile writes the content of fileID to destination and returns
// the path written. An empty destination creates a temporary file, which
// is removed again if the download fails.
func (c *Client) DownloadFile(ctx context.Context, fileID, destination string) (string, error) {
	if fileID == "" {
		return "", fmt.Errorf("fileID is required")
	}

	var (
		out *os.File
		err error
	)
	temporary := destination == ""
	if temporary {
		out, err = os.CreateTemp("", "gdrivehelper-*")
	} else {
		out, err = os.Create(destination)
	}
	if err != nil {
		return "", fmt.Errorf("failed to create download destination: %w", err)
	}
	path := out.Name()

	err = c.cfg.Observe(ctx, instrumentation.ServiceDrive, instrumentation.OperationDownloadFile, fileID, func(ctx context.Context) error {
		resp, err := c.service.Files.Get(fileID).Context(ctx).Download()
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		n, err := io.Copy(out, resp.Body)
		c.cfg.Metrics.RecordDriveTransfer(ctx, instrumentation.DirectionDownload, n)
		return err
	})
	if closeErr := out.Close(); err == nil && closeErr != nil {
		err = closeErr
	}
	if err != nil {
		if temporary {
			_ = os.Remove(path)
		}
		return "", fmt.Errorf("failed to download file %s: %w", fileID, err)
	}

	return path, nil
}

// DeleteFile permanently deletes a file, bypassing the trash.
func (c *Client) DeleteFile(ctx context.Context, fileID string) error {
	if fileID == "" {
		return fmt.Errorf("fileID is required")
	}

	err := c.cfg.Observe(ctx, instrumentation.ServiceDrive, instrumentation.OperationDeleteFile, fileID, func(ctx context.Context) error {
		return c.service.Files.Delete(fileID).Context(ctx).Do()
	})
	if err != nil {
		return fmt.Errorf("failed to delete file %s: %w", fileID, err)
	}
	return nil
}

// UploadFile uploads content as a new file and returns its id, name and web link.
func (c *Client) UploadFile(ctx context.Context, name string, content io.Reader, options *UploadOptions) (*FileInfo, error) {
	if name == "" {
		return nil, fmt.Errorf("file name is required")
	}
	if content == nil {
		return nil, fmt.Errorf("file content is required")
	}

	file := &drive.File{
		Name: name,
	}
	var mediaOpts []googleapi.MediaOption
	var resourceID string

	if options != nil {
		if len(options.ParentFolders) > 0 {
			file.Parents = options.ParentFolders
			resourceID = options.ParentFolders[0]
		}
		if options.Description != "" {
			file.Description = options.Description
		}
		if options.MimeType != "" {
			mediaOpts = append(mediaOpts, googleapi.ContentType(options.MimeType))
		}
	}

	counter := &countingReader{r: content}
	var created *drive.File
	err := c.cfg.Observe(ctx, instrumentation.ServiceDrive, instrumentation.OperationUploadFile, resourceID, func(ctx context.Context) error {
		var err error
		created, err = c.service.Files.Create(file).
			Context(ctx).
			Media(counter, mediaOpts...).
			Fields(createdFields).
			Do()
		c.cfg.Metrics.RecordDriveTransfer(ctx, instrumentation.DirectionUpload, counter.n)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload file: %w", err)
	}

	return convertToFileInfo(created), nil
}

// UploadFileToFolder uploads the local file at filePath into folderID.
// options may be nil; see UploadOptions for the defaults applied.
func (c *Client) UploadFileToFolder(ctx context.Context, filePath, folderID string, options *UploadOptions) (*FileInfo, error) {
	if folderID == "" {
		return nil, fmt.Errorf("folderID is required")
	}

	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", filePath, err)
	}
	defer f.Close()

	opts := UploadOptions{
		Name:     filepath.Base(filePath),
		MimeType: DefaultUploadMimeType,
	}
	if options != nil {
		if options.Name != "" {
			opts.Name = options.Name
		}
		if options.MimeType != "" {
			opts.MimeType = options.MimeType
		}
		opts.Description = options.Description
	}
	opts.ParentFolders = []string{folderID}

	return c.UploadFile(ctx, opts.Name, f, &opts)
}

// RenameFolder renames folderID and returns its id and new name.
func (c *Client) RenameFolder(ctx context.Context, folderID, newName string) (*FileInfo, error) {
	if strings.TrimSpace(newName) == "" {
		return nil, ErrEmptyName
	}
	if folderID == "" {
		return nil, fmt.Errorf("folderID is required")
	}

	var updated *drive.File
	err := c.cfg.Observe(ctx, instrumentation.ServiceDrive, instrumentation.OperationRenameFolder, folderID, func(ctx context.Context) error {
		var err error
		updated, err = c.service.Files.Update(folderID, &drive.File{Name: newName}).
			Context(ctx).
			Fields(renamedFields).
			Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to rename folder %s: %w", folderID, err)
	}

	return convertToFileInfo(updated), nil
}

// CreateFolder creates a new folder under the given parents (My Drive root when empty).
func (c *Client) CreateFolder(ctx context.Context, name string, parentFolders []string) (*FileInfo, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyName
	}

	folder := &drive.File{
		Name:     name,
		MimeType: FolderMimeType,
		Parents:  parentFolders,
	}

	var resourceID string
	if len(parentFolders) > 0 {
		resourceID = parentFolders[0]
	}

	var created *drive.File
	err := c.cfg.Observe(ctx, instrumentation.ServiceDrive, instrumentation.OperationCreateFolder, resourceID, func(ctx context.Context) error {
		var err error
		created, err = c.service.Files.Create(folder).
			Context(ctx).
			Fields(createdFields).
			Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create folder: %w", err)
	}

	return convertToFileInfo(created), nil
}

// childrenQuery selects the non-trashed children of folderID.
func childrenQuery(folderID string, foldersOnly bool) string {
	q := fmt.Sprintf("'%s' in parents", escapeQueryValue(folderID))
	if foldersOnly {
		q += fmt.Sprintf(" and mimeType = '%s'", FolderMimeType)
	}
	return q + " and trashed = false"
}

func allFoldersQuery() string {
	return fmt.Sprintf("mimeType = '%s' and trashed = false", FolderMimeType)
}

// escapeQueryValue escapes a value for use inside a quoted Drive query string.
func escapeQueryValue(s string) string {
	return strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(s)
}

// convertToFileInfo converts a Drive API file to FileInfo
func convertToFileInfo(file *drive.File) *FileInfo {
	info := &FileInfo{
		ID:          file.Id,
		Name:        file.Name,
		MimeType:    file.MimeType,
		Size:        file.Size,
		WebViewLink: file.WebViewLink,
		Parents:     file.Parents,
	}

	if t, err := time.Parse(time.RFC3339, file.CreatedTime); err == nil {
		info.CreatedTime = &t
	}
	if t, err := time.Parse(time.RFC3339, file.ModifiedTime); err == nil {
		info.ModifiedTime = &t
	}

	return info
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
