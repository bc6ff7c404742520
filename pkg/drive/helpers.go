package drive

import (
	"context"

	"github.com/teemow/gdrivehelper/pkg/google"
)

// The functions below build credentials from input and a client for a
// single call. Long-lived callers should create a Client once instead.

// ListFolders lists the child folders of folderID.
func ListFolders(ctx context.Context, input google.CredentialInput, folderID string, opts ...google.ClientOption) ([]*FileInfo, error) {
	c, err := NewClientFromInput(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return c.ListFolders(ctx, folderID)
}

// ListFiles lists the files in folderID.
func ListFiles(ctx context.Context, input google.CredentialInput, folderID string, opts ...google.ClientOption) ([]*FileInfo, error) {
	c, err := NewClientFromInput(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return c.ListFiles(ctx, folderID)
}

// ListAllFolders lists every folder visible to the credential.
func ListAllFolders(ctx context.Context, input google.CredentialInput, opts ...google.ClientOption) ([]*FileInfo, error) {
	c, err := NewClientFromInput(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return c.ListAllFolders(ctx)
}

func GetFileMetadata(ctx context.Context, input google.CredentialInput, fileID string, opts ...google.ClientOption) (*FileInfo, error) {
	c, err := NewClientFromInput(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return c.GetFileMetadata(ctx, fileID)
}

// DownloadFile downloads fileID to destination, or to a temporary file
// when destination is empty, and returns the local path.
func DownloadFile(ctx context.Context, input google.CredentialInput, fileID, destination string, opts ...google.ClientOption) (string, error) {
	c, err := NewClientFromInput(ctx, input, opts...)
	if err != nil {
		return "", err
	}
	return c.DownloadFile(ctx, fileID, destination)
}

func DeleteFile(ctx context.Context, input google.CredentialInput, fileID string, opts ...google.ClientOption) error {
	c, err := NewClientFromInput(ctx, input, opts...)
	if err != nil {
		return err
	}
	return c.DeleteFile(ctx, fileID)
}

// UploadFileToFolder uploads a local file into folderID.
func UploadFileToFolder(ctx context.Context, input google.CredentialInput, filePath, folderID string, options *UploadOptions, opts ...google.ClientOption) (*FileInfo, error) {
	c, err := NewClientFromInput(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return c.UploadFileToFolder(ctx, filePath, folderID, options)
}

// RenameFolder renames folderID to newName.
func RenameFolder(ctx context.Context, input google.CredentialInput, folderID, newName string, opts ...google.ClientOption) (*FileInfo, error) {
	c, err := NewClientFromInput(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return c.RenameFolder(ctx, folderID, newName)
}

// CreateFolder creates a folder named name under parents.
func CreateFolder(ctx context.Context, input google.CredentialInput, name string, parents []string, opts ...google.ClientOption) (*FileInfo, error) {
	c, err := NewClientFromInput(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return c.CreateFolder(ctx, name, parents)
}
