package docs

import (
	"context"
	"fmt"
	"strings"

	docs "google.golang.org/api/docs/v1"
	drive "google.golang.org/api/drive/v3"

	"github.com/teemow/gdrivehelper/internal/instrumentation"
	"github.com/teemow/gdrivehelper/pkg/google"
)

// Client wraps the Google Docs and Drive API services
type Client struct {
	docsService  *docs.Service
	driveService *drive.Service
	cfg          *google.ClientConfig
}

// NewClient creates a Docs client authenticated with creds.
func NewClient(ctx context.Context, creds *google.Credentials, opts ...google.ClientOption) (*Client, error) {
	return NewClientWithConfig(ctx, creds, google.NewClientConfig(opts...))
}

// NewClientWithConfig creates a Docs client from an existing configuration.
// Both services share the same authenticated HTTP client.
func NewClientWithConfig(ctx context.Context, creds *google.Credentials, cfg *google.ClientConfig) (*Client, error) {
	opts := cfg.ServiceOptions(ctx, creds)

	docsService, err := docs.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Docs service: %w", err)
	}

	driveService, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Drive service: %w", err)
	}

	return &Client{
		docsService:  docsService,
		driveService: driveService,
		cfg:          cfg,
	}, nil
}

// NewClientFromInput builds credentials from input and creates a Docs client.
func NewClientFromInput(ctx context.Context, input google.CredentialInput, opts ...google.ClientOption) (*Client, error) {
	cfg := google.NewClientConfig(opts...)
	creds, err := cfg.Credentials(ctx, input)
	if err != nil {
		return nil, err
	}
	return NewClientWithConfig(ctx, creds, cfg)
}

// CreateDocumentInFolder creates a Google Doc named title inside folderID
// and inserts lines, joined by newlines, at the start of its body.
func (c *Client) CreateDocumentInFolder(ctx context.Context, folderID, title string, lines []string) (*DocumentInfo, error) {
	if folderID == "" {
		return nil, fmt.Errorf("folderID is required")
	}
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}

	metadata := &drive.File{
		Name:     title,
		MimeType: DocumentMimeType,
		Parents:  []string{folderID},
	}

	var created *drive.File
	err := c.cfg.Observe(ctx, instrumentation.ServiceDocs, instrumentation.OperationCreateDocument, folderID, func(ctx context.Context) error {
		var err error
		created, err = c.driveService.Files.Create(metadata).
			Context(ctx).
			Fields("id, name, webViewLink").
			Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create document in folder %s: %w", folderID, err)
	}

	info := &DocumentInfo{
		ID:          created.Id,
		Name:        created.Name,
		WebViewLink: created.WebViewLink,
	}

	content := strings.Join(lines, "\n")
	if content == "" {
		return info, nil
	}

	if err := c.insertText(ctx, created.Id, content); err != nil {
		return info, fmt.Errorf("document %s created but inserting text failed: %w", created.Id, err)
	}

	return info, nil
}

// insertText inserts text at index 1, the first position of the body.
func (c *Client) insertText(ctx context.Context, documentID, text string) error {
	req := &docs.BatchUpdateDocumentRequest{
		Requests: []*docs.Request{
			{
				InsertText: &docs.InsertTextRequest{
					Location: &docs.Location{Index: 1},
					Text:     text,
				},
			},
		},
	}

	return c.cfg.Observe(ctx, instrumentation.ServiceDocs, instrumentation.OperationInsertText, documentID, func(ctx context.Context) error {
		_, err := c.docsService.Documents.BatchUpdate(documentID, req).Context(ctx).Do()
		return err
	})
}

// CreateDocumentInFolder creates a document with a client built from input.
func CreateDocumentInFolder(ctx context.Context, input google.CredentialInput, folderID, title string, lines []string, opts ...google.ClientOption) (*DocumentInfo, error) {
	c, err := NewClientFromInput(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return c.CreateDocumentInFolder(ctx, folderID, title, lines)
}
