package docs

// DocumentMimeType is the Drive MIME type of a Google Doc.
const DocumentMimeType = "application/vnd.google-apps.document"

// DocumentInfo describes a newly created document.
type DocumentInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	WebViewLink string `json:"webViewLink,omitempty"`
}
