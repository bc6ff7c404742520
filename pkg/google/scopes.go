package google

// Google OAuth scopes used by the Drive, Docs and Sheets clients.
const (
	ScopeDrive            = "https://www.googleapis.com/auth/drive"
	ScopeDriveFile        = "https://www.googleapis.com/auth/drive.file"
	ScopeDriveReadonly    = "https://www.googleapis.com/auth/drive.readonly"
	ScopeDocuments        = "https://www.googleapis.com/auth/documents"
	ScopeSpreadsheets     = "https://www.googleapis.com/auth/spreadsheets"
	ScopeSpreadsheetsRead = "https://www.googleapis.com/auth/spreadsheets.readonly"
)

// DefaultScopes cover every operation of the drive, docs and sheets packages.
var DefaultScopes = []string{
	ScopeDrive,
	ScopeDocuments,
	ScopeSpreadsheets,
}
