// Package docs creates Google Docs through the Drive and Docs APIs.
//
// A document is created as a Drive file with the Google Docs MIME type
// inside a folder, then filled with a single insertText request at the
// start of its body.
//
// Example usage:
//
//	client, err := docs.NewClient(ctx, creds)
//	if err != nil {
//	    return err
//	}
//
//	doc, err := client.CreateDocumentInFolder(ctx, folderID, "Weekly report",
//	    []string{"Summary", "", "All checks passed."})
package docs
