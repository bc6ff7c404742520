// Package drive provides a client for the Google Drive v3 API.
//
// It covers the folder and file operations gdrivehelper needs: listing a
// folder's children (all files, or folders only), listing every folder,
// fetching metadata, downloading, uploading a local file into a folder,
// creating and renaming folders, and deleting files. Listings follow
// nextPageToken until exhausted and never include trashed items.
//
// # Usage
//
//	creds, err := google.BuildCredentials(ctx, tokenJSON)
//	if err != nil {
//		return err
//	}
//	client, err := drive.NewClient(ctx, creds)
//	if err != nil {
//		return err
//	}
//	files, err := client.ListFiles(ctx, folderID)
//
// One-shot helpers such as drive.ListFiles(ctx, tokenJSON, folderID)
// build the credentials and client for a single call.
package drive
