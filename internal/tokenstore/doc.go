// Package tokenstore persists Google OAuth credentials per account.
//
// Two backends are provided: FileStore keeps one JSON file per account in
// the user cache directory, and PostgresStore keeps every saved token as a
// row of the google_tokens table and reads back the newest one. Refreshed
// credentials are saved as new entries, so the latest entry is always the
// one to use.
package tokenstore
