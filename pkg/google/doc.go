// Package google builds and refreshes OAuth2 credentials for the Google
// Drive, Docs and Sheets clients.
//
// Credentials arrive in several shapes: a *Credentials value, a decoded
// JSON map, or raw JSON text. BuildCredentials normalizes all of them,
// validates the required fields, resolves scopes and expiry, and refreshes
// an expired access token against the credential's token URI.
//
// ClientConfig carries what every API client shares: the authenticated
// HTTP client, extra google.golang.org/api options, metrics and a logger.
// Each API call is wrapped in Observe so that it produces a span, a metric
// sample and a debug log line.
package google
