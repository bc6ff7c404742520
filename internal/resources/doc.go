// Package resources provides MCP resources describing the stored accounts.
// Resources are read-only data sources that MCP clients can fetch; here they
// report the state of an account's OAuth token without exposing secrets.
package resources
