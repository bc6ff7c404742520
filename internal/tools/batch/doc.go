// Package batch provides helpers for MCP tools that act on several IDs in
// one call: parsing a parameter that is a single ID or a list, running the
// per-item operation with bounded concurrency, and reporting partial
// failures in a consistent JSON structure.
package batch
