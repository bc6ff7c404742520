// Package docs_tools provides MCP tools for creating Google Docs.
//
// The docs_create_document tool creates a document inside a Drive folder
// and fills its body with the given lines.
package docs_tools
