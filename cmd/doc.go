// Package cmd implements the command-line interface for gdrivehelper.
//
// This package provides the following commands:
//   - folders, files: List, create, rename, upload, download and delete Drive entries
//   - docs: Create Google Docs inside a Drive folder
//   - sheets, tables: Append rows to ranges and read or write Sheets tables
//   - token: Import and export the stored OAuth token of an account
//   - smoke: Run the table operations against a real spreadsheet
//   - serve: Start the MCP server to provide tools for AI assistants
//   - generate-docs: Generate markdown documentation for all MCP tools
//   - version: Display version information
//
// Global flags fall back to environment variables when they are not given.
package cmd
