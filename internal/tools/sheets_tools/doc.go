// Package sheets_tools provides MCP tools for Google Sheets.
//
// Rows can be appended to any A1 range, and the tables defined in a
// spreadsheet can be listed, inspected, updated and extended. Tables are
// addressed by their ID or their name.
package sheets_tools
