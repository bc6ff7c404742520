// Package sheets provides a client for appending rows to Google Sheets and
// for reading and writing the structured tables defined inside a spreadsheet.
//
// Tables are located by ID or name and addressed through their grid range,
// which is converted to A1 notation before any values call:
//
//	client, err := sheets.NewClient(ctx, creds)
//	tables, err := client.ListTables(ctx, spreadsheetID)
//	resp, err := client.AppendRowToTable(ctx, spreadsheetID, "Expenses", []any{"2024-01-01", 12.5}, "")
//
// UpdateTable writes a block of values anchored at a table's top-left cell
// and grows the sheet grid first when the block does not fit.
package sheets
