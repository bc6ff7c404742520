package sheets_tools

import (
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/gdrivehelper/internal/instrumentation"
	"github.com/teemow/gdrivehelper/internal/server"
	"github.com/teemow/gdrivehelper/internal/tools/common"
	"github.com/teemow/gdrivehelper/pkg/sheets"
)

func getSheetsClient(args map[string]any, sc *server.ServerContext) (*sheets.Client, error) {
	account, err := common.ResolveAccount(args)
	if err != nil {
		return nil, err
	}
	client, err := sc.SheetsClient(account)
	if err != nil {
		return nil, fmt.Errorf("failed to get Sheets client for account %s: %w", account, err)
	}
	return client, nil
}

func spreadsheetParam() mcp.ToolOption {
	return mcp.WithString("spreadsheetId",
		mcp.Required(),
		mcp.Description("The ID of the spreadsheet"),
	)
}

func tableParam() mcp.ToolOption {
	return mcp.WithString("table",
		mcp.Required(),
		mcp.Description("The ID or name of the table"),
	)
}

func valueInputParam() mcp.ToolOption {
	return mcp.WithString("valueInputOption",
		mcp.Description("How input is interpreted: 'RAW' (default) or 'USER_ENTERED'"),
		mcp.Enum(sheets.ValueInputRaw, sheets.ValueInputUserEntered),
	)
}

// RegisterSheetsTools registers all Google Sheets-related tools with the MCP server
func RegisterSheetsTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	listTablesTool := mcp.NewTool("sheets_list_tables",
		mcp.WithDescription("List the tables defined in a spreadsheet with their sheet and A1 range"),
		common.AccountParam(),
		spreadsheetParam(),
	)
	s.AddTool(listTablesTool, common.InstrumentedToolHandler(common.ToolInfo{
		Name:        "sheets_list_tables",
		Service:     instrumentation.ServiceSheets,
		Operation:   instrumentation.OperationGetSpreadsheet,
		ResourceArg: "spreadsheetId",
		ReadOnly:    true,
	}, sc, handleListTables(sc)))

	getColumnsTool := mcp.NewTool("sheets_get_table_columns",
		mcp.WithDescription("Get the column names and types of a table"),
		common.AccountParam(),
		spreadsheetParam(),
		tableParam(),
	)
	s.AddTool(getColumnsTool, common.InstrumentedToolHandler(common.ToolInfo{
		Name:        "sheets_get_table_columns",
		Service:     instrumentation.ServiceSheets,
		Operation:   instrumentation.OperationGetSpreadsheet,
		ResourceArg: "spreadsheetId",
		ReadOnly:    true,
	}, sc, handleGetTableColumns(sc)))

	if readOnly {
		return nil
	}

	appendRowTool := mcp.NewTool("sheets_append_row",
		mcp.WithDescription("Append a row of values after the data in an A1 range"),
		common.AccountParam(),
		spreadsheetParam(),
		mcp.WithString("range",
			mcp.Required(),
			mcp.Description("The A1 range to append to, e.g. 'Sheet1!A:D'"),
		),
		mcp.WithArray("values",
			mcp.Required(),
			mcp.Description("The cell values of the row"),
		),
		valueInputParam(),
		mcp.WithString("insertDataOption",
			mcp.Description("'INSERT_ROWS' (default) inserts new rows, 'OVERWRITE' writes over existing cells"),
			mcp.Enum(sheets.InsertRows, sheets.Overwrite),
		),
	)
	s.AddTool(appendRowTool, common.InstrumentedToolHandler(common.ToolInfo{
		Name:        "sheets_append_row",
		Service:     instrumentation.ServiceSheets,
		Operation:   instrumentation.OperationAppendRow,
		ResourceArg: "spreadsheetId",
	}, sc, handleAppendRow(sc)))

	updateTableTool := mcp.NewTool("sheets_update_table",
		mcp.WithDescription("Write a block of values into a table, growing the sheet when the block does not fit"),
		common.AccountParam(),
		spreadsheetParam(),
		tableParam(),
		mcp.WithArray("values",
			mcp.Required(),
			mcp.Description("The rows to write, as an array of arrays of cell values"),
		),
		mcp.WithNumber("startRow",
			mcp.Description("Row offset from the first row of the table (default: 0)"),
		),
		mcp.WithNumber("startColumn",
			mcp.Description("Column offset from the first column of the table (default: 0)"),
		),
		valueInputParam(),
	)
	s.AddTool(updateTableTool, common.InstrumentedToolHandler(common.ToolInfo{
		Name:        "sheets_update_table",
		Service:     instrumentation.ServiceSheets,
		Operation:   instrumentation.OperationUpdateValues,
		ResourceArg: "spreadsheetId",
	}, sc, handleUpdateTable(sc)))

	appendTableRowTool := mcp.NewTool("sheets_append_table_row",
		mcp.WithDescription("Append a row to the end of a table"),
		common.AccountParam(),
		spreadsheetParam(),
		tableParam(),
		mcp.WithArray("values",
			mcp.Required(),
			mcp.Description("The cell values of the row"),
		),
		valueInputParam(),
	)
	s.AddTool(appendTableRowTool, common.InstrumentedToolHandler(common.ToolInfo{
		Name:        "sheets_append_table_row",
		Service:     instrumentation.ServiceSheets,
		Operation:   instrumentation.OperationAppendRow,
		ResourceArg: "spreadsheetId",
	}, sc, handleAppendTableRow(sc)))

	return nil
}
