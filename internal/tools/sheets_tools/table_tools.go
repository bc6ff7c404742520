package sheets_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/gdrivehelper/internal/server"
	"github.com/teemow/gdrivehelper/internal/tools/common"
	"github.com/teemow/gdrivehelper/pkg/sheets"
)

func handleAppendRow(sc *server.ServerContext) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		spreadsheetID, err := common.RequiredString(args, "spreadsheetId")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		rangeName, err := common.RequiredString(args, "range")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		values, err := common.Row(args, "values")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		client, err := getSheetsClient(args, sc)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		resp, err := client.AppendRow(ctx, spreadsheetID, rangeName, values, &sheets.AppendOptions{
			ValueInputOption: common.OptionalString(args, "valueInputOption"),
			InsertDataOption: common.OptionalString(args, "insertDataOption"),
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to append row: %v", err)), nil
		}

		return common.JSONResult("Row appended successfully:", resp.Updates), nil
	}
}

func handleListTables(sc *server.ServerContext) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		spreadsheetID, err := common.RequiredString(args, "spreadsheetId")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		client, err := getSheetsClient(args, sc)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		tables, err := client.ListTables(ctx, spreadsheetID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to list tables: %v", err)), nil
		}

		return common.JSONResult(fmt.Sprintf("Found %d tables:", len(tables)), tables), nil
	}
}

func handleGetTableColumns(sc *server.ServerContext) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		spreadsheetID, err := common.RequiredString(args, "spreadsheetId")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		table, err := common.RequiredString(args, "table")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		client, err := getSheetsClient(args, sc)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		columns, err := client.GetTableColumns(ctx, spreadsheetID, table)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to get table columns: %v", err)), nil
		}

		return common.JSONResult(fmt.Sprintf("Table %s has %d columns:", table, len(columns)), columns), nil
	}
}

func handleUpdateTable(sc *server.ServerContext) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		spreadsheetID, err := common.RequiredString(args, "spreadsheetId")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		table, err := common.RequiredString(args, "table")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		values, err := common.Rows(args, "values")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		startRow, err := common.OptionalInt(args, "startRow")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		startColumn, err := common.OptionalInt(args, "startColumn")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		client, err := getSheetsClient(args, sc)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		resp, err := client.UpdateTable(ctx, spreadsheetID, table, values, &sheets.UpdateTableOptions{
			StartRow:         startRow,
			StartColumn:      startColumn,
			ValueInputOption: common.OptionalString(args, "valueInputOption"),
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to update table: %v", err)), nil
		}

		return common.JSONResult("Table updated successfully:", map[string]any{
			"updatedRange":   resp.UpdatedRange,
			"updatedRows":    resp.UpdatedRows,
			"updatedColumns": resp.UpdatedColumns,
			"updatedCells":   resp.UpdatedCells,
		}), nil
	}
}

func handleAppendTableRow(sc *server.ServerContext) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		spreadsheetID, err := common.RequiredString(args, "spreadsheetId")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		table, err := common.RequiredString(args, "table")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		values, err := common.Row(args, "values")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		client, err := getSheetsClient(args, sc)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		resp, err := client.AppendRowToTable(ctx, spreadsheetID, table, values, common.OptionalString(args, "valueInputOption"))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to append row to table: %v", err)), nil
		}

		return common.JSONResult("Row appended successfully:", resp.Updates), nil
	}
}
