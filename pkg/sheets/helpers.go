package sheets

import (
	"context"

	sheets "google.golang.org/api/sheets/v4"

	"github.com/teemow/gdrivehelper/pkg/google"
)

// AppendRow appends a row with a client built from input.
func AppendRow(ctx context.Context, input google.CredentialInput, spreadsheetID, rangeName string, values []any, appendOpts *AppendOptions, opts ...google.ClientOption) (*sheets.AppendValuesResponse, error) {
	c, err := NewClientFromInput(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return c.AppendRow(ctx, spreadsheetID, rangeName, values, appendOpts)
}

func ListTables(ctx context.Context, input google.CredentialInput, spreadsheetID string, opts ...google.ClientOption) ([]*TableInfo, error) {
	c, err := NewClientFromInput(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return c.ListTables(ctx, spreadsheetID)
}

func GetTableColumns(ctx context.Context, input google.CredentialInput, spreadsheetID, tableNameOrID string, opts ...google.ClientOption) ([]*ColumnInfo, error) {
	c, err := NewClientFromInput(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return c.GetTableColumns(ctx, spreadsheetID, tableNameOrID)
}

// UpdateTable updates table values with a client built from input.
func UpdateTable(ctx context.Context, input google.CredentialInput, spreadsheetID, tableNameOrID string, values [][]any, updateOpts *UpdateTableOptions, opts ...google.ClientOption) (*sheets.UpdateValuesResponse, error) {
	c, err := NewClientFromInput(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return c.UpdateTable(ctx, spreadsheetID, tableNameOrID, values, updateOpts)
}

func AppendRowToTable(ctx context.Context, input google.CredentialInput, spreadsheetID, tableNameOrID string, values []any, valueInputOption string, opts ...google.ClientOption) (*sheets.AppendValuesResponse, error) {
	c, err := NewClientFromInput(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return c.AppendRowToTable(ctx, spreadsheetID, tableNameOrID, values, valueInputOption)
}
