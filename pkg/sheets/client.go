package sheets

import (
	"context"
	"fmt"

	sheets "google.golang.org/api/sheets/v4"

	"github.com/teemow/gdrivehelper/internal/instrumentation"
	"github.com/teemow/gdrivehelper/pkg/google"
)

const (
	tableFields = "sheets(properties(sheetId,title,gridProperties(rowCount,columnCount)),tables(tableId,name,range,columnProperties))"
	gridFields  = "gridProperties(rowCount,columnCount)"
)

// Client wraps the Google Sheets API service
type Client struct {
	service *sheets.Service
	cfg     *google.ClientConfig
}

// NewClient creates a Sheets client authenticated with creds.
func NewClient(ctx context.Context, creds *google.Credentials, opts ...google.ClientOption) (*Client, error) {
	return NewClientWithConfig(ctx, creds, google.NewClientConfig(opts...))
}

// NewClientWithConfig creates a Sheets client from an existing configuration.
func NewClientWithConfig(ctx context.Context, creds *google.Credentials, cfg *google.ClientConfig) (*Client, error) {
	service, err := sheets.NewService(ctx, cfg.ServiceOptions(ctx, creds)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Sheets service: %w", err)
	}
	return &Client{service: service, cfg: cfg}, nil
}

// NewClientFromInput builds credentials from input and creates a Sheets client.
func NewClientFromInput(ctx context.Context, input google.CredentialInput, opts ...google.ClientOption) (*Client, error) {
	cfg := google.NewClientConfig(opts...)
	creds, err := cfg.Credentials(ctx, input)
	if err != nil {
		return nil, err
	}
	return NewClientWithConfig(ctx, creds, cfg)
}

// AppendRow appends a single row after the data found in rangeName.
func (c *Client) AppendRow(ctx context.Context, spreadsheetID, rangeName string, values []any, opts *AppendOptions) (*sheets.AppendValuesResponse, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheetID is required")
	}
	if rangeName == "" {
		return nil, fmt.Errorf("range is required")
	}
	if opts == nil {
		opts = &AppendOptions{}
	}

	inputOption, err := valueInputOption(opts.ValueInputOption)
	if err != nil {
		return nil, err
	}
	insertOption, err := insertDataOption(opts.InsertDataOption)
	if err != nil {
		return nil, err
	}

	resp, err := c.append(ctx, spreadsheetID, rangeName, values, inputOption, insertOption)
	if err != nil {
		return nil, fmt.Errorf("failed to append row to %s: %w", rangeName, err)
	}
	return resp, nil
}

// ListTables lists the tables of every sheet in the spreadsheet.
func (c *Client) ListTables(ctx context.Context, spreadsheetID string) ([]*TableInfo, error) {
	tables, err := c.loadTables(ctx, spreadsheetID)
	if err != nil {
		return nil, err
	}

	result := make([]*TableInfo, 0, len(tables))
	for _, t := range tables {
		rangeA1, err := GridRangeToA1(t.sheetTitle, t.Range)
		if err != nil {
			return nil, fmt.Errorf("table %q: %w", t.Name, err)
		}
		result = append(result, &TableInfo{
			TableID:    t.TableId,
			Name:       t.Name,
			SheetID:    t.sheetID,
			SheetTitle: t.sheetTitle,
			Range:      rangeA1,
		})
	}
	return result, nil
}

// GetTableColumns returns the columns of the table matching tableNameOrID.
func (c *Client) GetTableColumns(ctx context.Context, spreadsheetID, tableNameOrID string) ([]*ColumnInfo, error) {
	t, err := c.findTable(ctx, spreadsheetID, tableNameOrID)
	if err != nil {
		return nil, err
	}

	columns := make([]*ColumnInfo, 0, len(t.ColumnProperties))
	for _, col := range t.ColumnProperties {
		if col == nil {
			continue
		}
		columns = append(columns, &ColumnInfo{
			ColumnIndex: col.ColumnIndex,
			ColumnName:  col.ColumnName,
			ColumnType:  col.ColumnType,
		})
	}
	return columns, nil
}

// UpdateTable writes values into a table, offset from its top-left cell by
// opts.StartRow and opts.StartColumn. Rows may have different lengths; the
// widest row determines the width of the written block.
func (c *Client) UpdateTable(ctx context.Context, spreadsheetID, tableNameOrID string, values [][]any, opts *UpdateTableOptions) (*sheets.UpdateValuesResponse, error) {
	if opts == nil {
		opts = &UpdateTableOptions{}
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: values must contain at least one row", ErrInvalidValues)
	}
	var width int
	for _, row := range values {
		width = max(width, len(row))
	}
	if width == 0 {
		return nil, fmt.Errorf("%w: values must contain at least one column", ErrInvalidValues)
	}
	if opts.StartRow < 0 || opts.StartColumn < 0 {
		return nil, fmt.Errorf("start row and column must be >= 0")
	}
	inputOption, err := valueInputOption(opts.ValueInputOption)
	if err != nil {
		return nil, err
	}

	t, err := c.findTable(ctx, spreadsheetID, tableNameOrID)
	if err != nil {
		return nil, err
	}
	if t.Range == nil {
		return nil, fmt.Errorf("table %q has no range", tableNameOrID)
	}

	target := &sheets.GridRange{
		SheetId:          t.sheetID,
		StartRowIndex:    t.Range.StartRowIndex + opts.StartRow,
		StartColumnIndex: t.Range.StartColumnIndex + opts.StartColumn,
	}
	target.EndRowIndex = target.StartRowIndex + int64(len(values))
	target.EndColumnIndex = target.StartColumnIndex + int64(width)

	if target.EndRowIndex > t.rowCount || target.EndColumnIndex > t.columnCount {
		rows := max(t.rowCount, target.EndRowIndex)
		cols := max(t.columnCount, target.EndColumnIndex)
		if err := c.resizeSheet(ctx, spreadsheetID, t.sheetID, rows, cols); err != nil {
			return nil, fmt.Errorf("failed to resize sheet %q: %w", t.sheetTitle, err)
		}
	}

	rangeA1, err := GridRangeToA1(t.sheetTitle, target)
	if err != nil {
		return nil, err
	}

	var resp *sheets.UpdateValuesResponse
	err = c.cfg.Observe(ctx, instrumentation.ServiceSheets, instrumentation.OperationUpdateValues, spreadsheetID, func(ctx context.Context) error {
		var err error
		resp, err = c.service.Spreadsheets.Values.Update(spreadsheetID, rangeA1, &sheets.ValueRange{Values: values}).
			ValueInputOption(inputOption).
			Context(ctx).
			Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update %s: %w", rangeA1, err)
	}

	c.cfg.Metrics.RecordSheetsCellsWritten(ctx, instrumentation.OperationUpdateValues, resp.UpdatedCells)
	return resp, nil
}

// AppendRowToTable appends a single row to a table, always inserting new
// rows so data below the table is pushed down rather than overwritten.
func (c *Client) AppendRowToTable(ctx context.Context, spreadsheetID, tableNameOrID string, values []any, inputOption string) (*sheets.AppendValuesResponse, error) {
	inputOption, err := valueInputOption(inputOption)
	if err != nil {
		return nil, err
	}

	t, err := c.findTable(ctx, spreadsheetID, tableNameOrID)
	if err != nil {
		return nil, err
	}
	rangeA1, err := GridRangeToA1(t.sheetTitle, t.Range)
	if err != nil {
		return nil, fmt.Errorf("table %q: %w", tableNameOrID, err)
	}

	resp, err := c.append(ctx, spreadsheetID, rangeA1, values, inputOption, InsertRows)
	if err != nil {
		return nil, fmt.Errorf("failed to append row to table %q: %w", tableNameOrID, err)
	}
	return resp, nil
}

func (c *Client) append(ctx context.Context, spreadsheetID, rangeA1 string, values []any, inputOption, insertOption string) (*sheets.AppendValuesResponse, error) {
	body := &sheets.ValueRange{Values: [][]any{values}}

	var resp *sheets.AppendValuesResponse
	err := c.cfg.Observe(ctx, instrumentation.ServiceSheets, instrumentation.OperationAppendRow, spreadsheetID, func(ctx context.Context) error {
		var err error
		resp, err = c.service.Spreadsheets.Values.Append(spreadsheetID, rangeA1, body).
			ValueInputOption(inputOption).
			InsertDataOption(insertOption).
			Context(ctx).
			Do()
		return err
	})
	if err != nil {
		return nil, err
	}

	if resp.Updates != nil {
		c.cfg.Metrics.RecordSheetsCellsWritten(ctx, instrumentation.OperationAppendRow, resp.Updates.UpdatedCells)
	}
	return resp, nil
}

// resizeSheet sets the grid size of a sheet in a single batch update.
func (c *Client) resizeSheet(ctx context.Context, spreadsheetID string, sheetID, rows, cols int64) error {
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{
			{
				UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
					Properties: &sheets.SheetProperties{
						SheetId: sheetID,
						GridProperties: &sheets.GridProperties{
							RowCount:    rows,
							ColumnCount: cols,
						},
						// sheet 0 is a valid ID and must not be dropped as empty
						ForceSendFields: []string{"SheetId"},
					},
					Fields: gridFields,
				},
			},
		},
	}

	return c.cfg.Observe(ctx, instrumentation.ServiceSheets, instrumentation.OperationResizeSheet, spreadsheetID, func(ctx context.Context) error {
		_, err := c.service.Spreadsheets.BatchUpdate(spreadsheetID, req).Context(ctx).Do()
		return err
	})
}

// loadTables returns every table in the spreadsheet in sheet order.
func (c *Client) loadTables(ctx context.Context, spreadsheetID string) ([]*table, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheetID is required")
	}

	var spreadsheet *sheets.Spreadsheet
	err := c.cfg.Observe(ctx, instrumentation.ServiceSheets, instrumentation.OperationGetSpreadsheet, spreadsheetID, func(ctx context.Context) error {
		var err error
		spreadsheet, err = c.service.Spreadsheets.Get(spreadsheetID).
			Fields(tableFields).
			Context(ctx).
			Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load spreadsheet %s: %w", spreadsheetID, err)
	}

	var tables []*table
	for _, sheet := range spreadsheet.Sheets {
		if sheet == nil {
			continue
		}
		var id, rows, cols int64
		var title string
		if p := sheet.Properties; p != nil {
			id, title = p.SheetId, p.Title
			if p.GridProperties != nil {
				rows, cols = p.GridProperties.RowCount, p.GridProperties.ColumnCount
			}
		}
		for _, t := range sheet.Tables {
			if t == nil {
				continue
			}
			tables = append(tables, &table{
				Table:       t,
				sheetID:     id,
				sheetTitle:  title,
				rowCount:    rows,
				columnCount: cols,
			})
		}
	}
	return tables, nil
}

// findTable returns the first table, in sheet order, whose ID or name is nameOrID.
func (c *Client) findTable(ctx context.Context, spreadsheetID, nameOrID string) (*table, error) {
	if nameOrID == "" {
		return nil, fmt.Errorf("table name or ID is required")
	}
	tables, err := c.loadTables(ctx, spreadsheetID)
	if err != nil {
		return nil, err
	}
	for _, t := range tables {
		if t.matches(nameOrID) {
			return t, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrTableNotFound, nameOrID)
}
