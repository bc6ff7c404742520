package sheets

import (
	"errors"
	"fmt"

	sheets "google.golang.org/api/sheets/v4"
)

// Value input options accepted by the values API.
const (
	ValueInputRaw         = "RAW"
	ValueInputUserEntered = "USER_ENTERED"
)

// Insert data options accepted by values.append.
const (
	InsertRows = "INSERT_ROWS"
	Overwrite  = "OVERWRITE"
)

var (
	// ErrTableNotFound is returned when no table matches the given name or ID.
	ErrTableNotFound = errors.New("table not found")

	// ErrInvalidValues is returned when a write has no rows or no columns.
	ErrInvalidValues = errors.New("invalid values")
)

// TableInfo describes a table defined in a spreadsheet.
type TableInfo struct {
	TableID    string `json:"tableId"`
	Name       string `json:"name"`
	SheetID    int64  `json:"sheetId"`
	SheetTitle string `json:"sheetTitle"`

	// Range is the table's range in A1 notation, including the sheet title
	Range string `json:"range"`
}

// ColumnInfo describes one column of a table.
type ColumnInfo struct {
	ColumnIndex int64  `json:"columnIndex"`
	ColumnName  string `json:"columnName"`
	ColumnType  string `json:"columnType,omitempty"`
}

// AppendOptions controls how AppendRow writes values.
type AppendOptions struct {
	// ValueInputOption is RAW (default) or USER_ENTERED
	ValueInputOption string

	// InsertDataOption is INSERT_ROWS (default) or OVERWRITE
	InsertDataOption string
}

// UpdateTableOptions controls where and how UpdateTable writes values.
type UpdateTableOptions struct {
	// StartRow is the row offset from the table's first row (0-based)
	StartRow int64

	// StartColumn is the column offset from the table's first column (0-based)
	StartColumn int64

	// ValueInputOption is RAW (default) or USER_ENTERED
	ValueInputOption string
}

// table is a table together with the grid size of the sheet that holds it.
type table struct {
	*sheets.Table
	sheetID     int64
	sheetTitle  string
	rowCount    int64
	columnCount int64
}

func (t *table) matches(nameOrID string) bool {
	return t.TableId == nameOrID || t.Name == nameOrID
}

func valueInputOption(opt string) (string, error) {
	switch opt {
	case "":
		return ValueInputRaw, nil
	case ValueInputRaw, ValueInputUserEntered:
		return opt, nil
	default:
		return "", fmt.Errorf("unsupported value input option %q", opt)
	}
}

func insertDataOption(opt string) (string, error) {
	switch opt {
	case "":
		return InsertRows, nil
	case InsertRows, Overwrite:
		return opt, nil
	default:
		return "", fmt.Errorf("unsupported insert data option %q", opt)
	}
}
