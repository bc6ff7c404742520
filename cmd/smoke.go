package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/gdrivehelper/internal/tools/common"
	"github.com/teemow/gdrivehelper/pkg/sheets"
)

type smokeOptions struct {
	spreadsheetID string
	table         string
	write         bool
	append        bool
	values        string
	startRow      int64
	startColumn   int64
}

func newSmokeCmd() *cobra.Command {
	var opts smokeOptions

	cmd := &cobra.Command{
		Use:   "smoke",
		Short: "Exercise the Sheets table operations against a real spreadsheet",
		Long: `List the tables of a spreadsheet, show the columns of one table and, with
--write or --append, write a small row into it.

Without --values a single cell "SMOKE_TEST <timestamp>" is written. Missing
tables and rejected values are reported without failing the command.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("spreadsheet-id") {
				opts.spreadsheetID = os.Getenv("SPREADSHEET_ID")
			}
			if !cmd.Flags().Changed("table") {
				opts.table = os.Getenv("TABLE_NAME_OR_ID")
			}
			if opts.spreadsheetID == "" {
				return fmt.Errorf("spreadsheet id is required via --spreadsheet-id or SPREADSHEET_ID")
			}
			return withSheets(cmd, func(c *sheets.Client) error {
				return runSmoke(cmd, c, opts)
			})
		},
	}

	cmd.Flags().StringVar(&opts.spreadsheetID, "spreadsheet-id", "", "Spreadsheet ID. Can also use SPREADSHEET_ID env var.")
	cmd.Flags().StringVar(&opts.table, "table", "", "Table name or ID. Can also use TABLE_NAME_OR_ID env var.")
	cmd.Flags().BoolVar(&opts.write, "write", false, "Write the values into the table")
	cmd.Flags().BoolVar(&opts.append, "append", false, "Append the values as a new table row (INSERT_ROWS)")
	cmd.Flags().StringVar(&opts.values, "values", "", "JSON array of arrays to write")
	cmd.Flags().Int64Var(&opts.startRow, "start-row", 0, "Row offset from the table start for --write")
	cmd.Flags().Int64Var(&opts.startColumn, "start-column", 0, "Column offset from the table start for --write")

	return cmd
}

func runSmoke(cmd *cobra.Command, c *sheets.Client, opts smokeOptions) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "[1/3] Listing tables...")
	tables, err := c.ListTables(ctx, opts.spreadsheetID)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Found %d table(s).\n", len(tables))
	for _, t := range tables {
		name := t.Name
		if name == "" {
			name = "<no-name>"
		}
		fmt.Fprintf(out, "- %s (id=%s, range=%s)\n", name, t.TableID, t.Range)
	}

	if opts.table == "" {
		fmt.Fprintln(out, "\nNo --table provided. Set --table (or TABLE_NAME_OR_ID) to test columns and updates.")
		return nil
	}

	fmt.Fprintln(out, "\n[2/3] Fetching table columns...")
	columns, err := c.GetTableColumns(ctx, opts.spreadsheetID, opts.table)
	if errors.Is(err, sheets.ErrTableNotFound) {
		fmt.Fprintf(out, "Table not found: %s (%v).\n", opts.table, err)
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Found %d column(s).\n", len(columns))
	for _, col := range columns {
		fmt.Fprintf(out, "- index=%d name=%s type=%s\n", col.ColumnIndex, col.ColumnName, col.ColumnType)
	}

	if !opts.write && !opts.append {
		fmt.Fprintln(out, "\n[3/3] Skipping updates (pass --write or --append to enable).")
		return nil
	}

	values, err := smokeValues(opts.values, time.Now())
	if err != nil {
		return err
	}

	if opts.append {
		fmt.Fprintln(out, "\n[3/3] Running append_row_to_table...")
		resp, err := c.AppendRowToTable(ctx, opts.spreadsheetID, opts.table, values[0], sheets.ValueInputRaw)
		if safeFailure(out, "append_row_to_table", err) {
			return nil
		}
		if err != nil {
			return err
		}
		var updated int64
		if resp.Updates != nil {
			updated = resp.Updates.UpdatedCells
		}
		fmt.Fprintf(out, "append_row_to_table succeeded (updatedCells=%s).\n", countOrUnknown(updated))
		return nil
	}

	fmt.Fprintln(out, "\n[3/3] Running update_table...")
	resp, err := c.UpdateTable(ctx, opts.spreadsheetID, opts.table, values, &sheets.UpdateTableOptions{
		StartRow:    opts.startRow,
		StartColumn: opts.startColumn,
	})
	if safeFailure(out, "update_table", err) {
		return nil
	}
	if err != nil {
		return err
	}
	updated := resp.UpdatedCells
	if updated == 0 {
		updated = resp.UpdatedRows
	}
	fmt.Fprintf(out, "update_table succeeded (updated=%s).\n", countOrUnknown(updated))
	return nil
}

// smokeValues parses raw as rows, defaulting to a single timestamped cell.
// For an append only the first row is used.
func smokeValues(raw string, now time.Time) ([][]any, error) {
	if raw == "" {
		return [][]any{{"SMOKE_TEST " + now.UTC().Format(time.RFC3339)}}, nil
	}
	return common.Rows(map[string]any{"values": raw}, "values")
}

// safeFailure reports validation errors that leave the spreadsheet untouched.
func safeFailure(out io.Writer, action string, err error) bool {
	if errors.Is(err, sheets.ErrTableNotFound) || errors.Is(err, sheets.ErrInvalidValues) {
		fmt.Fprintf(out, "%s failed safely: %v\n", action, err)
		return true
	}
	return false
}

func countOrUnknown(n int64) string {
	if n == 0 {
		return "?"
	}
	return fmt.Sprint(n)
}
