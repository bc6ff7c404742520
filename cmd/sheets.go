package cmd

import (
	"github.com/spf13/cobra"

	"github.com/teemow/gdrivehelper/internal/tools/common"
	"github.com/teemow/gdrivehelper/pkg/sheets"
)

func newSheetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheets",
		Short: "Write values into Google Sheets ranges",
	}

	var opts sheets.AppendOptions
	appendCmd := &cobra.Command{
		Use:     "append-row SPREADSHEET_ID RANGE VALUES_JSON",
		Short:   "Append one row after the data in an A1 range",
		Example: `  gdrivehelper sheets append-row 1AbC... 'Sheet1!A:C' '["2024-05-01", "Coffee", 3.5]'`,
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := common.Row(map[string]any{"values": args[2]}, "values")
			if err != nil {
				return err
			}
			return withSheets(cmd, func(c *sheets.Client) error {
				resp, err := c.AppendRow(cmd.Context(), args[0], args[1], values, &opts)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), resp.Updates)
			})
		},
	}
	appendCmd.Flags().StringVar(&opts.ValueInputOption, "value-input-option", sheets.ValueInputRaw, "RAW or USER_ENTERED")
	appendCmd.Flags().StringVar(&opts.InsertDataOption, "insert-data-option", sheets.InsertRows, "INSERT_ROWS or OVERWRITE")
	cmd.AddCommand(appendCmd)

	return cmd
}

func newTablesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tables",
		Short: "Inspect and write Google Sheets tables",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list SPREADSHEET_ID",
		Short: "List the tables of a spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSheets(cmd, func(c *sheets.Client) error {
				tables, err := c.ListTables(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), tables)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "columns SPREADSHEET_ID TABLE",
		Short: "List the columns of a table given by name or ID",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSheets(cmd, func(c *sheets.Client) error {
				columns, err := c.GetTableColumns(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), columns)
			})
		},
	})

	var updateOpts sheets.UpdateTableOptions
	updateCmd := &cobra.Command{
		Use:     "update SPREADSHEET_ID TABLE VALUES_JSON",
		Short:   "Write rows into a table, growing the sheet when needed",
		Example: `  gdrivehelper tables update 1AbC... Expenses '[["Rent", 900], ["Power", 80]]' --start-row 1`,
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := common.Rows(map[string]any{"values": args[2]}, "values")
			if err != nil {
				return err
			}
			return withSheets(cmd, func(c *sheets.Client) error {
				resp, err := c.UpdateTable(cmd.Context(), args[0], args[1], values, &updateOpts)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), resp)
			})
		},
	}
	updateCmd.Flags().Int64Var(&updateOpts.StartRow, "start-row", 0, "Row offset from the first row of the table")
	updateCmd.Flags().Int64Var(&updateOpts.StartColumn, "start-column", 0, "Column offset from the first column of the table")
	updateCmd.Flags().StringVar(&updateOpts.ValueInputOption, "value-input-option", sheets.ValueInputRaw, "RAW or USER_ENTERED")
	cmd.AddCommand(updateCmd)

	var inputOption string
	appendCmd := &cobra.Command{
		Use:   "append SPREADSHEET_ID TABLE VALUES_JSON",
		Short: "Append one row to the end of a table",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := common.Row(map[string]any{"values": args[2]}, "values")
			if err != nil {
				return err
			}
			return withSheets(cmd, func(c *sheets.Client) error {
				resp, err := c.AppendRowToTable(cmd.Context(), args[0], args[1], values, inputOption)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), resp.Updates)
			})
		},
	}
	appendCmd.Flags().StringVar(&inputOption, "value-input-option", sheets.ValueInputRaw, "RAW or USER_ENTERED")
	cmd.AddCommand(appendCmd)

	return cmd
}

func withSheets(cmd *cobra.Command, fn func(c *sheets.Client) error) error {
	return withSession(cmd.Context(), func(s *session) error {
		c, err := s.sheets(cmd.Context())
		if err != nil {
			return err
		}
		return fn(c)
	})
}
