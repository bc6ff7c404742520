package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func newDocsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docs",
		Short: "Create Google Docs",
	}

	var (
		lines    []string
		fromFile string
	)
	createCmd := &cobra.Command{
		Use:   "create FOLDER_ID TITLE",
		Short: "Create a document in a folder, filled with --line values or the lines of --from-file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			content := lines
			if fromFile != "" {
				var err error
				content, err = readLines(cmd.InOrStdin(), fromFile)
				if err != nil {
					return err
				}
			}

			return withSession(cmd.Context(), func(s *session) error {
				c, err := s.docs(cmd.Context())
				if err != nil {
					return err
				}
				info, err := c.CreateDocumentInFolder(cmd.Context(), args[0], args[1], content)
				if info != nil {
					if perr := printJSON(cmd.OutOrStdout(), info); perr != nil {
						return perr
					}
				}
				return err
			})
		},
	}
	createCmd.Flags().StringArrayVar(&lines, "line", nil, "A line of document text (repeatable)")
	createCmd.Flags().StringVar(&fromFile, "from-file", "", "Read the document text from a file, or - for stdin")
	cmd.AddCommand(createCmd)

	return cmd
}

// readLines reads the lines of path, or of stdin when path is "-".
func readLines(stdin io.Reader, path string) ([]string, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer f.Close()
		r = f
	}

	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return lines, nil
}
