package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teemow/gdrivehelper/internal/tools/batch"
	"github.com/teemow/gdrivehelper/pkg/drive"
)

func newFilesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "files",
		Short: "List, download, upload and delete Google Drive files",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list [FOLDER_ID]",
		Short: "List the files inside a folder (default: $EVAL_FOLDER_ID)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			folderID, err := argOrEnv(args, 0, evalFolderEnv)
			if err != nil {
				return err
			}
			return withDrive(cmd, func(c *drive.Client) error {
				files, err := c.ListFiles(cmd.Context(), folderID)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), files)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get FILE_ID",
		Short: "Show the id, name and MIME type of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDrive(cmd, func(c *drive.Client) error {
				file, err := c.GetFileMetadata(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), file)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "download FILE_ID [DEST]",
		Short: "Download a file to DEST or to a new temporary file and print its path",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var dest string
			if len(args) == 2 {
				dest = args[1]
			}
			return withDrive(cmd, func(c *drive.Client) error {
				path, err := c.DownloadFile(cmd.Context(), args[0], dest)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
				return nil
			})
		},
	})

	var upload drive.UploadOptions
	uploadCmd := &cobra.Command{
		Use:   "upload PATH FOLDER_ID",
		Short: "Upload a local file into a folder",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDrive(cmd, func(c *drive.Client) error {
				file, err := c.UploadFileToFolder(cmd.Context(), args[0], args[1], &upload)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), file)
			})
		},
	}
	uploadCmd.Flags().StringVar(&upload.Name, "name", "", "Name of the file in Drive (default: base name of PATH)")
	uploadCmd.Flags().StringVar(&upload.MimeType, "mime-type", "", "MIME type of the file (default: "+drive.DefaultUploadMimeType+")")
	cmd.AddCommand(uploadCmd)

	var concurrency int
	deleteCmd := &cobra.Command{
		Use:   "delete FILE_ID...",
		Short: "Permanently delete files or folders",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDrive(cmd, func(c *drive.Client) error {
				results := batch.ProcessBatch(cmd.Context(), args, concurrency, func(ctx context.Context, id string) (string, error) {
					if err := c.DeleteFile(ctx, id); err != nil {
						return "", err
					}
					return "deleted", nil
				})
				summary := batch.Summarize(results)
				if err := printJSON(cmd.OutOrStdout(), summary); err != nil {
					return err
				}
				if summary.Failed > 0 {
					return fmt.Errorf("%d of %d deletions failed", summary.Failed, summary.Total)
				}
				return nil
			})
		},
	}
	deleteCmd.Flags().IntVar(&concurrency, "concurrency", batch.DefaultConcurrency, "Number of deletions run in parallel")
	cmd.AddCommand(deleteCmd)

	return cmd
}
