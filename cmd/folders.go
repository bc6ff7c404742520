package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/teemow/gdrivehelper/pkg/drive"
)

// evalFolderEnv names the folder used when list commands get no folder ID.
const evalFolderEnv = "EVAL_FOLDER_ID"

func newFoldersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "folders",
		Short: "List, create and rename Google Drive folders",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list [FOLDER_ID]",
		Short: "List the folders inside a folder (default: $EVAL_FOLDER_ID)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			folderID, err := argOrEnv(args, 0, evalFolderEnv)
			if err != nil {
				return err
			}
			return withDrive(cmd, func(c *drive.Client) error {
				folders, err := c.ListFolders(cmd.Context(), folderID)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), folders)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "all",
		Short: "List every folder the account can access",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDrive(cmd, func(c *drive.Client) error {
				folders, err := c.ListAllFolders(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), folders)
			})
		},
	})

	var parents []string
	createCmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDrive(cmd, func(c *drive.Client) error {
				folder, err := c.CreateFolder(cmd.Context(), args[0], parents)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), folder)
			})
		},
	}
	createCmd.Flags().StringSliceVar(&parents, "parent", nil, "Parent folder ID (repeatable; default: My Drive)")
	cmd.AddCommand(createCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "rename FOLDER_ID NAME...",
		Short: "Rename a folder; the remaining arguments form the new name",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			newName := strings.Join(args[1:], " ")
			return withDrive(cmd, func(c *drive.Client) error {
				folder, err := c.RenameFolder(cmd.Context(), args[0], newName)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), folder)
			})
		},
	})

	return cmd
}

func withDrive(cmd *cobra.Command, fn func(c *drive.Client) error) error {
	return withSession(cmd.Context(), func(s *session) error {
		c, err := s.drive(cmd.Context())
		if err != nil {
			return err
		}
		return fn(c)
	})
}
