package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/teemow/gdrivehelper/internal/logging"
	"github.com/teemow/gdrivehelper/pkg/google"
)

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Import and export stored OAuth tokens",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "import FILE",
		Short: "Validate a token JSON file (or - for stdin) and store it for the account",
		Long: `Validate a token JSON file and store it for the account selected with --account.

The file holds access_token, refresh_token, token_uri, client_id, client_secret,
scopes (or scope) and optionally expiry (or expires_at). An expired access token
is refreshed before it is stored. --scopes fills in the scopes when the file
has none.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			fields, err := withScopes(data, globals.scopeList())
			if err != nil {
				return err
			}

			store, err := globals.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			cfg := google.NewClientConfig(globals.clientOptions()...)
			creds, err := cfg.Credentials(cmd.Context(), fields)
			if err != nil {
				return err
			}
			if err := store.Save(cmd.Context(), globals.account, creds); err != nil {
				return err
			}

			globals.logger.Info("imported token",
				logging.Account(globals.account),
				"access_token", logging.SanitizeToken(creds.AccessToken))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "export [FILE]",
		Short: "Write the stored token of the account as JSON to FILE or stdout",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := globals.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			creds, err := store.Latest(cmd.Context(), globals.account)
			if err != nil {
				return err
			}
			exported := google.ExportCredentials(creds)

			if len(args) == 0 || args[0] == "-" {
				return printJSON(cmd.OutOrStdout(), exported)
			}
			data, err := json.MarshalIndent(exported, "", "  ")
			if err != nil {
				return err
			}
			return os.WriteFile(args[0], append(data, '\n'), 0o600)
		},
	})

	return cmd
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// withScopes decodes a token JSON object and sets its scopes when it carries
// neither scopes nor scope.
func withScopes(data []byte, scopes []string) (map[string]any, error) {
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("token must be a JSON object: %w", err)
	}
	if len(scopes) == 0 {
		return fields, nil
	}
	if isUnset(fields["scopes"]) && isUnset(fields["scope"]) {
		fields["scopes"] = scopes
	}
	return fields, nil
}

func isUnset(v any) bool {
	switch v := v.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []any:
		return len(v) == 0
	}
	return false
}
