package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/teemow/gdrivehelper/internal/logging"
	"github.com/teemow/gdrivehelper/internal/tokenstore"
)

// rootCmd represents the base command for the gdrivehelper application
var rootCmd = &cobra.Command{
	Use:   "gdrivehelper",
	Short: "Work with Google Drive folders, Docs and Sheets tables",
	Long: `gdrivehelper lists, uploads, downloads and organizes files in Google Drive,
creates Google Docs and writes rows into Google Sheets tables using stored
OAuth credentials.

It can run as:
  - A standalone CLI tool
  - An MCP (Model Context Protocol) server for AI assistants`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return globals.resolve(cmd)
	},
}

// version will be set by main
var version = "dev"

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	account     string
	tokenPath   string
	tokenStore  string
	databaseURL string
	scopes      string
	debug       bool
	logFormat   string

	logger *slog.Logger
}

var globals = &globalOptions{}

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "gdrivehelper version %s\n" .Version}}`)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&globals.account, "account", tokenstore.DefaultAccount, "Account whose stored token is used. Can also use GDRIVEHELPER_ACCOUNT env var.")
	flags.StringVar(&globals.tokenPath, "token-path", "", "Token file of the file store (default: per-account file in the user cache directory). Can also use GDRIVEHELPER_TOKEN_PATH env var.")
	flags.StringVar(&globals.tokenStore, "token-store", tokenstore.BackendFile, "Token store backend: file or postgres. Can also use GDRIVEHELPER_TOKEN_STORE env var.")
	flags.StringVar(&globals.databaseURL, "database-url", "", "PostgreSQL connection string of the postgres token store. Can also use DATABASE_URL env var.")
	flags.StringVar(&globals.scopes, "scopes", "", "Space- or comma-separated scopes used when the stored token carries none. Can also use SCOPES env var.")
	flags.BoolVar(&globals.debug, "debug", false, "Enable debug logging")
	flags.StringVar(&globals.logFormat, "log-format", logging.FormatText, "Log format: text or json")

	rootCmd.AddCommand(newFoldersCmd())
	rootCmd.AddCommand(newFilesCmd())
	rootCmd.AddCommand(newDocsCmd())
	rootCmd.AddCommand(newSheetsCmd())
	rootCmd.AddCommand(newTablesCmd())
	rootCmd.AddCommand(newTokenCmd())
	rootCmd.AddCommand(newSmokeCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
	rootCmd.AddCommand(newVersionCmd())
}

// resolve applies environment fallbacks for flags that were not set and
// configures the logger. Logs always go to stderr so stdout stays usable
// for command output and the stdio transport.
func (g *globalOptions) resolve(cmd *cobra.Command) error {
	envFallback(cmd, "account", "GDRIVEHELPER_ACCOUNT", &g.account)
	envFallback(cmd, "token-path", "GDRIVEHELPER_TOKEN_PATH", &g.tokenPath)
	envFallback(cmd, "token-store", "GDRIVEHELPER_TOKEN_STORE", &g.tokenStore)
	envFallback(cmd, "database-url", "DATABASE_URL", &g.databaseURL)
	envFallback(cmd, "scopes", "SCOPES", &g.scopes)

	if err := tokenstore.ValidateAccountName(g.account); err != nil {
		return err
	}

	logger, err := logging.NewLogger(os.Stderr, g.logFormat, g.debug)
	if err != nil {
		return err
	}
	g.logger = logger
	slog.SetDefault(logger)
	return nil
}

// scopeList splits the --scopes value on spaces and commas.
func (g *globalOptions) scopeList() []string {
	return strings.FieldsFunc(g.scopes, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t' || r == '\n'
	})
}

// envFallback sets *dst from the environment variable when the flag was
// not given on the command line.
func envFallback(cmd *cobra.Command, flag, env string, dst *string) {
	if cmd.Flags().Changed(flag) {
		return
	}
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

// argOrEnv returns args[i] when present, otherwise the value of env.
func argOrEnv(args []string, i int, env string) (string, error) {
	if len(args) > i && args[i] != "" {
		return args[i], nil
	}
	if v := os.Getenv(env); v != "" {
		return v, nil
	}
	return "", fmt.Errorf("argument missing and %s is not set", env)
}
