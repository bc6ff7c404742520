// Package logging provides structured logging utilities for gdrivehelper.
//
// All packages log through log/slog. This package keeps attribute names
// consistent across the Drive, Docs and Sheets clients, the CLI and the MCP
// server, and builds the process-wide handler from CLI flags.
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithAccount(slog.Default(), "work")
//	logger.Info("table updated",
//	    logging.Service("sheets"),
//	    logging.ResourceID(spreadsheetID),
//	    logging.Status(logging.StatusSuccess))
//
// Never log credentials directly:
//
//	logger.Debug("token refreshed", slog.String("access_token", logging.SanitizeToken(tok)))
package logging
