package cmd

import (
	"context"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/teemow/gdrivehelper/internal/server"
	"github.com/teemow/gdrivehelper/internal/tokenstore"
)

func newGenerateDocsCmd() *cobra.Command {
	var outputFile string

	cmd := &cobra.Command{
		Use:   "generate-docs",
		Short: "Generate MCP tool documentation",
		Long: `Generate markdown documentation for all available MCP tools.
This command introspects the registered tools and outputs their documentation
in markdown format, so the documentation always matches the tool definitions.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			markdown, err := toolsMarkdown()
			if err != nil {
				return err
			}
			if outputFile == "" {
				_, err := fmt.Fprint(cmd.OutOrStdout(), markdown)
				return err
			}
			if err := os.WriteFile(outputFile, []byte(markdown), 0o644); err != nil {
				return fmt.Errorf("failed to write output file: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Documentation written to: %s\n", outputFile)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

// toolsMarkdown registers every tool, including write tools, on a throwaway
// server and renders their definitions. No credentials are loaded.
func toolsMarkdown() (string, error) {
	dir, err := os.MkdirTemp("", "gdrivehelper-docs-*")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(dir)

	serverContext, err := server.NewServerContext(context.Background(), tokenstore.NewFileStore(filepath.Join(dir, "token.json")))
	if err != nil {
		return "", fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		_ = serverContext.Shutdown()
	}()

	mcpSrv := mcpserver.NewMCPServer("gdrivehelper", version,
		mcpserver.WithToolCapabilities(true),
	)
	if err := registerAllTools(mcpSrv, serverContext, false); err != nil {
		return "", err
	}

	serverTools := mcpSrv.ListTools()
	tools := make([]mcp.Tool, 0, len(serverTools))
	for _, serverTool := range serverTools {
		tools = append(tools, serverTool.Tool)
	}

	return generateToolsMarkdown(tools), nil
}

// toolCategories maps a tool name prefix to its section heading.
var toolCategories = map[string]string{
	"docs":   "Google Docs Tools",
	"drive":  "Google Drive Tools",
	"sheets": "Google Sheets Tools",
}

func generateToolsMarkdown(tools []mcp.Tool) string {
	var sb strings.Builder

	sb.WriteString("# MCP Tools Reference\n\n")
	sb.WriteString("This document provides a complete reference of all tools available when running gdrivehelper as an MCP server.\n\n")
	sb.WriteString("**Note:** This documentation is automatically generated from the tool definitions.\n\n")

	toolsByCategory := make(map[string][]mcp.Tool)
	for _, tool := range tools {
		category := getCategoryFromToolName(tool.Name)
		toolsByCategory[category] = append(toolsByCategory[category], tool)
	}
	categories := slices.Sorted(maps.Keys(toolsByCategory))

	sb.WriteString("## Table of Contents\n\n")
	for _, category := range categories {
		anchor := strings.ToLower(strings.ReplaceAll(category, " ", "-"))
		fmt.Fprintf(&sb, "- [%s](#%s)\n", category, anchor)
	}
	sb.WriteString("\n")

	sb.WriteString("## Multi-Account Support\n\n")
	sb.WriteString("Every tool accepts an optional `account` argument naming the stored token to use. ")
	sb.WriteString("Without it the `default` account is used. Tokens are imported with `gdrivehelper token import`. ")
	sb.WriteString("The resource `account://{account}/token` reports the scopes and expiry of a stored token.\n\n")
	sb.WriteString("Write tools (uploads, deletions, document creation and sheet updates) are only registered when the server runs with `--yolo`.\n\n")

	for _, category := range categories {
		categoryTools := toolsByCategory[category]
		slices.SortFunc(categoryTools, func(a, b mcp.Tool) int {
			return strings.Compare(a.Name, b.Name)
		})

		fmt.Fprintf(&sb, "## %s\n\n", category)
		for _, tool := range categoryTools {
			writeToolMarkdown(&sb, tool)
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

func getCategoryFromToolName(name string) string {
	prefix, _, _ := strings.Cut(name, "_")
	if category, ok := toolCategories[prefix]; ok {
		return category
	}
	return "Other"
}

func writeToolMarkdown(sb *strings.Builder, tool mcp.Tool) {
	fmt.Fprintf(sb, "### %s\n\n", tool.Name)
	if tool.Description != "" {
		fmt.Fprintf(sb, "%s\n\n", tool.Description)
	}
	if len(tool.InputSchema.Properties) == 0 {
		return
	}

	sb.WriteString("**Arguments:**\n")
	for _, name := range slices.Sorted(maps.Keys(tool.InputSchema.Properties)) {
		prop, ok := tool.InputSchema.Properties[name].(map[string]any)
		if !ok {
			continue
		}

		requirement := "optional"
		if slices.Contains(tool.InputSchema.Required, name) {
			requirement = "required"
		}
		fmt.Fprintf(sb, "- `%s` (%s, %s): ", name, propertyType(prop), requirement)

		if desc, ok := prop["description"].(string); ok {
			sb.WriteString(desc)
		}
		if values := enumValues(prop); len(values) > 0 {
			fmt.Fprintf(sb, " One of: `%s`.", strings.Join(values, "`, `"))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
}

func propertyType(prop map[string]any) string {
	if t, ok := prop["type"].(string); ok {
		return t
	}
	return "any"
}

func enumValues(prop map[string]any) []string {
	switch values := prop["enum"].(type) {
	case []string:
		return values
	case []any:
		out := make([]string, 0, len(values))
		for _, v := range values {
			out = append(out, fmt.Sprint(v))
		}
		return out
	}
	return nil
}
