package common

import (
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/gdrivehelper/internal/tokenstore"
)

// AccountParam is the optional account argument shared by every tool.
func AccountParam() mcp.ToolOption {
	return mcp.WithString("account",
		mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
	)
}

// GetAccountFromArgs returns the explicit "account" argument, or the
// default account when none is given.
func GetAccountFromArgs(args map[string]any) string {
	if accountVal, ok := args["account"].(string); ok && accountVal != "" {
		return accountVal
	}
	return tokenstore.DefaultAccount
}

// ResolveAccount returns the account of a request after validating its name.
func ResolveAccount(args map[string]any) (string, error) {
	account := GetAccountFromArgs(args)
	if err := tokenstore.ValidateAccountName(account); err != nil {
		return "", fmt.Errorf("invalid account: %w", err)
	}
	return account, nil
}
