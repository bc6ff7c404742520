package resources

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/gdrivehelper/internal/server"
	"github.com/teemow/gdrivehelper/internal/tokenstore"
)

const (
	accountURIPrefix = "account://"
	tokenURISuffix   = "/token"
)

// TokenStatus describes a stored token without its secrets.
type TokenStatus struct {
	Account         string     `json:"account"`
	Scopes          []string   `json:"scopes"`
	Expiry          *time.Time `json:"expiry,omitempty"`
	Expired         bool       `json:"expired"`
	HasRefreshToken bool       `json:"hasRefreshToken"`
	ClientID        string     `json:"clientId"`
	TokenURI        string     `json:"tokenUri"`
}

// RegisterAccountResources registers the token status resources.
func RegisterAccountResources(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	defaultResource := mcp.NewResource(
		TokenURI(tokenstore.DefaultAccount),
		"Default Account Token",
		mcp.WithResourceDescription("Scopes and expiry of the token stored for the default account"),
		mcp.WithMIMEType("application/json"),
	)
	s.AddResource(defaultResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleTokenStatus(ctx, request, sc)
	})

	template := mcp.NewResourceTemplate(
		accountURIPrefix+"{account}"+tokenURISuffix,
		"Account Token",
		mcp.WithTemplateDescription("Scopes and expiry of the token stored for an account"),
		mcp.WithTemplateMIMEType("application/json"),
	)
	s.AddResourceTemplate(template, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleTokenStatus(ctx, request, sc)
	})

	return nil
}

// TokenURI returns the resource URI of an account's token status.
func TokenURI(account string) string {
	return accountURIPrefix + account + tokenURISuffix
}

// accountFromURI extracts the account name from account://{account}/token.
func accountFromURI(uri string) (string, error) {
	rest, ok := strings.CutPrefix(uri, accountURIPrefix)
	if !ok {
		return "", fmt.Errorf("unsupported resource URI: %s", uri)
	}
	account, ok := strings.CutSuffix(rest, tokenURISuffix)
	if !ok {
		return "", fmt.Errorf("unsupported resource URI: %s", uri)
	}
	if err := tokenstore.ValidateAccountName(account); err != nil {
		return "", err
	}
	return account, nil
}

func handleTokenStatus(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	account, err := accountFromURI(request.Params.URI)
	if err != nil {
		return nil, err
	}

	creds, err := sc.Store().Latest(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("failed to read token for account %s: %w", account, err)
	}

	status := TokenStatus{
		Account:         account,
		Scopes:          creds.Scopes,
		Expiry:          creds.Expiry,
		Expired:         creds.Expired(),
		HasRefreshToken: creds.RefreshToken != "",
		ClientID:        creds.ClientID,
		TokenURI:        creds.TokenURI,
	}

	jsonData, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal token status: %w", err)
	}

	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(jsonData),
		},
	}, nil
}
