package spauth

import (
	"context"
	"fmt"

	"github.com/koltyakov/gosip"
	"github.com/koltyakov/gosip/auth/addin"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// DefaultAuthorityURL is the login authority used for Graph token
// acquisition when none is configured.
const DefaultAuthorityURL = "https://login.microsoftonline.com"

// graphScope is the resource-default scope for client-credential Graph
// access.
const graphScope = "https://graph.microsoft.com/.default"

// Config holds the app-only credentials for a SharePoint site session.
type Config struct {
	SiteURL      string
	ClientID     string
	ClientSecret string
}

// Validate reports missing required fields.
func (c Config) Validate() error {
	if c.SiteURL == "" || c.ClientID == "" || c.ClientSecret == "" {
		return fmt.Errorf("missing required configuration: site URL, client ID, client secret")
	}
	return nil
}

// NewClient builds an authenticated gosip client for the site using the
// AddIn (client credential) strategy.
func NewClient(cfg Config) (*gosip.SPClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	ac := &addin.AuthCnfg{
		SiteURL:      cfg.SiteURL,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
	}
	return &gosip.SPClient{AuthCnfg: ac}, nil
}

// GraphConfig holds the independent credential set for the Microsoft Graph
// permissions session.
type GraphConfig struct {
	Tenant        string
	ApplicationID string
	ClientSecret  string
	AuthorityURL  string
}

// Validate reports missing required fields.
func (c GraphConfig) Validate() error {
	if c.Tenant == "" || c.ApplicationID == "" || c.ClientSecret == "" {
		return fmt.Errorf("missing required permissions configuration: tenant, application ID, client secret")
	}
	return nil
}

// GraphTokenSource yields bearer tokens for Graph requests. It wraps an
// oauth2 client-credentials token source, so tokens are cached and
// refreshed automatically.
type GraphTokenSource struct {
	src oauth2.TokenSource
}

// NewGraphTokenSource builds a token source from the Graph credential set.
// The credential exchange itself is deferred to the first Token call.
func NewGraphTokenSource(ctx context.Context, cfg GraphConfig) (*GraphTokenSource, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	authority := cfg.AuthorityURL
	if authority == "" {
		authority = DefaultAuthorityURL
	}
	cc := &clientcredentials.Config{
		ClientID:     cfg.ApplicationID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     fmt.Sprintf("%s/%s/oauth2/v2.0/token", authority, cfg.Tenant),
		Scopes:       []string{graphScope},
	}
	return &GraphTokenSource{src: cc.TokenSource(ctx)}, nil
}

// Token returns a valid bearer token, exchanging credentials if needed.
func (t *GraphTokenSource) Token() (string, error) {
	tok, err := t.src.Token()
	if err != nil {
		return "", fmt.Errorf("acquire graph token: %w", err)
	}
	return tok.AccessToken, nil
}
