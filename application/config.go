// Package application implements the SharePoint source connector: the
// indexer and downloader roles, their configuration types, and the
// registry entry that makes them discoverable by connector name.
package application

import (
	"context"
	"fmt"

	"github.com/koltyakov/gosip/api"

	"spingest/domain/pipeline"
	"spingest/infrastructure/graphclient"
	"spingest/infrastructure/spclient"
	"spingest/spauth"
)

// ConnectorType identifies this source in registry entries and records.
const ConnectorType = "sharepoint"

// PermissionsConfig is the independent Microsoft Graph credential set for
// permission enrichment. Enrichment is strictly opt-in: a nil or
// incomplete PermissionsConfig disables it without affecting enumeration.
type PermissionsConfig struct {
	ApplicationID string
	Tenant        string
	ClientSecret  string
	AuthorityURL  string
}

// Enabled reports whether the credential set is complete enough to run
// enrichment.
func (p *PermissionsConfig) Enabled() bool {
	return p != nil && p.ApplicationID != "" && p.Tenant != "" && p.ClientSecret != ""
}

// ConnectionConfig holds the SharePoint site credentials plus the optional
// permissions credential set.
type ConnectionConfig struct {
	ClientID     string
	Site         string
	ClientSecret string
	Permissions  *PermissionsConfig
}

var _ pipeline.ConnectionConfig = ConnectionConfig{}

// Validate reports missing required fields.
func (c ConnectionConfig) Validate() error {
	return spauth.Config{
		SiteURL:      c.Site,
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
	}.Validate()
}

// siteClient builds an authenticated SharePoint session.
func (c ConnectionConfig) siteClient() (spclient.SiteClient, error) {
	client, err := spauth.NewClient(spauth.Config{
		SiteURL:      c.Site,
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
	})
	if err != nil {
		return nil, fmt.Errorf("set up sharepoint client: %w", err)
	}
	return spclient.NewSiteClient(api.NewSP(client), client), nil
}

// permissionsClient builds the Graph session when permissions are
// configured. An absent configuration yields (nil, nil): no permissions
// session rather than an error.
func (c ConnectionConfig) permissionsClient(ctx context.Context) (graphclient.PermissionsClient, error) {
	if !c.Permissions.Enabled() {
		return nil, nil
	}
	token, err := spauth.NewGraphTokenSource(ctx, spauth.GraphConfig{
		Tenant:        c.Permissions.Tenant,
		ApplicationID: c.Permissions.ApplicationID,
		ClientSecret:  c.Permissions.ClientSecret,
		AuthorityURL:  c.Permissions.AuthorityURL,
	})
	if err != nil {
		return nil, fmt.Errorf("set up permissions credentials: %w", err)
	}
	return graphclient.NewClient("", nil, token), nil
}

// IndexerConfig holds the enumeration options.
type IndexerConfig struct {
	// Path is the server-relative folder to start from. Empty means the
	// default document library root.
	Path      string
	Recursive bool
	OmitFiles bool
	OmitPages bool
	OmitLists bool
}

var _ pipeline.IndexerConfig = IndexerConfig{}

// Validate implements pipeline.IndexerConfig.
func (c IndexerConfig) Validate() error { return nil }

// DownloaderConfig holds the retrieval options.
type DownloaderConfig struct {
	// DownloadDir is the local directory downloaded content is written
	// under, mirroring each record's relative path.
	DownloadDir string
}

var _ pipeline.DownloaderConfig = DownloaderConfig{}

// Validate implements pipeline.DownloaderConfig.
func (c DownloaderConfig) Validate() error {
	if c.DownloadDir == "" {
		return fmt.Errorf("download directory is required")
	}
	return nil
}
