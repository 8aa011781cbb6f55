package spclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"spingest/domain/sharepoint"
	"spingest/logging"

	"github.com/koltyakov/gosip"
	"github.com/koltyakov/gosip/api"
)

// ErrFolderNotFound indicates a server-relative folder path that does not
// exist on the site.
var ErrFolderNotFound = errors.New("folder not found")

// SiteClient abstracts the SharePoint REST operations the connector needs:
// resolving folders, listing files and pages, and fetching file content.
// It narrows the SDK surface to expand-and-fetch, list-children and
// read-property capabilities so callers never touch raw SDK handles.
type SiteClient interface {
	// Site Operations
	GetWeb(ctx context.Context) (*sharepoint.Web, error)
	SiteURL() string

	// Folder Operations
	GetFolder(ctx context.Context, serverRelativePath string) (*sharepoint.Folder, error)
	GetDefaultLibraryRoot(ctx context.Context) (*sharepoint.Folder, error)
	ListFolderContents(ctx context.Context, serverRelativePath string) ([]*sharepoint.File, []*sharepoint.Folder, error)

	// Page Operations
	ListSitePages(ctx context.Context) ([]*sharepoint.SitePage, error)

	// Content Operations
	DownloadFileByID(ctx context.Context, uniqueID string) ([]byte, error)
}

// SharePoint OData field selectors for consistent API queries
const (
	WebFields    = `Id,Title,Url`
	FolderFields = `Name,ServerRelativeUrl,ItemCount,Exists`
)

// SiteClientImpl wraps the Gosip API client. The Gosip typed API covers
// web and folder operations; endpoints Gosip does not wrap (site pages,
// default document library, file content) go through its HTTP client.
type SiteClientImpl struct {
	gosipAPI      *api.SP
	authClient    *gosip.SPClient
	defaultConfig *api.RequestConfig
	logger        *logging.Logger
}

// NewSiteClient creates a SharePoint site client from an authenticated
// gosip client.
func NewSiteClient(gosipAPI *api.SP, authClient *gosip.SPClient) SiteClient {
	return &SiteClientImpl{
		gosipAPI:      gosipAPI,
		authClient:    authClient,
		defaultConfig: &api.RequestConfig{},
		logger:        logging.Default().WithComponent("sharepoint_client"),
	}
}

// createRequestConfig creates a RequestConfig with the provided context,
// inheriting default configuration.
func (c *SiteClientImpl) createRequestConfig(ctx context.Context) *api.RequestConfig {
	config := *c.defaultConfig
	config.Context = ctx
	return &config
}

// SiteURL returns the configured site URL without a trailing slash.
func (c *SiteClientImpl) SiteURL() string {
	return strings.TrimRight(c.authClient.AuthCnfg.GetSiteURL(), "/")
}

// GetWeb retrieves basic web metadata. This is also the connectivity
// probe: an authentication failure surfaces here.
func (c *SiteClientImpl) GetWeb(ctx context.Context) (*sharepoint.Web, error) {
	sp := c.gosipAPI.Conf(c.createRequestConfig(ctx))
	res, err := sp.Web().Select(WebFields).Get()
	if err != nil {
		return nil, fmt.Errorf("get web: %w", err)
	}

	var wj webJSON
	if err := json.Unmarshal(res.Normalized(), &wj); err != nil {
		return nil, fmt.Errorf("decode web: %w", err)
	}

	return &sharepoint.Web{
		ID:    wj.Id,
		URL:   wj.Url,
		Title: wj.Title,
	}, nil
}

// GetFolder resolves a server-relative folder path. Returns
// ErrFolderNotFound when the path is absent on the server.
func (c *SiteClientImpl) GetFolder(ctx context.Context, serverRelativePath string) (*sharepoint.Folder, error) {
	sp := c.gosipAPI.Conf(c.createRequestConfig(ctx))
	res, err := sp.Web().GetFolder(serverRelativePath).Select(FolderFields).Get()
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("folder %q: %w", serverRelativePath, ErrFolderNotFound)
		}
		return nil, fmt.Errorf("get folder %q: %w", serverRelativePath, err)
	}

	var fj folderJSON
	if err := json.Unmarshal(res.Normalized(), &fj); err != nil {
		return nil, fmt.Errorf("decode folder: %w", err)
	}
	if fj.Exists != nil && !*fj.Exists {
		return nil, fmt.Errorf("folder %q: %w", serverRelativePath, ErrFolderNotFound)
	}

	return &sharepoint.Folder{
		Name:              fj.Name,
		ServerRelativeURL: fj.ServerRelativeUrl,
		ItemCount:         fj.ItemCount,
	}, nil
}

// GetDefaultLibraryRoot resolves the root folder of the site's default
// document library. Gosip has no wrapper for DefaultDocumentLibrary, so
// this goes through the HTTP client directly.
func (c *SiteClientImpl) GetDefaultLibraryRoot(ctx context.Context) (*sharepoint.Folder, error) {
	httpClient := api.NewHTTPClient(c.authClient)
	endpoint := fmt.Sprintf(
		"%s/_api/Web/DefaultDocumentLibrary/RootFolder?$select=Name,ServerRelativeUrl,ItemCount",
		c.SiteURL(),
	)

	data, err := httpClient.Get(endpoint, c.createRequestConfig(ctx))
	if err != nil {
		return nil, fmt.Errorf("get default library root: %w", err)
	}

	obj, err := decodeObject(data)
	if err != nil {
		return nil, fmt.Errorf("decode default library root: %w", err)
	}
	return mapFolder(obj)
}

// ListFolderContents lists the files and child folders directly under a
// folder. Files keep their complete property map for metadata mapping.
func (c *SiteClientImpl) ListFolderContents(ctx context.Context, serverRelativePath string) ([]*sharepoint.File, []*sharepoint.Folder, error) {
	sp := c.gosipAPI.Conf(c.createRequestConfig(ctx))
	folder := sp.Web().GetFolder(serverRelativePath)

	filesRes, err := folder.Files().Get()
	if err != nil {
		return nil, nil, fmt.Errorf("list files in %q: %w", serverRelativePath, err)
	}
	rawFiles, _, err := decodeCollection(filesRes.Normalized())
	if err != nil {
		return nil, nil, fmt.Errorf("decode files in %q: %w", serverRelativePath, err)
	}
	files := make([]*sharepoint.File, 0, len(rawFiles))
	for _, raw := range rawFiles {
		f, err := mapFile(raw)
		if err != nil {
			return nil, nil, fmt.Errorf("decode file in %q: %w", serverRelativePath, err)
		}
		files = append(files, f)
	}

	foldersRes, err := folder.Folders().Get()
	if err != nil {
		return nil, nil, fmt.Errorf("list folders in %q: %w", serverRelativePath, err)
	}
	rawFolders, _, err := decodeCollection(foldersRes.Normalized())
	if err != nil {
		return nil, nil, fmt.Errorf("decode folders in %q: %w", serverRelativePath, err)
	}
	folders := make([]*sharepoint.Folder, 0, len(rawFolders))
	for _, raw := range rawFolders {
		f, err := mapFolder(raw)
		if err != nil {
			return nil, nil, fmt.Errorf("decode folder in %q: %w", serverRelativePath, err)
		}
		folders = append(folders, f)
	}

	c.logger.SharePoint("listed folder contents",
		"path", serverRelativePath, "files", len(files), "folders", len(folders))

	return files, folders, nil
}

// ListSitePages returns all site pages, following pagination links if the
// server pages the collection. The SitePages API is not wrapped by Gosip.
func (c *SiteClientImpl) ListSitePages(ctx context.Context) ([]*sharepoint.SitePage, error) {
	httpClient := api.NewHTTPClient(c.authClient)
	endpoint := fmt.Sprintf("%s/_api/sitepages/pages", c.SiteURL())

	var pages []*sharepoint.SitePage
	for endpoint != "" {
		data, err := httpClient.Get(endpoint, c.createRequestConfig(ctx))
		if err != nil {
			return nil, fmt.Errorf("list site pages: %w", err)
		}

		raws, next, err := decodeCollection(data)
		if err != nil {
			return nil, fmt.Errorf("decode site pages: %w", err)
		}
		for _, raw := range raws {
			page, err := mapSitePage(raw)
			if err != nil {
				return nil, fmt.Errorf("decode site page: %w", err)
			}
			pages = append(pages, page)
		}
		endpoint = next
	}

	c.logger.SharePoint("listed site pages", "count", len(pages))
	return pages, nil
}

// DownloadFileByID fetches a file's content by its UniqueId through the
// GetFileById $value endpoint.
func (c *SiteClientImpl) DownloadFileByID(ctx context.Context, uniqueID string) ([]byte, error) {
	httpClient := api.NewHTTPClient(c.authClient)
	endpoint := fmt.Sprintf(
		"%s/_api/Web/GetFileById(guid'%s')/$value",
		c.SiteURL(), uniqueID,
	)

	data, err := httpClient.Get(endpoint, c.createRequestConfig(ctx))
	if err != nil {
		return nil, fmt.Errorf("download file %s: %w", uniqueID, err)
	}
	return data, nil
}

// isNotFound reports whether a gosip error represents a missing resource.
func isNotFound(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "404") || strings.Contains(msg, "does not exist")
}
