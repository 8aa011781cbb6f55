package application

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"spingest/domain/pipeline"
	"spingest/domain/sharepoint"
	"spingest/infrastructure/graphclient"
	"spingest/infrastructure/spclient"
	"spingest/logging"
)

// reservedFolderSegment marks SharePoint system folders (forms/template
// folders) that recursive enumeration must skip.
const reservedFolderSegment = "/Forms"

// Indexer enumerates a SharePoint site: documents from a folder tree and
// site pages, mapped into canonical records and optionally enriched with
// Graph permission metadata. One Indexer instance must not be run
// concurrently; each Run re-authenticates and re-walks the site.
type Indexer struct {
	conn   ConnectionConfig
	cfg    IndexerConfig
	logger *logging.Logger

	// Session factories. Tests substitute fakes here; production code
	// uses the config-derived defaults.
	siteClient  func() (spclient.SiteClient, error)
	graphClient func(ctx context.Context) (graphclient.PermissionsClient, error)

	now func() time.Time
}

var _ pipeline.Indexer = (*Indexer)(nil)

// NewIndexer creates an indexer for the configured site.
func NewIndexer(conn ConnectionConfig, cfg IndexerConfig) *Indexer {
	return &Indexer{
		conn:        conn,
		cfg:         cfg,
		logger:      logging.Default().WithComponent("sharepoint_indexer"),
		siteClient:  conn.siteClient,
		graphClient: conn.permissionsClient,
		now:         time.Now,
	}
}

// Precheck validates connectivity by fetching web metadata. Failures are
// connection errors, fatal for the run.
func (ix *Indexer) Precheck(ctx context.Context) error {
	sc, err := ix.siteClient()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	if _, err := sc.GetWeb(ctx); err != nil {
		ix.logger.Error("failed to validate connection", "site", ix.conn.Site, "error", err.Error())
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	return nil
}

// Run enumerates the site and yields records one at a time. File records
// are collected (and enriched) as a batch before any is emitted; page
// records stream as they are mapped. The records channel closes when the
// walk finishes; a fatal error arrives on the error channel first.
func (ix *Indexer) Run(ctx context.Context) (<-chan pipeline.FileData, <-chan error) {
	records := make(chan pipeline.FileData)
	errs := make(chan error, 1)

	go func() {
		defer close(records)
		if err := ix.run(ctx, records); err != nil {
			errs <- err
		}
	}()

	return records, errs
}

func (ix *Indexer) run(ctx context.Context, records chan<- pipeline.FileData) error {
	sc, err := ix.siteClient()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	siteURL := sc.SiteURL()

	root, rootPath, err := ix.resolveRoot(ctx, sc)
	if err != nil {
		return err
	}
	ix.logger.Indexing("processing site content", siteURL, "path", rootPath, "recursive", ix.cfg.Recursive)

	if !ix.cfg.OmitFiles {
		// Collect phase: files materialize as one batch so enrichment
		// can cross-reference the full set against drive items.
		files, err := ix.listFiles(ctx, sc, root, ix.cfg.Recursive)
		if err != nil {
			return err
		}
		batch := make([]*pipeline.FileData, 0, len(files))
		for _, file := range files {
			fd := ix.fileToFileData(file, siteURL, rootPath)
			batch = append(batch, &fd)
		}
		if ix.conn.Permissions.Enabled() {
			web, err := sc.GetWeb(ctx)
			if err != nil {
				return fmt.Errorf("get site url: %w", err)
			}
			if err := ix.enrichPermissions(ctx, batch, web.URL); err != nil {
				return err
			}
		}

		// Emit phase.
		for _, fd := range batch {
			select {
			case records <- *fd:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	if !ix.cfg.OmitPages {
		pages, err := sc.ListSitePages(ctx)
		if err != nil {
			return err
		}
		for _, page := range pages {
			fd := ix.pageToFileData(page, siteURL, rootPath)
			select {
			case records <- fd:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	return nil
}

// resolveRoot resolves the enumeration root folder and returns the
// effective path explicitly; relative-path computation for the whole run
// derives from the returned value, never from mutated configuration.
func (ix *Indexer) resolveRoot(ctx context.Context, sc spclient.SiteClient) (*sharepoint.Folder, string, error) {
	if ix.cfg.Path != "" {
		folder, err := sc.GetFolder(ctx, ix.cfg.Path)
		if err != nil {
			return nil, "", err
		}
		return folder, ix.cfg.Path, nil
	}

	root, err := sc.GetDefaultLibraryRoot(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("resolve default document library: %w", err)
	}
	return root, root.Name, nil
}

// listFiles lists files under folder. Non-recursive calls return only the
// folder's direct files; recursive calls descend depth-first, skipping
// reserved system folders, and accumulate one flat slice. Traversal is
// strictly top-down so no folder is visited twice.
func (ix *Indexer) listFiles(ctx context.Context, sc spclient.SiteClient, folder *sharepoint.Folder, recursive bool) ([]*sharepoint.File, error) {
	files, children, err := sc.ListFolderContents(ctx, folder.ServerRelativeURL)
	if err != nil {
		return nil, err
	}
	if !recursive {
		return files, nil
	}

	for _, child := range children {
		if strings.Contains(child.ServerRelativeURL, reservedFolderSegment) {
			continue
		}
		nested, err := ix.listFiles(ctx, sc, child, recursive)
		if err != nil {
			return nil, err
		}
		files = append(files, nested...)
	}
	return files, nil
}

// fileToFileData maps one SharePoint file into a canonical record.
func (ix *Indexer) fileToFileData(file *sharepoint.File, siteURL, rootPath string) pipeline.FileData {
	fullpath := file.ServerRelativeURL
	additional := filterProperties(file.Properties)
	additional[sharepoint.ContentTypeKey] = sharepoint.ContentTypeDocument.String()

	return pipeline.FileData{
		Identifier:    file.UniqueID,
		ConnectorType: ConnectorType,
		SourceIdentifiers: pipeline.SourceIdentifiers{
			Filename: file.Name,
			Fullpath: fullpath,
			RelPath:  relativePath(fullpath, rootPath),
		},
		Metadata: pipeline.FileDataSourceMetadata{
			URL:           absoluteURL(siteURL, fullpath),
			Version:       fmt.Sprintf("%d.%d", file.MajorVersion, file.MinorVersion),
			DateModified:  epochString(file.TimeLastModified),
			DateCreated:   epochString(file.TimeCreated),
			DateProcessed: strconv.FormatInt(ix.now().Unix(), 10),
			RecordLocator: map[string]string{
				"server_path": file.ServerRelativeURL,
				"site_url":    siteURL,
			},
		},
		AdditionalMetadata: additional,
	}
}

// pageToFileData maps one site page into a canonical record.
func (ix *Indexer) pageToFileData(page *sharepoint.SitePage, siteURL, rootPath string) pipeline.FileData {
	fullpath := page.URL
	additional := filterProperties(page.Properties)
	additional[sharepoint.ContentTypeKey] = sharepoint.ContentTypeSitePage.String()

	return pipeline.FileData{
		Identifier:    page.UniqueID,
		ConnectorType: ConnectorType,
		SourceIdentifiers: pipeline.SourceIdentifiers{
			Filename: page.FileName,
			Fullpath: fullpath,
			RelPath:  relativePath(fullpath, rootPath),
		},
		Metadata: pipeline.FileDataSourceMetadata{
			URL:           page.AbsoluteURL,
			Version:       page.Version,
			DateModified:  epochString(page.Modified),
			DateCreated:   epochString(page.FirstPublished),
			DateProcessed: strconv.FormatInt(ix.now().Unix(), 10),
			RecordLocator: map[string]string{
				"server_path": strings.TrimPrefix(fullpath, "/"),
				"site_url":    siteURL,
			},
		},
		AdditionalMetadata: additional,
	}
}

// relativePath strips the effective root prefix from a full path and
// removes leading separators.
func relativePath(fullpath, rootPath string) string {
	rel := fullpath
	if rootPath != "" {
		if idx := strings.Index(fullpath, rootPath); idx >= 0 {
			rel = fullpath[idx+len(rootPath):]
		}
	}
	return strings.TrimLeft(rel, "/")
}

// absoluteURL joins the site URL with an escaped server-relative path.
func absoluteURL(siteURL, serverRelative string) string {
	u, err := url.Parse(siteURL)
	if err != nil {
		return siteURL + serverRelative
	}
	u.Path = serverRelative
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}

// epochString formats a timestamp as a Unix-epoch-seconds string, empty
// when the timestamp is unknown.
func epochString(t *time.Time) string {
	if t == nil {
		return ""
	}
	return strconv.FormatInt(t.Unix(), 10)
}

// filterProperties keeps the raw properties that carry a value and are
// JSON-serializable; everything else is dropped silently.
func filterProperties(props map[string]any) map[string]any {
	filtered := make(map[string]any, len(props))
	for k, v := range props {
		if isEmptyValue(v) {
			continue
		}
		if _, err := json.Marshal(v); err != nil {
			continue
		}
		filtered[k] = v
	}
	return filtered
}

func isEmptyValue(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case bool:
		return !val
	case float64:
		return val == 0
	case map[string]any:
		return len(val) == 0
	case []any:
		return len(val) == 0
	default:
		return false
	}
}
