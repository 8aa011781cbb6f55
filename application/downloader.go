package application

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"spingest/domain/pipeline"
	"spingest/domain/sharepoint"
	"spingest/infrastructure/spclient"
	"spingest/logging"
)

// Downloader fetches the content behind one canonical record. The
// content-type tag selects the strategy: documents are re-fetched by
// unique ID, site pages are reassembled from their stored web parts.
// Different records may be downloaded concurrently by the host; a single
// record is downloaded in one blocking call with no retries.
type Downloader struct {
	conn   ConnectionConfig
	cfg    DownloaderConfig
	logger *logging.Logger

	siteClient func() (spclient.SiteClient, error)
}

var _ pipeline.Downloader = (*Downloader)(nil)

// NewDownloader creates a downloader writing under cfg.DownloadDir.
func NewDownloader(conn ConnectionConfig, cfg DownloaderConfig) *Downloader {
	return &Downloader{
		conn:       conn,
		cfg:        cfg,
		logger:     logging.Default().WithComponent("sharepoint_downloader"),
		siteClient: conn.siteClient,
	}
}

// Run dispatches on the record's content-type tag. A missing or
// unrecognized tag fails before any file I/O.
func (d *Downloader) Run(ctx context.Context, fd pipeline.FileData) (pipeline.DownloadResponse, error) {
	tag, _ := fd.AdditionalMetadata[sharepoint.ContentTypeKey].(string)
	if tag == "" {
		return pipeline.DownloadResponse{}, fmt.Errorf("%w: %v", ErrMissingContentType, fd.AdditionalMetadata)
	}

	switch sharepoint.ContentType(tag) {
	case sharepoint.ContentTypeDocument:
		return d.getDocument(ctx, fd)
	case sharepoint.ContentTypeSitePage:
		return d.getSitePage(fd)
	default:
		return pipeline.DownloadResponse{}, fmt.Errorf("%w: %s", ErrUnknownContentType, tag)
	}
}

// downloadPath resolves the local output path for a record: the download
// directory plus the record's relative path. Site pages force a .html
// extension regardless of the nominal filename.
func (d *Downloader) downloadPath(fd pipeline.FileData) string {
	rel := fd.SourceIdentifiers.RelPath
	if rel == "" {
		rel = fd.SourceIdentifiers.Filename
	}
	path := filepath.Join(d.cfg.DownloadDir, filepath.FromSlash(rel))

	if tag, _ := fd.AdditionalMetadata[sharepoint.ContentTypeKey].(string); tag == sharepoint.ContentTypeSitePage.String() {
		path = strings.TrimSuffix(path, filepath.Ext(path)) + ".html"
	}
	return path
}

// getDocument re-fetches the file by its unique ID and writes the bytes
// to the resolved local path.
func (d *Downloader) getDocument(ctx context.Context, fd pipeline.FileData) (pipeline.DownloadResponse, error) {
	sc, err := d.siteClient()
	if err != nil {
		return pipeline.DownloadResponse{}, fmt.Errorf("%w: %v", ErrConnection, err)
	}

	data, err := sc.DownloadFileByID(ctx, fd.Identifier)
	if err != nil {
		return pipeline.DownloadResponse{}, err
	}

	path := d.downloadPath(fd)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return pipeline.DownloadResponse{}, fmt.Errorf("create download dir: %w", err)
	}
	d.logger.Debug("writing document content",
		"fullpath", fd.SourceIdentifiers.Fullpath, "path", path)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return pipeline.DownloadResponse{}, fmt.Errorf("write document: %w", err)
	}

	return pipeline.DownloadResponse{FileData: fd, Path: path}, nil
}

// layoutWebPart is the slice element shape of LayoutWebpartsContent.
type layoutWebPart struct {
	Properties map[string]any `json:"properties"`
}

// canvasBlock is the slice element shape of CanvasContent1.
type canvasBlock struct {
	InnerHTML string `json:"innerHTML"`
}

// getSitePage reassembles page HTML from the record's stored web parts:
// a synthesized title element per layout web-part title, then the inner
// HTML of each canvas block. The result is normalized through a tolerant
// HTML parser before writing.
func (d *Downloader) getSitePage(fd pipeline.FileData) (pipeline.DownloadResponse, error) {
	var parts []string

	if raw, _ := fd.AdditionalMetadata["LayoutWebpartsContent"].(string); raw != "" {
		var webParts []layoutWebPart
		if err := json.Unmarshal([]byte(raw), &webParts); err != nil {
			return pipeline.DownloadResponse{}, fmt.Errorf("decode layout web parts: %w", err)
		}
		for _, wp := range webParts {
			if title, _ := wp.Properties["title"].(string); title != "" {
				parts = append(parts, "<title>"+html.EscapeString(title)+"</title>")
			}
		}
	}

	if raw, _ := fd.AdditionalMetadata["CanvasContent1"].(string); raw != "" {
		var blocks []canvasBlock
		if err := json.Unmarshal([]byte(raw), &blocks); err != nil {
			return pipeline.DownloadResponse{}, fmt.Errorf("decode canvas content: %w", err)
		}
		for _, block := range blocks {
			if block.InnerHTML != "" {
				parts = append(parts, block.InnerHTML)
			}
		}
	}

	content := "<div>" + strings.Join(parts, "") + "</div>"
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return pipeline.DownloadResponse{}, fmt.Errorf("parse page content: %w", err)
	}
	normalized, err := doc.Html()
	if err != nil {
		return pipeline.DownloadResponse{}, fmt.Errorf("serialize page content: %w", err)
	}

	path := d.downloadPath(fd)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return pipeline.DownloadResponse{}, fmt.Errorf("create download dir: %w", err)
	}
	d.logger.Debug("writing site page content",
		"filename", fd.SourceIdentifiers.Filename, "path", path)
	if err := os.WriteFile(path, []byte(normalized), 0o644); err != nil {
		return pipeline.DownloadResponse{}, fmt.Errorf("write site page: %w", err)
	}

	return pipeline.DownloadResponse{FileData: fd, Path: path}, nil
}
