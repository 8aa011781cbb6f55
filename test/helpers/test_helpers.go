package helpers

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"spingest/domain/sharepoint"
	"spingest/logging"
)

// TestTime is a fixed timestamp used across fixtures.
var TestTime = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

// NewTestFile builds a document fixture rooted under the default library.
func NewTestFile(name, folder string) *sharepoint.File {
	created := TestTime.Add(-24 * time.Hour)
	modified := TestTime
	return &sharepoint.File{
		UniqueID:          "11111111-2222-3333-4444-555555555555",
		Name:              name,
		ServerRelativeURL: folder + "/" + name,
		Length:            2048,
		ETag:              "\"{11111111-2222-3333-4444-555555555555},2\"",
		MajorVersion:      2,
		MinorVersion:      0,
		TimeCreated:       &created,
		TimeLastModified:  &modified,
		Properties: map[string]any{
			"vti_x005f_filesize": float64(2048),
		},
	}
}

// NewTestPage builds a site page fixture.
func NewTestPage(fileName string) *sharepoint.SitePage {
	modified := TestTime
	published := TestTime.Add(-48 * time.Hour)
	return &sharepoint.SitePage{
		UniqueID:       "aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee",
		FileName:       fileName,
		Title:          "Test Page",
		URL:            "SitePages/" + fileName,
		AbsoluteURL:    "https://contoso.sharepoint.com/sites/test/SitePages/" + fileName,
		Version:        "1.0",
		Modified:       &modified,
		FirstPublished: &published,
		Properties:     map[string]any{},
	}
}

// NewTestWeb builds a web fixture for the test site.
func NewTestWeb() *sharepoint.Web {
	return &sharepoint.Web{
		ID:    "99999999-8888-7777-6666-555555555555",
		URL:   "https://contoso.sharepoint.com/sites/test",
		Title: "Test Site",
	}
}

// NewTestDriveItem builds a drive item fixture with the given etag.
func NewTestDriveItem(id, name, etag string) *sharepoint.DriveItem {
	return &sharepoint.DriveItem{
		ID:      id,
		DriveID: "drive-1",
		Name:    name,
		ETag:    etag,
	}
}

// LogRecord is a captured log entry.
type LogRecord struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// CaptureHandler is a slog.Handler that records log entries for assertions.
type CaptureHandler struct {
	mu      sync.Mutex
	records []LogRecord
}

func (h *CaptureHandler) Enabled(_ context.Context, _ slog.Level) bool { return true }

func (h *CaptureHandler) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]any)
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Any()
		return true
	})
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, LogRecord{Level: r.Level, Message: r.Message, Attrs: attrs})
	return nil
}

func (h *CaptureHandler) WithAttrs(_ []slog.Attr) slog.Handler { return h }
func (h *CaptureHandler) WithGroup(_ string) slog.Handler      { return h }

// Records returns a copy of the captured entries.
func (h *CaptureHandler) Records() []LogRecord {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]LogRecord, len(h.records))
	copy(out, h.records)
	return out
}

// NewCaptureLogger returns a logger whose output can be inspected in tests.
func NewCaptureLogger() (*logging.Logger, *CaptureHandler) {
	h := &CaptureHandler{}
	return &logging.Logger{Logger: slog.New(h)}, h
}
