package spclient

import (
	"encoding/json"
	"net/url"
	"strings"
	"time"

	"spingest/domain/sharepoint"
)

// joinURL safely joins a base URL with a relative path
func joinURL(base, rel string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	if strings.HasPrefix(rel, "/") {
		u.Path = rel
		return u.String()
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	u.Path += rel
	return u.String()
}

// spTimeLayouts covers the timestamp renditions SharePoint REST emits.
var spTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// parseSPTime parses a SharePoint timestamp, returning nil when the value
// is empty or unrecognized.
func parseSPTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range spTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// decodeProperties unmarshals a raw item into its full property map.
func decodeProperties(raw json.RawMessage) map[string]any {
	var props map[string]any
	if err := json.Unmarshal(raw, &props); err != nil {
		return nil
	}
	return props
}

// mapFile converts one raw file payload into the domain type, keeping the
// complete property map alongside the typed fields.
func mapFile(raw json.RawMessage) (*sharepoint.File, error) {
	var fj fileJSON
	if err := json.Unmarshal(raw, &fj); err != nil {
		return nil, err
	}
	props := decodeProperties(raw)
	return &sharepoint.File{
		UniqueID:          fj.UniqueId,
		Name:              fj.Name,
		ServerRelativeURL: fj.ServerRelativeUrl,
		Length:            propInt64(props, "Length"),
		ETag:              fj.ETag,
		MajorVersion:      fj.MajorVersion,
		MinorVersion:      fj.MinorVersion,
		TimeCreated:       parseSPTime(fj.TimeCreated),
		TimeLastModified:  parseSPTime(fj.TimeLastModified),
		Properties:        props,
	}, nil
}

func mapFolder(raw json.RawMessage) (*sharepoint.Folder, error) {
	var fj folderJSON
	if err := json.Unmarshal(raw, &fj); err != nil {
		return nil, err
	}
	return &sharepoint.Folder{
		Name:              fj.Name,
		ServerRelativeURL: fj.ServerRelativeUrl,
		ItemCount:         fj.ItemCount,
	}, nil
}

func mapSitePage(raw json.RawMessage) (*sharepoint.SitePage, error) {
	var pj sitePageJSON
	if err := json.Unmarshal(raw, &pj); err != nil {
		return nil, err
	}
	var firstPublished *time.Time
	if pj.FirstPublished != "" && pj.FirstPublished != sharepoint.UnpublishedSentinel {
		firstPublished = parseSPTime(pj.FirstPublished)
	}
	return &sharepoint.SitePage{
		UniqueID:       pj.UniqueId,
		FileName:       pj.FileName,
		Title:          pj.Title,
		URL:            pj.Url,
		AbsoluteURL:    pj.AbsoluteUrl,
		Version:        pj.Version,
		Modified:       parseSPTime(pj.Modified),
		FirstPublished: firstPublished,
		Properties:     decodeProperties(raw),
	}, nil
}

// propInt64 reads an integer property that SharePoint serializes either as
// a number or as a quoted string depending on the OData mode.
func propInt64(props map[string]any, key string) int64 {
	switch v := props[key].(type) {
	case float64:
		return int64(v)
	case string:
		var n int64
		for _, r := range v {
			if r < '0' || r > '9' {
				return 0
			}
			n = n*10 + int64(r-'0')
		}
		return n
	default:
		return 0
	}
}
