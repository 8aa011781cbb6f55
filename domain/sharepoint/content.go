package sharepoint

import "time"

// Web represents the SharePoint web (site) the connector is bound to.
type Web struct {
	ID    string
	URL   string
	Title string
}

// Folder represents a SharePoint folder.
type Folder struct {
	Name              string
	ServerRelativeURL string
	ItemCount         int
}

// File represents a SharePoint file with its full property set.
// Properties holds every raw property returned by the server; typed fields
// are the subset the connector depends on.
type File struct {
	UniqueID          string
	Name              string
	ServerRelativeURL string
	Length            int64
	ETag              string
	MajorVersion      int
	MinorVersion      int
	TimeCreated       *time.Time
	TimeLastModified  *time.Time
	Properties        map[string]any
}

// SitePage represents a modern SharePoint site page.
type SitePage struct {
	UniqueID       string
	FileName       string
	Title          string
	URL            string // server-relative, e.g. "SitePages/Home.aspx"
	AbsoluteURL    string
	Version        string
	Modified       *time.Time
	FirstPublished *time.Time
	Properties     map[string]any
}

// UnpublishedSentinel is the FirstPublished value SharePoint reports for
// pages that were never published.
const UnpublishedSentinel = "0001-01-01T08:00:00Z"
