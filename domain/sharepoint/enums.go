package sharepoint

// ContentType tags a canonical record with the kind of SharePoint content
// it came from. The tag selects the retrieval strategy at download time.
type ContentType string

const (
	ContentTypeDocument ContentType = "document"
	ContentTypeSitePage ContentType = "site_page"
	ContentTypeList     ContentType = "list" // reserved, no retrieval strategy yet
)

// ContentTypeKey is the additional-metadata key carrying the content type.
// It is injected during indexing and must survive property filtering.
const ContentTypeKey = "sharepoint_content_type"

// String implements fmt.Stringer.
func (c ContentType) String() string { return string(c) }
