package pipeline

import "encoding/json"

// SourceIdentifiers locates a record within its source system.
type SourceIdentifiers struct {
	Filename string `json:"filename"`
	Fullpath string `json:"fullpath"`
	// RelPath is Fullpath with the configured root prefix stripped and
	// no leading separator.
	RelPath string `json:"rel_path"`
}

// FileDataSourceMetadata carries source-system metadata for a record.
// Date fields are Unix-epoch-second strings.
type FileDataSourceMetadata struct {
	URL           string            `json:"url,omitempty"`
	Version       string            `json:"version,omitempty"`
	DateModified  string            `json:"date_modified,omitempty"`
	DateCreated   string            `json:"date_created,omitempty"`
	DateProcessed string            `json:"date_processed,omitempty"`
	// RecordLocator holds enough to re-fetch the item (server path, site
	// URL). It is part of the record's identity for later retrieval.
	RecordLocator map[string]string `json:"record_locator,omitempty"`
	Permissions   []Permission      `json:"permissions_data,omitempty"`
}

// Permission is access-control metadata attached to a record during
// enrichment. The RawMessage fields are opaque sub-objects passed through
// from the source unchanged.
type Permission struct {
	ID                    string          `json:"id"`
	Roles                 []string        `json:"roles"`
	ShareID               string          `json:"share_id,omitempty"`
	HasPassword           bool            `json:"has_password"`
	Link                  json.RawMessage `json:"link,omitempty"`
	GrantedToIdentities   json.RawMessage `json:"granted_to_identities,omitempty"`
	GrantedTo             json.RawMessage `json:"granted_to,omitempty"`
	GrantedToV2           json.RawMessage `json:"granted_to_v2,omitempty"`
	GrantedToIdentitiesV2 json.RawMessage `json:"granted_to_identities_v2,omitempty"`
	Invitation            json.RawMessage `json:"invitation,omitempty"`
}

// FileData is the connector-neutral record handed to the pipeline, one per
// file, site page, or list item. Records are created during indexing,
// optionally enriched once with permissions, then never mutated again.
type FileData struct {
	Identifier         string                 `json:"identifier"`
	ConnectorType      string                 `json:"connector_type"`
	SourceIdentifiers  SourceIdentifiers      `json:"source_identifiers"`
	Metadata           FileDataSourceMetadata `json:"metadata"`
	AdditionalMetadata map[string]any         `json:"additional_metadata,omitempty"`
}

// DownloadResponse is the uniform result of a completed download.
type DownloadResponse struct {
	FileData FileData `json:"file_data"`
	Path     string   `json:"path"`
}
