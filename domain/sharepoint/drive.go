package sharepoint

import "encoding/json"

// Site is a site resolved through the Microsoft Graph API. Distinct from
// Web: Graph site IDs are composite ("host,siteId,webId") and only exist
// on the permissions side.
type Site struct {
	ID     string
	Name   string
	WebURL string
}

// Drive is a document library as exposed by the Graph API.
type Drive struct {
	ID        string
	Name      string
	DriveType string
}

// DriveItem is a permissions-bearing object in the Graph API, correlated
// to a SharePoint file by content fingerprint (ETag).
type DriveItem struct {
	ID      string
	DriveID string
	Name    string
	ETag    string
}

// DrivePermission is one entry of a drive item's permission collection.
// The RawMessage fields are Graph sub-objects the connector passes through
// without interpretation.
type DrivePermission struct {
	ID                    string
	Roles                 []string
	ShareID               string
	HasPassword           bool
	Link                  json.RawMessage
	GrantedToIdentities   json.RawMessage
	GrantedTo             json.RawMessage
	GrantedToV2           json.RawMessage
	GrantedToIdentitiesV2 json.RawMessage
	Invitation            json.RawMessage
}
