package graphclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"spingest/domain/sharepoint"
)

// listPageSize is the $top value for drive item collections. 200 is the
// Graph API maximum for this collection type.
const listPageSize = 200

// PermissionsClient abstracts the Graph operations used for permission
// enrichment: resolving the site, listing permissions-bearing drive items,
// and reading an item's permission collection.
type PermissionsClient interface {
	GetSiteByURL(ctx context.Context, siteURL string) (*sharepoint.Site, error)
	ListDriveItems(ctx context.Context, siteID string) ([]*sharepoint.DriveItem, error)
	ListItemPermissions(ctx context.Context, driveID, itemID string) ([]*sharepoint.DrivePermission, error)
}

var _ PermissionsClient = (*Client)(nil)

// siteResponse mirrors the Graph API site JSON.
type siteResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	WebURL string `json:"webUrl"`
}

type driveResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	DriveType string `json:"driveType"`
}

type drivesListResponse struct {
	Value []driveResponse `json:"value"`
}

type driveItemResponse struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	ETag            string `json:"eTag"`
	ParentReference *struct {
		DriveID string `json:"driveId"`
	} `json:"parentReference"`
}

type driveItemListResponse struct {
	Value    []driveItemResponse `json:"value"`
	NextLink string              `json:"@odata.nextLink"`
}

type permissionResponse struct {
	ID                    string          `json:"id"`
	Roles                 []string        `json:"roles"`
	ShareID               string          `json:"shareId"`
	HasPassword           bool            `json:"hasPassword"`
	Link                  json.RawMessage `json:"link"`
	GrantedToIdentities   json.RawMessage `json:"grantedToIdentities"`
	GrantedTo             json.RawMessage `json:"grantedTo"`
	GrantedToV2           json.RawMessage `json:"grantedToV2"`
	GrantedToIdentitiesV2 json.RawMessage `json:"grantedToIdentitiesV2"`
	Invitation            json.RawMessage `json:"invitation"`
}

type permissionListResponse struct {
	Value []permissionResponse `json:"value"`
}

// GetSiteByURL resolves a SharePoint site URL to its Graph site resource.
func (c *Client) GetSiteByURL(ctx context.Context, siteURL string) (*sharepoint.Site, error) {
	path, err := sitePath(siteURL)
	if err != nil {
		return nil, err
	}

	body, err := c.get(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("resolve site %s: %w", siteURL, err)
	}

	var sr siteResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("decode site: %w", err)
	}
	return &sharepoint.Site{ID: sr.ID, Name: sr.Name, WebURL: sr.WebURL}, nil
}

// ListDriveItems returns the root children of every drive of the site.
// These are the permissions-bearing objects correlated to files by ETag.
func (c *Client) ListDriveItems(ctx context.Context, siteID string) ([]*sharepoint.DriveItem, error) {
	body, err := c.get(ctx, fmt.Sprintf("/sites/%s/drives", siteID))
	if err != nil {
		return nil, fmt.Errorf("list drives: %w", err)
	}

	var drives drivesListResponse
	if err := json.Unmarshal(body, &drives); err != nil {
		return nil, fmt.Errorf("decode drives: %w", err)
	}

	var items []*sharepoint.DriveItem
	for _, drive := range drives.Value {
		path := fmt.Sprintf("/drives/%s/root/children?$top=%d", drive.ID, listPageSize)
		for path != "" {
			body, err := c.get(ctx, path)
			if err != nil {
				return nil, fmt.Errorf("list drive %s items: %w", drive.ID, err)
			}

			var page driveItemListResponse
			if err := json.Unmarshal(body, &page); err != nil {
				return nil, fmt.Errorf("decode drive items: %w", err)
			}
			for _, item := range page.Value {
				driveID := drive.ID
				if item.ParentReference != nil && item.ParentReference.DriveID != "" {
					driveID = item.ParentReference.DriveID
				}
				items = append(items, &sharepoint.DriveItem{
					ID:      item.ID,
					DriveID: driveID,
					Name:    item.Name,
					ETag:    item.ETag,
				})
			}
			path = strings.TrimPrefix(page.NextLink, c.baseURL)
		}
	}

	c.logger.Graph("listed drive items", "site_id", siteID, "count", len(items))
	return items, nil
}

// ListItemPermissions returns the permission collection of one drive item.
func (c *Client) ListItemPermissions(ctx context.Context, driveID, itemID string) ([]*sharepoint.DrivePermission, error) {
	body, err := c.get(ctx, fmt.Sprintf("/drives/%s/items/%s/permissions", driveID, itemID))
	if err != nil {
		return nil, fmt.Errorf("list permissions for item %s: %w", itemID, err)
	}

	var list permissionListResponse
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("decode permissions: %w", err)
	}

	perms := make([]*sharepoint.DrivePermission, 0, len(list.Value))
	for _, p := range list.Value {
		perms = append(perms, &sharepoint.DrivePermission{
			ID:                    p.ID,
			Roles:                 p.Roles,
			ShareID:               p.ShareID,
			HasPassword:           p.HasPassword,
			Link:                  p.Link,
			GrantedToIdentities:   p.GrantedToIdentities,
			GrantedTo:             p.GrantedTo,
			GrantedToV2:           p.GrantedToV2,
			GrantedToIdentitiesV2: p.GrantedToIdentitiesV2,
			Invitation:            p.Invitation,
		})
	}
	return perms, nil
}

// sitePath converts a SharePoint site URL into the Graph sites addressing
// path: "/sites/{hostname}" for the root site, otherwise
// "/sites/{hostname}:{server-relative-path}".
func sitePath(siteURL string) (string, error) {
	u, err := url.Parse(siteURL)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("invalid site URL %q", siteURL)
	}
	rel := strings.TrimRight(u.Path, "/")
	if rel == "" {
		return "/sites/" + u.Host, nil
	}
	return "/sites/" + u.Host + ":" + rel, nil
}
