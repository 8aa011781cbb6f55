package application

import (
	"context"
	"fmt"
	"strings"

	"spingest/domain/pipeline"
	"spingest/domain/sharepoint"
)

// enrichPermissions cross-references the full batch of file records
// against the site's drive items by content fingerprint (ETag) and
// attaches permission metadata to unambiguous matches. Drive items are
// fetched once per run. Token or Graph failures abort the run.
func (ix *Indexer) enrichPermissions(ctx context.Context, batch []*pipeline.FileData, siteURL string) error {
	ix.logger.Debug("enriching permissions on files", "site_url", siteURL, "files", len(batch))

	gc, err := ix.graphClient(ctx)
	if err != nil {
		return err
	}
	if gc == nil {
		return nil
	}

	site, err := gc.GetSiteByURL(ctx, siteURL)
	if err != nil {
		return err
	}
	items, err := gc.ListDriveItems(ctx, site.ID)
	if err != nil {
		return err
	}

	for _, fd := range batch {
		etag, _ := fd.AdditionalMetadata["ETag"].(string)
		if etag == "" {
			continue
		}

		var matches []*sharepoint.DriveItem
		for _, item := range items {
			if item.ETag == etag {
				matches = append(matches, item)
			}
		}
		if len(matches) == 0 {
			continue
		}
		if len(matches) > 1 {
			names := make([]string, 0, len(matches))
			for _, m := range matches {
				names = append(names, m.Name)
			}
			ix.logger.Warn(
				fmt.Sprintf("found multiple drive items with etag matching %s, skipping: %s",
					etag, strings.Join(names, ", ")))
			continue
		}

		match := matches[0]
		perms, err := gc.ListItemPermissions(ctx, match.DriveID, match.ID)
		if err != nil {
			return err
		}
		data := make([]pipeline.Permission, 0, len(perms))
		for _, p := range perms {
			data = append(data, mapPermission(p))
		}
		fd.Metadata.Permissions = data
	}

	return nil
}

// mapPermission converts a Graph drive permission into the pipeline
// representation. The opaque sub-objects pass through unchanged.
func mapPermission(p *sharepoint.DrivePermission) pipeline.Permission {
	return pipeline.Permission{
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
	}
}
