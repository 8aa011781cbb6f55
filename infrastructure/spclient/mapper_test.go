package spclient

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spingest/domain/sharepoint"
)

func TestJoinURL(t *testing.T) {
	tests := []struct {
		name string
		base string
		rel  string
		want string
	}{
		{"absolute path replaces", "https://contoso.sharepoint.com/sites/test", "/sites/test/Shared Documents", "https://contoso.sharepoint.com/sites/test/Shared%20Documents"},
		{"relative path appends", "https://contoso.sharepoint.com/sites/test", "SitePages/Home.aspx", "https://contoso.sharepoint.com/sites/test/SitePages/Home.aspx"},
		{"trailing slash base", "https://contoso.sharepoint.com/sites/test/", "SitePages/Home.aspx", "https://contoso.sharepoint.com/sites/test/SitePages/Home.aspx"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, joinURL(tt.base, tt.rel))
		})
	}
}

func TestParseSPTime(t *testing.T) {
	assert.Nil(t, parseSPTime(""))
	assert.Nil(t, parseSPTime("not a timestamp"))

	got := parseSPTime("2024-03-15T10:30:00Z")
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC), got.UTC())

	// Verbose OData omits the zone suffix.
	got = parseSPTime("2024-03-15T10:30:00")
	require.NotNil(t, got)
	assert.Equal(t, 2024, got.Year())
}

func TestDecodeCollection_Envelopes(t *testing.T) {
	t.Run("nometadata value envelope", func(t *testing.T) {
		items, next, err := decodeCollection([]byte(`{"value":[{"Name":"a"},{"Name":"b"}],"odata.nextLink":"next-url"}`))
		require.NoError(t, err)
		assert.Len(t, items, 2)
		assert.Equal(t, "next-url", next)
	})

	t.Run("verbose d results envelope", func(t *testing.T) {
		items, next, err := decodeCollection([]byte(`{"d":{"results":[{"Name":"a"}],"__next":"next-url"}}`))
		require.NoError(t, err)
		assert.Len(t, items, 1)
		assert.Equal(t, "next-url", next)
	})

	t.Run("bare array", func(t *testing.T) {
		items, next, err := decodeCollection([]byte(`[{"Name":"a"}]`))
		require.NoError(t, err)
		assert.Len(t, items, 1)
		assert.Empty(t, next)
	})

	t.Run("unrecognized payload", func(t *testing.T) {
		_, _, err := decodeCollection([]byte(`"just a string"`))
		assert.Error(t, err)
	})
}

func TestDecodeObject_Envelopes(t *testing.T) {
	t.Run("verbose d envelope", func(t *testing.T) {
		got, err := decodeObject([]byte(`{"d":{"Name":"root"}}`))
		require.NoError(t, err)
		assert.JSONEq(t, `{"Name":"root"}`, string(got))
	})

	t.Run("plain object", func(t *testing.T) {
		got, err := decodeObject([]byte(`{"Name":"root"}`))
		require.NoError(t, err)
		assert.JSONEq(t, `{"Name":"root"}`, string(got))
	})

	t.Run("not an object", func(t *testing.T) {
		_, err := decodeObject([]byte(`[1,2,3]`))
		assert.Error(t, err)
	})
}

func TestMapFile(t *testing.T) {
	raw := json.RawMessage(`{
		"UniqueId": "11111111-2222-3333-4444-555555555555",
		"Name": "report.docx",
		"ServerRelativeUrl": "/sites/test/Shared Documents/report.docx",
		"Length": "2048",
		"ETag": "\"{11111111-2222-3333-4444-555555555555},2\"",
		"MajorVersion": 2,
		"MinorVersion": 0,
		"TimeCreated": "2024-03-14T10:30:00Z",
		"TimeLastModified": "2024-03-15T10:30:00Z"
	}`)

	file, err := mapFile(raw)

	require.NoError(t, err)
	assert.Equal(t, "11111111-2222-3333-4444-555555555555", file.UniqueID)
	assert.Equal(t, "report.docx", file.Name)
	assert.Equal(t, int64(2048), file.Length)
	assert.Equal(t, 2, file.MajorVersion)
	assert.Equal(t, 0, file.MinorVersion)
	require.NotNil(t, file.TimeLastModified)
	assert.Equal(t, 15, file.TimeLastModified.Day())
	assert.Equal(t, "report.docx", file.Properties["Name"])
}

func TestMapFolder(t *testing.T) {
	folder, err := mapFolder(json.RawMessage(`{
		"Name": "Reports",
		"ServerRelativeUrl": "/sites/test/Shared Documents/Reports",
		"ItemCount": 4
	}`))

	require.NoError(t, err)
	assert.Equal(t, "Reports", folder.Name)
	assert.Equal(t, 4, folder.ItemCount)
}

func TestMapSitePage(t *testing.T) {
	t.Run("published page", func(t *testing.T) {
		page, err := mapSitePage(json.RawMessage(`{
			"UniqueId": "aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee",
			"FileName": "Home.aspx",
			"Title": "Home",
			"Url": "SitePages/Home.aspx",
			"AbsoluteUrl": "https://contoso.sharepoint.com/sites/test/SitePages/Home.aspx",
			"Version": "1.0",
			"Modified": "2024-03-15T10:30:00Z",
			"FirstPublished": "2024-03-13T10:30:00Z"
		}`))

		require.NoError(t, err)
		assert.Equal(t, "Home.aspx", page.FileName)
		require.NotNil(t, page.FirstPublished)
		assert.Equal(t, 13, page.FirstPublished.Day())
	})

	t.Run("unpublished sentinel maps to nil", func(t *testing.T) {
		page, err := mapSitePage(json.RawMessage(`{
			"UniqueId": "aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee",
			"FileName": "Draft.aspx",
			"FirstPublished": "` + sharepoint.UnpublishedSentinel + `"
		}`))

		require.NoError(t, err)
		assert.Nil(t, page.FirstPublished)
	})
}

func TestPropInt64(t *testing.T) {
	props := map[string]any{
		"AsNumber":  float64(2048),
		"AsString":  "2048",
		"Malformed": "20x48",
		"Other":     true,
	}

	assert.Equal(t, int64(2048), propInt64(props, "AsNumber"))
	assert.Equal(t, int64(2048), propInt64(props, "AsString"))
	assert.Equal(t, int64(0), propInt64(props, "Malformed"))
	assert.Equal(t, int64(0), propInt64(props, "Other"))
	assert.Equal(t, int64(0), propInt64(props, "Missing"))
}
