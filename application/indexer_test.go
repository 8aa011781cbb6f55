package application

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"spingest/domain/pipeline"
	"spingest/domain/sharepoint"
	"spingest/infrastructure/graphclient"
	"spingest/infrastructure/spclient"
	"spingest/test/helpers"
	"spingest/test/mocks"
)

const testSiteURL = "https://contoso.sharepoint.com/sites/test"

func testConnection() ConnectionConfig {
	return ConnectionConfig{
		ClientID:     "client-id",
		Site:         testSiteURL,
		ClientSecret: "secret",
	}
}

// newTestIndexer wires an indexer to mock clients and a fixed clock.
func newTestIndexer(cfg IndexerConfig, sc *mocks.MockSiteClient, gc *mocks.MockPermissionsClient) *Indexer {
	conn := testConnection()
	if gc != nil {
		conn.Permissions = &PermissionsConfig{
			ApplicationID: "app-id",
			Tenant:        "contoso.onmicrosoft.com",
			ClientSecret:  "graph-secret",
		}
	}
	ix := NewIndexer(conn, cfg)
	ix.siteClient = func() (spclient.SiteClient, error) { return sc, nil }
	ix.graphClient = func(ctx context.Context) (graphclient.PermissionsClient, error) {
		if gc == nil {
			return nil, nil
		}
		return gc, nil
	}
	ix.now = func() time.Time { return helpers.TestTime }
	return ix
}

// collectRecords drains a Run and returns the emitted records plus the
// fatal error, if any.
func collectRecords(t *testing.T, ix *Indexer) ([]pipeline.FileData, error) {
	t.Helper()
	records, errs := ix.Run(context.Background())
	var out []pipeline.FileData
	for fd := range records {
		out = append(out, fd)
	}
	select {
	case err := <-errs:
		return out, err
	default:
		return out, nil
	}
}

func defaultLibraryRoot() *sharepoint.Folder {
	return &sharepoint.Folder{
		Name:              "Shared Documents",
		ServerRelativeURL: "/sites/test/Shared Documents",
		ItemCount:         2,
	}
}

func TestIndexer_Precheck_Succeeds(t *testing.T) {
	sc := &mocks.MockSiteClient{}
	sc.On("GetWeb", mock.Anything).Return(helpers.NewTestWeb(), nil)

	ix := newTestIndexer(IndexerConfig{}, sc, nil)

	err := ix.Precheck(context.Background())

	assert.NoError(t, err)
	sc.AssertExpectations(t)
}

func TestIndexer_Precheck_WrapsConnectionError(t *testing.T) {
	sc := &mocks.MockSiteClient{}
	sc.On("GetWeb", mock.Anything).Return(nil, errors.New("401 unauthorized"))

	ix := newTestIndexer(IndexerConfig{}, sc, nil)

	err := ix.Precheck(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConnection)
	assert.Contains(t, err.Error(), "401 unauthorized")
}

func TestIndexer_Run_EmitsDocumentRecords(t *testing.T) {
	root := defaultLibraryRoot()
	file := helpers.NewTestFile("report.docx", root.ServerRelativeURL)

	sc := &mocks.MockSiteClient{}
	sc.On("SiteURL").Return(testSiteURL)
	sc.On("GetDefaultLibraryRoot", mock.Anything).Return(root, nil)
	sc.On("ListFolderContents", mock.Anything, root.ServerRelativeURL).
		Return([]*sharepoint.File{file}, []*sharepoint.Folder(nil), nil)
	sc.On("ListSitePages", mock.Anything).Return([]*sharepoint.SitePage{}, nil)

	ix := newTestIndexer(IndexerConfig{}, sc, nil)

	out, err := collectRecords(t, ix)

	require.NoError(t, err)
	require.Len(t, out, 1)

	fd := out[0]
	assert.Equal(t, file.UniqueID, fd.Identifier)
	assert.Equal(t, ConnectorType, fd.ConnectorType)
	assert.Equal(t, "report.docx", fd.SourceIdentifiers.Filename)
	assert.Equal(t, "/sites/test/Shared Documents/report.docx", fd.SourceIdentifiers.Fullpath)
	assert.Equal(t, "report.docx", fd.SourceIdentifiers.RelPath)
	assert.Equal(t, "2.0", fd.Metadata.Version)
	assert.Equal(t, "https://contoso.sharepoint.com/sites/test/Shared%20Documents/report.docx", fd.Metadata.URL)
	assert.Equal(t, strconv.FormatInt(file.TimeLastModified.Unix(), 10), fd.Metadata.DateModified)
	assert.Equal(t, strconv.FormatInt(file.TimeCreated.Unix(), 10), fd.Metadata.DateCreated)
	assert.Equal(t, strconv.FormatInt(helpers.TestTime.Unix(), 10), fd.Metadata.DateProcessed)
	assert.Equal(t, map[string]string{
		"server_path": file.ServerRelativeURL,
		"site_url":    testSiteURL,
	}, fd.Metadata.RecordLocator)
	assert.Equal(t, "document", fd.AdditionalMetadata[sharepoint.ContentTypeKey])
}

func TestIndexer_Run_EmitsSitePageRecords(t *testing.T) {
	root := defaultLibraryRoot()
	page := helpers.NewTestPage("Home.aspx")

	sc := &mocks.MockSiteClient{}
	sc.On("SiteURL").Return(testSiteURL)
	sc.On("GetDefaultLibraryRoot", mock.Anything).Return(root, nil)
	sc.On("ListFolderContents", mock.Anything, root.ServerRelativeURL).
		Return([]*sharepoint.File{}, []*sharepoint.Folder(nil), nil)
	sc.On("ListSitePages", mock.Anything).Return([]*sharepoint.SitePage{page}, nil)

	ix := newTestIndexer(IndexerConfig{}, sc, nil)

	out, err := collectRecords(t, ix)

	require.NoError(t, err)
	require.Len(t, out, 1)

	fd := out[0]
	assert.Equal(t, page.UniqueID, fd.Identifier)
	assert.Equal(t, "Home.aspx", fd.SourceIdentifiers.Filename)
	assert.Equal(t, page.AbsoluteURL, fd.Metadata.URL)
	assert.Equal(t, "1.0", fd.Metadata.Version)
	assert.Equal(t, "site_page", fd.AdditionalMetadata[sharepoint.ContentTypeKey])
	assert.Equal(t, "SitePages/Home.aspx", fd.Metadata.RecordLocator["server_path"])
}

func TestIndexer_Run_RecursiveSkipsReservedFolders(t *testing.T) {
	root := defaultLibraryRoot()
	forms := &sharepoint.Folder{
		Name:              "Forms",
		ServerRelativeURL: root.ServerRelativeURL + "/Forms",
	}
	nested := &sharepoint.Folder{
		Name:              "Reports",
		ServerRelativeURL: root.ServerRelativeURL + "/Reports",
	}
	nestedFile := helpers.NewTestFile("q1.xlsx", nested.ServerRelativeURL)
	nestedFile.UniqueID = "66666666-7777-8888-9999-000000000000"

	sc := &mocks.MockSiteClient{}
	sc.On("SiteURL").Return(testSiteURL)
	sc.On("GetDefaultLibraryRoot", mock.Anything).Return(root, nil)
	sc.On("ListFolderContents", mock.Anything, root.ServerRelativeURL).
		Return([]*sharepoint.File{}, []*sharepoint.Folder{forms, nested}, nil)
	sc.On("ListFolderContents", mock.Anything, nested.ServerRelativeURL).
		Return([]*sharepoint.File{nestedFile}, []*sharepoint.Folder(nil), nil)
	sc.On("ListSitePages", mock.Anything).Return([]*sharepoint.SitePage{}, nil)

	ix := newTestIndexer(IndexerConfig{Recursive: true}, sc, nil)

	out, err := collectRecords(t, ix)

	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, nestedFile.UniqueID, out[0].Identifier)
	sc.AssertNotCalled(t, "ListFolderContents", mock.Anything, forms.ServerRelativeURL)
}

func TestIndexer_Run_NonRecursiveIgnoresSubfolders(t *testing.T) {
	root := defaultLibraryRoot()
	nested := &sharepoint.Folder{
		Name:              "Reports",
		ServerRelativeURL: root.ServerRelativeURL + "/Reports",
	}
	file := helpers.NewTestFile("top.docx", root.ServerRelativeURL)

	sc := &mocks.MockSiteClient{}
	sc.On("SiteURL").Return(testSiteURL)
	sc.On("GetDefaultLibraryRoot", mock.Anything).Return(root, nil)
	sc.On("ListFolderContents", mock.Anything, root.ServerRelativeURL).
		Return([]*sharepoint.File{file}, []*sharepoint.Folder{nested}, nil)
	sc.On("ListSitePages", mock.Anything).Return([]*sharepoint.SitePage{}, nil)

	ix := newTestIndexer(IndexerConfig{Recursive: false}, sc, nil)

	out, err := collectRecords(t, ix)

	require.NoError(t, err)
	require.Len(t, out, 1)
	sc.AssertNotCalled(t, "ListFolderContents", mock.Anything, nested.ServerRelativeURL)
}

func TestIndexer_Run_PathOverrideUsesNamedFolder(t *testing.T) {
	folder := &sharepoint.Folder{
		Name:              "Reports",
		ServerRelativeURL: "/sites/test/Shared Documents/Reports",
	}
	file := helpers.NewTestFile("q1.xlsx", folder.ServerRelativeURL)

	sc := &mocks.MockSiteClient{}
	sc.On("SiteURL").Return(testSiteURL)
	sc.On("GetFolder", mock.Anything, "Shared Documents/Reports").Return(folder, nil)
	sc.On("ListFolderContents", mock.Anything, folder.ServerRelativeURL).
		Return([]*sharepoint.File{file}, []*sharepoint.Folder(nil), nil)
	sc.On("ListSitePages", mock.Anything).Return([]*sharepoint.SitePage{}, nil)

	ix := newTestIndexer(IndexerConfig{Path: "Shared Documents/Reports"}, sc, nil)

	out, err := collectRecords(t, ix)

	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "q1.xlsx", out[0].SourceIdentifiers.RelPath)
	sc.AssertNotCalled(t, "GetDefaultLibraryRoot", mock.Anything)
}

func TestIndexer_Run_OmitFlags(t *testing.T) {
	root := defaultLibraryRoot()
	file := helpers.NewTestFile("report.docx", root.ServerRelativeURL)
	page := helpers.NewTestPage("Home.aspx")

	t.Run("omit files", func(t *testing.T) {
		sc := &mocks.MockSiteClient{}
		sc.On("SiteURL").Return(testSiteURL)
		sc.On("GetDefaultLibraryRoot", mock.Anything).Return(root, nil)
		sc.On("ListSitePages", mock.Anything).Return([]*sharepoint.SitePage{page}, nil)

		ix := newTestIndexer(IndexerConfig{OmitFiles: true}, sc, nil)

		out, err := collectRecords(t, ix)

		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, "site_page", out[0].AdditionalMetadata[sharepoint.ContentTypeKey])
		sc.AssertNotCalled(t, "ListFolderContents", mock.Anything, mock.Anything)
	})

	t.Run("omit pages", func(t *testing.T) {
		sc := &mocks.MockSiteClient{}
		sc.On("SiteURL").Return(testSiteURL)
		sc.On("GetDefaultLibraryRoot", mock.Anything).Return(root, nil)
		sc.On("ListFolderContents", mock.Anything, root.ServerRelativeURL).
			Return([]*sharepoint.File{file}, []*sharepoint.Folder(nil), nil)

		ix := newTestIndexer(IndexerConfig{OmitPages: true}, sc, nil)

		out, err := collectRecords(t, ix)

		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, "document", out[0].AdditionalMetadata[sharepoint.ContentTypeKey])
		sc.AssertNotCalled(t, "ListSitePages", mock.Anything)
	})
}

func TestIndexer_Run_ReportsEnumerationFailure(t *testing.T) {
	root := defaultLibraryRoot()

	sc := &mocks.MockSiteClient{}
	sc.On("SiteURL").Return(testSiteURL)
	sc.On("GetDefaultLibraryRoot", mock.Anything).Return(root, nil)
	sc.On("ListFolderContents", mock.Anything, root.ServerRelativeURL).
		Return(nil, nil, errors.New("503 service unavailable"))

	ix := newTestIndexer(IndexerConfig{}, sc, nil)

	out, err := collectRecords(t, ix)

	assert.Empty(t, out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestIndexer_Run_UnpublishedPageHasNoCreatedDate(t *testing.T) {
	root := defaultLibraryRoot()
	page := helpers.NewTestPage("Draft.aspx")
	page.FirstPublished = nil

	sc := &mocks.MockSiteClient{}
	sc.On("SiteURL").Return(testSiteURL)
	sc.On("GetDefaultLibraryRoot", mock.Anything).Return(root, nil)
	sc.On("ListFolderContents", mock.Anything, root.ServerRelativeURL).
		Return([]*sharepoint.File{}, []*sharepoint.Folder(nil), nil)
	sc.On("ListSitePages", mock.Anything).Return([]*sharepoint.SitePage{page}, nil)

	ix := newTestIndexer(IndexerConfig{}, sc, nil)

	out, err := collectRecords(t, ix)

	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Empty(t, out[0].Metadata.DateCreated)
	assert.NotEmpty(t, out[0].Metadata.DateModified)
}

func TestRelativePath(t *testing.T) {
	tests := []struct {
		name     string
		fullpath string
		rootPath string
		want     string
	}{
		{"file under root", "/sites/test/Shared Documents/a.txt", "Shared Documents", "a.txt"},
		{"nested file", "/sites/test/Shared Documents/sub/a.txt", "Shared Documents", "sub/a.txt"},
		{"root not present", "/sites/test/Other/a.txt", "Shared Documents", "sites/test/Other/a.txt"},
		{"empty root", "/sites/test/a.txt", "", "sites/test/a.txt"},
		{"page path", "SitePages/Home.aspx", "Shared Documents", "SitePages/Home.aspx"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, relativePath(tt.fullpath, tt.rootPath))
		})
	}
}

func TestAbsoluteURL_EscapesPath(t *testing.T) {
	got := absoluteURL(testSiteURL, "/sites/test/Shared Documents/My Report.docx")
	assert.Equal(t, "https://contoso.sharepoint.com/sites/test/Shared%20Documents/My%20Report.docx", got)
}

func TestFilterProperties_DropsEmptyAndUnserializable(t *testing.T) {
	props := map[string]any{
		"Title":       "Quarterly Report",
		"Empty":       "",
		"Zero":        float64(0),
		"False":       false,
		"Nil":         nil,
		"EmptyMap":    map[string]any{},
		"EmptySlice":  []any{},
		"Unmarshable": func() {},
		"Count":       float64(3),
	}

	got := filterProperties(props)

	assert.Equal(t, map[string]any{
		"Title": "Quarterly Report",
		"Count": float64(3),
	}, got)
}

func TestEpochString(t *testing.T) {
	assert.Empty(t, epochString(nil))

	ts := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
	assert.Equal(t, "1710498600", epochString(&ts))
}
