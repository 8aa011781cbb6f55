package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"spingest/domain/sharepoint"
)

// MockSiteClient is a mock implementation of spclient.SiteClient for testing
type MockSiteClient struct {
	mock.Mock
}

func (m *MockSiteClient) GetWeb(ctx context.Context) (*sharepoint.Web, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sharepoint.Web), args.Error(1)
}

func (m *MockSiteClient) SiteURL() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockSiteClient) GetFolder(ctx context.Context, serverRelativePath string) (*sharepoint.Folder, error) {
	args := m.Called(ctx, serverRelativePath)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sharepoint.Folder), args.Error(1)
}

func (m *MockSiteClient) GetDefaultLibraryRoot(ctx context.Context) (*sharepoint.Folder, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sharepoint.Folder), args.Error(1)
}

func (m *MockSiteClient) ListFolderContents(ctx context.Context, serverRelativePath string) ([]*sharepoint.File, []*sharepoint.Folder, error) {
	args := m.Called(ctx, serverRelativePath)
	var files []*sharepoint.File
	if args.Get(0) != nil {
		files = args.Get(0).([]*sharepoint.File)
	}
	var folders []*sharepoint.Folder
	if args.Get(1) != nil {
		folders = args.Get(1).([]*sharepoint.Folder)
	}
	return files, folders, args.Error(2)
}

func (m *MockSiteClient) ListSitePages(ctx context.Context) ([]*sharepoint.SitePage, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*sharepoint.SitePage), args.Error(1)
}

func (m *MockSiteClient) DownloadFileByID(ctx context.Context, uniqueID string) ([]byte, error) {
	args := m.Called(ctx, uniqueID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// MockPermissionsClient is a mock implementation of graphclient.PermissionsClient for testing
type MockPermissionsClient struct {
	mock.Mock
}

func (m *MockPermissionsClient) GetSiteByURL(ctx context.Context, siteURL string) (*sharepoint.Site, error) {
	args := m.Called(ctx, siteURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sharepoint.Site), args.Error(1)
}

func (m *MockPermissionsClient) ListDriveItems(ctx context.Context, siteID string) ([]*sharepoint.DriveItem, error) {
	args := m.Called(ctx, siteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*sharepoint.DriveItem), args.Error(1)
}

func (m *MockPermissionsClient) ListItemPermissions(ctx context.Context, driveID, itemID string) ([]*sharepoint.DrivePermission, error) {
	args := m.Called(ctx, driveID, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*sharepoint.DrivePermission), args.Error(1)
}
