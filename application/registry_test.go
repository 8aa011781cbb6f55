package application

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spingest/domain/pipeline"
)

func TestRegistry_SharePointSourceIsRegistered(t *testing.T) {
	entry, ok := pipeline.LookupSource(ConnectorType)

	require.True(t, ok, "sharepoint source should register on import")
	require.NotNil(t, entry.ConnectionConfig)
	require.NotNil(t, entry.IndexerConfig)
	require.NotNil(t, entry.DownloaderConfig)
	require.NotNil(t, entry.Indexer)
	require.NotNil(t, entry.Downloader)

	assert.IsType(t, ConnectionConfig{}, entry.ConnectionConfig())
	assert.IsType(t, IndexerConfig{}, entry.IndexerConfig())
	assert.IsType(t, DownloaderConfig{}, entry.DownloaderConfig())
}

func TestRegistry_IndexerConstructorValidatesConnection(t *testing.T) {
	entry, ok := pipeline.LookupSource(ConnectorType)
	require.True(t, ok)

	_, err := entry.Indexer(ConnectionConfig{}, IndexerConfig{})
	assert.Error(t, err, "empty credentials should fail validation")

	ix, err := entry.Indexer(testConnection(), IndexerConfig{Recursive: true})
	require.NoError(t, err)
	assert.NotNil(t, ix)
}

func TestRegistry_ConstructorsRejectForeignConfigTypes(t *testing.T) {
	entry, ok := pipeline.LookupSource(ConnectorType)
	require.True(t, ok)

	type otherConn struct{ ConnectionConfig }

	_, err := entry.Indexer(otherConn{}, IndexerConfig{})
	assert.ErrorContains(t, err, "unexpected connection config type")

	_, err = entry.Downloader(otherConn{}, DownloaderConfig{DownloadDir: "x"})
	assert.ErrorContains(t, err, "unexpected connection config type")
}

func TestRegistry_DownloaderConstructorValidatesConfig(t *testing.T) {
	entry, ok := pipeline.LookupSource(ConnectorType)
	require.True(t, ok)

	_, err := entry.Downloader(testConnection(), DownloaderConfig{})
	assert.Error(t, err, "missing download dir should fail validation")

	dl, err := entry.Downloader(testConnection(), DownloaderConfig{DownloadDir: t.TempDir()})
	require.NoError(t, err)
	assert.NotNil(t, dl)
}
