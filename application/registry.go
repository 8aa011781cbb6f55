package application

import (
	"fmt"

	"spingest/domain/pipeline"
)

// The registry entry pairs the connector's four concrete types under the
// "sharepoint" name so hosts can resolve them without importing this
// package directly.
func init() {
	pipeline.RegisterSource(ConnectorType, pipeline.SourceEntry{
		ConnectionConfig: func() pipeline.ConnectionConfig { return ConnectionConfig{} },
		IndexerConfig:    func() pipeline.IndexerConfig { return IndexerConfig{} },
		DownloaderConfig: func() pipeline.DownloaderConfig { return DownloaderConfig{} },
		Indexer:          newPipelineIndexer,
		Downloader:       newPipelineDownloader,
	})
}

func newPipelineIndexer(conn pipeline.ConnectionConfig, cfg pipeline.IndexerConfig) (pipeline.Indexer, error) {
	cc, ok := conn.(ConnectionConfig)
	if !ok {
		return nil, fmt.Errorf("unexpected connection config type %T", conn)
	}
	ic, ok := cfg.(IndexerConfig)
	if !ok {
		return nil, fmt.Errorf("unexpected indexer config type %T", cfg)
	}
	if err := cc.Validate(); err != nil {
		return nil, err
	}
	return NewIndexer(cc, ic), nil
}

func newPipelineDownloader(conn pipeline.ConnectionConfig, cfg pipeline.DownloaderConfig) (pipeline.Downloader, error) {
	cc, ok := conn.(ConnectionConfig)
	if !ok {
		return nil, fmt.Errorf("unexpected connection config type %T", conn)
	}
	dc, ok := cfg.(DownloaderConfig)
	if !ok {
		return nil, fmt.Errorf("unexpected downloader config type %T", cfg)
	}
	if err := cc.Validate(); err != nil {
		return nil, err
	}
	if err := dc.Validate(); err != nil {
		return nil, err
	}
	return NewDownloader(cc, dc), nil
}
