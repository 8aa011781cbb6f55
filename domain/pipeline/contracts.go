package pipeline

import "context"

// ConnectionConfig holds credentials and endpoint configuration for a
// source. Concrete types are connector-specific.
type ConnectionConfig interface {
	Validate() error
}

// IndexerConfig holds enumeration options for a source.
type IndexerConfig interface {
	Validate() error
}

// DownloaderConfig holds retrieval options for a source.
type DownloaderConfig interface {
	Validate() error
}

// Indexer enumerates a source and yields canonical records.
type Indexer interface {
	// Precheck validates connectivity before a run. A failure is a
	// connection error and is fatal for the run.
	Precheck(ctx context.Context) error

	// Run yields records one at a time: a lazy, finite, non-restartable
	// sequence. Each invocation re-authenticates and re-walks the source.
	// The records channel is closed when enumeration finishes; a fatal
	// error is delivered on the error channel before close.
	Run(ctx context.Context) (<-chan FileData, <-chan error)
}

// Downloader fetches the content behind one canonical record and writes it
// to a local path. Retry policy is the caller's concern; implementations
// make a single attempt.
type Downloader interface {
	Run(ctx context.Context, fd FileData) (DownloadResponse, error)
}
