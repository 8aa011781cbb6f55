package pipeline

import (
	"fmt"
	"sort"
	"sync"
)

// SourceEntry pairs a connector's concrete types under one named entry:
// factories for its connection, indexer and downloader configuration, and
// constructors for the indexer and downloader roles.
type SourceEntry struct {
	ConnectionConfig func() ConnectionConfig
	IndexerConfig    func() IndexerConfig
	DownloaderConfig func() DownloaderConfig

	Indexer    func(conn ConnectionConfig, cfg IndexerConfig) (Indexer, error)
	Downloader func(conn ConnectionConfig, cfg DownloaderConfig) (Downloader, error)
}

var (
	sourcesMu sync.RWMutex
	sources   = make(map[string]SourceEntry)
)

// RegisterSource makes a source entry available under the given connector
// name. It panics on duplicate registration, like database/sql drivers.
func RegisterSource(name string, entry SourceEntry) {
	sourcesMu.Lock()
	defer sourcesMu.Unlock()
	if _, dup := sources[name]; dup {
		panic(fmt.Sprintf("pipeline: RegisterSource called twice for source %q", name))
	}
	sources[name] = entry
}

// LookupSource returns the entry registered under name.
func LookupSource(name string) (SourceEntry, bool) {
	sourcesMu.RLock()
	defer sourcesMu.RUnlock()
	entry, ok := sources[name]
	return entry, ok
}

// Sources returns the registered connector names, sorted.
func Sources() []string {
	sourcesMu.RLock()
	defer sourcesMu.RUnlock()
	names := make([]string, 0, len(sources))
	for name := range sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
