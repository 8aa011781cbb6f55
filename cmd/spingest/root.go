package main

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"spingest/domain/pipeline"
	"spingest/infrastructure/config"
	"spingest/logging"

	// Registers the sharepoint source entry.
	"spingest/application"
)

// version is set at build time via ldflags.
var version = "dev"

// Flags overriding the environment configuration, bound in newRootCmd.
var (
	flagPath        string
	flagRecursive   bool
	flagOmitFiles   bool
	flagOmitPages   bool
	flagDownloadDir string
	flagLedgerPath  string
)

// appCfg holds the effective configuration loaded by PersistentPreRunE.
var appCfg *config.AppConfig

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "spingest",
		Short:   "Enumerate and download SharePoint site content",
		Long:    "spingest walks a SharePoint site's document library and site pages,\nemits one metadata record per file, and downloads file content on demand.",
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loadEnvironment()
			appCfg = config.LoadAppConfigFromEnv()
			applyFlagOverrides(cmd, appCfg)
			logging.SetDefault(logging.NewLogger(appCfg.Logging))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&flagPath, "path", "", "server-relative folder to enumerate (default: the default document library)")
	pf.BoolVar(&flagRecursive, "recursive", false, "descend into subfolders")
	pf.BoolVar(&flagOmitFiles, "omit-files", false, "skip document enumeration")
	pf.BoolVar(&flagOmitPages, "omit-pages", false, "skip site page enumeration")
	pf.StringVar(&flagDownloadDir, "download-dir", "", "directory to write downloaded content under")
	pf.StringVar(&flagLedgerPath, "ledger-path", "", "path to the processed-record ledger database")

	cmd.AddCommand(newPrecheckCmd())
	cmd.AddCommand(newIndexCmd())
	cmd.AddCommand(newRunCmd())

	return cmd
}

// applyFlagOverrides layers explicitly-set flags over the env config.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.AppConfig) {
	flags := cmd.Flags()
	if flags.Changed("path") {
		cfg.Indexer.Path = flagPath
	}
	if flags.Changed("recursive") {
		cfg.Indexer.Recursive = flagRecursive
	}
	if flags.Changed("omit-files") {
		cfg.Indexer.OmitFiles = flagOmitFiles
	}
	if flags.Changed("omit-pages") {
		cfg.Indexer.OmitPages = flagOmitPages
	}
	if flags.Changed("download-dir") {
		cfg.Downloader.DownloadDir = flagDownloadDir
	}
	if flags.Changed("ledger-path") {
		cfg.LedgerPath = flagLedgerPath
	}
}

func loadEnvironment() {
	if err := godotenv.Load(); err == nil {
		logging.Default().Debug("Loaded configuration from .env file")
	}
}

// sourceEntry resolves the registered sharepoint connector entry.
func sourceEntry() (pipeline.SourceEntry, error) {
	entry, ok := pipeline.LookupSource(application.ConnectorType)
	if !ok {
		return pipeline.SourceEntry{}, fmt.Errorf("source %q is not registered", application.ConnectorType)
	}
	return entry, nil
}

func buildIndexer() (pipeline.Indexer, error) {
	entry, err := sourceEntry()
	if err != nil {
		return nil, err
	}
	return entry.Indexer(appCfg.Connection, appCfg.Indexer)
}

func buildDownloader() (pipeline.Downloader, error) {
	entry, err := sourceEntry()
	if err != nil {
		return nil, err
	}
	return entry.Downloader(appCfg.Connection, appCfg.Downloader)
}
