package main

import (
	"github.com/spf13/cobra"

	"spingest/infrastructure/ledger"
	"spingest/logging"
)

// newRunCmd enumerates and downloads in one pass, consulting the processed
// ledger so files already fetched at the same version are skipped.
func newRunCmd() *cobra.Command {
	var noLedger bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Enumerate and download site content",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := logging.Default()

			indexer, err := buildIndexer()
			if err != nil {
				return err
			}
			downloader, err := buildDownloader()
			if err != nil {
				return err
			}

			var led *ledger.Ledger
			if !noLedger {
				led, err = ledger.Open(appCfg.LedgerPath, logger)
				if err != nil {
					return err
				}
				defer led.Close()
			}

			records, errs := indexer.Run(ctx)

			downloaded, skipped, failed := 0, 0, 0
			for fd := range records {
				if led != nil {
					seen, err := led.Seen(ctx, fd.Identifier, fd.Metadata.Version)
					if err != nil {
						return err
					}
					if seen {
						skipped++
						continue
					}
				}

				resp, err := downloader.Run(ctx, fd)
				if err != nil {
					logger.Error("Download failed",
						"identifier", fd.Identifier,
						"path", fd.SourceIdentifiers.Fullpath,
						"error", err)
					failed++
					continue
				}
				downloaded++

				if led != nil {
					if err := led.Record(ctx, fd.Identifier, fd.Metadata.Version, resp.Path); err != nil {
						return err
					}
				}
			}
			// A fatal error is buffered before the records channel closes.
			select {
			case err := <-errs:
				return err
			default:
			}

			logger.Info("Run complete",
				"downloaded", downloaded,
				"skipped", skipped,
				"failed", failed)
			return nil
		},
	}

	cmd.Flags().BoolVar(&noLedger, "no-ledger", false, "download everything, ignoring the processed ledger")

	return cmd
}
