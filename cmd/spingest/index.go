package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"spingest/logging"
)

// newIndexCmd enumerates the site and writes one metadata record per file
// to stdout as NDJSON. Logs go to stderr so the stream stays parseable.
func newIndexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "Enumerate site content and emit metadata records as NDJSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			indexer, err := buildIndexer()
			if err != nil {
				return err
			}

			records, errs := indexer.Run(cmd.Context())
			enc := json.NewEncoder(cmd.OutOrStdout())

			count := 0
			for fd := range records {
				if err := enc.Encode(fd); err != nil {
					return err
				}
				count++
			}
			// A fatal error is buffered before the records channel closes.
			select {
			case err := <-errs:
				return err
			default:
			}

			logging.Default().Info("Enumeration complete", "records", count)
			return nil
		},
	}
}
