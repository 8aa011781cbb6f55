package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPrecheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "precheck",
		Short: "Validate site connectivity and credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			indexer, err := buildIndexer()
			if err != nil {
				return err
			}
			if err := indexer.Precheck(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "connection ok")
			return nil
		},
	}
}
