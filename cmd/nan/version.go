package main

import (
	"fmt"

	"github.com/spf13/cobra"

	nan "github.com/dep2p/go-nan"
)

func newVersionCmd() *cobra.Command {
	var outputJSON bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			if outputJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]string{
					"version": nan.Version,
					"commit":  nan.GitCommit,
					"date":    nan.BuildDate,
				})
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), nan.VersionInfo())
			return nil
		},
	}
	cmd.Flags().BoolVar(&outputJSON, "json", false, "Print as JSON")
	return cmd
}
