package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "nan",
		Short:         "Neighbor-awareness peer discovery and messaging",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return cfg.Log.Apply(cmd.ErrOrStderr())
		},
	}
	cmd.PersistentFlags().String("config", "", "Path to a JSON config file")
	cmd.PersistentFlags().String("log-level", "", "Log level: debug|info|warn|error")
	cmd.PersistentFlags().String("log-format", "", "Log format: text|json")

	cmd.AddCommand(newDemoCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newVersionCmd())
	return cmd
}
