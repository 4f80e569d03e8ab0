package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vango-dev/statebind/internal/config"
)

func configCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create configuration",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a config file with the default values",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "statebind.yaml"
			if len(args) == 1 {
				path = args[0]
			}
			if !force {
				if _, err := config.Load(path); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", path)
				}
			}
			if err := config.Save(config.Default(), path); err != nil {
				return err
			}
			success(cmd, "wrote %s", path)
			return nil
		},
	}
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "server.addr:          %s\n", cfg.Server.Addr)
			fmt.Fprintf(w, "metrics.enabled:      %t\n", cfg.Metrics.Enabled)
			fmt.Fprintf(w, "metrics.path:         %s\n", cfg.Metrics.Path)
			fmt.Fprintf(w, "metrics.namespace:    %s\n", cfg.Metrics.Namespace)
			fmt.Fprintf(w, "tracing.enabled:      %t\n", cfg.Tracing.Enabled)
			fmt.Fprintf(w, "log.level:            %s\n", cfg.Log.Level)
			fmt.Fprintf(w, "log.format:           %s\n", cfg.Log.Format)
			fmt.Fprintf(w, "demo.async_delay:     %s\n", cfg.Demo.AsyncDelay)
			fmt.Fprintf(w, "demo.loadable_delay:  %s\n", cfg.Demo.LoadableDelay)
			fmt.Fprintf(w, "demo.loadable_value:  %d\n", cfg.Demo.LoadableValue)
			fmt.Fprintf(w, "watch.file:           %s\n", cfg.Watch.File)
			return nil
		},
	}

	cmd.AddCommand(initCmd, showCmd)
	return cmd
}
