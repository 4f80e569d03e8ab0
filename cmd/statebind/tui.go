package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/vango-dev/statebind/internal/tui"
)

func tuiCmd(configPath *string) *cobra.Command {
	var logFile, watch string

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Drive the counter from the terminal",
		Long: `Open the counter in the terminal. Keys call the bound methods and
the view updates after every forced render.

Keys:
  +  increase    -  decrease    a  async increase
  l  reload      r  reset       q  quit`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var logOut io.Writer = io.Discard
			if logFile != "" {
				f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
				if err != nil {
					return err
				}
				defer f.Close()
				logOut = f
			}

			rt, err := newEnv(*configPath, logOut)
			if err != nil {
				return err
			}
			if watch != "" {
				rt.cfg.Watch.File = watch
			}
			slog.SetDefault(rt.logger)

			rt.watch(cmd.Context())
			return tui.Run(cmd.Context(), rt.def, rt.loop, tui.DefaultKeys(), rt.logger)
		},
	}

	cmd.Flags().StringVar(&logFile, "log-file", "", "Write logs to this file")
	cmd.Flags().StringVarP(&watch, "watch", "w", "", "Yaml file whose count key drives the counter")

	return cmd
}
