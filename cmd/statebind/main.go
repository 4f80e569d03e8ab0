package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	clierrors "github.com/vango-dev/statebind/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		clierrors.Print(os.Stderr, clierrors.Classify(err))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "statebind",
		Short: "Bind reactive state containers to component lifecycles",
		Long: `statebind connects reactive state containers to UI components.

Containers are subscribed when a component mounts and released when it is
destroyed. Writes made inside an action are collected and applied with a
single render when the action returns. Writes from anywhere else render
immediately.

The bundled counter demo can be driven from the command line, served over
websockets or explored in the terminal.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default $STATEBIND_CONFIG)")

	rootCmd.AddCommand(
		runCmd(&configPath),
		serveCmd(&configPath),
		tuiCmd(&configPath),
		configCmd(&configPath),
		explainCmd(),
		versionCmd(),
	)
	return rootCmd
}

// success prints a success message.
func success(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), "✓ %s\n", fmt.Sprintf(format, args...))
}
