package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	clierrors "github.com/vango-dev/statebind/internal/errors"
)

func explainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "explain [code]",
		Short: "Explain an error code",
		Long: `Print the explanation of an error code, or list every code.

Examples:
  statebind explain
  statebind explain SB003`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if len(args) == 0 {
				for _, code := range clierrors.Codes() {
					t, _ := clierrors.Lookup(code)
					fmt.Fprintf(w, "%s  %-10s %s\n", code, t.Category, t.Message)
				}
				return nil
			}

			code := strings.ToUpper(args[0])
			if _, ok := clierrors.Lookup(code); !ok {
				return clierrors.Newf(clierrors.CategoryCLI, "unknown error code %q", args[0]).
					WithSuggestion("Run 'statebind explain' to list every code.")
			}
			fmt.Fprint(w, clierrors.New(code).Format())
			return nil
		},
	}
}
