package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/vango-dev/statebind/pkg/async"
	"github.com/vango-dev/statebind/pkg/host"
)

func runCmd(configPath *string) *cobra.Command {
	var (
		settle  time.Duration
		asJSON  bool
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "run [method...]",
		Short: "Call counter methods and print every render",
		Long: `Mount the counter, call each method in order and print a line per
forced render. With --settle the event loop keeps running afterwards so
async actions and the loadable can settle.

Examples:
  statebind run increase increase
  statebind run increaseAsync --settle 100ms
  statebind run reload --settle 1s --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logOut := io.Discard
			if verbose {
				logOut = cmd.ErrOrStderr()
			}
			rt, err := newEnv(*configPath, logOut)
			if err != nil {
				return err
			}
			return runMethods(cmd.Context(), rt, cmd.OutOrStdout(), args, settle, asJSON)
		},
	}

	cmd.Flags().DurationVar(&settle, "settle", 0, "Keep the loop running this long after the last call")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print renders as JSON lines")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log to stderr")

	return cmd
}

// runMethods drives the loop on the calling goroutine.
func runMethods(ctx context.Context, rt *env, w io.Writer, methods []string, settle time.Duration, asJSON bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	emit := func(snap host.Snapshot) { printSnapshot(w, snap, asJSON) }

	comp, err := host.Mount(rt.def, nil, host.WithLogger(rt.logger), host.WithOnRender(emit))
	if err != nil {
		return err
	}
	defer comp.Destroy()
	emit(comp.Snapshot())

	rt.watch(ctx)
	rt.loop.RunPending()

	for _, m := range methods {
		if _, err := comp.Call(ctx, m); err != nil {
			return err
		}
		rt.loop.RunPending()
	}

	if settle > 0 {
		ctx, cancel := context.WithTimeout(ctx, settle)
		defer cancel()
		if err := rt.loop.Run(ctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return err
		}
	}
	return nil
}

func printSnapshot(w io.Writer, snap host.Snapshot, asJSON bool) {
	if asJSON {
		json.NewEncoder(w).Encode(map[string]any{
			"renders": snap.Renders,
			"props":   snap.Props,
			"errors":  snap.Errors,
		})
		return
	}
	fmt.Fprintf(w, "render %d: %s\n", snap.Renders, formatProps(snap.Props))
}

func formatProps(props map[string]any) string {
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		v := props[name]
		if s, ok := v.(async.Snapshot); ok {
			switch s.State {
			case async.HasValue:
				v = s.Value
			case async.HasError:
				v = "error(" + s.Err.Error() + ")"
			default:
				v = s.State.String()
			}
		}
		parts = append(parts, fmt.Sprintf("%s=%v", name, v))
	}
	return strings.Join(parts, " ")
}
