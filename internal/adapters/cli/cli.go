// Package cli implements slotctl, the operator command line for the slotting
// engine. Commands talk to the same ApplicationService the HTTP API uses.
//
// All commands support --verbose (-v) for debug-level logging. The logger is
// carried through context.Context.
package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"warehouse-slotting/internal/app"
	"warehouse-slotting/internal/bootstrap"
	"warehouse-slotting/internal/config"
	"warehouse-slotting/internal/logging"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// Execute runs slotctl and returns an error if any command fails.
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:          "slotctl",
		Short:        "slotctl places and compacts stock in gridded warehouses",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg := config.Load()
			level := logging.ParseLevel(cfg.LogLevel)
			if verbose {
				level = charmlog.DebugLevel
			}
			ctx := logging.WithLogger(cmd.Context(), logging.New(os.Stderr, level))
			cmd.SetContext(ctx)
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newPlaceCmd())
	root.AddCommand(newFillCmd())
	root.AddCommand(newCompactPriorityCmd())
	root.AddCommand(newCompactCmd())
	root.AddCommand(newLayoutCmd())
	root.AddCommand(newLocationsCmd())
	root.AddCommand(newMigrateCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newTokenCmd())
	return root
}

// withService opens the runtime, runs fn with the application service and
// releases the runtime afterwards.
func withService(cmd *cobra.Command, fn func(ctx context.Context, svc app.ApplicationService) error) error {
	ctx := cmd.Context()
	rt, err := bootstrap.Open(ctx, config.Load(), logging.FromContext(ctx))
	if err != nil {
		return err
	}
	defer rt.Close()
	return fn(ctx, rt.Service)
}

// parseID parses a positional id argument.
func parseID(what, s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", what, s)
	}
	return id, nil
}
