package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"warehouse-slotting/internal/adapters/web"
	"warehouse-slotting/internal/app"
	"warehouse-slotting/internal/bootstrap"
	"warehouse-slotting/internal/config"
	"warehouse-slotting/internal/core"
	"warehouse-slotting/internal/db"
	"warehouse-slotting/internal/logging"

	"github.com/spf13/cobra"
)

func newPlaceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "place <warehouse-id> <item-id>",
		Short: "Place one unit of an item in the first location with room",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			whID, err := parseID("warehouse id", args[0])
			if err != nil {
				return err
			}
			itemID, err := parseID("item id", args[1])
			if err != nil {
				return err
			}
			return withService(cmd, func(ctx context.Context, svc app.ApplicationService) error {
				res, err := svc.PlaceUnit(ctx, app.PlaceUnitRequest{WarehouseID: whID, ItemID: itemID})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "item %d placed at location %d\n", res.ItemID, res.LocationID)
				return nil
			})
		},
	}
}

func newFillCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fill <warehouse-id>",
		Short: "Move movable units into empty locations, largest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			whID, err := parseID("warehouse id", args[0])
			if err != nil {
				return err
			}
			return withService(cmd, func(ctx context.Context, svc app.ApplicationService) error {
				res, err := svc.OptimizeSimple(ctx, whID)
				if err != nil {
					return err
				}
				printMoves(cmd.OutOrStdout(), res)
				return nil
			})
		},
	}
}

func newCompactPriorityCmd() *cobra.Command {
	var items []string

	cmd := &cobra.Command{
		Use:   "compact-priority <warehouse-id> --item <item-id>:<priority> ...",
		Short: "Pack prioritised items into the front of the grid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			whID, err := parseID("warehouse id", args[0])
			if err != nil {
				return err
			}
			priorities, err := parsePriorities(items)
			if err != nil {
				return err
			}
			return withService(cmd, func(ctx context.Context, svc app.ApplicationService) error {
				res, err := svc.RecompactByPriority(ctx, app.RecompactRequest{WarehouseID: whID, Items: priorities})
				if err != nil {
					if sf := core.ShortfallsOf(err); len(sf) > 0 {
						printShortfalls(cmd.ErrOrStderr(), sf)
					}
					return err
				}
				printRelocations(cmd.OutOrStdout(), res)
				return nil
			})
		},
	}
	cmd.Flags().StringArrayVarP(&items, "item", "i", nil, "item and priority as <item-id>:<priority> (repeatable)")
	_ = cmd.MarkFlagRequired("item")
	return cmd
}

// parsePriorities parses <item-id>:<priority> pairs.
func parsePriorities(specs []string) ([]core.ItemPriority, error) {
	out := make([]core.ItemPriority, 0, len(specs))
	for _, s := range specs {
		idPart, prioPart, ok := strings.Cut(s, ":")
		if !ok {
			return nil, fmt.Errorf("invalid --item %q: want <item-id>:<priority>", s)
		}
		id, err := parseID("item id", strings.TrimSpace(idPart))
		if err != nil {
			return nil, err
		}
		prio, err := strconv.Atoi(strings.TrimSpace(prioPart))
		if err != nil {
			return nil, fmt.Errorf("invalid priority in --item %q: %w", s, err)
		}
		out = append(out, core.ItemPriority{ItemID: id, Priority: prio})
	}
	return out, nil
}

func newCompactCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "compact <warehouse-id>",
		Short: "Re-plan every movable unit of the warehouse from the front of the grid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			whID, err := parseID("warehouse id", args[0])
			if err != nil {
				return err
			}
			return withService(cmd, func(ctx context.Context, svc app.ApplicationService) error {
				res, err := svc.CompactWarehouse(ctx, app.CompactRequest{WarehouseID: whID, DryRun: dryRun})
				if err != nil {
					return err
				}
				printMoves(cmd.OutOrStdout(), res)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the planned moves without applying them")
	return cmd
}

func newLayoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Show, store or apply warehouse layouts",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get <warehouse-id>",
		Short: "Print the stored layout as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			whID, err := parseID("warehouse id", args[0])
			if err != nil {
				return err
			}
			return withService(cmd, func(ctx context.Context, svc app.ApplicationService) error {
				res, err := svc.GetLayout(ctx, whID)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), res)
			})
		},
	})

	var file string
	set := &cobra.Command{
		Use:   "set <warehouse-id> [--file layout.json]",
		Short: "Store a layout read from a file or stdin and regenerate locations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			whID, err := parseID("warehouse id", args[0])
			if err != nil {
				return err
			}
			req, err := readLayout(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}
			req.WarehouseID = whID
			return withService(cmd, func(ctx context.Context, svc app.ApplicationService) error {
				res, err := svc.SaveLayout(ctx, req)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), res.Message)
				return nil
			})
		},
	}
	set.Flags().StringVarP(&file, "file", "f", "", "layout JSON file (default stdin)")
	cmd.AddCommand(set)

	cmd.AddCommand(&cobra.Command{
		Use:   "regen <warehouse-id>",
		Short: "Recreate every location from the stored layout (discards their stock)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			whID, err := parseID("warehouse id", args[0])
			if err != nil {
				return err
			}
			return withService(cmd, func(ctx context.Context, svc app.ApplicationService) error {
				res, err := svc.RegenerateLocations(ctx, whID)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), res.Message)
				return nil
			})
		},
	})
	return cmd
}

// readLayout decodes a SaveLayoutRequest from file, or from stdin when file
// is empty or "-".
func readLayout(stdin io.Reader, file string) (app.SaveLayoutRequest, error) {
	var req app.SaveLayoutRequest
	r := stdin
	if file != "" && file != "-" {
		f, err := os.Open(file)
		if err != nil {
			return req, fmt.Errorf("failed to open layout: %w", err)
		}
		defer f.Close()
		r = f
	}
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return req, fmt.Errorf("invalid layout JSON: %w", err)
	}
	return req, nil
}

func newLocationsCmd() *cobra.Command {
	var expand, asJSON bool

	cmd := &cobra.Command{
		Use:   "locations <warehouse-id>",
		Short: "List active locations and their stock",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			whID, err := parseID("warehouse id", args[0])
			if err != nil {
				return err
			}
			return withService(cmd, func(ctx context.Context, svc app.ApplicationService) error {
				res, err := svc.ListLocations(ctx, app.ListLocationsRequest{WarehouseID: whID, ExpandUnits: expand})
				if err != nil {
					return err
				}
				if asJSON {
					return printJSON(cmd.OutOrStdout(), res)
				}
				printLocations(cmd.OutOrStdout(), res)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&expand, "expand-units", false, "include the fit and per-unit placements of every item")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pool, err := db.NewPool(ctx, config.Load().DatabaseURL)
			if err != nil {
				return err
			}
			defer pool.Close()

			applied, err := db.Migrate(ctx, pool)
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
				return nil
			}
			for _, name := range applied {
				fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", name)
			}
			return nil
		},
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := config.Load()
			logger := logging.FromContext(ctx)

			rt, err := bootstrap.Open(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer rt.Close()
			return bootstrap.Serve(ctx, rt, cfg, logger)
		},
	}
}

func newTokenCmd() *cobra.Command {
	var subject, role string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token signed with JWT_SECRET",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			secret := config.Load().JWTSecret
			if secret == "" {
				return fmt.Errorf("JWT_SECRET environment variable not set")
			}
			token, err := web.IssueToken(secret, subject, role, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "operator", "token subject")
	cmd.Flags().StringVar(&role, "role", "operator", "token role claim")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	return cmd
}
