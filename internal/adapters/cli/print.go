package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"warehouse-slotting/internal/app"
	"warehouse-slotting/internal/core"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printMoves(w io.Writer, res *app.MoveListResult) {
	fmt.Fprintln(w, res.Message)
	if len(res.Moves) == 0 {
		return
	}
	fmt.Fprintf(w, "  %-10s %-10s %-10s %6s\n", "ITEM", "FROM", "TO", "QTY")
	fmt.Fprintln(w, "  "+strings.Repeat("-", 39))
	for _, m := range res.Moves {
		fmt.Fprintf(w, "  %-10d %-10d %-10d %6d\n", m.ItemID, m.From, m.To, m.Qty)
	}
}

func printRelocations(w io.Writer, res *app.CompactionResult) {
	fmt.Fprintln(w, res.Message)
	if len(res.Relocations) == 0 {
		return
	}
	fmt.Fprintf(w, "  %-10s %8s %10s\n", "ITEM", "PRIORITY", "RELOCATED")
	fmt.Fprintln(w, "  "+strings.Repeat("-", 30))
	for _, r := range res.Relocations {
		fmt.Fprintf(w, "  %-10d %8d %10d\n", r.ItemID, r.Priority, r.QtyRelocated)
	}
}

func printShortfalls(w io.Writer, shortfalls []core.Shortfall) {
	fmt.Fprintln(w, "units that did not fit:")
	for _, s := range shortfalls {
		fmt.Fprintf(w, "  item %d (priority %d): %d missing\n", s.ItemID, s.Priority, s.Missing)
	}
}

func printLocations(w io.Writer, res *app.LocationListResult) {
	fmt.Fprintf(w, "  %-8s %-12s %4s %4s  %s\n", "ID", "NAME", "X", "Y", "STOCK")
	fmt.Fprintln(w, "  "+strings.Repeat("-", 50))
	for _, loc := range res.Locations {
		parts := make([]string, 0, len(loc.Items))
		for _, it := range loc.Items {
			p := fmt.Sprintf("%s x%d", it.ItemName, it.Qty)
			if !it.Movable {
				p += " (fixed)"
			}
			if it.Fit != nil && !it.Fit.Unbounded {
				p += fmt.Sprintf(" [%d/%d]", it.Qty, it.Fit.MaxUnits)
			}
			parts = append(parts, p)
		}
		stock := "-"
		if len(parts) > 0 {
			stock = strings.Join(parts, ", ")
		}
		fmt.Fprintf(w, "  %-8d %-12s %4d %4d  %s\n", loc.ID, loc.Name, loc.X, loc.Y, stock)
	}
}
