package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ChicagoDave/cityenvelope/pkg/config"
	"github.com/ChicagoDave/cityenvelope/pkg/ingest"
	"github.com/ChicagoDave/cityenvelope/pkg/model"
	"github.com/ChicagoDave/cityenvelope/pkg/validation"
)

var (
	accentFg  = lipgloss.Color("#7C3AED")
	errorFg   = lipgloss.Color("#EF4444")
	warnFg    = lipgloss.Color("#F59E0B")
	okFg      = lipgloss.Color("#10B981")
	baseDimFg = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#6B7280"}
	borderCol = lipgloss.Color("#243141")

	titleStyle = lipgloss.NewStyle().Foreground(accentFg).Bold(true)
	errorStyle = lipgloss.NewStyle().Foreground(errorFg).Bold(true)
	warnStyle  = lipgloss.NewStyle().Foreground(warnFg).Bold(true)
	okStyle    = lipgloss.NewStyle().Foreground(okFg).Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(baseDimFg)
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(borderCol).Padding(0, 1)
)

func printValidationReport(r *validation.Report) {
	if len(r.Errors) > 0 {
		fmt.Println(errorStyle.Render(fmt.Sprintf("ERRORS (%d):", len(r.Errors))))
		for _, e := range r.Errors {
			printResult(e)
		}
		fmt.Println()
	}

	if len(r.Warnings) > 0 {
		fmt.Println(warnStyle.Render(fmt.Sprintf("WARNINGS (%d):", len(r.Warnings))))
		for _, w := range r.Warnings {
			printResult(w)
		}
		fmt.Println()
	}

	if len(r.Info) > 0 {
		fmt.Println(dimStyle.Render(fmt.Sprintf("INFO (%d):", len(r.Info))))
		for _, i := range r.Info {
			fmt.Printf("  [%s] %s\n", i.Level, i.Message)
		}
		fmt.Println()
	}

	if r.Valid {
		fmt.Println(okStyle.Render(fmt.Sprintf("Result: VALID (%s)", r.Summary)))
	} else {
		fmt.Println(errorStyle.Render(fmt.Sprintf("Result: INVALID (%s)", r.Summary)))
	}
}

func printResult(res validation.Result) {
	switch {
	case res.Feature != "":
		fmt.Printf("  [%s] %s: %s\n", res.Level, res.Feature, res.Message)
	default:
		fmt.Printf("  [%s] %s\n", res.Level, res.Message)
	}
	if res.Path != "" {
		fmt.Println(dimStyle.Render(fmt.Sprintf("    -> %s = %v", res.Path, res.ActualValue)))
	}
	if res.Expected != "" {
		fmt.Printf("    expected: %s\n", res.Expected)
	}
	for _, s := range res.Suggestions {
		fmt.Printf("    * %s\n", s)
	}
}

func printImportSummary(cfg *config.Import, res *ingest.Result) {
	d := res.District
	lower, upper := d.LowerCorner(), d.UpperCorner()

	volume, floor := 0.0, 0.0
	for _, b := range d.Buildings() {
		volume += b.Volume()
		floor += b.FloorArea()
	}

	lines := []string{
		titleStyle.Render(fmt.Sprintf("%s / %s", cfg.City, d.Name)),
		fmt.Sprintf("%-16s %s", "Reference system", d.SRSName()),
		fmt.Sprintf("%-16s (%.1f, %.1f, %.1f)", "Lower corner", lower.X, lower.Y, lower.Z),
		fmt.Sprintf("%-16s (%.1f, %.1f, %.1f)", "Upper corner", upper.X, upper.Y, upper.Z),
		"",
		fmt.Sprintf("%-16s %d", "Features", res.Stats.Features),
		fmt.Sprintf("%-16s %d", "LOD0 buildings", res.Stats.LOD0),
		fmt.Sprintf("%-16s %d", "LOD1 buildings", res.Stats.LOD1),
		fmt.Sprintf("%-16s %d", "Dropped", res.Stats.Dropped),
		fmt.Sprintf("%-16s %d", "Skipped", res.Stats.Skipped),
		"",
		fmt.Sprintf("%-16s %s m2", "Floor area", formatQuantity(floor)),
		fmt.Sprintf("%-16s %s m3", "Volume", formatQuantity(volume)),
	}
	if area := d.Area(); area > 0 {
		lines = append(lines, fmt.Sprintf("%-16s %s m2", "District area", formatQuantity(area)))
	}
	fmt.Println(boxStyle.Render(strings.Join(lines, "\n")))
}

func printBuildingTable(buildings []*model.Building) {
	header := fmt.Sprintf("%-24s %-14s %6s %8s %12s %12s %8s",
		"Building", "Function", "Storeys", "Height", "Floor m2", "Volume m3", "Roof")
	fmt.Println(titleStyle.Render(header))
	fmt.Println(dimStyle.Render(strings.Repeat("-", lipgloss.Width(header))))

	for _, b := range buildings {
		fmt.Printf("%-24s %-14s %6d %8.1f %12s %12s %8s\n",
			truncate(b.Name(), 24),
			truncate(b.Function, 14),
			b.StoreysAboveGround(),
			b.MaxHeight()-b.LowerCorner().Z,
			formatQuantity(b.FloorArea()),
			formatQuantity(b.Volume()),
			b.RoofType())
	}
	fmt.Println(dimStyle.Render(fmt.Sprintf("%d buildings", len(buildings))))
}

func formatQuantity(v float64) string {
	if v >= 1_000_000 {
		return fmt.Sprintf("%.2fM", v/1_000_000)
	}
	if v >= 10_000 {
		return fmt.Sprintf("%.1fK", v/1_000)
	}
	return fmt.Sprintf("%.0f", v)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "~"
}
