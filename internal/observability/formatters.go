// Package observability provides formatted terminal output for profiles, queries and ranked results.
package observability

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/jonathan/song-scout/internal/config"
	"github.com/jonathan/song-scout/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 72
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 6
	// maxCell bounds table cell width
	maxCell = 48
)

// Printer handles formatted output for the CLI
type Printer struct {
	out       io.Writer
	useColors bool
}

// NewPrinter creates a Printer without colors that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// NewColorPrinter creates a Printer that colors headings and warnings when useColors is set
// and the environment allows it (NO_COLOR unset, TERM not dumb).
func NewColorPrinter(out io.Writer, useColors bool) *Printer {
	if _, ok := os.LookupEnv("NO_COLOR"); ok || os.Getenv("TERM") == "dumb" {
		useColors = false
	}
	return &Printer{out: out, useColors: useColors}
}

func (p *Printer) paint(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if p.useColors {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // terminal output; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprint(p.out, "│ ")
	p.paint(color.Bold).Fprint(p.out, pad(title, boxWidth-4))
	fmt.Fprint(p.out, " │\n")
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %s │\n", pad(truncate(line, boxWidth-4), boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintProfile outputs a human-readable summary of a song profile.
func (p *Printer) PrintProfile(profile *types.Profile) {
	if profile == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Title:    %s\n", orDash(profile.Title))
	fmt.Fprintf(&sb, "Artist:   %s\n", orDash(profile.Artist))

	writeList(&sb, "Tags", profile.Tags)
	writeList(&sb, "Instr.", profile.Instruments)

	for _, f := range []struct {
		label string
		value types.FlexString
	}{
		{"Rhythm", profile.Rhythm},
		{"Metre", profile.TimeSignature},
		{"Tempo", profile.TempoBPM},
		{"Region", profile.Region},
		{"Era", profile.Era},
		{"Label", profile.Label},
	} {
		if v := strings.TrimSpace(f.value.String()); v != "" {
			fmt.Fprintf(&sb, "%-9s %s\n", f.label+":", v)
		}
	}

	writeList(&sb, "Similar", profile.SimilarArtists)
	writeList(&sb, "Evidence", profile.EvidenceTerms)
	writeList(&sb, "Awards", profile.Awards)

	if len(profile.Confidence) > 0 {
		keys := make([]string, 0, len(profile.Confidence))
		for k := range profile.Confidence {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%.2f", k, profile.Confidence[k]))
		}
		fmt.Fprintf(&sb, "Conf.:    %s\n", strings.Join(parts, " "))
	}

	p.printBox("SONG PROFILE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintQueries outputs the numbered query list.
func (p *Printer) PrintQueries(queries []string) {
	if len(queries) == 0 {
		p.printBox("SEARCH QUERIES", "(none)")
		return
	}

	var sb strings.Builder
	for i, q := range queries {
		fmt.Fprintf(&sb, "%2d. %s\n", i+1, q)
	}
	p.printBox(fmt.Sprintf("SEARCH QUERIES (%d)", len(queries)), strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRanked outputs the ranked results as a table with the leading score factors.
//
//nolint:errcheck // terminal output; errors are not recoverable
func (p *Printer) PrintRanked(items []types.RankedItem) {
	if len(items) == 0 {
		p.paint(color.FgYellow).Fprintln(p.out, "No ranked results.")
		return
	}

	rows := make([][]string, 0, len(items))
	for i, it := range items {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			fmt.Sprintf("%.3f", it.Score),
			truncate(it.Title, maxCell),
			truncate(it.Href, maxCell),
			topFactors(it.Why, 3),
		})
	}
	p.table([]string{"#", "Score", "Title", "Link", "Why"}, rows)
}

// PrintPresets outputs the preset weight table.
func (p *Printer) PrintPresets(presets []config.Preset) {
	header := []string{"Preset"}
	for _, f := range types.Factors() {
		header = append(header, f.Label())
	}
	header = append(header, "Description")

	rows := make([][]string, 0, len(presets))
	for _, pr := range presets {
		row := []string{pr.Name}
		for _, f := range types.Factors() {
			row = append(row, fmt.Sprintf("%.1f", pr.Weights.Get(f)))
		}
		rows = append(rows, append(row, pr.Description))
	}
	p.table(header, rows)
}

// PrintReport outputs a full pipeline report.
//
//nolint:errcheck // terminal output; errors are not recoverable
func (p *Printer) PrintReport(report *types.Report) {
	if report == nil {
		return
	}

	p.paint(color.FgCyan, color.Bold).Fprintf(p.out, "Seed: %s\n", report.Seed)

	if report.ParseFailure != "" {
		p.paint(color.FgRed).Fprintln(p.out, "The model reply could not be parsed as a song profile. Raw reply:")
		p.printBox("RAW MODEL OUTPUT", report.ParseFailure)
		return
	}

	p.PrintProfile(report.Profile)
	p.PrintQueries(report.Queries)

	fmt.Fprintf(p.out, "Results: %d raw, %d after filtering, %d ranked (%s)\n",
		report.RawCount, report.FilteredCount, len(report.Ranked), report.Duration.Round(time.Millisecond))
	if report.RetrievalError != "" {
		p.paint(color.FgYellow).Fprintf(p.out, "⚠ search failed: %s\n", report.RetrievalError)
	}
	if report.Message != "" {
		p.paint(color.FgYellow).Fprintf(p.out, "⚠ %s\n", report.Message)
	}
	if len(report.Ranked) > 0 {
		p.PrintRanked(report.Ranked)
	}
}

func (p *Printer) table(header []string, rows [][]string) {
	table := tablewriter.NewTable(p.out,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoWrap: tw.WrapNone},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoFormat: tw.On},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{ShowHeader: tw.Off},
			},
		}),
	)
	table.Header(header)
	_ = table.Bulk(rows)
	_ = table.Render()
}

// topFactors lists the n largest non-zero contributions, largest first.
func topFactors(why map[string]float64, n int) string {
	type kv struct {
		k string
		v float64
	}
	var all []kv
	for k, v := range why {
		if v > 0 {
			all = append(all, kv{k, v})
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].v != all[j].v {
			return all[i].v > all[j].v
		}
		return all[i].k < all[j].k
	})
	if len(all) > n {
		all = all[:n]
	}
	parts := make([]string, 0, len(all))
	for _, e := range all {
		parts = append(parts, fmt.Sprintf("%s %.2f", e.k, e.v))
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ", ")
}

func writeList(sb *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		return
	}
	shown := items[:min(len(items), maxItemsToShow)]
	line := strings.Join(shown, ", ")
	if extra := len(items) - len(shown); extra > 0 {
		line += fmt.Sprintf(" (+%d more)", extra)
	}
	fmt.Fprintf(sb, "%-9s %s\n", label+":", line)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func pad(s string, n int) string {
	if l := len([]rune(s)); l < n {
		return s + strings.Repeat(" ", n-l)
	}
	return s
}
