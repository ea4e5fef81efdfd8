package main

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"github.com/llehouerou/mediapick/internal/filter"
	"github.com/llehouerou/mediapick/internal/library"
	"github.com/llehouerou/mediapick/internal/presets"
)

const pathWidth = 48

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	favStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

type sourceRow struct {
	source library.Source
	stats  library.SourceStatistics
}

func formatCount(n int) string {
	return humanize.Comma(int64(n))
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	return d.Round(time.Second).String()
}

// truncatePath shortens a path to width cells, keeping its end.
func truncatePath(path string, width int) string {
	if runewidth.StringWidth(path) <= width {
		return path
	}
	rs := []rune(path)
	for i := range rs {
		tail := string(rs[i:])
		if runewidth.StringWidth(tail)+1 <= width {
			return "…" + tail
		}
	}
	return runewidth.Truncate(path, width, "…")
}

// cell pads s to width display cells.
func cell(s string, width int) string {
	return runewidth.FillRight(runewidth.Truncate(s, width, "…"), width)
}

func renderSources(w io.Writer, rows []sourceRow) {
	fmt.Fprintln(w, headerStyle.Render(
		cell("ID", 8)+"  "+cell("NAME", 20)+"  "+cell("STATE", 8)+"  "+
			cell("VIDEOS", 8)+"  "+cell("PHOTOS", 8)+"  "+cell("AVG", 10)+"  ROOT"))
	for _, r := range rows {
		state := okStyle.Render(cell("enabled", 8))
		if !r.source.IsEnabled {
			state = dimStyle.Render(cell("disabled", 8))
		}
		fmt.Fprintln(w,
			cell(r.source.ID, 8)+"  "+
				cell(r.source.Name(), 20)+"  "+
				state+"  "+
				cell(formatCount(r.stats.Videos), 8)+"  "+
				cell(formatCount(r.stats.Photos), 8)+"  "+
				cell(formatDuration(r.stats.AverageDuration), 10)+"  "+
				truncatePath(r.source.RootPath, pathWidth))
	}
}

func renderCategorizedTags(w io.Writer, cats []library.TagCategory, scheme library.CategorizedTags) {
	byCategory := make(map[string][]string)
	for _, t := range scheme.Tags {
		cat := scheme.CategoryOf(t.Name)
		byCategory[cat] = append(byCategory[cat], t.Name)
	}
	for _, c := range cats {
		names := byCategory[c.ID]
		slices.Sort(names)
		fmt.Fprintf(w, "%s %s\n", headerStyle.Render(c.Name+":"), strings.Join(names, ", "))
	}
	if orphans := byCategory[library.UncategorizedID]; len(orphans) > 0 {
		slices.Sort(orphans)
		fmt.Fprintf(w, "%s %s\n", dimStyle.Render("Uncategorized:"), strings.Join(orphans, ", "))
	}
}

func renderFilter(w io.Writer, st *filter.State) {
	var parts []string
	flag := func(on bool, name string) {
		if on {
			parts = append(parts, name)
		}
	}
	flag(st.FavoritesOnly, "favorites")
	flag(st.ExcludeBlacklisted, "no blacklisted")
	flag(st.OnlyNeverPlayed, "never played")
	flag(st.OnlyKnownDuration, "known duration")
	flag(st.OnlyKnownLoudness, "known loudness")
	if st.AudioFilter != "" && st.AudioFilter != filter.AudioPlayAll {
		parts = append(parts, string(st.AudioFilter))
	}
	if st.MediaTypeFilter != "" && st.MediaTypeFilter != filter.MediaAll {
		parts = append(parts, string(st.MediaTypeFilter))
	}
	if st.MinDuration != nil {
		parts = append(parts, ">= "+formatDuration(*st.MinDuration))
	}
	if st.MaxDuration != nil {
		parts = append(parts, "<= "+formatDuration(*st.MaxDuration))
	}
	if len(st.SelectedTags) > 0 {
		mode := "And"
		if !st.GlobalAnd() {
			mode = "Or"
		}
		parts = append(parts, fmt.Sprintf("tags %s (%s)", strings.Join(st.SelectedTags, "+"), mode))
	}
	if len(st.ExcludedTags) > 0 {
		parts = append(parts, "not "+strings.Join(st.ExcludedTags, ","))
	}
	if len(parts) == 0 {
		parts = append(parts, "everything")
	}
	fmt.Fprintf(w, "%s %s\n", headerStyle.Render("filter:"), strings.Join(parts, ", "))
}

func renderItem(w io.Writer, it library.Item, now time.Time) {
	marker := " "
	if it.IsFavorite {
		marker = favStyle.Render("★")
	}
	fmt.Fprintf(w, "%s %s\n", marker, it.FullPath)

	var details []string
	details = append(details, it.MediaType.String())
	if it.Duration != nil {
		details = append(details, formatDuration(*it.Duration))
	}
	if it.IsBlacklisted {
		details = append(details, "blacklisted")
	}
	plays := "never played"
	if it.PlayCount > 0 {
		plays = fmt.Sprintf("played %s times", formatCount(it.PlayCount))
		if it.LastPlayedUTC != nil {
			plays += ", last " + humanize.RelTime(*it.LastPlayedUTC, now, "ago", "from now")
		}
	}
	details = append(details, plays)
	if len(it.Tags) > 0 {
		details = append(details, strings.Join(it.Tags, ", "))
	}
	fmt.Fprintln(w, dimStyle.Render("  "+strings.Join(details, " · ")))
}

func renderPresets(w io.Writer, list []presets.Preset, now time.Time) {
	if len(list) == 0 {
		fmt.Fprintln(w, dimStyle.Render("no presets"))
		return
	}
	for _, p := range list {
		fmt.Fprintf(w, "%s %s %s\n",
			cell(fmt.Sprintf("#%d", p.ID), 5),
			cell(p.Name, 24),
			dimStyle.Render("updated "+humanize.RelTime(p.UpdatedAt, now, "ago", "from now")))
	}
}

func renderBackups(w io.Writer, backups []library.BackupInfo, now time.Time) {
	if len(backups) == 0 {
		fmt.Fprintln(w, dimStyle.Render("no backups"))
		return
	}
	for _, b := range backups {
		fmt.Fprintf(w, "%s %s\n",
			truncatePath(b.Path, pathWidth+16),
			dimStyle.Render(humanize.RelTime(b.CreatedAt, now, "ago", "from now")))
	}
}
