package statsui

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/rtlab/internal/model"
	"github.com/verte-zerg/rtlab/internal/stats"
)

const (
	trendPlotHeight = 10
	wideLayout      = 80
)

var theme = struct {
	activeTab, inactiveTab lipgloss.Style
	muted, err, bar        lipgloss.Style
	card, cardTitle        lipgloss.Style
	cardValue, tableText   lipgloss.Style
}{
	activeTab: lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true).Padding(0, 1).
		Border(lipgloss.RoundedBorder(), true).BorderForeground(lipgloss.Color("#3A8CC8")),
	inactiveTab: lipgloss.NewStyle().Foreground(lipgloss.Color("#B0B0B0")).Padding(0, 1).
		Border(lipgloss.RoundedBorder(), true).BorderForeground(lipgloss.Color("#4A4A4A")),
	muted:     lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E")),
	err:       lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")),
	bar:       lipgloss.NewStyle().Foreground(lipgloss.Color("#3A8CC8")),
	card:      lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.RoundedBorder(), true).BorderForeground(lipgloss.Color("#4A4A4A")),
	cardTitle: lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C")),
	cardValue: lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true),
	tableText: lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8")),
}

func renderDelays(d model.DelayAnalysis, width int) string {
	cards := []string{
		metricCard("Valid trials", strconv.Itoa(d.Count)),
		metricCard("Max delay (s)", stats.FormatSeconds(d.Max, 6)),
		metricCard("Mean delay (s)", stats.FormatSeconds(d.Mean, 6)),
		metricCard("Std dev (s)", stats.FormatSeconds(d.StdDev, 6)),
		metricCard("Excluded", strconv.Itoa(len(d.Invalid))),
	}
	summary := strings.Join(cards, "\n")
	if width >= wideLayout {
		summary = lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.JoinHorizontal(lipgloss.Top, cards[:3]...),
			lipgloss.JoinHorizontal(lipgloss.Top, cards[3:]...),
		)
	}
	body := renderTo(func(w io.Writer) error {
		if err := renderBucketBars(w, d.Buckets, width); err != nil {
			return err
		}
		return stats.RenderInvalidDelays(w, d.Invalid)
	})
	return strings.TrimRight(summary+"\n\n"+body, "\n")
}

// renderBucketBars draws one horizontal bar per delay bucket, scaled to the
// largest bucket.
func renderBucketBars(w io.Writer, buckets []model.DelayBucket, width int) error {
	most, labelWidth := 0, 0
	for _, b := range buckets {
		most = max(most, b.Count)
		labelWidth = max(labelWidth, lipgloss.Width(b.Label))
	}
	space := max(10, width-labelWidth-12)
	if _, err := fmt.Fprintln(w, "Delay buckets"); err != nil {
		return err
	}
	for _, b := range buckets {
		n := 0
		if most > 0 {
			n = b.Count * space / most
		}
		label := b.Label + strings.Repeat(" ", labelWidth-lipgloss.Width(b.Label))
		if _, err := fmt.Fprintf(w, "%s %s %d\n", label, theme.bar.Render(strings.Repeat("█", n)), b.Count); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}

func renderRanges(res model.Result, width int) string {
	return strings.TrimRight(renderTo(func(w io.Writer) error {
		if err := stats.RenderRangeTable(w, res.Ranges); err != nil {
			return err
		}
		if err := stats.RenderComparisons(w, res.Comparisons); err != nil {
			return err
		}
		return stats.RenderTrendsWithSize(w, res.Trends, width, trendPlotHeight, true)
	}), "\n")
}

func renderCorrelation(res model.Result, width int) string {
	if len(res.Correlations) == 0 {
		return "No correlations computed."
	}
	cards := make([]string, len(res.Correlations))
	for i, c := range res.Correlations {
		cards[i] = metricCard(c.Range.Label, fmt.Sprintf("r=%s  p=%s  n=%d",
			stats.FormatSeconds(c.R, 3), stats.FormatSeconds(c.PValue, 3), c.N))
	}
	summary := strings.Join(cards, "\n")
	if width >= wideLayout {
		summary = lipgloss.JoinHorizontal(lipgloss.Top, cards...)
	}
	body := renderTo(func(w io.Writer) error {
		return stats.RenderWarnings(w, res.Warnings)
	})
	return strings.TrimRight(summary+"\n\n"+body, "\n")
}

func renderTo(render func(io.Writer) error) string {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return fmt.Sprintf("Failed to render: %v", err)
	}
	return buf.String()
}

func metricCard(label, value string) string {
	return theme.card.Render(theme.cardTitle.Render(label) + "\n" + theme.cardValue.Render(value))
}

func newStimulusTable() table.Model {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1, 0, 0)
	styles.Cell = styles.Cell.Padding(0, 1, 0, 0)
	styles.Selected = styles.Cell.Foreground(lipgloss.Color("#F0F0F0")).Bold(true)

	t := table.New(table.WithColumns([]table.Column{
		{Title: "Stimulus", Width: 8},
		{Title: "N", Width: 5},
		{Title: "Mean (s)", Width: 10},
		{Title: "Median (s)", Width: 10},
	}), table.WithHeight(1))
	t.SetStyles(styles)
	return t
}

func stimulusRows(stimuli []model.StimulusSummary) []table.Row {
	rows := make([]table.Row, len(stimuli))
	for i, s := range stimuli {
		rows[i] = table.Row{
			strconv.Itoa(s.Stimulus),
			strconv.Itoa(s.N),
			stats.FormatSeconds(s.Mean, 3),
			stats.FormatSeconds(s.Median, 3),
		}
	}
	return rows
}

// fitTableHeight sizes t so its rendered view spans lines rows. The header
// height depends on the styles, so the view is measured and corrected.
func fitTableHeight(t *table.Model, lines int) {
	h := max(lines, 1)
	t.SetHeight(h)
	for i := 0; i < 2; i++ {
		diff := lines - lipgloss.Height(t.View())
		if diff == 0 {
			return
		}
		h = max(h+diff, 1)
		t.SetHeight(h)
	}
}

// fitLines pads or cuts s to exactly height lines, each at least width
// columns wide.
func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	out := make([]string, height)
	for i := range out {
		var line string
		if i < len(lines) {
			line = lines[i]
		}
		out[i] = line + strings.Repeat(" ", max(width-lipgloss.Width(line), 0))
	}
	return strings.Join(out, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	return runewidth.Truncate(s, width, "...")
}
