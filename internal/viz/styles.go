package viz

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/vsrbench/internal/dynamo"
)

var (
	Title  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ffff"))
	Header = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffffff")).BorderStyle(lipgloss.NormalBorder()).BorderBottom(true)
	Subtle = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	Label  = lipgloss.NewStyle().Foreground(lipgloss.Color("#888899"))
)

// Heading renders a section title followed by a dim subtitle.
func Heading(title, subtitle string) string {
	if subtitle == "" {
		return Header.Render(title)
	}
	return Header.Render(title + " " + Subtle.Render(subtitle))
}

// FieldTable writes one aligned name/value line per field.
func FieldTable(w io.Writer, fields []dynamo.Field) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, f := range fields {
		fmt.Fprintf(tw, "%s\t%s\n", Label.Render(f.Name), formatValue(f.Value))
	}
	return tw.Flush()
}

// Table writes header and records tab-aligned, header styled.
func Table(w io.Writer, header []string, records [][]any) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.ToUpper(strings.Join(header, "\t")))
	for _, rec := range records {
		cells := make([]string, len(rec))
		for i, v := range rec {
			cells[i] = formatValue(v)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

// Plot draws values as an ASCII line chart. It returns "" for an empty series.
func Plot(values []float64, caption string, width, height int) string {
	if len(values) == 0 {
		return ""
	}
	return asciigraph.Plot(values,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "-"
	case float64:
		return fmt.Sprintf("%.6g", x)
	default:
		return fmt.Sprint(x)
	}
}
