package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/Aman-CERP/indsearch/internal/catalog"
	"github.com/Aman-CERP/indsearch/internal/render"
	"github.com/Aman-CERP/indsearch/internal/search"
)

// Listing writes indicators as a terminal listing.
type Listing struct {
	out    io.Writer
	styles Styles
	width  int
}

// NewListing creates a listing writer. A positive width wraps abstracts.
func NewListing(out io.Writer, styles Styles, width int) *Listing {
	return &Listing{out: out, styles: styles, width: width}
}

// Render writes one entry per result in result order.
func (l *Listing) Render(results []*search.Result) error {
	if len(results) == 0 {
		_, err := fmt.Fprintln(l.out, l.styles.Dim.Render("No matching indicators."))
		return err
	}
	for i, r := range results {
		if i > 0 {
			if _, err := fmt.Fprintln(l.out); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(l.out, FormatIndicator(r.Indicator, l.styles, l.width)); err != nil {
			return err
		}
	}
	return nil
}

// FormatIndicator renders the entry for one indicator, ending in a newline.
func FormatIndicator(ind *catalog.Indicator, styles Styles, width int) string {
	var sb strings.Builder

	sb.WriteString(styles.Title.Render(ind.Title))
	sb.WriteString("  ")
	sb.WriteString(styles.Reference.Render(ind.Reference()))
	sb.WriteString("\n")

	if len(ind.Vars) > 0 {
		vars := make([]string, len(ind.Vars))
		for i, v := range ind.Vars {
			vars[i] = styles.Variable.Render(v.Name) + styles.Dim.Render(" ("+v.Description+")")
		}
		sb.WriteString("  " + styles.Label.Render("Uses:") + " " + strings.Join(vars, ", ") + "\n")
	}

	if ind.Abstract != "" {
		abstract := ind.Abstract
		if width > 4 {
			abstract = lipgloss.NewStyle().Width(width - 2).Render(abstract)
		}
		for _, line := range strings.Split(abstract, "\n") {
			sb.WriteString("  " + strings.TrimRight(line, " ") + "\n")
		}
	}

	if render.ShowKeywords(ind) {
		kws := make([]string, len(ind.Keywords))
		for i, k := range ind.Keywords {
			kws[i] = styles.Keyword.Render(strings.TrimSpace(k))
		}
		sb.WriteString("  " + styles.Label.Render("Keywords:") + " " + strings.Join(kws, ", ") + "\n")
	}

	sb.WriteString("  " + styles.Label.Render("Yaml ID:") + " " + ind.ID + "\n")
	return sb.String()
}

// RenderStatus writes a catalog status summary.
func RenderStatus(out io.Writer, st search.Status, styles Styles) error {
	var sb strings.Builder
	sb.WriteString(styles.Header.Render("Catalog: "+st.Source) + "\n\n")
	if !st.Available() {
		sb.WriteString("  " + styles.Error.Render("Search unavailable") + "\n")
	}
	sb.WriteString(fmt.Sprintf("  State:      %s\n", st.State))
	sb.WriteString(fmt.Sprintf("  Indicators: %d\n", st.Count))
	if !st.LoadedAt.IsZero() {
		sb.WriteString(fmt.Sprintf("  Loaded:     %s\n", st.LoadedAt.Format(time.DateTime)))
	}
	if st.Error != "" {
		sb.WriteString("  Error:      " + styles.Error.Render(st.Error) + "\n")
	}
	_, err := io.WriteString(out, sb.String())
	return err
}
