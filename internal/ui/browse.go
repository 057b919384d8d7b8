package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Aman-CERP/indsearch/internal/search"
)

// Querier answers search queries. *search.Service implements it.
type Querier interface {
	Query(ctx context.Context, input string) ([]*search.Result, error)
}

// resultsMsg carries the answer to the query issued as seq.
type resultsMsg struct {
	seq     int
	query   string
	results []*search.Result
	err     error
}

// browseModel is the bubbletea model for the catalog browser.
type browseModel struct {
	ctx      context.Context
	querier  Querier
	input    textinput.Model
	styles   Styles
	results  []*search.Result
	err      error
	seq      int
	cursor   int
	width    int
	height   int
	quitting bool
}

func newBrowseModel(ctx context.Context, querier Querier, styles Styles) *browseModel {
	ti := textinput.New()
	ti.Placeholder = "Search indicators"
	ti.Prompt = "> "
	ti.CharLimit = 256
	ti.Focus()

	return &browseModel{
		ctx:     ctx,
		querier: querier,
		input:   ti,
		styles:  styles,
		width:   80,
		height:  24,
	}
}

// search issues a query for the current input. Answers to older queries are
// dropped when they arrive.
func (m *browseModel) search() tea.Cmd {
	m.seq++
	seq, query := m.seq, m.input.Value()
	ctx, querier := m.ctx, m.querier
	return func() tea.Msg {
		results, err := querier.Query(ctx, query)
		return resultsMsg{seq: seq, query: query, results: results, err: err}
	}
}

// Init implements tea.Model.
func (m *browseModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.search())
}

// Update implements tea.Model.
func (m *browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "up", "ctrl+p":
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case "down", "ctrl+n":
			if m.cursor < len(m.results)-1 {
				m.cursor++
			}
			return m, nil
		}

		before := m.input.Value()
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		if m.input.Value() != before {
			return m, tea.Batch(cmd, m.search())
		}
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(msg.Width-4, 10)
		return m, nil

	case resultsMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		m.results = msg.results
		m.err = msg.err
		m.cursor = min(m.cursor, max(len(m.results)-1, 0))
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m *browseModel) View() string {
	if m.quitting {
		return ""
	}

	contentWidth := max(m.width-4, 40)
	var sections []string

	header := m.styles.Header.Render("Climate indicators")
	if m.err == nil {
		header += m.styles.Dim.Render(fmt.Sprintf("  %d shown", len(m.results)))
	}
	sections = append(sections, header, m.input.View(), m.divider(contentWidth))

	switch {
	case m.err != nil:
		sections = append(sections, m.styles.Error.Render("Search unavailable: "+reason(m.err)))
	case len(m.results) == 0:
		sections = append(sections, m.styles.Dim.Render("No matching indicators."))
	default:
		sections = append(sections, m.renderList())
		sections = append(sections, m.divider(contentWidth))
		sections = append(sections, FormatIndicator(m.results[m.cursor].Indicator, m.styles, contentWidth))
	}

	sections = append(sections, m.styles.Dim.Render("↑/↓ select  •  esc to quit"))
	return strings.Join(sections, "\n")
}

// renderList renders a window of titles around the cursor.
func (m *browseModel) renderList() string {
	rows := max(m.height/2-4, 3)
	start := 0
	if m.cursor >= rows {
		start = m.cursor - rows + 1
	}
	end := min(start+rows, len(m.results))

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		ind := m.results[i].Indicator
		line := ind.Title + "  " + m.styles.Reference.Render(ind.Reference())
		if i == m.cursor {
			lines = append(lines, m.styles.Selected.Render("▸ ")+m.styles.Selected.Render(ind.Title)+"  "+m.styles.Reference.Render(ind.Reference()))
			continue
		}
		lines = append(lines, "  "+line)
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m *browseModel) divider(width int) string {
	return m.styles.Border.Render(strings.Repeat("─", width))
}

func reason(err error) string {
	msg := err.Error()
	if cause := errors.Unwrap(err); cause != nil {
		msg = cause.Error()
	}
	return msg
}

// RunBrowser runs the full-screen browser until the user quits or ctx ends.
func RunBrowser(ctx context.Context, querier Querier, in io.Reader, out io.Writer, styles Styles) error {
	m := newBrowseModel(ctx, querier, styles)
	p := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
		tea.WithAltScreen(),
	)
	if _, err := p.Run(); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("browser: %w", err)
	}
	return nil
}
