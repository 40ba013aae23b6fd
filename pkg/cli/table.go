package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Theme defines the color scheme for table output.
type Theme struct {
	Primary lipgloss.Color // Header and border color
	Match   lipgloss.Color // Accepted verdicts
	Reject  lipgloss.Color // Rejected verdicts
	Dim     lipgloss.Color
}

// DefaultTheme is the default bright green theme.
var DefaultTheme = Theme{
	Primary: lipgloss.Color("#00ff9f"),
	Match:   lipgloss.Color("#00ff9f"),
	Reject:  lipgloss.Color("#ff5f5f"),
	Dim:     lipgloss.Color("#6e7681"),
}

// Styles holds all styles derived from a theme.
type Styles struct {
	Header lipgloss.Style
	Border lipgloss.Style
	Cell   lipgloss.Style
	Match  lipgloss.Style
	Reject lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(t Theme) *Styles {
	return &Styles{
		Header: lipgloss.NewStyle().Bold(true).Foreground(t.Primary).Padding(0, 1),
		Border: lipgloss.NewStyle().Foreground(t.Dim),
		Cell:   lipgloss.NewStyle().Padding(0, 1),
		Match:  lipgloss.NewStyle().Bold(true).Foreground(t.Match).Padding(0, 1),
		Reject: lipgloss.NewStyle().Bold(true).Foreground(t.Reject).Padding(0, 1),
	}
}

// plainStyles renders without colors.
var plainStyles = &Styles{
	Header: lipgloss.NewStyle().Padding(0, 1),
	Cell:   lipgloss.NewStyle().Padding(0, 1),
	Match:  lipgloss.NewStyle().Padding(0, 1),
	Reject: lipgloss.NewStyle().Padding(0, 1),
}

// Tabler is implemented by results that render as a table.
type Tabler interface {
	// Table returns the header row and the body rows.
	Table() (headers []string, rows [][]string)
}

// Verdict values recognized in table cells and styled accordingly.
const (
	VerdictMatch  = "match"
	VerdictReject = "no match"
)

// RenderTable renders headers and rows as a bordered table.
func RenderTable(s *Styles, headers []string, rows [][]string) string {
	if s == nil {
		s = plainStyles
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(s.Border).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return s.Header
			}
			if row >= 0 && row < len(rows) && col < len(rows[row]) {
				switch rows[row][col] {
				case VerdictMatch:
					return s.Match
				case VerdictReject:
					return s.Reject
				}
			}
			return s.Cell
		})
	return t.String()
}

func outputTable(w io.Writer, result any, s *Styles) error {
	tb, ok := result.(Tabler)
	if !ok {
		return outputYAML(w, result)
	}
	headers, rows := tb.Table()
	_, err := fmt.Fprintln(w, RenderTable(s, headers, rows))
	return err
}

// VerdictText returns the verdict cell for a match decision.
func VerdictText(match bool) string {
	if match {
		return VerdictMatch
	}
	return VerdictReject
}
