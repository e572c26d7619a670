package main

import (
	"fmt"
	"strings"

	"github.com/amanah/faraid-engine/faraid"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#2E8B57"))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#808080"))
	warnStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#D2691E"))
)

// table renders rows with padded columns. Columns listed in right are
// right-aligned.
type table struct {
	headers []string
	rows    [][]string
	right   map[int]bool
}

func (t *table) add(row ...string) {
	t.rows = append(t.rows, row)
}

func (t *table) render() string {
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if w := lipgloss.Width(cell); i < len(widths) && w > widths[i] {
				widths[i] = w
			}
		}
	}

	var sb strings.Builder
	sep := mutedStyle.Render("│")

	line := func(cells []string, style lipgloss.Style) {
		for i, cell := range cells {
			s := style.Width(widths[i] + 2)
			if t.right[i] {
				s = s.Align(lipgloss.Right)
			}
			sb.WriteString(s.Render(cell))
			if i < len(cells)-1 {
				sb.WriteString(sep)
			}
		}
		sb.WriteString("\n")
	}

	line(t.headers, headerStyle)
	var rule []string
	for _, w := range widths {
		rule = append(rule, strings.Repeat("─", w+2))
	}
	sb.WriteString(mutedStyle.Render(strings.Join(rule, "┼")))
	sb.WriteString("\n")
	for _, row := range t.rows {
		line(row, cellStyle)
	}
	return sb.String()
}

func renderDistribution(d faraid.Distribution) string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render(fmt.Sprintf("Estate value: %s", d.EstateValue.StringFixed(2))))
	sb.WriteString("\n\n")

	if len(d.Results) == 0 {
		sb.WriteString("No eligible heirs.\n")
	} else {
		t := &table{
			headers: []string{"Heir", "Relationship", "Fraction", "Share", "%", "Explanation"},
			right:   map[int]bool{2: true, 3: true, 4: true},
		}
		for _, r := range d.Results {
			t.add(
				r.FullName,
				r.Relationship.String(),
				r.Fraction.StringFixed(4),
				r.Share.StringFixed(2),
				r.Percentage.StringFixed(2),
				r.Explanation,
			)
		}
		sb.WriteString(t.render())
	}

	sb.WriteString(fmt.Sprintf("\nTotal: %s%%  Residual: %s\n", d.TotalPercentage().StringFixed(2), d.Residual))

	if d.AwlRequired {
		sb.WriteString(warnStyle.Render(fmt.Sprintf(
			"Fixed shares total %s of the estate; 'awl (proportional reduction) is required.",
			d.TotalAllocated.StringFixed(4))))
		sb.WriteString("\n")
	} else if left := d.UncoveredPercentage(); left.IsPositive() {
		sb.WriteString(warnStyle.Render(fmt.Sprintf(
			"%s%% is not covered; additional Asabah rules apply.", left.StringFixed(2))))
		sb.WriteString("\n")
	}

	sb.WriteString(renderExcluded(d.Excluded))
	return sb.String()
}

func renderClassification(c faraid.CategorizedHeirs) string {
	var sb strings.Builder

	placed := c.Classified()
	sb.WriteString(titleStyle.Render(fmt.Sprintf("Eligible heirs: %d", len(placed))))
	sb.WriteString("\n\n")

	if len(placed) > 0 {
		t := &table{headers: []string{"ID", "Heir", "Label", "Role"}}
		for _, h := range placed {
			role := h.Role.String()
			if h.Side != faraid.SideUnspecified {
				role += " (" + h.Side.String() + ")"
			}
			t.add(h.ID, h.FullName, h.Relationship, role)
		}
		sb.WriteString(t.render())
	}

	sb.WriteString(renderExcluded(c.Excluded))
	return sb.String()
}

func renderExcluded(excluded []faraid.Exclusion) string {
	if len(excluded) == 0 {
		return ""
	}
	t := &table{headers: []string{"ID", "Heir", "Label", "Reason"}}
	for _, e := range excluded {
		t.add(e.Heir.ID, e.Heir.FullName, e.Heir.Relationship, string(e.Reason))
	}
	return "\n" + mutedStyle.Render("Excluded:") + "\n" + t.render()
}
