package reporter

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorPrimary = lipgloss.Color("#5A9BD5")
	colorPass    = lipgloss.Color("#8BC34A")
	colorFail    = lipgloss.Color("#E05252")
)

// textStyle renders text with a lipgloss style, or unchanged when plain
type textStyle struct {
	style lipgloss.Style
	plain bool
}

func (t textStyle) Render(s string) string {
	if t.plain {
		return s
	}
	return t.style.Render(s)
}

type styles struct {
	title   textStyle
	section textStyle
	label   textStyle
	pass    textStyle
	fail    textStyle
}

// newStyles builds console styles for the writer. The renderer detects
// whether the writer is a terminal, so redirected output stays plain.
func newStyles(w io.Writer, useColors bool) *styles {
	if !useColors {
		plain := textStyle{plain: true}
		return &styles{title: plain, section: plain, label: plain, pass: plain, fail: plain}
	}

	r := lipgloss.NewRenderer(w)
	return &styles{
		title:   textStyle{style: r.NewStyle().Bold(true).Foreground(colorPrimary)},
		section: textStyle{style: r.NewStyle().Bold(true)},
		label:   textStyle{style: r.NewStyle().Faint(true)},
		pass:    textStyle{style: r.NewStyle().Bold(true).Foreground(colorPass)},
		fail:    textStyle{style: r.NewStyle().Bold(true).Foreground(colorFail)},
	}
}
