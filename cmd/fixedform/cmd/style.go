package cmd

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	fixedform "github.com/soypat/go-fixedform"
)

var (
	colorBlock   = lipgloss.Color("#8B5CF6") // violet
	colorControl = lipgloss.Color("#06B6D4") // cyan
	colorIO      = lipgloss.Color("#10B981") // emerald
	colorDecl    = lipgloss.Color("#F59E0B") // amber
	colorUnit    = lipgloss.Color("#EF4444") // red
	colorMuted   = lipgloss.Color("#6B7280") // gray
)

// tagStyles renders statement tags of the details view by statement class.
type tagStyles struct {
	byClass    map[fixedform.Class]lipgloss.Style
	assignment lipgloss.Style
}

func newTagStyles() *tagStyles {
	bold := lipgloss.NewStyle().Bold(true)
	plain := lipgloss.NewStyle()
	return &tagStyles{
		byClass: map[fixedform.Class]lipgloss.Style{
			fixedform.ControlBlock:    bold.Foreground(colorBlock),
			fixedform.ControlNonBlock: plain.Foreground(colorControl),
			fixedform.Assign:          plain.Foreground(colorControl),
			fixedform.IO:              plain.Foreground(colorIO),
			fixedform.Type:            plain.Foreground(colorDecl),
			fixedform.Specification:   plain.Foreground(colorDecl),
			fixedform.MiscNonExec:     plain.Foreground(colorMuted),
			fixedform.TopLevel:        bold.Foreground(colorUnit),
		},
		assignment: plain,
	}
}

// render styles a tag such as "do[10]" or "if continued" by the class of its
// statement kind.
func (s *tagStyles) render(tag string) string {
	kind := tag
	if i := strings.IndexAny(tag, "[ "); i >= 0 {
		kind = tag[:i]
	}
	style := s.assignment
	if class, ok := fixedform.ClassOf(kind); ok {
		style = s.byClass[class]
	}
	return style.Render(tag)
}
