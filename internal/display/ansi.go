package display

import "github.com/charmbracelet/lipgloss/v2"

// ANSI palette grounded on the teacher's colorize.go / root.go conventions:
// purple/orange/cyan for structure, red/green for delete/insert, yellow for
// replace. Rotating uses a short cycle so nearby diff indices stay visually
// distinct without a full 256-colour ramp.
var (
	styleNormal   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	styleDim      = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	styleBright   = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	styleReplace  = lipgloss.NewStyle().Foreground(lipgloss.Color("221"))
	styleDataFlow = lipgloss.NewStyle().Foreground(lipgloss.Color("81")).Italic(true)
	styleDelete   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	styleInsert   = lipgloss.NewStyle().Foreground(lipgloss.Color("120"))

	rotatingPalette = []string{"170", "99", "141", "212", "183"}
)

// RenderANSI renders a segment sequence to an ANSI-coloured line, the
// terminal-facing companion to RenderRow (grounded on colorize.go's
// ColorizeInstructionLine, minus the chroma-token pass since our segments
// already carry semantic colour classes rather than needing lexing).
func RenderANSI(segs []Segment) string {
	var out string
	for _, s := range segs {
		if s.Kind == SegEol {
			out += "\n"
			continue
		}
		out += styleFor(s).Render(s.Text)
	}
	return out
}

func styleFor(s Segment) lipgloss.Style {
	switch s.Color {
	case ColorDim:
		return styleDim
	case ColorBright:
		return styleBright
	case ColorReplace:
		return styleReplace
	case ColorDataFlow:
		return styleDataFlow
	case ColorDelete:
		return styleDelete
	case ColorInsert:
		return styleInsert
	case ColorRotating:
		c := rotatingPalette[s.RotatingIndex%len(rotatingPalette)]
		return lipgloss.NewStyle().Foreground(lipgloss.Color(c)).Bold(true)
	default:
		return styleNormal
	}
}
