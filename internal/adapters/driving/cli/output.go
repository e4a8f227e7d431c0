package cli

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

// outputStyles colours status lines. Plain text is written when the
// writer is not a colour terminal.
type outputStyles struct {
	ok   lipgloss.Style
	warn lipgloss.Style
}

func newOutputStyles(w io.Writer) outputStyles {
	r := lipgloss.NewRenderer(w)
	return outputStyles{
		ok:   r.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		warn: r.NewStyle().Foreground(lipgloss.Color("11")),
	}
}
