package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/bubbles/progress"
	"golang.org/x/term"

	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driving"
)

const (
	defaultBarWidth = 40
	maxBarWidth     = 60
)

// progressPrinter renders phase progress as a single redrawn line.
// Nothing is drawn when the writer is not a terminal.
type progressPrinter struct {
	out         io.Writer
	interactive bool
	bar         progress.Model
	phase       driving.Phase
}

func newProgressPrinter(out io.Writer) *progressPrinter {
	width := defaultBarWidth
	interactive := false

	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		interactive = true
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			// Leave room for the label and counters.
			width = min(maxBarWidth, max(10, w-40))
		}
	}

	return &progressPrinter{
		out:         out,
		interactive: interactive,
		bar:         progress.New(progress.WithDefaultGradient(), progress.WithWidth(width)),
	}
}

// Update implements driving.ProgressFunc.
func (p *progressPrinter) Update(phase driving.Phase, done, total int) {
	if !p.interactive || total <= 0 {
		return
	}

	if p.phase != "" && p.phase != phase {
		fmt.Fprintln(p.out)
	}
	p.phase = phase

	fmt.Fprintf(p.out, "\r%-9s %s %d/%d", phaseLabel(phase), p.bar.ViewAs(float64(done)/float64(total)), done, total)
	if done >= total {
		fmt.Fprintln(p.out)
		p.phase = ""
	}
}

func phaseLabel(phase driving.Phase) string {
	switch phase {
	case driving.PhaseEmbed:
		return "Embedding"
	case driving.PhaseUpload:
		return "Uploading"
	default:
		return string(phase)
	}
}
