// Package progress renders row-loading progress. Reporting is a purely
// observational side channel: reporters never influence control flow, and
// every call is safe on a zero total.
package progress

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// Reporter receives load progress for one file.
type Reporter interface {
	// Start begins a new progress scope with the expected total row count.
	Start(label string, total int64)

	// Advance adds n completed rows to the current scope.
	Advance(n int64)

	// Done finishes the current scope.
	Done()
}

// Null discards all progress events.
type Null struct{}

// Start is a no-op.
func (Null) Start(label string, total int64) {}

// Advance is a no-op.
func (Null) Advance(n int64) {}

// Done is a no-op.
func (Null) Done() {}

var labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

// Bar renders an in-place progress bar to a terminal writer.
// Not safe for concurrent use; the pipeline is single-threaded.
type Bar struct {
	out     io.Writer
	model   progress.Model
	label   string
	total   int64
	current int64
}

// NewBar creates a Bar writing to out.
func NewBar(out io.Writer) *Bar {
	m := progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(30),
		progress.WithoutPercentage(),
	)
	return &Bar{out: out, model: m}
}

// Start begins a new progress scope.
func (b *Bar) Start(label string, total int64) {
	b.label = label
	b.total = total
	b.current = 0
	b.render()
}

// Advance adds n completed rows and re-renders.
func (b *Bar) Advance(n int64) {
	b.current += n
	if b.total > 0 && b.current > b.total {
		// Estimate was off (e.g. quoted fields containing newlines); clamp
		// so the bar never overshoots.
		b.current = b.total
	}
	b.render()
}

// Done completes the bar and moves to the next line.
func (b *Bar) Done() {
	if b.total > 0 {
		b.current = b.total
	}
	b.render()
	fmt.Fprintln(b.out)
}

func (b *Bar) render() {
	var ratio float64
	if b.total > 0 {
		ratio = float64(b.current) / float64(b.total)
	} else if b.current > 0 {
		ratio = 1
	}

	line := fmt.Sprintf("%s %s %d/%d",
		labelStyle.Render(b.label),
		b.model.ViewAs(ratio),
		b.current,
		b.total,
	)
	fmt.Fprint(b.out, "\r"+strings.TrimRight(line, " "))
}

var (
	_ Reporter = Null{}
	_ Reporter = (*Bar)(nil)
)
