package viz

import (
	"fmt"
	"io"
	"strings"

	"github.com/san-kum/motorlab/internal/drive"
)

// ConsoleReporter prints phase transitions, warnings, and a single
// in-place status line while the control loop runs.
type ConsoleReporter struct {
	out     io.Writer
	names   map[int]string
	inTicks bool
}

func NewConsoleReporter(out io.Writer, names map[int]string) *ConsoleReporter {
	return &ConsoleReporter{out: out, names: names}
}

func (r *ConsoleReporter) Phase(p drive.Phase) {
	r.endTicks()
	fmt.Fprintln(r.out, phaseStyle.Render(fmt.Sprintf("==> %s", p)))
}

func (r *ConsoleReporter) Warn(err error) {
	r.endTicks()
	fmt.Fprintln(r.out, warnStyle.Render(fmt.Sprintf("warning: %v", err)))
}

func (r *ConsoleReporter) Tick(elapsed, position float64, states []drive.State) {
	var b strings.Builder
	fmt.Fprintf(&b, "t=%6.2fs  cmd=%7.2f°", elapsed, position)
	for _, s := range states {
		label := r.names[s.MotorID]
		if label == "" {
			label = fmt.Sprintf("%d", s.MotorID)
		}
		fmt.Fprintf(&b, "  %s:%7.2f°", label, s.Position)
	}

	// overwrite the previous status line in place
	fmt.Fprintf(r.out, "\r\033[K%s", b.String())
	r.inTicks = true
}

func (r *ConsoleReporter) endTicks() {
	if r.inTicks {
		fmt.Fprintln(r.out)
		r.inTicks = false
	}
}
