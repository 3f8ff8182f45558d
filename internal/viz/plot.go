package viz

import (
	"fmt"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/motorlab/internal/record"
)

const (
	plotWidth  = 80
	plotHeight = 10
)

// MotorPlot renders commanded vs. actual position (and velocity when
// recorded) for one motor as terminal graphs.
func MotorPlot(rec *record.Record, id int, name string) string {
	m, ok := rec.Motors[id]
	if !ok {
		return fmt.Sprintf("motor %d: no data", id)
	}

	var b strings.Builder

	title := fmt.Sprintf("motor %d", id)
	if name != "" {
		title = fmt.Sprintf("motor %d (%s)", id, name)
	}
	b.WriteString(headerStyle.Render(title))
	b.WriteString("\n")

	b.WriteString(series(m.CommandedPositions, m.ActualPositions, "position (deg): commanded vs actual"))

	if rec.SendVelocity {
		b.WriteString("\n")
		b.WriteString(series(m.CommandedVelocities, m.ActualVelocities, "velocity (deg/s): commanded vs actual"))
	}

	return b.String()
}

// AllMotorPlots renders every tracked motor, in id order.
func AllMotorPlots(rec *record.Record, names map[int]string) string {
	parts := make([]string, 0, len(rec.Motors))
	for _, id := range rec.MotorIDs() {
		parts = append(parts, MotorPlot(rec, id, names[id]))
	}
	return strings.Join(parts, "\n\n")
}

func series(commanded, actual []float64, caption string) string {
	// a series short of the time axis still plots; ragged tails are trimmed
	n := len(commanded)
	if len(actual) < n {
		n = len(actual)
	}
	if n == 0 {
		return "(no samples)\n"
	}

	graph := asciigraph.PlotMany(
		[][]float64{commanded[:n], actual[:n]},
		asciigraph.Height(plotHeight),
		asciigraph.Width(plotWidth),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(asciigraph.Blue, asciigraph.Red),
	)
	return graphStyle.Render(graph) + "\n"
}
