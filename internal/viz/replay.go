package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/motorlab/internal/record"
)

const (
	frameInterval = 50 * time.Millisecond
	replayWindow  = 300 // samples visible at once
)

type replayTickMsg time.Time

// ReplayModel plays a recorded run back as a scrolling terminal chart.
type ReplayModel struct {
	rec      *record.Record
	names    map[int]string
	runID    string
	ids      []int
	selected int
	idx      int
	step     int
	playing  bool
}

func NewReplayModel(runID string, rec *record.Record, names map[int]string) ReplayModel {
	// advance so a full record replays in roughly ten seconds
	step := len(rec.TimePoints) / 200
	if step < 1 {
		step = 1
	}
	return ReplayModel{
		rec:     rec,
		names:   names,
		runID:   runID,
		ids:     rec.MotorIDs(),
		step:    step,
		playing: true,
	}
}

func (m ReplayModel) Init() tea.Cmd {
	return replayTick()
}

func replayTick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return replayTickMsg(t)
	})
}

func (m ReplayModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.playing = !m.playing
		case "r":
			m.idx = 0
			m.playing = true
		case "left":
			m.playing = false
			m.idx -= m.step
			if m.idx < 0 {
				m.idx = 0
			}
		case "right":
			m.playing = false
			m.idx += m.step
			if m.idx > len(m.rec.TimePoints)-1 {
				m.idx = len(m.rec.TimePoints) - 1
			}
		case "tab":
			if len(m.ids) > 0 {
				m.selected = (m.selected + 1) % len(m.ids)
			}
		}
		return m, nil

	case replayTickMsg:
		if m.playing && len(m.rec.TimePoints) > 0 {
			m.idx += m.step
			if m.idx >= len(m.rec.TimePoints) {
				m.idx = len(m.rec.TimePoints) - 1
				m.playing = false
			}
		}
		return m, replayTick()
	}

	return m, nil
}

func (m ReplayModel) View() string {
	if len(m.ids) == 0 || len(m.rec.TimePoints) == 0 {
		return "no data to replay\n"
	}

	id := m.ids[m.selected]
	motor := m.rec.Motors[id]

	name := m.names[id]
	if name == "" {
		name = fmt.Sprintf("motor %d", id)
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("replay %s / %s", m.runID, name)))
	b.WriteString("\n")

	lo := 0
	hi := m.idx + 1
	if hi > replayWindow {
		lo = hi - replayWindow
	}
	b.WriteString(replaySeries(motor.CommandedPositions, motor.ActualPositions, lo, hi))

	b.WriteString(m.statsPanel(motor))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("space pause · ←/→ scrub · tab next motor · r restart · q quit"))
	b.WriteString("\n")

	return b.String()
}

func (m ReplayModel) statsPanel(motor *record.MotorSeries) string {
	t := m.rec.TimePoints[m.idx]

	row := func(label string, value string) string {
		return labelStyle.Render(label) + valueStyle.Render(value) + "\n"
	}

	var b strings.Builder
	b.WriteString(row("time", fmt.Sprintf("%.2f s", t)))
	if m.idx < len(motor.CommandedPositions) {
		b.WriteString(row("commanded", fmt.Sprintf("%.2f°", motor.CommandedPositions[m.idx])))
	}
	if m.idx < len(motor.ActualPositions) {
		b.WriteString(row("actual", fmt.Sprintf("%.2f°", motor.ActualPositions[m.idx])))
		if m.idx < len(motor.CommandedPositions) {
			err := motor.CommandedPositions[m.idx] - motor.ActualPositions[m.idx]
			b.WriteString(row("error", fmt.Sprintf("%.2f°", err)))
		}
	}
	state := "paused"
	if m.playing {
		state = "playing"
	}
	b.WriteString(row("state", state))

	return statsStyle.Render(b.String())
}

func replaySeries(commanded, actual []float64, lo, hi int) string {
	clip := func(s []float64) []float64 {
		h := hi
		if h > len(s) {
			h = len(s)
		}
		if lo >= h {
			return nil
		}
		return s[lo:h]
	}

	cmd := clip(commanded)
	act := clip(actual)
	if len(cmd) == 0 && len(act) == 0 {
		return "(no samples)\n"
	}
	n := len(cmd)
	if len(act) < n {
		n = len(act)
	}
	if n < 2 {
		return "(waiting for samples)\n"
	}

	graph := asciigraph.PlotMany(
		[][]float64{cmd[:n], act[:n]},
		asciigraph.Height(plotHeight),
		asciigraph.Width(plotWidth),
		asciigraph.SeriesColors(asciigraph.Blue, asciigraph.Red),
	)
	return graphStyle.Render(graph) + "\n"
}

// Replay runs the playback UI until the user quits.
func Replay(runID string, rec *record.Record, names map[int]string) error {
	p := tea.NewProgram(NewReplayModel(runID, rec, names))
	_, err := p.Run()
	return err
}
