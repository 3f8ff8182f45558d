package wave

import (
	"fmt"
	"math"
)

// Kind names a trajectory family.
type Kind string

const (
	Sine      Kind = "sine"
	Triangle  Kind = "triangle"
	Step      Kind = "step"
	Piecewise Kind = "piecewise"
)

// Params holds the tunable values for one waveform. Positions is only
// meaningful for piecewise waveforms; Amplitude and Frequency only for the
// periodic ones.
type Params struct {
	Amplitude    float64
	Frequency    float64
	Duration     float64
	Positions    []float64
	SendVelocity bool
}

// Waveform is a validated trajectory: a pure mapping from elapsed seconds
// to a target position and, when velocity mode is on, a target velocity.
// Treat it as read-only once constructed.
type Waveform struct {
	Kind   Kind
	Params Params
}

func New(kind Kind, p Params) (Waveform, error) {
	if p.Duration <= 0 {
		return Waveform{}, fmt.Errorf("duration must be positive, got %f", p.Duration)
	}

	switch kind {
	case Sine, Triangle, Step:
		if p.Frequency <= 0 {
			return Waveform{}, fmt.Errorf("%s: frequency must be positive, got %f", kind, p.Frequency)
		}
		if math.IsNaN(p.Amplitude) || math.IsInf(p.Amplitude, 0) {
			return Waveform{}, fmt.Errorf("%s: amplitude must be finite", kind)
		}
	case Piecewise:
		if len(p.Positions) < 2 {
			return Waveform{}, fmt.Errorf("piecewise: need at least 2 positions, got %d", len(p.Positions))
		}
	default:
		return Waveform{}, fmt.Errorf("unknown waveform: %s", kind)
	}

	p.Positions = append([]float64(nil), p.Positions...)
	return Waveform{Kind: kind, Params: p}, nil
}

func (w Waveform) Duration() float64   { return w.Params.Duration }
func (w Waveform) SendsVelocity() bool { return w.Params.SendVelocity }

// At returns the target position at elapsed time t, and the target
// velocity when velocity mode is enabled (ok reports whether the velocity
// value is meaningful). It has no state across calls.
func (w Waveform) At(t float64) (pos, vel float64, ok bool) {
	switch w.Kind {
	case Sine:
		omega := 2 * math.Pi * w.Params.Frequency
		pos = w.Params.Amplitude * math.Sin(omega*t)
		vel = w.Params.Amplitude * omega * math.Cos(omega*t)
	case Triangle:
		pos, vel = w.triangleAt(t)
	case Step:
		period := 1.0 / w.Params.Frequency
		phase := math.Mod(t, period) / period
		if phase < 0.5 {
			pos = w.Params.Amplitude
		}
		// position is discontinuous; the commanded velocity stays zero
		vel = 0
	case Piecewise:
		pos, vel = w.piecewiseAt(t)
	}
	return pos, vel, w.Params.SendVelocity
}

func (w Waveform) triangleAt(t float64) (pos, vel float64) {
	a := w.Params.Amplitude
	f := w.Params.Frequency
	period := 1.0 / f
	phase := math.Mod(t, period) / period

	slope := 4 * a * f
	switch {
	case phase < 0.25: // ramp up to positive
		return phase * 4 * a, slope
	case phase < 0.5: // ramp down to zero
		return (0.5 - phase) * 4 * a, -slope
	case phase < 0.75: // ramp down to negative
		return (phase - 0.5) * 4 * -a, -slope
	default: // ramp up to zero
		return (phase - 1.0) * 4 * a, slope
	}
}

func (w Waveform) piecewiseAt(t float64) (pos, vel float64) {
	points := w.Params.Positions
	segDur := w.Params.Duration / float64(len(points)-1)

	seg := int(t / segDur)
	if seg > len(points)-2 {
		seg = len(points) - 2
	}
	if seg < 0 {
		seg = 0
	}

	progress := (t - float64(seg)*segDur) / segDur
	start := points[seg]
	end := points[seg+1]

	return start + (end-start)*progress, (end - start) / segDur
}
