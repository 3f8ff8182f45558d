package wave

import (
	"math"
	"testing"
)

func TestNewInvalidParams(t *testing.T) {
	tests := []struct {
		name string
		kind Kind
		p    Params
	}{
		{"zero frequency sine", Sine, Params{Amplitude: 20, Frequency: 0, Duration: 10}},
		{"negative frequency triangle", Triangle, Params{Amplitude: 20, Frequency: -1, Duration: 10}},
		{"zero frequency step", Step, Params{Amplitude: 5, Frequency: 0, Duration: 10}},
		{"zero duration", Sine, Params{Amplitude: 20, Frequency: 0.5, Duration: 0}},
		{"single waypoint", Piecewise, Params{Positions: []float64{5}, Duration: 10}},
		{"no waypoints", Piecewise, Params{Duration: 10}},
		{"unknown kind", Kind("sawtooth"), Params{Amplitude: 20, Frequency: 0.5, Duration: 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.kind, tt.p); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestPeriodicity(t *testing.T) {
	p := Params{Amplitude: 20, Frequency: 0.5, Duration: 10}

	for _, kind := range []Kind{Sine, Triangle, Step} {
		t.Run(string(kind), func(t *testing.T) {
			w, err := New(kind, p)
			if err != nil {
				t.Fatalf("new failed: %v", err)
			}

			period := 1.0 / p.Frequency
			for _, tm := range []float64{0.1, 0.4, 1.3, 2.75} {
				pos1, _, _ := w.At(tm)
				pos2, _, _ := w.At(tm + period)
				if math.Abs(pos1-pos2) > 1e-9 {
					t.Errorf("t=%.2f: position not periodic: %f vs %f", tm, pos1, pos2)
				}
			}
		})
	}
}

func TestSineVelocityMatchesDerivative(t *testing.T) {
	w, err := New(Sine, Params{Amplitude: 20, Frequency: 0.5, Duration: 10, SendVelocity: true})
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}

	const h = 1e-6
	for tm := 0.0; tm < 2.0; tm += 0.1 {
		_, vel, ok := w.At(tm)
		if !ok {
			t.Fatal("expected velocity to be reported")
		}

		p1, _, _ := w.At(tm - h)
		p2, _, _ := w.At(tm + h)
		numeric := (p2 - p1) / (2 * h)

		if math.Abs(vel-numeric) > 1e-3 {
			t.Errorf("t=%.2f: velocity %f, numeric derivative %f", tm, vel, numeric)
		}
	}
}

func TestTriangleSegments(t *testing.T) {
	a, f := 20.0, 0.5
	w, err := New(Triangle, Params{Amplitude: a, Frequency: f, Duration: 10, SendVelocity: true})
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}

	// peak at quarter period, zero crossings at half-period boundaries
	period := 1.0 / f
	checks := []struct{ t, pos float64 }{
		{0, 0},
		{period * 0.25, a},
		{period * 0.5, 0},
		{period * 0.75, -a},
	}
	for _, c := range checks {
		pos, _, _ := w.At(c.t)
		if math.Abs(pos-c.pos) > 1e-9 {
			t.Errorf("t=%.3f: expected position %f, got %f", c.t, c.pos, pos)
		}
	}

	// velocity magnitude is 4*A*f on every segment
	for tm := 0.01; tm < period; tm += 0.05 {
		_, vel, _ := w.At(tm)
		if math.Abs(math.Abs(vel)-4*a*f) > 1e-9 {
			t.Errorf("t=%.2f: expected |velocity| %f, got %f", tm, 4*a*f, vel)
		}
	}

	// continuity across segment boundaries
	for _, b := range []float64{0.25, 0.5, 0.75} {
		before, _, _ := w.At(b*period - 1e-9)
		after, _, _ := w.At(b*period + 1e-9)
		if math.Abs(before-after) > 1e-6 {
			t.Errorf("discontinuity at phase %.2f: %f vs %f", b, before, after)
		}
	}
}

func TestStepValues(t *testing.T) {
	w, err := New(Step, Params{Amplitude: 5, Frequency: 1, Duration: 10, SendVelocity: true})
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}

	pos, vel, _ := w.At(0.1)
	if pos != 5 {
		t.Errorf("t=0.1: expected 5, got %f", pos)
	}
	if vel != 0 {
		t.Errorf("step velocity should be zero, got %f", vel)
	}

	pos, _, _ = w.At(0.6)
	if pos != 0 {
		t.Errorf("t=0.6: expected 0, got %f", pos)
	}
}

func TestPiecewiseInterpolation(t *testing.T) {
	w, err := New(Piecewise, Params{Positions: []float64{0, 10, 0}, Duration: 10, SendVelocity: true})
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}

	checks := []struct{ t, pos float64 }{
		{0, 0},
		{2.5, 5},
		{5, 10},
		{7.5, 5},
		{10 - 1e-9, 0},
	}
	for _, c := range checks {
		pos, _, _ := w.At(c.t)
		if math.Abs(pos-c.pos) > 1e-6 {
			t.Errorf("t=%.2f: expected %f, got %f", c.t, c.pos, pos)
		}
	}

	// slope of first segment: 10 over 5 seconds
	_, vel, _ := w.At(1.0)
	if math.Abs(vel-2.0) > 1e-9 {
		t.Errorf("expected segment slope 2.0, got %f", vel)
	}
	_, vel, _ = w.At(6.0)
	if math.Abs(vel+2.0) > 1e-9 {
		t.Errorf("expected segment slope -2.0, got %f", vel)
	}
}

func TestVelocityAbsentWhenDisabled(t *testing.T) {
	w, err := New(Sine, Params{Amplitude: 20, Frequency: 0.5, Duration: 10})
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}

	if _, _, ok := w.At(1.0); ok {
		t.Error("velocity should not be reported when disabled")
	}
}

func TestParamsImmutable(t *testing.T) {
	positions := []float64{0, 10, 0}
	w, err := New(Piecewise, Params{Positions: positions, Duration: 10})
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}

	positions[1] = 99
	pos, _, _ := w.At(5)
	if pos != 10 {
		t.Errorf("waveform should not share caller's slice, got %f", pos)
	}
}
