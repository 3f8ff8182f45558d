// Package drive executes trajectory tests against a motor gateway.
//
// A [Driver] walks one test through its phases: disable all active
// motors, wait for torque to settle, configure gains per motor group,
// then run the fixed-rate command/observe loop for the waveform's
// duration. Per-motor and per-tick failures are reported and isolated;
// only operator cancellation or an invalid configuration ends a test
// early. The final disable phase runs on every exit path.
package drive

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/san-kum/motorlab/internal/record"
	"github.com/san-kum/motorlab/internal/wave"
)

const (
	DefaultTickPeriod  = 10 * time.Millisecond // 100 Hz
	DefaultSettleDelay = time.Second
)

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseDisabling
	PhaseConfiguring
	PhaseRunning
	PhaseCompleted
	PhaseInterrupted
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseDisabling:
		return "disabling"
	case PhaseConfiguring:
		return "configuring"
	case PhaseRunning:
		return "running"
	case PhaseCompleted:
		return "completed"
	case PhaseInterrupted:
		return "interrupted"
	default:
		return "unknown"
	}
}

// Reporter receives progress events during a run. Implementations must
// not block; the tick callback sits on the control loop.
type Reporter interface {
	Phase(p Phase)
	Tick(elapsed, position float64, states []State)
	Warn(err error)
}

type nopReporter struct{}

func (nopReporter) Phase(Phase)                  {}
func (nopReporter) Tick(_, _ float64, _ []State) {}
func (nopReporter) Warn(error)                   {}

// Config describes the motors a test drives and its timing.
type Config struct {
	Groups       []MotorGroup
	ActiveMotors []int // nil means every motor in every group
	TickPeriod   time.Duration
	SettleDelay  time.Duration
}

type Driver struct {
	gw  Gateway
	cfg Config
	rep Reporter
}

func New(gw Gateway, cfg Config, rep Reporter) *Driver {
	if cfg.TickPeriod <= 0 {
		cfg.TickPeriod = DefaultTickPeriod
	}
	if cfg.SettleDelay <= 0 {
		cfg.SettleDelay = DefaultSettleDelay
	}
	if rep == nil {
		rep = nopReporter{}
	}
	return &Driver{gw: gw, cfg: cfg, rep: rep}
}

// ActiveMotors returns the motors the test drives: the configured subset
// if one was given, otherwise every group member in group order.
func (d *Driver) ActiveMotors() []int {
	if d.cfg.ActiveMotors != nil {
		return d.cfg.ActiveMotors
	}

	seen := make(map[int]bool)
	ids := make([]int, 0)
	for _, g := range d.cfg.Groups {
		for _, id := range g.Motors {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	return ids
}

// Run executes one trajectory test and returns the collected record.
// On cancellation it returns ErrInterrupted and no record, so partial
// data can never be mistaken for a completed test. Motors are
// torque-disabled on the way out regardless of outcome.
func (d *Driver) Run(ctx context.Context, w wave.Waveform) (*record.Record, error) {
	active := d.ActiveMotors()
	if len(active) == 0 {
		return nil, ErrNoActiveMotors
	}

	d.rep.Phase(PhaseDisabling)
	d.warnAll(ApplyEach(ctx, active, "disable", func(ctx context.Context, id int) error {
		return d.gw.Disable(ctx, id)
	}))

	// Final disable must run whether the loop completes, is canceled, or
	// never starts. Uses a fresh context: the run's may already be dead.
	defer func() {
		d.rep.Phase(PhaseDisabling)
		d.warnAll(ApplyEach(context.Background(), active, "disable", func(ctx context.Context, id int) error {
			return d.gw.Disable(ctx, id)
		}))
	}()

	// let hardware release torque before new gains are applied
	select {
	case <-ctx.Done():
		d.rep.Phase(PhaseInterrupted)
		return nil, ErrInterrupted
	case <-time.After(d.cfg.SettleDelay):
	}

	d.rep.Phase(PhaseConfiguring)
	for _, g := range d.cfg.Groups {
		gains := g.Gains
		members := intersect(g.Motors, active)
		d.warnAll(ApplyEach(ctx, members, "configure", func(ctx context.Context, id int) error {
			return d.gw.Configure(ctx, id, gains)
		}))
	}

	d.rep.Phase(PhaseRunning)

	mode := record.VelocityDisabled
	if w.SendsVelocity() {
		mode = record.VelocityEnabled
	}
	rec := record.New(mode)

	ticker := time.NewTicker(d.cfg.TickPeriod)
	defer ticker.Stop()

	start := time.Now()
	for {
		// elapsed is measured from the start timestamp, never accumulated
		// per tick, so scheduling jitter does not compound
		elapsed := time.Since(start).Seconds()
		if elapsed >= w.Duration() {
			break
		}

		select {
		case <-ctx.Done():
			d.rep.Phase(PhaseInterrupted)
			return nil, ErrInterrupted
		default:
		}

		rec.AddTimePoint(elapsed)

		pos, vel, hasVel := w.At(elapsed)
		cmds := make([]Command, 0, len(active))
		for _, id := range active {
			cmds = append(cmds, Command{MotorID: id, Position: pos, Velocity: vel, HasVelocity: hasVel})
			rec.LogCommand(id, pos, vel)
		}

		// The command batch and the state read are issued together and
		// awaited together: the tick's observed state is the one that
		// exists at or after this command.
		var wg sync.WaitGroup
		var cmdErr, readErr error
		var states []State

		wg.Add(2)
		go func() {
			defer wg.Done()
			cmdErr = d.gw.Command(ctx, cmds)
		}()
		go func() {
			defer wg.Done()
			states, readErr = d.gw.ReadStates(ctx, active)
		}()
		wg.Wait()

		if cmdErr != nil {
			d.rep.Warn(fmt.Errorf("t=%.2fs: command batch failed: %w", elapsed, cmdErr))
		}
		if readErr != nil {
			d.rep.Warn(fmt.Errorf("t=%.2fs: state read failed: %w", elapsed, readErr))
		} else {
			// motors absent from the response are tolerated here; the gap
			// surfaces later as a length mismatch in Validate
			for _, s := range states {
				rec.LogState(s.MotorID, s.Position, s.Velocity)
			}
		}

		d.rep.Tick(elapsed, pos, states)

		select {
		case <-ctx.Done():
			d.rep.Phase(PhaseInterrupted)
			return nil, ErrInterrupted
		case <-ticker.C:
		}
	}

	d.rep.Phase(PhaseCompleted)
	return rec, nil
}

func (d *Driver) warnAll(failures []*MotorError) {
	for _, f := range failures {
		d.rep.Warn(f)
	}
}

func intersect(ids, allowed []int) []int {
	set := make(map[int]bool, len(allowed))
	for _, id := range allowed {
		set[id] = true
	}

	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if set[id] {
			out = append(out, id)
		}
	}
	return out
}
