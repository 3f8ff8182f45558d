// Package gateway provides a simulated actuator bank implementing the
// drive.Gateway contract, so tests and demo runs can exercise the full
// control loop without hardware on the bus.
package gateway

import (
	"context"
	"sync"
	"time"

	"github.com/san-kum/motorlab/internal/drive"
)

// substep keeps the plant integration stable at high stiffness
const substep = time.Millisecond

// Bank simulates a set of rotary actuators. Each motor is a unit-inertia
// PD-tracked plant: torque = kp*(targetPos-pos) + kd*(targetVel-vel),
// clamped to the configured ceiling. Motors hold position while torque is
// disabled. Unknown ids are created on first use at position zero.
type Bank struct {
	mu     sync.Mutex
	motors map[int]*motor
	now    func() time.Time
}

type motor struct {
	gains     drive.Gains
	enabled   bool
	pos, vel  float64
	target    drive.Command
	hasTarget bool
	last      time.Time
}

func NewBank() *Bank {
	return &Bank{
		motors: make(map[int]*motor),
		now:    time.Now,
	}
}

func (b *Bank) motor(id int) *motor {
	m, ok := b.motors[id]
	if !ok {
		m = &motor{last: b.now()}
		b.motors[id] = m
	}
	return m
}

func (b *Bank) Disable(ctx context.Context, id int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	m := b.motor(id)
	b.advance(m)
	m.enabled = false
	m.vel = 0
	return ctx.Err()
}

func (b *Bank) Configure(ctx context.Context, id int, g drive.Gains) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	m := b.motor(id)
	b.advance(m)
	m.gains = g
	m.enabled = true
	return ctx.Err()
}

func (b *Bank) Command(ctx context.Context, cmds []drive.Command) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, c := range cmds {
		m := b.motor(c.MotorID)
		b.advance(m)
		m.target = c
		m.hasTarget = true
	}
	return ctx.Err()
}

func (b *Bank) ReadStates(ctx context.Context, ids []int) ([]drive.State, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	states := make([]drive.State, 0, len(ids))
	for _, id := range ids {
		m := b.motor(id)
		b.advance(m)
		states = append(states, drive.State{MotorID: id, Position: m.pos, Velocity: m.vel})
	}
	return states, ctx.Err()
}

func (b *Bank) advance(m *motor) {
	now := b.now()
	dt := now.Sub(m.last)
	m.last = now

	if !m.enabled || !m.hasTarget {
		return
	}

	for dt > 0 {
		h := dt
		if h > substep {
			h = substep
		}
		dt -= h
		hs := h.Seconds()

		targetVel := 0.0
		if m.target.HasVelocity {
			targetVel = m.target.Velocity
		}

		torque := m.gains.Kp*(m.target.Position-m.pos) + m.gains.Kd*(targetVel-m.vel)
		if m.gains.MaxTorque > 0 {
			if torque > m.gains.MaxTorque {
				torque = m.gains.MaxTorque
			} else if torque < -m.gains.MaxTorque {
				torque = -m.gains.MaxTorque
			}
		}

		m.vel += torque * hs
		m.pos += m.vel * hs
	}
}
