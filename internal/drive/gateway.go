package drive

import "context"

// Gains is the control parameter triple pushed to an actuator when it is
// configured for a test.
type Gains struct {
	Kp        float64
	Kd        float64
	MaxTorque float64
}

// Command is one per-tick target for a single motor. Velocity is only
// sent when HasVelocity is set.
type Command struct {
	MotorID     int
	Position    float64
	Velocity    float64
	HasVelocity bool
}

// State is one observed motor sample.
type State struct {
	MotorID  int
	Position float64
	Velocity float64
}

// MotorGroup is a named set of motors sharing one gain triple.
type MotorGroup struct {
	Name   string
	Motors []int
	Gains  Gains
}

// Gateway is the actuator interface the driver commands. Implementations
// talk to hardware (or simulate it); every operation may fail
// independently per call. ReadStates may return fewer states than
// requested when some motors do not report.
type Gateway interface {
	Disable(ctx context.Context, id int) error
	Configure(ctx context.Context, id int, g Gains) error
	Command(ctx context.Context, cmds []Command) error
	ReadStates(ctx context.Context, ids []int) ([]State, error)
}
