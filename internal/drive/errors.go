package drive

import (
	"errors"
	"fmt"
)

// Domain errors for test execution.
var (
	// ErrInterrupted indicates the operator canceled a running test.
	// An interrupted run yields no data.
	ErrInterrupted = errors.New("drive: test interrupted")

	// ErrNoActiveMotors indicates a test configuration with an empty
	// active motor set.
	ErrNoActiveMotors = errors.New("drive: no active motors")
)

// MotorError wraps a failed per-motor gateway operation with the motor it
// concerned. These are reported, never propagated to sibling motors.
type MotorError struct {
	MotorID int
	Op      string
	Err     error
}

func (e *MotorError) Error() string {
	return fmt.Sprintf("motor %d: %s failed: %v", e.MotorID, e.Op, e.Err)
}

func (e *MotorError) Unwrap() error {
	return e.Err
}
