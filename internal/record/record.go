// Package record holds the time-aligned commanded vs. observed series
// recorded during an actuator test.
//
// A [Record] is append-only while a test runs: one time point and one
// commanded sample per tracked motor per tick, plus whatever observed
// state the hardware reported. Consistency is deliberately not enforced
// in the hot path; [Record.Validate] checks every series against the
// time axis afterwards and reports all mismatches at once.
package record

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// VelocityMode decides at construction time whether commanded-velocity
// series exist. It never changes for the lifetime of a record.
type VelocityMode int

const (
	VelocityDisabled VelocityMode = iota
	VelocityEnabled
)

// MotorSeries is the recorded data for a single motor. CommandedVelocities
// is nil unless the record was created with VelocityEnabled.
type MotorSeries struct {
	MotorID             int       `json:"motor_id"`
	CommandedPositions  []float64 `json:"commanded_positions"`
	ActualPositions     []float64 `json:"actual_positions"`
	CommandedVelocities []float64 `json:"commanded_velocities"`
	ActualVelocities    []float64 `json:"actual_velocities"`
}

// Record is the full test data set: a shared time axis plus per-motor series.
type Record struct {
	TimePoints   []float64            `json:"time_points"`
	SendVelocity bool                 `json:"send_velocity"`
	Motors       map[int]*MotorSeries `json:"motors"`
}

func New(mode VelocityMode) *Record {
	return &Record{
		TimePoints:   make([]float64, 0),
		SendVelocity: mode == VelocityEnabled,
		Motors:       make(map[int]*MotorSeries),
	}
}

func (r *Record) Mode() VelocityMode {
	if r.SendVelocity {
		return VelocityEnabled
	}
	return VelocityDisabled
}

// AddTimePoint appends an elapsed-seconds sample. The caller guarantees
// monotonic increase; Validate checks lengths, not ordering, afterwards.
func (r *Record) AddTimePoint(t float64) {
	r.TimePoints = append(r.TimePoints, t)
}

func (r *Record) motor(id int) *MotorSeries {
	m, ok := r.Motors[id]
	if !ok {
		m = &MotorSeries{
			MotorID:            id,
			CommandedPositions: make([]float64, 0),
			ActualPositions:    make([]float64, 0),
			ActualVelocities:   make([]float64, 0),
		}
		if r.SendVelocity {
			m.CommandedVelocities = make([]float64, 0)
		}
		r.Motors[id] = m
	}
	return m
}

// LogCommand records the commanded target for a motor, registering the
// motor on first use. The velocity argument is ignored unless the record
// was created with VelocityEnabled.
func (r *Record) LogCommand(id int, position, velocity float64) {
	m := r.motor(id)
	m.CommandedPositions = append(m.CommandedPositions, position)
	if r.SendVelocity {
		m.CommandedVelocities = append(m.CommandedVelocities, velocity)
	}
}

// LogState records an observed motor state, registering the motor on
// first use.
func (r *Record) LogState(id int, position, velocity float64) {
	m := r.motor(id)
	m.ActualPositions = append(m.ActualPositions, position)
	m.ActualVelocities = append(m.ActualVelocities, velocity)
}

// MotorIDs returns the tracked motor ids in ascending order.
func (r *Record) MotorIDs() []int {
	ids := make([]int, 0, len(r.Motors))
	for id := range r.Motors {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Violation describes one series whose length disagrees with the time axis.
type Violation struct {
	MotorID int
	Series  string
	Want    int
	Got     int
}

func (v Violation) String() string {
	return fmt.Sprintf("motor %d: %s length mismatch (%d != %d)", v.MotorID, v.Series, v.Got, v.Want)
}

// Validate compares every tracked series against the time axis and returns
// one violation per mismatch. It never stops at the first finding; an
// empty result means the record is fully consistent.
func (r *Record) Validate() []Violation {
	violations := make([]Violation, 0)
	want := len(r.TimePoints)

	for _, id := range r.MotorIDs() {
		m := r.Motors[id]

		if len(m.CommandedPositions) != want {
			violations = append(violations, Violation{id, "commanded_positions", want, len(m.CommandedPositions)})
		}
		if len(m.ActualPositions) != want {
			violations = append(violations, Violation{id, "actual_positions", want, len(m.ActualPositions)})
		}
		if m.CommandedVelocities != nil && len(m.CommandedVelocities) != want {
			violations = append(violations, Violation{id, "commanded_velocities", want, len(m.CommandedVelocities)})
		}
		if len(m.ActualVelocities) != want {
			violations = append(violations, Violation{id, "actual_velocities", want, len(m.ActualVelocities)})
		}
	}

	return violations
}

// Save writes the record as JSON, creating parent directories as needed.
func (r *Record) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// Load reads a record previously written by Save. Floating point values
// pass through encoding/json untouched, so a load reproduces the saved
// sequences exactly.
func Load(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	rec := &Record{}
	if err := json.Unmarshal(data, rec); err != nil {
		return nil, err
	}
	if rec.Motors == nil {
		rec.Motors = make(map[int]*MotorSeries)
	}
	return rec, nil
}
