package config

import (
	"reflect"
	"testing"

	"github.com/san-kum/motorlab/internal/drive"
	"github.com/san-kum/motorlab/internal/wave"
)

const sampleYAML = `
motor_groups:
  strong:
    motor_ids: [31, 34, 41, 44]
    default_params: {kp: 250, kd: 5, max_torque: 80}
  weak:
    motor_ids: [35, 45]
    default_params: {kp: 40, kd: 5, max_torque: 17}

waveform_tests:
  - type: sine
    amplitude: 15.0
    frequency: 1.0
    send_velocity: true
    active_motors: [31, 35]
    motor_groups:
      strong: {kp: 200}
      weak: {}
  - type: piecewise
    positions: [0, 10, 0]
    duration: 10.0
    motor_groups:
      weak: {}
`

func TestParse(t *testing.T) {
	configs, err := Parse([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(configs) != 2 {
		t.Fatalf("expected 2 tests, got %d", len(configs))
	}

	sine := configs[0]
	if sine.Kind != wave.Sine {
		t.Errorf("expected sine, got %s", sine.Kind)
	}
	if sine.Params.Amplitude != 15.0 || sine.Params.Frequency != 1.0 {
		t.Errorf("unexpected params: %+v", sine.Params)
	}
	if sine.Params.Duration != DefaultDuration {
		t.Errorf("expected default duration, got %f", sine.Params.Duration)
	}
	if !sine.Params.SendVelocity {
		t.Error("expected velocity mode on")
	}
	if !reflect.DeepEqual(sine.ActiveMotors, []int{31, 35}) {
		t.Errorf("unexpected active motors: %v", sine.ActiveMotors)
	}

	if len(sine.Groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(sine.Groups))
	}
	// groups come back name-sorted
	if sine.Groups[0].Name != "strong" || sine.Groups[1].Name != "weak" {
		t.Errorf("unexpected group order: %s, %s", sine.Groups[0].Name, sine.Groups[1].Name)
	}

	// kp overridden, kd and max_torque fall back to group defaults
	want := drive.Gains{Kp: 200, Kd: 5, MaxTorque: 80}
	if sine.Groups[0].Gains != want {
		t.Errorf("expected merged gains %+v, got %+v", want, sine.Groups[0].Gains)
	}
	if !reflect.DeepEqual(sine.Groups[0].Motors, []int{31, 34, 41, 44}) {
		t.Errorf("group should carry the global motor ids, got %v", sine.Groups[0].Motors)
	}

	pw := configs[1]
	if pw.Kind != wave.Piecewise {
		t.Errorf("expected piecewise, got %s", pw.Kind)
	}
	if !reflect.DeepEqual(pw.Params.Positions, []float64{0, 10, 0}) {
		t.Errorf("unexpected positions: %v", pw.Params.Positions)
	}
	if pw.ActiveMotors != nil {
		t.Errorf("expected nil active motors (all), got %v", pw.ActiveMotors)
	}
}

func TestParseMissingType(t *testing.T) {
	_, err := Parse([]byte("waveform_tests:\n  - amplitude: 5\n"))
	if err == nil {
		t.Error("expected error for missing type")
	}
}

func TestParseExplicitZeroOverride(t *testing.T) {
	configs, err := Parse([]byte(`
motor_groups:
  g:
    motor_ids: [1]
    default_params: {kp: 100, kd: 5, max_torque: 10}
waveform_tests:
  - type: step
    motor_groups:
      g: {kd: 0}
`))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	gains := configs[0].Groups[0].Gains
	if gains.Kd != 0 {
		t.Errorf("explicit zero must override the default, got %f", gains.Kd)
	}
	if gains.Kp != 100 {
		t.Errorf("unset fields fall back to defaults, got %f", gains.Kp)
	}
}

func TestDefaultGroups(t *testing.T) {
	groups := DefaultGroups()
	if len(groups) != 3 {
		t.Fatalf("expected 3 stock groups, got %d", len(groups))
	}
	for i := 1; i < len(groups); i++ {
		if groups[i-1].Name >= groups[i].Name {
			t.Errorf("groups should be name-sorted: %s before %s", groups[i-1].Name, groups[i].Name)
		}
	}
}

func TestGetPreset(t *testing.T) {
	p, ok := GetPreset("strong")
	if !ok {
		t.Fatal("expected preset strong")
	}
	if p.Kp != 250 {
		t.Errorf("expected kp 250, got %f", p.Kp)
	}

	if _, ok := GetPreset("nonexistent"); ok {
		t.Error("expected miss for nonexistent preset")
	}
}
