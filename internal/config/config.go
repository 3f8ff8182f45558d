package config

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/motorlab/internal/drive"
	"github.com/san-kum/motorlab/internal/wave"
)

const (
	DefaultAmplitude = 20.0
	DefaultFrequency = 0.5
	DefaultDuration  = 10.0
)

// MotorParams is a gain triple as written in the config file.
type MotorParams struct {
	Kp        float64 `yaml:"kp"`
	Kd        float64 `yaml:"kd"`
	MaxTorque float64 `yaml:"max_torque"`
}

func (p MotorParams) Gains() drive.Gains {
	return drive.Gains{Kp: p.Kp, Kd: p.Kd, MaxTorque: p.MaxTorque}
}

// GroupDef is a globally declared motor group: its members plus the gains
// tests fall back to when they don't override them.
type GroupDef struct {
	MotorIDs      []int       `yaml:"motor_ids"`
	DefaultParams MotorParams `yaml:"default_params"`
}

// TestConfig is one resolved test: waveform parameters plus the motor
// groups it drives, gains already merged. Groups are ordered by name so
// gain application is deterministic when groups overlap.
type TestConfig struct {
	Kind         wave.Kind
	Params       wave.Params
	Groups       []drive.MotorGroup
	ActiveMotors []int
}

type file struct {
	MotorGroups   map[string]GroupDef `yaml:"motor_groups"`
	WaveformTests []rawTest           `yaml:"waveform_tests"`
}

type rawTest struct {
	Type         string                   `yaml:"type"`
	Amplitude    *float64                 `yaml:"amplitude"`
	Frequency    *float64                 `yaml:"frequency"`
	Duration     *float64                 `yaml:"duration"`
	Positions    []float64                `yaml:"positions"`
	SendVelocity bool                     `yaml:"send_velocity"`
	ActiveMotors []int                    `yaml:"active_motors"`
	MotorGroups  map[string]groupOverride `yaml:"motor_groups"`
}

// groupOverride uses pointers so an explicit zero can be told apart from
// "use the group default".
type groupOverride struct {
	Kp        *float64 `yaml:"kp"`
	Kd        *float64 `yaml:"kd"`
	MaxTorque *float64 `yaml:"max_torque"`
}

// Load reads test configurations from a YAML file. Each test references
// globally declared motor groups and may override their gains per test.
func Load(path string) ([]TestConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) ([]TestConfig, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}

	configs := make([]TestConfig, 0, len(f.WaveformTests))
	for i, raw := range f.WaveformTests {
		if raw.Type == "" {
			return nil, fmt.Errorf("test %d: missing type", i)
		}

		cfg := TestConfig{
			Kind: wave.Kind(raw.Type),
			Params: wave.Params{
				Amplitude:    orDefault(raw.Amplitude, DefaultAmplitude),
				Frequency:    orDefault(raw.Frequency, DefaultFrequency),
				Duration:     orDefault(raw.Duration, DefaultDuration),
				Positions:    raw.Positions,
				SendVelocity: raw.SendVelocity,
			},
			ActiveMotors: raw.ActiveMotors,
		}

		names := make([]string, 0, len(raw.MotorGroups))
		for name := range raw.MotorGroups {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			def := f.MotorGroups[name]
			override := raw.MotorGroups[name]
			cfg.Groups = append(cfg.Groups, drive.MotorGroup{
				Name:   name,
				Motors: def.MotorIDs,
				Gains: drive.Gains{
					Kp:        orDefault(override.Kp, def.DefaultParams.Kp),
					Kd:        orDefault(override.Kd, def.DefaultParams.Kd),
					MaxTorque: orDefault(override.MaxTorque, def.DefaultParams.MaxTorque),
				},
			})
		}

		configs = append(configs, cfg)
	}

	return configs, nil
}

func orDefault(v *float64, def float64) float64 {
	if v != nil {
		return *v
	}
	return def
}

// MotorNames maps each motor id to a display name of the form
// "<group>_<index>", used to label plots.
func MotorNames(groups []drive.MotorGroup) map[int]string {
	names := make(map[int]string)
	for _, g := range groups {
		for i, id := range g.Motors {
			names[id] = fmt.Sprintf("%s_%d", g.Name, i)
		}
	}
	return names
}
