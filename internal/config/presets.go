package config

import (
	"sort"

	"github.com/san-kum/motorlab/internal/drive"
)

// GainPresets are the stock gain triples for the rig's motor classes.
var GainPresets = map[string]MotorParams{
	"strong": {Kp: 250, Kd: 5, MaxTorque: 80},
	"medium": {Kp: 150, Kd: 5, MaxTorque: 60},
	"weak":   {Kp: 40, Kd: 5, MaxTorque: 17},
}

// stock group membership for the leg joints
var presetMotors = map[string][]int{
	"strong": {31, 34, 41, 44},
	"medium": {32, 33, 42, 43},
	"weak":   {35, 45},
}

func GetPreset(name string) (MotorParams, bool) {
	p, ok := GainPresets[name]
	return p, ok
}

func ListPresets() []string {
	names := make([]string, 0, len(GainPresets))
	for name := range GainPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultGroups returns the stock motor groups with preset gains, ordered
// by name.
func DefaultGroups() []drive.MotorGroup {
	groups := make([]drive.MotorGroup, 0, len(GainPresets))
	for _, name := range ListPresets() {
		groups = append(groups, drive.MotorGroup{
			Name:   name,
			Motors: presetMotors[name],
			Gains:  GainPresets[name].Gains(),
		})
	}
	return groups
}
