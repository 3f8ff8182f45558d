package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/san-kum/motorlab/internal/record"
	"github.com/san-kum/motorlab/internal/wave"
)

// Store persists test runs under a base directory, one directory per run
// holding metadata.json and record.json.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID           string         `json:"id"`
	Waveform     string         `json:"waveform"`
	Timestamp    time.Time      `json:"timestamp"`
	Amplitude    float64        `json:"amplitude"`
	Frequency    float64        `json:"frequency"`
	Duration     float64        `json:"duration"`
	Positions    []float64      `json:"positions,omitempty"`
	SendVelocity bool           `json:"send_velocity"`
	Motors       []int          `json:"motors"`
	MotorNames   map[int]string `json:"motor_names,omitempty"`
	Samples      int            `json:"samples"`
	Violations   int            `json:"violations"`
}

// Save writes a completed run. The returned run id names the directory.
func (s *Store) Save(w wave.Waveform, names map[int]string, rec *record.Record) (string, error) {
	runID := fmt.Sprintf("%s_%d", w.Kind, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:           runID,
		Waveform:     string(w.Kind),
		Timestamp:    time.Now(),
		Amplitude:    w.Params.Amplitude,
		Frequency:    w.Params.Frequency,
		Duration:     w.Params.Duration,
		Positions:    w.Params.Positions,
		SendVelocity: w.SendsVelocity(),
		Motors:       rec.MotorIDs(),
		MotorNames:   names,
		Samples:      len(rec.TimePoints),
		Violations:   len(rec.Validate()),
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	if err := rec.Save(filepath.Join(runDir, "record.json")); err != nil {
		return "", err
	}

	return runID, nil
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name(), "metadata.json"))
		if err != nil {
			continue
		}

		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}

		runs = append(runs, meta)
	}

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

func (s *Store) LoadRecord(runID string) (*record.Record, error) {
	return record.Load(filepath.Join(s.baseDir, runID, "record.json"))
}

// ExportCSV writes the run's time-aligned series as CSV. Series that end
// short of the time axis (validation mismatches) leave empty cells.
func (s *Store) ExportCSV(runID string, out io.Writer) error {
	rec, err := s.LoadRecord(runID)
	if err != nil {
		return err
	}

	w := csv.NewWriter(out)
	defer w.Flush()

	ids := rec.MotorIDs()

	header := []string{"time"}
	for _, id := range ids {
		header = append(header, fmt.Sprintf("cmd_pos_%d", id))
		if rec.SendVelocity {
			header = append(header, fmt.Sprintf("cmd_vel_%d", id))
		}
		header = append(header, fmt.Sprintf("act_pos_%d", id))
		header = append(header, fmt.Sprintf("act_vel_%d", id))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i, t := range rec.TimePoints {
		row := []string{strconv.FormatFloat(t, 'f', 6, 64)}
		for _, id := range ids {
			m := rec.Motors[id]
			row = append(row, cell(m.CommandedPositions, i))
			if rec.SendVelocity {
				row = append(row, cell(m.CommandedVelocities, i))
			}
			row = append(row, cell(m.ActualPositions, i))
			row = append(row, cell(m.ActualVelocities, i))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return nil
}

func cell(series []float64, i int) string {
	if i >= len(series) {
		return ""
	}
	return strconv.FormatFloat(series[i], 'f', 6, 64)
}
