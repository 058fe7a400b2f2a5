// Package storage keeps recordings of headless runs on disk: one directory
// per run holding metadata.json and trace.csv. Recordings are for
// inspection and replay charts; a session is never restored from them.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/orbits/internal/config"
	"github.com/san-kum/orbits/internal/dynamo"
	"github.com/san-kum/orbits/internal/sim"
)

var ErrRunNotFound = errors.New("orbits: run not found")

var traceHeader = []string{"step", "id", "label", "mass", "x", "y", "vx", "vy"}

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
	ID        string             `json:"id"`
	Preset    string             `json:"preset"`
	Timestamp time.Time          `json:"timestamp"`
	Seed      int64              `json:"seed"`
	Steps     int                `json:"steps"`
	Nodes     int                `json:"nodes"`
	Bounces   int                `json:"bounces"`
	Sanitized int                `json:"sanitized"`
	Config    *config.Config     `json:"config"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Save writes a run recording and returns its ID.
func (s *Store) Save(cfg *config.Config, result *sim.Result) (string, error) {
	runID := fmt.Sprintf("%s_%s", cfg.Preset, uuid.Must(uuid.NewV7()).String())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Preset:    cfg.Preset,
		Timestamp: time.Now(),
		Seed:      result.Seed,
		Steps:     result.Steps,
		Nodes:     len(result.Final),
		Bounces:   result.Bounces,
		Sanitized: result.Sanitized,
		Config:    cfg,
		Metrics:   result.Metrics,
	}

	if err := writeJSON(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return "", err
	}
	if err := writeTrace(filepath.Join(runDir, "trace.csv"), result.Trace); err != nil {
		return "", err
	}

	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeTrace(path string, trace []sim.Sample) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(traceHeader); err != nil {
		return err
	}

	for _, sample := range trace {
		for _, n := range sample.Nodes {
			row := []string{
				strconv.Itoa(sample.Step),
				strconv.Itoa(int(n.ID)),
				n.Label,
				formatFloat(n.Mass),
				formatFloat(n.Pos.X),
				formatFloat(n.Pos.Y),
				formatFloat(n.Vel.X),
				formatFloat(n.Vel.Y),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}

	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// List returns all readable recordings, oldest first.
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

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}

	return &meta, nil
}

// LoadTrace reads the recorded samples of a run in step order.
func (s *Store) LoadTrace(runID string) ([]sim.Sample, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "trace.csv"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(traceHeader)

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}

	samples := make([]sim.Sample, 0)
	for i, record := range records {
		if i == 0 {
			continue
		}

		step, node, err := parseRow(record)
		if err != nil {
			return nil, fmt.Errorf("run %s line %d: %w", runID, i+1, err)
		}

		if len(samples) == 0 || samples[len(samples)-1].Step != step {
			samples = append(samples, sim.Sample{Step: step})
		}
		last := &samples[len(samples)-1]
		last.Nodes = append(last.Nodes, node)
	}

	return samples, nil
}

func parseRow(record []string) (int, dynamo.Node, error) {
	step, err := strconv.Atoi(record[0])
	if err != nil {
		return 0, dynamo.Node{}, err
	}
	id, err := strconv.Atoi(record[1])
	if err != nil {
		return 0, dynamo.Node{}, err
	}

	vals := make([]float64, 5)
	for i := range vals {
		if vals[i], err = strconv.ParseFloat(record[3+i], 64); err != nil {
			return 0, dynamo.Node{}, err
		}
	}

	return step, dynamo.Node{
		ID:    dynamo.NodeID(id),
		Label: record[2],
		Mass:  vals[0],
		Pos:   dynamo.Vec2{X: vals[1], Y: vals[2]},
		Vel:   dynamo.Vec2{X: vals[3], Y: vals[4]},
	}, nil
}
