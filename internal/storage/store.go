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

	"github.com/san-kum/chromsim/internal/md"
	"github.com/san-kum/chromsim/internal/sim"
)

var ErrRunNotFound = errors.New("storage: run not found")

var sampleHeader = []string{
	"step", "time", "stage", "energy", "packing_reaction", "wall_scale",
	"core_scale", "bond_scale", "semiaxis_x", "semiaxis_y", "semiaxis_z", "max_force",
}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// RunInfo describes how a run was set up.
type RunInfo struct {
	Preset    string  `json:"preset"`
	Seed      int64   `json:"seed"`
	Dt        float64 `json:"dt"`
	Steps     int     `json:"steps"`
	Particles int     `json:"particles"`
	AdaptWall bool    `json:"adapt_wall"`
}

type RunMetadata struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	RunInfo
	StepsTaken    int                `json:"steps_taken"`
	FinalReaction float64            `json:"final_reaction"`
	FinalEnergy   float64            `json:"final_energy"`
	EnergyDrift   float64            `json:"energy_drift"`
	Metrics       map[string]float64 `json:"metrics"`
}

func (s *Store) Save(info RunInfo, result *sim.Result) (string, error) {
	runID := uuid.NewString()
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	final := result.Final()
	meta := RunMetadata{
		ID:            runID,
		Timestamp:     time.Now(),
		RunInfo:       info,
		StepsTaken:    result.StepsTaken,
		FinalReaction: final.PackingReaction,
		FinalEnergy:   final.Energy,
		EnergyDrift:   result.EnergyDrift,
		Metrics:       result.Metrics,
	}

	metaPath := filepath.Join(runDir, "metadata.json")
	metaFile, err := os.Create(metaPath)
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	if err := writeSamples(filepath.Join(runDir, "samples.csv"), result.Samples); err != nil {
		return "", err
	}

	return runID, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func writeSamples(path string, samples []sim.Sample) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(sampleHeader); err != nil {
		return err
	}

	for _, smp := range samples {
		row := []string{
			strconv.Itoa(smp.Step),
			formatFloat(smp.Time),
			smp.Stage,
			formatFloat(smp.Energy),
			formatFloat(smp.PackingReaction),
			formatFloat(smp.WallScale),
			formatFloat(smp.CoreScale),
			formatFloat(smp.BondScale),
			formatFloat(smp.Semiaxes.X),
			formatFloat(smp.Semiaxes.Y),
			formatFloat(smp.Semiaxes.Z),
			formatFloat(smp.MaxForce),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// List returns the stored runs, newest first.
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

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	if _, err := uuid.Parse(runID); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrRunNotFound, runID)
	}

	metaPath := filepath.Join(s.baseDir, runID, "metadata.json")
	data, err := os.ReadFile(metaPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

func (s *Store) LoadSamples(runID string) ([]sim.Sample, error) {
	if _, err := uuid.Parse(runID); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrRunNotFound, runID)
	}

	csvPath := filepath.Join(s.baseDir, runID, "samples.csv")
	file, err := os.Open(csvPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(sampleHeader)

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(records) < 2 {
		return []sim.Sample{}, nil
	}

	samples := make([]sim.Sample, 0, len(records)-1)
	for i, record := range records[1:] {
		smp, err := parseSample(record)
		if err != nil {
			return nil, fmt.Errorf("samples.csv line %d: %w", i+2, err)
		}
		samples = append(samples, smp)
	}

	return samples, nil
}

func parseSample(record []string) (sim.Sample, error) {
	step, err := strconv.Atoi(record[0])
	if err != nil {
		return sim.Sample{}, err
	}

	vals := make([]float64, 0, len(record)-3)
	for j, field := range record {
		if j == 0 || j == 2 {
			continue
		}
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return sim.Sample{}, err
		}
		vals = append(vals, v)
	}

	return sim.Sample{
		Step:            step,
		Time:            vals[0],
		Stage:           record[2],
		Energy:          vals[1],
		PackingReaction: vals[2],
		WallScale:       vals[3],
		CoreScale:       vals[4],
		BondScale:       vals[5],
		Semiaxes:        md.Vec{X: vals[6], Y: vals[7], Z: vals[8]},
		MaxForce:        vals[9],
	}, nil
}
