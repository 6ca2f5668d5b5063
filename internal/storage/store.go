// Package storage keeps completed runs under a data directory, one
// subdirectory per run with metadata.json and the diagnostics series
// as energies.csv.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/mdlab-go/mdrun/internal/diagnostics"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// RunMetadata summarizes one MD run.
type RunMetadata struct {
	ID                  string    `json:"id"`
	Structure           string    `json:"structure"`
	Potential           string    `json:"potential"`
	Integrator          string    `json:"integrator"`
	Timestamp           time.Time `json:"timestamp"`
	Seed                int64     `json:"seed"`
	InitialTempK        float64   `json:"initial_temperature_K"`
	TimestepFs          float64   `json:"timestep_fs"`
	ThermostatCoupling  float64   `json:"thermostat_coupling"`
	TotalSteps          int       `json:"total_steps"`
	DiagnosticsInterval int       `json:"diagnostics_interval"`
	TrajectoryInterval  int       `json:"trajectory_interval"`
	FinalStep           int       `json:"final_step"`
	State               string    `json:"state"`
	WallSeconds         float64   `json:"wall_seconds"`
}

var csvHeader = []string{"step", "epot_per_atom", "ekin_per_atom", "etot_per_atom", "temperature_K"}

// Save writes metadata and the diagnostics series, returning the run
// id it minted.
func (s *Store) Save(meta RunMetadata, samples []diagnostics.Sample) (string, error) {
	// nanosecond resolution keeps back-to-back saves from colliding
	runID := fmt.Sprintf("md_%d", time.Now().UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
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

	csvFile, err := os.Create(filepath.Join(runDir, "energies.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	if err := w.Write(csvHeader); err != nil {
		return "", err
	}
	for _, sample := range samples {
		row := []string{
			strconv.Itoa(sample.Step),
			strconv.FormatFloat(sample.EpotPerAtom, 'f', 6, 64),
			strconv.FormatFloat(sample.EkinPerAtom, 'f', 6, 64),
			strconv.FormatFloat(sample.EtotPerAtom, 'f', 6, 64),
			strconv.FormatFloat(sample.TempK, 'f', 2, 64),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	return runID, nil
}

// List returns the metadata of every stored run.
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

// LoadSeries reads the diagnostics series back.
func (s *Store) LoadSeries(runID string) ([]diagnostics.Sample, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "energies.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []diagnostics.Sample{}, nil
	}

	samples := make([]diagnostics.Sample, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) != len(csvHeader) {
			continue
		}
		step, err := strconv.Atoi(record[0])
		if err != nil {
			continue
		}
		vals := make([]float64, 4)
		ok := true
		for i := 0; i < 4; i++ {
			vals[i], err = strconv.ParseFloat(record[i+1], 64)
			if err != nil {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		samples = append(samples, diagnostics.Sample{
			Step:        step,
			EpotPerAtom: vals[0],
			EkinPerAtom: vals[1],
			EtotPerAtom: vals[2],
			TempK:       vals[3],
		})
	}
	return samples, nil
}
