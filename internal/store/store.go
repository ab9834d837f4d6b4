// Package store persists headless-run diagnostics: per-run metadata as
// JSON and the per-tick series as CSV, one directory per run.
package store

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/san-kum/flowlab/internal/analysis"
	"github.com/san-kum/flowlab/internal/config"
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

type RunMetadata struct {
	ID        string                            `json:"id"`
	Timestamp time.Time                         `json:"timestamp"`
	Seed      int64                             `json:"seed"`
	Ticks     int                               `json:"ticks"`
	Backend   string                            `json:"backend"`
	Params    config.Params                     `json:"params"`
	Summary   map[string]analysis.SeriesSummary `json:"summary"`
}

// Series holds the per-tick diagnostics of a headless run. All slices
// share one length.
type Series struct {
	Energy      []float64
	Density     []float64
	ResidualMax []float64
}

func (s *Store) Save(p config.Params, seed int64, backend string, series Series) (string, error) {
	runID := fmt.Sprintf("run_%d", time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Timestamp: time.Now(),
		Seed:      seed,
		Ticks:     len(series.Energy),
		Backend:   backend,
		Params:    p,
		Summary: map[string]analysis.SeriesSummary{
			"energy":       analysis.Summarize(series.Energy),
			"density":      analysis.Summarize(series.Density),
			"residual_max": analysis.Summarize(series.ResidualMax),
		},
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

	csvFile, err := os.Create(filepath.Join(runDir, "series.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	if err := w.Write([]string{"tick", "energy", "density", "residual_max"}); err != nil {
		return "", err
	}
	for i := range series.Energy {
		row := []string{
			strconv.Itoa(i),
			strconv.FormatFloat(series.Energy[i], 'f', 6, 64),
			strconv.FormatFloat(series.Density[i], 'f', 6, 64),
			strconv.FormatFloat(series.ResidualMax[i], 'g', 6, 64),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
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
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue // skip unreadable runs
		}
		runs = append(runs, *meta)
	}
	return runs, nil
}

// LoadSeries reads back the per-tick diagnostics of a saved run.
func (s *Store) LoadSeries(runID string) (Series, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, "series.csv"))
	if err != nil {
		return Series{}, err
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return Series{}, err
	}

	var series Series
	for i, row := range rows {
		if i == 0 || len(row) < 4 {
			continue
		}
		e, err1 := strconv.ParseFloat(row[1], 64)
		d, err2 := strconv.ParseFloat(row[2], 64)
		r, err3 := strconv.ParseFloat(row[3], 64)
		if err1 != nil || err2 != nil || err3 != nil {
			return Series{}, fmt.Errorf("store: bad series row %d in %s", i, runID)
		}
		series.Energy = append(series.Energy, e)
		series.Density = append(series.Density, d)
		series.ResidualMax = append(series.ResidualMax, r)
	}
	return series, nil
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
