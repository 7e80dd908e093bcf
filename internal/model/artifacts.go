package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

const (
	ScalerFile    = "scaler.json"
	ModelFile     = "kmeans_model.json"
	SchemaFile    = "expected_features.json"
	ClusteredFile = "clustered_friends.csv"

	lockFile = ".train.lock"
)

var ErrArtifactMissing = errors.New("artifact missing")

// Bundle is the read-only set of artifacts the scorer works from.
type Bundle struct {
	Dir      string
	Schema   []string
	Scaler   *Scaler
	Model    *KMeans
	LoadedAt time.Time
}

// LoadBundle reads schema, scaler and model from dir and checks that their
// dimensions agree.
func LoadBundle(dir string) (*Bundle, error) {
	schema, err := LoadSchema(dir)
	if err != nil {
		return nil, err
	}
	scaler, err := LoadScaler(dir)
	if err != nil {
		return nil, err
	}
	km, err := LoadKMeans(dir)
	if err != nil {
		return nil, err
	}

	if len(schema) != scaler.Dim() {
		return nil, fmt.Errorf("schema has %d features but scaler has %d: %w", len(schema), scaler.Dim(), ErrDimensionMismatch)
	}
	if km.K() == 0 {
		return nil, fmt.Errorf("model in %s has no centroids", dir)
	}
	if km.Dim() != scaler.Dim() {
		return nil, fmt.Errorf("model has %d dimensions but scaler has %d: %w", km.Dim(), scaler.Dim(), ErrDimensionMismatch)
	}

	return &Bundle{Dir: dir, Schema: schema, Scaler: scaler, Model: km, LoadedAt: time.Now()}, nil
}

func SaveScaler(dir string, s *Scaler) error {
	return writeJSON(filepath.Join(dir, ScalerFile), s)
}

func LoadScaler(dir string) (*Scaler, error) {
	var s Scaler
	if err := readJSON(filepath.Join(dir, ScalerFile), &s); err != nil {
		return nil, err
	}
	if len(s.Mean) != len(s.Scale) || len(s.Mean) == 0 {
		return nil, fmt.Errorf("scaler in %s is malformed: %d means, %d scales", dir, len(s.Mean), len(s.Scale))
	}
	return &s, nil
}

func SaveKMeans(dir string, m *KMeans) error {
	return writeJSON(filepath.Join(dir, ModelFile), m)
}

func LoadKMeans(dir string) (*KMeans, error) {
	var m KMeans
	if err := readJSON(filepath.Join(dir, ModelFile), &m); err != nil {
		return nil, err
	}
	for i, c := range m.Centroids {
		if len(c) != m.Dim() {
			return nil, fmt.Errorf("centroid %d has %d values, want %d: %w", i, len(c), m.Dim(), ErrDimensionMismatch)
		}
	}
	return &m, nil
}

// SaveSchema writes the ordered canonical feature names.
func SaveSchema(dir string, schema []string) error {
	return writeJSON(filepath.Join(dir, SchemaFile), schema)
}

func LoadSchema(dir string) ([]string, error) {
	var schema []string
	if err := readJSON(filepath.Join(dir, SchemaFile), &schema); err != nil {
		return nil, err
	}
	if len(schema) == 0 {
		return nil, fmt.Errorf("schema in %s is empty", dir)
	}
	return schema, nil
}

// Lock takes the exclusive training lock on dir, polling until timeout.
func Lock(dir string, timeout time.Duration) (func(), error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact dir %s: %w", dir, err)
	}
	lockPath := filepath.Join(dir, lockFile)
	l := flock.New(lockPath)
	deadline := time.Now().Add(timeout)
	for {
		locked, err := l.TryLock()
		if err != nil {
			return nil, fmt.Errorf("cannot acquire training lock: %w", err)
		}
		if locked {
			return func() { _ = l.Unlock() }, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("another training run is in progress (lock: %s)", lockPath)
		}
		time.Sleep(200 * time.Millisecond)
	}
}

// writeJSON replaces path atomically so a concurrent reader never sees a
// partial file.
func writeJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}

func readJSON(path string, v any) error {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s (run the trainer first)", ErrArtifactMissing, path)
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("invalid JSON in %s: %w", path, err)
	}
	return nil
}
