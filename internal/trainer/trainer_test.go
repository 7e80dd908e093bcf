package trainer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/matchminds/backend/internal/dataset"
	"github.com/matchminds/backend/internal/model"
)

const survey = `Full Name ,Gender,Age,Honesty,Traveling
Ana Ruiz,Female,21,5,5
Ben Okafor,Male,22,5,4
Cleo Park,Female,23,4,5
Dev Shah,Male,45,1,1
Eli Stone,Male,47,,2
Fay Lund,Female,49,2,1
`

func writeSurvey(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "survey.csv")
	if err := os.WriteFile(path, []byte(survey), 0o644); err != nil {
		t.Fatalf("write survey: %v", err)
	}
	return path
}

func TestTrainWritesArtifacts(t *testing.T) {
	opts := DefaultOptions()
	opts.DatasetPath = writeSurvey(t)
	opts.ArtifactDir = t.TempDir()
	opts.KMeans.K = 2

	report, err := Train(context.Background(), opts)
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	if report.Rows != 6 {
		t.Errorf("Rows = %d, want 6", report.Rows)
	}
	if report.FilledCells != 1 {
		t.Errorf("FilledCells = %d, want 1", report.FilledCells)
	}
	want := []string{"age", "honesty", "traveling"}
	if len(report.Features) != len(want) {
		t.Fatalf("Features = %v, want %v", report.Features, want)
	}
	for i := range want {
		if report.Features[i] != want[i] {
			t.Errorf("Features[%d] = %q, want %q", i, report.Features[i], want[i])
		}
	}

	bundle, err := model.LoadBundle(opts.ArtifactDir)
	if err != nil {
		t.Fatalf("LoadBundle: %v", err)
	}
	if bundle.Model.K() != 2 {
		t.Errorf("K = %d, want 2", bundle.Model.K())
	}
	if bundle.Scaler.FeatureNames[0] != "Age" {
		t.Errorf("scaler feature names = %v", bundle.Scaler.FeatureNames)
	}

	clustered, err := dataset.ReadCSV(filepath.Join(opts.ArtifactDir, model.ClusteredFile))
	if err != nil {
		t.Fatalf("ReadCSV clustered: %v", err)
	}
	idx := clustered.ColumnIndex("Cluster")
	if idx < 0 {
		t.Fatal("clustered table has no Cluster column")
	}
	// The young high scorers and the older low scorers separate.
	if clustered.Rows[0][idx] != clustered.Rows[2][idx] || clustered.Rows[3][idx] != clustered.Rows[5][idx] {
		t.Errorf("unexpected grouping: %v", clustered.Rows)
	}
	if clustered.Rows[0][idx] == clustered.Rows[3][idx] {
		t.Errorf("groups share a cluster: %v", clustered.Rows)
	}
}

func TestTrainMissingDataset(t *testing.T) {
	opts := DefaultOptions()
	opts.DatasetPath = filepath.Join(t.TempDir(), "absent.csv")
	opts.ArtifactDir = t.TempDir()

	_, err := Train(context.Background(), opts)
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Train error = %v, want os.ErrNotExist", err)
	}
}

func TestElbowInertiaDecreases(t *testing.T) {
	opts := DefaultOptions()
	opts.DatasetPath = writeSurvey(t)

	points, err := Elbow(context.Background(), opts, 1, 3)
	if err != nil {
		t.Fatalf("Elbow: %v", err)
	}
	if len(points) != 3 {
		t.Fatalf("len(points) = %d, want 3", len(points))
	}
	for i := 1; i < len(points); i++ {
		if points[i].Inertia > points[i-1].Inertia {
			t.Errorf("inertia rose from k=%d (%v) to k=%d (%v)", points[i-1].K, points[i-1].Inertia, points[i].K, points[i].Inertia)
		}
	}

	if _, err := Elbow(context.Background(), opts, 3, 2); err == nil {
		t.Error("Elbow with inverted range should fail")
	}
}

func TestLoadOptions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trainer.yaml")
	cfg := "dataset: people.csv\nkmeans:\n  k: 7\n  seed: 3\n"
	if err := os.WriteFile(path, []byte(cfg), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	opts, err := LoadOptions(path)
	if err != nil {
		t.Fatalf("LoadOptions: %v", err)
	}
	if opts.DatasetPath != "people.csv" {
		t.Errorf("DatasetPath = %q, want people.csv", opts.DatasetPath)
	}
	if opts.KMeans.K != 7 || opts.KMeans.Seed != 3 {
		t.Errorf("KMeans = %+v, want k=7 seed=3", opts.KMeans)
	}
	if opts.KMeans.MaxIterations != 300 {
		t.Errorf("MaxIterations = %d, want default 300", opts.KMeans.MaxIterations)
	}
	if opts.ArtifactDir != "artifacts" {
		t.Errorf("ArtifactDir = %q, want default artifacts", opts.ArtifactDir)
	}
}
