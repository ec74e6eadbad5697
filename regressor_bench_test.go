package pls

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aouyang1/go-pls/dataset"
	"github.com/aouyang1/go-pls/logger"
	mat_ "github.com/aouyang1/go-pls/mat"

	"github.com/goccy/go-json"
	"github.com/pkg/profile"
)

var benchPredictRes [][]float64

func setupBenchData(b *testing.B) ([][]float64, [][]float64) {
	rng := dataset.NewRand(1)
	coef := dataset.GenerateUniformX(40, 3, 2.0, rng)
	x := dataset.GenerateUniformX(2000, 40, 1.0, rng)
	y, err := dataset.GenerateLinearY(x, coef, []float64{1, 2, 3}, 0.1, rng)
	if err != nil {
		b.Fatal(err)
	}
	return mat_.ToArray(x), mat_.ToArray(y)
}

func BenchmarkTrainToModel(b *testing.B) {
	logger.SetOutput(io.Discard)
	defer logger.SetOutput(os.Stderr)

	x, y := setupBenchData(b)

	var r *Regressor
	var err error
	for b.Loop() {
		r, err = New(&Options{Components: 3})
		if err != nil {
			panic(err)
		}
		if err := r.Fit(x, y); err != nil {
			panic(err)
		}
	}

	m, err := r.Model()
	if err != nil {
		panic(err)
	}
	bytes, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		panic(err)
	}
	if err := os.WriteFile(filepath.Join(b.TempDir(), "benchmark_model.json"), bytes, 0o644); err != nil {
		panic(err)
	}
}

func BenchmarkPredictFromModel(b *testing.B) {
	logger.SetOutput(io.Discard)
	defer logger.SetOutput(os.Stderr)

	x, y := setupBenchData(b)
	r, err := New(&Options{Components: 3})
	if err != nil {
		panic(err)
	}
	if err := r.Fit(x, y); err != nil {
		panic(err)
	}
	m, err := r.Model()
	if err != nil {
		panic(err)
	}
	bytes, err := json.Marshal(m)
	if err != nil {
		panic(err)
	}

	var model Model
	if err := json.Unmarshal(bytes, &model); err != nil {
		panic(err)
	}
	restored, err := NewFromModel(model)
	if err != nil {
		panic(err)
	}

	input := x[:100]
	defer profile.Start(profile.CPUProfile, profile.ProfilePath(b.TempDir()), profile.Quiet).Stop()
	for b.Loop() {
		benchPredictRes, err = restored.Predict(input)
		if err != nil {
			panic(err)
		}
	}
}
