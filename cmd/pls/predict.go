package main

import (
	"fmt"
	"io"
	"os"

	"github.com/aouyang1/go-pls"
	"github.com/aouyang1/go-pls/dataset"
	"github.com/aouyang1/go-pls/linearmodel"
	"github.com/aouyang1/go-pls/logger"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

type predictFlags struct {
	modelPath string
	inputPath string
	header    bool
	method    string
	outPath   string
}

func newPredictCmd() *cobra.Command {
	f := &predictFlags{}
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict outputs for new samples with a fitted model",
		Long: `Predict outputs for every row of the input CSV with a model written by fit. The
method defaults to the one stored with the model.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPredict(cmd, f)
		},
	}
	cmd.Flags().StringVar(&f.modelPath, "model", "", "JSON model written by fit")
	cmd.Flags().StringVar(&f.inputPath, "input", "", "CSV file of samples to predict")
	cmd.Flags().BoolVar(&f.header, "header", true, "First CSV row holds variable labels")
	cmd.Flags().StringVar(&f.method, "method", "", "Prediction method: direct or iterative")
	cmd.Flags().StringVar(&f.outPath, "out", "", "Write predictions as CSV to this path instead of stdout")
	_ = cmd.MarkFlagRequired("model")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func loadModel(path string) (pls.Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return pls.Model{}, fmt.Errorf("unable to read model, %w", err)
	}
	var m pls.Model
	if err := json.Unmarshal(data, &m); err != nil {
		return pls.Model{}, fmt.Errorf("unable to decode model %s, %w", path, err)
	}
	return m, nil
}

func runPredict(cmd *cobra.Command, f *predictFlags) error {
	m, err := loadModel(f.modelPath)
	if err != nil {
		return err
	}
	r, err := pls.NewFromModel(m)
	if err != nil {
		return err
	}

	method := m.Options.Method
	if f.method != "" {
		method, err = linearmodel.ParseMethod(f.method)
		if err != nil {
			return err
		}
	}

	_, z, err := dataset.ReadCSVFile(f.inputPath, f.header)
	if err != nil {
		return fmt.Errorf("unable to read samples, %w", err)
	}
	res, err := r.PredictWith(method, z)
	if err != nil {
		return err
	}
	logger.Log.Debug().Int("samples", len(res)).Stringer("method", method).Msg("predicted samples")

	var w io.Writer = cmd.OutOrStdout()
	if f.outPath != "" {
		file, err := os.Create(f.outPath)
		if err != nil {
			return err
		}
		defer file.Close()
		w = file
	}

	labels := m.YLabels
	if !f.header {
		labels = nil
	}
	return dataset.WriteCSV(w, labels, res)
}
