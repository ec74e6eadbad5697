package main

import (
	"fmt"
	"os"

	"github.com/aouyang1/go-pls"
	"github.com/aouyang1/go-pls/dataset"
	"github.com/aouyang1/go-pls/linearmodel"
	"github.com/aouyang1/go-pls/logger"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

type fitFlags struct {
	xPath      string
	yPath      string
	header     bool
	components int
	method     string
	configPath string
	outPath    string
	plotPath   string
	baseline   bool
}

func newFitCmd() *cobra.Command {
	f := &fitFlags{}
	cmd := &cobra.Command{
		Use:   "fit",
		Short: "Fit a model on calibration inputs and outputs",
		Long: `Fit a PLS-SB model relating the input CSV to the output CSV. Both files hold one
sample per row and must have the same number of rows. Flags override values read from --config.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFit(cmd, f)
		},
	}
	cmd.Flags().StringVar(&f.xPath, "x", "", "CSV file of calibration inputs")
	cmd.Flags().StringVar(&f.yPath, "y", "", "CSV file of calibration outputs")
	cmd.Flags().BoolVar(&f.header, "header", true, "First CSV row holds variable labels")
	cmd.Flags().IntVar(&f.components, "components", 1, "Number of latent components to extract")
	cmd.Flags().StringVar(&f.method, "method", "direct", "Prediction method used for fit scores: direct or iterative")
	cmd.Flags().StringVar(&f.configPath, "config", "", "YAML options file")
	cmd.Flags().StringVar(&f.outPath, "out", "", "Write the fitted model as JSON to this path instead of stdout")
	cmd.Flags().StringVar(&f.plotPath, "plot", "", "Write an HTML report of the fit to this path")
	cmd.Flags().BoolVar(&f.baseline, "baseline", false, "Log the r squared of an ordinary least squares fit for comparison")
	_ = cmd.MarkFlagRequired("x")
	_ = cmd.MarkFlagRequired("y")
	return cmd
}

func runFit(cmd *cobra.Command, f *fitFlags) error {
	opt := pls.NewDefaultOptions()
	if f.configPath != "" {
		loaded, err := pls.LoadOptions(f.configPath)
		if err != nil {
			return err
		}
		opt = loaded
	}
	if cmd.Flags().Changed("components") {
		opt.Components = f.components
	}
	if cmd.Flags().Changed("method") {
		method, err := linearmodel.ParseMethod(f.method)
		if err != nil {
			return err
		}
		opt.Method = method
	}

	xLabels, x, err := dataset.ReadCSVFile(f.xPath, f.header)
	if err != nil {
		return fmt.Errorf("unable to read inputs, %w", err)
	}
	yLabels, y, err := dataset.ReadCSVFile(f.yPath, f.header)
	if err != nil {
		return fmt.Errorf("unable to read outputs, %w", err)
	}

	r, err := pls.New(opt)
	if err != nil {
		return err
	}
	if err := r.SetLabels(xLabels, yLabels); err != nil {
		return err
	}
	if err := r.Fit(x, y); err != nil {
		return err
	}

	m, err := r.Model()
	if err != nil {
		return err
	}
	for i, s := range m.Scores {
		logger.Log.Info().Int("output", i).Float64("r2", s.R2).Float64("mse", s.MSE).Msg("fit score")
	}
	if f.baseline {
		baseline, err := r.BaselineR2()
		if err != nil {
			return err
		}
		logger.Log.Info().Floats64("r2", baseline).Msg("least squares baseline")
	}

	out, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("unable to encode model, %w", err)
	}
	if f.outPath == "" {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), string(out)); err != nil {
			return err
		}
	} else {
		if err := os.WriteFile(f.outPath, out, 0o644); err != nil {
			return fmt.Errorf("unable to write model, %w", err)
		}
		logger.Log.Info().Str("path", f.outPath).Msg("wrote model")
	}

	if f.plotPath != "" {
		file, err := os.Create(f.plotPath)
		if err != nil {
			return err
		}
		defer file.Close()
		if err := r.PlotFit(file); err != nil {
			return fmt.Errorf("unable to plot fit, %w", err)
		}
		logger.Log.Info().Str("path", f.plotPath).Msg("wrote fit report")
	}
	return nil
}
