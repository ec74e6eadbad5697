package main

import (
	"github.com/spf13/cobra"
)

func newInspectCmd() *cobra.Command {
	var modelPath string
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print a summary of a fitted model",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadModel(modelPath)
			if err != nil {
				return err
			}
			return m.TablePrint(cmd.OutOrStdout(), "", "  ")
		},
	}
	cmd.Flags().StringVar(&modelPath, "model", "", "JSON model written by fit")
	_ = cmd.MarkFlagRequired("model")
	return cmd
}
