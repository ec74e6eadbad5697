package pls

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/aouyang1/go-pls/linearmodel"
)

// Model represents a serializeable format of a fitted regressor storing the options, variable
// labels, fit scores and the prediction weights
type Model struct {
	Options *Options                 `json:"options"`
	XLabels []string                 `json:"x_labels,omitempty"`
	YLabels []string                 `json:"y_labels,omitempty"`
	Scores  []Scores                 `json:"scores,omitempty"`
	Weights linearmodel.PLSSBWeights `json:"weights"`
}

// TablePrint writes a human readable summary of the model including the affine coefficients
func (m Model) TablePrint(w io.Writer, prefix, indent string) error {
	if _, err := fmt.Fprintf(w, "%s%sPLS-SB:\n", prefix, indentExpand(indent, 0)); err != nil {
		return err
	}

	if m.Options != nil {
		if _, err := fmt.Fprintf(w, "%s%sComponents: %d    Method: %s\n",
			prefix, indentExpand(indent, 1),
			m.Options.Components, m.Options.Method); err != nil {
			return err
		}
	}
	xLabels := labelsOrDefault(m.XLabels, "x", len(m.Weights.XOffset))
	yLabels := labelsOrDefault(m.YLabels, "y", len(m.Weights.YOffset))

	if _, err := fmt.Fprintf(w, "%s%sSamples: %d    Inputs: %d    Outputs: %d\n",
		prefix, indentExpand(indent, 1),
		m.Weights.Samples, len(xLabels), len(yLabels)); err != nil {
		return err
	}

	if len(m.Scores) > 0 {
		if _, err := fmt.Fprintf(w, "%s%sScores:\n", prefix, indentExpand(indent, 0)); err != nil {
			return err
		}
		for i, s := range m.Scores {
			label := fmt.Sprintf("y%d", i)
			if i < len(yLabels) {
				label = yLabels[i]
			}
			if _, err := fmt.Fprintf(w, "%s%s%s    MAPE: %.3f    MSE: %.3f    R2: %.3f\n",
				prefix, indentExpand(indent, 1), label,
				s.MAPE, s.MSE, s.R2); err != nil {
				return err
			}
		}
	}

	return m.tablePrintCoef(w, prefix, indent, xLabels, yLabels)
}

func (m Model) tablePrintCoef(w io.Writer, prefix, indent string, xLabels, yLabels []string) error {
	if _, err := fmt.Fprintf(w, "%s%sCoefficients:\n", prefix, indentExpand(indent, 0)); err != nil {
		return err
	}
	if len(m.Weights.C) == 0 {
		return nil
	}
	pm, err := linearmodel.NewPLSSBFromWeights(m.Weights)
	if err != nil {
		return err
	}
	intercept, coef := pm.Intercept(), pm.Coef()

	tbl := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.AlignRight)
	if _, err := fmt.Fprintf(tbl, "%s%sInput\t", prefix, indentExpand(indent, 1)); err != nil {
		return err
	}
	for _, label := range yLabels {
		if _, err := fmt.Fprintf(tbl, "%s\t", label); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(tbl); err != nil {
		return err
	}

	rows := append([]string{"Intercept"}, xLabels...)
	for i, label := range rows {
		if _, err := fmt.Fprintf(tbl, "%s%s%s\t", prefix, indentExpand(indent, 1), label); err != nil {
			return err
		}
		for j := range yLabels {
			val := intercept[j]
			if i > 0 {
				val = coef.At(i-1, j)
			}
			if _, err := fmt.Fprintf(tbl, "%.3f\t", val); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(tbl); err != nil {
			return err
		}
	}
	return tbl.Flush()
}

func labelsOrDefault(labels []string, prefix string, n int) []string {
	if len(labels) == n {
		return labels
	}
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s%d", prefix, i)
	}
	return out
}
