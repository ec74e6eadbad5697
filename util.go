package pls

import (
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

func indentExpand(indent string, growth int) string {
	return strings.Repeat(indent, growth)
}

// LineSeries generates an echart multi-line chart of values against the sample index. Every
// slice in y must have the same length.
func LineSeries(title string, seriesName []string, y [][]float64) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: title,
			},
		),
	)

	var n int
	if len(y) > 0 {
		n = len(y[0])
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	line = line.SetXAxis(idx)

	for i, series := range seriesName {
		lineData := make([]opts.LineData, 0, len(y[i]))
		for _, v := range y[i] {
			lineData = append(lineData, opts.LineData{Value: v})
		}
		line = line.AddSeries(series, lineData)
	}
	return line
}

// LineFit generates an echart line chart comparing the actual calibration values of one output
// with the fitted values
func LineFit(label string, actual, fitted []float64) *charts.Line {
	return LineSeries(
		label+" Fit",
		[]string{"Actual", "Fitted"},
		[][]float64{actual, fitted},
	)
}
