package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

var ErrParseValue = errors.New("unable to parse value as float")

// ReadCSV parses comma separated numeric rows. If header is true the first record is returned as
// the column labels instead of being parsed. Empty lines are skipped by the csv reader.
func ReadCSV(r io.Reader, header bool) ([]string, [][]float64, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.Comment = '#'
	reader.FieldsPerRecord = -1

	var labels []string
	var rows [][]float64
	for line := 0; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		if header && labels == nil {
			labels = record
			continue
		}

		row := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("record %d field %d %q, %w", line, j, field, ErrParseValue)
			}
			row[j] = v
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return labels, nil, ErrNoTrainingData
	}
	if err := checkWidth(rows); err != nil {
		return nil, nil, err
	}
	return labels, rows, nil
}

// ReadCSVFile reads a numeric csv file from disk
func ReadCSVFile(path string, header bool) ([]string, [][]float64, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	return ReadCSV(file, header)
}

// WriteCSV writes rows of values with an optional header record
func WriteCSV(w io.Writer, labels []string, rows [][]float64) error {
	writer := csv.NewWriter(w)
	if len(labels) > 0 {
		if err := writer.Write(labels); err != nil {
			return err
		}
	}

	record := make([]string, 0)
	for _, row := range rows {
		record = record[:0]
		for _, v := range row {
			record = append(record, strconv.FormatFloat(v, 'g', -1, 64))
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
