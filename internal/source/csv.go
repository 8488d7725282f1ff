package source

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// CSVLoader handles CSV files. The first record names the columns; every
// following record becomes a <row> of <cell column=...> elements.
type CSVLoader struct{}

func (l *CSVLoader) Load(r io.Reader, filename string) (string, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return "", fmt.Errorf("parse csv: %w", err)
	}

	var w writer
	w.open("table", "title", titleOf(filename))
	w.b.WriteByte('\n')

	if len(records) > 0 {
		headers := records[0]
		for i, rec := range records[1:] {
			// 1-indexed, skip header
			w.open("row", "n", strconv.Itoa(i+2))
			for j, cell := range rec {
				column := "column" + strconv.Itoa(j+1)
				if j < len(headers) && headers[j] != "" {
					column = headers[j]
				}
				w.element("cell", cell, "column", column)
			}
			w.close("row")
		}
	}

	w.close("table")
	return w.String(), nil
}
