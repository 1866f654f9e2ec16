package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// kindSampleSize caps how many rows are inspected per column when
// inferring its kind.
const kindSampleSize = 1000

// maxCategoricalCardinality is the distinct-value ceiling below which
// a text column is treated as categorical.
const maxCategoricalCardinality = 20

// ReadCSV parses CSV content into a Dataset. The first record is the
// header; ragged data rows are padded or truncated to the header
// width so the result is always rectangular. A header with zero data
// rows is a valid, empty Dataset.
func ReadCSV(name string, r io.Reader) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: %s: missing header", ErrMalformed, name)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, name, err)
	}

	width := len(header)
	var rows [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, name, err)
		}
		row := make([]string, width)
		for i := range row {
			if i < len(rec) {
				row[i] = strings.TrimSpace(rec[i])
			}
		}
		rows = append(rows, row)
	}

	columns := make([]Column, width)
	for i, h := range header {
		columns[i] = Column{
			Name: strings.TrimSpace(h),
			Kind: inferKind(rows, i),
		}
	}

	return &Dataset{Name: name, Columns: columns, Rows: rows}, nil
}

// inferKind samples a column's cells and classifies it. All non-empty
// cells parsing as floats make it numeric; otherwise low-cardinality
// text is categorical, and everything else is plain text.
func inferKind(rows [][]string, col int) Kind {
	sample := len(rows)
	if sample > kindSampleSize {
		sample = kindSampleSize
	}

	nonEmpty := 0
	numeric := 0
	distinct := make(map[string]struct{})
	for i := 0; i < sample; i++ {
		v := rows[i][col]
		if v == "" {
			continue
		}
		nonEmpty++
		if _, err := strconv.ParseFloat(v, 64); err == nil {
			numeric++
		}
		if len(distinct) <= maxCategoricalCardinality {
			distinct[v] = struct{}{}
		}
	}

	if nonEmpty == 0 {
		return KindText
	}
	if numeric == nonEmpty {
		return KindNumeric
	}
	if len(distinct) <= maxCategoricalCardinality && len(distinct) < nonEmpty {
		return KindCategorical
	}
	return KindText
}
