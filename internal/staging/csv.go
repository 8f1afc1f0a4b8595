package staging

import (
	"encoding/csv"
	"os"
	"strconv"
	"strings"

	"github.com/rendis/opgraph/pkg/data"
	"github.com/rendis/opgraph/pkg/schema"
)

// writeTableCSV writes a table row-wise without header or index, matching
// what the engine's read operation expects next to a sidecar.
func writeTableCSV(path string, t *data.Table) error {
	var sb strings.Builder
	for r := 0; r < t.NumRows(); r++ {
		for c := 0; c < t.NumCols(); c++ {
			if c > 0 {
				sb.WriteByte(',')
			}
			col := t.Column(c)
			sb.WriteString(formatCell(col.Values(), r))
		}
		sb.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return schema.NewError(schema.ErrCodeStaging, "write staged csv").WithCause(err)
	}
	return nil
}

func writeMatrixCSV(path string, m *data.Matrix) error {
	var sb strings.Builder
	for r := 0; r < m.Rows(); r++ {
		for c := 0; c < m.Cols(); c++ {
			if c > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(formatCell(m.Values(), r*m.Cols()+c))
		}
		sb.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return schema.NewError(schema.ErrCodeStaging, "write staged csv").WithCause(err)
	}
	return nil
}

// formatCell renders the i-th element of a flat typed slice as a CSV cell.
func formatCell(values any, i int) string {
	switch v := values.(type) {
	case []float64:
		return strconv.FormatFloat(v[i], 'g', -1, 64)
	case []float32:
		return strconv.FormatFloat(float64(v[i]), 'g', -1, 32)
	case []int64:
		return strconv.FormatInt(v[i], 10)
	case []int32:
		return strconv.FormatInt(int64(v[i]), 10)
	case []int8:
		return strconv.FormatInt(int64(v[i]), 10)
	case []uint64:
		return strconv.FormatUint(v[i], 10)
	case []uint32:
		return strconv.FormatUint(uint64(v[i]), 10)
	case []uint8:
		return strconv.FormatUint(uint64(v[i]), 10)
	}
	return ""
}

func readCSVRows(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, schema.NewError(schema.ErrCodeMarshal, "open payload csv").WithCause(err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, schema.NewError(schema.ErrCodeMarshal, "parse payload csv").WithCause(err)
	}
	return rows, nil
}

// parseColumn extracts column c of the parsed rows into a typed flat slice.
func parseColumn(rows [][]string, c int, vt schema.ValueType) (any, error) {
	values, err := data.Alloc(vt, len(rows))
	if err != nil {
		return nil, err
	}
	for r, row := range rows {
		if c >= len(row) {
			return nil, schema.NewErrorf(schema.ErrCodeMarshal,
				"row %d has no cell for column %d", r, c)
		}
		if err := setCell(values, r, row[c], vt); err != nil {
			return nil, err
		}
	}
	return values, nil
}

// setCell parses one CSV cell into position i of a typed flat slice.
func setCell(values any, i int, cell string, vt schema.ValueType) error {
	cell = strings.TrimSpace(cell)
	var err error
	switch v := values.(type) {
	case []float64:
		v[i], err = strconv.ParseFloat(cell, 64)
	case []float32:
		var f float64
		f, err = strconv.ParseFloat(cell, 32)
		v[i] = float32(f)
	case []int64:
		v[i], err = parseSigned(cell, 64)
	case []int32:
		var n int64
		n, err = parseSigned(cell, 32)
		v[i] = int32(n)
	case []int8:
		var n int64
		n, err = parseSigned(cell, 8)
		v[i] = int8(n)
	case []uint64:
		v[i], err = strconv.ParseUint(cell, 10, 64)
	case []uint32:
		var n uint64
		n, err = strconv.ParseUint(cell, 10, 32)
		v[i] = uint32(n)
	case []uint8:
		var n uint64
		n, err = strconv.ParseUint(cell, 10, 8)
		v[i] = uint8(n)
	}
	if err != nil {
		return schema.NewErrorf(schema.ErrCodeMarshal,
			"cell %q is not a valid %s", cell, vt).WithCause(err)
	}
	return nil
}

// parseSigned accepts both integer and float renderings of integral values:
// engines emit "3" and "3.0" interchangeably for integer columns.
func parseSigned(cell string, bits int) (int64, error) {
	if n, err := strconv.ParseInt(cell, 10, bits); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, err
	}
	return int64(f), nil
}
