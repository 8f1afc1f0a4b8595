// Package staging manages the temporary directory a client session stages
// data through: locally supplied tables and matrices on their way into the
// engine, and file-channel payloads on their way back out. One directory per
// session; concurrent use of the same directory from multiple sessions is
// unsupported.
package staging

import (
	"os"
	"path/filepath"

	"github.com/rendis/opgraph/internal/validation"
	"github.com/rendis/opgraph/pkg/data"
	"github.com/rendis/opgraph/pkg/schema"
)

// Dir is a session-scoped staging directory.
type Dir struct {
	path      string
	validator *validation.MetaValidator
}

// New creates (if needed) and wraps the staging directory at path.
func New(path string) (*Dir, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, schema.NewError(schema.ErrCodeStaging, "create staging directory").WithCause(err)
	}
	v, err := validation.NewMetaValidator()
	if err != nil {
		return nil, schema.NewError(schema.ErrCodeStaging, "compile metadata schema").WithCause(err)
	}
	return &Dir{path: path, validator: v}, nil
}

// Path returns the staging directory path.
func (d *Dir) Path() string { return d.path }

// ResultPath returns the path file-channel outputs are written to.
func (d *Dir) ResultPath() string { return filepath.Join(d.path, "result.csv") }

// Sweep removes every file in the staging directory, keeping the directory
// itself. Called after each terminal computation.
func (d *Dir) Sweep() error {
	entries, err := os.ReadDir(d.path)
	if err != nil {
		return schema.NewError(schema.ErrCodeStaging, "list staging directory").WithCause(err)
	}
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(d.path, entry.Name())); err != nil {
			return schema.NewError(schema.ErrCodeStaging, "sweep staging directory").WithCause(err)
		}
	}
	return nil
}

// StageTable writes a local table as varName.csv plus its sidecar metadata
// and returns the CSV path for the generated read statement.
func (d *Dir) StageTable(varName string, t *data.Table) (string, error) {
	csvPath := filepath.Join(d.path, varName+".csv")
	if err := writeTableCSV(csvPath, t); err != nil {
		return "", err
	}

	meta := &schema.Meta{
		NumRows: t.NumRows(),
		NumCols: t.NumCols(),
		Schema:  make([]schema.ColumnMeta, t.NumCols()),
	}
	for i := 0; i < t.NumCols(); i++ {
		col := t.Column(i)
		meta.Schema[i] = schema.ColumnMeta{Label: col.Label, ValueType: col.Type.String()}
	}
	if err := meta.WriteFile(csvPath + ".meta"); err != nil {
		return "", err
	}
	return csvPath, nil
}

// StageMatrix writes a local matrix as varName.csv plus the single-type
// sidecar form and returns the CSV path.
func (d *Dir) StageMatrix(varName string, m *data.Matrix) (string, error) {
	csvPath := filepath.Join(d.path, varName+".csv")
	if err := writeMatrixCSV(csvPath, m); err != nil {
		return "", err
	}

	meta := &schema.Meta{
		NumRows:   m.Rows(),
		NumCols:   m.Cols(),
		ValueType: m.ValueType().String(),
	}
	if err := meta.WriteFile(csvPath + ".meta"); err != nil {
		return "", err
	}
	return csvPath, nil
}

// ReadTable parses a file-channel frame payload: the CSV at path plus its
// validated sidecar metadata. This path copies; it exists as the portable
// fallback to shared memory.
func (d *Dir) ReadTable(path string) (*data.Table, error) {
	meta, err := schema.ReadMetaFile(path + ".meta")
	if err != nil {
		return nil, err
	}
	if err := d.validator.Validate(meta); err != nil {
		return nil, err
	}

	rows, err := readCSVRows(path)
	if err != nil {
		return nil, err
	}
	if len(rows) != meta.NumRows {
		return nil, schema.NewErrorf(schema.ErrCodeMarshal,
			"payload has %d rows, sidecar declares %d", len(rows), meta.NumRows)
	}

	vts, err := meta.ColumnTypes()
	if err != nil {
		return nil, err
	}
	labels := meta.Labels()

	t := data.NewTable(meta.NumRows)
	for c := 0; c < meta.NumCols; c++ {
		values, err := parseColumn(rows, c, vts[c])
		if err != nil {
			return nil, err
		}
		if err := t.AddColumn(labels[c], values); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// ReadMatrix parses a file-channel matrix payload. The sidecar is optional:
// without it the payload is read as f64 with extents taken from the CSV.
func (d *Dir) ReadMatrix(path string) (*data.Matrix, error) {
	rows, err := readCSVRows(path)
	if err != nil {
		return nil, err
	}

	vt := schema.F64
	if meta, err := schema.ReadMetaFile(path + ".meta"); err == nil {
		if err := d.validator.Validate(meta); err != nil {
			return nil, err
		}
		if vt, err = schema.ParseValueType(meta.ValueType); err != nil {
			return nil, err
		}
	}

	nRows := len(rows)
	nCols := 0
	if nRows > 0 {
		nCols = len(rows[0])
	}

	values, err := data.Alloc(vt, nRows*nCols)
	if err != nil {
		return nil, err
	}
	for r, row := range rows {
		if len(row) != nCols {
			return nil, schema.NewErrorf(schema.ErrCodeMarshal,
				"ragged payload: row %d has %d cells, expected %d", r, len(row), nCols)
		}
		for c, cell := range row {
			if err := setCell(values, r*nCols+c, cell, vt); err != nil {
				return nil, err
			}
		}
	}
	return data.View(vt, nRows, nCols, values), nil
}
