// Package data holds the native in-process containers the client exchanges
// with the engine: dense matrices and labeled heterogeneous tables. Values
// are stored as flat typed slices; when a container is built over engine
// memory the slice is a borrowed view and must not outlive the node's
// engine-side buffers.
package data

import (
	"fmt"

	"github.com/rendis/opgraph/pkg/schema"
)

// Matrix is a dense row-major matrix over a single element type.
type Matrix struct {
	rows, cols int
	vt         schema.ValueType
	values     any
}

// NewMatrix builds a matrix from a flat row-major slice. The element type is
// inferred from the slice type; len(values) must equal rows*cols.
func NewMatrix(rows, cols int, values any) (*Matrix, error) {
	vt, n, err := sliceInfo(values)
	if err != nil {
		return nil, err
	}
	if n != rows*cols {
		return nil, schema.NewErrorf(schema.ErrCodeValidation,
			"matrix of %dx%d needs %d values, got %d", rows, cols, rows*cols, n)
	}
	return &Matrix{rows: rows, cols: cols, vt: vt, values: values}, nil
}

// View wraps an existing slice without length validation against an
// independent source of truth; used when the extents come from the engine.
func View(vt schema.ValueType, rows, cols int, values any) *Matrix {
	return &Matrix{rows: rows, cols: cols, vt: vt, values: values}
}

func (m *Matrix) Rows() int                   { return m.rows }
func (m *Matrix) Cols() int                   { return m.cols }
func (m *Matrix) ValueType() schema.ValueType { return m.vt }

// Values returns the backing slice ([]float64, []int32, ...).
func (m *Matrix) Values() any { return m.values }

// Float64At returns the element at (i, j) widened to float64.
func (m *Matrix) Float64At(i, j int) float64 {
	idx := i*m.cols + j
	switch v := m.values.(type) {
	case []float64:
		return v[idx]
	case []float32:
		return float64(v[idx])
	case []int64:
		return float64(v[idx])
	case []int32:
		return float64(v[idx])
	case []int8:
		return float64(v[idx])
	case []uint64:
		return float64(v[idx])
	case []uint32:
		return float64(v[idx])
	case []uint8:
		return float64(v[idx])
	}
	panic(fmt.Sprintf("matrix holds unsupported slice type %T", m.values))
}

// sliceInfo maps a supported flat slice to its value type code and length.
func sliceInfo(values any) (schema.ValueType, int, error) {
	switch v := values.(type) {
	case []float64:
		return schema.F64, len(v), nil
	case []float32:
		return schema.F32, len(v), nil
	case []int64:
		return schema.SI64, len(v), nil
	case []int32:
		return schema.SI32, len(v), nil
	case []int8:
		return schema.SI8, len(v), nil
	case []uint64:
		return schema.UI64, len(v), nil
	case []uint32:
		return schema.UI32, len(v), nil
	case []uint8:
		return schema.UI8, len(v), nil
	default:
		return 0, 0, schema.NewErrorf(schema.ErrCodeValidation,
			"unsupported element slice type %T", values)
	}
}

// Alloc returns a zeroed flat slice of n elements of the given type.
func Alloc(vt schema.ValueType, n int) (any, error) {
	switch vt {
	case schema.F64:
		return make([]float64, n), nil
	case schema.F32:
		return make([]float32, n), nil
	case schema.SI64:
		return make([]int64, n), nil
	case schema.SI32:
		return make([]int32, n), nil
	case schema.SI8:
		return make([]int8, n), nil
	case schema.UI64:
		return make([]uint64, n), nil
	case schema.UI32:
		return make([]uint32, n), nil
	case schema.UI8:
		return make([]uint8, n), nil
	default:
		return nil, schema.NewErrorf(schema.ErrCodeValueType, "unknown value type code: %d", vt)
	}
}
