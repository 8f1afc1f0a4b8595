// Package marshal reconstructs native values from engine result handles.
// Shared-memory results become zero-copy views over the engine's buffers;
// the views borrow that memory and must not be used after the owning node
// is deleted.
package marshal

import (
	"log/slog"
	"unsafe"

	"github.com/rendis/opgraph/pkg/bridge"
	"github.com/rendis/opgraph/pkg/data"
	"github.com/rendis/opgraph/pkg/schema"
)

// ScalarValue extracts a scalar result. Scalars cross the boundary wrapped
// in a 1x1 matrix; the single element is returned with its native type.
func ScalarValue(h *bridge.ResultHandle) (any, error) {
	m, err := MatrixView(h)
	if err != nil {
		return nil, err
	}
	if m.Rows() < 1 || m.Cols() < 1 {
		return nil, schema.NewErrorf(schema.ErrCodeMarshal,
			"scalar handle has extents %dx%d", m.Rows(), m.Cols())
	}
	switch v := m.Values().(type) {
	case []float64:
		return v[0], nil
	case []float32:
		return v[0], nil
	case []int64:
		return v[0], nil
	case []int32:
		return v[0], nil
	case []int8:
		return v[0], nil
	case []uint64:
		return v[0], nil
	case []uint32:
		return v[0], nil
	case []uint8:
		return v[0], nil
	}
	return nil, schema.NewErrorf(schema.ErrCodeValueType, "unknown value type code: %d", m.ValueType())
}

// MatrixView builds a zero-copy dense view over a matrix handle. A null
// buffer is fatal here: unlike frames, there is no well-formed empty
// rendition of a missing matrix.
func MatrixView(h *bridge.ResultHandle) (*data.Matrix, error) {
	if h == nil || h.Address == nil {
		return nil, schema.NewError(schema.ErrCodeMarshal, "null result buffer where a matrix was expected")
	}
	values, err := viewSlice(h.Address, h.ValueType, int(h.Rows*h.Cols))
	if err != nil {
		return nil, err
	}
	return data.View(h.ValueType, int(h.Rows), int(h.Cols), values), nil
}

// TableView assembles a labeled table from a frame handle: one zero-copy
// column view per entry of the handle's pointer arrays, in column order.
// When useIndexColumn is set and a column labeled "index" exists, it becomes
// the table's row index. A null column array is not fatal: the engine may
// legitimately return an empty result, so an empty table flagged suspect is
// produced and the condition logged.
func TableView(h *bridge.ResultHandle, useIndexColumn bool, logger *slog.Logger) (*data.Table, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if h == nil {
		return nil, schema.NewError(schema.ErrCodeMarshal, "nil result handle")
	}

	colPtrs := h.ColumnPointers()
	if colPtrs == nil {
		logger.Warn("null column buffer in frame result; returning empty table")
		return data.EmptySuspect(), nil
	}

	labelPtrs := h.LabelPointers()
	vts := h.ColumnTypes()
	if labelPtrs == nil || vts == nil {
		return nil, schema.NewError(schema.ErrCodeMarshal,
			"frame handle has columns but no labels or value type codes")
	}

	t := data.NewTable(int(h.Rows))
	for i := range colPtrs {
		values, err := viewSlice(colPtrs[i], vts[i], int(h.Rows))
		if err != nil {
			return nil, err
		}
		if err := t.AddColumn(cString(labelPtrs[i]), values); err != nil {
			return nil, err
		}
	}

	if useIndexColumn {
		t.PromoteIndex("index")
	}
	return t, nil
}

// viewSlice wraps a foreign buffer of n elements in the slice type matching
// the value type code. The slice borrows the buffer.
func viewSlice(p unsafe.Pointer, vt schema.ValueType, n int) (any, error) {
	if p == nil {
		return nil, schema.NewError(schema.ErrCodeMarshal, "null element buffer")
	}
	switch vt {
	case schema.F64:
		return unsafe.Slice((*float64)(p), n), nil
	case schema.F32:
		return unsafe.Slice((*float32)(p), n), nil
	case schema.SI64:
		return unsafe.Slice((*int64)(p), n), nil
	case schema.SI32:
		return unsafe.Slice((*int32)(p), n), nil
	case schema.SI8:
		return unsafe.Slice((*int8)(p), n), nil
	case schema.UI64:
		return unsafe.Slice((*uint64)(p), n), nil
	case schema.UI32:
		return unsafe.Slice((*uint32)(p), n), nil
	case schema.UI8:
		return unsafe.Slice((*uint8)(p), n), nil
	default:
		return nil, schema.NewErrorf(schema.ErrCodeValueType, "unknown value type code: %d", vt)
	}
}

// cString reads a NUL-terminated string from foreign memory.
func cString(p unsafe.Pointer) string {
	if p == nil {
		return ""
	}
	n := 0
	for *(*byte)(unsafe.Add(p, n)) != 0 {
		n++
	}
	return string(unsafe.Slice((*byte)(p), n))
}
