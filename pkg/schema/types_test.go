package schema

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueType_Codes(t *testing.T) {
	// The numeric codes are a fixed cross-boundary contract.
	assert.EqualValues(t, 0, SI8)
	assert.EqualValues(t, 1, SI32)
	assert.EqualValues(t, 2, SI64)
	assert.EqualValues(t, 3, UI8)
	assert.EqualValues(t, 4, UI32)
	assert.EqualValues(t, 5, UI64)
	assert.EqualValues(t, 6, F32)
	assert.EqualValues(t, 7, F64)
}

func TestValueType_RoundTrip(t *testing.T) {
	for _, vt := range []ValueType{SI8, SI32, SI64, UI8, UI32, UI64, F32, F64} {
		parsed, err := ParseValueType(vt.String())
		require.NoError(t, err)
		assert.Equal(t, vt, parsed)
		assert.True(t, vt.Valid())
		assert.NotZero(t, vt.Size())
	}
}

func TestParseValueType_Unknown(t *testing.T) {
	_, err := ParseValueType("f16")
	require.Error(t, err)
	ogErr, ok := err.(*OpGraphError)
	require.True(t, ok)
	assert.Equal(t, ErrCodeValueType, ogErr.Code)
}

func TestValueType_Invalid(t *testing.T) {
	vt := ValueType(42)
	assert.False(t, vt.Valid())
	assert.Equal(t, "invalid", vt.String())
	assert.Zero(t, vt.Size())
}

func TestMeta_FrameRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.csv.meta")
	m := &Meta{
		NumRows: 20,
		NumCols: 2,
		Schema: []ColumnMeta{
			{Label: "id", ValueType: "si64"},
			{Label: "score", ValueType: "f64"},
		},
	}
	require.NoError(t, m.WriteFile(path))

	got, err := ReadMetaFile(path)
	require.NoError(t, err)
	assert.Equal(t, m, got)

	vts, err := got.ColumnTypes()
	require.NoError(t, err)
	assert.Equal(t, []ValueType{SI64, F64}, vts)
	assert.Equal(t, []string{"id", "score"}, got.Labels())
}

func TestMeta_MatrixColumnTypes(t *testing.T) {
	m := &Meta{NumRows: 3, NumCols: 4, ValueType: "f32"}
	vts, err := m.ColumnTypes()
	require.NoError(t, err)
	require.Len(t, vts, 4)
	for _, vt := range vts {
		assert.Equal(t, F32, vt)
	}
	assert.Nil(t, m.Labels())
}

func TestOpGraphError_Format(t *testing.T) {
	err := NewErrorf(ErrCodeDeleted, "already gone").WithVar("V3")
	assert.Equal(t, "[NODE_DELETED] V3: already gone", err.Error())

	cause := NewError(ErrCodeExecution, "boom")
	wrapped := NewError(ErrCodeMarshal, "outer").WithCause(cause)
	assert.Equal(t, cause, wrapped.Unwrap())
}
