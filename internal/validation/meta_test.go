package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/opgraph/pkg/schema"
)

func newValidator(t *testing.T) *MetaValidator {
	t.Helper()
	v, err := NewMetaValidator()
	require.NoError(t, err)
	return v
}

func TestValidate_FrameMeta(t *testing.T) {
	v := newValidator(t)
	m := &schema.Meta{
		NumRows: 10,
		NumCols: 2,
		Schema: []schema.ColumnMeta{
			{Label: "id", ValueType: "si64"},
			{Label: "score", ValueType: "f64"},
		},
	}
	assert.NoError(t, v.Validate(m))
}

func TestValidate_MatrixMeta(t *testing.T) {
	v := newValidator(t)
	m := &schema.Meta{NumRows: 3, NumCols: 3, ValueType: "f64"}
	assert.NoError(t, v.Validate(m))
}

func TestValidate_NilMeta(t *testing.T) {
	v := newValidator(t)
	err := v.Validate(nil)
	require.Error(t, err)
	assert.Equal(t, schema.ErrCodeValidation, err.(*schema.OpGraphError).Code)
}

func TestValidate_UnknownValueType(t *testing.T) {
	v := newValidator(t)
	m := &schema.Meta{
		NumRows: 1,
		NumCols: 1,
		Schema:  []schema.ColumnMeta{{Label: "x", ValueType: "f16"}},
	}
	err := v.Validate(m)
	require.Error(t, err)
	assert.Equal(t, schema.ErrCodeValidation, err.(*schema.OpGraphError).Code)
}

func TestValidate_MissingTypeInformation(t *testing.T) {
	v := newValidator(t)
	// Neither valueType nor schema present.
	m := &schema.Meta{NumRows: 1, NumCols: 1}
	require.Error(t, v.Validate(m))
}

func TestValidate_SchemaWidthMismatch(t *testing.T) {
	v := newValidator(t)
	m := &schema.Meta{
		NumRows: 1,
		NumCols: 3,
		Schema:  []schema.ColumnMeta{{Label: "x", ValueType: "f64"}},
	}
	err := v.Validate(m)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "numCols")
}

func TestValidate_NegativeExtents(t *testing.T) {
	v := newValidator(t)
	m := &schema.Meta{NumRows: -1, NumCols: 1, ValueType: "f64"}
	require.Error(t, v.Validate(m))
}
