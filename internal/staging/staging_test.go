package staging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/opgraph/pkg/data"
	"github.com/rendis/opgraph/pkg/schema"
)

func newDir(t *testing.T) *Dir {
	t.Helper()
	d, err := New(filepath.Join(t.TempDir(), "stage"))
	require.NoError(t, err)
	return d
}

func sampleTable(t *testing.T) *data.Table {
	t.Helper()
	tb := data.NewTable(3)
	require.NoError(t, tb.AddColumn("id", []int64{1, 2, 3}))
	require.NoError(t, tb.AddColumn("score", []float64{0.5, 1.25, -3}))
	require.NoError(t, tb.AddColumn("flag", []uint8{0, 1, 0}))
	return tb
}

func TestStageTable_WritesPayloadAndSidecar(t *testing.T) {
	d := newDir(t)
	csvPath, err := d.StageTable("V0", sampleTable(t))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(d.Path(), "V0.csv"), csvPath)

	meta, err := schema.ReadMetaFile(csvPath + ".meta")
	require.NoError(t, err)
	assert.Equal(t, 3, meta.NumRows)
	assert.Equal(t, 3, meta.NumCols)
	assert.Equal(t, []string{"id", "score", "flag"}, meta.Labels())
}

func TestTableRoundTrip(t *testing.T) {
	d := newDir(t)
	in := sampleTable(t)
	csvPath, err := d.StageTable("V0", in)
	require.NoError(t, err)

	out, err := d.ReadTable(csvPath)
	require.NoError(t, err)

	// Labels, column order, element types, and row count survive the trip.
	assert.Equal(t, in.Labels(), out.Labels())
	assert.Equal(t, in.ValueTypes(), out.ValueTypes())
	assert.Equal(t, in.NumRows(), out.NumRows())
	assert.Equal(t, []int64{1, 2, 3}, out.Column(0).Values())
	assert.Equal(t, []float64{0.5, 1.25, -3}, out.Column(1).Values())
	assert.Equal(t, []uint8{0, 1, 0}, out.Column(2).Values())
}

func TestMatrixRoundTrip(t *testing.T) {
	d := newDir(t)
	in, err := data.NewMatrix(2, 3, []float64{1, 2, 3, 4.5, -5, 6})
	require.NoError(t, err)

	csvPath, err := d.StageMatrix("V1", in)
	require.NoError(t, err)

	out, err := d.ReadMatrix(csvPath)
	require.NoError(t, err)
	assert.Equal(t, 2, out.Rows())
	assert.Equal(t, 3, out.Cols())
	assert.Equal(t, schema.F64, out.ValueType())
	assert.Equal(t, in.Values(), out.Values())
}

func TestReadMatrix_WithoutSidecarDefaultsToF64(t *testing.T) {
	d := newDir(t)
	path := filepath.Join(d.Path(), "result.csv")
	require.NoError(t, os.WriteFile(path, []byte("1,2\n3,4\n"), 0o644))

	out, err := d.ReadMatrix(path)
	require.NoError(t, err)
	assert.Equal(t, schema.F64, out.ValueType())
	assert.Equal(t, []float64{1, 2, 3, 4}, out.Values())
}

func TestReadTable_RowCountMismatch(t *testing.T) {
	d := newDir(t)
	csvPath, err := d.StageTable("V0", sampleTable(t))
	require.NoError(t, err)

	// Corrupt the sidecar's row count.
	meta, err := schema.ReadMetaFile(csvPath + ".meta")
	require.NoError(t, err)
	meta.NumRows = 99
	require.NoError(t, meta.WriteFile(csvPath+".meta"))

	_, err = d.ReadTable(csvPath)
	require.Error(t, err)
	assert.Equal(t, schema.ErrCodeMarshal, err.(*schema.OpGraphError).Code)
}

func TestReadTable_InvalidSidecar(t *testing.T) {
	d := newDir(t)
	path := filepath.Join(d.Path(), "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("1\n"), 0o644))
	bad := &schema.Meta{NumRows: 1, NumCols: 1,
		Schema: []schema.ColumnMeta{{Label: "x", ValueType: "f16"}}}
	require.NoError(t, bad.WriteFile(path+".meta"))

	_, err := d.ReadTable(path)
	require.Error(t, err)
	assert.Equal(t, schema.ErrCodeValidation, err.(*schema.OpGraphError).Code)
}

func TestSweep(t *testing.T) {
	d := newDir(t)
	_, err := d.StageTable("V0", sampleTable(t))
	require.NoError(t, err)

	entries, err := os.ReadDir(d.Path())
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	require.NoError(t, d.Sweep())

	entries, err = os.ReadDir(d.Path())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestIntegerCellsAcceptFloatRendering(t *testing.T) {
	d := newDir(t)
	path := filepath.Join(d.Path(), "ints.csv")
	require.NoError(t, os.WriteFile(path, []byte("1.0\n2.0\n"), 0o644))
	meta := &schema.Meta{NumRows: 2, NumCols: 1,
		Schema: []schema.ColumnMeta{{Label: "n", ValueType: "si64"}}}
	require.NoError(t, meta.WriteFile(path+".meta"))

	out, err := d.ReadTable(path)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, out.Column(0).Values())
}
