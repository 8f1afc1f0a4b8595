package data

import (
	"github.com/rendis/opgraph/pkg/schema"
)

// Column is one labeled, homogeneously typed column of a table.
type Column struct {
	Label  string
	Type   schema.ValueType
	values any
}

// Values returns the column's backing slice.
func (c *Column) Values() any { return c.values }

// Len returns the column's element count.
func (c *Column) Len() int {
	_, n, err := sliceInfo(c.values)
	if err != nil {
		return 0
	}
	return n
}

// Table is an ordered collection of labeled columns with a common row count.
// A table marshalled from an absent engine buffer is empty and flagged
// suspect; callers that care can distinguish it from a genuinely empty
// result.
type Table struct {
	rows    int
	columns []Column
	index   *Column
	suspect bool
}

// NewTable creates an empty table expecting the given row count.
func NewTable(rows int) *Table {
	return &Table{rows: rows}
}

// EmptySuspect creates an empty table flagged as the product of a null
// result buffer.
func EmptySuspect() *Table {
	return &Table{suspect: true}
}

// AddColumn appends a column. The slice length must match the table's row
// count and the label must be unique.
func (t *Table) AddColumn(label string, values any) error {
	vt, n, err := sliceInfo(values)
	if err != nil {
		return err
	}
	if n != t.rows {
		return schema.NewErrorf(schema.ErrCodeValidation,
			"column %q has %d values, table has %d rows", label, n, t.rows)
	}
	for _, c := range t.columns {
		if c.Label == label {
			return schema.NewErrorf(schema.ErrCodeValidation, "duplicate column label %q", label)
		}
	}
	t.columns = append(t.columns, Column{Label: label, Type: vt, values: values})
	return nil
}

func (t *Table) NumRows() int { return t.rows }
func (t *Table) NumCols() int { return len(t.columns) }

// Labels returns the column labels in column order.
func (t *Table) Labels() []string {
	labels := make([]string, len(t.columns))
	for i := range t.columns {
		labels[i] = t.columns[i].Label
	}
	return labels
}

// Column returns the i-th column.
func (t *Table) Column(i int) *Column { return &t.columns[i] }

// ColumnByLabel returns the column with the given label, or nil.
func (t *Table) ColumnByLabel(label string) *Column {
	for i := range t.columns {
		if t.columns[i].Label == label {
			return &t.columns[i]
		}
	}
	return nil
}

// Index returns the promoted row-index column, or nil.
func (t *Table) Index() *Column { return t.index }

// PromoteIndex moves the column with the given label out of the data
// columns and installs it as the table's row index. Missing label is a
// no-op, mirroring the engine contract for optional index columns.
func (t *Table) PromoteIndex(label string) {
	for i := range t.columns {
		if t.columns[i].Label == label {
			col := t.columns[i]
			t.columns = append(t.columns[:i], t.columns[i+1:]...)
			t.index = &col
			return
		}
	}
}

// Suspect reports whether the table was produced from a null result buffer.
func (t *Table) Suspect() bool { return t.suspect }

// ValueTypes returns the per-column value type codes in column order.
func (t *Table) ValueTypes() []schema.ValueType {
	vts := make([]schema.ValueType, len(t.columns))
	for i := range t.columns {
		vts[i] = t.columns[i].Type
	}
	return vts
}
