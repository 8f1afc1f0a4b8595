package opgraph

import (
	"context"
	"strconv"

	"github.com/rendis/opgraph/pkg/data"
	"github.com/rendis/opgraph/pkg/schema"
)

// Frame is a deferred operation producing a labeled heterogeneous table.
// Frames track their column count when it is locally derivable; operations
// whose output width cannot be known client-side carry -1 and fall back to
// an engine count query where a width check is required.
type Frame struct {
	*Node
	ncols int
}

func newFrame(ctx *Context, op string, args []any, ncols int) *Frame {
	return &Frame{Node: NewNode(ctx, op, args, nil, schema.KindFrame), ncols: ncols}
}

// RBind defers row-wise concatenation: other's rows appended to this
// frame's.
func (f *Frame) RBind(other *Frame) *Frame {
	return newFrame(f.ctx, "rbind", []any{f.Node, other}, f.ncols)
}

// CBind defers column-wise concatenation: other's columns appended to this
// frame's.
func (f *Frame) CBind(other *Frame) *Frame {
	ncols := -1
	if f.ncols >= 0 && other.ncols >= 0 {
		ncols = f.ncols + other.ncols
	}
	return newFrame(f.ctx, "cbind", []any{f.Node, other}, ncols)
}

// Cartesian defers the cartesian product of both frames.
func (f *Frame) Cartesian(other *Frame) *Frame {
	return newFrame(f.ctx, "cartesian", []any{f.Node, other}, -1)
}

// InnerJoin defers an inner join with right on leftOn == rightOn.
func (f *Frame) InnerJoin(right *Frame, leftOn, rightOn string) *Frame {
	return newFrame(f.ctx, "innerJoin",
		[]any{f.Node, right, strconv.Quote(leftOn), strconv.Quote(rightOn)}, -1)
}

// SemiJoin defers a semi join with right on leftOn == rightOn.
func (f *Frame) SemiJoin(right *Frame, leftOn, rightOn string) *Frame {
	return newFrame(f.ctx, "semiJoin",
		[]any{f.Node, right, strconv.Quote(leftOn), strconv.Quote(rightOn)}, -1)
}

// GroupJoin defers a group join with right on leftOn == rightOn,
// aggregating right's rightAgg column.
func (f *Frame) GroupJoin(right *Frame, leftOn, rightOn, rightAgg string) *Frame {
	return newFrame(f.ctx, "groupJoin",
		[]any{f.Node, right, strconv.Quote(leftOn), strconv.Quote(rightOn), strconv.Quote(rightAgg)}, -1)
}

// SetColLabels defers replacing all column labels. The label count must
// equal the frame's column count; the count is taken from client-side
// tracking when available, otherwise obtained through an ncol count query
// against the engine. A mismatch fails here, before the label node exists
// and before anything is emitted for it.
func (f *Frame) SetColLabels(ctx context.Context, labels []string) (*Frame, error) {
	ncols, err := f.columnCount(ctx)
	if err != nil {
		return nil, err
	}
	if len(labels) != ncols {
		return nil, schema.NewErrorf(schema.ErrCodeValidation,
			"expected labels for %d columns, got %d labels", ncols, len(labels))
	}

	args := make([]any, 0, len(labels)+1)
	args = append(args, f.Node)
	for _, label := range labels {
		args = append(args, strconv.Quote(label))
	}
	return newFrame(f.ctx, "setColLabels", args, f.ncols), nil
}

// SetColLabelsPrefix defers prepending a prefix to every column label.
func (f *Frame) SetColLabelsPrefix(prefix string) *Frame {
	return newFrame(f.ctx, "setColLabelsPrefix", []any{f.Node, strconv.Quote(prefix)}, f.ncols)
}

// ToMatrix defers conversion to a matrix of the given element type
// (default f64).
func (f *Frame) ToMatrix(valueType ...schema.ValueType) *Matrix {
	vt := schema.F64
	if len(valueType) > 0 {
		vt = valueType[0]
	}
	return newMatrix(f.ctx, "as.matrix<"+vt.String()+">", []any{f.Node})
}

// Extent queries.
func (f *Frame) NRow() *Scalar  { return newScalar(f.ctx, "nrow", []any{f.Node}) }
func (f *Frame) NCol() *Scalar  { return newScalar(f.ctx, "ncol", []any{f.Node}) }
func (f *Frame) NCell() *Scalar { return newScalar(f.ctx, "ncell", []any{f.Node}) }

// Order defers sorting by the given column indexes with per-key ascending
// flags. Both lists must have the same length; mismatch is a construction
// error. When returnIndexes is set the engine returns the permutation
// instead of the reordered frame.
func (f *Frame) Order(colIdxs []int, ascs []bool, returnIndexes bool) (*Frame, error) {
	if len(colIdxs) != len(ascs) {
		return nil, schema.NewErrorf(schema.ErrCodeConstruction,
			"order: %d column indexes but %d ascending flags", len(colIdxs), len(ascs))
	}
	args := make([]any, 0, 2*len(colIdxs)+2)
	args = append(args, f.Node)
	for _, idx := range colIdxs {
		args = append(args, idx)
	}
	for _, asc := range ascs {
		args = append(args, asc)
	}
	args = append(args, returnIndexes)
	return newFrame(f.ctx, "order", args, f.ncols), nil
}

// Index defers bracket indexing: f[idx0, idx1, ...].
func (f *Frame) Index(idxs ...any) *Frame {
	args := append([]any{f.Node}, idxs...)
	return &Frame{Node: newBracketNode(f.ctx, args, schema.KindFrame), ncols: -1}
}

// Print defers printing the frame on the engine side.
func (f *Frame) Print() *Node {
	return NewNode(f.ctx, "print", []any{f.Node}, nil, schema.KindNone)
}

// Write defers persisting the frame to an engine-accessible file.
func (f *Frame) Write(path string) *Node {
	return NewNode(f.ctx, "writeFrame", []any{f.Node, strconv.Quote(path)}, nil, schema.KindNone)
}

// RegisterView defers registering this frame as a named SQL view. The
// returned statement node is passed to ComputeSQL ahead of the query.
func (f *Frame) RegisterView(name string) *Node {
	return NewNode(f.ctx, "registerView", []any{f.Node, strconv.Quote(name)}, nil, schema.KindNone)
}

// Compute materializes the frame as a labeled table. Over shared memory the
// columns are zero-copy views of engine-owned buffers and must not be used
// after Delete.
func (f *Frame) Compute(ctx context.Context, opts ...ComputeOption) (*data.Table, error) {
	v, err := f.Node.Compute(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return assertTable(v)
}

// ComputeSQL materializes an SQL query frame: the given view-registration
// statements execute first, in order, sharing one variable namespace with
// the final query.
func (f *Frame) ComputeSQL(ctx context.Context, views []*Node, opts ...ComputeOption) (*data.Table, error) {
	v, err := f.Node.computeSQL(ctx, views, opts...)
	if err != nil {
		return nil, err
	}
	return assertTable(v)
}

// columnCount resolves the frame's column count, preferring client-side
// tracking over a count query.
func (f *Frame) columnCount(ctx context.Context) (int, error) {
	if f.ncols >= 0 {
		return f.ncols, nil
	}
	n, err := f.NCol().ComputeInt(ctx)
	if err != nil {
		return 0, err
	}
	f.ncols = int(n)
	return f.ncols, nil
}

func assertTable(v any) (*data.Table, error) {
	t, ok := v.(*data.Table)
	if !ok {
		return nil, schema.NewErrorf(schema.ErrCodeMarshal, "frame result has type %T", v)
	}
	return t, nil
}
