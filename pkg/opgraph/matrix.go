package opgraph

import (
	"context"
	"strconv"

	"github.com/rendis/opgraph/pkg/data"
	"github.com/rendis/opgraph/pkg/schema"
)

// Matrix is a deferred operation producing a dense matrix.
type Matrix struct {
	*Node
}

func newMatrix(ctx *Context, op string, args []any) *Matrix {
	return &Matrix{Node: NewNode(ctx, op, args, nil, schema.KindMatrix)}
}

// binary builds an infix operation with this matrix on the left. The right
// operand may be another node or a numeric literal.
func (m *Matrix) binary(op string, other any) *Matrix {
	return newMatrix(m.ctx, op, []any{m.Node, other})
}

func (m *Matrix) Plus(other any) *Matrix   { return m.binary("+", other) }
func (m *Matrix) Minus(other any) *Matrix  { return m.binary("-", other) }
func (m *Matrix) Times(other any) *Matrix  { return m.binary("*", other) }
func (m *Matrix) Div(other any) *Matrix    { return m.binary("/", other) }
func (m *Matrix) Mod(other any) *Matrix    { return m.binary("%", other) }
func (m *Matrix) Pow(other any) *Matrix    { return m.binary("^", other) }
func (m *Matrix) MatMul(other any) *Matrix { return m.binary("@", other) }
func (m *Matrix) Lt(other any) *Matrix     { return m.binary("<", other) }
func (m *Matrix) Le(other any) *Matrix     { return m.binary("<=", other) }
func (m *Matrix) Gt(other any) *Matrix     { return m.binary(">", other) }
func (m *Matrix) Ge(other any) *Matrix     { return m.binary(">=", other) }
func (m *Matrix) Eq(other any) *Matrix     { return m.binary("==", other) }
func (m *Matrix) Ne(other any) *Matrix     { return m.binary("!=", other) }

// Elementwise unary operations.
func (m *Matrix) Abs() *Matrix  { return newMatrix(m.ctx, "abs", []any{m.Node}) }
func (m *Matrix) Sqrt() *Matrix { return newMatrix(m.ctx, "sqrt", []any{m.Node}) }
func (m *Matrix) Exp() *Matrix  { return newMatrix(m.ctx, "exp", []any{m.Node}) }
func (m *Matrix) Ln() *Matrix   { return newMatrix(m.ctx, "ln", []any{m.Node}) }

// T defers the transpose.
func (m *Matrix) T() *Matrix { return newMatrix(m.ctx, "t", []any{m.Node}) }

// Full aggregations.
func (m *Matrix) Sum() *Scalar  { return newScalar(m.ctx, "sum", []any{m.Node}) }
func (m *Matrix) Mean() *Scalar { return newScalar(m.ctx, "mean", []any{m.Node}) }
func (m *Matrix) Min() *Scalar  { return newScalar(m.ctx, "min", []any{m.Node}) }
func (m *Matrix) Max() *Scalar  { return newScalar(m.ctx, "max", []any{m.Node}) }

// Extent queries.
func (m *Matrix) NRow() *Scalar  { return newScalar(m.ctx, "nrow", []any{m.Node}) }
func (m *Matrix) NCol() *Scalar  { return newScalar(m.ctx, "ncol", []any{m.Node}) }
func (m *Matrix) NCell() *Scalar { return newScalar(m.ctx, "ncell", []any{m.Node}) }

// RBind defers row-wise concatenation with other.
func (m *Matrix) RBind(other *Matrix) *Matrix {
	return newMatrix(m.ctx, "rbind", []any{m.Node, other})
}

// CBind defers column-wise concatenation with other.
func (m *Matrix) CBind(other *Matrix) *Matrix {
	return newMatrix(m.ctx, "cbind", []any{m.Node, other})
}

// Index defers bracket indexing: m[idx0, idx1, ...]. Index expressions may
// be literals or scalar nodes; they render inside the brackets in order.
func (m *Matrix) Index(idxs ...any) *Matrix {
	args := append([]any{m.Node}, idxs...)
	return &Matrix{Node: newBracketNode(m.ctx, args, schema.KindMatrix)}
}

// Print defers printing the matrix on the engine side.
func (m *Matrix) Print() *Node {
	return NewNode(m.ctx, "print", []any{m.Node}, nil, schema.KindNone)
}

// Write defers persisting the matrix to an engine-accessible file.
func (m *Matrix) Write(path string) *Node {
	return NewNode(m.ctx, "writeMatrix", []any{m.Node, strconv.Quote(path)}, nil, schema.KindNone)
}

// Compute materializes the matrix. Over shared memory the result is a
// zero-copy view of engine-owned buffers and must not be used after Delete.
func (m *Matrix) Compute(ctx context.Context, opts ...ComputeOption) (*data.Matrix, error) {
	v, err := m.Node.Compute(ctx, opts...)
	if err != nil {
		return nil, err
	}
	res, ok := v.(*data.Matrix)
	if !ok {
		return nil, schema.NewErrorf(schema.ErrCodeMarshal, "matrix result has type %T", v)
	}
	return res, nil
}
