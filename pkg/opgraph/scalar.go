package opgraph

import (
	"context"

	"github.com/rendis/opgraph/pkg/schema"
)

// Scalar is a deferred operation producing a single value. Scalars cross
// the engine boundary wrapped in a 1x1 matrix.
type Scalar struct {
	*Node
}

func newScalar(ctx *Context, op string, args []any) *Scalar {
	return &Scalar{Node: NewNode(ctx, op, args, nil, schema.KindScalar)}
}

// binary builds an infix operation with this scalar on the left. The right
// operand may be another node or a numeric literal.
func (s *Scalar) binary(op string, other any) *Scalar {
	return newScalar(s.ctx, op, []any{s.Node, other})
}

func (s *Scalar) Plus(other any) *Scalar  { return s.binary("+", other) }
func (s *Scalar) Minus(other any) *Scalar { return s.binary("-", other) }
func (s *Scalar) Times(other any) *Scalar { return s.binary("*", other) }
func (s *Scalar) Div(other any) *Scalar   { return s.binary("/", other) }
func (s *Scalar) Mod(other any) *Scalar   { return s.binary("%", other) }
func (s *Scalar) Pow(other any) *Scalar   { return s.binary("^", other) }
func (s *Scalar) Lt(other any) *Scalar    { return s.binary("<", other) }
func (s *Scalar) Le(other any) *Scalar    { return s.binary("<=", other) }
func (s *Scalar) Gt(other any) *Scalar    { return s.binary(">", other) }
func (s *Scalar) Ge(other any) *Scalar    { return s.binary(">=", other) }
func (s *Scalar) Eq(other any) *Scalar    { return s.binary("==", other) }
func (s *Scalar) Ne(other any) *Scalar    { return s.binary("!=", other) }

// Print defers printing the scalar on the engine side.
func (s *Scalar) Print() *Node {
	return NewNode(s.ctx, "print", []any{s.Node}, nil, schema.KindNone)
}

// Compute materializes the scalar. The returned value carries the engine's
// element type (float64, int64, ...).
func (s *Scalar) Compute(ctx context.Context, opts ...ComputeOption) (any, error) {
	return s.Node.Compute(ctx, opts...)
}

// ComputeInt materializes the scalar and widens it to int64, whatever the
// engine's integral element type.
func (s *Scalar) ComputeInt(ctx context.Context, opts ...ComputeOption) (int64, error) {
	v, err := s.Node.Compute(ctx, opts...)
	if err != nil {
		return 0, err
	}
	switch x := v.(type) {
	case int64:
		return x, nil
	case int32:
		return int64(x), nil
	case int8:
		return int64(x), nil
	case uint64:
		return int64(x), nil
	case uint32:
		return int64(x), nil
	case uint8:
		return int64(x), nil
	case float64:
		return int64(x), nil
	case float32:
		return int64(x), nil
	}
	return 0, schema.NewErrorf(schema.ErrCodeMarshal, "scalar result has non-numeric type %T", v)
}
