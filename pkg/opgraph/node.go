// Package opgraph is the client-side embedding layer for a DSL-driven
// array/table computation engine. Client code builds a graph of deferred
// operations; nothing reaches the engine until a terminal Compute call
// translates the graph into DSL source, executes it, and reconstructs the
// result over the engine's buffers.
package opgraph

import (
	"github.com/rendis/opgraph/pkg/data"
	"github.com/rendis/opgraph/pkg/schema"
)

// binaryOps is the set of operations emitted with infix syntax. Infix
// statements cannot carry named arguments and take exactly two operands.
var binaryOps = map[string]bool{
	"+": true, "-": true, "*": true, "/": true, "%": true, "^": true,
	"<": true, "<=": true, ">": true, ">=": true, "==": true, "!=": true,
	"@": true,
}

// NamedArg is one named operand. Named operands are kept as an ordered
// slice, not a map: emission order is part of the generated statement and
// must be deterministic.
type NamedArg struct {
	Key   string
	Value any
}

// Node is a deferred operation in the computation graph. Operands are
// either other nodes (shared references allowed, cycles not) or literals
// rendered into the statement at emission time. A node is immutable after
// construction except for its cached result and deleted flag.
type Node struct {
	ctx      *Context
	op       string
	args     []any
	named    []NamedArg
	kind     schema.OutputKind
	brackets bool

	// Locally supplied data, staged to the temp dir when the node's read
	// statement is emitted.
	localTable  *data.Table
	localMatrix *data.Matrix

	// dslName is the variable assigned by the most recent script build;
	// the free protocol addresses engine memory through it.
	dslName  string
	computed bool
	result   any
	deleted  bool
}

// NewNode constructs a deferred operation node. Construction never touches
// the engine. Misuse of the statement grammar is a usage error and panics:
// infix (binary) operations require exactly two positional operands and no
// named operands, and bracket indexing requires at least the indexed
// operand.
func NewNode(ctx *Context, op string, args []any, named []NamedArg, kind schema.OutputKind) *Node {
	if binaryOps[op] {
		if len(named) != 0 {
			panic(schema.NewErrorf(schema.ErrCodeConstruction,
				"binary operation %q cannot take named operands", op))
		}
		if len(args) != 2 {
			panic(schema.NewErrorf(schema.ErrCodeConstruction,
				"binary operation %q needs exactly two operands, got %d", op, len(args)))
		}
	}
	return &Node{
		ctx:   ctx,
		op:    op,
		args:  unwrapAll(args),
		named: unwrapNamed(named),
		kind:  kind,
	}
}

// newBracketNode constructs a bracket-index node: args[0] is the indexed
// operand, the rest are index expressions.
func newBracketNode(ctx *Context, args []any, kind schema.OutputKind) *Node {
	if len(args) == 0 {
		panic(schema.NewError(schema.ErrCodeConstruction, "bracket indexing needs an operand"))
	}
	n := NewNode(ctx, "", args, nil, kind)
	n.brackets = true
	return n
}

// Operation returns the node's DSL operation name.
func (n *Node) Operation() string { return n.op }

// Kind returns the node's output kind.
func (n *Node) Kind() schema.OutputKind { return n.kind }

// Deleted reports whether the node's engine-side memory has been released.
func (n *Node) Deleted() bool { return n.deleted }

// VarName returns the DSL variable assigned by the most recent build, or "".
func (n *Node) VarName() string { return n.dslName }

// IsLocalData reports whether the node reads locally supplied client data.
func (n *Node) IsLocalData() bool { return n.localTable != nil || n.localMatrix != nil }

// unwrap reduces typed variants to their underlying node so that operand
// identity is preserved across wrapper values.
func unwrap(v any) any {
	switch x := v.(type) {
	case *Scalar:
		return x.Node
	case *Matrix:
		return x.Node
	case *Frame:
		return x.Node
	default:
		return v
	}
}

func unwrapAll(args []any) []any {
	out := make([]any, len(args))
	for i, a := range args {
		out[i] = unwrap(a)
	}
	return out
}

func unwrapNamed(named []NamedArg) []NamedArg {
	out := make([]NamedArg, len(named))
	for i, kv := range named {
		out[i] = NamedArg{Key: kv.Key, Value: unwrap(kv.Value)}
	}
	return out
}
