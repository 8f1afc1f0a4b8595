package opgraph

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rendis/opgraph/pkg/bridge"
	"github.com/rendis/opgraph/pkg/schema"
)

// varPrefix is the prefix of generated DSL variable names.
const varPrefix = "V"

// Script is the mutable state of one DSL build: the emitted statement
// lines, a monotonic counter producing fresh variable names, and an
// identity-keyed memo of already-emitted nodes. Two references to the same
// node collapse to one emission; two structurally equal but distinct nodes
// are emitted separately.
type Script struct {
	ctx     *Context
	lines   []string
	counter int
	visited map[*Node]string
}

// NewScript creates an empty build context with the counter at zero.
func NewScript(ctx *Context) *Script {
	return NewScriptAt(ctx, 0)
}

// NewScriptAt creates a build context with the counter pre-set. Successive
// independently-rooted builds (view registration before a query) share one
// variable namespace by carrying the counter from one script to the next.
func NewScriptAt(ctx *Context, counter int) *Script {
	return &Script{
		ctx:     ctx,
		counter: counter,
		visited: make(map[*Node]string),
	}
}

// Counter returns the next unassigned variable number, for chaining into a
// subsequent script.
func (s *Script) Counter() int { return s.counter }

// Text returns the complete script: registered function definitions
// followed by the emitted statements, one per line.
func (s *Script) Text() string {
	var sb strings.Builder
	sb.WriteString(s.ctx.prologue())
	for _, line := range s.lines {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Lines returns the emitted statements in dependency order.
func (s *Script) Lines() []string { return s.lines }

// BuildCode walks the root's operand closure depth-first post-order,
// emitting exactly one statement per distinct node, then appends the
// terminal transfer statement for the chosen channel. For the files channel
// the returned string is the output path the script writes the result to;
// otherwise it is empty.
func (s *Script) BuildCode(root *Node, ch bridge.Channel) (string, error) {
	if !ch.Valid() {
		return "", schema.NewErrorf(schema.ErrCodeChannel, "unknown channel %q", string(ch))
	}

	name, err := s.buildNode(root)
	if err != nil {
		return "", err
	}

	if root.kind == schema.KindNone {
		return "", nil
	}

	switch ch {
	case bridge.ChannelSharedMemory:
		s.add("saveDaphneLibResult(" + name + ");")
		return "", nil
	default: // files
		out := s.ctx.staging.ResultPath()
		writeOp := "writeMatrix"
		if root.kind == schema.KindFrame {
			writeOp = "writeFrame"
		}
		s.add(fmt.Sprintf("%s(%s,%s);", writeOp, name, strconv.Quote(out)))
		return out, nil
	}
}

// BuildFree emits the single-statement free protocol for a previously
// materialized node.
func (s *Script) BuildFree(n *Node) error {
	if n.dslName == "" {
		return schema.NewError(schema.ErrCodeValidation, "node was never materialized; nothing to free")
	}
	s.add("freeDaphneLibResult(" + n.dslName + ");")
	return nil
}

// Execute hands the script text to the engine and blocks until it returns.
func (s *Script) Execute(ctx context.Context) error {
	return s.ctx.engine.Execute(ctx, s.Text())
}

func (s *Script) add(line string) {
	s.lines = append(s.lines, line)
}

// buildNode emits the node's operands, then the node itself, and returns
// its assigned variable name. Nodes already in the memo are not re-emitted.
func (s *Script) buildNode(n *Node) (string, error) {
	if n.deleted {
		return "", schema.NewErrorf(schema.ErrCodeDeleted,
			"operation %q was deleted and cannot be re-emitted", n.op).WithVar(n.dslName)
	}
	if name, ok := s.visited[n]; ok {
		return name, nil
	}

	inputs := make([]string, 0, len(n.args))
	for _, a := range n.args {
		ref, err := s.operand(a)
		if err != nil {
			return "", err
		}
		inputs = append(inputs, ref)
	}

	named := make([]string, 0, len(n.named))
	for _, kv := range n.named {
		ref, err := s.operand(kv.Value)
		if err != nil {
			return "", err
		}
		named = append(named, kv.Key+"="+ref)
	}

	name := varPrefix + strconv.Itoa(s.counter)
	s.counter++

	// Locally supplied data is staged at emission time; the statement
	// references the staged file by path.
	if n.IsLocalData() {
		path, err := s.stageLocal(n, name)
		if err != nil {
			return "", err
		}
		inputs = append(inputs, strconv.Quote(path))
	}

	s.add(codeLine(n, name, inputs, named))
	s.visited[n] = name
	n.dslName = name
	return name, nil
}

// stageLocal writes the node's local data plus sidecar metadata under the
// assigned variable name.
func (s *Script) stageLocal(n *Node, varName string) (string, error) {
	if n.localTable != nil {
		return s.ctx.staging.StageTable(varName, n.localTable)
	}
	return s.ctx.staging.StageMatrix(varName, n.localMatrix)
}

// operand renders a positional or named operand: nodes by their assigned
// variable name (building them first), literals by their DSL spelling.
// Strings pass through verbatim; callers quote where the DSL expects a
// string literal.
func (s *Script) operand(v any) (string, error) {
	switch x := v.(type) {
	case *Node:
		return s.buildNode(x)
	case string:
		return x, nil
	case bool:
		if x {
			return "true", nil
		}
		return "false", nil
	case int:
		return strconv.Itoa(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64), nil
	default:
		return "", schema.NewErrorf(schema.ErrCodeConstruction, "unsupported operand type %T", v)
	}
}

// codeLine renders the node's single DSL statement.
func codeLine(n *Node, name string, inputs, named []string) string {
	if n.brackets {
		return fmt.Sprintf("%s=%s[%s];", name, inputs[0], strings.Join(inputs[1:], ","))
	}
	if binaryOps[n.op] {
		return fmt.Sprintf("%s=%s %s %s;", name, inputs[0], n.op, inputs[1])
	}
	params := strings.Join(append(inputs, named...), ",")
	if n.kind == schema.KindNone {
		return fmt.Sprintf("%s(%s);", n.op, params)
	}
	return fmt.Sprintf("%s=%s(%s);", name, n.op, params)
}
