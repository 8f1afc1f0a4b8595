package opgraph

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/rendis/opgraph/internal/staging"
	"github.com/rendis/opgraph/pkg/bridge"
	"github.com/rendis/opgraph/pkg/data"
	"github.com/rendis/opgraph/pkg/schema"
)

// functionDef is one registered DSL function definition, prepended to every
// generated script.
type functionDef struct {
	name   string
	source string
}

// Context is a client session against one engine. It owns the staging
// directory and the engine bridge. Graph construction, script building, and
// engine invocation all run synchronously on the caller's goroutine; a
// Context must not be shared across goroutines.
type Context struct {
	engine    bridge.Engine
	logger    *slog.Logger
	staging   *staging.Dir
	functions []functionDef
}

// NewContext creates a session over the given engine bridge. When
// cfg.TmpDir is empty a fresh session-private directory is created under
// the system temp dir.
func NewContext(engine bridge.Engine, cfg Config) (*Context, error) {
	if engine == nil {
		return nil, schema.NewError(schema.ErrCodeValidation, "engine bridge is nil")
	}

	tmpDir := cfg.TmpDir
	if tmpDir == "" {
		tmpDir = filepath.Join(os.TempDir(), "opgraph-"+uuid.NewString())
	}
	dir, err := staging.New(tmpDir)
	if err != nil {
		return nil, err
	}

	return &Context{
		engine:  engine,
		logger:  cfg.logger(),
		staging: dir,
	}, nil
}

// Close removes the session's staging directory. Engine-side memory of
// individual nodes is released through their Delete calls, not here.
func (c *Context) Close() error {
	return os.RemoveAll(c.staging.Path())
}

// TmpDir returns the session's staging directory path.
func (c *Context) TmpDir() string { return c.staging.Path() }

// RegisterFunction registers a DSL function definition to be prepended to
// every generated script. Re-registering a name replaces its definition.
func (c *Context) RegisterFunction(name, source string) {
	for i, f := range c.functions {
		if f.name == name {
			c.functions[i].source = source
			return
		}
	}
	c.functions = append(c.functions, functionDef{name: name, source: source})
}

// prologue renders the registered function definitions, in registration
// order.
func (c *Context) prologue() string {
	if len(c.functions) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, f := range c.functions {
		sb.WriteString(f.source)
		if !strings.HasSuffix(f.source, "\n") {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// FromTable wraps locally supplied table data in a deferred read. The data
// is staged to the temp dir only when a terminal computation emits the read
// statement.
func (c *Context) FromTable(t *data.Table) *Frame {
	n := NewNode(c, "readFrame", nil, nil, schema.KindFrame)
	n.localTable = t
	return &Frame{Node: n, ncols: t.NumCols()}
}

// FromMatrix wraps locally supplied dense matrix data in a deferred read.
func (c *Context) FromMatrix(m *data.Matrix) *Matrix {
	n := NewNode(c, "readMatrix", nil, nil, schema.KindMatrix)
	n.localMatrix = m
	return &Matrix{Node: n}
}

// ReadFrame defers a frame read from an engine-accessible file path.
func (c *Context) ReadFrame(path string) *Frame {
	n := NewNode(c, "readFrame", []any{strconv.Quote(path)}, nil, schema.KindFrame)
	return &Frame{Node: n, ncols: -1}
}

// ReadMatrix defers a matrix read from an engine-accessible file path.
func (c *Context) ReadMatrix(path string) *Matrix {
	return &Matrix{Node: NewNode(c, "readMatrix", []any{strconv.Quote(path)}, nil, schema.KindMatrix)}
}

// Fill defers a rows x cols matrix filled with a constant.
func (c *Context) Fill(value float64, rows, cols int) *Matrix {
	return &Matrix{Node: NewNode(c, "fill", []any{value, rows, cols}, nil, schema.KindMatrix)}
}

// Seq defers a column matrix of the arithmetic sequence from..to by inc.
func (c *Context) Seq(from, to, inc float64) *Matrix {
	return &Matrix{Node: NewNode(c, "seq", []any{from, to, inc}, nil, schema.KindMatrix)}
}

// Rand defers a rows x cols random matrix with elements in [min, max].
func (c *Context) Rand(rows, cols int, min, max float64, sparsity float64, seed int) *Matrix {
	return &Matrix{Node: NewNode(c, "rand",
		[]any{rows, cols, min, max, sparsity, seed}, nil, schema.KindMatrix)}
}

// Sql defers an SQL query over previously registered views. The query's
// view references must be registered through Frame.RegisterView and passed
// to ComputeSQL alongside the terminal call.
func (c *Context) Sql(query string) *Frame {
	n := NewNode(c, "sql", []any{strconv.Quote(query)}, nil, schema.KindFrame)
	return &Frame{Node: n, ncols: -1}
}

// String satisfies fmt.Stringer for debug logging.
func (c *Context) String() string {
	return fmt.Sprintf("opgraph.Context(tmp=%s)", c.staging.Path())
}
