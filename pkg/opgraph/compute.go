package opgraph

import (
	"context"

	"github.com/google/uuid"

	"github.com/rendis/opgraph/internal/logging"
	"github.com/rendis/opgraph/internal/marshal"
	"github.com/rendis/opgraph/pkg/bridge"
	"github.com/rendis/opgraph/pkg/schema"
)

// ComputeOption adjusts a terminal computation.
type ComputeOption func(*computeOptions)

type computeOptions struct {
	channel        bridge.Channel
	useIndexColumn bool
}

// WithChannel selects the result transfer channel. Default: shared memory.
func WithChannel(ch bridge.Channel) ComputeOption {
	return func(o *computeOptions) { o.channel = ch }
}

// WithIndexColumn promotes a frame column labeled "index" to the resulting
// table's row index.
func WithIndexColumn() ComputeOption {
	return func(o *computeOptions) { o.useIndexColumn = true }
}

func resolveOptions(opts []ComputeOption) computeOptions {
	o := computeOptions{channel: bridge.ChannelSharedMemory}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Compute materializes the node: builds the script for its operand closure,
// executes it, and reconstructs the native result. The result is cached on
// the node; repeated calls return the cache without touching the engine.
// The returned value is a float64-family scalar, *data.Matrix, *data.Table,
// or nil for statement nodes, depending on the node's output kind.
func (n *Node) Compute(ctx context.Context, opts ...ComputeOption) (any, error) {
	if n.deleted {
		return nil, schema.NewErrorf(schema.ErrCodeDeleted,
			"compute on deleted operation %q", n.op).WithVar(n.dslName)
	}
	if n.computed {
		return n.result, nil
	}

	o := resolveOptions(opts)
	if !o.channel.Valid() {
		return nil, schema.NewErrorf(schema.ErrCodeChannel, "unknown channel %q", string(o.channel))
	}

	script := NewScript(n.ctx)
	out, err := script.BuildCode(n, o.channel)
	if err != nil {
		return nil, err
	}

	ctx = logging.WithComputationID(ctx, uuid.NewString())
	ctx = logging.WithVarName(ctx, n.dslName)
	ctx = logging.WithChannel(ctx, string(o.channel))
	log := logging.LogWith(ctx, n.ctx.logger)

	log.Debug("executing script", "statements", len(script.Lines()))
	if err := script.Execute(ctx); err != nil {
		return nil, err
	}

	result, err := n.marshalResult(o, out)
	if err != nil {
		return nil, err
	}

	n.result = result
	n.computed = true

	if err := n.ctx.staging.Sweep(); err != nil {
		log.Warn("staging sweep failed", "err", err)
	}
	return result, nil
}

// marshalResult dispatches on output kind and channel to rebuild the native
// value for an executed script.
func (n *Node) marshalResult(o computeOptions, outPath string) (any, error) {
	switch n.kind {
	case schema.KindNone:
		return nil, nil

	case schema.KindScalar:
		if o.channel != bridge.ChannelSharedMemory {
			return nil, schema.NewError(schema.ErrCodeChannel,
				"scalar results are only transferred over shared memory")
		}
		h, err := n.ctx.engine.Result()
		if err != nil {
			return nil, err
		}
		return marshal.ScalarValue(h)

	case schema.KindMatrix:
		if o.channel == bridge.ChannelFiles {
			return n.ctx.staging.ReadMatrix(outPath)
		}
		h, err := n.ctx.engine.Result()
		if err != nil {
			return nil, err
		}
		return marshal.MatrixView(h)

	case schema.KindFrame:
		if o.channel == bridge.ChannelFiles {
			return n.ctx.staging.ReadTable(outPath)
		}
		h, err := n.ctx.engine.Result()
		if err != nil {
			return nil, err
		}
		return marshal.TableView(h, o.useIndexColumn, n.ctx.logger)

	default:
		return nil, schema.NewErrorf(schema.ErrCodeMarshal, "unknown output kind %d", n.kind)
	}
}

// Delete releases the engine-side memory behind the node's materialized
// result and terminally retires the node. Idempotent: deleting twice frees
// once and never errors on the repeat. A node that was never materialized
// has no engine memory and is only marked deleted.
func (n *Node) Delete(ctx context.Context) error {
	if n.deleted {
		return nil
	}

	if n.dslName != "" {
		script := NewScript(n.ctx)
		if err := script.BuildFree(n); err != nil {
			return err
		}
		if err := script.Execute(ctx); err != nil {
			return err
		}
		h, err := n.ctx.engine.Result()
		if err != nil {
			return err
		}
		if err := n.ctx.engine.Release(h); err != nil {
			return err
		}
	}

	n.deleted = true
	return nil
}

// computeSQL executes the multi-root SQL protocol: every view-registration
// statement is built and executed write-only, in order, with the variable
// counter carried from one script to the next; only the final query is
// executed in read mode. Ordering matters twice over: later statements
// reference variable names assigned by earlier ones, and the engine
// processes one statement batch at a time.
func (n *Node) computeSQL(ctx context.Context, views []*Node, opts ...ComputeOption) (any, error) {
	if n.deleted {
		return nil, schema.NewErrorf(schema.ErrCodeDeleted,
			"compute on deleted operation %q", n.op).WithVar(n.dslName)
	}
	if n.computed {
		return n.result, nil
	}

	o := resolveOptions(opts)
	if !o.channel.Valid() {
		return nil, schema.NewErrorf(schema.ErrCodeChannel, "unknown channel %q", string(o.channel))
	}

	ctx = logging.WithComputationID(ctx, uuid.NewString())
	ctx = logging.WithChannel(ctx, string(o.channel))
	log := logging.LogWith(ctx, n.ctx.logger)

	counter := 0
	for _, view := range views {
		script := NewScriptAt(n.ctx, counter)
		if _, err := script.BuildCode(view, o.channel); err != nil {
			return nil, err
		}
		log.Debug("registering view", "statements", len(script.Lines()))
		if err := script.Execute(ctx); err != nil {
			return nil, err
		}
		counter = script.Counter()
	}

	script := NewScriptAt(n.ctx, counter)
	out, err := script.BuildCode(n, o.channel)
	if err != nil {
		return nil, err
	}
	log.Debug("executing query", "statements", len(script.Lines()))
	if err := script.Execute(ctx); err != nil {
		return nil, err
	}

	result, err := n.marshalResult(o, out)
	if err != nil {
		return nil, err
	}

	n.result = result
	n.computed = true

	if err := n.ctx.staging.Sweep(); err != nil {
		log.Warn("staging sweep failed", "err", err)
	}
	return result, nil
}
