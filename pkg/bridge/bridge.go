// Package bridge defines the boundary to the external computation engine:
// the synchronous execution contract, the transfer channel selector, and the
// fixed-layout handle describing a materialized result's foreign buffers.
package bridge

import (
	"context"
	"unsafe"

	"github.com/rendis/opgraph/pkg/schema"
)

// Channel selects how a materialized result crosses the engine boundary.
type Channel string

const (
	// ChannelSharedMemory transfers results as directly accessible foreign
	// buffers. Zero-copy, low latency.
	ChannelSharedMemory Channel = "shared memory"
	// ChannelFiles transfers results through a file plus sidecar metadata.
	// Copying fallback for setups without in-process engine access.
	ChannelFiles Channel = "files"
)

// Valid reports whether c names a supported channel.
func (c Channel) Valid() bool {
	return c == ChannelSharedMemory || c == ChannelFiles
}

// ResultHandle describes a materialized value's engine-owned buffers. The
// layout is a fixed cross-language contract: scalars and matrices use
// Address/ValueType, frames use the three parallel per-column arrays. The
// buffers stay owned by the engine until the handle is released; views built
// over them never free their backing memory.
type ResultHandle struct {
	// Address points at the flat row-major element buffer for scalar and
	// matrix results. Nil for frames.
	Address unsafe.Pointer
	Rows    int64
	Cols    int64
	// ValueType is the element type code for scalar and matrix results.
	ValueType schema.ValueType

	// Columns points at an array of Cols per-column buffer pointers.
	Columns unsafe.Pointer
	// Labels points at an array of Cols pointers to NUL-terminated label
	// strings.
	Labels unsafe.Pointer
	// ValueTypes points at an array of Cols int64 value type codes.
	ValueTypes unsafe.Pointer
}

// ColumnPointers returns the per-column buffer pointers, or nil when the
// engine returned no column array.
func (h *ResultHandle) ColumnPointers() []unsafe.Pointer {
	if h.Columns == nil || h.Cols <= 0 {
		return nil
	}
	return unsafe.Slice((*unsafe.Pointer)(h.Columns), h.Cols)
}

// LabelPointers returns the per-column label string pointers, or nil.
func (h *ResultHandle) LabelPointers() []unsafe.Pointer {
	if h.Labels == nil || h.Cols <= 0 {
		return nil
	}
	return unsafe.Slice((*unsafe.Pointer)(h.Labels), h.Cols)
}

// ColumnTypes returns the per-column value type codes, or nil.
func (h *ResultHandle) ColumnTypes() []schema.ValueType {
	if h.ValueTypes == nil || h.Cols <= 0 {
		return nil
	}
	raw := unsafe.Slice((*int64)(h.ValueTypes), h.Cols)
	vts := make([]schema.ValueType, h.Cols)
	for i, code := range raw {
		vts[i] = schema.ValueType(code)
	}
	return vts
}

// Engine executes generated DSL scripts and exposes their results. All
// calls are synchronous and block until the engine returns; there is no
// cancellation, timeout, or retry, and no queueing: at most one result
// handle is live at a time, so callers must fully consume or discard each
// handle before executing the next script.
type Engine interface {
	// Execute runs a complete script batch. A non-nil error means the batch
	// did not run to completion and no result is available.
	Execute(ctx context.Context, script string) error

	// Result returns the handle for the value saved by the most recent
	// Execute. Calling Execute again invalidates previously returned
	// handles.
	Result() (*ResultHandle, error)

	// Release frees the engine-side memory backing the handle itself.
	// Needed because no collector reclaims foreign allocations.
	Release(h *ResultHandle) error
}
