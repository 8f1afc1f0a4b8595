package opgraph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rendis/opgraph/pkg/bridge"
	"github.com/rendis/opgraph/pkg/data"
)

// fakeEngine records executed scripts and serves prepared result handles.
type fakeEngine struct {
	scripts   []string
	handle    *bridge.ResultHandle
	resultErr error
	execErr   error

	resultCalls int
	released    int

	// onExecute runs for each executed script, e.g. to produce
	// file-channel payloads.
	onExecute func(script string)
}

func (e *fakeEngine) Execute(_ context.Context, script string) error {
	e.scripts = append(e.scripts, script)
	if e.onExecute != nil {
		e.onExecute(script)
	}
	return e.execErr
}

func (e *fakeEngine) Result() (*bridge.ResultHandle, error) {
	e.resultCalls++
	if e.resultErr != nil {
		return nil, e.resultErr
	}
	return e.handle, nil
}

func (e *fakeEngine) Release(*bridge.ResultHandle) error {
	e.released++
	return nil
}

func newTestContext(t *testing.T, engine bridge.Engine) *Context {
	t.Helper()
	ctx, err := NewContext(engine, Config{TmpDir: t.TempDir(), LogLevel: "error"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = ctx.Close() })
	return ctx
}

func sampleTable(t *testing.T, labels ...string) *data.Table {
	t.Helper()
	if len(labels) == 0 {
		labels = []string{"a", "b", "c"}
	}
	tb := data.NewTable(2)
	for i, label := range labels {
		require.NoError(t, tb.AddColumn(label, []float64{float64(i), float64(i + 1)}))
	}
	return tb
}
