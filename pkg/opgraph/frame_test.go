package opgraph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/opgraph/pkg/bridge"
	"github.com/rendis/opgraph/pkg/schema"
)

func buildLines(t *testing.T, ctx *Context, root *Node) []string {
	t.Helper()
	s := NewScript(ctx)
	_, err := s.BuildCode(root, bridge.ChannelSharedMemory)
	require.NoError(t, err)
	return s.Lines()
}

func TestFrame_SetColLabels(t *testing.T) {
	eng := &fakeEngine{}
	ctx := newTestContext(t, eng)

	f := ctx.FromTable(sampleTable(t))
	relabeled, err := f.SetColLabels(context.Background(), []string{"x", "y", "z"})
	require.NoError(t, err)
	assert.Empty(t, eng.scripts, "locally tracked width needs no count query")

	lines := buildLines(t, ctx, relabeled.Node)
	assert.Equal(t, `V1=setColLabels(V0,"x","y","z");`, lines[1])
}

func TestFrame_SetColLabelsMismatch(t *testing.T) {
	eng := &fakeEngine{}
	ctx := newTestContext(t, eng)

	f := ctx.FromTable(sampleTable(t))
	_, err := f.SetColLabels(context.Background(), []string{"x", "y"})
	require.Error(t, err)
	assert.Equal(t, schema.ErrCodeValidation, err.(*schema.OpGraphError).Code)
	assert.Empty(t, eng.scripts, "mismatch fails before anything reaches the engine")
}

func TestFrame_SetColLabelsEngineWidthFallback(t *testing.T) {
	width := []int64{2}
	eng := &fakeEngine{handle: scalarHandle(width, schema.SI64)}
	ctx := newTestContext(t, eng)

	f := ctx.ReadFrame("/data/in.csv")
	_, err := f.SetColLabels(context.Background(), []string{"x", "y"})
	require.NoError(t, err)
	require.Len(t, eng.scripts, 1)
	assert.Contains(t, eng.scripts[0], "ncol(V0);")

	// The queried width is cached on the frame.
	_, err = f.SetColLabels(context.Background(), []string{"p", "q"})
	require.NoError(t, err)
	assert.Len(t, eng.scripts, 1)
}

func TestFrame_SetColLabelsPrefix(t *testing.T) {
	ctx := newTestContext(t, &fakeEngine{})

	f := ctx.FromTable(sampleTable(t, "label1", "label2", "label3")).SetColLabelsPrefix("F1")
	lines := buildLines(t, ctx, f.Node)
	assert.Equal(t, `V1=setColLabelsPrefix(V0,"F1");`, lines[1])
}

func TestFrame_CBindWidthPropagation(t *testing.T) {
	eng := &fakeEngine{}
	ctx := newTestContext(t, eng)

	left := ctx.FromTable(sampleTable(t, "a", "b", "c"))
	right := ctx.FromTable(sampleTable(t, "d", "e", "f", "g", "h"))
	both := left.CBind(right)

	_, err := both.SetColLabels(context.Background(),
		[]string{"c1", "c2", "c3", "c4", "c5", "c6", "c7", "c8"})
	require.NoError(t, err)
	assert.Empty(t, eng.scripts)

	_, err = both.SetColLabels(context.Background(), []string{"c1", "c2"})
	require.Error(t, err)
}

func TestFrame_CBindUnknownWidth(t *testing.T) {
	width := []int64{6}
	eng := &fakeEngine{handle: scalarHandle(width, schema.SI64)}
	ctx := newTestContext(t, eng)

	both := ctx.FromTable(sampleTable(t)).CBind(ctx.ReadFrame("/data/in.csv"))
	_, err := both.SetColLabels(context.Background(),
		[]string{"c1", "c2", "c3", "c4", "c5", "c6"})
	require.NoError(t, err)
	assert.Len(t, eng.scripts, 1, "unknown width falls back to a count query")
}

func TestFrame_Order(t *testing.T) {
	ctx := newTestContext(t, &fakeEngine{})

	f := ctx.ReadFrame("/data/in.csv")
	sorted, err := f.Order([]int{0, 2}, []bool{true, false}, false)
	require.NoError(t, err)

	lines := buildLines(t, ctx, sorted.Node)
	assert.Equal(t, "V1=order(V0,0,2,true,false,false);", lines[1])
}

func TestFrame_OrderLengthMismatch(t *testing.T) {
	ctx := newTestContext(t, &fakeEngine{})

	_, err := ctx.ReadFrame("/data/in.csv").Order([]int{0, 1}, []bool{true}, false)
	require.Error(t, err)
	assert.Equal(t, schema.ErrCodeConstruction, err.(*schema.OpGraphError).Code)
}

func TestFrame_Joins(t *testing.T) {
	ctx := newTestContext(t, &fakeEngine{})

	left := ctx.ReadFrame("/data/l.csv")
	right := ctx.ReadFrame("/data/r.csv")

	lines := buildLines(t, ctx, left.InnerJoin(right, "lk", "rk").Node)
	assert.Equal(t, `V2=innerJoin(V0,V1,"lk","rk");`, lines[2])

	// A fresh script restarts the namespace at V0.
	lines = buildLines(t, ctx, left.GroupJoin(right, "lk", "rk", "amount").Node)
	assert.Equal(t, `V2=groupJoin(V0,V1,"lk","rk","amount");`, lines[2])
}

func TestFrame_ToMatrix(t *testing.T) {
	ctx := newTestContext(t, &fakeEngine{})

	f := ctx.ReadFrame("/data/in.csv")
	lines := buildLines(t, ctx, f.ToMatrix().Node)
	assert.Equal(t, "V1=as.matrix<f64>(V0);", lines[1])

	lines = buildLines(t, ctx, f.ToMatrix(schema.SI32).Node)
	assert.Equal(t, "V1=as.matrix<si32>(V0);", lines[1])
}

func TestFrame_IndexAndRBind(t *testing.T) {
	ctx := newTestContext(t, &fakeEngine{})

	f := ctx.FromTable(sampleTable(t))
	lines := buildLines(t, ctx, f.Index(0, "1:2").Node)
	assert.Equal(t, "V1=V0[0,1:2];", lines[1])

	g := f.RBind(ctx.FromTable(sampleTable(t)))
	_, err := g.SetColLabels(context.Background(), []string{"x", "y", "z"})
	require.NoError(t, err, "rbind keeps the left frame's width")
}
