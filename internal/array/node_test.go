package array

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireGradPerGraph(t *testing.T) {
	a, err := FromSlice([]float32{1, 2}, Shape{2}, testDevice())
	require.NoError(t, err)

	g1 := GraphID("graph_1")
	g2 := GraphID("graph_2")

	assert.False(t, a.IsGradRequired(g1))

	a.RequireGrad(g1)
	assert.True(t, a.IsGradRequired(g1))
	assert.False(t, a.IsGradRequired(g2))

	a.RequireGrad(g2)
	assert.ElementsMatch(t, []GraphID{g1, g2}, a.GraphIDs())
}

func TestNewGraphIDUnique(t *testing.T) {
	assert.NotEqual(t, NewGraphID("g"), NewGraphID("g"))
}

func TestSetGradRequiresTracking(t *testing.T) {
	a, err := FromSlice([]float32{1}, Shape{1}, testDevice())
	require.NoError(t, err)

	g := GraphID("graph_1")
	grad, err := FromSlice([]float32{2}, Shape{1}, testDevice())
	require.NoError(t, err)

	assert.Error(t, a.SetGrad(g, grad))

	a.RequireGrad(g)
	require.NoError(t, a.SetGrad(g, grad))
	assert.Same(t, grad, a.Grad(g))

	a.ClearGrad(g)
	assert.Nil(t, a.Grad(g))
}

func TestAsConstantStopsSelectedGraphs(t *testing.T) {
	a, err := FromSlice([]float32{1, 2}, Shape{2}, testDevice())
	require.NoError(t, err)

	g1 := GraphID("graph_1")
	g2 := GraphID("graph_2")
	a.RequireGrad(g1)
	a.RequireGrad(g2)

	c := a.AsConstant(g1)
	assert.False(t, c.IsGradRequired(g1))
	assert.True(t, c.IsGradRequired(g2))
	assert.True(t, c.SharesBufferWith(a))

	// The origin keeps its tracking.
	assert.True(t, a.IsGradRequired(g1))

	all := a.AsConstant()
	assert.Empty(t, all.GraphIDs())
}

func TestSetUpOpNodesRecordsPerTracedGraph(t *testing.T) {
	dev := testDevice()
	x, err := FromSlice([]float32{1}, Shape{1}, dev)
	require.NoError(t, err)
	y, err := FromSlice([]float32{2}, Shape{1}, dev)
	require.NoError(t, err)
	out, err := FromSlice([]float32{3}, Shape{1}, dev)
	require.NoError(t, err)

	g1 := GraphID("graph_1")
	g2 := GraphID("graph_2")
	x.RequireGrad(g1)
	x.RequireGrad(g2)
	y.RequireGrad(g2)

	identity := func(gout *Array, _ []GraphID) (*Array, error) { return gout, nil }
	require.NoError(t, SetUpOpNodes("test_op", []*Array{x, y}, out,
		[]BackwardFunc{identity, identity}))

	// One op node per traced graph, each linking only the inputs traced on
	// that graph.
	n1 := out.Node(g1)
	require.NotNil(t, n1)
	op1 := n1.Creator()
	require.NotNil(t, op1)
	assert.Equal(t, "test_op", op1.Name())
	assert.Equal(t, g1, op1.Graph())
	assert.Equal(t, 2, op1.NumInputs())
	assert.Same(t, x.Node(g1), op1.Next(0))
	assert.Nil(t, op1.Next(1)) // y is untraced on g1

	n2 := out.Node(g2)
	require.NotNil(t, n2)
	op2 := n2.Creator()
	require.NotNil(t, op2)
	assert.NotSame(t, op1, op2)
	assert.Same(t, y.Node(g2), op2.Next(1))

	assert.Same(t, n1, op1.Out())
}

func TestSetUpOpNodesUntracedInputsRecordNothing(t *testing.T) {
	dev := testDevice()
	x, err := FromSlice([]float32{1}, Shape{1}, dev)
	require.NoError(t, err)
	out, err := FromSlice([]float32{1}, Shape{1}, dev)
	require.NoError(t, err)

	identity := func(gout *Array, _ []GraphID) (*Array, error) { return gout, nil }
	require.NoError(t, SetUpOpNodes("test_op", []*Array{x}, out, []BackwardFunc{identity}))

	assert.Empty(t, out.GraphIDs())
}

func TestSetUpOpNodesBackwardCountMismatch(t *testing.T) {
	dev := testDevice()
	x, err := FromSlice([]float32{1}, Shape{1}, dev)
	require.NoError(t, err)
	out, err := FromSlice([]float32{1}, Shape{1}, dev)
	require.NoError(t, err)

	assert.Error(t, SetUpOpNodes("test_op", []*Array{x}, out, nil))
}

func TestOpNodeSequenceIsMonotonic(t *testing.T) {
	dev := testDevice()
	g := GraphID("graph_1")

	x, err := FromSlice([]float32{1}, Shape{1}, dev)
	require.NoError(t, err)
	x.RequireGrad(g)

	identity := func(gout *Array, _ []GraphID) (*Array, error) { return gout, nil }

	mid, err := FromSlice([]float32{1}, Shape{1}, dev)
	require.NoError(t, err)
	require.NoError(t, SetUpOpNodes("first", []*Array{x}, mid, []BackwardFunc{identity}))

	out, err := FromSlice([]float32{1}, Shape{1}, dev)
	require.NoError(t, err)
	require.NoError(t, SetUpOpNodes("second", []*Array{mid}, out, []BackwardFunc{identity}))

	assert.Greater(t, out.Node(g).Creator().Seq(), mid.Node(g).Creator().Seq())
}
