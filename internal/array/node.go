package array

import (
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// GraphID identifies one independent gradient-tracking context. An array may
// require gradients on several graph ids at once; backward passes are always
// scoped to a single id.
type GraphID string

// NewGraphID returns a fresh graph id with the given prefix, unique within
// the process.
func NewGraphID(prefix string) GraphID {
	return GraphID(prefix + "-" + uuid.NewString()[:8])
}

// BackwardFunc computes the gradient to propagate to one input, given the
// gradient flowing into the op's output and the graph ids along which
// gradient tracking must be stopped while doing so.
type BackwardFunc func(gout *Array, stopGraphIDs []GraphID) (*Array, error)

// OpNode records one forward op invocation for one graph id: the op name,
// the input-side array nodes on that graph, and one backward function per
// input. It stays alive as long as an output array (or anything reachable
// from one) references it.
type OpNode struct {
	name     string
	graph    GraphID
	seq      uint64
	next     []*ArrayNode // input nodes; nil where the input is untraced on this graph
	backward []BackwardFunc
	out      *ArrayNode // the node this op produced
}

// Name returns the recorded op name.
func (n *OpNode) Name() string {
	return n.name
}

// Graph returns the graph id the node was recorded for.
func (n *OpNode) Graph() GraphID {
	return n.graph
}

// Seq returns the node's creation sequence number. Later ops have larger
// sequence numbers, which is what backward traversal orders by.
func (n *OpNode) Seq() uint64 {
	return n.seq
}

// NumInputs returns the number of inputs the recorded op had.
func (n *OpNode) NumInputs() int {
	return len(n.next)
}

// Next returns the array node of input i on this op's graph, or nil when
// that input is untraced.
func (n *OpNode) Next(i int) *ArrayNode {
	return n.next[i]
}

// BackwardFunc returns the backward function for input i, or nil when the
// input can never receive a gradient.
func (n *OpNode) BackwardFunc(i int) BackwardFunc {
	return n.backward[i]
}

// Out returns the array node this op produced.
func (n *OpNode) Out() *ArrayNode {
	return n.out
}

// ArrayNode is the per-(array, graph) gradient-tracking record. Leaf arrays
// get one via RequireGrad; op outputs get one pointing at the creator OpNode.
type ArrayNode struct {
	graph   GraphID
	creator *OpNode // nil for leaves
	grad    *Array
}

// Creator returns the OpNode that produced this node, or nil for a leaf.
func (n *ArrayNode) Creator() *OpNode {
	return n.creator
}

// Grad returns the gradient accumulated on this node, or nil.
func (n *ArrayNode) Grad() *Array {
	return n.grad
}

// SetGrad stores a gradient on this node.
func (n *ArrayNode) SetGrad(grad *Array) {
	n.grad = grad
}

// opSeq orders OpNodes by creation time so backward traversal can process
// every consumer of a node before the node itself.
var opSeq atomic.Uint64

// RequireGrad marks the array as requiring gradients on the given graph id.
// Returns the array for chaining.
func (a *Array) RequireGrad(gid GraphID) *Array {
	if _, ok := a.nodes[gid]; !ok {
		a.nodes[gid] = &ArrayNode{graph: gid}
	}
	return a
}

// IsGradRequired reports whether the array is traced on the given graph id.
func (a *Array) IsGradRequired(gid GraphID) bool {
	_, ok := a.nodes[gid]
	return ok
}

// Node returns the array's node for the given graph id, or nil.
func (a *Array) Node(gid GraphID) *ArrayNode {
	return a.nodes[gid]
}

// GraphIDs returns the graph ids the array is traced on.
func (a *Array) GraphIDs() []GraphID {
	ids := make([]GraphID, 0, len(a.nodes))
	for gid := range a.nodes {
		ids = append(ids, gid)
	}
	return ids
}

// Grad returns the gradient accumulated for the array on the given graph id,
// or nil if none has been computed.
func (a *Array) Grad(gid GraphID) *Array {
	if n, ok := a.nodes[gid]; ok {
		return n.grad
	}
	return nil
}

// SetGrad stores a gradient for the array on the given graph id. The array
// must be traced on that id.
func (a *Array) SetGrad(gid GraphID, grad *Array) error {
	n, ok := a.nodes[gid]
	if !ok {
		return errors.Errorf("array does not require grad on graph %q", gid)
	}
	n.grad = grad
	return nil
}

// ClearGrad drops any accumulated gradient on the given graph id.
func (a *Array) ClearGrad(gid GraphID) {
	if n, ok := a.nodes[gid]; ok {
		n.grad = nil
	}
}

// AsConstant returns a view of the array with gradient tracking stopped on
// the given graph ids, or on all ids when none are given. The view shares
// the buffer and keeps the remaining graph entries.
func (a *Array) AsConstant(gids ...GraphID) *Array {
	v := a.view(a.shape.Clone(), append([]int(nil), a.strides...), a.offset)
	if len(gids) == 0 {
		return v
	}
	stop := make(map[GraphID]bool, len(gids))
	for _, gid := range gids {
		stop[gid] = true
	}
	for gid, n := range a.nodes {
		if !stop[gid] {
			v.nodes[gid] = n
		}
	}
	return v
}

// SetUpOpNodes records one OpNode per graph id actively traced by the
// inputs, and links the output to it. backwardFns holds one backward
// function per input, in input order; a function may be nil when its input
// can never receive a gradient (e.g. integer indices).
func SetUpOpNodes(name string, inputs []*Array, output *Array, backwardFns []BackwardFunc) error {
	if len(backwardFns) != len(inputs) {
		return errors.Errorf("op %q: %d backward functions for %d inputs", name, len(backwardFns), len(inputs))
	}

	traced := make(map[GraphID]bool)
	for _, in := range inputs {
		for gid := range in.nodes {
			traced[gid] = true
		}
	}

	for gid := range traced {
		op := &OpNode{
			name:     name,
			graph:    gid,
			seq:      opSeq.Add(1),
			next:     make([]*ArrayNode, len(inputs)),
			backward: backwardFns,
		}
		for i, in := range inputs {
			op.next[i] = in.nodes[gid] // nil when untraced on gid
		}
		outNode := &ArrayNode{graph: gid, creator: op}
		op.out = outNode
		output.nodes[gid] = outNode
		klog.V(2).Infof("recorded op %q (seq %d) on graph %q", name, op.seq, gid)
	}
	return nil
}
