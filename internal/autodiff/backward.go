// Package autodiff implements the backward pass: traversal of the op-node
// graph recorded during forward evaluation, scoped to a single graph id,
// with sum-accumulation of gradients at fan-in points.
package autodiff

import (
	"container/heap"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/lattice-ml/lattice/internal/array"
	"github.com/lattice-ml/lattice/internal/routines"
)

// opHeap pops the most recently created OpNode first. Every consumer of an
// array node was created after the op that produced it, so by the time an op
// is popped the gradient of its output is fully accumulated.
type opHeap []*array.OpNode

func (h opHeap) Len() int           { return len(h) }
func (h opHeap) Less(i, j int) bool { return h[i].Seq() > h[j].Seq() }
func (h opHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *opHeap) Push(x any) {
	*h = append(*h, x.(*array.OpNode))
}

func (h *opHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// Backward runs backpropagation on one graph id, seeding each output with
// the matching gradient, and stores the accumulated gradients on every
// traced array reachable from the outputs (query them with Array.Grad).
//
// Only op nodes recorded for graphID are traversed; tracing on other graph
// ids is untouched. Outputs with no node on graphID contribute nothing.
func Backward(outputs []*array.Array, grads []*array.Array, graphID array.GraphID) error {
	if len(outputs) != len(grads) {
		return errors.Errorf("backward: %d outputs but %d gradients", len(outputs), len(grads))
	}

	acc := make(map[*array.ArrayNode]*array.Array)
	pending := &opHeap{}
	queued := make(map[*array.OpNode]bool)

	push := func(node *array.ArrayNode) {
		if op := node.Creator(); op != nil && !queued[op] {
			queued[op] = true
			heap.Push(pending, op)
		}
	}

	accumulate := func(node *array.ArrayNode, g *array.Array) error {
		existing, ok := acc[node]
		if !ok {
			acc[node] = g
			return nil
		}
		sum, err := routines.Add(existing, g)
		if err != nil {
			return errors.Wrap(err, "backward: gradient accumulation")
		}
		acc[node] = sum
		return nil
	}

	for i, out := range outputs {
		node := out.Node(graphID)
		if node == nil {
			continue
		}
		if err := accumulate(node, grads[i]); err != nil {
			return err
		}
		push(node)
	}

	// Gradients produced inside backward functions must not be retraced on
	// the graph currently being differentiated.
	stop := []array.GraphID{graphID}

	for pending.Len() > 0 {
		op := heap.Pop(pending).(*array.OpNode)
		gout := acc[op.Out()]
		if gout == nil {
			continue
		}
		klog.V(2).Infof("backward through op %q (seq %d) on graph %q", op.Name(), op.Seq(), graphID)

		for i := 0; i < op.NumInputs(); i++ {
			node := op.Next(i)
			fn := op.BackwardFunc(i)
			if node == nil || fn == nil {
				continue
			}
			g, err := fn(gout, stop)
			if err != nil {
				return errors.Wrapf(err, "backward: op %q input %d", op.Name(), i)
			}
			if err := accumulate(node, g); err != nil {
				return err
			}
			push(node)
		}
	}

	for node, g := range acc {
		node.SetGrad(g)
	}
	return nil
}
