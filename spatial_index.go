package main

import (
	"errors"

	"github.com/dhconnelly/rtreego"
)

// ErrEmptyIndex is returned by Nearest when the graph has no nodes
var ErrEmptyIndex = errors.New("spatial index is empty")

// nodeEntry wraps a graph node for R-tree storage
type nodeEntry struct {
	ID    NodeID
	Point Point
	BBox  rtreego.Rect
}

// Bounds implements rtreego.Spatial interface
func (n *nodeEntry) Bounds() rtreego.Rect {
	return n.BBox
}

// NodeIndex answers nearest-node queries over a graph's coordinates
type NodeIndex struct {
	tree *rtreego.Rtree
}

// pointTolerance is the side length of the degenerate box stored per node
const pointTolerance = 1e-9

// NewNodeIndex creates a new spatial index of every node in the graph
func NewNodeIndex(graph *Graph) *NodeIndex {
	tree := rtreego.NewTree(2, 25, 50) // 2D, min 25, max 50 entries per node

	// Insert in sorted order so equidistant queries resolve the same way every run.
	for _, v := range VertexList(graph) {
		p := Point{X: v.X, Y: v.Y}
		tree.Insert(&nodeEntry{
			ID:    v.ID,
			Point: p,
			BBox:  rtreego.Point{p.X, p.Y}.ToRect(pointTolerance),
		})
	}

	return &NodeIndex{tree: tree}
}

// Size returns the number of indexed nodes
func (ni *NodeIndex) Size() int {
	return ni.tree.Size()
}

// Nearest finds the closest node to a given point
func (ni *NodeIndex) Nearest(p Point) (NodeID, float64, error) {
	if ni.tree.Size() == 0 {
		return "", 0, ErrEmptyIndex
	}

	item := ni.tree.NearestNeighbor(rtreego.Point{p.X, p.Y})
	entry, ok := item.(*nodeEntry)
	if !ok {
		return "", 0, ErrEmptyIndex
	}

	return entry.ID, p.Distance(entry.Point), nil
}
