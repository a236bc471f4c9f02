package main

import (
	"fmt"
	"sort"

	"github.com/paulmach/orb"
)

// NodeID identifies a node; GraphML ids are strings
type NodeID string

// Edge is a directed connection between two nodes.
// Flag carries the auxiliary field of the source format and is never used as a cost.
type Edge struct {
	Source NodeID `json:"source"`
	Target NodeID `json:"target"`
	Flag   string `json:"flag,omitempty"`
}

// Graph is an immutable directed graph with 2-D node coordinates.
// Traversal cost of an edge is the Euclidean distance between its endpoints.
type Graph struct {
	nodes    map[NodeID]Point
	edges    []Edge
	outgoing map[NodeID][]int // indices into edges, in edge order
}

// NewGraph builds a graph from a coordinate mapping and an ordered edge list.
// Inputs are copied. Edge endpoints are not checked here; see Validate.
func NewGraph(nodes map[NodeID]Point, edges []Edge) *Graph {
	g := &Graph{
		nodes:    make(map[NodeID]Point, len(nodes)),
		edges:    make([]Edge, len(edges)),
		outgoing: make(map[NodeID][]int),
	}

	for id, p := range nodes {
		g.nodes[id] = p
	}
	copy(g.edges, edges)

	for i, e := range g.edges {
		g.outgoing[e.Source] = append(g.outgoing[e.Source], i)
	}

	return g
}

// Point returns the coordinate of a node
func (g *Graph) Point(id NodeID) (Point, error) {
	p, ok := g.nodes[id]
	if !ok {
		return Point{}, &UnknownNodeError{ID: id}
	}
	return p, nil
}

// HasNode reports whether id is part of the graph
func (g *Graph) HasNode(id NodeID) bool {
	_, ok := g.nodes[id]
	return ok
}

// Outgoing returns the edges leaving id in edge-list order
func (g *Graph) Outgoing(id NodeID) []Edge {
	idx := g.outgoing[id]
	out := make([]Edge, len(idx))
	for i, j := range idx {
		out[i] = g.edges[j]
	}
	return out
}

// HasEdge reports whether a directed edge from a to b exists
func (g *Graph) HasEdge(a, b NodeID) bool {
	for _, j := range g.outgoing[a] {
		if g.edges[j].Target == b {
			return true
		}
	}
	return false
}

// EdgeCost returns the Euclidean length of an edge
func (g *Graph) EdgeCost(e Edge) (float64, error) {
	from, err := g.Point(e.Source)
	if err != nil {
		return 0, err
	}
	to, err := g.Point(e.Target)
	if err != nil {
		return 0, err
	}
	return from.Distance(to), nil
}

// NodeIDs returns all node ids sorted
func (g *Graph) NodeIDs() []NodeID {
	ids := make([]NodeID, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Edges returns a copy of the ordered edge list
func (g *Graph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

func (g *Graph) NodeCount() int { return len(g.nodes) }

func (g *Graph) EdgeCount() int { return len(g.edges) }

// Bounds returns the bounding box of all node coordinates
func (g *Graph) Bounds() orb.Bound {
	var bound orb.Bound
	first := true
	for _, p := range g.nodes {
		if first {
			bound = p.Orb().Bound()
			first = false
			continue
		}
		bound = bound.Extend(p.Orb())
	}
	return bound
}

// Validate reports the first edge whose endpoint is missing from the node map
func (g *Graph) Validate() error {
	for i, e := range g.edges {
		if !g.HasNode(e.Source) {
			return fmt.Errorf("edge %d: source: %w", i, &UnknownNodeError{ID: e.Source})
		}
		if !g.HasNode(e.Target) {
			return fmt.Errorf("edge %d: target: %w", i, &UnknownNodeError{ID: e.Target})
		}
	}
	return nil
}

// EdgeLines returns the graph edges as line segments for visualization.
// Mirror edges (a→b and b→a) are reported once.
func (g *Graph) EdgeLines() [][]Point {
	lines := make([][]Point, 0, len(g.edges))
	seen := make(map[[2]NodeID]bool, len(g.edges))

	for _, e := range g.edges {
		key := [2]NodeID{e.Source, e.Target}
		if e.Target < e.Source {
			key = [2]NodeID{e.Target, e.Source}
		}
		if seen[key] {
			continue
		}

		from, okFrom := g.nodes[e.Source]
		to, okTo := g.nodes[e.Target]
		if !okFrom || !okTo {
			continue
		}

		seen[key] = true
		lines = append(lines, []Point{from, to})
	}

	return lines
}

// AdjacencyMatrix returns a 0/1 matrix over the sorted node ids together with
// the node → row mapping. Edges with a missing endpoint are ignored.
func (g *Graph) AdjacencyMatrix() ([][]int, map[NodeID]int) {
	ids := g.NodeIDs()
	index := make(map[NodeID]int, len(ids))
	for i, id := range ids {
		index[id] = i
	}

	matrix := make([][]int, len(ids))
	for i := range matrix {
		matrix[i] = make([]int, len(ids))
	}

	for _, e := range g.edges {
		s, okS := index[e.Source]
		t, okT := index[e.Target]
		if okS && okT {
			matrix[s][t] = 1
		}
	}

	return matrix, index
}
