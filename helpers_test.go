package main

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// squareGraph is the unit square A(0,0) B(1,0) C(1,1) D(0,1) with
// directed edges A→B, B→C, A→D, D→C.
func squareGraph() *Graph {
	return NewGraph(
		map[NodeID]Point{
			"A": {X: 0, Y: 0},
			"B": {X: 1, Y: 0},
			"C": {X: 1, Y: 1},
			"D": {X: 0, Y: 1},
		},
		[]Edge{
			{Source: "A", Target: "B"},
			{Source: "B", Target: "C"},
			{Source: "A", Target: "D"},
			{Source: "D", Target: "C"},
		},
	)
}

func nodeName(i int) NodeID {
	return NodeID("n" + string(rune('A'+i/26)) + string(rune('a'+i%26)))
}

// randomGraph builds a seeded random directed graph. With ring set, a
// bidirectional ring over all nodes guarantees strong connectivity.
func randomGraph(seed int64, n, extraEdges int, ring bool) *Graph {
	rng := rand.New(rand.NewSource(seed))

	nodes := make(map[NodeID]Point, n)
	for i := 0; i < n; i++ {
		nodes[nodeName(i)] = Point{X: rng.Float64() * 100, Y: rng.Float64() * 100}
	}

	var edges []Edge
	if ring {
		for i := 0; i < n; i++ {
			a, b := nodeName(i), nodeName((i+1)%n)
			edges = append(edges, Edge{Source: a, Target: b}, Edge{Source: b, Target: a})
		}
	}
	for i := 0; i < extraEdges; i++ {
		a, b := rng.Intn(n), rng.Intn(n)
		if a == b {
			continue
		}
		edges = append(edges, Edge{Source: nodeName(a), Target: nodeName(b)})
	}

	return NewGraph(nodes, edges)
}

// dijkstraOracle is a plain O(V²) Dijkstra used to check search optimality
func dijkstraOracle(g *Graph, origin NodeID) map[NodeID]float64 {
	dist := make(map[NodeID]float64, g.NodeCount())
	done := make(map[NodeID]bool, g.NodeCount())
	for _, id := range g.NodeIDs() {
		dist[id] = math.Inf(1)
	}
	dist[origin] = 0

	for {
		var u NodeID
		best := math.Inf(1)
		for _, id := range g.NodeIDs() {
			if !done[id] && dist[id] < best {
				best, u = dist[id], id
			}
		}
		if math.IsInf(best, 1) {
			return dist
		}
		done[u] = true

		for _, e := range g.Outgoing(u) {
			c, _ := g.EdgeCost(e)
			if dist[u]+c < dist[e.Target] {
				dist[e.Target] = dist[u] + c
			}
		}
	}
}

// requireValidPath checks endpoints, edge existence and the reported cost
func requireValidPath(t *testing.T, g *Graph, p Path, from, to NodeID) {
	t.Helper()

	require.NotEmpty(t, p.Nodes)
	require.Equal(t, from, p.Nodes[0])
	require.Equal(t, to, p.Nodes[len(p.Nodes)-1])

	cost := 0.0
	for i := 1; i < len(p.Nodes); i++ {
		a, b := p.Nodes[i-1], p.Nodes[i]
		require.Truef(t, g.HasEdge(a, b), "missing edge %s→%s", a, b)
		pa, _ := g.Point(a)
		pb, _ := g.Point(b)
		cost += pa.Distance(pb)
	}
	require.InDelta(t, cost, p.Cost, 1e-9)
}
