package main

import (
	"container/heap"
	"context"
	"fmt"
	"math"
)

// frontierItem is one frontier entry. A node may have several entries;
// only the one whose F matches the node's current best f is live.
type frontierItem struct {
	NodeID NodeID
	F      float64
	Seq    int // insertion order, breaks ties in F
	Index  int // Index in the heap
}

// PriorityQueue implements heap.Interface for A* algorithm
type PriorityQueue []*frontierItem

var _ heap.Interface = (*PriorityQueue)(nil)

func (pq PriorityQueue) Len() int { return len(pq) }

func (pq PriorityQueue) Less(i, j int) bool {
	if pq[i].F == pq[j].F {
		return pq[i].Seq < pq[j].Seq
	}
	return pq[i].F < pq[j].F
}

func (pq PriorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].Index = i
	pq[j].Index = j
}

func (pq *PriorityQueue) Push(x interface{}) {
	n := len(*pq)
	item := x.(*frontierItem)
	item.Index = n
	*pq = append(*pq, item)
}

func (pq *PriorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.Index = -1
	*pq = old[0 : n-1]
	return item
}

// Path is a route between two nodes, endpoints inclusive
type Path struct {
	Nodes    []NodeID `json:"nodes"`
	Cost     float64  `json:"cost"`
	Expanded int      `json:"expanded"` // frontier pops that were not stale
}

// Points resolves the path's node coordinates
func (p Path) Points(nodes CoordinateLookup) ([]Point, error) {
	points := make([]Point, 0, len(p.Nodes))
	for _, id := range p.Nodes {
		pt, err := nodes.Point(id)
		if err != nil {
			return nil, err
		}
		points = append(points, pt)
	}
	return points, nil
}

// searchState is owned by a single search call
type searchState struct {
	graph    *Graph
	goal     NodeID
	h        Heuristic
	g        map[NodeID]float64
	f        map[NodeID]float64
	cameFrom map[NodeID]NodeID
	open     PriorityQueue
	seq      int
}

func (s *searchState) cost(m map[NodeID]float64, id NodeID) float64 {
	if v, ok := m[id]; ok {
		return v
	}
	return math.Inf(1)
}

func (s *searchState) push(id NodeID, f float64) {
	heap.Push(&s.open, &frontierItem{NodeID: id, F: f, Seq: s.seq})
	s.seq++
}

func (s *searchState) reconstruct(current NodeID) []NodeID {
	path := []NodeID{current}
	for {
		prev, ok := s.cameFrom[current]
		if !ok {
			break
		}
		path = append(path, prev)
		current = prev
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// relax pushes every neighbor of current that gets a strictly better g
func (s *searchState) relax(current NodeID, currentPoint Point) error {
	gCurrent := s.g[current]

	for _, j := range s.graph.outgoing[current] {
		neighborID := s.graph.edges[j].Target

		neighborPoint, err := s.graph.Point(neighborID)
		if err != nil {
			return err
		}

		tentativeG := gCurrent + currentPoint.Distance(neighborPoint)
		if tentativeG >= s.cost(s.g, neighborID) {
			continue
		}

		s.cameFrom[neighborID] = current
		s.g[neighborID] = tentativeG
		s.f[neighborID] = tentativeG + s.h(neighborID, s.goal, s.graph)
		s.push(neighborID, s.f[neighborID])
	}

	return nil
}

// Search computes the shortest directed path from origin to destination with A*.
// A nil heuristic means EuclideanHeuristic.
func Search(graph *Graph, origin, destination NodeID, h Heuristic) (Path, error) {
	return SearchContext(context.Background(), graph, origin, destination, h)
}

// SearchContext is Search with cancellation checked between expansions.
// A cancelled search returns ErrSearchCancelled, never a partial path.
func SearchContext(ctx context.Context, graph *Graph, origin, destination NodeID, h Heuristic) (Path, error) {
	if graph == nil {
		return Path{}, &UnknownNodeError{ID: origin}
	}
	if !graph.HasNode(origin) {
		return Path{}, &UnknownNodeError{ID: origin}
	}
	if !graph.HasNode(destination) {
		return Path{}, &UnknownNodeError{ID: destination}
	}
	if h == nil {
		h = EuclideanHeuristic
	}

	s := &searchState{
		graph:    graph,
		goal:     destination,
		h:        h,
		g:        map[NodeID]float64{origin: 0},
		f:        map[NodeID]float64{origin: h(origin, destination, graph)},
		cameFrom: make(map[NodeID]NodeID),
	}
	heap.Init(&s.open)
	s.push(origin, s.f[origin])

	expanded := 0

	for s.open.Len() > 0 {
		if err := ctx.Err(); err != nil {
			return Path{}, fmt.Errorf("%w: %w", ErrSearchCancelled, err)
		}

		item := heap.Pop(&s.open).(*frontierItem)
		current := item.NodeID

		// Stale entry: the node was re-pushed with a better f since.
		if item.F > s.f[current] {
			continue
		}
		expanded++

		if current == destination {
			return Path{
				Nodes:    s.reconstruct(current),
				Cost:     s.g[current],
				Expanded: expanded,
			}, nil
		}

		currentPoint, err := graph.Point(current)
		if err != nil {
			return Path{}, err
		}
		if err := s.relax(current, currentPoint); err != nil {
			return Path{}, err
		}
	}

	return Path{}, &NoPathError{From: origin, To: destination}
}
