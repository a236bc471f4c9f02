package main

// CoordinateLookup resolves node coordinates; *Graph satisfies it
type CoordinateLookup interface {
	Point(id NodeID) (Point, error)
}

// Heuristic estimates the remaining cost from node to goal.
// It must never overestimate the true remaining cost for A* to stay optimal.
type Heuristic func(node, goal NodeID, nodes CoordinateLookup) float64

// EuclideanHeuristic is the straight-line distance to the goal.
// Admissible whenever edge costs are Euclidean lengths.
func EuclideanHeuristic(node, goal NodeID, nodes CoordinateLookup) float64 {
	p, err := nodes.Point(node)
	if err != nil {
		return 0
	}
	q, err := nodes.Point(goal)
	if err != nil {
		return 0
	}
	return p.Distance(q)
}

// ZeroHeuristic turns A* into Dijkstra
func ZeroHeuristic(NodeID, NodeID, CoordinateLookup) float64 {
	return 0
}
