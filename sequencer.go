package main

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"
)

type sequenceOptions struct {
	goalLast    bool
	parallelism int
}

// SequenceOption configures Sequence
type SequenceOption func(*sequenceOptions)

// WithGoalLast keeps the goal out of the candidate set until every
// mandatory stop has been visited.
func WithGoalLast() SequenceOption {
	return func(o *sequenceOptions) {
		o.goalLast = true
	}
}

// WithParallelism runs up to n candidate searches of one greedy step at once.
// The resulting tour is the same as with n <= 1.
func WithParallelism(n int) SequenceOption {
	return func(o *sequenceOptions) {
		o.parallelism = n
	}
}

// stopsToVisit returns start, mandatory, goal with duplicates removed (first occurrence wins)
func stopsToVisit(start, goal NodeID, mandatory []NodeID) []NodeID {
	stops := make([]NodeID, 0, len(mandatory)+2)
	seen := make(map[NodeID]bool, len(mandatory)+2)
	for _, id := range append(append([]NodeID{start}, mandatory...), goal) {
		if seen[id] {
			continue
		}
		seen[id] = true
		stops = append(stops, id)
	}
	return stops
}

// Sequence orders the stops greedily: from the current stop it always moves to
// the unvisited stop with the cheapest A* leg. This is not an exact tour solver.
func Sequence(graph *Graph, start, goal NodeID, mandatory []NodeID, h Heuristic, opts ...SequenceOption) (Tour, error) {
	return SequenceContext(context.Background(), graph, start, goal, mandatory, h, opts...)
}

// SequenceContext is Sequence with a context passed to every leg search.
func SequenceContext(ctx context.Context, graph *Graph, start, goal NodeID, mandatory []NodeID, h Heuristic, opts ...SequenceOption) (Tour, error) {
	var cfg sequenceOptions
	for _, opt := range opts {
		opt(&cfg)
	}

	stops := stopsToVisit(start, goal, mandatory)
	for _, id := range stops {
		if graph == nil || !graph.HasNode(id) {
			return Tour{}, &UnknownNodeError{ID: id}
		}
	}

	tour := newTour(start)
	visited := map[NodeID]bool{start: true}
	current := start

	for len(visited) < len(stops) {
		candidates := make([]NodeID, 0, len(stops)-len(visited))
		for _, s := range stops {
			if visited[s] {
				continue
			}
			if cfg.goalLast && s == goal && len(visited) < len(stops)-1 {
				continue
			}
			candidates = append(candidates, s)
		}

		legs, err := searchCandidates(ctx, graph, current, candidates, h, cfg.parallelism)
		if err != nil {
			return Tour{}, err
		}

		best := -1
		minCost := math.Inf(1)
		for i, leg := range legs {
			if leg.Cost < minCost {
				minCost = leg.Cost
				best = i
			}
		}
		// Every candidate leg succeeded, so only an infinite cost can leave best unset.
		if best < 0 {
			return Tour{}, &NoPathError{From: current, To: candidates[0]}
		}

		next := candidates[best]
		if err := tour.appendLeg(current, next, legs[best]); err != nil {
			return Tour{}, err
		}
		visited[next] = true
		current = next
	}

	return *tour, nil
}

// searchCandidates runs one leg search per candidate. legs[i] belongs to candidates[i].
func searchCandidates(ctx context.Context, graph *Graph, from NodeID, candidates []NodeID, h Heuristic, parallelism int) ([]Path, error) {
	legs := make([]Path, len(candidates))

	if parallelism <= 1 || len(candidates) == 1 {
		for i, to := range candidates {
			p, err := SearchContext(ctx, graph, from, to, h)
			if err != nil {
				return nil, err
			}
			legs[i] = p
		}
		return legs, nil
	}

	// Searches do not cancel each other, so every candidate reports its own
	// outcome and the failure surfaced is the first in stop order, as in the
	// sequential loop.
	errs := make([]error, len(candidates))
	var eg errgroup.Group
	eg.SetLimit(parallelism)
	for i, to := range candidates {
		i, to := i, to
		eg.Go(func() error {
			legs[i], errs[i] = SearchContext(ctx, graph, from, to, h)
			return nil
		})
	}
	eg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return legs, nil
}
