package main

import "fmt"

// Leg is one committed greedy step of a tour
type Leg struct {
	From NodeID `json:"from"`
	To   NodeID `json:"to"`
	Path Path   `json:"path"`
}

// Tour is the stitched route over start, mandatory waypoints and goal
type Tour struct {
	Path      []NodeID `json:"path"`
	TotalCost float64  `json:"totalCost"`
	Order     []NodeID `json:"order"` // stops in visit order, start first
	Legs      []Leg    `json:"legs"`
}

func newTour(start NodeID) *Tour {
	return &Tour{
		Path:  []NodeID{start},
		Order: []NodeID{start},
	}
}

// appendLeg adds a leg, dropping its first node which repeats the tour's last node
func (t *Tour) appendLeg(from, to NodeID, p Path) error {
	if len(p.Nodes) == 0 {
		return fmt.Errorf("%w: %s -> %s", ErrEmptyLeg, from, to)
	}
	if last := t.Path[len(t.Path)-1]; p.Nodes[0] != last {
		return fmt.Errorf("%w: leg starts at %q, tour ends at %q", ErrDisjointLeg, p.Nodes[0], last)
	}

	t.Path = append(t.Path, p.Nodes[1:]...)
	t.TotalCost += p.Cost
	t.Order = append(t.Order, to)
	t.Legs = append(t.Legs, Leg{From: from, To: to, Path: p})
	return nil
}

// Points resolves the tour's node coordinates
func (t Tour) Points(nodes CoordinateLookup) ([]Point, error) {
	return Path{Nodes: t.Path}.Points(nodes)
}
