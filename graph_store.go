package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
)

// graphSnapshot is the on-disk JSON form of a Graph
type graphSnapshot struct {
	Nodes []snapshotNode `json:"nodes"`
	Edges []Edge         `json:"edges"`
}

type snapshotNode struct {
	ID NodeID  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// SaveGraphJSON serializes and saves the graph to a JSON file
func SaveGraphJSON(graph *Graph, filename string) error {
	log.Printf("💾 Saving graph to %s...\n", filename)

	snap := graphSnapshot{
		Nodes: make([]snapshotNode, 0, graph.NodeCount()),
		Edges: graph.Edges(),
	}
	for _, v := range VertexList(graph) {
		snap.Nodes = append(snap.Nodes, snapshotNode{ID: v.ID, X: v.X, Y: v.Y})
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal graph: %w", err)
	}

	err = os.WriteFile(filename, data, 0644)
	if err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	log.Printf("   ✅ Graph saved (%d bytes)\n", len(data))
	return nil
}

// LoadGraphJSON deserializes and loads the graph from a JSON file
func LoadGraphJSON(filename string) (*Graph, error) {
	log.Printf("📂 Loading graph from %s...\n", filename)

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, &GraphIngestionError{Path: filename, Err: fmt.Errorf("failed to read file: %w", err)}
	}

	var snap graphSnapshot
	err = json.Unmarshal(data, &snap)
	if err != nil {
		return nil, &GraphIngestionError{Path: filename, Err: fmt.Errorf("failed to unmarshal graph: %w", err)}
	}

	nodes := make(map[NodeID]Point, len(snap.Nodes))
	for _, n := range snap.Nodes {
		if n.ID == "" {
			return nil, &GraphIngestionError{Path: filename, Err: errors.New("node without id")}
		}
		nodes[n.ID] = Point{X: n.X, Y: n.Y}
	}

	graph := NewGraph(nodes, snap.Edges)
	log.Printf("   ✅ Graph loaded: %d nodes, %d edges\n", graph.NodeCount(), graph.EdgeCount())
	return graph, nil
}
