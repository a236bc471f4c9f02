package main

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// GraphMLKeys names the <data key="..."> attributes that hold node
// coordinates and the edge flag.
type GraphMLKeys struct {
	X    string `json:"x"`
	Y    string `json:"y"`
	Flag string `json:"flag"`
}

// DefaultGraphMLKeys matches graphs exported by networkx
func DefaultGraphMLKeys() GraphMLKeys {
	return GraphMLKeys{X: "d0", Y: "d1", Flag: "d2"}
}

func (k GraphMLKeys) withDefaults() GraphMLKeys {
	def := DefaultGraphMLKeys()
	if k.X == "" {
		k.X = def.X
	}
	if k.Y == "" {
		k.Y = def.Y
	}
	if k.Flag == "" {
		k.Flag = def.Flag
	}
	return k
}

// GraphML structures for parsing track graph files.
// Element names are matched on their local part, so the
// http://graphml.graphdrawing.org/xmlns namespace is accepted as well as none.
type graphMLDocument struct {
	XMLName xml.Name       `xml:"graphml"`
	Graphs  []graphMLGraph `xml:"graph"`
}

type graphMLGraph struct {
	Nodes []graphMLNode `xml:"node"`
	Edges []graphMLEdge `xml:"edge"`
}

type graphMLNode struct {
	ID   string        `xml:"id,attr"`
	Data []graphMLData `xml:"data"`
}

type graphMLEdge struct {
	Source string        `xml:"source,attr"`
	Target string        `xml:"target,attr"`
	Data   []graphMLData `xml:"data"`
}

type graphMLData struct {
	Key   string `xml:"key,attr"`
	Value string `xml:",chardata"`
}

// LoadGraph reads a graph snapshot (.json) or a GraphML file (anything else)
func LoadGraph(path string, keys GraphMLKeys) (*Graph, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return LoadGraphJSON(path)
	}
	return LoadGraphML(path, keys)
}

// LoadGraphML parses a GraphML file into a Graph
func LoadGraphML(path string, keys GraphMLKeys) (*Graph, error) {
	log.Printf("📂 Loading GraphML graph from %s...\n", path)

	f, err := os.Open(path)
	if err != nil {
		return nil, &GraphIngestionError{Path: path, Err: err}
	}
	defer f.Close()

	graph, err := ParseGraphML(f, keys)
	if err != nil {
		var ge *GraphIngestionError
		if errors.As(err, &ge) {
			ge.Path = path
			return nil, ge
		}
		return nil, &GraphIngestionError{Path: path, Err: err}
	}

	log.Printf("   ✅ Graph loaded: %d nodes, %d edges\n", graph.NodeCount(), graph.EdgeCount())
	return graph, nil
}

// ParseGraphML decodes GraphML from r. Nodes missing a coordinate get 0 for it.
func ParseGraphML(r io.Reader, keys GraphMLKeys) (*Graph, error) {
	keys = keys.withDefaults()

	var doc graphMLDocument
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, &GraphIngestionError{Err: fmt.Errorf("failed to decode graphml: %w", err)}
	}
	if len(doc.Graphs) == 0 {
		return nil, &GraphIngestionError{Err: errors.New("graphml document has no <graph> element")}
	}

	nodes := make(map[NodeID]Point)
	var edges []Edge

	for _, gr := range doc.Graphs {
		for _, n := range gr.Nodes {
			if n.ID == "" {
				return nil, &GraphIngestionError{Err: errors.New("node without id")}
			}

			var p Point
			for _, d := range n.Data {
				switch d.Key {
				case keys.X, keys.Y:
					v, err := strconv.ParseFloat(strings.TrimSpace(d.Value), 64)
					if err != nil {
						return nil, &GraphIngestionError{Err: fmt.Errorf("node %s key %s: %w", n.ID, d.Key, err)}
					}
					if d.Key == keys.X {
						p.X = v
					} else {
						p.Y = v
					}
				}
			}
			nodes[NodeID(n.ID)] = p
		}

		for _, e := range gr.Edges {
			edge := Edge{Source: NodeID(e.Source), Target: NodeID(e.Target)}
			for _, d := range e.Data {
				if d.Key == keys.Flag {
					edge.Flag = strings.TrimSpace(d.Value)
				}
			}
			edges = append(edges, edge)
		}
	}

	return NewGraph(nodes, edges), nil
}

// VertexEntry is one row of VertexList
type VertexEntry struct {
	ID NodeID
	X  float64
	Y  float64
}

// VertexList returns every node with its coordinates, sorted by id
func VertexList(g *Graph) []VertexEntry {
	list := make([]VertexEntry, 0, g.NodeCount())
	for id, p := range g.nodes {
		list = append(list, VertexEntry{ID: id, X: p.X, Y: p.Y})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}
