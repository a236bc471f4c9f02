package main

import (
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// TourGeoJSON returns the route as a LineString feature plus one Point feature per stop
func TourGeoJSON(graph *Graph, tour Tour) (*geojson.FeatureCollection, error) {
	points, err := tour.Points(graph)
	if err != nil {
		return nil, err
	}

	fc := geojson.NewFeatureCollection()

	line := make(orb.LineString, 0, len(points))
	for _, p := range points {
		line = append(line, p.Orb())
	}
	route := geojson.NewFeature(line)
	route.Properties["kind"] = "route"
	route.Properties["total_cost"] = tour.TotalCost
	route.Properties["legs"] = len(tour.Legs)
	fc.Append(route)

	for i, id := range tour.Order {
		p, err := graph.Point(id)
		if err != nil {
			return nil, err
		}
		stop := geojson.NewFeature(p.Orb())
		stop.Properties["kind"] = "stop"
		stop.Properties["node"] = string(id)
		stop.Properties["order"] = i
		fc.Append(stop)
	}

	return fc, nil
}

// GraphGeoJSON returns every edge segment as a LineString feature
func GraphGeoJSON(graph *Graph) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, seg := range graph.EdgeLines() {
		f := geojson.NewFeature(orb.LineString{seg[0].Orb(), seg[1].Orb()})
		f.Properties["kind"] = "edge"
		fc.Append(f)
	}
	return fc
}

// WriteGeoJSON marshals a feature collection to filename
func WriteGeoJSON(fc *geojson.FeatureCollection, filename string) error {
	data, err := fc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal geojson: %w", err)
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}
