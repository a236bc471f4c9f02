package main

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/planar"
)

// Point is a 2-D node coordinate
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PointFromOrb converts an orb point back into a Point
func PointFromOrb(p orb.Point) Point {
	return Point{X: p.X(), Y: p.Y()}
}

// Orb returns the point as an orb.Point (X first, Y second)
func (p Point) Orb() orb.Point {
	return orb.Point{p.X, p.Y}
}

// Distance calculates Euclidean distance between two points
func (p Point) Distance(other Point) float64 {
	return planar.Distance(p.Orb(), other.Orb())
}

// DistanceMeters calculates the distance in meters between two points in lat/lng coordinates.
// X is treated as longitude and Y as latitude.
func (p Point) DistanceMeters(other Point) float64 {
	return geo.DistanceHaversine(p.Orb(), other.Orb())
}

// PathLength sums Euclidean segment lengths along a point sequence
func PathLength(points []Point) float64 {
	total := 0.0
	for i := 1; i < len(points); i++ {
		total += points[i-1].Distance(points[i])
	}
	return total
}

// PathLengthMeters sums haversine segment lengths along a point sequence
func PathLengthMeters(points []Point) float64 {
	total := 0.0
	for i := 1; i < len(points); i++ {
		total += points[i-1].DistanceMeters(points[i])
	}
	return total
}
