// Package geometry provides basic geometric types used throughout the application.
package geometry

import (
	"math"
)

// Point2D represents a 2D point in data coordinates.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NewPoint2D creates a new Point2D.
func NewPoint2D(x, y float64) Point2D {
	return Point2D{X: x, Y: y}
}

// Box represents an axis-aligned bounding box in data coordinates.
// Coordinates may be NaN when the source record is missing a value.
type Box struct {
	XMin float64 `json:"x_min"`
	XMax float64 `json:"x_max"`
	YMin float64 `json:"y_min"`
	YMax float64 `json:"y_max"`
}

// NewBox creates a new Box.
func NewBox(xMin, xMax, yMin, yMax float64) Box {
	return Box{XMin: xMin, XMax: xMax, YMin: yMin, YMax: yMax}
}

// Valid reports whether all four coordinates are present (non-NaN).
// A box with any missing coordinate cannot be hit-tested or drawn.
func (b Box) Valid() bool {
	return !math.IsNaN(b.XMin) && !math.IsNaN(b.XMax) &&
		!math.IsNaN(b.YMin) && !math.IsNaN(b.YMax)
}

// Contains returns true if the point lies inside the box, edges inclusive.
// Always false for an invalid box.
func (b Box) Contains(p Point2D) bool {
	return b.XMin <= p.X && p.X <= b.XMax &&
		b.YMin <= p.Y && p.Y <= b.YMax
}

// Center returns the center point of the box.
func (b Box) Center() Point2D {
	return Point2D{X: (b.XMin + b.XMax) / 2, Y: (b.YMin + b.YMax) / 2}
}

// Width returns the horizontal extent of the box.
func (b Box) Width() float64 {
	return b.XMax - b.XMin
}

// Height returns the vertical extent of the box.
func (b Box) Height() float64 {
	return b.YMax - b.YMin
}
