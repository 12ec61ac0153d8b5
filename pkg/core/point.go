package core

import (
	"fmt"
	"math"
	"strconv"
)

// MetersPerUnit converts world units to meters. Speeds are stored in m/s.
const MetersPerUnit = 10.0

// Point is a position in world units.
type Point struct {
	X float64
	Y float64
}

// NewPoint creates a point at (x, y)
func NewPoint(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Set moves the point in place
func (p *Point) Set(x, y float64) {
	p.X = x
	p.Y = y
}

// Within reports whether q lies within tolerance of p on both axes.
func (p Point) Within(q Point, tolerance float64) bool {
	return math.Abs(p.X-q.X) < tolerance && math.Abs(p.Y-q.Y) < tolerance
}

// String renders the point as "(x,y)" with each coordinate truncated to two decimals.
func (p Point) String() string {
	return fmt.Sprintf("(%s,%s)", formatTruncated(p.X), formatTruncated(p.Y))
}

func truncate2(v float64) float64 {
	return math.Trunc(v*100) / 100
}

func formatTruncated(v float64) string {
	return strconv.FormatFloat(truncate2(v), 'f', -1, 64)
}
