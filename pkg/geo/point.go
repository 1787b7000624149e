package geo

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Point is a vertex in the projected reference system, in meters.
// Z is up; footprints are imported at Z = 0.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Origin is the zero point.
var Origin = Point{}

// Pt is a shorthand constructor for Point.
func Pt(x, y, z float64) Point {
	return Point{X: x, Y: y, Z: z}
}

// Vec returns p as a gonum vector.
func (p Point) Vec() r3.Vec {
	return r3.Vec{X: p.X, Y: p.Y, Z: p.Z}
}

// FromVec converts a gonum vector back to a Point.
func FromVec(v r3.Vec) Point {
	return Point{X: v.X, Y: v.Y, Z: v.Z}
}

// Add returns p + q.
func (p Point) Add(q Point) Point {
	return FromVec(r3.Add(p.Vec(), q.Vec()))
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return FromVec(r3.Sub(p.Vec(), q.Vec()))
}

// Scale returns p * s.
func (p Point) Scale(s float64) Point {
	return FromVec(r3.Scale(s, p.Vec()))
}

// Length returns the Euclidean length of the vector.
func (p Point) Length() float64 {
	return r3.Norm(p.Vec())
}

// Distance returns the Euclidean distance from p to q.
func (p Point) Distance(q Point) float64 {
	return p.Sub(q).Length()
}

// WithZ returns p moved to elevation z.
func (p Point) WithZ(z float64) Point {
	return Point{X: p.X, Y: p.Y, Z: z}
}

// Equal reports whether p and q coincide within tol on every axis.
func (p Point) Equal(q Point, tol float64) bool {
	return math.Abs(p.X-q.X) <= tol &&
		math.Abs(p.Y-q.Y) <= tol &&
		math.Abs(p.Z-q.Z) <= tol
}

// Min returns the componentwise minimum of p and q.
func Min(p, q Point) Point {
	return Point{math.Min(p.X, q.X), math.Min(p.Y, q.Y), math.Min(p.Z, q.Z)}
}

// Max returns the componentwise maximum of p and q.
func Max(p, q Point) Point {
	return Point{math.Max(p.X, q.X), math.Max(p.Y, q.Y), math.Max(p.Z, q.Z)}
}
