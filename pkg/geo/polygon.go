package geo

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Polygon is a planar ring of points. Closure is implicit: the last point
// connects back to the first and is never repeated. Polygons are values;
// every operation that changes the ring returns a new Polygon.
type Polygon struct {
	points []Point
}

// NewPolygon creates a polygon from a list of points. The slice is copied.
func NewPolygon(pts ...Point) Polygon {
	cp := make([]Point, len(pts))
	copy(cp, pts)
	return Polygon{points: cp}
}

// Points returns a copy of the ring.
func (p Polygon) Points() []Point {
	cp := make([]Point, len(p.points))
	copy(cp, p.points)
	return cp
}

// At returns the i-th point. Wraps around.
func (p Polygon) At(i int) Point {
	n := len(p.points)
	return p.points[((i%n)+n)%n]
}

// Len returns the number of points.
func (p Polygon) Len() int {
	return len(p.points)
}

// IsEmpty returns true if the polygon has fewer than 3 points.
func (p Polygon) IsEmpty() bool {
	return len(p.points) < 3
}

// Edge returns the i-th edge as (start, end). Wraps around.
func (p Polygon) Edge(i int) (Point, Point) {
	return p.At(i), p.At(i + 1)
}

// newell returns the Newell vector of the ring: twice the vector area,
// pointing along the right-hand normal. Points are taken relative to the
// first vertex to keep projected coordinates from cancelling out.
func (p Polygon) newell() r3.Vec {
	n := len(p.points)
	if n < 3 {
		return r3.Vec{}
	}
	o := p.points[0].Vec()
	var sum r3.Vec
	for i := 0; i < n; i++ {
		a := r3.Sub(p.points[i].Vec(), o)
		b := r3.Sub(p.points[(i+1)%n].Vec(), o)
		sum = r3.Add(sum, r3.Cross(a, b))
	}
	return sum
}

// Area returns the unsigned area of the ring in its own plane.
// Bridged rings count the detour with opposite winding, so a ground with a
// spliced-in hole reports outer area minus hole area.
func (p Polygon) Area() float64 {
	return r3.Norm(p.newell()) / 2
}

// SignedArea returns the signed area of the ring projected on the XY plane.
// Positive for counterclockwise winding seen from above.
func (p Polygon) SignedArea() float64 {
	return p.newell().Z / 2
}

// Normal returns the unit normal of the ring following the right-hand rule.
// Degenerate rings return the zero vector.
func (p Polygon) Normal() Point {
	v := p.newell()
	l := r3.Norm(v)
	if l < 1e-12 {
		return Point{}
	}
	return FromVec(r3.Scale(1/l, v))
}

// Reverse returns the polygon with reversed point order.
func (p Polygon) Reverse() Polygon {
	n := len(p.points)
	rev := make([]Point, n)
	for i, v := range p.points {
		rev[n-1-i] = v
	}
	return Polygon{points: rev}
}

// Centroid returns the area centroid of the ring.
func (p Polygon) Centroid() Point {
	n := len(p.points)
	if n == 0 {
		return Point{}
	}
	average := func() Point {
		sum := Point{}
		for _, v := range p.points {
			sum = sum.Add(v)
		}
		return sum.Scale(1.0 / float64(n))
	}
	normal := p.Normal()
	if n < 3 || normal == (Point{}) {
		return average()
	}

	// Triangle fan from the first vertex, each triangle weighted by its
	// signed area along the ring normal.
	o := p.points[0].Vec()
	nv := normal.Vec()
	var acc r3.Vec
	total := 0.0
	for i := 1; i < n-1; i++ {
		a := p.points[i].Vec()
		b := p.points[i+1].Vec()
		w := r3.Dot(r3.Cross(r3.Sub(a, o), r3.Sub(b, o)), nv) / 2
		c := r3.Scale(1.0/3.0, r3.Add(o, r3.Add(a, b)))
		acc = r3.Add(acc, r3.Scale(w, c))
		total += w
	}
	if math.Abs(total) < 1e-12 {
		return average()
	}
	return FromVec(r3.Scale(1/total, acc))
}

// BoundingBox returns the axis-aligned bounding box as (min, max).
func (p Polygon) BoundingBox() (Point, Point) {
	if len(p.points) == 0 {
		return Point{}, Point{}
	}
	minP := p.points[0]
	maxP := p.points[0]
	for _, v := range p.points[1:] {
		minP = Min(minP, v)
		maxP = Max(maxP, v)
	}
	return minP, maxP
}

// Perimeter returns the total boundary length.
func (p Polygon) Perimeter() float64 {
	n := len(p.points)
	if n < 2 {
		return 0
	}
	total := 0.0
	for i := 0; i < n; i++ {
		total += p.points[i].Distance(p.points[(i+1)%n])
	}
	return total
}

// AtElevation returns the ring with every point moved to elevation z.
func (p Polygon) AtElevation(z float64) Polygon {
	out := make([]Point, len(p.points))
	for i, v := range p.points {
		out[i] = v.WithZ(z)
	}
	return Polygon{points: out}
}

// Translate returns the ring shifted by offset.
func (p Polygon) Translate(offset Point) Polygon {
	out := make([]Point, len(p.points))
	for i, v := range p.points {
		out[i] = v.Add(offset)
	}
	return Polygon{points: out}
}
