package projection

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/paulmach/orb"

	"github.com/ChicagoDave/cityenvelope/pkg/geo"
)

// ErrInvalidProjection is returned when the reference system is unknown or
// a coordinate cannot be projected. It aborts the whole import.
var ErrInvalidProjection = errors.New("invalid projection")

// Func projects a longitude/latitude pair in degrees to planar x/y meters.
type Func func(lon, lat float64) (x, y float64, err error)

// Bounds accumulates the planar extent of every point projected during one
// import. It is safe for concurrent use.
type Bounds struct {
	mu                     sync.Mutex
	minX, minY, maxX, maxY float64
	n                      int
}

// NewBounds returns an empty accumulator.
func NewBounds() *Bounds {
	return &Bounds{
		minX: math.MaxFloat64,
		minY: math.MaxFloat64,
		maxX: -math.MaxFloat64,
		maxY: -math.MaxFloat64,
	}
}

// Extend grows the bounds to include (x, y).
func (b *Bounds) Extend(x, y float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.minX = math.Min(b.minX, x)
	b.minY = math.Min(b.minY, y)
	b.maxX = math.Max(b.maxX, x)
	b.maxY = math.Max(b.maxY, y)
	b.n++
}

// Empty reports whether no point has been recorded.
func (b *Bounds) Empty() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.n == 0
}

// Corners returns the lower and upper corners at the given elevations.
// An empty accumulator yields zero corners.
func (b *Bounds) Corners(minZ, maxZ float64) (geo.Point, geo.Point) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.n == 0 {
		return geo.Point{}, geo.Point{}
	}
	return geo.Pt(b.minX, b.minY, minZ), geo.Pt(b.maxX, b.maxY, maxZ)
}

// Projector turns source rings into planar points and records their extent.
type Projector struct {
	project Func
	bounds  *Bounds
}

// New creates a projector with a fresh bounds accumulator.
func New(project Func) *Projector {
	return &Projector{project: project, bounds: NewBounds()}
}

// Bounds returns the accumulator shared by every ring projected so far.
func (p *Projector) Bounds() *Bounds { return p.bounds }

// ProjectRing projects (lon, lat) pairs to points at z = 0. Ring order and
// closure are kept as given.
func (p *Projector) ProjectRing(ring orb.Ring) ([]geo.Point, error) {
	out := make([]geo.Point, len(ring))
	for i, c := range ring {
		x, y, err := p.project(c.Lon(), c.Lat())
		if err != nil {
			return nil, fmt.Errorf("%w: projecting (%v, %v): %v", ErrInvalidProjection, c[0], c[1], err)
		}
		if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
			return nil, fmt.Errorf("%w: (%v, %v) projects outside the reference system", ErrInvalidProjection, c[0], c[1])
		}
		p.bounds.Extend(x, y)
		out[i] = geo.Pt(x, y, 0)
	}
	return out, nil
}

// Identity treats source coordinates as already projected meters.
func Identity(lon, lat float64) (float64, float64, error) {
	return lon, lat, nil
}
