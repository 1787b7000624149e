package model

import (
	"math"

	"github.com/google/uuid"

	"github.com/ChicagoDave/cityenvelope/pkg/geo"
)

// SurfaceType labels a face of a building envelope.
type SurfaceType string

const (
	SurfaceGround          SurfaceType = "Ground"
	SurfaceWall            SurfaceType = "Wall"
	SurfaceRoof            SurfaceType = "Roof"
	SurfaceGroundWall      SurfaceType = "GroundWall"
	SurfaceAtticFloor      SurfaceType = "AtticFloor"
	SurfaceInteriorSlab    SurfaceType = "InteriorSlab"
	SurfaceInteriorWall    SurfaceType = "InteriorWall"
	SurfaceVirtualInternal SurfaceType = "VirtualInternal"
)

// Classification thresholds on the cosine of the zenith angle.
const (
	// groundCosine is cos(~170 deg): anything facing further down is ground.
	groundCosine = -0.98
	// wallCosine is cos(~80 deg): zenith angles in [80, 100] deg are walls.
	wallCosine = 0.17
)

// ClassifyCosine maps the cosine of a zenith angle to Ground, Wall or Roof.
// Both thresholds are inclusive.
func ClassifyCosine(c float64) SurfaceType {
	switch {
	case c <= groundCosine:
		return SurfaceGround
	case math.Abs(c) <= wallCosine:
		return SurfaceWall
	default:
		return SurfaceRoof
	}
}

// Classify maps a zenith angle in radians to Ground, Wall or Roof.
func Classify(zenith float64) SurfaceType {
	return ClassifyCosine(math.Cos(zenith))
}

// Azimuth returns the azimuth of a normal in radians, 0 = North, growing
// clockwise, in [0, 2*pi).
func Azimuth(normal geo.Point) float64 {
	a := math.Pi/2 - math.Atan2(normal.Y, normal.X)
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}

// ZenithAngle returns the angle between a unit normal and straight up, in
// [0, pi].
func ZenithAngle(normal geo.Point) float64 {
	return math.Acos(math.Max(-1, math.Min(1, normal.Z)))
}

// Surface is one face of a building. The solid polygon is the true face
// shape, possibly carrying a hole bridge; the perimeter polygon is the
// outer boundary used for areas and corners. Orientation and type are
// derived once at construction and never change.
type Surface struct {
	id    int
	name  string
	solid geo.Polygon
	perim geo.Polygon
	holes []geo.Polygon

	normal  geo.Point
	azimuth float64
	zenith  float64
	typ     SurfaceType

	lower geo.Point
	upper geo.Point

	// ThermalBoundaryIDs references thermal boundaries that use this surface
	// as their external face. The boundaries themselves live elsewhere.
	ThermalBoundaryIDs []string `json:"thermal_boundary_ids,omitempty"`

	// PercentageShared is the fraction of a wall shared with neighbours.
	// Nil when not computed.
	PercentageShared *float64 `json:"percentage_shared,omitempty"`
}

// NewSurface builds a surface and classifies it from its perimeter normal.
func NewSurface(solid, perimeter geo.Polygon) *Surface {
	return newSurface(solid, perimeter, nil, "")
}

// NewTypedSurface builds a surface whose type is supplied by the caller
// instead of derived from geometry.
func NewTypedSurface(solid, perimeter geo.Polygon, typ SurfaceType) *Surface {
	return newSurface(solid, perimeter, nil, typ)
}

// NewSurfaceWithHoles builds a surface with explicit hole polygons. A nil
// holes slice means unknown; an empty one means none.
func NewSurfaceWithHoles(solid, perimeter geo.Polygon, holes []geo.Polygon, typ SurfaceType) *Surface {
	return newSurface(solid, perimeter, holes, typ)
}

func newSurface(solid, perimeter geo.Polygon, holes []geo.Polygon, typ SurfaceType) *Surface {
	s := &Surface{
		id:    -1,
		name:  uuid.NewString(),
		solid: solid,
		perim: perimeter,
		holes: holes,
	}
	s.normal = perimeter.Normal()
	s.azimuth = Azimuth(s.normal)
	s.zenith = ZenithAngle(s.normal)
	if typ == "" {
		typ = Classify(s.zenith)
	}
	s.typ = typ
	s.lower, s.upper = perimeter.BoundingBox()
	return s
}

// ID returns the sequential id assigned by the owning building, or -1.
func (s *Surface) ID() int { return s.id }

// Name returns the surface name.
func (s *Surface) Name() string { return s.name }

// SolidPolygon returns the face shape.
func (s *Surface) SolidPolygon() geo.Polygon { return s.solid }

// PerimeterPolygon returns the outer boundary.
func (s *Surface) PerimeterPolygon() geo.Polygon { return s.perim }

// HolesPolygons returns the hole polygons; nil means unknown.
func (s *Surface) HolesPolygons() []geo.Polygon { return s.holes }

// Normal returns the unit normal of the perimeter polygon.
func (s *Surface) Normal() geo.Point { return s.normal }

// Azimuth returns the azimuth in radians, 0 = North, clockwise.
func (s *Surface) Azimuth() float64 { return s.azimuth }

// ZenithAngle returns the zenith angle in radians, 0 = facing up.
func (s *Surface) ZenithAngle() float64 { return s.zenith }

// Type returns the surface type.
func (s *Surface) Type() SurfaceType { return s.typ }

// PerimeterArea returns the area of the perimeter polygon in m2.
func (s *Surface) PerimeterArea() float64 { return s.perim.Area() }

// LowerCorner returns the minimum corner of the perimeter polygon.
func (s *Surface) LowerCorner() geo.Point { return s.lower }

// UpperCorner returns the maximum corner of the perimeter polygon.
func (s *Surface) UpperCorner() geo.Point { return s.upper }

// Inverse returns the same face pointing the other way, typed as a virtual
// internal surface.
func (s *Surface) Inverse() *Surface {
	var holes []geo.Polygon
	if s.holes != nil {
		holes = make([]geo.Polygon, len(s.holes))
		for i, h := range s.holes {
			holes[i] = h.Reverse()
		}
	}
	inv := newSurface(s.solid.Reverse(), s.perim.Reverse(), holes, SurfaceVirtualInternal)
	inv.name = s.name
	return inv
}
