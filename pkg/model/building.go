package model

import (
	"math"

	"go.uber.org/zap"

	"github.com/ChicagoDave/cityenvelope/pkg/geo"
)

// RoofType is the coarse roof shape of a building.
type RoofType string

const (
	RoofFlat  RoofType = "flat"
	RoofPitch RoofType = "pitch"
)

// pitchMinDegrees is the zenith angle above which a roof counts as pitched.
const pitchMinDegrees = 5.0

// Building owns an ordered list of surfaces partitioned by type. Derived
// quantities are computed from the surfaces on first read and cached;
// surfaces never change after construction.
type Building struct {
	name     string
	aliases  []string
	surfaces []*Surface

	grounds       []*Surface
	roofs         []*Surface
	walls         []*Surface
	internalWalls []*Surface
	groundWalls   []*Surface
	atticFloors   []*Surface
	interiorSlabs []*Surface

	lower geo.Point
	upper geo.Point

	volume  float64
	storeys *int

	floorArea  lazy[float64]
	eaveHeight lazy[float64]
	roofType   lazy[RoofType]

	district *District

	// YearOfConstruction is zero when unknown.
	YearOfConstruction int
	// Function is the building function code, empty when unknown.
	Function string
	// Usages maps usage names to their share of the floor area.
	Usages map[string]float64
	// AverageStoreyHeight in meters, zero when unknown.
	AverageStoreyHeight float64
}

// NewBuilding creates a building from its surfaces. Surfaces receive
// sequential ids in the given order.
func NewBuilding(name string, surfaces []*Surface, yearOfConstruction int, function string) *Building {
	b := &Building{
		name:               name,
		surfaces:           append([]*Surface(nil), surfaces...),
		YearOfConstruction: yearOfConstruction,
		Function:           function,
	}

	if len(surfaces) > 0 {
		b.lower = geo.Pt(math.MaxFloat64, math.MaxFloat64, math.MaxFloat64)
		b.upper = geo.Pt(-math.MaxFloat64, -math.MaxFloat64, -math.MaxFloat64)
	}
	for i, s := range b.surfaces {
		b.lower = geo.Min(b.lower, s.LowerCorner())
		b.upper = geo.Max(b.upper, s.UpperCorner())
		s.id = i

		switch s.Type() {
		case SurfaceGround:
			b.grounds = append(b.grounds, s)
		case SurfaceWall:
			b.walls = append(b.walls, s)
		case SurfaceRoof:
			b.roofs = append(b.roofs, s)
		case SurfaceInteriorWall:
			b.internalWalls = append(b.internalWalls, s)
		case SurfaceGroundWall:
			b.groundWalls = append(b.groundWalls, s)
		case SurfaceAtticFloor:
			b.atticFloors = append(b.atticFloors, s)
		case SurfaceInteriorSlab:
			b.interiorSlabs = append(b.interiorSlabs, s)
		default:
			zap.L().Error("unexpected surface type",
				zap.String("building", name),
				zap.Strings("aliases", b.aliases),
				zap.String("type", string(s.Type())))
		}
	}
	return b
}

// Name returns the building name, the key used by the district registry.
func (b *Building) Name() string { return b.name }

// Aliases returns the alternative names of the building.
func (b *Building) Aliases() []string { return append([]string(nil), b.aliases...) }

// AddAlias records another name for the building. If the building belongs
// to a district, the alias is indexed there too.
func (b *Building) AddAlias(alias string) {
	b.aliases = append(b.aliases, alias)
	if b.district != nil {
		b.district.indexAlias(alias, b)
	}
}

// District returns the district holding the building, or nil.
func (b *Building) District() *District { return b.district }

// Surfaces returns every surface in construction order.
func (b *Building) Surfaces() []*Surface { return append([]*Surface(nil), b.surfaces...) }

// Grounds returns the ground surfaces.
func (b *Building) Grounds() []*Surface { return append([]*Surface(nil), b.grounds...) }

// Roofs returns the roof surfaces.
func (b *Building) Roofs() []*Surface { return append([]*Surface(nil), b.roofs...) }

// Walls returns the exterior wall surfaces.
func (b *Building) Walls() []*Surface { return append([]*Surface(nil), b.walls...) }

// InternalWalls returns the interior wall surfaces.
func (b *Building) InternalWalls() []*Surface { return append([]*Surface(nil), b.internalWalls...) }

// GroundWalls returns the walls in contact with the ground.
func (b *Building) GroundWalls() []*Surface { return append([]*Surface(nil), b.groundWalls...) }

// AtticFloors returns the attic floor surfaces.
func (b *Building) AtticFloors() []*Surface { return append([]*Surface(nil), b.atticFloors...) }

// InteriorSlabs returns the slabs between storeys.
func (b *Building) InteriorSlabs() []*Surface { return append([]*Surface(nil), b.interiorSlabs...) }

// LowerCorner returns the minimum corner over all surfaces.
func (b *Building) LowerCorner() geo.Point { return b.lower }

// UpperCorner returns the maximum corner over all surfaces.
func (b *Building) UpperCorner() geo.Point { return b.upper }

// MaxHeight returns the highest elevation reached by the building.
func (b *Building) MaxHeight() float64 { return b.upper.Z }

// FloorArea returns the summed perimeter area of the ground surfaces in m2.
func (b *Building) FloorArea() float64 {
	return b.floorArea.get(func() float64 {
		area := 0.0
		for _, g := range b.grounds {
			area += g.PerimeterArea()
		}
		return area
	})
}

// EaveHeight returns the top of the highest wall above the building base.
func (b *Building) EaveHeight() float64 {
	return b.eaveHeight.get(func() float64 {
		if len(b.walls) == 0 {
			return 0
		}
		top := -math.MaxFloat64
		for _, w := range b.walls {
			top = math.Max(top, w.UpperCorner().Z)
		}
		return top - b.lower.Z
	})
}

// RoofType returns pitch if any roof leans more than 5 degrees, else flat.
func (b *Building) RoofType() RoofType {
	return b.roofType.get(func() RoofType {
		for _, r := range b.roofs {
			deg := r.ZenithAngle() * 180 / math.Pi
			if deg > pitchMinDegrees && deg < 360-pitchMinDegrees {
				return RoofPitch
			}
		}
		return RoofFlat
	})
}

// Volume returns the enclosed volume in m3 as set by the extrusion step.
func (b *Building) Volume() float64 { return b.volume }

// SetVolume records the enclosed volume in m3.
func (b *Building) SetVolume(v float64) { b.volume = v }

// StoreysAboveGround returns the storey count. When it was never set it is
// derived from the eave height and the average storey height, if known.
func (b *Building) StoreysAboveGround() int {
	if b.storeys != nil {
		return *b.storeys
	}
	if b.AverageStoreyHeight > 0 {
		return int(b.EaveHeight() / b.AverageStoreyHeight)
	}
	return 0
}

// SetStoreysAboveGround records the storey count.
func (b *Building) SetStoreysAboveGround(n int) { b.storeys = &n }
