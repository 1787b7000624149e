package reconstruct

import (
	"errors"
	"fmt"
	"math"

	"github.com/ChicagoDave/cityenvelope/pkg/geo"
	"github.com/ChicagoDave/cityenvelope/pkg/model"
)

// ErrInvalidExtrusion is returned for non-positive heights.
var ErrInvalidExtrusion = errors.New("invalid extrusion")

// storeyEpsilon absorbs binary representation error in height/storeyHeight,
// so 0.3/0.1 counts three storeys.
const storeyEpsilon = 1e-9

// Extrude builds a single-storey LOD1 building of the given height.
func Extrude(lod0 *model.Building, height float64) (*model.Building, error) {
	return ExtrudeStoreys(lod0, height, height)
}

// ExtrudeStoreys builds a LOD1 building from the ground surfaces of lod0.
// It stacks floor(height/storeyHeight) storeys; any height left above the
// last full storey is dropped. The result keeps the original grounds and
// adds, per ground and storey, a floor, a ceiling and one wall per ground
// edge. Floors and intermediate ceilings are interior slabs; only the top
// ceiling is a roof.
func ExtrudeStoreys(lod0 *model.Building, height, storeyHeight float64) (*model.Building, error) {
	if !(height > 0) {
		return nil, fmt.Errorf("%w: height %v", ErrInvalidExtrusion, height)
	}
	if !(storeyHeight > 0) {
		return nil, fmt.Errorf("%w: storey height %v", ErrInvalidExtrusion, storeyHeight)
	}
	storeys := int(math.Floor(height/storeyHeight + storeyEpsilon))

	grounds := lod0.Grounds()
	surfaces := append([]*model.Surface(nil), grounds...)
	volume := 0.0

	for _, g := range grounds {
		ring := g.SolidPolygon()
		area := ring.Area()
		base := g.LowerCorner().Z

		for s := 0; s < storeys; s++ {
			z0 := base + float64(s)*storeyHeight
			z1 := base + float64(s+1)*storeyHeight

			floor := ring.AtElevation(z0)
			surfaces = append(surfaces, model.NewTypedSurface(floor, floor, model.SurfaceInteriorSlab))

			// Reversed so the ceiling faces up.
			roof := ring.Reverse().AtElevation(z1)
			if s == storeys-1 {
				surfaces = append(surfaces, model.NewSurface(roof, roof))
			} else {
				surfaces = append(surfaces, model.NewTypedSurface(roof, roof, model.SurfaceInteriorSlab))
			}

			for i := 0; i < roof.Len(); i++ {
				top, next := roof.Edge(i)
				wall := geo.NewPolygon(top.WithZ(z0), next.WithZ(z0), next, top)
				surfaces = append(surfaces, model.NewSurface(wall, wall))
			}

			volume += area * storeyHeight
		}
	}

	b := newBuilding(attributesOf(lod0), surfaces)
	b.AverageStoreyHeight = storeyHeight
	b.SetVolume(volume)
	b.SetStoreysAboveGround(storeys)
	return b, nil
}

func attributesOf(b *model.Building) Attributes {
	return Attributes{
		Name:               b.Name(),
		Aliases:            b.Aliases(),
		YearOfConstruction: b.YearOfConstruction,
		Function:           b.Function,
		Usages:             b.Usages,
	}
}
