// Package reconstruct turns GeoJSON footprints into building envelopes:
// LOD0 (ground surfaces only) and LOD1 (storeys extruded with flat roofs
// and vertical walls).
package reconstruct

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"

	"github.com/ChicagoDave/cityenvelope/pkg/geo"
	"github.com/ChicagoDave/cityenvelope/pkg/model"
	"github.com/ChicagoDave/cityenvelope/pkg/projection"
)

var (
	// ErrUnsupportedGeometry is returned for anything but Polygon and MultiPolygon.
	ErrUnsupportedGeometry = errors.New("unsupported geometry")
	// ErrOrphanRing is returned when a hole appears before any ground ring.
	ErrOrphanRing = errors.New("hole ring without a preceding ground ring")
	// ErrTooManyGrounds is returned when a single Polygon yields several grounds.
	ErrTooManyGrounds = errors.New("polygon produced more than one ground surface")
)

// Attributes are copied verbatim onto the reconstructed building.
type Attributes struct {
	Name               string
	Aliases            []string
	YearOfConstruction int
	Function           string
	Usages             map[string]float64
}

// Footprint builds a LOD0 building from a Polygon or MultiPolygon. Rings
// are taken in document order; a ring that faces down starts a new ground
// surface, any other ring is bridged into the latest ground.
func Footprint(g orb.Geometry, attrs Attributes, p *projection.Projector) (*model.Building, error) {
	var surfaces []*model.Surface
	var err error

	switch geom := g.(type) {
	case orb.Polygon:
		surfaces, err = addPolygon(nil, geom, p)
		if err != nil {
			return nil, err
		}
		if len(surfaces) > 1 {
			return nil, fmt.Errorf("%w: %d grounds", ErrTooManyGrounds, len(surfaces))
		}
	case orb.MultiPolygon:
		for _, poly := range geom {
			surfaces, err = addPolygon(surfaces, poly, p)
			if err != nil {
				return nil, err
			}
		}
	case nil:
		return nil, fmt.Errorf("%w: missing geometry", ErrUnsupportedGeometry)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedGeometry, g.GeoJSONType())
	}
	if len(surfaces) == 0 {
		return nil, fmt.Errorf("%w: geometry has no rings", geo.ErrMalformedRing)
	}

	return newBuilding(attrs, surfaces), nil
}

func addPolygon(surfaces []*model.Surface, poly orb.Polygon, p *projection.Projector) ([]*model.Surface, error) {
	for _, ring := range poly {
		projected, err := p.ProjectRing(ring)
		if err != nil {
			return nil, err
		}
		pts, err := geo.NormalizeRing(projected)
		if err != nil {
			return nil, err
		}
		polygon := geo.NewPolygon(pts...)
		surface := model.NewSurface(polygon, polygon)

		if surface.Type() == model.SurfaceGround {
			surfaces = append(surfaces, surface)
			continue
		}
		if len(surfaces) == 0 {
			return nil, ErrOrphanRing
		}
		last := len(surfaces) - 1
		merged := geo.Bridge(surfaces[last].SolidPolygon(), polygon)
		surfaces[last] = model.NewSurface(merged, merged)
	}
	return surfaces, nil
}

func newBuilding(attrs Attributes, surfaces []*model.Surface) *model.Building {
	b := model.NewBuilding(attrs.Name, surfaces, attrs.YearOfConstruction, attrs.Function)
	if attrs.Usages != nil {
		b.Usages = make(map[string]float64, len(attrs.Usages))
		for k, v := range attrs.Usages {
			b.Usages[k] = v
		}
	}
	for _, a := range attrs.Aliases {
		b.AddAlias(a)
	}
	return b
}
