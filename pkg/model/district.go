package model

import (
	"go.uber.org/zap"

	"github.com/ChicagoDave/cityenvelope/pkg/geo"
)

// District is an area under study. It owns its buildings and open areas
// and indexes them by name. Its extent is fixed when it is created and is
// not updated as buildings come and go.
type District struct {
	// Name of the district, empty when unnamed.
	Name string

	srsName   string
	lower     geo.Point
	upper     geo.Point
	reference geo.Point
	footprint *geo.Polygon
	city      *City

	buildings     []*Building
	buildingIndex map[string]int
	aliasIndex    map[string]int

	openAreas     []*OpenArea
	openAreaIndex map[string]int
}

// NewDistrict creates an empty district in the given reference system.
// The reference coordinates default to the lower corner.
func NewDistrict(srsName string, lower, upper geo.Point) *District {
	return &District{
		srsName:       srsName,
		lower:         lower,
		upper:         upper,
		reference:     lower,
		buildingIndex: make(map[string]int),
		aliasIndex:    make(map[string]int),
		openAreaIndex: make(map[string]int),
	}
}

// SRSName returns the spatial reference system identifier.
func (d *District) SRSName() string { return d.srsName }

// LowerCorner returns the minimum corner of the imported extent.
func (d *District) LowerCorner() geo.Point { return d.lower }

// UpperCorner returns the maximum corner of the imported extent.
func (d *District) UpperCorner() geo.Point { return d.upper }

// ReferenceCoordinates returns the point used to translate district
// geometry back to absolute coordinates.
func (d *District) ReferenceCoordinates() geo.Point { return d.reference }

// SetReferenceCoordinates replaces the reference point.
func (d *District) SetReferenceCoordinates(p geo.Point) { d.reference = p }

// Footprint returns the district boundary polygon, if one was imported.
func (d *District) Footprint() (geo.Polygon, bool) {
	if d.footprint == nil {
		return geo.Polygon{}, false
	}
	return *d.footprint, true
}

// SetFootprint records the district boundary polygon.
func (d *District) SetFootprint(p geo.Polygon) { d.footprint = &p }

// Area returns the footprint area in m2, or the planar area of the extent
// when no footprint is known.
func (d *District) Area() float64 {
	if d.footprint != nil {
		return d.footprint.Area()
	}
	return (d.upper.X - d.lower.X) * (d.upper.Y - d.lower.Y)
}

// City returns the city holding the district, or nil.
func (d *District) City() *City { return d.city }

// Buildings returns the buildings in insertion order.
func (d *District) Buildings() []*Building { return append([]*Building(nil), d.buildings...) }

// OpenAreas returns the open areas in insertion order.
func (d *District) OpenAreas() []*OpenArea { return append([]*OpenArea(nil), d.openAreas...) }

// Building returns the building registered under name. When several
// buildings share a name the most recently added one wins.
func (d *District) Building(name string) (*Building, bool) {
	i, ok := d.buildingIndex[name]
	if !ok {
		return nil, false
	}
	return d.buildings[i], true
}

// BuildingByAlias returns the building carrying the given alias.
func (d *District) BuildingByAlias(alias string) (*Building, bool) {
	i, ok := d.aliasIndex[alias]
	if !ok {
		return nil, false
	}
	return d.buildings[i], true
}

// AddBuilding appends b and indexes it by name and aliases. A name that is
// already taken is silently re-pointed at b.
func (d *District) AddBuilding(b *Building) {
	d.buildings = append(d.buildings, b)
	i := len(d.buildings) - 1
	d.buildingIndex[b.name] = i
	for _, a := range b.aliases {
		d.aliasIndex[a] = i
	}
	b.district = d
}

// RemoveBuilding removes b by identity and rebuilds the name index.
// Removing a nil building or one that is not in the district only logs a
// warning.
func (d *District) RemoveBuilding(b *Building) {
	if b == nil {
		zap.L().Warn("impossible to remove a nil building")
		return
	}
	if len(d.buildings) == 0 {
		zap.L().Warn("impossible to remove building, the district does not have any",
			zap.String("building", b.name))
		return
	}
	pos := -1
	for i, cur := range d.buildings {
		if cur == b {
			pos = i
			break
		}
	}
	if pos < 0 {
		zap.L().Warn("building not found in district", zap.String("building", b.name))
		return
	}

	d.buildings = append(d.buildings[:pos], d.buildings[pos+1:]...)
	b.district = nil

	d.buildingIndex = make(map[string]int, len(d.buildings))
	d.aliasIndex = make(map[string]int)
	for i, cur := range d.buildings {
		d.buildingIndex[cur.name] = i
		for _, a := range cur.aliases {
			d.aliasIndex[a] = i
		}
	}
}

func (d *District) indexAlias(alias string, b *Building) {
	for i, cur := range d.buildings {
		if cur == b {
			d.aliasIndex[alias] = i
		}
	}
}

// OpenArea returns the open area registered under name.
func (d *District) OpenArea(name string) (*OpenArea, bool) {
	i, ok := d.openAreaIndex[name]
	if !ok {
		return nil, false
	}
	return d.openAreas[i], true
}

// AddOpenArea appends a and indexes it by name, last write wins.
func (d *District) AddOpenArea(a *OpenArea) {
	d.openAreas = append(d.openAreas, a)
	d.openAreaIndex[a.Name] = len(d.openAreas) - 1
}

// RemoveOpenArea removes a by identity and rebuilds the name index.
func (d *District) RemoveOpenArea(a *OpenArea) {
	if a == nil {
		zap.L().Warn("impossible to remove a nil open area")
		return
	}
	if len(d.openAreas) == 0 {
		zap.L().Warn("impossible to remove an open area, the district does not have any",
			zap.String("open_area", a.Name))
		return
	}
	pos := -1
	for i, cur := range d.openAreas {
		if cur == a {
			pos = i
			break
		}
	}
	if pos < 0 {
		zap.L().Warn("open area not found in district", zap.String("open_area", a.Name))
		return
	}

	d.openAreas = append(d.openAreas[:pos], d.openAreas[pos+1:]...)
	d.openAreaIndex = make(map[string]int, len(d.openAreas))
	for i, cur := range d.openAreas {
		d.openAreaIndex[cur.Name] = i
	}
}
