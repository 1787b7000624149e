package scene2d

import (
	"time"

	"github.com/ChicagoDave/cityenvelope/pkg/geo"
	"github.com/ChicagoDave/cityenvelope/pkg/model"
)

// Assemble2D converts a district into a plan suitable for SVG rendering.
// Buildings keep their ground outlines; per-function totals are summarized.
func Assemble2D(d *model.District) *Plan {
	ref := d.ReferenceCoordinates()
	buildings := d.Buildings()

	plan := &Plan{
		Metadata:  assembleMetadata(d, ref),
		Buildings: assembleBuildings(buildings, ref),
		OpenAreas: assembleOpenAreas(d.OpenAreas(), ref),
		Summary:   assembleBuildingSummary(buildings),
	}
	if footprint, ok := d.Footprint(); ok {
		plan.Boundary = polygonToCoords(footprint, ref)
	}
	return plan
}

func assembleMetadata(d *model.District, ref geo.Point) Metadata {
	lower, upper := d.LowerCorner(), d.UpperCorner()
	return Metadata{
		District:  d.Name,
		SRSName:   d.SRSName(),
		Reference: [2]float64{ref.X, ref.Y},
		Extent: [2][2]float64{
			{lower.X - ref.X, lower.Y - ref.Y},
			{upper.X - ref.X, upper.Y - ref.Y},
		},
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}
}

func assembleBuildings(buildings []*model.Building, ref geo.Point) []Building2D {
	result := make([]Building2D, 0, len(buildings))
	for _, b := range buildings {
		grounds := b.Grounds()
		outlines := make([][][2]float64, 0, len(grounds))
		for _, g := range grounds {
			outlines = append(outlines, polygonToCoords(g.SolidPolygon(), ref))
		}
		c := centroid(grounds)
		result = append(result, Building2D{
			ID:        b.Name(),
			Outlines:  outlines,
			Centroid:  [2]float64{c.X - ref.X, c.Y - ref.Y},
			Height:    b.MaxHeight() - b.LowerCorner().Z,
			Storeys:   b.StoreysAboveGround(),
			Function:  b.Function,
			RoofType:  string(b.RoofType()),
			FloorArea: b.FloorArea(),
			Extruded:  len(b.Roofs()) > 0,
		})
	}
	return result
}

func assembleOpenAreas(areas []*model.OpenArea, ref geo.Point) []OpenArea2D {
	result := make([]OpenArea2D, 0, len(areas))
	for _, a := range areas {
		result = append(result, OpenArea2D{
			ID:        a.Name,
			Polygon:   polygonToCoords(a.Footprint, ref),
			AreaM2:    a.Footprint.Area(),
			Buildings: a.Buildings,
		})
	}
	return result
}

func assembleBuildingSummary(buildings []*model.Building) BuildingSummary {
	bs := BuildingSummary{
		ByFunction: make(map[string]FunctionSum),
		ByRoofType: make(map[string]int),
	}
	for _, b := range buildings {
		bs.TotalBuildings++
		bs.TotalFloorArea += b.FloorArea()
		bs.TotalVolume += b.Volume()
		if len(b.Roofs()) > 0 {
			bs.Extruded++
		}

		function := b.Function
		if function == "" {
			function = unknownFunction
		}
		fs := bs.ByFunction[function]
		fs.Count++
		fs.FloorArea += b.FloorArea()
		fs.Volume += b.Volume()
		bs.ByFunction[function] = fs

		bs.ByRoofType[string(b.RoofType())]++
	}
	return bs
}

// centroid is the area-weighted centroid of the ground surfaces.
func centroid(grounds []*model.Surface) geo.Point {
	var sum geo.Point
	total := 0.0
	for _, g := range grounds {
		a := g.PerimeterArea()
		sum = sum.Add(g.PerimeterPolygon().Centroid().Scale(a))
		total += a
	}
	if total == 0 {
		return sum
	}
	return sum.Scale(1 / total)
}

// polygonToCoords converts a polygon to plan coordinates relative to ref.
func polygonToCoords(p geo.Polygon, ref geo.Point) [][2]float64 {
	coords := make([][2]float64, 0, p.Len())
	for _, v := range p.Points() {
		coords = append(coords, [2]float64{v.X - ref.X, v.Y - ref.Y})
	}
	return coords
}
