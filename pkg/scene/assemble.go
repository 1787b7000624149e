package scene

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/ChicagoDave/cityenvelope/pkg/geo"
	"github.com/ChicagoDave/cityenvelope/pkg/model"
)

// Options control scene assembly.
type Options struct {
	// Version is copied into the scene metadata.
	Version string
	// Surfaces adds one entity per building surface, as building children.
	Surfaces bool
}

// Assemble converts a district into a scene graph.
func Assemble(d *model.District, opts Options) *Graph {
	g := NewGraph()
	ref := d.ReferenceCoordinates()

	assembleDistrict(d, ref, g)
	for _, b := range d.Buildings() {
		assembleBuilding(d, b, ref, opts, g)
	}
	assembleOpenAreas(d, ref, g)

	g.Metadata = Metadata{
		Version:     opts.Version,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		SRSName:     d.SRSName(),
		Reference:   Vec3{X: ref.X, Y: ref.Y, Z: ref.Z},
		Bounds:      computeBounds(g.Entities),
	}

	return g
}

func assembleDistrict(d *model.District, ref geo.Point, g *Graph) {
	footprint, ok := d.Footprint()
	if !ok {
		return
	}
	pos, dims := box(footprint, ref)
	dims.Y = 0

	addEntity(g, Entity{
		ID:         districtID(d),
		Type:       EntityDistrict,
		Position:   pos,
		Dimensions: dims,
		Rotation:   identityQuat(),
		Material:   "ground",
		District:   d.Name,
		LOD:        LOD0,
		Metadata: map[string]any{
			"area":      d.Area(),
			"footprint": ring(footprint, ref),
		},
	})
}

func assembleBuilding(d *model.District, b *model.Building, ref geo.Point, opts Options, g *Graph) {
	lower, upper := b.LowerCorner(), b.UpperCorner()
	lod := LOD0
	if len(b.Roofs()) > 0 {
		lod = LOD1
	}

	meta := map[string]any{
		"storeys":     b.StoreysAboveGround(),
		"floor_area":  b.FloorArea(),
		"volume":      b.Volume(),
		"max_height":  b.MaxHeight(),
		"eave_height": b.EaveHeight(),
	}
	if b.YearOfConstruction != 0 {
		meta["year_of_construction"] = b.YearOfConstruction
	}
	if aliases := b.Aliases(); len(aliases) > 0 {
		meta["aliases"] = aliases
	}
	if len(b.Usages) > 0 {
		meta["usages"] = b.Usages
	}
	var footprints [][][2]float64
	for _, ground := range b.Grounds() {
		footprints = append(footprints, ring(ground.PerimeterPolygon(), ref))
	}
	meta["footprints"] = footprints

	var children []string
	if opts.Surfaces {
		for _, s := range b.Surfaces() {
			id := surfaceID(b, s)
			children = append(children, id)
			assembleSurface(d, b, s, id, lod, ref, g)
		}
	}

	addEntity(g, Entity{
		ID:   b.Name(),
		Type: EntityBuilding,
		Position: Vec3{
			X: (lower.X+upper.X)/2 - ref.X,
			Y: lower.Z - ref.Z,
			Z: -((lower.Y+upper.Y)/2 - ref.Y),
		},
		Dimensions: Vec3{
			X: upper.X - lower.X,
			Y: upper.Z - lower.Z,
			Z: upper.Y - lower.Y,
		},
		Rotation: identityQuat(),
		Material: material(b.Function),
		District: d.Name,
		RoofType: string(b.RoofType()),
		Function: b.Function,
		LOD:      lod,
		Metadata: meta,
		Children: children,
	})
}

func assembleSurface(d *model.District, b *model.Building, s *model.Surface, id string, lod LOD, ref geo.Point, g *Graph) {
	pos, dims := box(s.SolidPolygon(), ref)
	n := s.Normal()

	addEntity(g, Entity{
		ID:         id,
		Type:       EntitySurface,
		Position:   pos,
		Dimensions: dims,
		Rotation:   identityQuat(),
		Material:   surfaceMaterial(s.Type()),
		District:   d.Name,
		LOD:        lod,
		Metadata: map[string]any{
			"building":     b.Name(),
			"surface_type": string(s.Type()),
			"area":         s.PerimeterArea(),
			"azimuth":      s.Azimuth(),
			"zenith":       s.ZenithAngle(),
			"normal":       Vec3{X: n.X, Y: n.Z, Z: -n.Y},
			"points":       points(s.SolidPolygon(), ref),
		},
	})
}

func assembleOpenAreas(d *model.District, ref geo.Point, g *Graph) {
	for _, a := range d.OpenAreas() {
		pos, dims := box(a.Footprint, ref)
		dims.Y = 0.1

		addEntity(g, Entity{
			ID:         fmt.Sprintf("%s_open", a.Name),
			Type:       EntityOpenArea,
			Position:   pos,
			Dimensions: dims,
			Rotation:   identityQuat(),
			Material:   "grass",
			District:   d.Name,
			LOD:        LOD0,
			Metadata: map[string]any{
				"area":      a.Footprint.Area(),
				"buildings": a.Buildings,
			},
		})
	}
}

// addEntity appends an entity and updates all group indices.
func addEntity(g *Graph, e Entity) {
	g.Entities = append(g.Entities, e)
	id := e.ID

	if e.District != "" {
		g.Groups.Districts[e.District] = append(g.Groups.Districts[e.District], id)
	}
	if e.RoofType != "" {
		g.Groups.RoofTypes[e.RoofType] = append(g.Groups.RoofTypes[e.RoofType], id)
	}
	if e.Function != "" {
		g.Groups.Functions[e.Function] = append(g.Groups.Functions[e.Function], id)
	}
	g.Groups.LODs[e.LOD] = append(g.Groups.LODs[e.LOD], id)
	g.Groups.EntityTypes[e.Type] = append(g.Groups.EntityTypes[e.Type], id)
}

// computeBounds calculates the AABB of all entities.
func computeBounds(entities []Entity) BoundingBox {
	if len(entities) == 0 {
		return BoundingBox{}
	}
	minV := Vec3{X: math.MaxFloat64, Y: math.MaxFloat64, Z: math.MaxFloat64}
	maxV := Vec3{X: -math.MaxFloat64, Y: -math.MaxFloat64, Z: -math.MaxFloat64}

	for _, e := range entities {
		halfX := e.Dimensions.X / 2
		halfZ := e.Dimensions.Z / 2

		minV.X = math.Min(minV.X, e.Position.X-halfX)
		maxV.X = math.Max(maxV.X, e.Position.X+halfX)
		minV.Y = math.Min(minV.Y, e.Position.Y)
		maxV.Y = math.Max(maxV.Y, e.Position.Y+e.Dimensions.Y)
		minV.Z = math.Min(minV.Z, e.Position.Z-halfZ)
		maxV.Z = math.Max(maxV.Z, e.Position.Z+halfZ)
	}
	return BoundingBox{Min: minV, Max: maxV}
}

// box returns the scene position and dimensions of a polygon's bounding box.
func box(p geo.Polygon, ref geo.Point) (Vec3, Vec3) {
	lo, hi := p.BoundingBox()
	pos := Vec3{
		X: (lo.X+hi.X)/2 - ref.X,
		Y: lo.Z - ref.Z,
		Z: -((lo.Y+hi.Y)/2 - ref.Y),
	}
	dims := Vec3{X: hi.X - lo.X, Y: hi.Z - lo.Z, Z: hi.Y - lo.Y}
	return pos, dims
}

// ring returns the polygon's plan coordinates relative to ref.
func ring(p geo.Polygon, ref geo.Point) [][2]float64 {
	out := make([][2]float64, 0, p.Len())
	for _, pt := range p.Points() {
		out = append(out, [2]float64{pt.X - ref.X, pt.Y - ref.Y})
	}
	return out
}

func points(p geo.Polygon, ref geo.Point) []Vec3 {
	out := make([]Vec3, 0, p.Len())
	for _, pt := range p.Points() {
		out = append(out, Vec3{X: pt.X - ref.X, Y: pt.Z - ref.Z, Z: -(pt.Y - ref.Y)})
	}
	return out
}

func districtID(d *model.District) string {
	if d.Name == "" {
		return "district"
	}
	return d.Name + "_district"
}

func surfaceID(b *model.Building, s *model.Surface) string {
	return fmt.Sprintf("%s/%d", b.Name(), s.ID())
}

func material(function string) string {
	switch f := strings.ToLower(function); {
	case strings.Contains(f, "residential"):
		return "brick"
	case strings.Contains(f, "office"), strings.Contains(f, "commercial"):
		return "glass"
	default:
		return "concrete"
	}
}

func surfaceMaterial(t model.SurfaceType) string {
	switch t {
	case model.SurfaceRoof:
		return "roofing"
	case model.SurfaceWall:
		return "facade"
	case model.SurfaceGround:
		return "slab"
	default:
		return "interior"
	}
}

func identityQuat() [4]float64 {
	return [4]float64{0, 0, 0, 1}
}
