// Package scene exports a District as a renderer-friendly scene graph.
// Scene space is Y-up: X grows east, Y up and -Z north, relative to the
// district reference coordinates.
package scene

// LOD is the level of detail of an entity.
type LOD string

const (
	LOD0 LOD = "lod0"
	LOD1 LOD = "lod1"
)

// EntityType identifies the kind of entity.
type EntityType string

const (
	EntityDistrict EntityType = "district"
	EntityBuilding EntityType = "building"
	EntitySurface  EntityType = "surface"
	EntityOpenArea EntityType = "open_area"
)

// Vec3 is a 3D vector.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// BoundingBox defines an axis-aligned bounding box.
type BoundingBox struct {
	Min Vec3 `json:"min"`
	Max Vec3 `json:"max"`
}

// Entity is a single element in the scene graph. Position is the center of
// the footprint at the entity's base elevation.
type Entity struct {
	ID         string         `json:"id"`
	Type       EntityType     `json:"type"`
	Position   Vec3           `json:"position"`
	Dimensions Vec3           `json:"dimensions"`
	Rotation   [4]float64     `json:"rotation"` // quaternion [x, y, z, w]
	Material   string         `json:"material"`
	District   string         `json:"district,omitempty"`
	RoofType   string         `json:"roof_type,omitempty"`
	Function   string         `json:"function,omitempty"`
	LOD        LOD            `json:"lod"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Children   []string       `json:"children,omitempty"`
}

// Graph is the complete scene graph of one district.
type Graph struct {
	Metadata Metadata `json:"metadata"`
	Entities []Entity `json:"entities"`
	Groups   Groups   `json:"groups"`
}

// Metadata holds scene-level information.
type Metadata struct {
	Version     string      `json:"version"`
	GeneratedAt string      `json:"generated_at"`
	SRSName     string      `json:"srs_name"`
	Reference   Vec3        `json:"reference"`
	Bounds      BoundingBox `json:"bounds"`
}

// Groups organizes entity IDs by various axes for fast filtering.
type Groups struct {
	Districts   map[string][]string     `json:"districts"`
	RoofTypes   map[string][]string     `json:"roof_types"`
	Functions   map[string][]string     `json:"functions"`
	LODs        map[LOD][]string        `json:"lods"`
	EntityTypes map[EntityType][]string `json:"entity_types"`
}

// NewGraph creates an empty scene graph.
func NewGraph() *Graph {
	return &Graph{
		Entities: []Entity{},
		Groups: Groups{
			Districts:   make(map[string][]string),
			RoofTypes:   make(map[string][]string),
			Functions:   make(map[string][]string),
			LODs:        make(map[LOD][]string),
			EntityTypes: make(map[EntityType][]string),
		},
	}
}

// Entity returns the entity with the given id.
func (g *Graph) Entity(id string) (Entity, bool) {
	for _, e := range g.Entities {
		if e.ID == id {
			return e, true
		}
	}
	return Entity{}, false
}
