package scene2d

// Plan is the top-down view of a district for an SVG renderer. Coordinates
// are [east, north] in meters relative to the district reference point.
type Plan struct {
	Metadata  Metadata        `json:"metadata"`
	Boundary  [][2]float64    `json:"boundary,omitempty"`
	Buildings []Building2D    `json:"buildings"`
	OpenAreas []OpenArea2D    `json:"open_areas"`
	Summary   BuildingSummary `json:"summary"`
}

// Metadata holds district-level data.
type Metadata struct {
	District    string        `json:"district"`
	SRSName     string        `json:"srs_name"`
	Reference   [2]float64    `json:"reference"`
	Extent      [2][2]float64 `json:"extent"`
	GeneratedAt string        `json:"generated_at"`
}

// Building2D is the outline of one building.
type Building2D struct {
	ID        string         `json:"id"`
	Outlines  [][][2]float64 `json:"outlines"`
	Centroid  [2]float64     `json:"centroid"`
	Height    float64        `json:"height"`
	Storeys   int            `json:"storeys"`
	Function  string         `json:"function,omitempty"`
	RoofType  string         `json:"roof_type"`
	FloorArea float64        `json:"floor_area"`
	Extruded  bool           `json:"extruded"`
}

// OpenArea2D is an unbuilt area of the district.
type OpenArea2D struct {
	ID        string       `json:"id"`
	Polygon   [][2]float64 `json:"polygon"`
	AreaM2    float64      `json:"area_m2"`
	Buildings []string     `json:"buildings,omitempty"`
}

// BuildingSummary holds aggregate building data.
type BuildingSummary struct {
	TotalBuildings int                    `json:"total_buildings"`
	Extruded       int                    `json:"extruded"`
	TotalFloorArea float64                `json:"total_floor_area"`
	TotalVolume    float64                `json:"total_volume"`
	ByFunction     map[string]FunctionSum `json:"by_function"`
	ByRoofType     map[string]int         `json:"by_roof_type"`
}

// FunctionSum is the building aggregate for one function.
type FunctionSum struct {
	Count     int     `json:"count"`
	FloorArea float64 `json:"floor_area"`
	Volume    float64 `json:"volume"`
}

// unknownFunction keys buildings without a function in ByFunction.
const unknownFunction = "unknown"
