package config

// Import is the import profile of a project: where the footprints come from,
// which feature properties feed which building attributes, and the planar
// reference system they are projected into.
type Import struct {
	Version  string `yaml:"version" json:"version"`
	City     string `yaml:"city" json:"city"`
	District string `yaml:"district" json:"district"`
	// Source is the GeoJSON feature collection, relative to the project dir.
	Source string `yaml:"source" json:"source"`
	SRS    SRS    `yaml:"srs" json:"srs"`
	Fields Fields `yaml:"fields" json:"fields"`

	// FunctionMap remaps raw function codes to the codes stored on buildings.
	FunctionMap map[string]string `yaml:"function_map" json:"function_map,omitempty"`
	// UsageMap gives the usage breakdown for a (remapped) function code.
	UsageMap map[string]map[string]float64 `yaml:"usage_map" json:"usage_map,omitempty"`

	MinFloorArea        float64 `yaml:"min_floor_area" json:"min_floor_area"`
	DefaultStoreyHeight float64 `yaml:"default_storey_height" json:"default_storey_height"`

	Log    LogDef    `yaml:"log" json:"log"`
	Server ServerDef `yaml:"server" json:"server"`

	// Dir is the project directory the profile was loaded from.
	Dir string `yaml:"-" json:"-"`
}

// SRS names the target reference system. An empty Definition is looked up
// by name among the built-in proj4 definitions.
type SRS struct {
	Name       string `yaml:"name" json:"name"`
	Definition string `yaml:"definition" json:"definition,omitempty"`
}

// Fields are the feature property names read during import. An empty name
// means the attribute is not read.
type Fields struct {
	Type         string   `yaml:"type" json:"type"`
	ID           string   `yaml:"id" json:"id"`
	Height       string   `yaml:"height" json:"height"`
	StoreyHeight string   `yaml:"storey_height" json:"storey_height"`
	Year         string   `yaml:"year_of_construction" json:"year_of_construction"`
	Function     string   `yaml:"function" json:"function"`
	Aliases      []string `yaml:"aliases" json:"aliases,omitempty"`
}

type LogDef struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

type ServerDef struct {
	Addr string `yaml:"addr" json:"addr"`
}
