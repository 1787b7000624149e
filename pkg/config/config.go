package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ChicagoDave/cityenvelope/pkg/projection"
)

// ProfileName is the import profile file looked up in a project directory.
const ProfileName = "import.yaml"

// Environment overrides, applied after the profile is read. Variables set
// in the process environment win over the project .env file.
const (
	EnvSRS           = "CITYENVELOPE_SRS"
	EnvSRSDefinition = "CITYENVELOPE_SRS_DEFINITION"
	EnvMinFloorArea  = "CITYENVELOPE_MIN_FLOOR_AREA"
	EnvAddr          = "CITYENVELOPE_ADDR"
	EnvLogLevel      = "LOG_LEVEL"
	EnvLogFormat     = "LOG_FORMAT"
)

// Default returns the profile used for any field the YAML leaves out.
func Default() *Import {
	return &Import{
		Version:  "0.1.0",
		City:     "city",
		District: "district",
		Source:   "buildings.geojson",
		SRS:      SRS{Name: projection.DefaultSRS},
		Fields: Fields{
			ID:       "id",
			Height:   "height",
			Year:     "year_of_construction",
			Function: "function",
		},
		MinFloorArea: 25,
		Log:          LogDef{Level: "info", Format: "console"},
		Server:       ServerDef{Addr: ":3000"},
	}
}

// Load reads an import profile from a YAML file on top of Default.
func Load(path string) (*Import, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading import profile: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing import profile YAML: %w", err)
	}
	cfg.Dir = filepath.Dir(path)
	return cfg, nil
}

// LoadProject loads the import profile of a project directory. It reads
// import.yaml and then applies overrides from the environment and from an
// optional .env file in the same directory.
func LoadProject(projectDir string) (*Import, error) {
	cfg, err := Load(filepath.Join(projectDir, ProfileName))
	if err != nil {
		return nil, err
	}

	dotenv, err := godotenv.Read(filepath.Join(projectDir, ".env"))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("reading .env: %w", err)
	}
	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
	if err := cfg.ApplyEnv(lookup); err != nil {
		return nil, err
	}
	cfg.Dir = projectDir
	return cfg, nil
}

// ApplyEnv overrides profile fields from the given lookup.
func (c *Import) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvSRS); ok && v != "" {
		c.SRS.Name = v
		c.SRS.Definition = ""
	}
	if v, ok := lookup(EnvSRSDefinition); ok && v != "" {
		c.SRS.Definition = v
	}
	if v, ok := lookup(EnvMinFloorArea); ok && v != "" {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvMinFloorArea, err)
		}
		c.MinFloorArea = f
	}
	if v, ok := lookup(EnvAddr); ok && v != "" {
		c.Server.Addr = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	if v, ok := lookup(EnvLogFormat); ok && v != "" {
		c.Log.Format = strings.ToLower(v)
	}
	return nil
}

// SourcePath returns the feature collection path resolved against Dir.
func (c *Import) SourcePath() string {
	if filepath.IsAbs(c.Source) || c.Dir == "" {
		return c.Source
	}
	return filepath.Join(c.Dir, c.Source)
}

// Projection builds the projector function for the configured reference system.
func (c *Import) Projection() (projection.Func, error) {
	crs, err := projection.NewCRS(c.SRS.Name, c.SRS.Definition)
	if err != nil {
		return nil, err
	}
	return crs.Project, nil
}

// Usages returns a copy of the usage breakdown for a function code, or nil.
func (c *Import) Usages(function string) map[string]float64 {
	shares, ok := c.UsageMap[function]
	if !ok {
		return nil
	}
	out := make(map[string]float64, len(shares))
	for k, v := range shares {
		out[k] = v
	}
	return out
}
