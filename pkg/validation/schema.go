package validation

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ChicagoDave/cityenvelope/pkg/config"
	"github.com/ChicagoDave/cityenvelope/pkg/projection"
)

// ValidateConfig performs schema validation on a parsed import profile.
// It checks structural correctness before any feature is read.
func ValidateConfig(c *config.Import) *Report {
	r := NewReport()

	validateSource(c, r)
	validateSRS(c, r)
	validateFields(c, r)
	validateHeights(c, r)
	validateUsages(c, r)
	validateLog(c, r)

	return r
}

func validateSource(c *config.Import, r *Report) {
	if strings.TrimSpace(c.Source) == "" {
		r.AddError(Result{
			Level:    LevelSchema,
			Message:  "source must name a GeoJSON feature collection",
			Path:     "source",
			Expected: "non-empty path",
		})
	}
	if strings.TrimSpace(c.District) == "" {
		r.AddWarning(Result{
			Level:       LevelSchema,
			Message:     "district has no name",
			Path:        "district",
			Suggestions: []string{"Set district to the name used in reports and the scene graph"},
		})
	}
}

func validateSRS(c *config.Import, r *Report) {
	if c.SRS.Name == "" {
		r.AddError(Result{
			Level:    LevelSchema,
			Message:  "srs.name must be set",
			Path:     "srs.name",
			Expected: "reference system name such as " + projection.DefaultSRS,
		})
		return
	}
	if c.SRS.Definition != "" {
		return
	}
	if _, ok := projection.Definitions[strings.ToLower(c.SRS.Name)]; !ok {
		known := make([]string, 0, len(projection.Definitions))
		for name := range projection.Definitions {
			known = append(known, name)
		}
		sort.Strings(known)
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     fmt.Sprintf("unknown reference system %q without a proj4 definition", c.SRS.Name),
			Path:        "srs.definition",
			ActualValue: c.SRS.Name,
			Expected:    strings.Join(known, ", "),
			Suggestions: []string{"Add srs.definition with the proj4 string of the target system"},
		})
	}
}

func validateFields(c *config.Import, r *Report) {
	if c.Fields.Height == "" {
		r.AddInfo(Result{
			Level:   LevelSchema,
			Message: "fields.height is empty: buildings stay as footprints (LOD0)",
			Path:    "fields.height",
		})
	}
	seen := map[string]bool{}
	for i, a := range c.Fields.Aliases {
		path := fmt.Sprintf("fields.aliases[%d]", i)
		if a == "" {
			r.AddError(Result{Level: LevelSchema, Message: "alias field name is empty", Path: path})
			continue
		}
		if seen[a] {
			r.AddWarning(Result{
				Level:       LevelSchema,
				Message:     fmt.Sprintf("alias field %q is listed twice", a),
				Path:        path,
				ActualValue: a,
			})
		}
		seen[a] = true
	}
}

func validateHeights(c *config.Import, r *Report) {
	if c.MinFloorArea < 0 || math.IsNaN(c.MinFloorArea) {
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     fmt.Sprintf("min_floor_area %.2f must be >= 0", c.MinFloorArea),
			Path:        "min_floor_area",
			ActualValue: c.MinFloorArea,
			Expected:    ">= 0",
		})
	}
	if c.DefaultStoreyHeight < 0 || math.IsNaN(c.DefaultStoreyHeight) {
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     fmt.Sprintf("default_storey_height %.2f must be >= 0", c.DefaultStoreyHeight),
			Path:        "default_storey_height",
			ActualValue: c.DefaultStoreyHeight,
			Expected:    ">= 0 (0 means one storey per building)",
		})
	}
}

func validateUsages(c *config.Import, r *Report) {
	functions := make([]string, 0, len(c.UsageMap))
	for f := range c.UsageMap {
		functions = append(functions, f)
	}
	sort.Strings(functions)

	for _, f := range functions {
		sum := 0.0
		for name, share := range c.UsageMap[f] {
			if share < 0 {
				r.AddError(Result{
					Level:       LevelSchema,
					Message:     fmt.Sprintf("usage_map.%s.%s must be non-negative", f, name),
					Path:        fmt.Sprintf("usage_map.%s.%s", f, name),
					ActualValue: share,
					Expected:    ">= 0",
				})
			}
			sum += share
		}
		if math.Abs(sum-1.0) > 0.01 {
			r.AddError(Result{
				Level:       LevelSchema,
				Message:     fmt.Sprintf("usage shares of %s must sum to 1.0 (got %.4f)", f, sum),
				Path:        "usage_map." + f,
				ActualValue: sum,
				Expected:    "1.0 (±0.01)",
				Suggestions: []string{"Adjust usage shares so they sum to 1.0"},
			})
		}
	}
}

func validateLog(c *config.Import, r *Report) {
	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		r.AddWarning(Result{
			Level:       LevelSchema,
			Message:     fmt.Sprintf("unknown log level %q, using info", c.Log.Level),
			Path:        "log.level",
			ActualValue: c.Log.Level,
			Expected:    "debug, info, warn or error",
		})
	}
	switch c.Log.Format {
	case "", "console", "json":
	default:
		r.AddWarning(Result{
			Level:       LevelSchema,
			Message:     fmt.Sprintf("unknown log format %q, using console", c.Log.Format),
			Path:        "log.format",
			ActualValue: c.Log.Format,
			Expected:    "console or json",
		})
	}
}
