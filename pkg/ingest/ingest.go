// Package ingest imports a GeoJSON feature collection into a District.
// Each feature is reconstructed on its own; a feature that fails is
// reported and skipped, except for projection failures which abort the
// whole import.
package ingest

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"

	"github.com/ChicagoDave/cityenvelope/internal/metrics"
	"github.com/ChicagoDave/cityenvelope/pkg/config"
	"github.com/ChicagoDave/cityenvelope/pkg/geo"
	"github.com/ChicagoDave/cityenvelope/pkg/model"
	"github.com/ChicagoDave/cityenvelope/pkg/projection"
	"github.com/ChicagoDave/cityenvelope/pkg/reconstruct"
	"github.com/ChicagoDave/cityenvelope/pkg/validation"
)

// Feature type discriminator values.
const (
	TypeBuilding   = "building"
	TypeBoundaries = "boundaries"
)

// UsageMapper returns the usage breakdown of a building from its function
// code and raw properties. A nil result leaves the building without usages.
type UsageMapper func(function string, props geojson.Properties) map[string]float64

// Options control how feature properties become building attributes.
type Options struct {
	Fields config.Fields
	// FunctionMap remaps raw function codes; unknown codes pass through.
	FunctionMap map[string]string
	Usages      UsageMapper
	// MinFloorArea drops footprints below this area in m2.
	MinFloorArea float64
	// DefaultStoreyHeight applies when a feature has no storey height.
	// Zero extrudes a single storey. An explicit storey height of zero on a
	// feature is rejected.
	DefaultStoreyHeight float64
	SRSName             string
	CityName            string
	DistrictName        string
}

// OptionsFrom derives import options from a project profile.
func OptionsFrom(c *config.Import) Options {
	return Options{
		Fields:      c.Fields,
		FunctionMap: c.FunctionMap,
		Usages: func(function string, _ geojson.Properties) map[string]float64 {
			return c.Usages(function)
		},
		MinFloorArea:        c.MinFloorArea,
		DefaultStoreyHeight: c.DefaultStoreyHeight,
		SRSName:             c.SRS.Name,
		CityName:            c.City,
		DistrictName:        c.District,
	}
}

// Stats counts what happened to the features of one import.
type Stats struct {
	Features int `json:"features"`
	LOD0     int `json:"lod0"`
	LOD1     int `json:"lod1"`
	Dropped  int `json:"dropped"`
	Skipped  int `json:"skipped"`
}

// Result is the outcome of one import.
type Result struct {
	City     *model.City
	District *model.District
	Report   *validation.Report
	Stats    Stats
}

// ReadFile reads and imports the feature collection at path.
func ReadFile(path string, project projection.Func, opts Options) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading feature collection: %w", err)
	}
	return Decode(data, project, opts)
}

// Decode parses a GeoJSON feature collection and imports it.
func Decode(data []byte, project projection.Func, opts Options) (*Result, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parsing feature collection: %w", err)
	}
	return Import(fc, project, opts)
}

// importer holds the state of one import run.
type importer struct {
	opts      Options
	projector *projection.Projector
	report    *validation.Report
	stats     Stats
	maxZ      float64
	buildings []*model.Building
	footprint *geo.Polygon
}

// Import reconstructs every feature of fc and registers the buildings in a
// new District inside a new City. Extents come from the projected points
// and the tallest extrusion.
func Import(fc *geojson.FeatureCollection, project projection.Func, opts Options) (*Result, error) {
	start := time.Now()
	imp := &importer{
		opts:      opts,
		projector: projection.New(project),
		report:    validation.NewReport(),
	}

	for _, f := range fc.Features {
		if err := imp.feature(f); err != nil {
			return nil, err
		}
	}

	lower, upper := imp.projector.Bounds().Corners(0, imp.maxZ)
	srs := opts.SRSName
	if srs == "" {
		srs = projection.DefaultSRS
	}
	city := model.NewCity(srs, lower, upper)
	city.Name = opts.CityName
	district := model.NewDistrict(srs, lower, upper)
	district.Name = opts.DistrictName
	if imp.footprint != nil {
		district.SetFootprint(*imp.footprint)
	}
	for _, b := range imp.buildings {
		if prev, ok := district.Building(b.Name()); ok && prev != b {
			imp.report.AddWarning(validation.Result{
				Level:   validation.LevelImport,
				Feature: b.Name(),
				Message: "duplicate building id, the later feature replaces the earlier one",
			})
		}
		district.AddBuilding(b)
	}
	city.AddDistrict(district)

	imp.report.AddInfo(validation.Result{
		Level: validation.LevelImport,
		Message: fmt.Sprintf("%d features: %d LOD0 and %d LOD1 buildings, %d dropped below %.0f m2, %d skipped",
			imp.stats.Features, imp.stats.LOD0, imp.stats.LOD1, imp.stats.Dropped, opts.MinFloorArea, imp.stats.Skipped),
	})

	elapsed := time.Since(start)
	metrics.ImportDurationMs.Observe(float64(elapsed.Milliseconds()))
	zap.L().Info("import complete",
		zap.String("district", district.Name),
		zap.Int("features", imp.stats.Features),
		zap.Int("buildings", len(district.Buildings())),
		zap.Int("dropped", imp.stats.Dropped),
		zap.Int("skipped", imp.stats.Skipped),
		zap.Duration("duration", elapsed))

	return &Result{City: city, District: district, Report: imp.report, Stats: imp.stats}, nil
}

// feature handles one feature. Only an import-wide failure is returned.
func (imp *importer) feature(f *geojson.Feature) error {
	imp.stats.Features++
	metrics.FeaturesReadTotal.Inc()

	id := featureID(f, imp.opts.Fields.ID)
	switch kind := imp.featureType(f); kind {
	case TypeBuilding:
		return imp.building(id, f)
	case TypeBoundaries:
		return imp.boundary(id, f)
	default:
		imp.skip(id, metrics.ReasonType, fmt.Errorf("feature type %q is not imported", kind))
		return nil
	}
}

func (imp *importer) featureType(f *geojson.Feature) string {
	field := imp.opts.Fields.Type
	if field == "" {
		return TypeBuilding
	}
	if _, ok := f.Properties[field]; !ok {
		return TypeBuilding
	}
	return strings.ToLower(text(f.Properties[field]))
}

func (imp *importer) boundary(id string, f *geojson.Feature) error {
	if imp.footprint != nil {
		imp.report.AddInfo(validation.Result{
			Level:   validation.LevelImport,
			Feature: id,
			Message: "district footprint already set, boundary ignored",
		})
		return nil
	}
	b, err := reconstruct.Footprint(f.Geometry, reconstruct.Attributes{Name: id}, imp.projector)
	if err != nil {
		return imp.fail(id, metrics.ReasonGeometry, err)
	}
	footprint := b.Grounds()[0].PerimeterPolygon()
	imp.footprint = &footprint
	return nil
}

func (imp *importer) building(id string, f *geojson.Feature) error {
	fields := imp.opts.Fields
	props := f.Properties

	attrs, err := imp.attributes(id, props)
	if err != nil {
		imp.skip(id, metrics.ReasonAttributes, err)
		return nil
	}

	b, err := reconstruct.Footprint(f.Geometry, attrs, imp.projector)
	if err != nil {
		return imp.fail(id, metrics.ReasonGeometry, err)
	}

	if area := b.FloorArea(); area < imp.opts.MinFloorArea {
		imp.stats.Dropped++
		metrics.FootprintsDroppedTotal.Inc()
		zap.L().Debug("footprint below minimum floor area",
			zap.String("feature", id),
			zap.Float64("floor_area", area))
		return nil
	}

	height, ok, err := number(props, fields.Height)
	if err != nil {
		imp.skip(id, metrics.ReasonAttributes, err)
		return nil
	}
	if !ok || height == 0 {
		imp.stats.LOD0++
		metrics.BuildingsImportedTotal.WithLabelValues("lod0").Inc()
		imp.buildings = append(imp.buildings, b)
		return nil
	}

	storey, ok, err := number(props, fields.StoreyHeight)
	if err != nil {
		imp.skip(id, metrics.ReasonAttributes, err)
		return nil
	}
	if !ok {
		storey = imp.opts.DefaultStoreyHeight
		if storey == 0 {
			storey = height
		}
	}

	lod1, err := reconstruct.ExtrudeStoreys(b, height, storey)
	if err != nil {
		imp.skip(id, metrics.ReasonExtrusion, err)
		return nil
	}
	imp.buildings = append(imp.buildings, lod1)
	// A storey height above the feature height leaves only the grounds.
	if lod1.StoreysAboveGround() == 0 {
		imp.stats.LOD0++
		metrics.BuildingsImportedTotal.WithLabelValues("lod0").Inc()
		return nil
	}
	imp.maxZ = math.Max(imp.maxZ, height)
	imp.stats.LOD1++
	metrics.BuildingsImportedTotal.WithLabelValues("lod1").Inc()
	return nil
}

func (imp *importer) attributes(id string, props geojson.Properties) (reconstruct.Attributes, error) {
	fields := imp.opts.Fields
	attrs := reconstruct.Attributes{Name: id}

	year, ok, err := number(props, fields.Year)
	if err != nil {
		return attrs, err
	}
	if ok {
		if math.IsInf(year, 0) || year != math.Trunc(year) {
			return attrs, fmt.Errorf("year of construction %v is not a whole number", year)
		}
		attrs.YearOfConstruction = int(year)
	}

	if fields.Function != "" {
		if v, ok := props[fields.Function]; ok && v != nil {
			attrs.Function = text(v)
			if mapped, ok := imp.opts.FunctionMap[attrs.Function]; ok {
				attrs.Function = mapped
			}
		}
	}
	if imp.opts.Usages != nil {
		attrs.Usages = imp.opts.Usages(attrs.Function, props)
	}

	for _, field := range fields.Aliases {
		if v, ok := props[field]; ok && v != nil {
			if alias := text(v); alias != "" {
				attrs.Aliases = append(attrs.Aliases, alias)
			}
		}
	}
	return attrs, nil
}

// fail records a reconstruction failure. Projection failures abort the import.
func (imp *importer) fail(id, reason string, err error) error {
	if errors.Is(err, projection.ErrInvalidProjection) {
		zap.L().Error("projection failed, aborting import", zap.String("feature", id), zap.Error(err))
		return fmt.Errorf("feature %s: %w", id, err)
	}
	imp.skip(id, reason, err)
	return nil
}

func (imp *importer) skip(id, reason string, err error) {
	imp.stats.Skipped++
	metrics.FeaturesSkippedTotal.WithLabelValues(reason).Inc()
	level := validation.LevelImport
	if reason == metrics.ReasonGeometry || reason == metrics.ReasonExtrusion {
		level = validation.LevelGeometry
	}
	imp.report.AddWarning(validation.Result{
		Level:   level,
		Feature: id,
		Message: err.Error(),
	})
	zap.L().Warn("feature skipped",
		zap.String("feature", id),
		zap.String("reason", reason),
		zap.Error(err))
}

// featureID prefers the feature id, then the configured property, then a
// generated identifier.
func featureID(f *geojson.Feature, field string) string {
	if f.ID != nil {
		if id := text(f.ID); id != "" {
			return id
		}
	}
	if field != "" {
		if v, ok := f.Properties[field]; ok && v != nil {
			if id := text(v); id != "" {
				return id
			}
		}
	}
	return uuid.NewString()
}
