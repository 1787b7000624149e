package projection

import (
	"fmt"
	"strings"

	"github.com/ctessum/geom/proj"
)

// wgs84 is the source system of every GeoJSON document.
const wgs84 = "+proj=longlat +datum=WGS84 +no_defs"

// DefaultSRS is the planar system used when the import profile names none.
const DefaultSRS = "epsg:2062"

// Definitions maps the reference systems known by name to proj4 strings.
//
// epsg:2062 counts longitude from Madrid. The offset is folded into lon_0
// because the proj package applies +pm in the wrong unit.
var Definitions = map[string]string{
	"epsg:2062":  "+proj=lcc +lat_1=40 +lat_0=40 +lon_0=-3.687938888889 +k_0=0.9988085293 +x_0=600000 +y_0=600000 +a=6378298.3 +b=6356657.142669561 +units=m +no_defs",
	"epsg:3857":  "+proj=merc +a=6378137 +b=6378137 +lat_ts=0.0 +lon_0=0.0 +x_0=0.0 +y_0=0 +k=1.0 +units=m +nadgrids=@null +no_defs",
	"epsg:25830": "+proj=utm +zone=30 +ellps=GRS80 +units=m +no_defs",
	"epsg:32618": "+proj=utm +zone=18 +datum=WGS84 +units=m +no_defs",
	"epsg:26911": "+proj=utm +zone=11 +datum=NAD83 +units=m +no_defs",
}

// CRS is a planar target reference system fed from WGS84 longitude/latitude.
type CRS struct {
	Name       string
	Definition string
	transform  proj.Transformer
}

// NewCRS builds the transform for srsName. An empty definition is looked up
// in Definitions.
func NewCRS(srsName, definition string) (*CRS, error) {
	if definition == "" {
		def, ok := Definitions[strings.ToLower(srsName)]
		if !ok {
			return nil, fmt.Errorf("%w: unknown reference system %q", ErrInvalidProjection, srsName)
		}
		definition = def
	}

	src, err := proj.Parse(wgs84)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing source system: %v", ErrInvalidProjection, err)
	}
	dst, err := proj.Parse(definition)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", ErrInvalidProjection, srsName, err)
	}
	t, err := src.NewTransform(dst)
	if err != nil {
		return nil, fmt.Errorf("%w: creating transform to %s: %v", ErrInvalidProjection, srsName, err)
	}
	return &CRS{Name: srsName, Definition: definition, transform: t}, nil
}

// Project converts degrees of longitude/latitude to planar meters.
func (c *CRS) Project(lon, lat float64) (float64, float64, error) {
	return c.transform(lon, lat)
}
