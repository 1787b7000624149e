package model

import (
	"time"

	"github.com/ChicagoDave/cityenvelope/pkg/geo"
)

// OpenArea is an outdoor volume under study, such as a patio or an urban
// canyon. Adjacent buildings are referenced by name.
type OpenArea struct {
	Name      string      `json:"name"`
	Footprint geo.Polygon `json:"-"`
	Buildings []string    `json:"buildings,omitempty"`
}

// WeatherData is one set of atmospheric conditions.
type WeatherData struct {
	Time time.Time `json:"time"`
	// Temperature in degrees Celsius.
	Temperature float64 `json:"temperature"`
	// GlobalHorizontalRadiation in W/m2.
	GlobalHorizontalRadiation float64 `json:"global_horizontal_radiation"`
	// DiffuseRadiation in W/m2.
	DiffuseRadiation float64 `json:"diffuse_radiation"`
	// WindSpeed in m/s.
	WindSpeed float64 `json:"wind_speed"`
	// WindDirection in radians, North = 0, clockwise.
	WindDirection float64 `json:"wind_direction"`
	// RelativeHumidity as a ratio.
	RelativeHumidity float64 `json:"relative_humidity"`
	// Pressure in Pa.
	Pressure float64 `json:"pressure"`
	// SolarPosition is [azimuth, zenith angle] in radians.
	SolarPosition [2]float64 `json:"solar_position"`
}

// City groups districts under shared boundary conditions.
type City struct {
	Name string

	// Weather holds the boundary conditions, one entry per time step.
	Weather []WeatherData

	srsName   string
	lower     geo.Point
	upper     geo.Point
	districts []*District
}

// NewCity creates an empty city with a fixed extent.
func NewCity(srsName string, lower, upper geo.Point) *City {
	return &City{srsName: srsName, lower: lower, upper: upper}
}

// SRSName returns the spatial reference system identifier.
func (c *City) SRSName() string { return c.srsName }

// LowerCorner returns the minimum corner of the city extent.
func (c *City) LowerCorner() geo.Point { return c.lower }

// UpperCorner returns the maximum corner of the city extent.
func (c *City) UpperCorner() geo.Point { return c.upper }

// Districts returns the districts in insertion order.
func (c *City) Districts() []*District { return append([]*District(nil), c.districts...) }

// AddDistrict appends d and links it back to the city.
func (c *City) AddDistrict(d *District) {
	c.districts = append(c.districts, d)
	d.city = c
}

// Buildings returns every building across all districts.
func (c *City) Buildings() []*Building {
	var out []*Building
	for _, d := range c.districts {
		out = append(out, d.buildings...)
	}
	return out
}
