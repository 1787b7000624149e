package validation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChicagoDave/cityenvelope/pkg/config"
)

func validConfig() *config.Import {
	c := config.Default()
	c.Fields.Aliases = []string{"cadastral_ref"}
	c.UsageMap = map[string]map[string]float64{
		"residential": {"residential": 0.8, "retail": 0.2},
	}
	c.DefaultStoreyHeight = 3
	return c
}

func TestValidateConfigValid(t *testing.T) {
	r := ValidateConfig(validConfig())
	assert.True(t, r.Valid, "unexpected errors: %v", r.Errors)
	assert.Empty(t, r.Warnings)
}

func TestValidateConfigEmptySource(t *testing.T) {
	c := validConfig()
	c.Source = " "
	r := ValidateConfig(c)
	assert.False(t, r.Valid, "expected invalid report for empty source")
	require.NotEmpty(t, r.Errors)
	assert.Equal(t, "source", r.Errors[0].Path)
}

func TestValidateConfigUnknownSRS(t *testing.T) {
	c := validConfig()
	c.SRS.Name = "epsg:9999"
	r := ValidateConfig(c)
	require.False(t, r.Valid, "expected invalid report for unknown reference system")
	assert.Equal(t, "srs.definition", r.Errors[0].Path)
	assert.NotEmpty(t, r.Errors[0].Suggestions)
}

func TestValidateConfigCustomDefinition(t *testing.T) {
	c := validConfig()
	c.SRS = config.SRS{Name: "local", Definition: "+proj=utm +zone=33 +datum=WGS84 +units=m +no_defs"}
	r := ValidateConfig(c)
	assert.True(t, r.Valid, "a custom definition should be accepted, got %v", r.Errors)
}

func TestValidateConfigMissingSRSName(t *testing.T) {
	c := validConfig()
	c.SRS = config.SRS{}
	r := ValidateConfig(c)
	assert.False(t, r.Valid, "expected invalid report for missing srs.name")
}

func TestValidateConfigNegativeAreas(t *testing.T) {
	c := validConfig()
	c.MinFloorArea = -1
	c.DefaultStoreyHeight = math.NaN()
	r := ValidateConfig(c)
	require.Len(t, r.Errors, 2)
	assert.Equal(t, "min_floor_area", r.Errors[0].Path)
	assert.Equal(t, "default_storey_height", r.Errors[1].Path)
}

func TestValidateConfigZeroFloorAreaAllowed(t *testing.T) {
	c := validConfig()
	c.MinFloorArea = 0
	r := ValidateConfig(c)
	assert.True(t, r.Valid, "min_floor_area 0 disables the filter and should be valid: %v", r.Errors)
}

func TestValidateConfigUsageSum(t *testing.T) {
	c := validConfig()
	c.UsageMap["office"] = map[string]float64{"office": 0.5, "retail": 0.3}
	r := ValidateConfig(c)
	require.False(t, r.Valid, "expected invalid report when usage shares do not sum to 1")
	assert.Equal(t, "usage_map.office", r.Errors[0].Path)
}

func TestValidateConfigNegativeUsage(t *testing.T) {
	c := validConfig()
	c.UsageMap["office"] = map[string]float64{"office": 1.5, "retail": -0.5}
	r := ValidateConfig(c)
	require.Len(t, r.Errors, 1)
	assert.Equal(t, "usage_map.office.retail", r.Errors[0].Path)
}

func TestValidateConfigAliases(t *testing.T) {
	c := validConfig()
	c.Fields.Aliases = []string{"ref", "", "ref"}
	r := ValidateConfig(c)
	assert.Len(t, r.Errors, 1, "the empty alias is an error")
	assert.Len(t, r.Warnings, 1, "the duplicate alias is a warning")
}

func TestValidateConfigNoHeightIsInfo(t *testing.T) {
	c := validConfig()
	c.Fields.Height = ""
	r := ValidateConfig(c)
	assert.True(t, r.Valid, "missing height field should not invalidate the profile")
	assert.Len(t, r.Info, 1)
}

func TestValidateConfigLogSettings(t *testing.T) {
	c := validConfig()
	c.Log.Level = "verbose"
	c.Log.Format = "xml"
	r := ValidateConfig(c)
	assert.True(t, r.Valid, "log settings should only warn")
	assert.Len(t, r.Warnings, 2)
}
