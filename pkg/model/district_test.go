package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ChicagoDave/cityenvelope/pkg/geo"
)

// box returns the envelope of a 10x10 block of the given height.
func box(height float64) []*Surface {
	ground := footprint()
	roof := ground.Reverse().AtElevation(height)
	out := []*Surface{NewSurface(ground, ground), NewSurface(roof, roof)}
	for i := 0; i < roof.Len(); i++ {
		a, b := roof.Edge(i)
		w := geo.NewPolygon(a.WithZ(0), b.WithZ(0), b, a)
		out = append(out, NewSurface(w, w))
	}
	return out
}

func observe(t *testing.T) *observer.ObservedLogs {
	core, logs := observer.New(zapcore.WarnLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	t.Cleanup(restore)
	return logs
}

// --- Building tests ---

func TestNewBuildingPartitionsSurfaces(t *testing.T) {
	b := NewBuilding("b1", box(6), 1990, "residential")

	assert.Len(t, b.Surfaces(), 6)
	assert.Len(t, b.Grounds(), 1)
	assert.Len(t, b.Roofs(), 1)
	assert.Len(t, b.Walls(), 4)
	assert.Empty(t, b.InteriorSlabs())

	for i, s := range b.Surfaces() {
		assert.Equal(t, i, s.ID())
	}
	assert.Equal(t, 1990, b.YearOfConstruction)
	assert.Equal(t, "residential", b.Function)
}

func TestBuildingBoundingBox(t *testing.T) {
	b := NewBuilding("b1", box(6), 0, "")
	assert.Equal(t, geo.Pt(0, 0, 0), b.LowerCorner())
	assert.Equal(t, geo.Pt(10, 10, 6), b.UpperCorner())
	assert.Equal(t, 6.0, b.MaxHeight())
}

func TestBuildingDerivedAttributes(t *testing.T) {
	b := NewBuilding("b1", box(6), 0, "")
	assert.InDelta(t, 100, b.FloorArea(), tolerance)
	assert.InDelta(t, 6, b.EaveHeight(), tolerance)
	assert.Equal(t, RoofFlat, b.RoofType())

	b.AverageStoreyHeight = 3
	assert.Equal(t, 2, b.StoreysAboveGround())
	b.SetStoreysAboveGround(5)
	assert.Equal(t, 5, b.StoreysAboveGround())

	b.SetVolume(600)
	assert.Equal(t, 600.0, b.Volume())
}

func TestBuildingPitchedRoof(t *testing.T) {
	ground := footprint()
	// Single plane rising 10 m over 10 m: 45 degrees.
	slope := geo.NewPolygon(geo.Pt(0, 0, 3), geo.Pt(10, 0, 3), geo.Pt(10, 10, 13), geo.Pt(0, 10, 13))
	b := NewBuilding("b1", []*Surface{NewSurface(ground, ground), NewSurface(slope, slope)}, 0, "")
	require.Len(t, b.Roofs(), 1)
	assert.InDelta(t, math.Pi/4, b.Roofs()[0].ZenithAngle(), tolerance)
	assert.Equal(t, RoofPitch, b.RoofType())
}

func TestBuildingWithoutSurfaces(t *testing.T) {
	b := NewBuilding("empty", nil, 0, "")
	assert.Equal(t, 0.0, b.FloorArea())
	assert.Equal(t, 0.0, b.EaveHeight())
	assert.Equal(t, geo.Point{}, b.LowerCorner())
}

func TestBuildingLogsVirtualSurface(t *testing.T) {
	logs := observe(t)
	ground := NewSurface(footprint(), footprint())
	b := NewBuilding("b1", []*Surface{ground, ground.Inverse()}, 0, "")
	assert.Len(t, b.Surfaces(), 2)
	assert.Len(t, b.Grounds(), 1)
	assert.Equal(t, 1, logs.FilterMessage("unexpected surface type").Len())
}

// --- District registry tests ---

func newDistrict() *District {
	return NewDistrict("epsg:2062", geo.Pt(0, 0, 0), geo.Pt(100, 50, 20))
}

func TestDistrictAddAndLookup(t *testing.T) {
	d := newDistrict()
	b := NewBuilding("b1", box(3), 0, "")
	d.AddBuilding(b)

	got, ok := d.Building("b1")
	require.True(t, ok)
	assert.Same(t, b, got)
	assert.Same(t, d, b.District())

	_, ok = d.Building("missing")
	assert.False(t, ok)
}

func TestDistrictNameCollisionLastWriteWins(t *testing.T) {
	d := newDistrict()
	first := NewBuilding("dup", box(3), 0, "")
	second := NewBuilding("dup", box(6), 0, "")
	d.AddBuilding(first)
	d.AddBuilding(second)

	assert.Len(t, d.Buildings(), 2)
	got, ok := d.Building("dup")
	require.True(t, ok)
	assert.Same(t, second, got)

	// Removing the newer one re-exposes the older one.
	d.RemoveBuilding(second)
	got, ok = d.Building("dup")
	require.True(t, ok)
	assert.Same(t, first, got)

	d.RemoveBuilding(first)
	_, ok = d.Building("dup")
	assert.False(t, ok)
}

func TestDistrictRemoveRebuildsIndex(t *testing.T) {
	d := newDistrict()
	a := NewBuilding("a", box(3), 0, "")
	b := NewBuilding("b", box(3), 0, "")
	c := NewBuilding("c", box(3), 0, "")
	d.AddBuilding(a)
	d.AddBuilding(b)
	d.AddBuilding(c)

	d.RemoveBuilding(a)
	assert.Len(t, d.Buildings(), 2)
	got, ok := d.Building("c")
	require.True(t, ok)
	assert.Same(t, c, got)
	got, ok = d.Building("b")
	require.True(t, ok)
	assert.Same(t, b, got)
	assert.Nil(t, a.District())
}

func TestDistrictRemoveAbsentWarns(t *testing.T) {
	logs := observe(t)
	d := newDistrict()
	stranger := NewBuilding("x", box(3), 0, "")

	d.RemoveBuilding(stranger)
	assert.Equal(t, 1, logs.Len())

	d.AddBuilding(NewBuilding("a", box(3), 0, ""))
	d.RemoveBuilding(stranger)
	assert.Equal(t, 2, logs.Len())
	assert.Len(t, d.Buildings(), 1)
}

func TestDistrictRemoveNilWarns(t *testing.T) {
	logs := observe(t)
	d := newDistrict()
	d.AddBuilding(NewBuilding("a", box(3), 0, ""))
	d.AddOpenArea(&OpenArea{Name: "patio"})

	assert.NotPanics(t, func() { d.RemoveBuilding(nil) })
	assert.NotPanics(t, func() { d.RemoveOpenArea(nil) })

	newDistrict().RemoveBuilding(nil)
	newDistrict().RemoveOpenArea(nil)

	assert.Equal(t, 4, logs.Len())
	assert.Equal(t, 2, logs.FilterMessage("impossible to remove a nil building").Len())
	assert.Equal(t, 2, logs.FilterMessage("impossible to remove a nil open area").Len())
	assert.Len(t, d.Buildings(), 1)
	assert.Len(t, d.OpenAreas(), 1)
}

func TestDistrictAliases(t *testing.T) {
	d := newDistrict()
	b := NewBuilding("b1", box(3), 0, "")
	b.AddAlias("cadastre-17")
	d.AddBuilding(b)
	b.AddAlias("osm-42")

	for _, alias := range []string{"cadastre-17", "osm-42"} {
		got, ok := d.BuildingByAlias(alias)
		require.True(t, ok, alias)
		assert.Same(t, b, got)
	}
	assert.Equal(t, []string{"cadastre-17", "osm-42"}, b.Aliases())

	d.RemoveBuilding(b)
	_, ok := d.BuildingByAlias("osm-42")
	assert.False(t, ok)
}

func TestDistrictExtentIsFrozen(t *testing.T) {
	d := newDistrict()
	far := NewBuilding("far", box(90), 0, "")
	d.AddBuilding(far)
	assert.Equal(t, geo.Pt(100, 50, 20), d.UpperCorner())
	assert.Equal(t, geo.Pt(0, 0, 0), d.ReferenceCoordinates())
}

func TestDistrictArea(t *testing.T) {
	d := newDistrict()
	assert.InDelta(t, 5000, d.Area(), tolerance)
	d.SetFootprint(footprint())
	assert.InDelta(t, 100, d.Area(), tolerance)
}

func TestDistrictOpenAreas(t *testing.T) {
	logs := observe(t)
	d := newDistrict()
	patio := &OpenArea{Name: "patio", Buildings: []string{"b1"}}
	d.AddOpenArea(patio)

	got, ok := d.OpenArea("patio")
	require.True(t, ok)
	assert.Same(t, patio, got)

	d.RemoveOpenArea(patio)
	_, ok = d.OpenArea("patio")
	assert.False(t, ok)

	d.RemoveOpenArea(patio)
	assert.Equal(t, 1, logs.Len())
}

func TestCityDistricts(t *testing.T) {
	c := NewCity("epsg:2062", geo.Pt(0, 0, 0), geo.Pt(100, 50, 20))
	d := newDistrict()
	d.AddBuilding(NewBuilding("a", box(3), 0, ""))
	c.AddDistrict(d)

	assert.Same(t, c, d.City())
	assert.Len(t, c.Districts(), 1)
	assert.Len(t, c.Buildings(), 1)
}
