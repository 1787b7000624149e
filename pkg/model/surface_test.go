package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ChicagoDave/cityenvelope/pkg/geo"
)

const tolerance = 1e-9

func TestClassifyCosineThresholds(t *testing.T) {
	cases := []struct {
		c    float64
		want SurfaceType
	}{
		{-1, SurfaceGround},
		{-0.98, SurfaceGround},
		{math.Nextafter(-0.98, 0), SurfaceRoof},
		{-0.5, SurfaceRoof},
		{math.Nextafter(-0.17, -1), SurfaceRoof},
		{-0.17, SurfaceWall},
		{0, SurfaceWall},
		{0.17, SurfaceWall},
		{math.Nextafter(0.17, 1), SurfaceRoof},
		{1, SurfaceRoof},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ClassifyCosine(tc.c), "cos=%v", tc.c)
	}
}

func TestClassifyPartitionsZenithDomain(t *testing.T) {
	const steps = 3600
	for i := 0; i <= steps; i++ {
		zenith := math.Pi * float64(i) / steps
		c := math.Cos(zenith)
		got := Classify(zenith)

		var want SurfaceType
		switch {
		case c <= -0.98:
			want = SurfaceGround
		case math.Abs(c) <= 0.17:
			want = SurfaceWall
		default:
			want = SurfaceRoof
		}
		assert.Equal(t, want, got, "zenith=%v", zenith)
	}
}

func TestClassifyCardinalAngles(t *testing.T) {
	assert.Equal(t, SurfaceRoof, Classify(0))
	assert.Equal(t, SurfaceWall, Classify(math.Pi/2))
	assert.Equal(t, SurfaceGround, Classify(math.Pi))
	assert.Equal(t, SurfaceWall, Classify(100*math.Pi/180))
	assert.Equal(t, SurfaceRoof, Classify(30*math.Pi/180))
}

func TestAzimuth(t *testing.T) {
	assert.InDelta(t, 0, Azimuth(geo.Pt(0, 1, 0)), tolerance)
	assert.InDelta(t, math.Pi/2, Azimuth(geo.Pt(1, 0, 0)), tolerance)
	assert.InDelta(t, math.Pi, Azimuth(geo.Pt(0, -1, 0)), tolerance)
	assert.InDelta(t, 3*math.Pi/2, Azimuth(geo.Pt(-1, 0, 0)), tolerance)
}

func TestZenithAngle(t *testing.T) {
	assert.InDelta(t, 0, ZenithAngle(geo.Pt(0, 0, 1)), tolerance)
	assert.InDelta(t, math.Pi/2, ZenithAngle(geo.Pt(1, 0, 0)), tolerance)
	assert.InDelta(t, math.Pi, ZenithAngle(geo.Pt(0, 0, -1)), tolerance)
	// Rounding noise past 1 must not produce NaN.
	assert.InDelta(t, 0, ZenithAngle(geo.Pt(0, 0, 1+1e-15)), tolerance)
}

func footprint() geo.Polygon {
	// Clockwise seen from above: faces down.
	return geo.NewPolygon(geo.Pt(0, 10, 0), geo.Pt(10, 10, 0), geo.Pt(10, 0, 0), geo.Pt(0, 0, 0))
}

func TestNewSurfaceClassifiesGround(t *testing.T) {
	s := NewSurface(footprint(), footprint())
	assert.Equal(t, SurfaceGround, s.Type())
	assert.InDelta(t, math.Pi, s.ZenithAngle(), tolerance)
	assert.InDelta(t, 100, s.PerimeterArea(), tolerance)
	assert.Equal(t, geo.Pt(0, 0, 0), s.LowerCorner())
	assert.Equal(t, geo.Pt(10, 10, 0), s.UpperCorner())
	assert.Equal(t, -1, s.ID())
	assert.NotEmpty(t, s.Name())
}

func TestNewSurfaceClassifiesWallAndRoof(t *testing.T) {
	wall := geo.NewPolygon(geo.Pt(0, 0, 0), geo.Pt(4, 0, 0), geo.Pt(4, 0, 3), geo.Pt(0, 0, 3))
	w := NewSurface(wall, wall)
	assert.Equal(t, SurfaceWall, w.Type())
	assert.InDelta(t, math.Pi, w.Azimuth(), tolerance) // faces south

	roof := footprint().Reverse().AtElevation(3)
	assert.Equal(t, SurfaceRoof, NewSurface(roof, roof).Type())
}

func TestNewTypedSurfaceKeepsSuppliedType(t *testing.T) {
	s := NewTypedSurface(footprint(), footprint(), SurfaceInteriorSlab)
	assert.Equal(t, SurfaceInteriorSlab, s.Type())
}

func TestSurfaceInverse(t *testing.T) {
	s := NewSurface(footprint(), footprint())
	inv := s.Inverse()
	assert.Equal(t, SurfaceVirtualInternal, inv.Type())
	assert.InDelta(t, 0, inv.ZenithAngle(), tolerance)
	assert.Equal(t, s.Name(), inv.Name())
	assert.Nil(t, inv.HolesPolygons())
}
