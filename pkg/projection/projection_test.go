package projection

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChicagoDave/cityenvelope/pkg/geo"
)

func scaled(lon, lat float64) (float64, float64, error) {
	return lon * 1000, lat * 1000, nil
}

func TestProjectRing(t *testing.T) {
	p := New(scaled)
	pts, err := p.ProjectRing(orb.Ring{{1, 2}, {3, 2}, {3, 4}, {1, 2}})
	require.NoError(t, err)
	assert.Equal(t, []geo.Point{
		geo.Pt(1000, 2000, 0), geo.Pt(3000, 2000, 0), geo.Pt(3000, 4000, 0), geo.Pt(1000, 2000, 0),
	}, pts)
}

func TestBoundsAccumulateAcrossRings(t *testing.T) {
	p := New(Identity)
	_, err := p.ProjectRing(orb.Ring{{0, 0}, {10, 0}, {10, 10}, {0, 0}})
	require.NoError(t, err)
	_, err = p.ProjectRing(orb.Ring{{-5, 3}, {2, 20}, {1, 1}, {-5, 3}})
	require.NoError(t, err)

	lo, hi := p.Bounds().Corners(0, 12)
	assert.Equal(t, geo.Pt(-5, 0, 0), lo)
	assert.Equal(t, geo.Pt(10, 20, 12), hi)
}

func TestBoundsEmpty(t *testing.T) {
	b := NewBounds()
	assert.True(t, b.Empty())
	lo, hi := b.Corners(0, 5)
	assert.Equal(t, geo.Point{}, lo)
	assert.Equal(t, geo.Point{}, hi)
}

func TestBoundsConcurrentExtend(t *testing.T) {
	b := NewBounds()
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b.Extend(float64(i), float64(-i))
		}(i)
	}
	wg.Wait()
	lo, hi := b.Corners(0, 0)
	assert.Equal(t, geo.Pt(0, -63, 0), lo)
	assert.Equal(t, geo.Pt(63, 0, 0), hi)
}

func TestProjectRingFailureIsInvalidProjection(t *testing.T) {
	boom := errors.New("boom")
	p := New(func(lon, lat float64) (float64, float64, error) { return 0, 0, boom })
	_, err := p.ProjectRing(orb.Ring{{0, 0}})
	assert.ErrorIs(t, err, ErrInvalidProjection)

	p = New(func(lon, lat float64) (float64, float64, error) { return math.NaN(), 0, nil })
	_, err = p.ProjectRing(orb.Ring{{0, 0}})
	assert.ErrorIs(t, err, ErrInvalidProjection)
}

func TestNewCRSUnknown(t *testing.T) {
	_, err := NewCRS("epsg:0000", "")
	assert.ErrorIs(t, err, ErrInvalidProjection)
}

func TestNewCRSWebMercator(t *testing.T) {
	crs, err := NewCRS("EPSG:3857", "")
	require.NoError(t, err)

	x, y, err := crs.Project(0, 0)
	require.NoError(t, err)
	assert.InDelta(t, 0, x, 1e-6)
	assert.InDelta(t, 0, y, 1e-6)

	// One degree of longitude on the equator of the spherical model.
	x, _, err = crs.Project(1, 0)
	require.NoError(t, err)
	assert.InDelta(t, 6378137*math.Pi/180, x, 1e-3)
}

func TestNewCRSDeterministic(t *testing.T) {
	crs, err := NewCRS("epsg:25830", "")
	require.NoError(t, err)
	x1, y1, err := crs.Project(-3.7038, 40.4168)
	require.NoError(t, err)
	x2, y2, err := crs.Project(-3.7038, 40.4168)
	require.NoError(t, err)
	assert.Equal(t, x1, x2)
	assert.Equal(t, y1, y2)
	// Madrid sits near the central meridian of UTM zone 30.
	assert.InDelta(t, 440000, x1, 5000)
	assert.InDelta(t, 4474000, y1, 5000)
}

func TestNewCRSMadridLambert(t *testing.T) {
	crs, err := NewCRS(DefaultSRS, "")
	require.NoError(t, err)

	// The natural origin lies on the Madrid meridian at 40N.
	x, y, err := crs.Project(-3.687938888889, 40)
	require.NoError(t, err)
	assert.InDelta(t, 600000, x, 1e-3)
	assert.InDelta(t, 600000, y, 1e-3)

	x, y, err = crs.Project(-3.7038, 40.4168)
	require.NoError(t, err)
	assert.InDelta(t, 598655.3, x, 1)
	assert.InDelta(t, 646226.1, y, 1)
}

func TestNewCRSMadridLambertAxes(t *testing.T) {
	crs, err := NewCRS(DefaultSRS, "")
	require.NoError(t, err)

	x0, y0, err := crs.Project(-3.7038, 40.4168)
	require.NoError(t, err)

	// A due-east step grows X and leaves Y put.
	x1, y1, err := crs.Project(-3.7037, 40.4168)
	require.NoError(t, err)
	assert.InDelta(t, 8.48, x1-x0, 0.05)
	assert.InDelta(t, 0, y1-y0, 0.01)

	// A due-north step grows Y.
	x2, y2, err := crs.Project(-3.7038, 40.4178)
	require.NoError(t, err)
	assert.Greater(t, y2-y0, 100.0)
	assert.InDelta(t, 0, x2-x0, 0.1)
}
