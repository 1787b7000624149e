package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChicagoDave/cityenvelope/internal/metrics"
	"github.com/ChicagoDave/cityenvelope/pkg/config"
	"github.com/ChicagoDave/cityenvelope/pkg/ingest"
	"github.com/ChicagoDave/cityenvelope/pkg/projection"
	"github.com/ChicagoDave/cityenvelope/pkg/scene"
	"github.com/ChicagoDave/cityenvelope/pkg/scene2d"
	"github.com/ChicagoDave/cityenvelope/pkg/validation"
)

const collection = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "id": "tower",
      "properties": {"height": 9, "storey_height": 3, "function": "residential", "ref": "T-1"},
      "geometry": {"type": "Polygon", "coordinates": [[[0, 0], [10, 0], [10, 10], [0, 10], [0, 0]]]}
    },
    {
      "type": "Feature",
      "id": "shed",
      "properties": {},
      "geometry": {"type": "Polygon", "coordinates": [[[20, 0], [30, 0], [30, 10], [20, 10], [20, 0]]]}
    },
    {
      "type": "Feature",
      "id": "path",
      "properties": {},
      "geometry": {"type": "LineString", "coordinates": [[0, 0], [5, 5]]}
    }
  ]
}`

func loader(doc string) Loader {
	return func() (*ingest.Result, error) {
		opts := ingest.OptionsFrom(config.Default())
		opts.Fields.StoreyHeight = "storey_height"
		opts.Fields.Aliases = []string{"ref"}
		opts.DistrictName = "centre"
		return ingest.Decode([]byte(doc), projection.Identity, opts)
	}
}

func newTestServer(t *testing.T) (*Server, http.Handler) {
	t.Helper()
	s := New("testdata", ":0", "0.1.0", loader(collection))
	_, err := s.Reload()
	require.NoError(t, err)
	return s, s.Handler()
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestDistrict(t *testing.T) {
	_, h := newTestServer(t)

	rec := get(t, h, "/api/district")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var sum DistrictSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sum))
	assert.Equal(t, "centre", sum.Name)
	assert.Equal(t, "city", sum.City)
	assert.Equal(t, 2, sum.Buildings)
	assert.Equal(t, [3]float64{0, 0, 0}, sum.Lower)
	assert.Equal(t, [3]float64{30, 10, 9}, sum.Upper)
	assert.Equal(t, ingest.Stats{Features: 3, LOD0: 1, LOD1: 1, Skipped: 1}, sum.Stats)
}

func TestBuildings(t *testing.T) {
	_, h := newTestServer(t)

	rec := get(t, h, "/api/buildings")
	require.Equal(t, http.StatusOK, rec.Code)

	var list []BuildingSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 2)
	assert.Equal(t, "tower", list[0].Name)
	assert.Equal(t, "shed", list[1].Name)
}

func TestBuildingByNameAndAlias(t *testing.T) {
	_, h := newTestServer(t)

	for _, name := range []string{"tower", "T-1"} {
		rec := get(t, h, "/api/buildings/"+name)
		require.Equal(t, http.StatusOK, rec.Code, name)

		var b BuildingSummary
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &b))
		assert.Equal(t, "tower", b.Name)
		assert.Equal(t, []string{"T-1"}, b.Aliases)
		assert.Equal(t, 3, b.Storeys)
		assert.InDelta(t, 900, b.Volume, 1e-9)
		assert.InDelta(t, 100, b.FloorArea, 1e-9)
		assert.Equal(t, "flat", b.RoofType)
		assert.Equal(t, map[string]int{"Ground": 1, "Wall": 12, "Roof": 1, "InteriorSlab": 5}, b.Surfaces)
	}
}

func TestBuildingNotFound(t *testing.T) {
	_, h := newTestServer(t)

	rec := get(t, h, "/api/buildings/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `building \"missing\" not found`)
}

func TestScene(t *testing.T) {
	_, h := newTestServer(t)

	rec := get(t, h, "/api/scene")
	require.Equal(t, http.StatusOK, rec.Code)
	var g scene.Graph
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &g))
	assert.Len(t, g.Entities, 2)
	assert.Equal(t, "0.1.0", g.Metadata.Version)

	rec = get(t, h, "/api/scene?surfaces=true")
	require.Equal(t, http.StatusOK, rec.Code)
	g = scene.Graph{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &g))
	assert.Len(t, g.Entities, 2+19+1)
}

func TestPlan(t *testing.T) {
	_, h := newTestServer(t)

	rec := get(t, h, "/api/plan")
	require.Equal(t, http.StatusOK, rec.Code)
	var plan scene2d.Plan
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &plan))
	assert.Equal(t, "centre", plan.Metadata.District)
	require.Len(t, plan.Buildings, 2)
	assert.True(t, plan.Buildings[0].Extruded)
	assert.False(t, plan.Buildings[1].Extruded)
	assert.Equal(t, 2, plan.Summary.TotalBuildings)
}

func TestValidation(t *testing.T) {
	_, h := newTestServer(t)

	rec := get(t, h, "/api/validation")
	require.Equal(t, http.StatusOK, rec.Code)

	var r validation.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &r))
	assert.True(t, r.Valid)
	require.Len(t, r.Warnings, 1)
	assert.Equal(t, "path", r.Warnings[0].Feature)
}

func TestNotImported(t *testing.T) {
	s := New("testdata", ":0", "0.1.0", loader(collection))
	h := s.Handler()

	for _, target := range []string{"/api/district", "/api/buildings", "/api/buildings/tower", "/api/scene", "/api/plan", "/api/validation"} {
		rec := get(t, h, target)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, target)
	}
}

func TestImport(t *testing.T) {
	s := New("testdata", ":0", "0.1.0", loader(collection))
	h := s.Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/import", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var stats ingest.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 3, stats.Features)
	assert.Equal(t, http.StatusOK, get(t, h, "/api/district").Code)
}

func TestImportFailureKeepsDistrict(t *testing.T) {
	fail := false
	s := New("testdata", ":0", "0.1.0", func() (*ingest.Result, error) {
		if fail {
			return nil, errors.New("source unreadable")
		}
		return loader(collection)()
	})
	_, err := s.Reload()
	require.NoError(t, err)
	h := s.Handler()

	fail = true
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/import", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "source unreadable")

	assert.Equal(t, http.StatusOK, get(t, h, "/api/district").Code)
}

func TestIndexAndUnknownRoutes(t *testing.T) {
	_, h := newTestServer(t)

	rec := get(t, h, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "CityEnvelope"))

	assert.Equal(t, http.StatusNotFound, get(t, h, "/nowhere").Code)
}

func TestRequestMetrics(t *testing.T) {
	_, h := newTestServer(t)

	before := testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues("building", "404"))
	get(t, h, "/api/buildings/missing")
	after := testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues("building", "404"))
	assert.Equal(t, before+1, after)

	rec := get(t, h, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "cityenvelope_http_requests_total")
}
