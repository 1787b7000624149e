package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ChicagoDave/cityenvelope/internal/metrics"
	"github.com/ChicagoDave/cityenvelope/pkg/ingest"
	"github.com/ChicagoDave/cityenvelope/pkg/model"
	"github.com/ChicagoDave/cityenvelope/pkg/scene"
	"github.com/ChicagoDave/cityenvelope/pkg/scene2d"
	"github.com/ChicagoDave/cityenvelope/pkg/validation"
)

// Loader runs one import of the project.
type Loader func() (*ingest.Result, error)

// Server serves an imported district over HTTP for inspection.
type Server struct {
	projectPath string
	addr        string
	version     string
	load        Loader

	mu     sync.RWMutex
	result *ingest.Result
}

// New creates a server for the given project directory. Nothing is imported
// until Reload or Start is called.
func New(projectPath, addr, version string, load Loader) *Server {
	return &Server{
		projectPath: projectPath,
		addr:        addr,
		version:     version,
		load:        load,
	}
}

// Reload re-runs the import and swaps in the new district on success.
func (s *Server) Reload() (*ingest.Result, error) {
	res, err := s.load()
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.result = res
	s.mu.Unlock()
	return res, nil
}

func (s *Server) current() *ingest.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.result
}

// Handler returns the routes of the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	s.route(mux, "GET /api/district", "district", s.handleDistrict)
	s.route(mux, "GET /api/buildings", "buildings", s.handleBuildings)
	s.route(mux, "GET /api/buildings/{name}", "building", s.handleBuilding)
	s.route(mux, "GET /api/scene", "scene", s.handleScene)
	s.route(mux, "GET /api/plan", "plan", s.handlePlan)
	s.route(mux, "GET /api/validation", "validation", s.handleValidation)
	s.route(mux, "POST /api/import", "import", s.handleImport)
	s.route(mux, "GET /{$}", "index", s.handleIndex)
	mux.Handle("GET /metrics", metrics.Handler())

	return mux
}

// route registers h and counts its responses by status.
func (s *Server) route(mux *http.ServeMux, pattern, name string, h http.HandlerFunc) {
	mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		h(sw, r)
		metrics.HTTPRequestsTotal.WithLabelValues(name, strconv.Itoa(sw.status)).Inc()
		zap.L().Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", sw.status),
			zap.Duration("duration", time.Since(start)))
	})
}

// Start imports the project and serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	if _, err := s.Reload(); err != nil {
		return fmt.Errorf("initial import: %w", err)
	}

	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		zap.L().Info("cityenvelope server starting",
			zap.String("addr", s.addr),
			zap.String("project", s.projectPath))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		zap.L().Info("cityenvelope server stopping")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	fmt.Fprint(w, `<!DOCTYPE html>
<html><head><title>CityEnvelope</title></head>
<body style="margin:0;background:#111;color:#fff;font-family:system-ui;display:flex;align-items:center;justify-content:center;height:100vh">
<div style="text-align:center">
<h1>CityEnvelope</h1>
<p>See <code>/api/district</code>, <code>/api/buildings</code>, <code>/api/plan</code> and <code>/api/scene</code>.</p>
</div>
</body></html>`)
}

// DistrictSummary is the body of GET /api/district.
type DistrictSummary struct {
	City      string       `json:"city"`
	Name      string       `json:"name"`
	SRSName   string       `json:"srs_name"`
	Lower     [3]float64   `json:"lower_corner"`
	Upper     [3]float64   `json:"upper_corner"`
	Reference [3]float64   `json:"reference"`
	Area      float64      `json:"area,omitempty"`
	Buildings int          `json:"buildings"`
	OpenAreas int          `json:"open_areas"`
	Stats     ingest.Stats `json:"stats"`
}

// BuildingSummary describes one building.
type BuildingSummary struct {
	Name                string             `json:"name"`
	Aliases             []string           `json:"aliases,omitempty"`
	Function            string             `json:"function,omitempty"`
	YearOfConstruction  int                `json:"year_of_construction,omitempty"`
	Usages              map[string]float64 `json:"usages,omitempty"`
	FloorArea           float64            `json:"floor_area"`
	Volume              float64            `json:"volume"`
	MaxHeight           float64            `json:"max_height"`
	EaveHeight          float64            `json:"eave_height"`
	RoofType            string             `json:"roof_type"`
	Storeys             int                `json:"storeys"`
	AverageStoreyHeight float64            `json:"average_storey_height,omitempty"`
	Surfaces            map[string]int     `json:"surfaces"`
}

func (s *Server) handleDistrict(w http.ResponseWriter, _ *http.Request) {
	res := s.current()
	if res == nil {
		writeError(w, http.StatusServiceUnavailable, "no district imported")
		return
	}
	d := res.District
	sum := DistrictSummary{
		Name:      d.Name,
		SRSName:   d.SRSName(),
		Lower:     triple(d.LowerCorner().X, d.LowerCorner().Y, d.LowerCorner().Z),
		Upper:     triple(d.UpperCorner().X, d.UpperCorner().Y, d.UpperCorner().Z),
		Reference: triple(d.ReferenceCoordinates().X, d.ReferenceCoordinates().Y, d.ReferenceCoordinates().Z),
		Area:      d.Area(),
		Buildings: len(d.Buildings()),
		OpenAreas: len(d.OpenAreas()),
		Stats:     res.Stats,
	}
	if res.City != nil {
		sum.City = res.City.Name
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) handleBuildings(w http.ResponseWriter, _ *http.Request) {
	res := s.current()
	if res == nil {
		writeError(w, http.StatusServiceUnavailable, "no district imported")
		return
	}
	buildings := res.District.Buildings()
	out := make([]BuildingSummary, 0, len(buildings))
	for _, b := range buildings {
		out = append(out, summarize(b))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleBuilding(w http.ResponseWriter, r *http.Request) {
	res := s.current()
	if res == nil {
		writeError(w, http.StatusServiceUnavailable, "no district imported")
		return
	}
	name := r.PathValue("name")
	b, ok := res.District.Building(name)
	if !ok {
		b, ok = res.District.BuildingByAlias(name)
	}
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("building %q not found", name))
		return
	}
	writeJSON(w, http.StatusOK, summarize(b))
}

func (s *Server) handleScene(w http.ResponseWriter, r *http.Request) {
	res := s.current()
	if res == nil {
		writeError(w, http.StatusServiceUnavailable, "no district imported")
		return
	}
	surfaces, _ := strconv.ParseBool(r.URL.Query().Get("surfaces"))
	g := scene.Assemble(res.District, scene.Options{Version: s.version, Surfaces: surfaces})
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handlePlan(w http.ResponseWriter, _ *http.Request) {
	res := s.current()
	if res == nil {
		writeError(w, http.StatusServiceUnavailable, "no district imported")
		return
	}
	writeJSON(w, http.StatusOK, scene2d.Assemble2D(res.District))
}

func (s *Server) handleValidation(w http.ResponseWriter, _ *http.Request) {
	res := s.current()
	if res == nil {
		writeError(w, http.StatusServiceUnavailable, "no district imported")
		return
	}
	report := validation.NewReport()
	report.Merge(res.Report)
	report.Merge(scene.ValidateGraph(scene.Assemble(res.District, scene.Options{Version: s.version})))
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleImport(w http.ResponseWriter, _ *http.Request) {
	res, err := s.Reload()
	if err != nil {
		zap.L().Error("reimport failed", zap.Error(err))
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res.Stats)
}

func summarize(b *model.Building) BuildingSummary {
	return BuildingSummary{
		Name:                b.Name(),
		Aliases:             b.Aliases(),
		Function:            b.Function,
		YearOfConstruction:  b.YearOfConstruction,
		Usages:              b.Usages,
		FloorArea:           b.FloorArea(),
		Volume:              b.Volume(),
		MaxHeight:           b.MaxHeight(),
		EaveHeight:          b.EaveHeight(),
		RoofType:            string(b.RoofType()),
		Storeys:             b.StoreysAboveGround(),
		AverageStoreyHeight: b.AverageStoreyHeight,
		Surfaces: map[string]int{
			string(model.SurfaceGround):       len(b.Grounds()),
			string(model.SurfaceWall):         len(b.Walls()),
			string(model.SurfaceRoof):         len(b.Roofs()),
			string(model.SurfaceInteriorSlab): len(b.InteriorSlabs()),
		},
	}
}

func triple(x, y, z float64) [3]float64 { return [3]float64{x, y, z} }

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("encoding response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// statusWriter records the status code written by a handler.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
