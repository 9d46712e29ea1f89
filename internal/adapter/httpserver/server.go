// Package httpserver provides the web front end: an upload form, the ranking
// endpoint that returns the sorted workbook as a download, and the health and
// metrics routes.
package httpserver

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kanishkseth/APTeachersTransfers/internal/adapter/xlsx"
	"github.com/kanishkseth/APTeachersTransfers/internal/config"
	"github.com/kanishkseth/APTeachersTransfers/internal/domain"
	"github.com/kanishkseth/APTeachersTransfers/internal/pipeline"
)

// Uploads larger than this are rejected before parsing.
const maxUploadBytes = 16 << 20

// Server handles the upload form and ranking requests.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	pipeline   *pipeline.Pipeline
	cfg        *config.Config
	logger     *slog.Logger
}

// NewServer wires the routes and middleware for the given pipeline.
func NewServer(p *pipeline.Pipeline, cfg *config.Config, logger *slog.Logger) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		pipeline: p,
		cfg:      cfg,
		logger:   logger,
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)

	s.router.Get("/", s.handleForm)
	s.router.Post("/rank", s.handleRank)
	s.router.Get("/healthz", s.handleHealth)
	s.router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	s.httpServer = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 10 * time.Minute, // a full uncached run geocodes one row per second
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the router, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"healthy"}`))
}

func (s *Server) handleForm(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := formTemplate.Execute(w, map[string]string{
		"District": s.cfg.District,
		"Region":   s.cfg.Region,
	}); err != nil {
		s.logger.Error("render form", "error", err)
	}
}

// handleRank runs the whole pipeline for one uploaded school list and streams
// the ranked workbook back as an attachment.
func (s *Server) handleRank(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.respondError(w, http.StatusBadRequest, "file too large or invalid form")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "no school list uploaded")
		return
	}
	defer file.Close()

	schools, err := xlsx.ReadSchools(file)
	if err != nil {
		var missingErr *xlsx.MissingColumnsError
		if errors.As(err, &missingErr) {
			s.respondError(w, http.StatusUnprocessableEntity, missingErr.Error())
			return
		}
		s.respondError(w, http.StatusBadRequest, "could not read the uploaded workbook")
		return
	}

	origin, err := s.userLocation(r)
	if err != nil {
		s.respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	priority := s.cfg.DefaultPriority
	if text := r.FormValue("priority"); text != "" {
		priority = config.ParsePriority(text)
	}

	ranked, err := s.pipeline.Run(r.Context(), schools, origin, priority)
	if err != nil {
		var unknownErr *domain.UnknownCategoryError
		if errors.As(err, &unknownErr) {
			s.respondError(w, http.StatusUnprocessableEntity, unknownErr.Error())
			return
		}
		s.logger.Error("pipeline run failed", "error", err)
		s.respondError(w, http.StatusInternalServerError, "ranking failed")
		return
	}

	out, err := xlsx.WriteRanked(ranked)
	if err != nil {
		s.logger.Error("build output workbook", "error", err)
		s.respondError(w, http.StatusInternalServerError, "could not build the output workbook")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="ranked_schools.xlsx"`)
	if _, err := out.WriteTo(w); err != nil {
		s.logger.Error("stream output workbook", "error", err)
	}
}

// userLocation reads the teacher's location from the form: either explicit
// lat/lon fields, or a free-text location resolved against the region.
func (s *Server) userLocation(r *http.Request) (domain.Coordinates, error) {
	latStr, lonStr := r.FormValue("lat"), r.FormValue("lon")
	if latStr != "" || lonStr != "" {
		lat, err := strconv.ParseFloat(latStr, 64)
		if err != nil {
			return domain.Coordinates{}, fmt.Errorf("invalid latitude %q", latStr)
		}
		lon, err := strconv.ParseFloat(lonStr, 64)
		if err != nil {
			return domain.Coordinates{}, fmt.Errorf("invalid longitude %q", lonStr)
		}
		return domain.Coordinates{Lat: lat, Lon: lon}, nil
	}

	location := r.FormValue("location")
	if location == "" {
		return domain.Coordinates{}, errors.New("provide a location, or explicit lat and lon")
	}

	coords, err := s.pipeline.ResolveUserLocation(r.Context(), location)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("%v: supply lat and lon directly instead", err)
	}
	return coords, nil
}

func (s *Server) respondError(w http.ResponseWriter, status int, msg string) {
	http.Error(w, msg, status)
}

var formTemplate = template.Must(template.New("form").Parse(`<!DOCTYPE html>
<html>
<head><title>Teacher Transfer Tool</title></head>
<body>
  <h1>Teacher Transfer Tool</h1>
  <p>Upload the school list for {{.District}} district, {{.Region}}.</p>
  <form action="/rank" method="post" enctype="multipart/form-data">
    <p><label>School list (.xlsx): <input type="file" name="file" accept=".xlsx" required></label></p>
    <p><label>Your location: <input type="text" name="location" placeholder="e.g. Bapatla"></label></p>
    <p>or coordinates:
      <label>lat <input type="text" name="lat" placeholder="15.902"></label>
      <label>lon <input type="text" name="lon" placeholder="80.467"></label>
    </p>
    <p><label>Category priority: <input type="text" name="priority" placeholder="4 3 2 1"></label></p>
    <p><button type="submit">Rank schools</button></p>
  </form>
</body>
</html>
`))
