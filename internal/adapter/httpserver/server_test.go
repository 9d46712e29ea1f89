package httpserver

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/kanishkseth/APTeachersTransfers/internal/adapter/geocache"
	"github.com/kanishkseth/APTeachersTransfers/internal/config"
	"github.com/kanishkseth/APTeachersTransfers/internal/domain"
	"github.com/kanishkseth/APTeachersTransfers/internal/observability"
	"github.com/kanishkseth/APTeachersTransfers/internal/pipeline"
	"github.com/kanishkseth/APTeachersTransfers/internal/resolver"
)

type stubGeocoder struct {
	byAddr map[string]domain.Coordinates
}

func (g *stubGeocoder) Geocode(_ context.Context, addr string) (domain.GeocodingResult, bool, error) {
	if c, ok := g.byAddr[addr]; ok {
		return domain.GeocodingResult{Coords: c, DisplayName: addr}, true, nil
	}
	return domain.GeocodingResult{}, false, nil
}

func testServer(t *testing.T, geo domain.Geocoder) *Server {
	t.Helper()

	cfg := &config.Config{
		District:        "Guntur",
		Region:          "Andhra Pradesh",
		HTTPAddr:        ":0",
		DefaultPriority: []string{"4", "3", "2", "1"},
	}

	cache, err := geocache.Load(filepath.Join(t.TempDir(), "geo_cache.json"))
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.NewMetricsForTesting()
	res := resolver.New(geo, cache, resolver.NewPacer(0, nil), logger, metrics)
	p := pipeline.New(res, cache, cfg.District, cfg.Region, logger, metrics)

	return NewServer(p, cfg, logger)
}

// uploadRequest builds a multipart POST /rank request.
func uploadRequest(t *testing.T, workbook []byte, fields map[string]string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if workbook != nil {
		part, err := mw.CreateFormFile("file", "schools.xlsx")
		require.NoError(t, err)
		_, err = part.Write(workbook)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/rank", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func workbookBytes(t *testing.T, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, v))
		}
	}
	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)
	return buf.Bytes()
}

func TestHealthz(t *testing.T) {
	s := testServer(t, &stubGeocoder{})

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestForm(t *testing.T) {
	s := testServer(t, &stubGeocoder{})

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Guntur")
	assert.Contains(t, rec.Body.String(), "Category priority")
}

func TestRank_EndToEnd(t *testing.T) {
	geo := &stubGeocoder{byAddr: map[string]domain.Coordinates{
		"A, M1, Guntur, Andhra Pradesh": {Lat: 16.1, Lon: 80.0},
		"B, M2, Guntur, Andhra Pradesh": {Lat: 16.4, Lon: 80.0},
	}}
	s := testServer(t, geo)

	wb := workbookBytes(t, [][]any{
		{"School", "Mandal", "Category"},
		{"A", "M1", "4"},
		{"B", "M2", "1"},
	})

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, uploadRequest(t, wb, map[string]string{
		"lat":      "16.0",
		"lon":      "80.0",
		"priority": "1 4",
	}))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "ranked_schools.xlsx")

	out, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	rows, err := out.GetRows(out.GetSheetName(0))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "B", rows[1][0], "priority 1 school first")
	assert.Equal(t, "A", rows[2][0])
}

func TestRank_FreeTextLocationResolved(t *testing.T) {
	geo := &stubGeocoder{byAddr: map[string]domain.Coordinates{
		"Bapatla, Andhra Pradesh":       {Lat: 15.9, Lon: 80.47},
		"A, M1, Guntur, Andhra Pradesh": {Lat: 16.1, Lon: 80.0},
	}}
	s := testServer(t, geo)

	wb := workbookBytes(t, [][]any{
		{"School", "Mandal", "Category"},
		{"A", "M1", "4"},
	})

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, uploadRequest(t, wb, map[string]string{"location": "Bapatla"}))

	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestRank_UserLocationUnresolved(t *testing.T) {
	s := testServer(t, &stubGeocoder{})

	wb := workbookBytes(t, [][]any{
		{"School", "Mandal", "Category"},
		{"A", "M1", "4"},
	})

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, uploadRequest(t, wb, map[string]string{"location": "Atlantis"}))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "supply lat and lon")
}

func TestRank_MissingColumns(t *testing.T) {
	s := testServer(t, &stubGeocoder{})

	wb := workbookBytes(t, [][]any{
		{"Name", "Place"},
		{"A", "M1"},
	})

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, uploadRequest(t, wb, map[string]string{"lat": "16", "lon": "80"}))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Mandal")
}

func TestRank_UnknownCategory(t *testing.T) {
	geo := &stubGeocoder{byAddr: map[string]domain.Coordinates{
		"A, M1, Guntur, Andhra Pradesh": {Lat: 16.1, Lon: 80.0},
	}}
	s := testServer(t, geo)

	wb := workbookBytes(t, [][]any{
		{"School", "Mandal", "Category"},
		{"A", "M1", "7"},
	})

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, uploadRequest(t, wb, map[string]string{
		"lat": "16.0", "lon": "80.0", "priority": "4 3 2 1",
	}))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "priority list")
}

func TestRank_NoFile(t *testing.T) {
	s := testServer(t, &stubGeocoder{})

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, uploadRequest(t, nil, map[string]string{"lat": "16", "lon": "80"}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRank_InvalidExplicitCoordinates(t *testing.T) {
	s := testServer(t, &stubGeocoder{})

	wb := workbookBytes(t, [][]any{
		{"School", "Mandal", "Category"},
		{"A", "M1", "4"},
	})

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, uploadRequest(t, wb, map[string]string{"lat": "abc", "lon": "80"}))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid latitude")
}
