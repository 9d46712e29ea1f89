package nominatim

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUserAgent = "ap-teachers-transfers-test/1.0"

func testClient(baseURL string) *Client {
	return NewClient(baseURL, testUserAgent, 5*time.Second)
}

func TestClient_Geocode_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "Bapatla, Guntur, Andhra Pradesh", r.URL.Query().Get("q"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		assert.Equal(t, testUserAgent, r.Header.Get("User-Agent"))

		w.Header().Set("Content-Type", "application/json")
		_, err := w.Write([]byte(`[{"lat":"15.9043","lon":"80.4672","display_name":"Bapatla, Andhra Pradesh, India"}]`))
		require.NoError(t, err)
	}))
	defer srv.Close()

	result, found, err := testClient(srv.URL).Geocode(context.Background(), "Bapatla, Guntur, Andhra Pradesh")
	require.NoError(t, err)
	require.True(t, found)

	assert.Equal(t, 15.9043, result.Coords.Lat)
	assert.Equal(t, 80.4672, result.Coords.Lon)
	assert.Equal(t, "Bapatla, Andhra Pradesh, India", result.DisplayName)
}

func TestClient_Geocode_NoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	_, found, err := testClient(srv.URL).Geocode(context.Background(), "No Such Village")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestClient_Geocode_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"message":"slow down"}`))
	}))
	defer srv.Close()

	_, _, err := testClient(srv.URL).Geocode(context.Background(), "anywhere")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestClient_Geocode_MalformedCoordinates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"lat":"not-a-number","lon":"80.4672","display_name":"x"}]`))
	}))
	defer srv.Close()

	_, _, err := testClient(srv.URL).Geocode(context.Background(), "anywhere")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse latitude")
}

func TestClient_Geocode_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, testUserAgent, 50*time.Millisecond)
	_, _, err := c.Geocode(context.Background(), "anywhere")
	require.Error(t, err)
}

func TestClient_Geocode_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := testClient(srv.URL).Geocode(ctx, "anywhere")
	require.Error(t, err)
}
