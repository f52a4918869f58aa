package prayer_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"islamicTodo/internal/prayer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const okBody = `{
	"code": 200,
	"status": "OK",
	"data": {
		"timings": {
			"Fajr": "04:53",
			"Sunrise": "06:05",
			"Dhuhr": "12:04",
			"Asr": "15:20",
			"Maghrib": "18:03",
			"Isha": "19:12"
		},
		"date": {"readable": "15 Oct 2026"}
	}
}`

func TestClient_Timings(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/timingsByCity", r.URL.Path)
		gotQuery = map[string]string{
			"city":    r.URL.Query().Get("city"),
			"country": r.URL.Query().Get("country"),
			"method":  r.URL.Query().Get("method"),
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(okBody))
	}))
	defer srv.Close()

	c := prayer.NewClient(prayer.WithBaseURL(srv.URL), prayer.WithHTTPClient(srv.Client()))
	timings, err := c.Timings(context.Background(), "", "")
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"city": "Addis Ababa", "country": "Ethiopia", "method": "2"}, gotQuery)
	assert.Equal(t, "Addis Ababa", timings.City)
	assert.Equal(t, "15 Oct 2026", timings.Date)
	require.Len(t, timings.Times, 6)
	// порядок как в ответе провайдера
	assert.Equal(t, prayer.Time{Name: "Fajr", At: "04:53"}, timings.Times[0])
	assert.Equal(t, prayer.Time{Name: "Isha", At: "19:12"}, timings.Times[5])
}

func TestClient_CustomCityAndMethod(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Mecca", r.URL.Query().Get("city"))
		assert.Equal(t, "Saudi Arabia", r.URL.Query().Get("country"))
		assert.Equal(t, "4", r.URL.Query().Get("method"))
		_, _ = w.Write([]byte(okBody))
	}))
	defer srv.Close()

	c := prayer.NewClient(prayer.WithBaseURL(srv.URL+"/"), prayer.WithMethod(4))
	timings, err := c.Timings(context.Background(), "Mecca", "Saudi Arabia")
	require.NoError(t, err)
	assert.Equal(t, "Mecca", timings.City)
}

func TestClient_Unavailable(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		timeout bool
	}{
		{name: "server error", status: http.StatusInternalServerError, body: `oops`},
		{name: "malformed body", status: http.StatusOK, body: `{"data": {"timings": [1,2]}}`},
		{name: "not json", status: http.StatusOK, body: `<html>`},
		{name: "empty timings", status: http.StatusOK, body: `{"code":200,"data":{"timings":{}}}`},
		{name: "timeout", status: http.StatusOK, body: okBody, timeout: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				if tt.timeout {
					select {
					case <-r.Context().Done():
					case <-time.After(time.Second):
					}
				}
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := prayer.NewClient(prayer.WithBaseURL(srv.URL), prayer.WithTimeout(50*time.Millisecond))
			_, err := c.Timings(context.Background(), "Addis Ababa", "Ethiopia")

			require.Error(t, err)
			assert.ErrorIs(t, err, prayer.ErrUnavailable)
			// без автоматических повторов
			assert.Equal(t, int32(1), calls.Load())
		})
	}
}

func TestClient_ProviderDown(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := prayer.NewClient(prayer.WithBaseURL(url)).Timings(context.Background(), "x", "y")
	assert.ErrorIs(t, err, prayer.ErrUnavailable)
}
