package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oref-monitor/orefmon/internal/alert"
	"github.com/oref-monitor/orefmon/internal/coordinator"
	"github.com/oref-monitor/orefmon/internal/fanout"
	"github.com/oref-monitor/orefmon/internal/schema"
)

type staticFetcher struct {
	history []alert.Record
	fail    bool
}

func (f *staticFetcher) FetchCurrent(ctx context.Context) (*alert.CurrentAlert, error) {
	return nil, nil
}

func (f *staticFetcher) FetchHistory(ctx context.Context) ([]alert.Record, error) {
	if f.fail {
		return nil, context.DeadlineExceeded
	}
	return f.history, nil
}

func newTestServer(t *testing.T, f coordinator.Fetcher, refresh bool) (*Server, *coordinator.Coordinator) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	coord := coordinator.New(f, time.Second, 10*time.Minute, logger)

	geo := fanout.NewGeoManager(32.0853, 34.7818, logger)
	coord.AddListener(geo.OnSnapshot)

	if refresh {
		require.NoError(t, coord.Refresh(context.Background()))
	}

	classifier := schema.NewClassifier("http://unused", logger)

	return New(coord, geo, classifier, logger), coord
}

func doRequest(s *Server, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestStatusEndpoint(t *testing.T) {
	s, _ := newTestServer(t, &staticFetcher{}, true)

	rec := doRequest(s, http.MethodGet, "/api/v1/status", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var st coordinator.Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.True(t, st.Ready)
}

func TestHealthz(t *testing.T) {
	t.Run("ready", func(t *testing.T) {
		s, _ := newTestServer(t, &staticFetcher{}, true)
		assert.Equal(t, http.StatusOK, doRequest(s, http.MethodGet, "/healthz", "").Code)
	})

	t.Run("not ready before first snapshot", func(t *testing.T) {
		s, _ := newTestServer(t, &staticFetcher{}, false)
		assert.Equal(t, http.StatusServiceUnavailable, doRequest(s, http.MethodGet, "/healthz", "").Code)
	})
}

func TestAlertsEndpoints(t *testing.T) {
	now := time.Now().In(alert.LocalZone)
	f := &staticFetcher{history: []alert.Record{
		{Date: now.Add(-2 * time.Minute).Format(alert.TimeLayout), Area: "Tel Aviv", Category: 1, Title: "Rocket fire"},
		{Date: now.Add(-2 * time.Hour).Format(alert.TimeLayout), Area: "Haifa", Category: 1, Title: "Rocket fire"},
	}}
	s, _ := newTestServer(t, f, true)

	t.Run("full snapshot", func(t *testing.T) {
		rec := doRequest(s, http.MethodGet, "/api/v1/alerts", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var records []alert.Record
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
		assert.Len(t, records, 2)
	})

	t.Run("active subset", func(t *testing.T) {
		rec := doRequest(s, http.MethodGet, "/api/v1/alerts/active", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var records []alert.Record
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
		require.Len(t, records, 1)
		assert.Equal(t, "Tel Aviv", records[0].Area)
	})

	t.Run("geo points", func(t *testing.T) {
		rec := doRequest(s, http.MethodGet, "/api/v1/geo", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var points []fanout.GeoPoint
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &points))
		require.Len(t, points, 1)
		assert.Equal(t, "Tel Aviv", points[0].Area)
	})
}

func TestSyntheticEndpoints(t *testing.T) {
	s, coord := newTestServer(t, &staticFetcher{}, true)

	t.Run("inject", func(t *testing.T) {
		rec := doRequest(s, http.MethodPost, "/api/v1/synthetic",
			`{"area":"Tel Aviv","title":"Drill","category":1,"seconds":60}`)
		require.Equal(t, http.StatusCreated, rec.Code)

		var resp map[string]int
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.NotZero(t, resp["id"])
		assert.Len(t, coord.Snapshot().Records, 1)
	})

	t.Run("remove", func(t *testing.T) {
		rec := doRequest(s, http.MethodPost, "/api/v1/synthetic",
			`{"area":"Haifa","category":1,"seconds":60}`)
		require.Equal(t, http.StatusCreated, rec.Code)
		var resp map[string]int
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

		del := doRequest(s, http.MethodDelete, "/api/v1/synthetic/"+strconv.Itoa(resp["id"]), "")
		assert.Equal(t, http.StatusNoContent, del.Code)

		del = doRequest(s, http.MethodDelete, "/api/v1/synthetic/"+strconv.Itoa(resp["id"]), "")
		assert.Equal(t, http.StatusNotFound, del.Code)
	})

	t.Run("validation", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest,
			doRequest(s, http.MethodPost, "/api/v1/synthetic", `{"category":1,"seconds":60}`).Code)
		assert.Equal(t, http.StatusBadRequest,
			doRequest(s, http.MethodPost, "/api/v1/synthetic", `{"area":"Tel Aviv","seconds":0}`).Code)
		assert.Equal(t, http.StatusBadRequest,
			doRequest(s, http.MethodPost, "/api/v1/synthetic", `not json`).Code)
	})
}

func TestRecordTypeEndpoint(t *testing.T) {
	now := time.Now().In(alert.LocalZone)
	f := &staticFetcher{history: []alert.Record{
		{Date: now.Add(-10 * time.Second).Format(alert.TimeLayout), Area: "Tel Aviv", Category: 1},
		{Date: now.Add(-20 * time.Second).Format(alert.TimeLayout), Area: "Sderot", Category: 13},
	}}
	s, _ := newTestServer(t, f, true)

	t.Run("alert in progress", func(t *testing.T) {
		rec := doRequest(s, http.MethodGet, "/api/v1/type/Tel%20Aviv", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Type     string `json:"type"`
			Category int    `json:"category"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, schema.TypeAlert, resp.Type)
		assert.Equal(t, 1, resp.Category)
	})

	t.Run("all clear", func(t *testing.T) {
		rec := doRequest(s, http.MethodGet, "/api/v1/type/Sderot", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Type string `json:"type"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, schema.TypeEnd, resp.Type)
	})

	t.Run("no active record", func(t *testing.T) {
		rec := doRequest(s, http.MethodGet, "/api/v1/type/Haifa", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestShelterEndpoint(t *testing.T) {
	now := time.Now().In(alert.LocalZone)
	f := &staticFetcher{history: []alert.Record{
		{Date: now.Add(-10 * time.Second).Format(alert.TimeLayout), Area: "Tel Aviv", Category: 1},
	}}
	s, _ := newTestServer(t, f, true)

	t.Run("active countdown", func(t *testing.T) {
		rec := doRequest(s, http.MethodGet, "/api/v1/shelter/Tel%20Aviv", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			SecondsRemaining int `json:"secondsRemaining"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.InDelta(t, 80, resp.SecondsRemaining, 5)
	})

	t.Run("no alert", func(t *testing.T) {
		rec := doRequest(s, http.MethodGet, "/api/v1/shelter/Haifa", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
