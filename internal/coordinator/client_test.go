package coordinator

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFeedClient(currentURL, historyURL string) *FeedClient {
	return NewFeedClient(currentURL, historyURL, "https://alerts.example/", 5*time.Second, testLogger())
}

func TestFetchCurrent(t *testing.T) {
	t.Run("live alert", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"title":"Rocket fire","cat":"1","data":["Tel Aviv","Haifa"]}`))
		}))
		defer srv.Close()

		cur, err := newTestFeedClient(srv.URL, srv.URL).FetchCurrent(context.Background())
		require.NoError(t, err)
		require.NotNil(t, cur)
		assert.Equal(t, 1, cur.Category)
		assert.Len(t, cur.Areas, 2)
	})

	t.Run("empty body means no alert, not an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		defer srv.Close()

		cur, err := newTestFeedClient(srv.URL, srv.URL).FetchCurrent(context.Background())
		require.NoError(t, err)
		assert.Nil(t, cur)
	})

	t.Run("BOM and whitespace-only body means no alert", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("\xef\xbb\xbf\r\n"))
		}))
		defer srv.Close()

		cur, err := newTestFeedClient(srv.URL, srv.URL).FetchCurrent(context.Background())
		require.NoError(t, err)
		assert.Nil(t, cur)
	})

	t.Run("malformed body is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"title": "broken`))
		}))
		defer srv.Close()

		_, err := newTestFeedClient(srv.URL, srv.URL).FetchCurrent(context.Background())
		assert.Error(t, err)
	})

	t.Run("required headers are sent", func(t *testing.T) {
		var got http.Header
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = r.Header.Clone()
		}))
		defer srv.Close()

		_, err := newTestFeedClient(srv.URL, srv.URL).FetchCurrent(context.Background())
		require.NoError(t, err)

		assert.Equal(t, "https://alerts.example/", got.Get("Referer"))
		assert.Equal(t, "XMLHttpRequest", got.Get("X-Requested-With"))
		assert.Equal(t, "application/json", got.Get("Content-Type"))
	})
}

func TestFetchHistory(t *testing.T) {
	t.Run("rows parse into records", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`[
				{"alertDate":"2026-03-01 11:59:00","title":"Rocket fire","data":"Tel Aviv","category":1},
				{"alertDate":"2026-03-01 11:58:00","title":"Rocket fire","data":"Haifa","category":1}
			]`))
		}))
		defer srv.Close()

		records, err := newTestFeedClient(srv.URL, srv.URL).FetchHistory(context.Background())
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, "Tel Aviv", records[0].Area)
		assert.Equal(t, 1, records[0].Category)
	})

	t.Run("empty body is an empty result", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		defer srv.Close()

		records, err := newTestFeedClient(srv.URL, srv.URL).FetchHistory(context.Background())
		require.NoError(t, err)
		assert.Empty(t, records)
	})
}

func TestFetchRetry(t *testing.T) {
	t.Run("recovers within the retry budget", func(t *testing.T) {
		attempts := 0
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attempts++
			if attempts < 3 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			_, _ = w.Write([]byte(`[]`))
		}))
		defer srv.Close()

		_, err := newTestFeedClient(srv.URL, srv.URL).FetchHistory(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 3, attempts)
	})

	t.Run("exhausted retries surface the last error", func(t *testing.T) {
		attempts := 0
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attempts++
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		_, err := newTestFeedClient(srv.URL, srv.URL).FetchHistory(context.Background())
		require.Error(t, err)
		assert.Equal(t, fetchAttempts, attempts)
		assert.Contains(t, err.Error(), "HTTP 502")
	})
}
