package stays

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"booking-dashboard-backend/config"
	"booking-dashboard-backend/internal/booking"
	"booking-dashboard-backend/internal/store"
)

func newTestClient(url string) *Client {
	c := NewClient(&config.StaysConfig{
		BaseURL:      url,
		ClientID:     "client",
		ClientSecret: "secret",
		PageSize:     2,
		MaxRetries:   3,
	})
	c.backoff = func(int) time.Duration { return time.Millisecond }
	return c
}

func TestClient_FetchBookingsPaginates(t *testing.T) {
	all := []store.ApiBooking{
		{ID: "r1", ListingID: "L1"},
		{ID: "r2", ListingID: "L1"},
		{ID: "r3", ListingID: "L2"},
	}
	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		assert.Equal(t, bookingsPath, r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "client", user)
		assert.Equal(t, "secret", pass)

		q := r.URL.Query()
		assert.Equal(t, "2026-01-01", q.Get("from"))
		assert.Equal(t, "2026-01-31", q.Get("to"))
		assert.Equal(t, "included", q.Get("dateType"))
		skip, _ := strconv.Atoi(q.Get("skip"))
		limit, _ := strconv.Atoi(q.Get("limit"))
		end := min(skip+limit, len(all))
		json.NewEncoder(w).Encode(all[min(skip, len(all)):end])
	}))
	defer server.Close()

	got, err := newTestClient(server.URL).FetchBookings(context.Background(),
		booking.MustParseDate("2026-01-01"), booking.MustParseDate("2026-01-31"))
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "r3", got[2].ID)
	assert.Equal(t, int32(2), atomic.LoadInt32(&requests))
}

func TestClient_FetchListings(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, listingsPath, r.URL.Path)
		w.Write([]byte(`[{"_id":"L1","id":"AB01","internalName":"L-RL-17-101 | LEB Rita Ludolf 17/101"}]`))
	}))
	defer server.Close()

	got, err := newTestClient(server.URL).FetchListings(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "L1", got[0].ID)
	assert.Equal(t, "AB01", got[0].ShortID)
	assert.Equal(t, "L-RL-17-101 | LEB Rita Ludolf 17/101", got[0].InternalName)
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&requests, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	got, err := newTestClient(server.URL).FetchListings(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, int32(3), atomic.LoadInt32(&requests))
}

func TestClient_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		requests int32
	}{
		{name: "client error is not retried", status: http.StatusUnauthorized, requests: 1},
		{name: "server error exhausts retries", status: http.StatusInternalServerError, requests: 3},
		{name: "malformed body", status: http.StatusOK, body: `{"not":"a list"}`, requests: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var requests int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&requests, 1)
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := newTestClient(server.URL).FetchListings(context.Background())
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrUpstream))
			assert.Equal(t, tt.requests, atomic.LoadInt32(&requests))
		})
	}
}
