package pexels

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/NomadCrew/crewtrip-backend/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchDestinationImage(t *testing.T) {
	t.Run("returns first landscape url", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/search", r.URL.Path)
			assert.Equal(t, "Lisbon", r.URL.Query().Get("query"))
			assert.Equal(t, "key", r.Header.Get("Authorization"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"photos":[{"id":1,"src":{"landscape":"https://img/1.jpg"}}]}`))
		}))
		defer srv.Close()

		c := NewClient("key", WithBaseURL(srv.URL))
		got, err := c.SearchDestinationImage(context.Background(), "Lisbon")
		require.NoError(t, err)
		assert.Equal(t, "https://img/1.jpg", got)
	})

	t.Run("empty result", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"photos":[]}`))
		}))
		defer srv.Close()

		got, err := NewClient("key", WithBaseURL(srv.URL)).SearchDestinationImage(context.Background(), "Nowhere")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("non-200 status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer srv.Close()

		_, err := NewClient("key", WithBaseURL(srv.URL)).SearchDestinationImage(context.Background(), "Lisbon")
		assert.Error(t, err)
	})

	t.Run("blank query skips the request", func(t *testing.T) {
		got, err := NewClient("key", WithBaseURL("http://127.0.0.1:1")).SearchDestinationImage(context.Background(), "  ")
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestBuildSearchQuery(t *testing.T) {
	tests := []struct {
		name string
		trip *types.Trip
		want string
	}{
		{"destination wins", &types.Trip{Name: "Spring", Destination: "Kyoto", DestinationCountry: "Japan"}, "Kyoto"},
		{"country fallback", &types.Trip{Name: "Spring", DestinationCountry: "Japan"}, "Japan"},
		{"name fallback", &types.Trip{Name: "Spring in Rome"}, "Spring in Rome"},
		{"nil trip", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildSearchQuery(tt.trip))
		})
	}
}
