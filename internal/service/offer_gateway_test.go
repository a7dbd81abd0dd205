package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPOfferGateway_Search(t *testing.T) {
	var gotQuery map[string]string
	var gotAuth string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/offers", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		gotQuery = map[string]string{
			"origin":      r.URL.Query().Get("originLocationCode"),
			"destination": r.URL.Query().Get("destinationLocationCode"),
			"date":        r.URL.Query().Get("departureDate"),
			"adults":      r.URL.Query().Get("adults"),
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"id":"OFR1","price":{"total":"100.00"}},{"id":"OFR2"}]}`))
	}))
	defer upstream.Close()

	gw := NewHTTPOfferGateway(upstream.URL+"/", "key-1", time.Second)
	offers, err := gw.Search(context.Background(), OfferQuery{Origin: "LHR", Destination: "JFK", DepartureDate: "2025-06-01"})
	require.NoError(t, err)

	require.Len(t, offers, 2)
	assert.JSONEq(t, `{"id":"OFR1","price":{"total":"100.00"}}`, string(offers[0]))
	assert.Equal(t, "Bearer key-1", gotAuth)
	assert.Equal(t, map[string]string{"origin": "LHR", "destination": "JFK", "date": "2025-06-01", "adults": "1"}, gotQuery)
}

func TestHTTPOfferGateway_Errors(t *testing.T) {
	t.Run("invalid query", func(t *testing.T) {
		gw := NewHTTPOfferGateway("http://unused.invalid", "", time.Second)
		_, err := gw.Search(context.Background(), OfferQuery{Origin: "LHR"})
		assert.ErrorIs(t, err, ErrInvalidOfferQuery)
	})

	t.Run("upstream status", func(t *testing.T) {
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer upstream.Close()

		gw := NewHTTPOfferGateway(upstream.URL, "", time.Second)
		_, err := gw.Search(context.Background(), OfferQuery{Origin: "LHR", Destination: "JFK", DepartureDate: "2025-06-01"})
		assert.ErrorIs(t, err, ErrOfferSearchFailed)
	})

	t.Run("malformed body", func(t *testing.T) {
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`not json`))
		}))
		defer upstream.Close()

		gw := NewHTTPOfferGateway(upstream.URL, "", time.Second)
		_, err := gw.Search(context.Background(), OfferQuery{Origin: "LHR", Destination: "JFK", DepartureDate: "2025-06-01"})
		assert.ErrorIs(t, err, ErrOfferSearchFailed)
	})
}
