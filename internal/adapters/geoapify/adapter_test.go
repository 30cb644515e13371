package geoapify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"real-estate-system/internal/constants"
	"real-estate-system/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc(constants.GeoapifyGeocodePath, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("apiKey"))
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		switch r.URL.Query().Get("text") {
		case "Njegoseva 5, Kotor":
			_, _ = w.Write([]byte(`{"type":"FeatureCollection","features":[
				{"properties":{"lat":42.4247,"lon":18.7712,"place_id":"abc","formatted":"Njegoseva 5"}}
			]}`))
		case "point only":
			_, _ = w.Write([]byte(`{"features":[{"properties":{},"geometry":{"type":"Point","coordinates":[19.26,42.44]}}]}`))
		case "broken":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			_, _ = w.Write([]byte(`{"features":[]}`))
		}
	})

	mux.HandleFunc(constants.GeoapifyPartOfPath, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, constants.GeoapifyBoundaryGeometry, r.URL.Query().Get("geometry"))
		assert.Equal(t, "42.44", r.URL.Query().Get("lat"))
		assert.Equal(t, "city,district", r.URL.Query().Get("type"))
		_, _ = w.Write([]byte(`[
			{"properties":{"name":"Podgorica","admin_level":"8","result_type":"city"},
			 "geometry":{"type":"Polygon","coordinates":[[[19.2,42.4],[19.3,42.4],[19.3,42.5]]]}},
			{"properties":{"name":"Montenegro","result_type":"country","datasource":{"raw":{"admin_level":2}}},
			 "geometry":{"type":"MultiPolygon","coordinates":[[[[18.4,41.8],[20.3,41.8],[20.3,43.5]]]]}},
			{"properties":{"name":"Centar","datasource":{"raw":{"admin_level":10}}},
			 "geometry":{"type":"Polygon","coordinates":[[[19.25,42.43],[19.27,42.43]]]}}
		]`))
	})

	mux.HandleFunc(constants.GeoapifyPlaceDetailsPath, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "abc", r.URL.Query().Get("id"))
		_, _ = w.Write([]byte(`{"features":[
			{"properties":{"feature_type":"details","name":"House"},"geometry":{"type":"Point","coordinates":[18.77,42.42]}},
			{"properties":{"feature_type":"details.building","name":"Building"},
			 "geometry":{"type":"Polygon","coordinates":[[[18.771,42.424],[18.772,42.424],[18.772,42.425]]]}}
		]}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestAdapter(t *testing.T, baseURL, apiKey string) *GeoapifyAdapter {
	t.Helper()
	a, err := NewGeoapifyAdapter(Config{BaseURL: baseURL, APIKey: apiKey, Parallelism: 2})
	require.NoError(t, err)
	return a
}

func TestGeocode(t *testing.T) {
	srv := newTestServer(t)
	a := newTestAdapter(t, srv.URL, "test-key")
	ctx := context.Background()

	place, err := a.Geocode(ctx, "Njegoseva 5, Kotor")
	require.NoError(t, err)
	assert.Equal(t, domain.LatLon{Lat: 42.4247, Lon: 18.7712}, place.Position)
	assert.Equal(t, "abc", place.PlaceID)

	place, err = a.Geocode(ctx, "point only")
	require.NoError(t, err)
	assert.Equal(t, domain.LatLon{Lat: 42.44, Lon: 19.26}, place.Position)

	_, err = a.Geocode(ctx, "unknown")
	assert.ErrorIs(t, err, domain.ErrPlaceNotFound)

	_, err = a.Geocode(ctx, "broken")
	assert.Error(t, err)
}

func TestBoundariesPartOf_FiltersLevelsAndReadsAdminLevel(t *testing.T) {
	srv := newTestServer(t)
	a := newTestAdapter(t, srv.URL, "test-key")

	features, err := a.BoundariesPartOf(context.Background(), domain.LatLon{Lat: 42.44, Lon: 19.26}, []string{"city", "district"})
	require.NoError(t, err)

	require.Len(t, features, 2, "country is filtered out, level-less feature is kept")
	assert.Equal(t, "Podgorica", features[0].Name)
	assert.Equal(t, 8, features[0].AdminLevel)
	assert.Equal(t, domain.GeometryPolygon, features[0].Geometry.Type)
	assert.Equal(t, domain.LonLat{19.2, 42.4}, features[0].Geometry.Polygon[0][0])

	assert.Equal(t, "Centar", features[1].Name)
	assert.Equal(t, 10, features[1].AdminLevel)
}

func TestPlaceDetails(t *testing.T) {
	srv := newTestServer(t)
	a := newTestAdapter(t, srv.URL, "test-key")

	features, err := a.PlaceDetails(context.Background(), "abc")
	require.NoError(t, err)

	require.Len(t, features, 2)
	assert.Equal(t, "details", features[0].FeatureType)
	assert.Equal(t, domain.GeometryType("Point"), features[0].Geometry.Type)
	assert.Equal(t, "details.building", features[1].FeatureType)
	assert.Len(t, features[1].Geometry.Polygon[0], 3)
}

func TestAdapter_RequiresAPIKey(t *testing.T) {
	srv := newTestServer(t)
	a := newTestAdapter(t, srv.URL, "")

	_, err := a.Geocode(context.Background(), "Njegoseva 5, Kotor")
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestAdapter_CancelledContext(t *testing.T) {
	srv := newTestServer(t)
	a := newTestAdapter(t, srv.URL, "test-key")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.Geocode(ctx, "Njegoseva 5, Kotor")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewGeoapifyAdapter_InvalidBaseURL(t *testing.T) {
	_, err := NewGeoapifyAdapter(Config{BaseURL: "not a url"})
	assert.Error(t, err)
}

func TestFlexibleInt(t *testing.T) {
	var p properties
	require.NoError(t, decodeJSON(`{"admin_level": "6"}`, &p))
	assert.Equal(t, flexibleInt(6), p.AdminLevel)

	require.NoError(t, decodeJSON(`{"admin_level": 4}`, &p))
	assert.Equal(t, flexibleInt(4), p.AdminLevel)

	require.NoError(t, decodeJSON(`{"admin_level": "n/a"}`, &p))
	assert.Equal(t, flexibleInt(0), p.AdminLevel)
}

func decodeJSON(s string, v any) error {
	return json.Unmarshal([]byte(s), v)
}
