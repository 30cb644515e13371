package geoapify

import (
	"encoding/json"
	"real-estate-system/internal/core/domain"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToGeometry_MultiPolygon(t *testing.T) {
	raw := json.RawMessage(`{"type":"MultiPolygon","coordinates":[
		[[[19.0,42.0],[19.1,42.0],[19.1,42.1],[19.0,42.0]]],
		[[[20.0,43.0],[20.1,43.0],[20.1,43.1],[20.0,43.0]]]
	]}`)

	g := toGeometry(raw)

	assert.Equal(t, domain.GeometryMultiPolygon, g.Type)
	require.Len(t, g.MultiPolygon, 2)
	assert.Equal(t, domain.LonLat{20.0, 43.0}, g.MultiPolygon[1][0][0])
}

func TestToGeometry_NullAndBroken(t *testing.T) {
	assert.Equal(t, domain.Geometry{}, toGeometry(nil))
	assert.Equal(t, domain.Geometry{}, toGeometry(json.RawMessage(`null`)))

	g := toGeometry(json.RawMessage(`{"type":"Polygon","coordinates":"oops"}`))
	assert.Equal(t, domain.GeometryPolygon, g.Type)
	assert.Empty(t, g.Polygon)
}

func TestToGeocodedPlace_FallsBackToPoint(t *testing.T) {
	place, ok := toGeocodedPlace(feature{
		Properties: properties{PlaceID: "p1"},
		Geometry:   json.RawMessage(`{"type":"Point","coordinates":[19.26,42.44]}`),
	})
	require.True(t, ok)
	assert.InDelta(t, 42.44, place.Position.Lat, 1e-9)
	assert.InDelta(t, 19.26, place.Position.Lon, 1e-9)

	_, ok = toGeocodedPlace(feature{})
	assert.False(t, ok)
}
