package geoapify

import (
	"bytes"
	"encoding/json"
	"real-estate-system/internal/core/domain"
	"strings"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// decodeGeometry разбирает GeoJSON-геометрию через go-geom.
// Пустая или null геометрия дает nil без ошибки.
func decodeGeometry(raw json.RawMessage) (geom.T, string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, "", nil
	}

	var header geometryHeader
	if err := json.Unmarshal(trimmed, &header); err != nil {
		return nil, "", err
	}

	var g geom.T
	if err := geojson.Unmarshal(trimmed, &g); err != nil {
		return nil, header.Type, err
	}
	return g, header.Type, nil
}

func toLonLat(c geom.Coord) domain.LonLat {
	return domain.LonLat{c.X(), c.Y()}
}

func toRing(coords []geom.Coord) []domain.LonLat {
	ring := make([]domain.LonLat, len(coords))
	for i, c := range coords {
		ring[i] = toLonLat(c)
	}
	return ring
}

func toRings(coords [][]geom.Coord) [][]domain.LonLat {
	rings := make([][]domain.LonLat, len(coords))
	for i, c := range coords {
		rings[i] = toRing(c)
	}
	return rings
}

func toGeometry(raw json.RawMessage) domain.Geometry {
	g, typ, err := decodeGeometry(raw)
	if err != nil || g == nil {
		return domain.Geometry{Type: domain.GeometryType(typ)}
	}

	switch t := g.(type) {
	case *geom.Polygon:
		return domain.Geometry{Type: domain.GeometryPolygon, Polygon: toRings(t.Coords())}
	case *geom.MultiPolygon:
		coords := t.Coords()
		polygons := make([][][]domain.LonLat, len(coords))
		for i, p := range coords {
			polygons[i] = toRings(p)
		}
		return domain.Geometry{Type: domain.GeometryMultiPolygon, MultiPolygon: polygons}
	}
	return domain.Geometry{Type: domain.GeometryType(typ)}
}

func toBoundaryFeature(f feature) domain.BoundaryFeature {
	level := int(f.Properties.AdminLevel)
	if level == 0 && f.Properties.Datasource != nil {
		level = int(f.Properties.Datasource.Raw.AdminLevel)
	}
	return domain.BoundaryFeature{
		Name:        f.Properties.Name,
		AdminLevel:  level,
		FeatureType: f.Properties.FeatureType,
		Geometry:    toGeometry(f.Geometry),
	}
}

// toGeocodedPlace берет координаты из свойств, а если их нет - из точки геометрии
func toGeocodedPlace(f feature) (*domain.GeocodedPlace, bool) {
	place := &domain.GeocodedPlace{
		PlaceID:   f.Properties.PlaceID,
		Formatted: f.Properties.Formatted,
	}

	if f.Properties.Lat != nil && f.Properties.Lon != nil {
		place.Position = domain.LatLon{Lat: *f.Properties.Lat, Lon: *f.Properties.Lon}
		return place, true
	}

	g, _, err := decodeGeometry(f.Geometry)
	if err != nil {
		return nil, false
	}
	if point, ok := g.(*geom.Point); ok && len(point.FlatCoords()) >= 2 {
		p := toLonLat(point.Coords())
		place.Position = domain.LatLon{Lat: p.Lat(), Lon: p.Lon()}
		return place, true
	}
	return nil, false
}

// matchesLevels - подходит ли граница под запрошенные уровни.
// Объекты без признаков уровня не отбрасываются.
func matchesLevels(p properties, levels []string) bool {
	if len(levels) == 0 {
		return true
	}
	if p.ResultType == "" && len(p.Categories) == 0 {
		return true
	}
	for _, level := range levels {
		if strings.EqualFold(p.ResultType, level) {
			return true
		}
		for _, c := range p.Categories {
			if strings.Contains(c, level) {
				return true
			}
		}
	}
	return false
}
