package domain

import "math"

const (
	// BoundsPaddingRatio - запас вокруг выбранного контура, доля от его размера с каждой стороны
	BoundsPaddingRatio = 0.1
	// MarkerBoundsOffset - отступ в градусах вокруг точки, когда контура нет
	MarkerBoundsOffset = 0.005
)

// FlipRing переводит контур из (lon, lat) провайдера в (lat, lon) карты
func FlipRing(ring []LonLat) []LatLon {
	out := make([]LatLon, len(ring))
	for i, p := range ring {
		out[i] = LatLon{Lat: p.Lat(), Lon: p.Lon()}
	}
	return out
}

// SelectRing выбирает контур для отрисовки.
// Polygon - внешний контур. MultiPolygon - внешний контур того полигона,
// ближайшая вершина которого находится ближе всего к целевой точке.
//
// Расстояние евклидово в пространстве координат, а близость полигона к точке
// оценивается по ближайшей вершине, а не проверкой вхождения точки. Для вогнутых
// или соседних полигонов выбор может быть неточным, это известное ограничение.
func SelectRing(g Geometry, target LatLon) []LonLat {
	switch g.Type {
	case GeometryPolygon:
		if len(g.Polygon) == 0 {
			return nil
		}
		return g.Polygon[0]

	case GeometryMultiPolygon:
		var best []LonLat
		bestDist := math.Inf(1)
		for _, polygon := range g.MultiPolygon {
			if len(polygon) == 0 || len(polygon[0]) == 0 {
				continue
			}
			d := NearestVertexDistance(polygon[0], target)
			if d < bestDist {
				bestDist = d
				best = polygon[0]
			}
		}
		return best
	}
	return nil
}

// NearestVertexDistance - минимальное евклидово расстояние от точки до вершин контура
func NearestVertexDistance(ring []LonLat, target LatLon) float64 {
	best := math.Inf(1)
	for _, p := range ring {
		dLat := p.Lat() - target.Lat
		dLon := p.Lon() - target.Lon
		if d := math.Sqrt(dLat*dLat + dLon*dLon); d < best {
			best = d
		}
	}
	return best
}

// BoundsOf - ограничивающий прямоугольник контура
func BoundsOf(ring []LatLon) Bounds {
	if len(ring) == 0 {
		return Bounds{}
	}
	b := Bounds{
		MinLat: ring[0].Lat, MaxLat: ring[0].Lat,
		MinLon: ring[0].Lon, MaxLon: ring[0].Lon,
	}
	for _, p := range ring[1:] {
		b.MinLat = math.Min(b.MinLat, p.Lat)
		b.MaxLat = math.Max(b.MaxLat, p.Lat)
		b.MinLon = math.Min(b.MinLon, p.Lon)
		b.MaxLon = math.Max(b.MaxLon, p.Lon)
	}
	return b
}

// Pad расширяет прямоугольник на ratio от его высоты и ширины с каждой стороны
func (b Bounds) Pad(ratio float64) Bounds {
	latBuf := math.Abs(b.MaxLat-b.MinLat) * ratio
	lonBuf := math.Abs(b.MaxLon-b.MinLon) * ratio
	return Bounds{
		MinLat: b.MinLat - latBuf,
		MaxLat: b.MaxLat + latBuf,
		MinLon: b.MinLon - lonBuf,
		MaxLon: b.MaxLon + lonBuf,
	}
}

// MarkerBounds - область карты вокруг одиночной точки
func MarkerBounds(p LatLon, offset float64) Bounds {
	return Bounds{
		MinLat: p.Lat - offset,
		MaxLat: p.Lat + offset,
		MinLon: p.Lon - offset,
		MaxLon: p.Lon + offset,
	}
}
