package domain

// LatLon - точка в порядке карты (широта, долгота)
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// LonLat - точка в порядке GeoJSON (долгота, широта), как ее отдает провайдер
type LonLat [2]float64

func (p LonLat) Lon() float64 { return p[0] }
func (p LonLat) Lat() float64 { return p[1] }

// Bounds - прямоугольник видимой области карты
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

type GeometryType string

const (
	GeometryPolygon      GeometryType = "Polygon"
	GeometryMultiPolygon GeometryType = "MultiPolygon"
)

// Geometry - геометрия границы. Заполнено только поле, соответствующее Type.
type Geometry struct {
	Type         GeometryType
	Polygon      [][]LonLat
	MultiPolygon [][][]LonLat
}

// BoundaryFeature - кандидат в границы от провайдера.
// AdminLevel == 0 - уровень неизвестен (наименее специфичный).
type BoundaryFeature struct {
	Name        string
	AdminLevel  int
	FeatureType string
	Geometry    Geometry
}

// GeocodedPlace - результат геокодирования адреса
type GeocodedPlace struct {
	Position  LatLon
	PlaceID   string
	Formatted string
}

// Имена уровней разрешения границы
const (
	TierPartOf       = "part-of"
	TierPlaceDetails = "place-details"
	TierMarker       = "marker"
)

// BoundaryResult - итог разрешения одного адреса.
// Если Resolved == true, Position задана всегда; Boundary может быть пустой (только маркер).
type BoundaryResult struct {
	Address      string   `json:"address"`
	Resolved     bool     `json:"resolved"`
	Position     LatLon   `json:"position"`
	Boundary     []LatLon `json:"boundary"`
	BoundaryName string   `json:"boundary_name"`
	Bounds       Bounds   `json:"bounds"`
	Tier         string   `json:"tier,omitempty"`
	PlaceID      string   `json:"place_id,omitempty"`
	Geohash      string   `json:"geohash,omitempty"`
}

// UnresolvedBoundary - явный пустой результат, когда геокодирование не удалось
func UnresolvedBoundary(address string) BoundaryResult {
	return BoundaryResult{
		Address:  address,
		Boundary: []LatLon{},
	}
}
