package constants

// Пути Geoapify API
const (
	GeoapifyGeocodePath      = "/v1/geocode/search"
	GeoapifyPartOfPath       = "/v1/boundaries/part-of"
	GeoapifyPlaceDetailsPath = "/v2/place-details"
)

const (
	// GeoapifyBoundaryGeometry - упрощенная геометрия границ (точность ~1000 м)
	GeoapifyBoundaryGeometry = "geometry_1000"
	GeoapifyDetailsFeatures  = "details,geometry"
)
