package port

import (
	"context"
	"real-estate-system/internal/core/domain"
)

// GeoProviderPort - внешний сервис геокодирования и границ.
// Все геометрии возвращаются в порядке (lon, lat), как их отдает провайдер.
type GeoProviderPort interface {
	// Geocode возвращает первый найденный объект; domain.ErrPlaceNotFound, если ничего нет
	Geocode(ctx context.Context, address string) (*domain.GeocodedPlace, error)
	// BoundariesPartOf - границы, "содержащие" точку, для запрошенных уровней
	BoundariesPartOf(ctx context.Context, position domain.LatLon, levels []string) ([]domain.BoundaryFeature, error)
	// PlaceDetails - объекты детализации места с геометрией
	PlaceDetails(ctx context.Context, placeID string) ([]domain.BoundaryFeature, error)
}
