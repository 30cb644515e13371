package usecase

import (
	"context"
	"real-estate-system/internal/core/domain"
	"real-estate-system/internal/core/port"
	"sort"
	"strings"
)

// BoundaryTier - одна стратегия поиска контура для уже геокодированного места.
// Пустой контур без ошибки означает "не нашлось", резолвер переходит к следующей.
type BoundaryTier interface {
	Name() string
	Boundary(ctx context.Context, place domain.GeocodedPlace) (ring []domain.LonLat, name string, err error)
}

// DefaultBoundaryLevels - уровни, запрашиваемые у part-of
var DefaultBoundaryLevels = []string{"city", "district", "suburb", "neighbourhood", "residential"}

// DefaultBoundaryTiers - порядок по умолчанию: part-of, затем детализация места
func DefaultBoundaryTiers(geo port.GeoProviderPort, levels []string) []BoundaryTier {
	return []BoundaryTier{
		NewPartOfTier(geo, levels),
		NewPlaceDetailsTier(geo),
	}
}

// PartOfTier - административные границы, содержащие точку.
// Самый специфичный уровень (наибольший admin_level) проверяется первым.
type PartOfTier struct {
	geo    port.GeoProviderPort
	levels []string
}

func NewPartOfTier(geo port.GeoProviderPort, levels []string) *PartOfTier {
	if len(levels) == 0 {
		levels = DefaultBoundaryLevels
	}
	return &PartOfTier{geo: geo, levels: levels}
}

func (t *PartOfTier) Name() string { return domain.TierPartOf }

func (t *PartOfTier) Boundary(ctx context.Context, place domain.GeocodedPlace) ([]domain.LonLat, string, error) {
	features, err := t.geo.BoundariesPartOf(ctx, place.Position, t.levels)
	if err != nil {
		return nil, "", err
	}

	sort.SliceStable(features, func(i, j int) bool {
		return features[i].AdminLevel > features[j].AdminLevel
	})

	for _, f := range features {
		if ring := domain.SelectRing(f.Geometry, place.Position); len(ring) > 0 {
			return ring, f.Name, nil
		}
	}
	return nil, "", nil
}

// PlaceDetailsTier - геометрия из детализации самого места
type PlaceDetailsTier struct {
	geo port.GeoProviderPort
}

func NewPlaceDetailsTier(geo port.GeoProviderPort) *PlaceDetailsTier {
	return &PlaceDetailsTier{geo: geo}
}

func (t *PlaceDetailsTier) Name() string { return domain.TierPlaceDetails }

func (t *PlaceDetailsTier) Boundary(ctx context.Context, place domain.GeocodedPlace) ([]domain.LonLat, string, error) {
	if place.PlaceID == "" {
		return nil, "", nil
	}

	features, err := t.geo.PlaceDetails(ctx, place.PlaceID)
	if err != nil {
		return nil, "", err
	}

	for _, f := range features {
		if !isDetailsFeature(f.FeatureType) {
			continue
		}
		if ring := domain.SelectRing(f.Geometry, place.Position); len(ring) > 0 {
			return ring, f.Name, nil
		}
	}
	return nil, "", nil
}

func isDetailsFeature(featureType string) bool {
	return featureType == "details" || strings.HasPrefix(featureType, "details.")
}
