package geoapify

import (
	"context"
	"fmt"
	"net/url"
	"real-estate-system/internal/constants"
	"real-estate-system/internal/contextkeys"
	"real-estate-system/internal/core/domain"
	"real-estate-system/internal/core/port"
	"strconv"
	"strings"
)

// Geocode возвращает первый объект поиска по адресу
func (a *GeoapifyAdapter) Geocode(ctx context.Context, address string) (*domain.GeocodedPlace, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"component": "GeoapifyAdapter(Geocode)"})

	query := url.Values{}
	query.Set("text", address)
	query.Set("limit", "1")

	body, err := a.get(ctx, constants.GeoapifyGeocodePath, query, logger)
	if err != nil {
		return nil, err
	}

	features, err := decodeFeatures(body)
	if err != nil {
		return nil, fmt.Errorf("geoapify geocode: failed to decode response: %w", err)
	}
	for _, f := range features {
		if place, ok := toGeocodedPlace(f); ok {
			return place, nil
		}
	}
	return nil, domain.ErrPlaceNotFound
}

// BoundariesPartOf - административные границы, в которые входит точка
func (a *GeoapifyAdapter) BoundariesPartOf(ctx context.Context, position domain.LatLon, levels []string) ([]domain.BoundaryFeature, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"component": "GeoapifyAdapter(BoundariesPartOf)"})

	query := url.Values{}
	query.Set("lat", strconv.FormatFloat(position.Lat, 'f', -1, 64))
	query.Set("lon", strconv.FormatFloat(position.Lon, 'f', -1, 64))
	query.Set("geometry", constants.GeoapifyBoundaryGeometry)
	if len(levels) > 0 {
		query.Set("type", strings.Join(levels, ","))
	}

	body, err := a.get(ctx, constants.GeoapifyPartOfPath, query, logger)
	if err != nil {
		return nil, err
	}

	features, err := decodeFeatures(body)
	if err != nil {
		return nil, fmt.Errorf("geoapify part-of: failed to decode response: %w", err)
	}

	out := make([]domain.BoundaryFeature, 0, len(features))
	for _, f := range features {
		// сервис может вернуть и соседние уровни, фильтруем повторно
		if !matchesLevels(f.Properties, levels) {
			continue
		}
		out = append(out, toBoundaryFeature(f))
	}
	logger.Debug("Boundaries received", port.Fields{"total": len(features), "matched": len(out), "levels": strings.Join(levels, ",")})
	return out, nil
}

// PlaceDetails - объекты детализации места вместе с геометрией
func (a *GeoapifyAdapter) PlaceDetails(ctx context.Context, placeID string) ([]domain.BoundaryFeature, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"component": "GeoapifyAdapter(PlaceDetails)"})

	query := url.Values{}
	query.Set("id", placeID)
	query.Set("features", constants.GeoapifyDetailsFeatures)

	body, err := a.get(ctx, constants.GeoapifyPlaceDetailsPath, query, logger)
	if err != nil {
		return nil, err
	}

	features, err := decodeFeatures(body)
	if err != nil {
		return nil, fmt.Errorf("geoapify place-details: failed to decode response: %w", err)
	}

	out := make([]domain.BoundaryFeature, 0, len(features))
	for _, f := range features {
		out = append(out, toBoundaryFeature(f))
	}
	return out, nil
}
