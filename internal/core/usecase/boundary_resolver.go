package usecase

import (
	"context"
	"real-estate-system/internal/contextkeys"
	"real-estate-system/internal/core/domain"
	"real-estate-system/internal/core/port"
	"strings"

	"github.com/mmcloughlin/geohash"
)

const positionGeohashPrecision = 9

// BoundaryResolver превращает адрес в точку, контур и область карты.
// Никогда не возвращает ошибку: сбои провайдера понижают уровень результата.
type BoundaryResolver struct {
	geo   port.GeoProviderPort
	tiers []BoundaryTier
}

func NewBoundaryResolver(geo port.GeoProviderPort, tiers []BoundaryTier) *BoundaryResolver {
	return &BoundaryResolver{geo: geo, tiers: tiers}
}

func (r *BoundaryResolver) Resolve(ctx context.Context, address string) domain.BoundaryResult {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "BoundaryResolver",
		"address":   address,
	})

	if strings.TrimSpace(address) == "" {
		return domain.UnresolvedBoundary(address)
	}

	place, err := r.geo.Geocode(ctx, address)
	if err != nil || place == nil {
		if err != nil {
			logger.Warn("Geocoding failed, address left unresolved", port.Fields{"error": err.Error()})
		}
		return domain.UnresolvedBoundary(address)
	}

	result := domain.BoundaryResult{
		Address:  address,
		Resolved: true,
		Position: place.Position,
		PlaceID:  place.PlaceID,
		Geohash:  geohash.EncodeWithPrecision(place.Position.Lat, place.Position.Lon, positionGeohashPrecision),
	}

	for _, tier := range r.tiers {
		ring, name, err := tier.Boundary(ctx, *place)
		if err != nil {
			logger.Warn("Boundary tier failed, trying next", port.Fields{"tier": tier.Name(), "error": err.Error()})
			continue
		}
		if len(ring) == 0 {
			logger.Debug("Boundary tier found nothing", port.Fields{"tier": tier.Name()})
			continue
		}

		boundary := domain.FlipRing(ring)
		result.Boundary = boundary
		result.BoundaryName = name
		result.Bounds = domain.BoundsOf(boundary).Pad(domain.BoundsPaddingRatio)
		result.Tier = tier.Name()
		return result
	}

	result.Boundary = []domain.LatLon{}
	result.Bounds = domain.MarkerBounds(place.Position, domain.MarkerBoundsOffset)
	result.Tier = domain.TierMarker
	return result
}
