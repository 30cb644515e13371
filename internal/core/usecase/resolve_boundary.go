package usecase

import (
	"context"
	"real-estate-system/internal/contextkeys"
	"real-estate-system/internal/core/domain"
	"real-estate-system/internal/core/port"
)

// ResolveBoundaryUseCase - разрешение адреса в рамках сессии рендеринга.
// Кэшируются только разрешенные адреса, неудачи повторяются при следующем запросе.
type ResolveBoundaryUseCase struct {
	resolver *BoundaryResolver
	sessions port.BoundarySessionsPort
}

func NewResolveBoundaryUseCase(resolver *BoundaryResolver, sessions port.BoundarySessionsPort) *ResolveBoundaryUseCase {
	return &ResolveBoundaryUseCase{resolver: resolver, sessions: sessions}
}

func (uc *ResolveBoundaryUseCase) Execute(ctx context.Context, sessionID, address string) domain.BoundaryResult {
	cache := uc.sessions.Session(sessionID)

	if cached, ok := cache.Get(address); ok {
		contextkeys.LoggerFromContext(ctx).Debug("Boundary served from session cache", port.Fields{
			"session_id": sessionID,
			"address":    address,
		})
		cached.Address = address
		return cached
	}

	result := uc.resolver.Resolve(ctx, address)
	if !result.Resolved {
		return result
	}

	stored := cache.PutIfAbsent(address, result)
	stored.Address = address
	return stored
}
