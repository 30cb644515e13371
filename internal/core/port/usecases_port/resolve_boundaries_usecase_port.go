package usecases_port

import (
	"context"
	"real-estate-system/internal/core/domain"
)

type ResolveBoundariesUseCasePort interface {
	Execute(ctx context.Context, sessionID string, addresses []string) ([]domain.BoundaryResult, error)
}
