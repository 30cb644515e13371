package usecases_port

import (
	"context"
	"real-estate-system/internal/core/domain"
)

type ResolveBoundaryUseCasePort interface {
	Execute(ctx context.Context, sessionID, address string) domain.BoundaryResult
}
