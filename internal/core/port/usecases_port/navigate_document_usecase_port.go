package usecases_port

import (
	"context"
	"real-estate-system/internal/core/domain"

	"github.com/google/uuid"
)

type NavigateDocumentUseCasePort interface {
	Execute(ctx context.Context, documentID uuid.UUID, from int, direction domain.NavigationDirection) (domain.NavigationResult, error)
}
