package usecases_port

import (
	"context"
	"real-estate-system/internal/core/domain"

	"github.com/google/uuid"
)

type GetDocumentUseCasePort interface {
	Execute(ctx context.Context, documentID uuid.UUID) (*domain.Document, error)
}
