package usecases_port

import (
	"context"
	"real-estate-system/internal/core/domain"
	"real-estate-system/internal/core/port"

	"github.com/google/uuid"
)

type IngestListingsUseCasePort interface {
	Execute(ctx context.Context, documentID uuid.UUID, kind domain.IngestionKind, stream port.ToolEventStreamPort) (domain.IngestionReport, error)
}
