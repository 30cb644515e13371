package port

import (
	"context"
	"real-estate-system/internal/core/domain"

	"github.com/google/uuid"
)

// DocumentRepositoryPort - хранилище истории версий документов.
// Версии только дописываются; единственное изменение - статус последней версии.
type DocumentRepositoryPort interface {
	// AppendVersion дописывает версию с индексом, равным текущему числу версий
	AppendVersion(ctx context.Context, documentID uuid.UUID, content string, status domain.VersionStatus) (domain.DocumentVersion, error)
	// CompleteLatest переводит последнюю версию в complete
	CompleteLatest(ctx context.Context, documentID uuid.UUID) (domain.DocumentVersion, error)
	// GetVersions возвращает всю историю; domain.ErrDocumentNotFound, если версий нет
	GetVersions(ctx context.Context, documentID uuid.UUID) ([]domain.DocumentVersion, error)
	// CountVersions - число версий (0 для неизвестного документа)
	CountVersions(ctx context.Context, documentID uuid.UUID) (int, error)
}
