package memory_adapter

import (
	"context"
	"real-estate-system/internal/core/domain"
	"sync"

	"github.com/google/uuid"
)

// MemoryDocumentRepository держит историю версий в памяти процесса
type MemoryDocumentRepository struct {
	mu   sync.RWMutex
	docs map[uuid.UUID]*domain.Document
}

func NewMemoryDocumentRepository() *MemoryDocumentRepository {
	return &MemoryDocumentRepository{docs: make(map[uuid.UUID]*domain.Document)}
}

func (r *MemoryDocumentRepository) AppendVersion(ctx context.Context, documentID uuid.UUID, content string, status domain.VersionStatus) (domain.DocumentVersion, error) {
	if err := ctx.Err(); err != nil {
		return domain.DocumentVersion{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	doc, ok := r.docs[documentID]
	if !ok {
		doc = domain.NewDocument(documentID)
		r.docs[documentID] = doc
	}
	return doc.Append(content, status), nil
}

func (r *MemoryDocumentRepository) CompleteLatest(ctx context.Context, documentID uuid.UUID) (domain.DocumentVersion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, ok := r.docs[documentID]
	if !ok {
		return domain.DocumentVersion{}, domain.ErrDocumentNotFound
	}
	return doc.Complete()
}

func (r *MemoryDocumentRepository) GetVersions(ctx context.Context, documentID uuid.UUID) ([]domain.DocumentVersion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, ok := r.docs[documentID]
	if !ok || doc.Count() == 0 {
		return nil, domain.ErrDocumentNotFound
	}
	return doc.Versions(), nil
}

func (r *MemoryDocumentRepository) CountVersions(ctx context.Context, documentID uuid.UUID) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if doc, ok := r.docs[documentID]; ok {
		return doc.Count(), nil
	}
	return 0, nil
}
