package usecase

import (
	"context"
	"real-estate-system/internal/contextkeys"
	"real-estate-system/internal/core/domain"
	"real-estate-system/internal/core/port"

	"github.com/google/uuid"
)

type GetDocumentUseCase struct {
	repo port.DocumentRepositoryPort
}

func NewGetDocumentUseCase(repo port.DocumentRepositoryPort) *GetDocumentUseCase {
	return &GetDocumentUseCase{repo: repo}
}

func (uc *GetDocumentUseCase) Execute(ctx context.Context, documentID uuid.UUID) (*domain.Document, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case":    "GetDocument",
		"document_id": documentID.String(),
	})

	versions, err := uc.repo.GetVersions(ctx, documentID)
	if err != nil {
		ucLogger.Error("Repository failed to load versions", err, nil)
		return nil, err
	}

	doc, err := domain.RestoreDocument(documentID, versions)
	if err != nil {
		ucLogger.Error("Stored history is not contiguous", err, port.Fields{"versions": len(versions)})
		return nil, err
	}

	ucLogger.Debug("Document loaded", port.Fields{"version_count": doc.Count()})
	return doc, nil
}
