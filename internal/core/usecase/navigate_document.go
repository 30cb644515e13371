package usecase

import (
	"context"
	"real-estate-system/internal/core/domain"

	"github.com/google/uuid"
)

// NavigateDocumentUseCase - навигация без состояния на сервере:
// клиент передает индекс, от которого шагает
type NavigateDocumentUseCase struct {
	getDocument *GetDocumentUseCase
}

func NewNavigateDocumentUseCase(getDocument *GetDocumentUseCase) *NavigateDocumentUseCase {
	return &NavigateDocumentUseCase{getDocument: getDocument}
}

func (uc *NavigateDocumentUseCase) Execute(ctx context.Context, documentID uuid.UUID, from int, direction domain.NavigationDirection) (domain.NavigationResult, error) {
	doc, err := uc.getDocument.Execute(ctx, documentID)
	if err != nil {
		return domain.NavigationResult{}, err
	}

	// признак последней версии считается по той же загруженной истории
	controller := NewDocumentController(doc)
	if err := controller.Select(from); err != nil {
		return domain.NavigationResult{}, err
	}
	controller.Navigate(direction)

	version, err := controller.Current()
	if err != nil {
		return domain.NavigationResult{}, err
	}
	return domain.NavigationResult{Version: version, IsCurrentVersion: controller.IsCurrentVersion()}, nil
}
