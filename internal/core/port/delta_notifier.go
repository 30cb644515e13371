package port

import (
	"context"

	"github.com/google/uuid"
)

// Типы исходящих событий для клиента-рендерера
const (
	DeltaEventType  = "real-estate-delta"
	FinishEventType = "finish"
)

// DeltaEvent - исходящее событие об очередной версии документа
type DeltaEvent struct {
	Type         string    `json:"type"`
	DocumentID   uuid.UUID `json:"document_id"`
	VersionIndex int       `json:"version_index"`
	Status       string    `json:"status"`
	Content      string    `json:"content"`
}

// DeltaNotifierPort доставляет события версий подписчикам документа
type DeltaNotifierPort interface {
	Notify(ctx context.Context, event DeltaEvent) error
}
