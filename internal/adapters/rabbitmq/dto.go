package rabbitmq_adapter

import (
	"encoding/json"
	"real-estate-system/internal/core/domain"
	"real-estate-system/internal/core/port"

	"github.com/google/uuid"
)

// ToolEventDTO - событие слоя исполнения инструментов в сообщении брокера
type ToolEventDTO struct {
	Type   string          `json:"type"`
	Result json.RawMessage `json:"result,omitempty"`
}

// ToolResultMessageDTO - входящее сообщение очереди tool-results
type ToolResultMessageDTO struct {
	DocumentID uuid.UUID    `json:"document_id"`
	Kind       string       `json:"kind,omitempty"`
	Event      ToolEventDTO `json:"event"`
}

func (m ToolResultMessageDTO) toDomain() (domain.IngestionKind, domain.ToolEvent) {
	kind := domain.IngestionCreate
	if domain.IngestionKind(m.Kind) == domain.IngestionUpdate {
		kind = domain.IngestionUpdate
	}
	return kind, domain.ToolEvent{Type: m.Event.Type, Result: m.Event.Result}
}

// DeltaEventDTO - исходящее событие о версии документа
type DeltaEventDTO struct {
	Type         string    `json:"type"`
	DocumentID   uuid.UUID `json:"document_id"`
	VersionIndex int       `json:"version_index"`
	Status       string    `json:"status"`
	Content      string    `json:"content"`
}

func toDeltaEventDTO(e port.DeltaEvent) DeltaEventDTO {
	return DeltaEventDTO{
		Type:         e.Type,
		DocumentID:   e.DocumentID,
		VersionIndex: e.VersionIndex,
		Status:       e.Status,
		Content:      e.Content,
	}
}
