package port

import (
	"context"
	"real-estate-system/internal/core/domain"
)

// ToolEventStreamPort - входящий поток событий от слоя исполнения инструментов.
// Recv блокируется до следующего события; io.EOF означает штатное завершение потока,
// любая другая ошибка - обрыв транспорта.
type ToolEventStreamPort interface {
	Recv(ctx context.Context) (domain.ToolEvent, error)
}
