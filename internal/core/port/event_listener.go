package port

import "context"

// EventListenerPort - компонент, который слушает внешние события
// и запускает соответствующую бизнес-логику
type EventListenerPort interface {
	Start(ctx context.Context) error
	// Close останавливает слушателя, дожидаясь завершения активных обработчиков
	Close() error
}
