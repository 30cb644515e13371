package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"real-estate-system/internal/contextkeys"
	"real-estate-system/internal/core/port"
	"sync"
)

var ErrNotifierClosed = errors.New("notifier is closed")

// ClientChannel - поток SSE-кадров одному подписчику
type ClientChannel chan []byte

type eventWithContext struct {
	ctx   context.Context
	event port.DeltaEvent
}

// SSENotifier рассылает события версий подписчикам документа.
// Один диспетчер сохраняет порядок событий внутри документа.
type SSENotifier struct {
	// ключ - ID документа, значение - подписчики (вкладки)
	clients map[string][]ClientChannel
	mu      sync.RWMutex

	eventChan chan eventWithContext
	done      chan struct{}
	closeOnce sync.Once
	stopped   chan struct{}

	logger port.LoggerPort
}

func NewSSENotifier(baseLogger port.LoggerPort) *SSENotifier {
	n := &SSENotifier{
		clients:   make(map[string][]ClientChannel),
		eventChan: make(chan eventWithContext, 100),
		done:      make(chan struct{}),
		stopped:   make(chan struct{}),
		logger:    baseLogger.WithFields(port.Fields{"component": "SSENotifier"}),
	}
	go n.dispatcher()
	return n
}

// FormatSSE собирает кадр "event: ...\ndata: ...\n\n"
func FormatSSE(eventType string, payload []byte) []byte {
	return []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", eventType, payload))
}

func (n *SSENotifier) dispatcher() {
	defer close(n.stopped)
	n.logger.Debug("Notifier dispatcher started", nil)

	for {
		select {
		case <-n.done:
			n.logger.Debug("Notifier dispatcher stopped", nil)
			return
		case pkg := <-n.eventChan:
			n.dispatch(pkg)
		}
	}
}

func (n *SSENotifier) dispatch(pkg eventWithContext) {
	event := pkg.event
	documentID := event.DocumentID.String()

	eventLogger := contextkeys.LoggerFromContext(pkg.ctx).WithFields(port.Fields{
		"component":     "SSENotifier.dispatcher",
		"event_type":    event.Type,
		"document_id":   documentID,
		"version_index": event.VersionIndex,
	})

	payload, err := json.Marshal(event)
	if err != nil {
		eventLogger.Error("Failed to marshal event", err, nil)
		return
	}
	frame := FormatSSE(event.Type, payload)

	n.mu.RLock()
	defer n.mu.RUnlock()

	channels, found := n.clients[documentID]
	if !found {
		eventLogger.Debug("No subscribers for document, event dropped", nil)
		return
	}
	for _, ch := range channels {
		select {
		case ch <- frame:
		default:
			eventLogger.Warn("Subscriber channel is full, skipping", nil)
		}
	}
}

// Notify ставит событие в очередь диспетчера
func (n *SSENotifier) Notify(ctx context.Context, event port.DeltaEvent) error {
	select {
	case n.eventChan <- eventWithContext{ctx: ctx, event: event}:
		return nil
	case <-n.done:
		return ErrNotifierClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// AddClient регистрирует новое SSE-соединение для документа
func (n *SSENotifier) AddClient(documentID string) ClientChannel {
	n.mu.Lock()
	defer n.mu.Unlock()

	ch := make(ClientChannel, 100)
	n.clients[documentID] = append(n.clients[documentID], ch)

	n.logger.Info("Subscriber connected", port.Fields{
		"document_id":       documentID,
		"total_subscribers": len(n.clients[documentID]),
	})
	return ch
}

// RemoveClient удаляет соединение, когда клиент отключился
func (n *SSENotifier) RemoveClient(documentID string, ch ClientChannel) {
	n.mu.Lock()
	defer n.mu.Unlock()

	channels, found := n.clients[documentID]
	if !found {
		return
	}

	remaining := channels[:0:0]
	for _, c := range channels {
		if c != ch {
			remaining = append(remaining, c)
		}
	}

	if len(remaining) == 0 {
		delete(n.clients, documentID)
		n.logger.Debug("Last subscriber disconnected, document removed", port.Fields{"document_id": documentID})
		return
	}
	n.clients[documentID] = remaining
	n.logger.Info("Subscriber disconnected", port.Fields{
		"document_id":           documentID,
		"remaining_subscribers": len(remaining),
	})
}

// Close останавливает диспетчер; события в очереди отбрасываются
func (n *SSENotifier) Close() error {
	n.closeOnce.Do(func() {
		close(n.done)
	})
	<-n.stopped
	return nil
}
