package stream

import (
	"context"
	"errors"
	"io"
	"real-estate-system/internal/core/domain"
	"sync"
	"time"
)

var (
	ErrStreamIdle   = errors.New("tool event stream idle timeout")
	ErrStreamClosed = errors.New("tool event stream is closed")
)

// ChannelStream - буферизованный поток событий одного документа.
// Push вызывает транспорт, Recv - пайплайн инжеста.
type ChannelStream struct {
	events      chan domain.ToolEvent
	idleTimeout time.Duration

	// finished закрывается отправителем: после вычитки буфера Recv вернет io.EOF
	finished  chan struct{}
	closeOnce sync.Once
	// done закрывается, когда получатель больше не читает поток
	done     chan struct{}
	doneOnce sync.Once
}

func NewChannelStream(buffer int, idleTimeout time.Duration) *ChannelStream {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelStream{
		events:      make(chan domain.ToolEvent, buffer),
		idleTimeout: idleTimeout,
		finished:    make(chan struct{}),
		done:        make(chan struct{}),
	}
}

// Push кладет событие в поток, блокируясь пока буфер полон
func (s *ChannelStream) Push(ctx context.Context, event domain.ToolEvent) error {
	select {
	case <-s.finished:
		return ErrStreamClosed
	case <-s.done:
		return ErrStreamClosed
	default:
	}

	select {
	case s.events <- event:
		return nil
	case <-s.finished:
		return ErrStreamClosed
	case <-s.done:
		return ErrStreamClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close завершает поток со стороны отправителя
func (s *ChannelStream) Close() {
	s.closeOnce.Do(func() { close(s.finished) })
}

// Detach отмечает, что получатель ушел; последующие Push вернут ErrStreamClosed
func (s *ChannelStream) Detach() {
	s.doneOnce.Do(func() { close(s.done) })
}

func (s *ChannelStream) Recv(ctx context.Context) (domain.ToolEvent, error) {
	var idle <-chan time.Time
	if s.idleTimeout > 0 {
		timer := time.NewTimer(s.idleTimeout)
		defer timer.Stop()
		idle = timer.C
	}

	select {
	case event := <-s.events:
		return event, nil
	case <-s.finished:
		select {
		case event := <-s.events:
			return event, nil
		default:
			return domain.ToolEvent{}, io.EOF
		}
	case <-ctx.Done():
		return domain.ToolEvent{}, ctx.Err()
	case <-idle:
		return domain.ToolEvent{}, ErrStreamIdle
	}
}
