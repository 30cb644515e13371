package stream

import (
	"context"
	"errors"
	"real-estate-system/internal/contextkeys"
	"real-estate-system/internal/core/domain"
	"real-estate-system/internal/core/port"
	"real-estate-system/internal/core/port/usecases_port"
	"sync"
	"time"

	"github.com/google/uuid"
)

type RouterConfig struct {
	Buffer      int
	IdleTimeout time.Duration
}

type session struct {
	stream *ChannelStream
	kind   domain.IngestionKind
}

// Router раскладывает события из брокера по потокам документов
// и запускает пайплайн инжеста на каждый новый поток.
type Router struct {
	ingest usecases_port.IngestListingsUseCasePort
	cfg    RouterConfig
	logger port.LoggerPort

	mu       sync.Mutex
	sessions map[uuid.UUID]*session

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func NewRouter(ingest usecases_port.IngestListingsUseCasePort, cfg RouterConfig, logger port.LoggerPort) *Router {
	if cfg.Buffer <= 0 {
		cfg.Buffer = 64
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Router{
		ingest:   ingest,
		cfg:      cfg,
		logger:   logger.WithFields(port.Fields{"component": "StreamRouter"}),
		sessions: make(map[uuid.UUID]*session),
		baseCtx:  ctx,
		cancel:   cancel,
	}
}

// Dispatch доставляет событие в поток документа, открывая поток при первом событии.
// Вид потока (create/update) определяется первым событием.
func (r *Router) Dispatch(ctx context.Context, documentID uuid.UUID, kind domain.IngestionKind, event domain.ToolEvent) error {
	s, err := r.sessionFor(ctx, documentID, kind)
	if err != nil {
		return err
	}

	if err := s.stream.Push(ctx, event); err != nil {
		if errors.Is(err, ErrStreamClosed) {
			r.forget(documentID, s)
		}
		return err
	}

	if event.Type == domain.ToolEventFinish || event.Type == domain.ToolEventAbort {
		s.stream.Close()
		r.forget(documentID, s)
	}
	return nil
}

func (r *Router) sessionFor(ctx context.Context, documentID uuid.UUID, kind domain.IngestionKind) (*session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[documentID]; ok {
		return s, nil
	}
	if err := r.baseCtx.Err(); err != nil {
		return nil, err
	}

	s := &session{
		stream: NewChannelStream(r.cfg.Buffer, r.cfg.IdleTimeout),
		kind:   kind,
	}
	r.sessions[documentID] = s

	// запуск живет дольше сообщения, поэтому от ctx берем только логгер и trace_id
	runCtx := contextkeys.ContextWithLogger(r.baseCtx, contextkeys.LoggerFromContext(ctx))
	if traceID := contextkeys.TraceIDFromContext(ctx); traceID != "" {
		runCtx = contextkeys.ContextWithTraceID(runCtx, traceID)
	}

	r.wg.Add(1)
	go r.run(runCtx, documentID, s)

	r.logger.Info("Ingestion stream opened", port.Fields{
		"document_id": documentID.String(),
		"kind":        string(kind),
	})
	return s, nil
}

func (r *Router) run(ctx context.Context, documentID uuid.UUID, s *session) {
	defer r.wg.Done()
	defer r.forget(documentID, s)
	defer s.stream.Detach()

	runLogger := r.logger.WithFields(port.Fields{
		"document_id": documentID.String(),
		"kind":        string(s.kind),
	})

	report, err := r.ingest.Execute(ctx, documentID, s.kind, s.stream)
	fields := port.Fields{
		"state":             string(report.State),
		"versions_appended": report.VersionsAppended,
		"events_seen":       report.EventsSeen,
		"events_skipped":    report.EventsSkipped,
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		runLogger.Error("Ingestion finished with error", err, fields)
		return
	}
	runLogger.Info("Ingestion stream closed", fields)
}

func (r *Router) forget(documentID uuid.UUID, s *session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.sessions[documentID]; ok && current == s {
		delete(r.sessions, documentID)
	}
}

// Active - число открытых потоков
func (r *Router) Active() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Close прерывает все открытые потоки и ждет завершения их пайплайнов
func (r *Router) Close() error {
	r.cancel()
	r.wg.Wait()
	return nil
}
