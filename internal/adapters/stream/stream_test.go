package stream

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"real-estate-system/internal/core/domain"
	"real-estate-system/internal/core/port"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resultEvent(payload string) domain.ToolEvent {
	return domain.ToolEvent{Type: domain.ToolEventResult, Result: json.RawMessage(payload)}
}

func TestChannelStream_DrainsBufferThenEOF(t *testing.T) {
	s := NewChannelStream(4, time.Second)
	ctx := context.Background()

	require.NoError(t, s.Push(ctx, resultEvent(`[1]`)))
	require.NoError(t, s.Push(ctx, resultEvent(`[2]`)))
	s.Close()

	assert.ErrorIs(t, s.Push(ctx, resultEvent(`[3]`)), ErrStreamClosed)

	first, err := s.Recv(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `[1]`, string(first.Result))

	second, err := s.Recv(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `[2]`, string(second.Result))

	_, err = s.Recv(ctx)
	assert.ErrorIs(t, err, io.EOF)
}

func TestChannelStream_IdleTimeoutIsNotEOF(t *testing.T) {
	s := NewChannelStream(1, 20*time.Millisecond)

	_, err := s.Recv(context.Background())

	assert.ErrorIs(t, err, ErrStreamIdle)
	assert.False(t, errors.Is(err, io.EOF))
}

func TestChannelStream_PushAfterDetachFails(t *testing.T) {
	s := NewChannelStream(1, 0)
	require.NoError(t, s.Push(context.Background(), resultEvent(`[]`)))
	s.Detach()

	// буфер полон и получатель ушел - Push не должен зависнуть
	assert.ErrorIs(t, s.Push(context.Background(), resultEvent(`[]`)), ErrStreamClosed)
}

func TestDecoderStream_ReadsNDJSON(t *testing.T) {
	body := `{"type":"tool-result","result":[{"address":"a"}]}
{"type":"text-delta"}
{"type":"finish"}
`
	s := NewDecoderStream(strings.NewReader(body))
	ctx := context.Background()

	var types []string
	for {
		ev, err := s.Recv(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		types = append(types, ev.Type)
	}
	assert.Equal(t, []string{"tool-result", "text-delta", "finish"}, types)
}

func TestDecoderStream_TruncatedLineIsInterruption(t *testing.T) {
	s := NewDecoderStream(strings.NewReader(`{"type":"tool-result","result":[{"addr`))

	_, err := s.Recv(context.Background())

	require.Error(t, err)
	assert.False(t, errors.Is(err, io.EOF))
}

func TestDecoderStream_SkipsValuesThatAreNotEvents(t *testing.T) {
	body := `{"type":"text-delta"}
"heartbeat"
{"type":5}
[1,2]
{"type":"tool-result","result":[{"address":"a"}]}
`
	s := NewDecoderStream(strings.NewReader(body))
	ctx := context.Background()

	ev, err := s.Recv(ctx)
	require.NoError(t, err)
	assert.Equal(t, "text-delta", ev.Type)

	ev, err = s.Recv(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.ToolEventResult, ev.Type)
	assert.JSONEq(t, `[{"address":"a"}]`, string(ev.Result))

	_, err = s.Recv(ctx)
	assert.ErrorIs(t, err, io.EOF)
}

func TestDecoderStream_SyntaxErrorIsInterruption(t *testing.T) {
	s := NewDecoderStream(strings.NewReader("{\"type\":\"text-delta\"}\n{oops}\n"))
	ctx := context.Background()

	_, err := s.Recv(ctx)
	require.NoError(t, err)

	_, err = s.Recv(ctx)
	require.Error(t, err)
	assert.False(t, errors.Is(err, io.EOF))
}

type collectingIngest struct {
	mu    sync.Mutex
	runs  map[uuid.UUID][]string
	kinds map[uuid.UUID]domain.IngestionKind
	ended chan uuid.UUID
}

func newCollectingIngest() *collectingIngest {
	return &collectingIngest{
		runs:  make(map[uuid.UUID][]string),
		kinds: make(map[uuid.UUID]domain.IngestionKind),
		ended: make(chan uuid.UUID, 10),
	}
}

func (c *collectingIngest) Execute(ctx context.Context, id uuid.UUID, kind domain.IngestionKind, s port.ToolEventStreamPort) (domain.IngestionReport, error) {
	defer func() { c.ended <- id }()
	c.mu.Lock()
	c.kinds[id] = kind
	c.mu.Unlock()

	for {
		ev, err := s.Recv(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return domain.IngestionReport{State: domain.IngestionComplete}, nil
			}
			return domain.IngestionReport{State: domain.IngestionAbandoned}, err
		}
		c.mu.Lock()
		c.runs[id] = append(c.runs[id], string(ev.Result))
		c.mu.Unlock()
		if ev.Type == domain.ToolEventFinish {
			return domain.IngestionReport{State: domain.IngestionComplete}, nil
		}
	}
}

func waitEnded(t *testing.T, c *collectingIngest, id uuid.UUID) {
	t.Helper()
	select {
	case got := <-c.ended:
		require.Equal(t, id, got)
	case <-time.After(2 * time.Second):
		t.Fatal("ingestion did not finish")
	}
}

func TestRouter_RoutesEventsPerDocumentInOrder(t *testing.T) {
	ingest := newCollectingIngest()
	router := NewRouter(ingest, RouterConfig{Buffer: 8, IdleTimeout: time.Second}, noopLogger{})
	defer router.Close()

	ctx := context.Background()
	doc := uuid.New()

	require.NoError(t, router.Dispatch(ctx, doc, domain.IngestionUpdate, resultEvent(`[1]`)))
	require.NoError(t, router.Dispatch(ctx, doc, domain.IngestionCreate, resultEvent(`[2]`)))
	require.NoError(t, router.Dispatch(ctx, doc, domain.IngestionCreate, domain.ToolEvent{Type: domain.ToolEventFinish}))

	waitEnded(t, ingest, doc)
	assert.Equal(t, 0, router.Active())

	ingest.mu.Lock()
	defer ingest.mu.Unlock()
	assert.Equal(t, []string{"[1]", "[2]", ""}, ingest.runs[doc])
	assert.Equal(t, domain.IngestionUpdate, ingest.kinds[doc], "first event decides the run kind")
}

func TestRouter_CloseCancelsOpenStreams(t *testing.T) {
	ingest := newCollectingIngest()
	router := NewRouter(ingest, RouterConfig{}, noopLogger{})

	doc := uuid.New()
	require.NoError(t, router.Dispatch(context.Background(), doc, domain.IngestionCreate, resultEvent(`[]`)))
	assert.Equal(t, 1, router.Active())

	require.NoError(t, router.Close())
	waitEnded(t, ingest, doc)
	assert.Equal(t, 0, router.Active())

	err := router.Dispatch(context.Background(), uuid.New(), domain.IngestionCreate, resultEvent(`[]`))
	assert.ErrorIs(t, err, context.Canceled)
}

type noopLogger struct{}

func (noopLogger) Info(string, port.Fields)              {}
func (noopLogger) Warn(string, port.Fields)              {}
func (noopLogger) Error(string, error, port.Fields)      {}
func (noopLogger) Debug(string, port.Fields)             {}
func (n noopLogger) WithFields(port.Fields) port.LoggerPort { return n }
