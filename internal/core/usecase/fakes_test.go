package usecase

import (
	"context"
	"io"
	"real-estate-system/internal/core/domain"
	"real-estate-system/internal/core/port"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// fakeRepo - репозиторий поверх domain.Document
type fakeRepo struct {
	mu   sync.Mutex
	docs map[uuid.UUID]*domain.Document
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{docs: make(map[uuid.UUID]*domain.Document)}
}

func (r *fakeRepo) AppendVersion(_ context.Context, id uuid.UUID, content string, status domain.VersionStatus) (domain.DocumentVersion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok {
		doc = domain.NewDocument(id)
		r.docs[id] = doc
	}
	return doc.Append(content, status), nil
}

func (r *fakeRepo) CompleteLatest(_ context.Context, id uuid.UUID) (domain.DocumentVersion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok {
		return domain.DocumentVersion{}, domain.ErrDocumentNotFound
	}
	return doc.Complete()
}

func (r *fakeRepo) GetVersions(_ context.Context, id uuid.UUID) ([]domain.DocumentVersion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok || doc.Count() == 0 {
		return nil, domain.ErrDocumentNotFound
	}
	return doc.Versions(), nil
}

func (r *fakeRepo) CountVersions(_ context.Context, id uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if doc, ok := r.docs[id]; ok {
		return doc.Count(), nil
	}
	return 0, nil
}

func (r *fakeRepo) versions(id uuid.UUID) []domain.DocumentVersion {
	r.mu.Lock()
	defer r.mu.Unlock()
	if doc, ok := r.docs[id]; ok {
		return doc.Versions()
	}
	return nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []port.DeltaEvent
}

func (n *recordingNotifier) Notify(_ context.Context, e port.DeltaEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
	return nil
}

func (n *recordingNotifier) types() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.events))
	for i, e := range n.events {
		out[i] = e.Type
	}
	return out
}

// sliceStream отдает события по очереди, затем err (или io.EOF)
type sliceStream struct {
	events []domain.ToolEvent
	err    error
	next   int
	onRecv func(n int)
}

func (s *sliceStream) Recv(ctx context.Context) (domain.ToolEvent, error) {
	if s.onRecv != nil {
		s.onRecv(s.next)
	}
	if err := ctx.Err(); err != nil {
		return domain.ToolEvent{}, err
	}
	if s.next < len(s.events) {
		e := s.events[s.next]
		s.next++
		return e, nil
	}
	if s.err != nil {
		return domain.ToolEvent{}, s.err
	}
	return domain.ToolEvent{}, io.EOF
}

func toolResult(result string) domain.ToolEvent {
	return domain.ToolEvent{Type: domain.ToolEventResult, Result: []byte(result)}
}

// mockGeo - мок провайдера на testify/mock
type mockGeo struct {
	mock.Mock
}

func (m *mockGeo) Geocode(ctx context.Context, address string) (*domain.GeocodedPlace, error) {
	args := m.Called(ctx, address)
	place, _ := args.Get(0).(*domain.GeocodedPlace)
	return place, args.Error(1)
}

func (m *mockGeo) BoundariesPartOf(ctx context.Context, position domain.LatLon, levels []string) ([]domain.BoundaryFeature, error) {
	args := m.Called(ctx, position, levels)
	features, _ := args.Get(0).([]domain.BoundaryFeature)
	return features, args.Error(1)
}

func (m *mockGeo) PlaceDetails(ctx context.Context, placeID string) ([]domain.BoundaryFeature, error) {
	args := m.Called(ctx, placeID)
	features, _ := args.Get(0).([]domain.BoundaryFeature)
	return features, args.Error(1)
}

// mapSessions - кэш сессий без вытеснения
type mapSessions struct {
	mu       sync.Mutex
	sessions map[string]*mapCache
}

func newMapSessions() *mapSessions {
	return &mapSessions{sessions: make(map[string]*mapCache)}
}

func (s *mapSessions) Session(id string) port.BoundaryCachePort {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.sessions[id]
	if !ok {
		c = &mapCache{items: make(map[string]domain.BoundaryResult)}
		s.sessions[id] = c
	}
	return c
}

type mapCache struct {
	mu    sync.Mutex
	items map[string]domain.BoundaryResult
}

func (c *mapCache) Get(address string) (domain.BoundaryResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.items[strings.ToLower(address)]
	return r, ok
}

func (c *mapCache) PutIfAbsent(address string, result domain.BoundaryResult) domain.BoundaryResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := strings.ToLower(address)
	if existing, ok := c.items[key]; ok {
		return existing
	}
	c.items[key] = result
	return result
}
