package cache_adapter

import (
	"context"
	"real-estate-system/internal/core/port"
	"sync"
	"time"
)

type session struct {
	cache    *BoundaryCache
	lastSeen time.Time
}

// SessionRegistry выдает кэш на сессию рендеринга.
// Сессия, к которой не обращались дольше ttl, удаляется вместе с кэшем.
type SessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*session
	ttl      time.Duration
	now      func() time.Time
	logger   port.LoggerPort
}

func NewSessionRegistry(ttl time.Duration, logger port.LoggerPort) *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[string]*session),
		ttl:      ttl,
		now:      time.Now,
		logger:   logger,
	}
}

func (r *SessionRegistry) Session(sessionID string) port.BoundaryCachePort {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		s = &session{cache: NewBoundaryCache()}
		r.sessions[sessionID] = s
	}
	s.lastSeen = r.now()
	return s.cache
}

// Evict удаляет простаивающие сессии и возвращает их число
func (r *SessionRegistry) Evict() int {
	if r.ttl <= 0 {
		return 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-r.ttl)
	evicted := 0
	for id, s := range r.sessions {
		if s.lastSeen.Before(cutoff) {
			delete(r.sessions, id)
			evicted++
		}
	}
	return evicted
}

func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Run периодически вытесняет сессии, пока не отменен контекст
func (r *SessionRegistry) Run(ctx context.Context) {
	if r.ttl <= 0 {
		return
	}
	interval := r.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Evict(); n > 0 && r.logger != nil {
				r.logger.Debug("Evicted idle boundary sessions", port.Fields{"evicted": n, "active": r.Len()})
			}
		}
	}
}
