// Package memstore — хранилище в памяти для локальной разработки и тестов.
// Семантики совпадают с SQL-слоем: один победитель гонки за ник (единственный
// writer-мьютекс вместо уникального индекса), монотонный last_seen,
// keyset-лента ответов.
package memstore

import (
	"sync"
	"time"

	"github.com/tristanl-slalom/conflicto-sub001/internal/domain"

	"github.com/google/uuid"
)

type Store struct {
	mu           sync.Mutex
	sessions     map[string]*domain.Session
	activities   map[string]*domain.Activity
	participants map[string]*domain.Participant
	responses    []*domain.Response

	clock func() time.Time
}

func New() *Store {
	return &Store{
		sessions:     make(map[string]*domain.Session),
		activities:   make(map[string]*domain.Activity),
		participants: make(map[string]*domain.Participant),
		clock:        time.Now,
	}
}

// SetClock подменяет источник времени (тесты).
func (s *Store) SetClock(fn func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fn != nil {
		s.clock = fn
	}
}

func (s *Store) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clock()
}

// PutSession и PutActivity имитируют внешний CRUD-слой, владеющий жизненным
// циклом сессий и activity.
func (s *Store) PutSession(sess domain.Session) *domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}
	if !sess.Status.Valid() {
		sess.Status = domain.SessionDraft
	}
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = s.clock()
	}
	s.sessions[sess.ID] = &sess
	cp := sess
	return &cp
}

func (s *Store) PutActivity(a domain.Activity) *domain.Activity {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if !a.Status.Valid() {
		a.Status = domain.ActivityDraft
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = s.clock()
	}
	a.UpdatedAt = s.clock()
	s.activities[a.ID] = &a
	cp := a
	return &cp
}

func (s *Store) currentLocked(sessionID string) *domain.Activity {
	var best *domain.Activity
	for _, a := range s.activities {
		if a.SessionID != sessionID || a.Status != domain.ActivityRunning {
			continue
		}
		if best == nil || a.OrderIndex < best.OrderIndex {
			best = a
		}
	}
	return best
}
