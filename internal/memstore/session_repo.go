package memstore

import (
	"context"

	"github.com/tristanl-slalom/conflicto-sub001/internal/domain"
)

type SessionRepo struct {
	s *Store
}

func NewSessionRepo(s *Store) *SessionRepo {
	return &SessionRepo{s: s}
}

func (r *SessionRepo) Get(ctx context.Context, id string) (*domain.Session, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sess, ok := r.s.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	cp := *sess
	return &cp, nil
}
