package memstore

import (
	"context"

	"github.com/tristanl-slalom/conflicto-sub001/internal/domain"
)

type ActivityRepo struct {
	s *Store
}

func NewActivityRepo(s *Store) *ActivityRepo {
	return &ActivityRepo{s: s}
}

func (r *ActivityRepo) Get(ctx context.Context, sessionID, activityID string) (*domain.Activity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.activities[activityID]
	if !ok || a.SessionID != sessionID {
		return nil, domain.ErrActivityNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *ActivityRepo) Current(ctx context.Context, sessionID string) (*domain.Activity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a := r.s.currentLocked(sessionID)
	if a == nil {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (r *ActivityRepo) CurrentID(ctx context.Context, sessionID string) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if a := r.s.currentLocked(sessionID); a != nil {
		return a.ID, nil
	}
	return "", nil
}

func (r *ActivityRepo) HasStarted(ctx context.Context, sessionID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.activities {
		if a.SessionID == sessionID && a.Status != domain.ActivityDraft {
			return true, nil
		}
	}
	return false, nil
}
