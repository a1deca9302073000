package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/tristanl-slalom/conflicto-sub001/internal/domain"

	"github.com/google/uuid"
)

type ResponseRepo struct {
	s *Store
}

func NewResponseRepo(s *Store) *ResponseRepo {
	return &ResponseRepo{s: s}
}

func (r *ResponseRepo) Create(ctx context.Context, resp *domain.Response) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	resp.ID = uuid.NewString()
	if resp.CreatedAt.IsZero() {
		resp.CreatedAt = r.s.clock()
	}
	resp.UpdatedAt = resp.CreatedAt
	cp := *resp
	r.s.responses = append(r.s.responses, &cp)
	return nil
}

func (r *ResponseRepo) ListSince(ctx context.Context, sessionID, activityID string, after domain.Cursor, limit int) ([]domain.Response, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var list []domain.Response
	for _, resp := range r.s.responses {
		if resp.SessionID != sessionID || resp.ActivityID != activityID {
			continue
		}
		if resp.CreatedAt.After(after.CreatedAt) ||
			(resp.CreatedAt.Equal(after.CreatedAt) && after.ID != "" && resp.ID > after.ID) {
			list = append(list, *resp)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (r *ResponseRepo) Stats(ctx context.Context, sessionID, activityID string) (int, *time.Time, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	count := 0
	var last *time.Time
	for _, resp := range r.s.responses {
		if resp.SessionID != sessionID || resp.ActivityID != activityID {
			continue
		}
		count++
		if last == nil || resp.CreatedAt.After(*last) {
			t := resp.CreatedAt
			last = &t
		}
	}
	return count, last, nil
}
