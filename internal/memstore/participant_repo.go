package memstore

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/tristanl-slalom/conflicto-sub001/internal/domain"

	"github.com/google/uuid"
)

type ParticipantRepo struct {
	s *Store
}

func NewParticipantRepo(s *Store) *ParticipantRepo {
	return &ParticipantRepo{s: s}
}

// Join — аналог транзакции SQL-слоя: весь вход под одним мьютексом, поэтому
// из параллельных заявок на один ник выживает ровно одна, и лимит участников
// не пробивается.
func (r *ParticipantRepo) Join(ctx context.Context, p *domain.Participant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	sess, ok := r.s.sessions[p.SessionID]
	if !ok {
		return domain.ErrSessionNotFound
	}

	var count int64
	for _, other := range r.s.participants {
		if other.SessionID != p.SessionID {
			continue
		}
		count++
		if strings.EqualFold(other.Nickname, p.Nickname) {
			return &domain.NicknameTakenError{Nickname: p.Nickname}
		}
	}
	if sess.MaxParticipants > 0 && count >= sess.MaxParticipants {
		return domain.ErrSessionFull
	}

	p.ID = uuid.NewString()
	p.JoinedAt = r.s.clock()
	p.LastSeen = p.JoinedAt
	cp := *p
	r.s.participants[p.ID] = &cp
	return nil
}

func (r *ParticipantRepo) Get(ctx context.Context, id string) (*domain.Participant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.participants[id]
	if !ok {
		return nil, domain.ErrParticipantNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *ParticipantRepo) Touch(ctx context.Context, id string, now time.Time, connData json.RawMessage) (time.Time, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.participants[id]
	if !ok {
		return time.Time{}, domain.ErrParticipantNotFound
	}
	// только вперёд
	if now.After(p.LastSeen) {
		p.LastSeen = now
	}
	if connData != nil {
		p.ConnectionData = connData
	}
	return p.LastSeen, nil
}

func (r *ParticipantRepo) ListBySession(ctx context.Context, sessionID string) ([]domain.Participant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var list []domain.Participant
	for _, p := range r.s.participants {
		if p.SessionID == sessionID {
			list = append(list, *p)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].JoinedAt.Before(list[j].JoinedAt) })
	return list, nil
}

func (r *ParticipantRepo) Nicknames(ctx context.Context, sessionID string) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var names []string
	for _, p := range r.s.participants {
		if p.SessionID == sessionID {
			names = append(names, p.Nickname)
		}
	}
	return names, nil
}

func (r *ParticipantRepo) Count(ctx context.Context, sessionID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	count := 0
	for _, p := range r.s.participants {
		if p.SessionID == sessionID {
			count++
		}
	}
	return count, nil
}

func (r *ParticipantRepo) CountActive(ctx context.Context, sessionID string, now time.Time, within time.Duration) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	count := 0
	cutoff := now.Add(-within)
	for _, p := range r.s.participants {
		if p.SessionID == sessionID && p.LastSeen.After(cutoff) {
			count++
		}
	}
	return count, nil
}

func (r *ParticipantRepo) Remove(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.participants, id)
	return nil
}
