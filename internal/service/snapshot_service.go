package service

import (
	"context"
	"encoding/json"

	"github.com/tristanl-slalom/conflicto-sub001/internal/domain"
)

type snapshotSessionStore interface {
	Get(ctx context.Context, id string) (*domain.Session, error)
}

type snapshotActivityStore interface {
	Current(ctx context.Context, sessionID string) (*domain.Activity, error)
	CurrentID(ctx context.Context, sessionID string) (string, error)
	HasStarted(ctx context.Context, sessionID string) (bool, error)
}

// Сколько раз перечитываем, если указатель текущей activity сменился
// между нашими чтениями.
const snapshotRetries = 3

// Snapshot собирает состояние сессии для догоняющего клиента: текущая
// activity с конфигом, счётчик участников, late-join флаг. Возвращается и при
// Join, и при каждом heartbeat — пропущенный переход activity подтягивается
// без отдельного "что изменилось" запроса.
type Snapshot struct {
	sessions   snapshotSessionStore
	activities snapshotActivityStore
	presence   *Presence
}

func NewSnapshot(sessions snapshotSessionStore, activities snapshotActivityStore, presence *Presence) *Snapshot {
	return &Snapshot{sessions: sessions, activities: activities, presence: presence}
}

type ActivitySnapshot struct {
	ID     string
	Type   string
	Config json.RawMessage
	Status domain.ActivityStatus
}

type SessionSnapshot struct {
	SessionID          string
	Title              string
	SessionStatus      domain.SessionStatus
	CurrentActivity    *ActivitySnapshot
	ParticipantCount   int
	LateJoinRestricted bool
}

func (s *Snapshot) Build(ctx context.Context, sessionID string) (*SessionSnapshot, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	act, err := s.currentConsistent(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	count, err := s.presence.ActiveCount(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	snap := &SessionSnapshot{
		SessionID:        sess.ID,
		Title:            sess.Title,
		SessionStatus:    sess.Status,
		ParticipantCount: count,
	}
	if act != nil {
		snap.CurrentActivity = &ActivitySnapshot{
			ID:     act.ID,
			Type:   act.Type,
			Config: act.Config,
			Status: act.Status,
		}
	}

	if !sess.AllowLateJoin {
		started, err := s.activities.HasStarted(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		snap.LateJoinRestricted = started
	}
	return snap, nil
}

// currentConsistent перечитывает activity, если админ переключил её между
// нашими двумя чтениями: id и конфиг в снапшоте всегда от одной activity.
// После snapshotRetries попыток возвращаем последнюю согласованную пару,
// не блокируясь.
func (s *Snapshot) currentConsistent(ctx context.Context, sessionID string) (*domain.Activity, error) {
	var act *domain.Activity
	for attempt := 0; attempt <= snapshotRetries; attempt++ {
		var err error
		act, err = s.activities.Current(ctx, sessionID)
		if err != nil {
			return nil, err
		}

		check, err := s.activities.CurrentID(ctx, sessionID)
		if err != nil {
			return nil, err
		}

		actID := ""
		if act != nil {
			actID = act.ID
		}
		if actID == check {
			break
		}
	}
	return act, nil
}
