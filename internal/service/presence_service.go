package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/tristanl-slalom/conflicto-sub001/internal/domain"
)

type presenceStore interface {
	Touch(ctx context.Context, id string, now time.Time, connData json.RawMessage) (time.Time, error)
	Get(ctx context.Context, id string) (*domain.Participant, error)
	ListBySession(ctx context.Context, sessionID string) ([]domain.Participant, error)
	CountActive(ctx context.Context, sessionID string, now time.Time, within time.Duration) (int, error)
}

// Presence выводит online/idle/disconnected из возраста last_seen.
// Никаких фоновых свиперов: статус лениво считается на каждом чтении.
type Presence struct {
	participants presenceStore
	policy       domain.PresencePolicy

	now func() time.Time // подменяется в тестах
}

func NewPresence(participants presenceStore) *Presence {
	return &Presence{
		participants: participants,
		policy:       domain.DefaultPresencePolicy,
		now:          time.Now,
	}
}

func (s *Presence) SetPolicy(p domain.PresencePolicy) {
	if p.OnlineWindow > 0 && p.IdleWindow > p.OnlineWindow {
		s.policy = p
	}
}

// Touch фиксирует heartbeat. Запоздавший (меньший) таймстамп не откатывает
// last_seen, но вызов всё равно подтверждается актуальным значением.
func (s *Presence) Touch(ctx context.Context, participantID string, connData json.RawMessage) (time.Time, error) {
	return s.participants.Touch(ctx, participantID, s.now(), connData)
}

func (s *Presence) StatusOf(ctx context.Context, participantID string) (domain.PresenceStatus, error) {
	p, err := s.participants.Get(ctx, participantID)
	if err != nil {
		return "", err
	}
	return s.policy.StatusOf(s.now(), p.LastSeen), nil
}

type ParticipantStatus struct {
	ParticipantID string
	Nickname      string
	Status        domain.PresenceStatus
	JoinedAt      time.Time
	LastSeen      time.Time
}

// ListStatuses — один проход с одним now на всех: в списке не бывает двух
// участников, оценённых относительно разных моментов.
func (s *Presence) ListStatuses(ctx context.Context, sessionID string) ([]ParticipantStatus, error) {
	participants, err := s.participants.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	out := make([]ParticipantStatus, 0, len(participants))
	for _, p := range participants {
		out = append(out, ParticipantStatus{
			ParticipantID: p.ID,
			Nickname:      p.Nickname,
			Status:        s.policy.StatusOf(now, p.LastSeen),
			JoinedAt:      p.JoinedAt,
			LastSeen:      p.LastSeen,
		})
	}
	return out, nil
}

// ActiveCount — участники со статусом отличным от disconnected.
// Выбранная политика participant_count: считаем живых, а не всех вступивших.
func (s *Presence) ActiveCount(ctx context.Context, sessionID string) (int, error) {
	return s.participants.CountActive(ctx, sessionID, s.now(), s.policy.IdleWindow)
}
