package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/tristanl-slalom/conflicto-sub001/internal/domain"
)

type participantStore interface {
	Join(ctx context.Context, p *domain.Participant) error
	Remove(ctx context.Context, id string) error
}

// Syncer — вход участника и канал синхронизации. Heartbeat совмещает отметку
// живости и выдачу снапшота: присутствие и догон состояния в один round trip.
type Syncer struct {
	sessions     snapshotSessionStore
	participants participantStore
	registry     *Registry
	presence     *Presence
	snapshots    *Snapshot
}

func NewSyncer(sessions snapshotSessionStore, participants participantStore,
	registry *Registry, presence *Presence, snapshots *Snapshot) *Syncer {
	return &Syncer{
		sessions:     sessions,
		participants: participants,
		registry:     registry,
		presence:     presence,
		snapshots:    snapshots,
	}
}

// Join регистрирует участника и возвращает снапшот для догона. Поздний вход
// никогда не отклоняется по времени: ограничение отдаётся флагом в снапшоте,
// решение за UI-слоем.
func (s *Syncer) Join(ctx context.Context, sessionID, nickname string, connData json.RawMessage) (*domain.Participant, *SessionSnapshot, error) {
	nickname, err := NormalizeNickname(nickname)
	if err != nil {
		return nil, nil, err
	}

	if _, err := s.sessions.Get(ctx, sessionID); err != nil {
		return nil, nil, err
	}

	p := &domain.Participant{
		SessionID:      sessionID,
		Nickname:       nickname,
		ConnectionData: connData,
	}
	if err := s.participants.Join(ctx, p); err != nil {
		var taken *domain.NicknameTakenError
		if errors.As(err, &taken) {
			// подсказки считаем по состоянию, включающему победителя гонки
			if sugg, serr := s.registry.Suggest(ctx, sessionID, nickname); serr == nil {
				taken.Suggestions = sugg
			}
		}
		return nil, nil, err
	}

	snap, err := s.snapshots.Build(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	return p, snap, nil
}

func (s *Syncer) ValidateNickname(ctx context.Context, sessionID, nickname string) (bool, []string, error) {
	if _, err := s.sessions.Get(ctx, sessionID); err != nil {
		return false, nil, err
	}
	return s.registry.Validate(ctx, sessionID, nickname)
}

type HeartbeatResult struct {
	LastSeen time.Time
	Snapshot *SessionSnapshot
}

func (s *Syncer) Heartbeat(ctx context.Context, participantID string, connData json.RawMessage) (*HeartbeatResult, error) {
	lastSeen, err := s.presence.Touch(ctx, participantID, connData)
	if err != nil {
		return nil, err
	}

	p, err := s.presence.participants.Get(ctx, participantID)
	if err != nil {
		return nil, err
	}
	snap, err := s.snapshots.Build(ctx, p.SessionID)
	if err != nil {
		return nil, err
	}
	return &HeartbeatResult{LastSeen: lastSeen, Snapshot: snap}, nil
}

func (s *Syncer) ListParticipants(ctx context.Context, sessionID string) ([]ParticipantStatus, error) {
	if _, err := s.sessions.Get(ctx, sessionID); err != nil {
		return nil, err
	}
	return s.presence.ListStatuses(ctx, sessionID)
}

// RemoveParticipant — админское действие; идемпотентно.
func (s *Syncer) RemoveParticipant(ctx context.Context, participantID string) error {
	return s.participants.Remove(ctx, participantID)
}
