package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/tristanl-slalom/conflicto-sub001/internal/cache"
	"github.com/tristanl-slalom/conflicto-sub001/internal/domain"
)

type activityStore interface {
	Get(ctx context.Context, sessionID, activityID string) (*domain.Activity, error)
	CurrentID(ctx context.Context, sessionID string) (string, error)
}

type responseStore interface {
	Create(ctx context.Context, resp *domain.Response) error
	ListSince(ctx context.Context, sessionID, activityID string, after domain.Cursor, limit int) ([]domain.Response, error)
	Stats(ctx context.Context, sessionID, activityID string) (int, *time.Time, error)
}

type participantGetter interface {
	Get(ctx context.Context, id string) (*domain.Participant, error)
}

// Защитный потолок одной порции инкрементальной выдачи.
const maxResponseBatch = 500

// Poller — read-only поверхность для опроса каждые 2-5 секунд.
type Poller struct {
	sessions     snapshotSessionStore
	activities   activityStore
	responses    responseStore
	participants participantGetter
	presence     *Presence
	statuses     *cache.Cache

	now func() time.Time
}

func NewPoller(sessions snapshotSessionStore, activities activityStore,
	responses responseStore, participants participantGetter,
	presence *Presence, statuses *cache.Cache) *Poller {
	return &Poller{
		sessions:     sessions,
		activities:   activities,
		responses:    responses,
		participants: participants,
		presence:     presence,
		statuses:     statuses,
		now:          time.Now,
	}
}

type SessionStatusView struct {
	SessionID         string               `json:"session_id"`
	Status            domain.SessionStatus `json:"status"`
	CurrentActivityID string               `json:"current_activity_id,omitempty"`
	ParticipantCount  int                  `json:"participant_count"`
	LastUpdated       time.Time            `json:"last_updated"`
}

// SessionStatus отдаёт агрегат для поллинга. Кэш — только ускоритель с теми же
// семантиками пересчёта: TTL короче интервала опроса, источником истины
// остаётся last_seen.
func (p *Poller) SessionStatus(ctx context.Context, sessionID string) (*SessionStatusView, error) {
	key := "session-status:" + sessionID
	var cached SessionStatusView
	if hit, _ := p.statuses.GetJSON(ctx, key, &cached); hit {
		return &cached, nil
	}

	sess, err := p.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	currentID, err := p.activities.CurrentID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	// participant_count: только не-disconnected, см. Presence.ActiveCount
	count, err := p.presence.ActiveCount(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	view := &SessionStatusView{
		SessionID:         sess.ID,
		Status:            sess.Status,
		CurrentActivityID: currentID,
		ParticipantCount:  count,
		LastUpdated:       p.now().UTC(),
	}
	p.statuses.SetJSON(ctx, key, view)
	return view, nil
}

type ActivityStatusView struct {
	ActivityID     string                `json:"activity_id"`
	Status         domain.ActivityStatus `json:"status"`
	ResponseCount  int                   `json:"response_count"`
	LastResponseAt *time.Time            `json:"last_response_at,omitempty"`
	LastUpdated    time.Time             `json:"last_updated"`
}

func (p *Poller) ActivityStatus(ctx context.Context, sessionID, activityID string) (*ActivityStatusView, error) {
	act, err := p.activities.Get(ctx, sessionID, activityID)
	if err != nil {
		return nil, err
	}
	count, last, err := p.responses.Stats(ctx, sessionID, activityID)
	if err != nil {
		return nil, err
	}
	return &ActivityStatusView{
		ActivityID:     act.ID,
		Status:         act.Status,
		ResponseCount:  count,
		LastResponseAt: last,
		LastUpdated:    p.now().UTC(),
	}, nil
}

type ResponseFeed struct {
	Items      []domain.Response
	Since      string
	NextCursor string
	Count      int
}

// ResponsesSince — строго после курсора, по возрастанию created_at. Элемент на
// границе не пересылается повторно, поэтому цикл «poll → max(created_at) →
// новый since» не даёт ни дублей, ни пропусков.
func (p *Poller) ResponsesSince(ctx context.Context, sessionID, activityID, since string) (*ResponseFeed, error) {
	if _, err := p.activities.Get(ctx, sessionID, activityID); err != nil {
		return nil, err
	}

	after, err := domain.DecodeCursor(since)
	if err != nil {
		return nil, err
	}

	items, err := p.responses.ListSince(ctx, sessionID, activityID, after, maxResponseBatch)
	if err != nil {
		return nil, err
	}

	feed := &ResponseFeed{Items: items, Since: since, Count: len(items)}
	if len(items) > 0 {
		last := items[len(items)-1]
		feed.NextCursor = domain.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}.Encode()
	}
	return feed, nil
}

// SubmitResponse минимально обслуживает запись: проверка принадлежности
// activity и участника сессии; бизнес-логика активностей живёт выше.
func (p *Poller) SubmitResponse(ctx context.Context, sessionID, activityID, participantID string, payload json.RawMessage) (*domain.Response, error) {
	if _, err := p.activities.Get(ctx, sessionID, activityID); err != nil {
		return nil, err
	}
	part, err := p.participants.Get(ctx, participantID)
	if err != nil {
		return nil, err
	}
	if part.SessionID != sessionID {
		return nil, domain.ErrParticipantNotFound
	}

	resp := &domain.Response{
		SessionID:     sessionID,
		ActivityID:    activityID,
		ParticipantID: participantID,
		Payload:       payload,
	}
	if err := p.responses.Create(ctx, resp); err != nil {
		return nil, err
	}
	return resp, nil
}
