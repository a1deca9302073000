package domain

import "time"

type SessionStatus string

const (
	SessionDraft     SessionStatus = "draft"
	SessionActive    SessionStatus = "active"
	SessionPaused    SessionStatus = "paused"
	SessionCompleted SessionStatus = "completed"
)

func (s SessionStatus) Valid() bool {
	switch s {
	case SessionDraft, SessionActive, SessionPaused, SessionCompleted:
		return true
	}
	return false
}

// Session принадлежит CRUD-слою; здесь только читаем.
type Session struct {
	ID              string        `db:"id"`
	Title           string        `db:"title"`
	Status          SessionStatus `db:"status"`
	MaxParticipants int64         `db:"max_participants"`
	AllowLateJoin   bool          `db:"allow_late_join"`
	CreatedAt       time.Time     `db:"created_at"`
}
