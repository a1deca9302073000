package domain

import (
	"encoding/json"
	"time"
)

type ActivityStatus string

const (
	ActivityDraft   ActivityStatus = "draft"
	ActivityRunning ActivityStatus = "active"
	ActivityExpired ActivityStatus = "expired"
)

func (s ActivityStatus) Valid() bool {
	switch s {
	case ActivityDraft, ActivityRunning, ActivityExpired:
		return true
	}
	return false
}

// Activity — единица сценария (poll, word cloud, ...). Тип и конфиг непрозрачны
// для этого сервиса; не более одной active на сессию.
type Activity struct {
	ID         string          `db:"id"`
	SessionID  string          `db:"session_id"`
	Type       string          `db:"type"`
	Config     json.RawMessage `db:"config"`
	OrderIndex int             `db:"order_index"`
	Status     ActivityStatus  `db:"status"`
	CreatedAt  time.Time       `db:"created_at"`
	UpdatedAt  time.Time       `db:"updated_at"`
}
