package domain

import (
	"encoding/json"
	"time"
)

type Response struct {
	ID            string          `db:"id"`
	SessionID     string          `db:"session_id"`
	ActivityID    string          `db:"activity_id"`
	ParticipantID string          `db:"participant_id"`
	Payload       json.RawMessage `db:"payload"`
	CreatedAt     time.Time       `db:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at"`
}
