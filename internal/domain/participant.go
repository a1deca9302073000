package domain

import (
	"encoding/json"
	"time"
)

type Participant struct {
	ID             string          `db:"id"`
	SessionID      string          `db:"session_id"`
	Nickname       string          `db:"nickname"`
	JoinedAt       time.Time       `db:"joined_at"`
	LastSeen       time.Time       `db:"last_seen"`
	ConnectionData json.RawMessage `db:"connection_data"`
}
