package http

import (
	"encoding/json"
	"time"

	"github.com/tristanl-slalom/conflicto-sub001/internal/service"
)

type ErrorResponse struct {
	Error       string   `json:"error"`
	Suggestions []string `json:"suggestions,omitempty"`
	Retryable   bool     `json:"retryable,omitempty"`
}

type JoinRequest struct {
	Nickname       string          `json:"nickname"`
	ConnectionData json.RawMessage `json:"connection_data,omitempty"`
}

type ActivityView struct {
	ID     string          `json:"id"`
	Type   string          `json:"type"`
	Config json.RawMessage `json:"config"`
	Status string          `json:"status"`
}

type SnapshotView struct {
	SessionID          string        `json:"session_id"`
	Title              string        `json:"session_title"`
	SessionStatus      string        `json:"session_status"`
	CurrentActivity    *ActivityView `json:"current_activity"`
	ParticipantCount   int           `json:"participant_count"`
	LateJoinRestricted bool          `json:"late_join_restricted"`
}

func toSnapshotView(s *service.SessionSnapshot) SnapshotView {
	v := SnapshotView{
		SessionID:          s.SessionID,
		Title:              s.Title,
		SessionStatus:      string(s.SessionStatus),
		ParticipantCount:   s.ParticipantCount,
		LateJoinRestricted: s.LateJoinRestricted,
	}
	if s.CurrentActivity != nil {
		v.CurrentActivity = &ActivityView{
			ID:     s.CurrentActivity.ID,
			Type:   s.CurrentActivity.Type,
			Config: s.CurrentActivity.Config,
			Status: string(s.CurrentActivity.Status),
		}
	}
	return v
}

type JoinResponse struct {
	ParticipantID string       `json:"participant_id"`
	Nickname      string       `json:"nickname"`
	Snapshot      SnapshotView `json:"snapshot"`
}

type ValidateNicknameRequest struct {
	Nickname string `json:"nickname"`
}

type ValidateNicknameResponse struct {
	Available   bool     `json:"available"`
	Suggestions []string `json:"suggestions,omitempty"`
}

type HeartbeatRequest struct {
	ConnectionData json.RawMessage `json:"connection_data,omitempty"`
}

type HeartbeatResponse struct {
	Acknowledged bool         `json:"acknowledged"`
	LastSeen     time.Time    `json:"last_seen"`
	Snapshot     SnapshotView `json:"snapshot"`
}

type ParticipantItem struct {
	ParticipantID string    `json:"participant_id"`
	Nickname      string    `json:"nickname"`
	Status        string    `json:"status"`
	JoinedAt      time.Time `json:"joined_at"`
	LastSeen      time.Time `json:"last_seen"`
}

type ParticipantsResponse struct {
	Items []ParticipantItem `json:"items"`
}

type ResponseItem struct {
	ID            string          `json:"id"`
	ParticipantID string          `json:"participant_id"`
	Payload       json.RawMessage `json:"payload"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type ResponsesSinceResponse struct {
	Items      []ResponseItem `json:"items"`
	Since      string         `json:"since,omitempty"`
	NextCursor string         `json:"next_cursor,omitempty"`
	Count      int            `json:"count"`
}

type SubmitResponseRequest struct {
	ParticipantID string          `json:"participant_id"`
	Payload       json.RawMessage `json:"payload"`
}

type SubmitResponseResponse struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}
