package httpmw

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Toucher обновляет last_seen участника.
type Toucher interface {
	Touch(ctx context.Context, participantID string, connData json.RawMessage) (time.Time, error)
}

// HeartbeatMiddleware: любой запрос с X-Participant-ID считается признаком
// жизни — last_seen подтягивается и на обычных поллинг-чтениях, не только на
// явном heartbeat.
func HeartbeatMiddleware(presence Toucher) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if pid := ParticipantIDFromCtx(r.Context()); pid != "" {
				// best-effort: ошибки не прерывают запрос
				_, _ = presence.Touch(r.Context(), pid, nil)
			}
			next.ServeHTTP(w, r)
		})
	}
}
