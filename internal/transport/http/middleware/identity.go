package httpmw

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type ctxKey string

const ctxKeyParticipantID ctxKey = "participant_id"

// ParticipantMiddleware снимает X-Participant-ID в контекст. Идентичность
// строго session-scoped: никакой авторизации сверх неё здесь нет, заголовок
// опционален — поллинг-эндпоинты доступны и зрителям без регистрации.
func ParticipantMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pid := r.Header.Get("X-Participant-ID")
		if pid != "" {
			if _, err := uuid.Parse(pid); err != nil {
				http.Error(w, `{"error":"invalid X-Participant-ID"}`, http.StatusBadRequest)
				return
			}
			ctx := context.WithValue(r.Context(), ctxKeyParticipantID, pid)
			r = r.WithContext(ctx)
		}
		next.ServeHTTP(w, r)
	})
}

func ParticipantIDFromCtx(ctx context.Context) string {
	if v := ctx.Value(ctxKeyParticipantID); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}
