package http

import (
	"net/http"
	"time"

	httpmw "github.com/tristanl-slalom/conflicto-sub001/internal/transport/http/middleware"

	"github.com/go-chi/chi/v5"
	middlewareChi "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(h *Handler, presence httpmw.Toucher) http.Handler {
	r := chi.NewRouter()
	r.Use(middlewareChi.RequestID)
	r.Use(middlewareChi.RealIP)
	r.Use(middlewareChi.Recoverer)

	r.Group(func(pr chi.Router) {
		pr.Use(httpmw.ParticipantMiddleware)
		pr.Use(httpmw.HeartbeatMiddleware(presence))
		pr.Use(middlewareChi.Timeout(15 * time.Second))

		pr.Route("/sessions/{id}", func(sr chi.Router) {
			sr.Get("/status", h.GetSessionStatus)

			sr.Route("/participants", func(p chi.Router) {
				p.Post("/join", h.Join)
				p.Post("/validate", h.ValidateNickname)
				p.Get("/", h.ListParticipants)
			})

			sr.Route("/activities/{aid}", func(a chi.Router) {
				a.Get("/status", h.GetActivityStatus)
				a.Get("/responses", h.GetResponsesSince)
				a.Post("/responses", h.SubmitResponse)
			})
		})

		pr.Route("/participants/{pid}", func(p chi.Router) {
			p.Post("/heartbeat", h.Heartbeat)
			p.Delete("/", h.RemoveParticipant)
		})
	})

	// health
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return r
}
