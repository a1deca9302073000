package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/tristanl-slalom/conflicto-sub001/internal/domain"
	"github.com/tristanl-slalom/conflicto-sub001/internal/service"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	syncer *service.Syncer
	poller *service.Poller
}

func NewHandler(syncer *service.Syncer, poller *service.Poller) *Handler {
	return &Handler{syncer: syncer, poller: poller}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError переводит доменные ошибки в HTTP-коды. Коллизия ника — единственная
// ошибка с полезной нагрузкой (подсказки).
func writeError(w http.ResponseWriter, op string, err error) {
	var taken *domain.NicknameTakenError
	switch {
	case errors.As(err, &taken):
		writeJSON(w, http.StatusConflict, ErrorResponse{
			Error:       "nickname already taken",
			Suggestions: taken.Suggestions,
		})
	case errors.Is(err, domain.ErrSessionFull):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: "session full", Retryable: true})
	case errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrActivityNotFound),
		errors.Is(err, domain.ErrParticipantNotFound):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrInvalidNickname),
		errors.Is(err, domain.ErrInvalidCursor):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, context.DeadlineExceeded):
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "store timeout", Retryable: true})
	default:
		// текст ошибки стораджа не утекает клиенту, только в лог
		slog.Error("handler."+op, slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}

// POST /sessions/{id}/participants/join
func (h *Handler) Join(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	var req JoinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid json"})
		return
	}

	p, snap, err := h.syncer.Join(r.Context(), sessionID, req.Nickname, req.ConnectionData)
	if err != nil {
		writeError(w, "Join", err)
		return
	}

	writeJSON(w, http.StatusCreated, JoinResponse{
		ParticipantID: p.ID,
		Nickname:      p.Nickname,
		Snapshot:      toSnapshotView(snap),
	})
}

// POST /sessions/{id}/participants/validate
func (h *Handler) ValidateNickname(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	var req ValidateNicknameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid json"})
		return
	}

	available, suggestions, err := h.syncer.ValidateNickname(r.Context(), sessionID, req.Nickname)
	if err != nil {
		writeError(w, "ValidateNickname", err)
		return
	}

	writeJSON(w, http.StatusOK, ValidateNicknameResponse{
		Available:   available,
		Suggestions: suggestions,
	})
}

// POST /participants/{pid}/heartbeat
func (h *Handler) Heartbeat(w http.ResponseWriter, r *http.Request) {
	participantID := chi.URLParam(r, "pid")

	var req HeartbeatRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid json"})
			return
		}
	}

	res, err := h.syncer.Heartbeat(r.Context(), participantID, req.ConnectionData)
	if err != nil {
		writeError(w, "Heartbeat", err)
		return
	}

	writeJSON(w, http.StatusOK, HeartbeatResponse{
		Acknowledged: true,
		LastSeen:     res.LastSeen,
		Snapshot:     toSnapshotView(res.Snapshot),
	})
}

// GET /sessions/{id}/participants
func (h *Handler) ListParticipants(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	items, err := h.syncer.ListParticipants(r.Context(), sessionID)
	if err != nil {
		writeError(w, "ListParticipants", err)
		return
	}

	resp := ParticipantsResponse{Items: make([]ParticipantItem, 0, len(items))}
	for _, it := range items {
		resp.Items = append(resp.Items, ParticipantItem{
			ParticipantID: it.ParticipantID,
			Nickname:      it.Nickname,
			Status:        string(it.Status),
			JoinedAt:      it.JoinedAt,
			LastSeen:      it.LastSeen,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// DELETE /participants/{pid}
func (h *Handler) RemoveParticipant(w http.ResponseWriter, r *http.Request) {
	participantID := chi.URLParam(r, "pid")

	if err := h.syncer.RemoveParticipant(r.Context(), participantID); err != nil {
		writeError(w, "RemoveParticipant", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /sessions/{id}/status
func (h *Handler) GetSessionStatus(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	view, err := h.poller.SessionStatus(r.Context(), sessionID)
	if err != nil {
		writeError(w, "GetSessionStatus", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// GET /sessions/{id}/activities/{aid}/status
func (h *Handler) GetActivityStatus(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	activityID := chi.URLParam(r, "aid")

	view, err := h.poller.ActivityStatus(r.Context(), sessionID, activityID)
	if err != nil {
		writeError(w, "GetActivityStatus", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// GET /sessions/{id}/activities/{aid}/responses?since=
func (h *Handler) GetResponsesSince(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	activityID := chi.URLParam(r, "aid")
	since := r.URL.Query().Get("since")

	feed, err := h.poller.ResponsesSince(r.Context(), sessionID, activityID, since)
	if err != nil {
		writeError(w, "GetResponsesSince", err)
		return
	}

	resp := ResponsesSinceResponse{
		Items:      make([]ResponseItem, 0, len(feed.Items)),
		Since:      feed.Since,
		NextCursor: feed.NextCursor,
		Count:      feed.Count,
	}
	for _, it := range feed.Items {
		resp.Items = append(resp.Items, ResponseItem{
			ID:            it.ID,
			ParticipantID: it.ParticipantID,
			Payload:       it.Payload,
			CreatedAt:     it.CreatedAt,
			UpdatedAt:     it.UpdatedAt,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// POST /sessions/{id}/activities/{aid}/responses
func (h *Handler) SubmitResponse(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	activityID := chi.URLParam(r, "aid")

	var req SubmitResponseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid json"})
		return
	}
	if req.ParticipantID == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "participant_id is required"})
		return
	}

	resp, err := h.poller.SubmitResponse(r.Context(), sessionID, activityID, req.ParticipantID, req.Payload)
	if err != nil {
		writeError(w, "SubmitResponse", err)
		return
	}

	writeJSON(w, http.StatusCreated, SubmitResponseResponse{
		ID:        resp.ID,
		CreatedAt: resp.CreatedAt,
	})
}
