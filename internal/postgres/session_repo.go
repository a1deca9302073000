package postgres

import (
	"context"

	"github.com/tristanl-slalom/conflicto-sub001/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SessionRepository читает сессии; их жизненным циклом владеет CRUD-слой.
type SessionRepository struct {
	db *pgxpool.Pool
}

func NewSessionRepository(db *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Get(ctx context.Context, id string) (*domain.Session, error) {
	var s domain.Session
	query := `
		SELECT id, title, status, max_participants, allow_late_join, created_at
		FROM sessions WHERE id=$1`
	err := r.db.QueryRow(ctx, query, id).
		Scan(&s.ID, &s.Title, &s.Status, &s.MaxParticipants, &s.AllowLateJoin, &s.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}
	return &s, nil
}
