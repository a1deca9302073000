package postgres

import (
	"context"

	"github.com/tristanl-slalom/conflicto-sub001/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ActivityRepository struct {
	db *pgxpool.Pool
}

func NewActivityRepository(db *pgxpool.Pool) *ActivityRepository {
	return &ActivityRepository{db: db}
}

const activityColumns = `id, session_id, type, config, order_index, status, created_at, updated_at`

// Get ограничен сессией: чужая activity выглядит как отсутствующая.
func (r *ActivityRepository) Get(ctx context.Context, sessionID, activityID string) (*domain.Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities WHERE id=$1 AND session_id=$2`
	return r.scanOne(r.db.QueryRow(ctx, query, activityID, sessionID))
}

// Current возвращает активную activity сессии или nil (между активностями).
func (r *ActivityRepository) Current(ctx context.Context, sessionID string) (*domain.Activity, error) {
	query := `
		SELECT ` + activityColumns + `
		FROM activities
		WHERE session_id=$1 AND status=$2
		ORDER BY order_index
		LIMIT 1`
	a, err := r.scanOne(r.db.QueryRow(ctx, query, sessionID, domain.ActivityRunning))
	if err == domain.ErrActivityNotFound {
		return nil, nil
	}
	return a, err
}

// CurrentID — лёгкое чтение одного указателя, для детекции смены мид-билд.
func (r *ActivityRepository) CurrentID(ctx context.Context, sessionID string) (string, error) {
	var id string
	err := r.db.QueryRow(ctx,
		`SELECT id FROM activities WHERE session_id=$1 AND status=$2 ORDER BY order_index LIMIT 1`,
		sessionID, domain.ActivityRunning).Scan(&id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return "", nil
		}
		return "", err
	}
	return id, nil
}

// HasStarted — есть ли в сессии activity, вышедшая из draft (для late-join флага).
func (r *ActivityRepository) HasStarted(ctx context.Context, sessionID string) (bool, error) {
	var started bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM activities WHERE session_id=$1 AND status<>$2)`,
		sessionID, domain.ActivityDraft).Scan(&started)
	return started, err
}

func (r *ActivityRepository) scanOne(row pgx.Row) (*domain.Activity, error) {
	var a domain.Activity
	err := row.Scan(&a.ID, &a.SessionID, &a.Type, &a.Config,
		&a.OrderIndex, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrActivityNotFound
		}
		return nil, err
	}
	return &a, nil
}
