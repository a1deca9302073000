package postgres

import (
	"context"
	"time"

	"github.com/tristanl-slalom/conflicto-sub001/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type ResponseRepository struct {
	db *pgxpool.Pool
}

func NewResponseRepository(db *pgxpool.Pool) *ResponseRepository {
	return &ResponseRepository{db: db}
}

func (r *ResponseRepository) Create(ctx context.Context, resp *domain.Response) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO responses (session_id, activity_id, participant_id, payload)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, resp.SessionID, resp.ActivityID, resp.ParticipantID, resp.Payload).
		Scan(&resp.ID, &resp.CreatedAt, &resp.UpdatedAt)
}

// ListSince — инкрементальная лента: строго после курсора, по возрастанию.
// Граница не пересылается повторно, поэтому last-seen можно безопасно
// использовать как следующий курсор.
func (r *ResponseRepository) ListSince(ctx context.Context, sessionID, activityID string, after domain.Cursor, limit int) ([]domain.Response, error) {
	query := `
		SELECT id, session_id, activity_id, participant_id, payload, created_at, updated_at
		FROM responses
		WHERE session_id=$1 AND activity_id=$2
		  AND (created_at > $3 OR (created_at = $3 AND id > NULLIF($4, '')::uuid))
		ORDER BY created_at ASC, id ASC
		LIMIT $5`

	rows, err := r.db.Query(ctx, query, sessionID, activityID, after.CreatedAt, after.ID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []domain.Response
	for rows.Next() {
		var resp domain.Response
		if err := rows.Scan(&resp.ID, &resp.SessionID, &resp.ActivityID,
			&resp.ParticipantID, &resp.Payload, &resp.CreatedAt, &resp.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, resp)
	}
	return list, rows.Err()
}

// Stats — счётчик и время последнего ответа для activity-status поллинга.
func (r *ResponseRepository) Stats(ctx context.Context, sessionID, activityID string) (int, *time.Time, error) {
	var count int
	var last *time.Time
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*), MAX(created_at) FROM responses WHERE session_id=$1 AND activity_id=$2`,
		sessionID, activityID).Scan(&count, &last)
	return count, last, err
}
