package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/tristanl-slalom/conflicto-sub001/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ParticipantRepository struct {
	db *pgxpool.Pool
}

func NewParticipantRepository(db *pgxpool.Pool) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

const participantColumns = `id, session_id, nickname, joined_at, last_seen, connection_data`

// Join — защищён от гонок и по лимиту, и по нику.
// Строка сессии блокируется FOR UPDATE, поэтому два параллельных Join не пробьют
// max_participants; уникальный индекс по (session_id, lower(nickname)) оставляет
// ровно одного победителя, проигравший получает NicknameTakenError без подсказок —
// их дополнит сервис уже с учётом победителя.
func (r *ParticipantRepository) Join(ctx context.Context, p *domain.Participant) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var max int64
	if err := tx.QueryRow(ctx,
		`SELECT max_participants FROM sessions WHERE id=$1 FOR UPDATE`,
		p.SessionID).Scan(&max); err != nil {
		if err == pgx.ErrNoRows {
			return domain.ErrSessionNotFound
		}
		return err
	}

	if max > 0 {
		var count int64
		if err := tx.QueryRow(ctx,
			`SELECT COUNT(*) FROM participants WHERE session_id=$1`,
			p.SessionID).Scan(&count); err != nil {
			return err
		}
		if count >= max {
			return domain.ErrSessionFull
		}
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO participants (session_id, nickname, connection_data)
		VALUES ($1, $2, $3)
		RETURNING id, joined_at, last_seen
	`, p.SessionID, p.Nickname, p.ConnectionData).Scan(&p.ID, &p.JoinedAt, &p.LastSeen)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return &domain.NicknameTakenError{Nickname: p.Nickname}
		}
		return err
	}

	return tx.Commit(ctx)
}

func (r *ParticipantRepository) Get(ctx context.Context, id string) (*domain.Participant, error) {
	var p domain.Participant
	err := r.db.QueryRow(ctx,
		`SELECT `+participantColumns+` FROM participants WHERE id=$1`, id).
		Scan(&p.ID, &p.SessionID, &p.Nickname, &p.JoinedAt, &p.LastSeen, &p.ConnectionData)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrParticipantNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Touch двигает last_seen только вперёд: запоздавший heartbeat подтверждается,
// но часы живости не откатывает.
func (r *ParticipantRepository) Touch(ctx context.Context, id string, now time.Time, connData json.RawMessage) (time.Time, error) {
	var lastSeen time.Time
	err := r.db.QueryRow(ctx, `
		UPDATE participants
		SET last_seen = GREATEST(last_seen, $2),
		    connection_data = COALESCE($3, connection_data)
		WHERE id=$1
		RETURNING last_seen
	`, id, now, connData).Scan(&lastSeen)
	if err != nil {
		if err == pgx.ErrNoRows {
			return time.Time{}, domain.ErrParticipantNotFound
		}
		return time.Time{}, err
	}
	return lastSeen, nil
}

func (r *ParticipantRepository) ListBySession(ctx context.Context, sessionID string) ([]domain.Participant, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+participantColumns+` FROM participants WHERE session_id=$1 ORDER BY joined_at ASC`,
		sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []domain.Participant
	for rows.Next() {
		var p domain.Participant
		if err := rows.Scan(&p.ID, &p.SessionID, &p.Nickname, &p.JoinedAt, &p.LastSeen, &p.ConnectionData); err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// Nicknames — все ники сессии, для проверки доступности и генерации подсказок.
func (r *ParticipantRepository) Nicknames(ctx context.Context, sessionID string) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT nickname FROM participants WHERE session_id=$1`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

func (r *ParticipantRepository) Count(ctx context.Context, sessionID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM participants WHERE session_id=$1`, sessionID).Scan(&count)
	return count, err
}

// CountActive — участники, не успевшие отвалиться: last_seen внутри окна.
func (r *ParticipantRepository) CountActive(ctx context.Context, sessionID string, now time.Time, within time.Duration) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM participants WHERE session_id=$1 AND last_seen > $2`,
		sessionID, now.Add(-within)).Scan(&count)
	return count, err
}

// Remove идемпотентен: повторное удаление — no-op, не ошибка.
func (r *ParticipantRepository) Remove(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM participants WHERE id=$1`, id)
	return err
}
