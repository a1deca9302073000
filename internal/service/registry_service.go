package service

import (
	"context"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/tristanl-slalom/conflicto-sub001/internal/domain"
)

const (
	maxNicknameLen = 50
	maxSuggestions = 3
)

type nicknameStore interface {
	Nicknames(ctx context.Context, sessionID string) ([]string, error)
}

// Registry отвечает за уникальность ников внутри сессии. Сравнение
// регистронезависимое, исходное написание сохраняется для отображения.
type Registry struct {
	participants nicknameStore
}

func NewRegistry(participants nicknameStore) *Registry {
	return &Registry{participants: participants}
}

// NormalizeNickname обрезает пробелы и проверяет длину 1-50 символов.
// Лимит в рунах, не в байтах: CJK-ник из 17 символов валиден.
func NormalizeNickname(nickname string) (string, error) {
	n := strings.TrimSpace(nickname)
	if n == "" || utf8.RuneCountInString(n) > maxNicknameLen {
		return "", domain.ErrInvalidNickname
	}
	return n, nil
}

// Validate — проверка доступности без побочных эффектов, для live-валидации
// на клиенте. Резервирование происходит только при вставке в Join.
func (r *Registry) Validate(ctx context.Context, sessionID, nickname string) (bool, []string, error) {
	nickname, err := NormalizeNickname(nickname)
	if err != nil {
		return false, nil, err
	}

	taken, err := r.takenSet(ctx, sessionID)
	if err != nil {
		return false, nil, err
	}
	if !taken[strings.ToLower(nickname)] {
		return true, nil, nil
	}

	return false, suggest(nickname, taken), nil
}

// Suggest строит альтернативы для занятого ника по актуальному состоянию
// сессии (включая только что победившего в гонке).
func (r *Registry) Suggest(ctx context.Context, sessionID, nickname string) ([]string, error) {
	taken, err := r.takenSet(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return suggest(nickname, taken), nil
}

func (r *Registry) takenSet(ctx context.Context, sessionID string) (map[string]bool, error) {
	names, err := r.participants.Nicknames(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	taken := make(map[string]bool, len(names))
	for _, n := range names {
		taken[strings.ToLower(n)] = true
	}
	return taken, nil
}

// suggest подбирает наименьшие свободные числовые суффиксы: Alex → Alex2,
// Alex3... Сканируются реальные ники, а не счётчик: вручную занятый Alex2
// пропускается.
func suggest(base string, taken map[string]bool) []string {
	runes := []rune(base)
	var out []string
	for i := 2; i < 100 && len(out) < maxSuggestions; i++ {
		suffix := strconv.Itoa(i)
		// усечение по рунам, чтобы не разрезать мультибайтовый символ
		trimmed := runes
		if len(trimmed)+len(suffix) > maxNicknameLen {
			trimmed = trimmed[:maxNicknameLen-len(suffix)]
		}
		cand := string(trimmed) + suffix
		if !taken[strings.ToLower(cand)] {
			out = append(out, cand)
		}
	}
	return out
}
