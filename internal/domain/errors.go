package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrSessionNotFound     = errors.New("session not found")
	ErrActivityNotFound    = errors.New("activity not found")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrSessionFull         = errors.New("session is full")
	ErrInvalidNickname     = errors.New("nickname must be 1-50 characters")
)

// NicknameTakenError возвращается проигравшему в гонке за ник; suggestions
// считаются уже после вставки победителя, поэтому всегда свободны.
type NicknameTakenError struct {
	Nickname    string
	Suggestions []string
}

func (e *NicknameTakenError) Error() string {
	if len(e.Suggestions) == 0 {
		return fmt.Sprintf("nickname %q already taken", e.Nickname)
	}
	return fmt.Sprintf("nickname %q already taken (try: %s)",
		e.Nickname, strings.Join(e.Suggestions, ", "))
}
