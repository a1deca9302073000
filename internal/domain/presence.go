package domain

import "time"

type PresenceStatus string

const (
	PresenceOnline       PresenceStatus = "online"
	PresenceIdle         PresenceStatus = "idle"
	PresenceDisconnected PresenceStatus = "disconnected"
)

// Пороговые окна; границы закрыты снизу: ровно 30s — уже idle, ровно 120s —
// disconnected.
const (
	DefaultOnlineWindow = 30 * time.Second
	DefaultIdleWindow   = 120 * time.Second
)

// PresencePolicy переводит возраст last_seen в статус. Статус нигде не
// хранится: last_seen — единственный факт живости, поэтому любой узел
// отвечает одинаково.
type PresencePolicy struct {
	OnlineWindow time.Duration
	IdleWindow   time.Duration
}

var DefaultPresencePolicy = PresencePolicy{
	OnlineWindow: DefaultOnlineWindow,
	IdleWindow:   DefaultIdleWindow,
}

func (p PresencePolicy) StatusOf(now, lastSeen time.Time) PresenceStatus {
	elapsed := now.Sub(lastSeen)
	switch {
	case elapsed < p.OnlineWindow:
		return PresenceOnline
	case elapsed < p.IdleWindow:
		return PresenceIdle
	default:
		return PresenceDisconnected
	}
}
