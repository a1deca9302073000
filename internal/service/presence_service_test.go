package service

import (
	"context"
	"testing"
	"time"

	"github.com/tristanl-slalom/conflicto-sub001/internal/domain"
)

func TestPresence_TouchIsMonotonic(t *testing.T) {
	st := newStack()
	base := time.Date(2025, 10, 8, 12, 0, 0, 0, time.UTC)
	st.store.SetClock(func() time.Time { return base })

	sess := st.store.PutSession(domain.Session{Title: "demo"})
	p := &domain.Participant{SessionID: sess.ID, Nickname: "Alex"}
	ctx := context.Background()
	if err := st.participants.Join(ctx, p); err != nil {
		t.Fatalf("join: %v", err)
	}

	// t2, затем запоздавший t1: часы живости не откатываются
	st.store.SetClock(func() time.Time { return base.Add(10 * time.Second) })
	if _, err := st.presence.Touch(ctx, p.ID, nil); err != nil {
		t.Fatalf("touch t2: %v", err)
	}

	st.store.SetClock(func() time.Time { return base.Add(5 * time.Second) })
	lastSeen, err := st.presence.Touch(ctx, p.ID, nil)
	if err != nil {
		t.Fatalf("late touch must still be acknowledged: %v", err)
	}
	if !lastSeen.Equal(base.Add(10 * time.Second)) {
		t.Fatalf("last_seen regressed to %v, want %v", lastSeen, base.Add(10*time.Second))
	}
}

func TestPresence_HeartbeatScenario(t *testing.T) {
	st := newStack()
	base := time.Date(2025, 10, 8, 12, 0, 0, 0, time.UTC)
	at := func(sec int) {
		st.store.SetClock(func() time.Time { return base.Add(time.Duration(sec) * time.Second) })
	}
	at(0)

	sess := st.store.PutSession(domain.Session{Title: "demo"})
	p := &domain.Participant{SessionID: sess.ID, Nickname: "Alex"}
	ctx := context.Background()
	if err := st.participants.Join(ctx, p); err != nil {
		t.Fatalf("join: %v", err)
	}

	for _, sec := range []int{0, 25, 58} {
		at(sec)
		if _, err := st.presence.Touch(ctx, p.ID, nil); err != nil {
			t.Fatalf("touch at t=%d: %v", sec, err)
		}
	}

	// t=60: последний heartbeat на t=58, прошло 2s
	at(60)
	status, err := st.presence.StatusOf(ctx, p.ID)
	if err != nil {
		t.Fatalf("StatusOf: %v", err)
	}
	if status != domain.PresenceOnline {
		t.Fatalf("at t=60 status = %q, want online", status)
	}

	// t=95: прошло 37s
	at(95)
	status, _ = st.presence.StatusOf(ctx, p.ID)
	if status != domain.PresenceIdle {
		t.Fatalf("at t=95 status = %q, want idle", status)
	}

	// t=200: прошло 142s
	at(200)
	status, _ = st.presence.StatusOf(ctx, p.ID)
	if status != domain.PresenceDisconnected {
		t.Fatalf("at t=200 status = %q, want disconnected", status)
	}
}

func TestPresence_ListStatusesSharesOneNow(t *testing.T) {
	st := newStack()
	base := time.Date(2025, 10, 8, 12, 0, 0, 0, time.UTC)
	st.store.SetClock(func() time.Time { return base })

	sess := st.store.PutSession(domain.Session{Title: "demo"})
	ctx := context.Background()

	fresh := &domain.Participant{SessionID: sess.ID, Nickname: "Fresh"}
	stale := &domain.Participant{SessionID: sess.ID, Nickname: "Stale"}
	for _, p := range []*domain.Participant{fresh, stale} {
		if err := st.participants.Join(ctx, p); err != nil {
			t.Fatalf("join: %v", err)
		}
	}

	st.store.SetClock(func() time.Time { return base.Add(40 * time.Second) })
	if _, err := st.presence.Touch(ctx, fresh.ID, nil); err != nil {
		t.Fatalf("touch: %v", err)
	}

	list, err := st.presence.ListStatuses(ctx, sess.ID)
	if err != nil {
		t.Fatalf("ListStatuses: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("got %d participants, want 2", len(list))
	}

	byNick := map[string]domain.PresenceStatus{}
	for _, it := range list {
		byNick[it.Nickname] = it.Status
	}
	if byNick["Fresh"] != domain.PresenceOnline {
		t.Fatalf("Fresh = %q, want online", byNick["Fresh"])
	}
	if byNick["Stale"] != domain.PresenceIdle {
		t.Fatalf("Stale = %q, want idle (40s elapsed)", byNick["Stale"])
	}
}

func TestPresence_ActiveCountExcludesDisconnected(t *testing.T) {
	st := newStack()
	base := time.Date(2025, 10, 8, 12, 0, 0, 0, time.UTC)
	st.store.SetClock(func() time.Time { return base })

	sess := st.store.PutSession(domain.Session{Title: "demo"})
	ctx := context.Background()

	gone := &domain.Participant{SessionID: sess.ID, Nickname: "Gone"}
	if err := st.participants.Join(ctx, gone); err != nil {
		t.Fatalf("join: %v", err)
	}
	st.store.SetClock(func() time.Time { return base.Add(100 * time.Second) })
	idle := &domain.Participant{SessionID: sess.ID, Nickname: "Idle"}
	if err := st.participants.Join(ctx, idle); err != nil {
		t.Fatalf("join: %v", err)
	}

	// t=160: Gone отвалился (160s), Idle ещё в окне (60s)
	st.store.SetClock(func() time.Time { return base.Add(160 * time.Second) })
	count, err := st.presence.ActiveCount(ctx, sess.ID)
	if err != nil {
		t.Fatalf("ActiveCount: %v", err)
	}
	if count != 1 {
		t.Fatalf("ActiveCount = %d, want 1 (disconnected excluded)", count)
	}
}
