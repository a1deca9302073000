package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/tristanl-slalom/conflicto-sub001/internal/domain"
)

func TestSyncer_JoinRace_ExactlyOneWinner(t *testing.T) {
	st := newStack()
	sess := st.store.PutSession(domain.Session{Title: "demo", AllowLateJoin: true})
	ctx := context.Background()

	const n = 16
	var wg sync.WaitGroup
	errs := make([]error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, errs[i] = st.syncer.Join(ctx, sess.ID, "Alex", nil)
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
			continue
		}
		var taken *domain.NicknameTakenError
		if !errors.As(err, &taken) {
			t.Fatalf("loser got %v, want NicknameTakenError", err)
		}
		if len(taken.Suggestions) == 0 {
			t.Fatal("loser must receive suggestions")
		}
		for _, s := range taken.Suggestions {
			if strings.EqualFold(s, "Alex") {
				t.Fatalf("suggestion %q collides with the winner", s)
			}
		}
	}
	if winners != 1 {
		t.Fatalf("winners = %d, want exactly 1", winners)
	}
}

func TestSyncer_CapacityScenario(t *testing.T) {
	st := newStack()
	sess := st.store.PutSession(domain.Session{Title: "demo", MaxParticipants: 2, AllowLateJoin: true})
	ctx := context.Background()

	p, snap, err := st.syncer.Join(ctx, sess.ID, "Alice", nil)
	if err != nil {
		t.Fatalf("first join: %v", err)
	}
	if p.Nickname != "Alice" {
		t.Fatalf("casing not preserved: %q", p.Nickname)
	}
	if snap.ParticipantCount != 1 {
		t.Fatalf("participant count = %d, want 1", snap.ParticipantCount)
	}

	// тот же ник в другом регистре — коллизия с подсказкой alice2
	_, _, err = st.syncer.Join(ctx, sess.ID, "alice", nil)
	var taken *domain.NicknameTakenError
	if !errors.As(err, &taken) {
		t.Fatalf("got %v, want NicknameTakenError", err)
	}
	if len(taken.Suggestions) == 0 || taken.Suggestions[0] != "alice2" {
		t.Fatalf("suggestions = %v, want alice2 first", taken.Suggestions)
	}

	if _, _, err := st.syncer.Join(ctx, sess.ID, "Bob", nil); err != nil {
		t.Fatalf("second distinct join: %v", err)
	}

	_, _, err = st.syncer.Join(ctx, sess.ID, "Carol", nil)
	if !errors.Is(err, domain.ErrSessionFull) {
		t.Fatalf("got %v, want ErrSessionFull at limit 2", err)
	}
}

func TestSyncer_JoinUnknownSession(t *testing.T) {
	st := newStack()
	_, _, err := st.syncer.Join(context.Background(), "missing", "Alex", nil)
	if !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("got %v, want ErrSessionNotFound", err)
	}
}

func TestSyncer_HeartbeatReturnsSnapshot(t *testing.T) {
	st := newStack()
	sess := st.store.PutSession(domain.Session{Title: "demo", Status: domain.SessionActive, AllowLateJoin: true})
	act := st.store.PutActivity(domain.Activity{
		SessionID: sess.ID,
		Type:      "poll",
		Config:    json.RawMessage(`{"question":"?"}`),
		Status:    domain.ActivityRunning,
	})
	ctx := context.Background()

	p, _, err := st.syncer.Join(ctx, sess.ID, "Alex", nil)
	if err != nil {
		t.Fatalf("join: %v", err)
	}

	res, err := st.syncer.Heartbeat(ctx, p.ID, json.RawMessage(`{"screen":"vote"}`))
	if err != nil {
		t.Fatalf("heartbeat: %v", err)
	}
	if res.Snapshot == nil || res.Snapshot.CurrentActivity == nil {
		t.Fatal("heartbeat must carry the current activity snapshot")
	}
	if res.Snapshot.CurrentActivity.ID != act.ID {
		t.Fatalf("snapshot activity = %q, want %q", res.Snapshot.CurrentActivity.ID, act.ID)
	}
	if res.LastSeen.IsZero() {
		t.Fatal("heartbeat must acknowledge last_seen")
	}

	stored, err := st.participants.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("get participant: %v", err)
	}
	if string(stored.ConnectionData) != `{"screen":"vote"}` {
		t.Fatalf("connection_data not persisted: %s", stored.ConnectionData)
	}
}

func TestSyncer_HeartbeatUnknownParticipant(t *testing.T) {
	st := newStack()
	_, err := st.syncer.Heartbeat(context.Background(), "missing", nil)
	if !errors.Is(err, domain.ErrParticipantNotFound) {
		t.Fatalf("got %v, want ErrParticipantNotFound", err)
	}
}

func TestSyncer_LateJoinRegistersWithFlag(t *testing.T) {
	st := newStack()
	sess := st.store.PutSession(domain.Session{Title: "demo", Status: domain.SessionActive, AllowLateJoin: false})
	st.store.PutActivity(domain.Activity{SessionID: sess.ID, Type: "poll", Status: domain.ActivityRunning})

	// поздний вход не отклоняется, только помечается
	p, snap, err := st.syncer.Join(context.Background(), sess.ID, "Late", nil)
	if err != nil {
		t.Fatalf("late join must register: %v", err)
	}
	if p.ID == "" {
		t.Fatal("participant not created")
	}
	if !snap.LateJoinRestricted {
		t.Fatal("snapshot must flag restricted late join")
	}
}

func TestSyncer_RemoveParticipantIdempotent(t *testing.T) {
	st := newStack()
	sess := st.store.PutSession(domain.Session{Title: "demo", AllowLateJoin: true})
	ctx := context.Background()

	p, _, err := st.syncer.Join(ctx, sess.ID, "Alex", nil)
	if err != nil {
		t.Fatalf("join: %v", err)
	}

	if err := st.syncer.RemoveParticipant(ctx, p.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := st.syncer.RemoveParticipant(ctx, p.ID); err != nil {
		t.Fatalf("repeated remove must be a no-op, got %v", err)
	}
}
