package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/tristanl-slalom/conflicto-sub001/internal/domain"
)

func seedNicknames(t *testing.T, st *stack, sessionID string, names ...string) {
	t.Helper()
	for _, n := range names {
		p := &domain.Participant{SessionID: sessionID, Nickname: n}
		if err := st.participants.Join(context.Background(), p); err != nil {
			t.Fatalf("seed %q: %v", n, err)
		}
	}
}

func TestRegistry_Validate(t *testing.T) {
	st := newStack()
	sess := st.store.PutSession(domain.Session{Title: "demo"})
	ctx := context.Background()

	available, _, err := st.registry.Validate(ctx, sess.ID, "Alex")
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !available {
		t.Fatal("empty session: nickname must be available")
	}

	seedNicknames(t, st, sess.ID, "Alex")

	// регистронезависимо
	available, suggestions, err := st.registry.Validate(ctx, sess.ID, "aLeX")
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if available {
		t.Fatal("case-insensitive collision not detected")
	}
	if len(suggestions) == 0 {
		t.Fatal("collision must carry suggestions")
	}
	if suggestions[0] != "aLeX2" {
		t.Fatalf("first suggestion = %q, want aLeX2", suggestions[0])
	}
}

func TestRegistry_Validate_NoSideEffects(t *testing.T) {
	st := newStack()
	sess := st.store.PutSession(domain.Session{Title: "demo"})

	if _, _, err := st.registry.Validate(context.Background(), sess.ID, "Ghost"); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if n, _ := st.participants.Count(context.Background(), sess.ID); n != 0 {
		t.Fatalf("validation must not create participants, got %d", n)
	}
}

func TestRegistry_SuggestSkipsManuallyTaken(t *testing.T) {
	st := newStack()
	sess := st.store.PutSession(domain.Session{Title: "demo"})

	// Alex2 занят вручную: сканируем реальные ники, а не инкрементим счётчик
	seedNicknames(t, st, sess.ID, "Alex", "Alex2")

	got, err := st.registry.Suggest(context.Background(), sess.ID, "Alex")
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	want := []string{"Alex3", "Alex4", "Alex5"}
	if len(got) != len(want) {
		t.Fatalf("suggestions = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("suggestions = %v, want %v", got, want)
		}
	}
}

func TestRegistry_SuggestRespectsLengthCap(t *testing.T) {
	st := newStack()
	sess := st.store.PutSession(domain.Session{Title: "demo"})

	long := strings.Repeat("a", maxNicknameLen)
	seedNicknames(t, st, sess.ID, long)

	got, err := st.registry.Suggest(context.Background(), sess.ID, long)
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if len(got) == 0 {
		t.Fatal("expected suggestions for capped nickname")
	}
	for _, s := range got {
		if len(s) > maxNicknameLen {
			t.Fatalf("suggestion %q exceeds %d chars", s, maxNicknameLen)
		}
	}
}

func TestRegistry_SuggestTruncatesOnRuneBoundary(t *testing.T) {
	st := newStack()
	sess := st.store.PutSession(domain.Session{Title: "demo"})

	// мультибайтовый символ на месте, куда раньше попадал байтовый срез,
	// и ник ровно в 50 рун, требующий усечения под суффикс
	names := []string{
		strings.Repeat("a", 48) + "é",
		strings.Repeat("я", maxNicknameLen),
	}
	seedNicknames(t, st, sess.ID, names...)

	for _, name := range names {
		got, err := st.registry.Suggest(context.Background(), sess.ID, name)
		if err != nil {
			t.Fatalf("Suggest(%q): %v", name, err)
		}
		if len(got) == 0 {
			t.Fatalf("expected suggestions for %q", name)
		}
		for _, s := range got {
			if !utf8.ValidString(s) {
				t.Fatalf("suggestion %q is not valid UTF-8", s)
			}
			if utf8.RuneCountInString(s) > maxNicknameLen {
				t.Fatalf("suggestion %q exceeds %d runes", s, maxNicknameLen)
			}
		}
	}
}

func TestNormalizeNickname(t *testing.T) {
	if _, err := NormalizeNickname("   "); !errors.Is(err, domain.ErrInvalidNickname) {
		t.Fatalf("blank nickname: got %v, want ErrInvalidNickname", err)
	}
	if _, err := NormalizeNickname(strings.Repeat("x", maxNicknameLen+1)); !errors.Is(err, domain.ErrInvalidNickname) {
		t.Fatalf("oversized nickname: got %v, want ErrInvalidNickname", err)
	}
	got, err := NormalizeNickname("  Alex  ")
	if err != nil {
		t.Fatalf("NormalizeNickname: %v", err)
	}
	if got != "Alex" {
		t.Fatalf("got %q, want trimmed Alex with original casing", got)
	}

	// лимит считается в символах: 17 рун CJK (51 байт) валидны
	cjk := strings.Repeat("日本語", 5) + "のね"
	if got, err = NormalizeNickname(cjk); err != nil {
		t.Fatalf("multibyte nickname rejected: %v", err)
	}
	if got != cjk {
		t.Fatalf("got %q, want %q", got, cjk)
	}
	if _, err := NormalizeNickname(strings.Repeat("ё", maxNicknameLen+1)); !errors.Is(err, domain.ErrInvalidNickname) {
		t.Fatalf("51-rune nickname: got %v, want ErrInvalidNickname", err)
	}
}
