package brain

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/antoniostano/frontdesk/internal/convstore"
	"github.com/antoniostano/frontdesk/internal/phrases"
)

type stubCompleter struct {
	reply    string
	err      error
	lastSeen []convstore.Turn
	calls    int
}

func (s *stubCompleter) Complete(_ context.Context, messages []convstore.Turn) (string, error) {
	s.calls++
	s.lastSeen = append([]convstore.Turn(nil), messages...)
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

type fixedPicker struct{ i int }

func (f fixedPicker) Pick(int) int { return f.i }

func TestReplyBuildsPersonaHistoryUtterancePrompt(t *testing.T) {
	store := convstore.New(30 * time.Minute)
	store.Put("CA1", []convstore.Turn{
		{Role: convstore.RoleUser, Text: "hello"},
		{Role: convstore.RoleAssistant, Text: "hi, how can I help?"},
	})
	completer := &stubCompleter{reply: "Of course, right away."}
	g := NewGenerator(completer, store, fixedPicker{}, "persona text", 10)

	got := g.Reply(context.Background(), "CA1", "a club sandwich please")
	if got != "Of course, right away." {
		t.Fatalf("Reply() = %q", got)
	}

	if len(completer.lastSeen) != 4 {
		t.Fatalf("prompt had %d messages, want 4 (system + 2 history + user)", len(completer.lastSeen))
	}
	if completer.lastSeen[0].Role != convstore.RoleSystem || completer.lastSeen[0].Text != "persona text" {
		t.Fatalf("first message = %+v, want the persona system turn", completer.lastSeen[0])
	}
	last := completer.lastSeen[len(completer.lastSeen)-1]
	if last.Role != convstore.RoleUser || last.Text != "a club sandwich please" {
		t.Fatalf("last message = %+v, want the new user turn", last)
	}
}

func TestReplyAppendsAndPersistsBothTurns(t *testing.T) {
	store := convstore.New(30 * time.Minute)
	completer := &stubCompleter{reply: "Certainly."}
	g := NewGenerator(completer, store, fixedPicker{}, "persona", 10)

	g.Reply(context.Background(), "CA1", "hello")

	turns := store.Get("CA1")
	if len(turns) != 2 {
		t.Fatalf("stored %d turns, want 2", len(turns))
	}
	if turns[0].Role != convstore.RoleUser || turns[1].Role != convstore.RoleAssistant {
		t.Fatalf("stored roles = %q, %q", turns[0].Role, turns[1].Role)
	}
}

func TestReplyFailureReturnsFallbackPhrase(t *testing.T) {
	store := convstore.New(30 * time.Minute)
	completer := &stubCompleter{err: errors.New("connection refused")}
	g := NewGenerator(completer, store, fixedPicker{i: 1}, "persona", 10)

	got := g.Reply(context.Background(), "CA1", "hello")
	if got != phrases.ReplyFailure[1] {
		t.Fatalf("Reply() = %q, want fallback %q", got, phrases.ReplyFailure[1])
	}
	if len(store.Get("CA1")) != 0 {
		t.Fatalf("failed turn should not be persisted")
	}
}

func TestReplyFailureAlwaysInFallbackPool(t *testing.T) {
	store := convstore.New(30 * time.Minute)
	completer := &stubCompleter{err: errors.New("boom")}
	g := NewGenerator(completer, store, phrases.RandomPicker{}, "persona", 10)

	pool := make(map[string]bool, len(phrases.ReplyFailure))
	for _, p := range phrases.ReplyFailure {
		pool[p] = true
	}
	for i := 0; i < 50; i++ {
		if got := g.Reply(context.Background(), "CA1", "hello"); !pool[got] {
			t.Fatalf("Reply() = %q, not a member of the fallback pool", got)
		}
	}
}

func TestHistoryNeverExceedsConfiguredCap(t *testing.T) {
	store := convstore.New(30 * time.Minute)
	completer := &stubCompleter{reply: "noted"}
	g := NewGenerator(completer, store, fixedPicker{}, "persona", 10)

	for i := 0; i < 50; i++ {
		g.Reply(context.Background(), "CA1", fmt.Sprintf("utterance %d", i))
		// Prompt: system + history + new user turn. History is capped at 10,
		// so the prompt can never exceed 12 messages.
		if len(completer.lastSeen) > 12 {
			t.Fatalf("turn %d: prompt grew to %d messages", i, len(completer.lastSeen))
		}
	}

	if got := len(store.Get("CA1")); got != 10 {
		t.Fatalf("stored history = %d turns, want capped at 10", got)
	}
}

func TestReplyWithoutCallSIDSkipsPersistence(t *testing.T) {
	store := convstore.New(30 * time.Minute)
	completer := &stubCompleter{reply: "hello there"}
	g := NewGenerator(completer, store, fixedPicker{}, "persona", 10)

	if got := g.Reply(context.Background(), "", "hello"); got != "hello there" {
		t.Fatalf("Reply() = %q", got)
	}
	if len(completer.lastSeen) != 2 {
		t.Fatalf("prompt had %d messages, want system + user only", len(completer.lastSeen))
	}
}
