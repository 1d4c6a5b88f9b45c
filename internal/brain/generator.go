package brain

import (
	"context"
	"log"

	"github.com/antoniostano/frontdesk/internal/convstore"
	"github.com/antoniostano/frontdesk/internal/phrases"
)

// Completer produces an assistant reply for an ordered message list.
type Completer interface {
	Complete(ctx context.Context, messages []convstore.Turn) (string, error)
}

// HistoryStore is the slice of the conversation store the generator needs.
type HistoryStore interface {
	Get(callSID string) []convstore.Turn
	Put(callSID string, turns []convstore.Turn)
}

// Generator assembles the bounded prompt for each utterance, calls the
// completion service and maintains per-call history. It never surfaces
// vendor failures: the caller always gets playable text.
type Generator struct {
	completer Completer
	store     HistoryStore
	picker    phrases.Picker
	persona   string
	maxTurns  int
}

func NewGenerator(completer Completer, store HistoryStore, picker phrases.Picker, persona string, maxTurns int) *Generator {
	if maxTurns <= 0 {
		maxTurns = 10
	}
	if picker == nil {
		picker = phrases.RandomPicker{}
	}
	return &Generator{
		completer: completer,
		store:     store,
		picker:    picker,
		persona:   persona,
		maxTurns:  maxTurns,
	}
}

// Reply answers the utterance in the context of callSID's history. On any
// completion failure it logs and returns a fallback phrase; the next
// utterance retries naturally.
func (g *Generator) Reply(ctx context.Context, callSID, utterance string) string {
	var history []convstore.Turn
	if callSID != "" {
		history = g.store.Get(callSID)
	}

	messages := make([]convstore.Turn, 0, len(history)+2)
	messages = append(messages, convstore.Turn{Role: convstore.RoleSystem, Text: g.persona})
	messages = append(messages, history...)
	messages = append(messages, convstore.Turn{Role: convstore.RoleUser, Text: utterance})

	text, err := g.completer.Complete(ctx, messages)
	if err != nil {
		log.Printf("brain: completion failed for call %s: %v", callSID, err)
		return phrases.Choose(g.picker, phrases.ReplyFailure)
	}

	if callSID != "" {
		updated := append(history,
			convstore.Turn{Role: convstore.RoleUser, Text: utterance},
			convstore.Turn{Role: convstore.RoleAssistant, Text: text},
		)
		// Keep only the most recent turns to bound prompt size and cost.
		if len(updated) > g.maxTurns {
			updated = updated[len(updated)-g.maxTurns:]
		}
		g.store.Put(callSID, updated)
	}

	return text
}
