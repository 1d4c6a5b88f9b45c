// Package phrases holds the pre-authored spoken fallbacks used when an
// external vendor fails mid-call. Variants are picked pseudo-randomly so
// repeated failures do not sound robotic.
package phrases

import "math/rand"

// ReplyFailure is spoken when the completion service cannot produce a reply.
var ReplyFailure = []string{
	"I'm so sorry, but I'm having a bit of trouble right now. Could you try that again?",
	"My apologies, there seems to be a temporary issue. Would you mind repeating that?",
	"I'm experiencing a brief technical difficulty. Could you say that once more?",
	"I apologize for the inconvenience. Could you try again in just a moment?",
	"There seems to be a small hiccup. Would you mind repeating your request?",
}

// AudioFailure is spoken when a reply was produced but synthesis failed.
var AudioFailure = []string{
	"I apologize, but I'm having a bit of trouble with the audio right now. Could you try again?",
	"My apologies, there seems to be a temporary audio issue. Would you mind repeating that?",
	"I'm experiencing a brief technical difficulty. Could you say that once more?",
}

// SpeechMissing is spoken when no transcript arrived with the webhook.
var SpeechMissing = []string{
	"I didn't quite catch that. Could you please repeat?",
	"I missed that, I'm afraid. Would you mind saying it again?",
	"I didn't hear you clearly. Could you repeat that?",
}

// Picker chooses an index in [0, n). Tests stub it to a fixed index.
type Picker interface {
	Pick(n int) int
}

// RandomPicker is the production Picker.
type RandomPicker struct{}

func (RandomPicker) Pick(n int) int {
	if n <= 1 {
		return 0
	}
	return rand.Intn(n)
}

// Choose returns one phrase from pool using p, or an empty string for an
// empty pool.
func Choose(p Picker, pool []string) string {
	if len(pool) == 0 {
		return ""
	}
	i := p.Pick(len(pool))
	if i < 0 || i >= len(pool) {
		i = 0
	}
	return pool[i]
}
