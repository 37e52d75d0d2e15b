package conversation

import (
	"github.com/pkg/errors"
)

// Direction selects which neighboring alternative to display.
type Direction string

const (
	DirectionPrev Direction = "prev"
	DirectionNext Direction = "next"
)

var ErrNoActiveAssistant = errors.New("no assistant reply in the last exchange")

// RecordAlternative folds a regenerated reply into the branch of the active
// assistant message. The first time a turn is regenerated the original
// response is preserved in OriginalContent and in alternatives slot 0, so it
// is never lost. The new response becomes the displayed content; its slot is
// the index one past the persisted alternatives and is only written to
// Alternatives once navigation moves away from it.
func (t Thread) RecordAlternative(content string) error {
	idx := t.ActiveAssistantIndex()
	if idx < 0 {
		return ErrNoActiveAssistant
	}
	msg := t[idx]

	if len(msg.Alternatives) == 0 {
		msg.OriginalContent = msg.Content
		msg.Alternatives = []string{msg.Content}
	} else if msg.CurrentAlternativeIndex == len(msg.Alternatives) {
		// The displayed response is the newest and lives only in Content;
		// persist it before it is replaced.
		msg.Alternatives = append(msg.Alternatives, msg.Content)
	}

	msg.Content = content
	msg.CurrentAlternativeIndex = len(msg.Alternatives)
	return nil
}

// Navigate moves the displayed alternative of the active assistant message
// by one. There is no wrap-around: prev at the original (index 0) and next
// at the newest response are no-ops. It returns true when the displayed
// content changed.
func (t Thread) Navigate(direction Direction) bool {
	idx := t.ActiveAssistantIndex()
	if idx < 0 {
		return false
	}
	msg := t[idx]
	if msg.WebSearch || len(msg.Alternatives) == 0 {
		return false
	}

	cur := msg.CurrentAlternativeIndex
	last := len(msg.Alternatives) - 1
	if cur == len(msg.Alternatives) {
		// Newest response not yet persisted; it occupies the slot past the
		// stored alternatives.
		last = cur
	}

	var next int
	switch direction {
	case DirectionPrev:
		next = cur - 1
	case DirectionNext:
		next = cur + 1
	default:
		return false
	}
	if next < 0 || next > last {
		return false
	}

	if cur == len(msg.Alternatives) {
		msg.Alternatives = append(msg.Alternatives, msg.Content)
	}

	if next == 0 {
		msg.Content = msg.OriginalContent
	} else {
		msg.Content = msg.Alternatives[next]
	}
	msg.CurrentAlternativeIndex = next
	return true
}
