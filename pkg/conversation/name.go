package conversation

import (
	"regexp"
	"strings"
)

// DefaultSessionName is used for fresh sessions and when a name cannot be
// derived from the first user message.
const DefaultSessionName = "New Chat"

const sessionNameMaxLen = 40

var fencedBlockRe = regexp.MustCompile("(?s)```.*?```")

// DeriveSessionName turns the first user message of a session into a display
// name: fenced code blocks are stripped, the first remaining line is taken
// and truncated to 40 characters with an ellipsis marker.
func DeriveSessionName(content string) string {
	clean := strings.TrimSpace(fencedBlockRe.ReplaceAllString(content, ""))
	firstLine := strings.TrimSpace(strings.SplitN(clean, "\n", 2)[0])

	runes := []rune(firstLine)
	name := firstLine
	if len(runes) > sessionNameMaxLen {
		name = string(runes[:sessionNameMaxLen]) + "..."
	}

	if name == "" {
		return DefaultSessionName
	}
	return name
}
