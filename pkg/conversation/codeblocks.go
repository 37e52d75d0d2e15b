package conversation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var codeBlockRe = regexp.MustCompile("(?s)```(\\w+)\n(.*?)```")

// ExtractCodeBlocks pulls fenced code blocks out of assistant content.
// It returns the content with the code trimmed inside its fences, plus one
// CodeBlock record per fence. Fences without a language tag are left alone.
func ExtractCodeBlocks(content string) (string, []CodeBlock) {
	matches := codeBlockRe.FindAllStringSubmatchIndex(content, -1)
	if len(matches) == 0 {
		return content, nil
	}

	var blocks []CodeBlock
	var text strings.Builder
	lastIndex := 0

	for _, m := range matches {
		start, end := m[0], m[1]
		language := content[m[2]:m[3]]
		code := strings.TrimSpace(content[m[4]:m[5]])

		text.WriteString(content[lastIndex:start])
		text.WriteString(fmt.Sprintf("```%s\n%s\n```", language, code))
		lastIndex = end

		blocks = append(blocks, CodeBlock{
			ID:       uuid.NewString(),
			Language: language,
			Code:     code,
		})
	}

	text.WriteString(content[lastIndex:])
	return text.String(), blocks
}
