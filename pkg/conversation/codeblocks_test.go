package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractCodeBlocks(t *testing.T) {
	content := "Here is an example:\n```go\nfmt.Println(\"hi\")\n```\nand some closing text"

	text, blocks := ExtractCodeBlocks(content)
	require.Len(t, blocks, 1)
	assert.Equal(t, "go", blocks[0].Language)
	assert.Equal(t, "fmt.Println(\"hi\")", blocks[0].Code)
	assert.NotEmpty(t, blocks[0].ID)
	assert.Contains(t, text, "```go\nfmt.Println(\"hi\")\n```")
	assert.Contains(t, text, "and some closing text")
}

func TestExtractCodeBlocksMultiple(t *testing.T) {
	content := "```python\nprint(1)\n```\nmiddle\n```js\nconsole.log(2)\n```"

	_, blocks := ExtractCodeBlocks(content)
	require.Len(t, blocks, 2)
	assert.Equal(t, "python", blocks[0].Language)
	assert.Equal(t, "print(1)", blocks[0].Code)
	assert.Equal(t, "js", blocks[1].Language)
	assert.Equal(t, "console.log(2)", blocks[1].Code)
	assert.NotEqual(t, blocks[0].ID, blocks[1].ID)
}

func TestExtractCodeBlocksNone(t *testing.T) {
	content := "no code here, just `inline` ticks"

	text, blocks := ExtractCodeBlocks(content)
	assert.Empty(t, blocks)
	assert.Equal(t, content, text)
}

func TestExtractCodeBlocksTrimsCode(t *testing.T) {
	content := "```go\n\n\tx := 1\n\n```"

	_, blocks := ExtractCodeBlocks(content)
	require.Len(t, blocks, 1)
	assert.Equal(t, "x := 1", blocks[0].Code)
}
