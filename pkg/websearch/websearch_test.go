package websearch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockSearcherReturnsFormattedResults(t *testing.T) {
	searcher := &MockSearcher{}

	out, err := searcher.Search(context.Background(), "golang generics")
	require.NoError(t, err)

	assert.Contains(t, out, `## Web Search Results for: "golang generics"`)
	assert.Contains(t, out, "golang generics - Latest Information (2025)")
	assert.Contains(t, out, "https://example.com/complete-guide")
	assert.Contains(t, out, "may not be completely accurate")
}

func TestMockSearcherHonorsContextCancellation(t *testing.T) {
	searcher := &MockSearcher{Delay: time.Minute}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := searcher.Search(ctx, "anything")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFormatResultsEmpty(t *testing.T) {
	out := FormatResults("nothing", nil)

	assert.Contains(t, out, `## Web Search Results for: "nothing"`)
	assert.Contains(t, out, "No relevant information found on the web.")
}

func TestFormatResultsEntries(t *testing.T) {
	out := FormatResults("q", []Result{
		{Title: "First", URL: "https://a.example", Snippet: "snippet one"},
		{Title: "Second", URL: "https://b.example", Snippet: "snippet two"},
	})

	assert.Contains(t, out, "### [First](https://a.example)\nsnippet one")
	assert.Contains(t, out, "### [Second](https://b.example)\nsnippet two")
}
