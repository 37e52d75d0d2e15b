package websearch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Result is a single search hit.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Searcher retrieves web results for a query and renders them as markdown
// suitable for injection into a prompt.
type Searcher interface {
	Search(ctx context.Context, query string) (string, error)
}

// MockSearcher returns canned results shaped around the query. It stands in
// for a real search API; the orchestrator treats it like any other provider.
type MockSearcher struct {
	// Delay simulates provider latency; zero in tests.
	Delay time.Duration
}

var _ Searcher = (*MockSearcher)(nil)

func NewMockSearcher() *MockSearcher {
	return &MockSearcher{Delay: 1500 * time.Millisecond}
}

func (s *MockSearcher) Search(ctx context.Context, query string) (string, error) {
	log.Debug().Str("query", query).Msg("performing web search")

	if s.Delay > 0 {
		select {
		case <-time.After(s.Delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	results := []Result{
		{
			Title:   fmt.Sprintf("%s - Latest Information (2025)", query),
			URL:     "https://example.com/latest-info",
			Snippet: fmt.Sprintf("Find the most up-to-date information about %s. Our comprehensive guide covers everything you need to know, including recent developments and expert insights.", query),
		},
		{
			Title:   fmt.Sprintf("Complete Guide to %s", query),
			URL:     "https://example.com/complete-guide",
			Snippet: fmt.Sprintf("Learn everything about %s with our detailed guide. Includes practical examples, best practices, and expert recommendations for better understanding.", query),
		},
		{
			Title:   fmt.Sprintf("%s - Expert Analysis", query),
			URL:     "https://example.com/expert-analysis",
			Snippet: fmt.Sprintf("Professional analysis and insights about %s. Discover key concepts, common challenges, and innovative solutions from industry experts.", query),
		},
		{
			Title:   fmt.Sprintf("Understanding %s - Practical Guide", query),
			URL:     "https://example.com/practical-guide",
			Snippet: fmt.Sprintf("A practical approach to understanding %s. This guide breaks down complex topics into easy-to-understand explanations with real-world examples.", query),
		},
	}

	return FormatResults(query, results), nil
}

// FormatResults renders search results as a markdown document with a query
// header and a disclaimer footer.
func FormatResults(query string, results []Result) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Web Search Results for: %q\n\n", query))

	if len(results) == 0 {
		sb.WriteString("No relevant information found on the web.")
	} else {
		entries := make([]string, 0, len(results))
		for _, r := range results {
			entries = append(entries, fmt.Sprintf("### [%s](%s)\n%s\n", r.Title, r.URL, r.Snippet))
		}
		sb.WriteString(strings.Join(entries, "\n"))
	}

	sb.WriteString("\n\n*Note: These results were retrieved from the web and may not be completely accurate or up-to-date.*")
	return sb.String()
}
