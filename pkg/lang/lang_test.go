package lang

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSupportedLookups(t *testing.T) {
	assert.True(t, IsSupported("en"))
	assert.True(t, IsSupported("ja"))
	assert.False(t, IsSupported("xx"))

	assert.Equal(t, "French", Name("fr"))
	assert.Equal(t, "Français", NativeName("fr"))
	assert.Equal(t, "Unknown", Name("xx"))

	assert.Len(t, Supported(), 25)
}

func TestSystemPrompt(t *testing.T) {
	prompt := SystemPrompt("de")
	assert.Contains(t, prompt, "German")
	assert.Contains(t, prompt, "Deutsch")
}

func TestWhatlangDetector(t *testing.T) {
	detector := WhatlangDetector{}

	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{
			name:     "short input falls back to default",
			text:     "hi",
			expected: DefaultLanguage,
		},
		{
			name:     "empty input falls back to default",
			text:     "",
			expected: DefaultLanguage,
		},
		{
			name:     "french",
			text:     "Bonjour, comment allez-vous aujourd'hui ? J'aimerais discuter avec vous.",
			expected: "fr",
		},
		{
			name:     "spanish",
			text:     "Hola, ¿cómo estás? Me gustaría hablar contigo sobre programación.",
			expected: "es",
		},
		{
			name:     "japanese",
			text:     "こんにちは、今日はいい天気ですね。プログラミングについて話しましょう。",
			expected: "ja",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, detector.Detect(tt.text))
		})
	}
}
