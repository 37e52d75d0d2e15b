package engine

// Settings configures the chat completion client. Sampling parameters are
// pointers so that unset values are omitted from the request instead of
// sending provider defaults explicitly.
type Settings struct {
	APIKey  string `yaml:"api_key,omitempty"`
	BaseURL string `yaml:"base_url,omitempty"`

	Temperature       *float64 `yaml:"temperature,omitempty"`
	TopP              *float64 `yaml:"top_p,omitempty"`
	MaxResponseTokens *int     `yaml:"max_response_tokens,omitempty"`
}

// DefaultBaseURL is Mistral's OpenAI-compatible endpoint.
const DefaultBaseURL = "https://api.mistral.ai/v1"

func NewSettings() *Settings {
	return &Settings{
		BaseURL: DefaultBaseURL,
	}
}

func (s *Settings) Clone() *Settings {
	ret := *s
	if s.Temperature != nil {
		v := *s.Temperature
		ret.Temperature = &v
	}
	if s.TopP != nil {
		v := *s.TopP
		ret.TopP = &v
	}
	if s.MaxResponseTokens != nil {
		v := *s.MaxResponseTokens
		ret.MaxResponseTokens = &v
	}
	return &ret
}
