package lang

import (
	"fmt"
	"unicode/utf8"

	"github.com/abadojack/whatlanggo"
)

// DefaultLanguage is used when detection is inconclusive or the detected
// language is not in the supported set.
const DefaultLanguage = "en"

// Info names a supported language by its ISO 639-1 code.
type Info struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	NativeName string `json:"nativeName"`
}

var supported = []Info{
	{"en", "English", "English"},
	{"es", "Spanish", "Español"},
	{"fr", "French", "Français"},
	{"de", "German", "Deutsch"},
	{"it", "Italian", "Italiano"},
	{"pt", "Portuguese", "Português"},
	{"ru", "Russian", "Русский"},
	{"zh", "Chinese", "中文"},
	{"ja", "Japanese", "日本語"},
	{"ko", "Korean", "한국어"},
	{"ar", "Arabic", "العربية"},
	{"hi", "Hindi", "हिन्दी"},
	{"bn", "Bengali", "বাংলা"},
	{"ur", "Urdu", "اردو"},
	{"tr", "Turkish", "Türkçe"},
	{"nl", "Dutch", "Nederlands"},
	{"sv", "Swedish", "Svenska"},
	{"fi", "Finnish", "Suomi"},
	{"pl", "Polish", "Polski"},
	{"cs", "Czech", "Čeština"},
	{"uk", "Ukrainian", "Українська"},
	{"el", "Greek", "Ελληνικά"},
	{"he", "Hebrew", "עברית"},
	{"th", "Thai", "ไทย"},
	{"vi", "Vietnamese", "Tiếng Việt"},
}

var supportedByCode = func() map[string]Info {
	m := make(map[string]Info, len(supported))
	for _, info := range supported {
		m[info.Code] = info
	}
	return m
}()

// Supported returns the supported languages in display order.
func Supported() []Info {
	ret := make([]Info, len(supported))
	copy(ret, supported)
	return ret
}

func IsSupported(code string) bool {
	_, ok := supportedByCode[code]
	return ok
}

func Name(code string) string {
	if info, ok := supportedByCode[code]; ok {
		return info.Name
	}
	return "Unknown"
}

func NativeName(code string) string {
	if info, ok := supportedByCode[code]; ok {
		return info.NativeName
	}
	return "Unknown"
}

// SystemPrompt builds the instruction asking the model to answer in the
// given language.
func SystemPrompt(code string) string {
	return fmt.Sprintf(
		"Please respond in %s (%s) language. Ensure your entire response is in this language, including explanations and comments.",
		Name(code), NativeName(code))
}

// Detector maps free text to an ISO 639-1 language code.
type Detector interface {
	Detect(text string) string
}

// WhatlangDetector detects languages with whatlanggo, falling back to
// DefaultLanguage for short, inconclusive or unsupported input.
type WhatlangDetector struct{}

var _ Detector = WhatlangDetector{}

func (WhatlangDetector) Detect(text string) string {
	if utf8.RuneCountInString(text) < 3 {
		return DefaultLanguage
	}

	info := whatlanggo.Detect(text)
	code := info.Lang.Iso6391()
	if code == "" || !IsSupported(code) {
		return DefaultLanguage
	}
	return code
}
