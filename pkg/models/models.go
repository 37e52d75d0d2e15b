package models

// ModelID identifies one of the Mistral chat models the service can talk to.
type ModelID string

const (
	ModelMistral7B      ModelID = "mistral-7b"
	ModelMixtral8x7B    ModelID = "mixtral-8x7b"
	ModelMistralLarge   ModelID = "mistral-large"
	ModelMistralSmall   ModelID = "mistral-small"
	ModelMixtral8x22B   ModelID = "mixtral-8x22b"
	ModelCodestral      ModelID = "codestral"
	ModelMathstral7B    ModelID = "mathstral-7b"
	ModelMistralLarge2  ModelID = "mistral-large-2"
	ModelPixtral        ModelID = "pixtral"
	ModelMinistral3B    ModelID = "ministral-3b"
	ModelMinistral8B    ModelID = "ministral-8b"
	ModelCodestralMamba ModelID = "codestral-mamba-7b"
	ModelPixtralLarge   ModelID = "pixtral-large"
	ModelMistralSmall3  ModelID = "mistral-small-3"
	ModelMistralSaba    ModelID = "mistral-saba"
)

// DefaultModel is used for fresh sessions and when migrating state that
// references a model we no longer know about.
const DefaultModel = ModelMistralLarge

// Info describes a model for UI purposes.
type Info struct {
	ID          ModelID `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	TokenLimit  int     `json:"tokenLimit"`
}

var catalog = []Info{
	{ModelMistral7B, "Mistral 7B", "The original foundation model with strong general capabilities.", 8192},
	{ModelMixtral8x7B, "Mixtral 8x7B", "A mixture-of-experts model with enhanced reasoning capabilities.", 32768},
	{ModelMistralLarge, "Mistral Large", "High-performance model for advanced reasoning and generation.", 32768},
	{ModelMistralSmall, "Mistral Small", "Balanced model offering good performance with efficiency.", 16384},
	{ModelMixtral8x22B, "Mixtral 8x22B", "Large mixture-of-experts model with exceptional capabilities.", 65536},
	{ModelCodestral, "Codestral", "Specialized for code generation and understanding.", 16384},
	{ModelMathstral7B, "Mathstral 7B", "Optimized for mathematical reasoning and problem-solving.", 8192},
	{ModelMistralLarge2, "Mistral Large 2", "Next generation of the Large model with improved capabilities.", 32768},
	{ModelPixtral, "Pixtral", "Multimodal model capable of understanding images and text.", 16384},
	{ModelMinistral3B, "Ministral 3B", "Compact model optimized for efficiency and speed.", 4096},
	{ModelMinistral8B, "Ministral 8B", "Mid-sized model balancing performance and efficiency.", 8192},
	{ModelCodestralMamba, "Codestral Mamba 7B", "Code-specialized model using the Mamba architecture.", 16384},
	{ModelPixtralLarge, "Pixtral Large", "Advanced multimodal model with enhanced visual understanding.", 32768},
	{ModelMistralSmall3, "Mistral Small 3", "Third generation of the Small model with improved capabilities.", 16384},
	{ModelMistralSaba, "Mistral Saba", "Specialized model for specific domains and use cases.", 16384},
}

var infoByID = func() map[ModelID]Info {
	m := make(map[ModelID]Info, len(catalog))
	for _, i := range catalog {
		m[i.ID] = i
	}
	return m
}()

// List returns all known models in catalog order.
func List() []Info {
	ret := make([]Info, len(catalog))
	copy(ret, catalog)
	return ret
}

// Lookup returns the catalog entry for id.
func Lookup(id ModelID) (Info, bool) {
	i, ok := infoByID[id]
	return i, ok
}

// IsValid reports whether id names a known model.
func IsValid(id ModelID) bool {
	_, ok := infoByID[id]
	return ok
}

// Migrate maps ids loaded from persisted state onto the current catalog,
// falling back to DefaultModel for anything unknown.
func Migrate(id ModelID) ModelID {
	if IsValid(id) {
		return id
	}
	return DefaultModel
}
