package models

// ProviderID identifies one of the supported AI backends.
type ProviderID string

const (
	// ProviderGemini is the hosted Google Gemini SDK backend.
	ProviderGemini ProviderID = "gemini"
	// ProviderOpenAICompat is a local OpenAI-compatible chat completion server
	// (LM Studio, vLLM, llama.cpp server and friends).
	ProviderOpenAICompat ProviderID = "openai_compat"
	// ProviderLocalLLM is a self-hosted Ollama-style server reached through
	// /api/chat with a /api/generate fallback.
	ProviderLocalLLM ProviderID = "local_llm"
	// ProviderHuggingFace is the community-hosted inference API.
	ProviderHuggingFace ProviderID = "huggingface"
)

// providerNames maps provider ids to the labels shown in chat turns.
var providerNames = map[ProviderID]string{
	ProviderGemini:       "Google Gemini",
	ProviderOpenAICompat: "OpenAI-Compatible Node",
	ProviderLocalLLM:     "Local LLM Node",
	ProviderHuggingFace:  "Hugging Face Inference",
}

// DisplayName returns the human-readable label for the provider.
func (id ProviderID) DisplayName() string {
	if name, ok := providerNames[id]; ok {
		return name
	}
	return "Unknown AI"
}

// Valid reports whether the id is one of the supported providers.
func (id ProviderID) Valid() bool {
	_, ok := providerNames[id]
	return ok
}

// AllProviders returns the supported provider ids in display order.
func AllProviders() []ProviderID {
	return []ProviderID{ProviderGemini, ProviderOpenAICompat, ProviderLocalLLM, ProviderHuggingFace}
}

// LocalLLMConfig holds the endpoint configuration for the self-hosted and
// OpenAI-compatible provider families.
type LocalLLMConfig struct {
	BaseURL   string `json:"base_url"`
	ModelName string `json:"model_name"`
}

// HuggingFaceConfig holds the community inference configuration.
type HuggingFaceConfig struct {
	ModelID string `json:"model_id"`
	APIKey  string `json:"api_key,omitempty"`
}
