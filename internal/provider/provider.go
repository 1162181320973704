// Package provider normalizes the structurally different AI backends
// (hosted Gemini SDK, OpenAI-compatible servers, self-hosted Ollama-style
// servers, the Hugging Face inference API) into one uniform contract.
package provider

import (
	"context"

	"ckryptbit/internal/domain/models"
)

// Role of a history message sent to a backend.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is one entry of the conversation history in canonical form.
type Message struct {
	Role    Role
	Content string
}

// Request is the canonical invocation all adapters accept. Prompt already
// carries any task-mode framing; System is the structured-response contract
// the orchestrator wants enforced.
type Request struct {
	System  string
	Prompt  string
	History []Message
	Image   *models.ImageData
}

// Result is the canonical outcome: the raw text the model produced, plus
// web citations when the call ran in a grounded research mode.
type Result struct {
	Text    string
	Sources []models.Source
}

// Adapter translates canonical requests into one backend's wire format.
// Invoke asks for plain text; InvokeStructured additionally requests the
// backend's native JSON output mode where one exists. Both return the raw
// model text; decoding is the caller's concern.
type Adapter interface {
	ID() models.ProviderID
	Invoke(ctx context.Context, req *Request) (*Result, error)
	InvokeStructured(ctx context.Context, req *Request) (*Result, error)
}
