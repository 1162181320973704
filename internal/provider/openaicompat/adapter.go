// Package openaicompat adapts local OpenAI-compatible chat completion
// servers (LM Studio, vLLM, llama.cpp server) to the canonical provider
// contract.
package openaicompat

import (
	"context"
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"ckryptbit/internal/domain/models"
	"ckryptbit/internal/provider"
)

// Adapter is stateless; a client is built per call from the current
// endpoint configuration so config updates take effect immediately.
type Adapter struct {
	baseURL string
	model   string
	id      models.ProviderID
}

// New creates an adapter for an OpenAI-compatible endpoint. baseURL may be
// the /v1 root or the full /chat/completions path; both are accepted.
func New(baseURL, model string) *Adapter {
	return &Adapter{baseURL: baseURL, model: model, id: models.ProviderOpenAICompat}
}

// NewForSelfHosted builds the same adapter but reporting the self-hosted
// provider id, for the /v1 sub-protocol of the self-hosted family.
func NewForSelfHosted(baseURL, model string) *Adapter {
	return &Adapter{baseURL: baseURL, model: model, id: models.ProviderLocalLLM}
}

// ID returns the provider id.
func (a *Adapter) ID() models.ProviderID { return a.id }

func (a *Adapter) client() (*openai.Client, error) {
	if a.baseURL == "" || a.model == "" {
		return nil, provider.NewConfigError(a.id,
			"OpenAI-compatible endpoint requires a base URL and a model name")
	}
	base := strings.TrimRight(a.baseURL, "/")
	// The client appends /chat/completions itself; accept callers that
	// already supplied the full path.
	base = strings.TrimSuffix(base, "/chat/completions")

	cfg := openai.DefaultConfig("")
	cfg.BaseURL = base
	return openai.NewClientWithConfig(cfg), nil
}

// Invoke sends the conversation as chat completion messages.
func (a *Adapter) Invoke(ctx context.Context, req *provider.Request) (*provider.Result, error) {
	return a.complete(ctx, req, false)
}

// InvokeStructured additionally requests response_format json_object.
func (a *Adapter) InvokeStructured(ctx context.Context, req *provider.Request) (*provider.Result, error) {
	return a.complete(ctx, req, true)
}

func (a *Adapter) complete(ctx context.Context, req *provider.Request, jsonMode bool) (*provider.Result, error) {
	client, err := a.client()
	if err != nil {
		return nil, err
	}

	apiReq := openai.ChatCompletionRequest{
		Model:    a.model,
		Messages: convertMessages(req),
		Stream:   false,
	}
	if jsonMode {
		apiReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := client.CreateChatCompletion(ctx, apiReq)
	if err != nil {
		return nil, a.classify(err)
	}
	if len(resp.Choices) == 0 {
		return nil, provider.NewError(a.id, provider.KindUpstream,
			"completion response carried no choices", nil)
	}
	return &provider.Result{Text: resp.Choices[0].Message.Content}, nil
}

func (a *Adapter) classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return provider.ClassifyHTTP(a.id, apiErr.HTTPStatusCode, apiErr.Message)
	}
	return provider.ClassifyTransport(a.id, err)
}

func convertMessages(req *provider.Request) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.History)+2)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	for _, msg := range req.History {
		role := openai.ChatMessageRoleUser
		if msg.Role == provider.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: msg.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})
	return messages
}
