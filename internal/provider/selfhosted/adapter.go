// Package selfhosted adapts self-hosted model servers speaking the Ollama
// wire protocol. The configured base URL decides among three sub-protocols:
// an OpenAI-compatible endpoint (/v1 suffix), the chat protocol (default),
// and the generate-only protocol (fallback when chat is unavailable).
package selfhosted

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"ckryptbit/internal/domain/models"
	"ckryptbit/internal/provider"
	"ckryptbit/internal/provider/openaicompat"
)

// Adapter is stateless apart from its shared HTTP client.
type Adapter struct {
	baseURL string
	model   string
	client  *http.Client
}

// New creates a self-hosted adapter for the given base URL and model name.
func New(baseURL, model string) *Adapter {
	return &Adapter{baseURL: baseURL, model: model, client: &http.Client{}}
}

// ID returns the provider id.
func (a *Adapter) ID() models.ProviderID { return models.ProviderLocalLLM }

// Invoke sends the conversation without requesting JSON output.
func (a *Adapter) Invoke(ctx context.Context, req *provider.Request) (*provider.Result, error) {
	return a.dispatch(ctx, req, false)
}

// InvokeStructured requests the server's native JSON format.
func (a *Adapter) InvokeStructured(ctx context.Context, req *provider.Request) (*provider.Result, error) {
	return a.dispatch(ctx, req, true)
}

func (a *Adapter) dispatch(ctx context.Context, req *provider.Request, jsonMode bool) (*provider.Result, error) {
	if a.baseURL == "" || a.model == "" {
		return nil, provider.NewConfigError(models.ProviderLocalLLM,
			"self-hosted endpoint requires a base URL and a model name")
	}
	base := strings.TrimRight(a.baseURL, "/")

	// An explicit /v1 base speaks the OpenAI-compatible protocol.
	if strings.HasSuffix(base, "/v1") || strings.Contains(base, "/v1/") {
		delegate := openaicompat.NewForSelfHosted(base, a.model)
		if jsonMode {
			return delegate.InvokeStructured(ctx, req)
		}
		return delegate.Invoke(ctx, req)
	}

	text, err := a.chat(ctx, base, req, jsonMode)
	if err != nil {
		// Older servers only expose /api/generate; retry once before
		// surfacing the failure.
		if shouldFallBack(err) {
			return a.generateResult(ctx, base, req, jsonMode)
		}
		return nil, err
	}
	return &provider.Result{Text: text}, nil
}

// shouldFallBack reports whether a chat failure suggests the server does not
// implement /api/chat at all: missing route or a server-side error.
func shouldFallBack(err error) bool {
	var provErr *provider.Error
	if !errors.As(err, &provErr) {
		return false
	}
	return provErr.HTTPStatus == http.StatusNotFound || provErr.HTTPStatus >= 500
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Format   string        `json:"format,omitempty"`
	Stream   bool          `json:"stream"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
	Done    bool        `json:"done"`
}

func (a *Adapter) chat(ctx context.Context, base string, req *provider.Request, jsonMode bool) (string, error) {
	body := chatRequest{
		Model:    a.model,
		Messages: convertMessages(req),
		Stream:   false,
	}
	if jsonMode {
		body.Format = "json"
	}

	var resp chatResponse
	if err := a.post(ctx, base+"/api/chat", body, &resp); err != nil {
		return "", err
	}
	if resp.Message.Content == "" {
		return "", provider.NewError(models.ProviderLocalLLM, provider.KindUpstream,
			"chat response carried no message content", nil)
	}
	return resp.Message.Content, nil
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	System string `json:"system,omitempty"`
	Format string `json:"format,omitempty"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

func (a *Adapter) generateResult(ctx context.Context, base string, req *provider.Request, jsonMode bool) (*provider.Result, error) {
	body := generateRequest{
		Model:  a.model,
		Prompt: flattenPrompt(req),
		System: req.System,
		Stream: false,
	}
	if jsonMode {
		body.Format = "json"
	}

	var resp generateResponse
	if err := a.post(ctx, base+"/api/generate", body, &resp); err != nil {
		return nil, err
	}
	if resp.Response == "" {
		return nil, provider.NewError(models.ProviderLocalLLM, provider.KindUpstream,
			"generate response carried no text", nil)
	}
	return &provider.Result{Text: resp.Response}, nil
}

func (a *Adapter) post(ctx context.Context, url string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return provider.NewError(models.ProviderLocalLLM, provider.KindUpstream,
			"encode request: "+err.Error(), err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return provider.NewError(models.ProviderLocalLLM, provider.KindNetwork, err.Error(), err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := a.client.Do(httpReq)
	if err != nil {
		return provider.ClassifyTransport(models.ProviderLocalLLM, err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return provider.NewError(models.ProviderLocalLLM, provider.KindNetwork, err.Error(), err)
	}
	if httpResp.StatusCode != http.StatusOK {
		return provider.ClassifyHTTP(models.ProviderLocalLLM, httpResp.StatusCode, string(raw))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return provider.NewError(models.ProviderLocalLLM, provider.KindUpstream,
			fmt.Sprintf("unexpected response shape from %s: %v", url, err), err)
	}
	return nil
}

func convertMessages(req *provider.Request) []chatMessage {
	messages := make([]chatMessage, 0, len(req.History)+2)
	if req.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.System})
	}
	for _, msg := range req.History {
		role := "user"
		if msg.Role == provider.RoleAssistant {
			role = "assistant"
		}
		messages = append(messages, chatMessage{Role: role, Content: msg.Content})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Prompt})
	return messages
}

// flattenPrompt renders the conversation as a single transcript for the
// generate-only protocol, which has no message structure.
func flattenPrompt(req *provider.Request) string {
	var b strings.Builder
	if req.System != "" {
		b.WriteString(req.System)
		b.WriteString("\n\n")
	}
	for _, msg := range req.History {
		if msg.Role == provider.RoleAssistant {
			b.WriteString("Assistant: ")
		} else {
			b.WriteString("User: ")
		}
		b.WriteString(msg.Content)
		b.WriteString("\n")
	}
	b.WriteString("User: ")
	b.WriteString(req.Prompt)
	b.WriteString("\nAssistant:")
	return b.String()
}
