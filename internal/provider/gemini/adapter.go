// Package gemini adapts the hosted Google Gemini SDK to the canonical
// provider contract. It is the only stateful adapter: one conversational
// session is cached per adapter and must be invalidated on history reset
// or credential rotation.
package gemini

import (
	"context"
	"encoding/base64"
	"sync"

	genai "google.golang.org/genai"

	"ckryptbit/internal/domain/models"
	"ckryptbit/internal/provider"
)

// Adapter wraps the official genai client.
type Adapter struct {
	apiKey string
	model  string

	mu      sync.Mutex
	client  *genai.Client
	session *genai.Chat
}

// New creates a Gemini adapter. The client itself is created lazily so a
// missing key surfaces as a configuration error on first use, not at boot.
func New(apiKey, model string) *Adapter {
	return &Adapter{apiKey: apiKey, model: model}
}

// ID returns the provider id.
func (a *Adapter) ID() models.ProviderID { return models.ProviderGemini }

func (a *Adapter) ensureClient(ctx context.Context) (*genai.Client, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.client != nil {
		return a.client, nil
	}
	if a.apiKey == "" {
		return nil, provider.NewConfigError(models.ProviderGemini,
			"Gemini API key is not configured; set API_KEY")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  a.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, provider.ClassifyTransport(models.ProviderGemini, err)
	}
	a.client = client
	return client, nil
}

// ensureSession lazily creates the single cached conversational session
// with the structured-response system instruction.
func (a *Adapter) ensureSession(ctx context.Context, system string) (*genai.Chat, error) {
	client, err := a.ensureClient(ctx)
	if err != nil {
		return nil, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session != nil {
		return a.session, nil
	}
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
	}
	session, err := client.Chats.Create(ctx, a.model, cfg, nil)
	if err != nil {
		return nil, provider.ClassifyTransport(models.ProviderGemini, err)
	}
	a.session = session
	return session, nil
}

// InvalidateSession drops the cached conversational session. The next turn
// starts a fresh one with the default system instruction.
func (a *Adapter) InvalidateSession() {
	a.mu.Lock()
	a.session = nil
	a.mu.Unlock()
}

// Invoke sends one chat turn through the cached session.
func (a *Adapter) Invoke(ctx context.Context, req *provider.Request) (*provider.Result, error) {
	session, err := a.ensureSession(ctx, req.System)
	if err != nil {
		return nil, err
	}

	parts, err := messageParts(req)
	if err != nil {
		return nil, err
	}

	resp, err := session.SendMessage(ctx, parts...)
	if err != nil {
		classified := provider.ClassifyTransport(models.ProviderGemini, err)
		if provider.IsAuth(classified) {
			// A rejected key poisons the session; start clean next time.
			a.InvalidateSession()
		}
		return nil, classified
	}
	return &provider.Result{Text: responseText(resp)}, nil
}

// InvokeStructured is identical to Invoke for Gemini: the session's system
// instruction already demands the JSON envelope, and the native JSON output
// mode cannot be combined with the conversational session.
func (a *Adapter) InvokeStructured(ctx context.Context, req *provider.Request) (*provider.Result, error) {
	return a.Invoke(ctx, req)
}

// Research runs one web-grounded call outside the cached session: the
// research system instruction and the Google Search tool apply to this
// call only, and no JSON envelope is requested. Citation sources are
// filtered to grounding chunks carrying a resolvable URI.
func (a *Adapter) Research(ctx context.Context, req *provider.Request) (*provider.Result, error) {
	client, err := a.ensureClient(ctx)
	if err != nil {
		return nil, err
	}

	contents := historyContents(req.History)
	parts, err := messageParts(req)
	if err != nil {
		return nil, err
	}
	userParts := make([]*genai.Part, len(parts))
	for i := range parts {
		p := parts[i]
		userParts[i] = &p
	}
	contents = append(contents, &genai.Content{Role: genai.RoleUser, Parts: userParts})

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(researchSystemPrompt, genai.RoleUser),
		Tools:             []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
	}
	resp, err := client.Models.GenerateContent(ctx, a.model, contents, cfg)
	if err != nil {
		return nil, provider.ClassifyTransport(models.ProviderGemini, err)
	}

	return &provider.Result{
		Text:    responseText(resp),
		Sources: groundingSources(resp),
	}, nil
}

// GenerateJSON runs a one-shot generation requesting native JSON output.
// Used for blueprint synthesis.
func (a *Adapter) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	client, err := a.ensureClient(ctx)
	if err != nil {
		return "", err
	}
	resp, err := client.Models.GenerateContent(ctx, a.model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{ResponseMIMEType: "application/json"},
	)
	if err != nil {
		return "", provider.ClassifyTransport(models.ProviderGemini, err)
	}
	return responseText(resp), nil
}

// GenerateText runs a one-shot plain-text generation. Used for digital
// asset content.
func (a *Adapter) GenerateText(ctx context.Context, prompt string) (string, error) {
	client, err := a.ensureClient(ctx)
	if err != nil {
		return "", err
	}
	resp, err := client.Models.GenerateContent(ctx, a.model, genai.Text(prompt), nil)
	if err != nil {
		return "", provider.ClassifyTransport(models.ProviderGemini, err)
	}
	return responseText(resp), nil
}

func messageParts(req *provider.Request) ([]genai.Part, error) {
	parts := []genai.Part{{Text: req.Prompt}}
	if req.Image != nil {
		data, err := base64.StdEncoding.DecodeString(req.Image.Data)
		if err != nil {
			return nil, provider.NewConfigError(models.ProviderGemini,
				"attached image is not valid base64: "+err.Error())
		}
		parts = append(parts, genai.Part{
			InlineData: &genai.Blob{MIMEType: req.Image.MimeType, Data: data},
		})
	}
	return parts, nil
}

func historyContents(history []provider.Message) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history))
	for _, msg := range history {
		var role genai.Role = genai.RoleUser
		if msg.Role == provider.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(msg.Content, role))
	}
	return contents
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var text string
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			text += part.Text
		}
	}
	return text
}

func groundingSources(resp *genai.GenerateContentResponse) []models.Source {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].GroundingMetadata == nil {
		return nil
	}
	var sources []models.Source
	for _, chunk := range resp.Candidates[0].GroundingMetadata.GroundingChunks {
		if chunk == nil || chunk.Web == nil || chunk.Web.URI == "" {
			continue
		}
		title := chunk.Web.Title
		if title == "" {
			title = chunk.Web.URI
		}
		sources = append(sources, models.Source{URI: chunk.Web.URI, Title: title})
	}
	return sources
}
