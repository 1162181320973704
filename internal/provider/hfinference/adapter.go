// Package hfinference adapts the Hugging Face hosted inference API for
// community models. The API is text-in/text-out with no message structure,
// so conversations are flattened into a single prompt.
package hfinference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ckryptbit/internal/domain/models"
	"ckryptbit/internal/provider"
)

const defaultBaseURL = "https://api-inference.huggingface.co"

// Adapter calls a community model through the hosted inference endpoint.
type Adapter struct {
	baseURL string
	modelID string
	apiKey  string
	client  *http.Client
}

// New creates an adapter for the given community model. An empty baseURL
// selects the public endpoint.
func New(baseURL, modelID, apiKey string) *Adapter {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Adapter{baseURL: baseURL, modelID: modelID, apiKey: apiKey, client: &http.Client{}}
}

// ID returns the provider id.
func (a *Adapter) ID() models.ProviderID { return models.ProviderHuggingFace }

type inferenceRequest struct {
	Inputs     string              `json:"inputs"`
	Parameters inferenceParameters `json:"parameters"`
	Options    inferenceOptions    `json:"options"`
}

type inferenceParameters struct {
	MaxNewTokens   int     `json:"max_new_tokens"`
	Temperature    float64 `json:"temperature"`
	ReturnFullText bool    `json:"return_full_text"`
}

type inferenceOptions struct {
	WaitForModel bool `json:"wait_for_model"`
}

type inferenceError struct {
	Error         string  `json:"error"`
	EstimatedTime float64 `json:"estimated_time"`
}

// Invoke flattens the conversation into a prompt and returns the generated
// continuation.
func (a *Adapter) Invoke(ctx context.Context, req *provider.Request) (*provider.Result, error) {
	if a.modelID == "" {
		return nil, provider.NewConfigError(models.ProviderHuggingFace,
			"community inference requires a model id")
	}

	payload, err := json.Marshal(inferenceRequest{
		Inputs: flattenPrompt(req),
		Parameters: inferenceParameters{
			MaxNewTokens:   1024,
			Temperature:    0.7,
			ReturnFullText: false,
		},
		Options: inferenceOptions{WaitForModel: true},
	})
	if err != nil {
		return nil, provider.NewError(models.ProviderHuggingFace, provider.KindUpstream,
			"encode request: "+err.Error(), err)
	}

	url := strings.TrimRight(a.baseURL, "/") + "/models/" + a.modelID
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, provider.NewError(models.ProviderHuggingFace, provider.KindNetwork, err.Error(), err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	// Anonymous calls are allowed; the public endpoint just rate-limits
	// them harder.
	if a.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+a.apiKey)
	}

	httpResp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, provider.ClassifyTransport(models.ProviderHuggingFace, err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, provider.NewError(models.ProviderHuggingFace, provider.KindNetwork, err.Error(), err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, a.classifyFailure(httpResp.StatusCode, raw)
	}

	// Success payloads are an array of generations; some error payloads
	// still come back 200 with an error field.
	var generations []struct {
		GeneratedText string `json:"generated_text"`
	}
	if err := json.Unmarshal(raw, &generations); err != nil {
		var apiErr inferenceError
		if jsonErr := json.Unmarshal(raw, &apiErr); jsonErr == nil && apiErr.Error != "" {
			if apiErr.EstimatedTime > 0 {
				return nil, a.loadingError(apiErr)
			}
			return nil, provider.NewError(models.ProviderHuggingFace, provider.KindUpstream, apiErr.Error, nil)
		}
		return nil, provider.NewError(models.ProviderHuggingFace, provider.KindUpstream,
			fmt.Sprintf("unexpected response shape: %v", err), err)
	}
	if len(generations) == 0 || generations[0].GeneratedText == "" {
		return nil, provider.NewError(models.ProviderHuggingFace, provider.KindUpstream,
			"model returned no generated text", nil)
	}
	return &provider.Result{Text: strings.TrimSpace(generations[0].GeneratedText)}, nil
}

// InvokeStructured is identical to Invoke; community models have no server
// side JSON mode, so structure is requested through the prompt alone.
func (a *Adapter) InvokeStructured(ctx context.Context, req *provider.Request) (*provider.Result, error) {
	return a.Invoke(ctx, req)
}

// classifyFailure handles the model-loading payload before generic HTTP
// classification. A cold model answers 503 with an estimated warm-up time.
func (a *Adapter) classifyFailure(status int, raw []byte) *provider.Error {
	var apiErr inferenceError
	if err := json.Unmarshal(raw, &apiErr); err == nil && apiErr.Error != "" {
		if status == http.StatusServiceUnavailable && apiErr.EstimatedTime > 0 {
			return a.loadingError(apiErr)
		}
		return provider.ClassifyHTTP(models.ProviderHuggingFace, status, apiErr.Error)
	}
	return provider.ClassifyHTTP(models.ProviderHuggingFace, status, string(raw))
}

func (a *Adapter) loadingError(apiErr inferenceError) *provider.Error {
	wait := time.Duration(apiErr.EstimatedTime * float64(time.Second))
	return provider.NewModelLoadingError(models.ProviderHuggingFace,
		fmt.Sprintf("model %s is loading, try again in about %.0fs", a.modelID, apiErr.EstimatedTime),
		wait)
}

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
