package handler

import (
	"log/slog"
	"net/http"

	"ckryptbit/internal/config"
	"ckryptbit/internal/domain/models"
	"ckryptbit/internal/httputil"
	"ckryptbit/internal/provider"
	"ckryptbit/internal/provider/gemini"
	"ckryptbit/internal/provider/hfinference"
	"ckryptbit/internal/provider/openaicompat"
	"ckryptbit/internal/provider/selfhosted"
	chatsvc "ckryptbit/internal/service/chat"
)

// ChatHandler handles the conversation endpoints and runtime provider
// configuration.
type ChatHandler struct {
	chat      *chatsvc.Service
	providers *provider.Registry
	logger    *slog.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chat *chatsvc.Service, providers *provider.Registry, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{
		chat:      chat,
		providers: providers,
		logger:    logger,
	}
}

type turnsResponse struct {
	Turns     []models.Turn `json:"turns"`
	LastError string        `json:"last_error,omitempty"`
}

// GetTurns returns the conversation history.
func (h *ChatHandler) GetTurns(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, turnsResponse{
		Turns:     h.chat.History(),
		LastError: h.chat.LastError(),
	})
}

type sendTurnRequest struct {
	Text         string            `json:"text"`
	Image        *models.ImageData `json:"image,omitempty"`
	Mode         models.TaskMode   `json:"mode,omitempty"`
	SelectedCode string            `json:"selected_code,omitempty"`
}

// SendTurn runs one conversation turn. Provider failures surface in-band
// as an alert turn, so a 200 can still carry last_error.
func (h *ChatHandler) SendTurn(w http.ResponseWriter, r *http.Request) {
	var req sendTurnRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Text) > config.MaxPromptLength {
		httputil.RespondError(w, http.StatusBadRequest, "message too long")
		return
	}
	if len(req.SelectedCode) > config.MaxSelectedCodeLength {
		httputil.RespondError(w, http.StatusBadRequest, "code selection too long")
		return
	}

	turns, err := h.chat.SendTurn(r.Context(), chatsvc.SendTurnInput{
		Text:         req.Text,
		Image:        req.Image,
		Mode:         req.Mode,
		SelectedCode: req.SelectedCode,
	})
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, turnsResponse{
		Turns:     turns,
		LastError: h.chat.LastError(),
	})
}

// ResetTurns clears the conversation back to the welcome turn.
func (h *ChatHandler) ResetTurns(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, turnsResponse{Turns: h.chat.ResetHistory()})
}

type providerInfo struct {
	ID   models.ProviderID `json:"id"`
	Name string            `json:"name"`
}

type providerResponse struct {
	Active    models.ProviderID `json:"active"`
	Providers []providerInfo    `json:"providers"`
}

// GetProvider returns the active provider and the selectable set.
func (h *ChatHandler) GetProvider(w http.ResponseWriter, r *http.Request) {
	infos := make([]providerInfo, 0, len(models.AllProviders()))
	for _, id := range models.AllProviders() {
		infos = append(infos, providerInfo{ID: id, Name: id.DisplayName()})
	}
	httputil.RespondJSON(w, http.StatusOK, providerResponse{
		Active:    h.chat.ActiveProvider(),
		Providers: infos,
	})
}

// SetProvider switches the active provider. History is preserved; the new
// provider appends its welcome turn.
func (h *ChatHandler) SetProvider(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Provider models.ProviderID `json:"provider"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	turns, err := h.chat.SetProvider(req.Provider)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, turnsResponse{Turns: turns})
}

type providerConfigRequest struct {
	BaseURL string `json:"base_url,omitempty"`
	Model   string `json:"model,omitempty"`
	APIKey  string `json:"api_key,omitempty"`
}

// ConfigureProvider swaps the adapter for one provider id at runtime.
// Reconfiguring the active provider drops its cached session state (it
// belongs to the old endpoint); the conversation history survives.
func (h *ChatHandler) ConfigureProvider(w http.ResponseWriter, r *http.Request) {
	id := models.ProviderID(r.PathValue("provider"))
	if !id.Valid() {
		httputil.RespondError(w, http.StatusBadRequest, "unknown provider: "+string(id))
		return
	}

	var req providerConfigRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	switch id {
	case models.ProviderGemini:
		h.providers.Set(gemini.New(req.APIKey, req.Model))
	case models.ProviderOpenAICompat:
		h.providers.Set(openaicompat.New(req.BaseURL, req.Model))
	case models.ProviderLocalLLM:
		h.providers.Set(selfhosted.New(req.BaseURL, req.Model))
	case models.ProviderHuggingFace:
		h.providers.Set(hfinference.New(req.BaseURL, req.Model, req.APIKey))
	}
	h.logger.Info("provider reconfigured", "provider", id)

	if h.chat.ActiveProvider() == id {
		if _, err := h.chat.SetProvider(id); err != nil {
			handleError(w, err)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}
