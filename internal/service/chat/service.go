// Package chat owns the conversation: turn history, provider dispatch,
// prompt framing, and decoding of the structured reply envelope.
package chat

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"ckryptbit/internal/domain"
	"ckryptbit/internal/domain/models"
	"ckryptbit/internal/provider"
	"ckryptbit/internal/taskmode"
)

// pendingContent is shown while a provider call is in flight.
const pendingContent = "Processing Request Matrix..."

// FileOpSink receives decoded file-operation batches. The blueprint service
// implements it; applying is a no-op when no workspace is open.
type FileOpSink interface {
	ApplyOps(ops []models.FileOperation)
}

// researcher is the optional adapter capability behind the research task
// mode. Only the hosted Gemini adapter provides it.
type researcher interface {
	Research(ctx context.Context, req *provider.Request) (*provider.Result, error)
}

// sessionInvalidator is the optional capability of adapters that cache a
// conversational session server-side.
type sessionInvalidator interface {
	InvalidateSession()
}

// Service is the conversation orchestrator. One instance holds one
// conversation; all state is guarded by mu. At most one turn may be in
// flight at a time.
type Service struct {
	logger     *slog.Logger
	modes      *taskmode.Registry
	blueprints FileOpSink
	providers  *provider.Registry

	mu      sync.Mutex
	active  models.ProviderID
	turns   []models.Turn
	pending bool
	lastErr string
}

// NewService wires the orchestrator. The history starts with the active
// provider's welcome turn.
func NewService(logger *slog.Logger, modes *taskmode.Registry, blueprints FileOpSink, providers *provider.Registry, active models.ProviderID) *Service {
	return &Service{
		logger:     logger,
		modes:      modes,
		blueprints: blueprints,
		providers:  providers,
		active:     active,
		turns:      []models.Turn{welcomeTurn(active)},
	}
}

const welcomePrefix = "Connection established with: "

func welcomeTurn(id models.ProviderID) models.Turn {
	return models.Turn{
		ID:           uuid.NewString(),
		Sender:       models.SenderAI,
		Content:      welcomePrefix + id.DisplayName() + ". System Online. Awaiting command...",
		ProviderName: id.DisplayName(),
		CreatedAt:    time.Now().UTC(),
	}
}

func isWelcome(t models.Turn) bool {
	return t.Sender == models.SenderAI && !t.Pending && strings.HasPrefix(t.Content, welcomePrefix)
}

// SendTurnInput is one user submission.
type SendTurnInput struct {
	Text         string
	Image        *models.ImageData
	Mode         models.TaskMode
	SelectedCode string
}

// SendTurn runs one full conversation turn: append the user turn and a
// pending placeholder, dispatch to the active provider, then replace the
// placeholder with the terminal AI turn. Provider failures are reported
// in-band as an alert turn and through LastError, not as a returned error.
// A second call while one turn is pending returns a conflict.
func (s *Service) SendTurn(ctx context.Context, in SendTurnInput) ([]models.Turn, error) {
	if strings.TrimSpace(in.Text) == "" && in.Image == nil {
		return s.History(), nil
	}

	mode, ok := s.modes.Get(in.Mode)
	if !ok {
		return nil, &domain.ValidationError{Message: "unknown task mode: " + string(in.Mode)}
	}

	s.mu.Lock()
	if s.pending {
		s.mu.Unlock()
		return nil, &domain.ConflictError{Message: "a turn is already being processed"}
	}
	s.lastErr = ""
	s.pending = true

	providerID := s.active
	adapter, _ := s.providers.Get(providerID)
	displayName := providerID.DisplayName()

	userTurn := models.Turn{
		ID:        uuid.NewString(),
		Sender:    models.SenderUser,
		Content:   in.Text,
		Image:     in.Image,
		CreatedAt: time.Now().UTC(),
	}
	placeholder := models.Turn{
		ID:           uuid.NewString(),
		Sender:       models.SenderAI,
		Content:      pendingContent,
		Pending:      true,
		ProviderName: displayName,
		CreatedAt:    time.Now().UTC(),
	}

	// History for the backend: every settled turn, captured before the
	// placeholder is visible. The new user text travels as the prompt.
	history := make([]provider.Message, 0, len(s.turns))
	for _, t := range s.turns {
		if t.Pending {
			continue
		}
		role := provider.RoleUser
		if t.Sender == models.SenderAI {
			role = provider.RoleAssistant
		}
		history = append(history, provider.Message{Role: role, Content: t.Content})
	}

	s.turns = append(s.turns, userTurn, placeholder)
	s.mu.Unlock()

	req := &provider.Request{
		System:  chatSystemPrompt,
		Prompt:  BuildPrompt(in.Text, mode, in.SelectedCode),
		History: history,
		Image:   in.Image,
	}

	terminal := models.Turn{
		ID:           uuid.NewString(),
		Sender:       models.SenderAI,
		ProviderName: displayName,
		CreatedAt:    time.Now().UTC(),
	}
	var callErr error

	// Research is a hosted-SDK capability; on any other adapter the mode
	// degrades to a normal decoded turn carrying the TASK_MODE prefix.
	researchAdapter, canResearch := adapter.(researcher)

	switch {
	case adapter == nil:
		callErr = provider.NewConfigError(providerID, "No valid AI uplink detected. Select provider.")
	case in.Mode == models.TaskModeResearch && canResearch:
		terminal, callErr = s.research(ctx, researchAdapter, req, terminal)
	default:
		var res *provider.Result
		res, callErr = adapter.InvokeStructured(ctx, req)
		if callErr == nil {
			resp := Decode(res.Text)
			if resp.Malformed != "" {
				s.logger.Warn("coerced malformed provider reply",
					"provider", providerID, "reason", resp.Malformed)
			}
			terminal.Content = resp.DisplayText()
			if resp.Type == TypeFileOperation && len(resp.FileOps) > 0 {
				s.blueprints.ApplyOps(resp.FileOps)
			}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = false
	if callErr != nil {
		s.lastErr = callErr.Error()
		s.logger.Error("provider call failed", "provider", providerID, "error", callErr)
		terminal.Content = "SYSTEM ALERT: " + callErr.Error()
	}
	s.replacePending(placeholder.ID, terminal)
	return s.historyLocked(), nil
}

// research runs the web-grounded free-form mode. The raw answer is used
// directly, no envelope decode, with citation sources attached.
func (s *Service) research(ctx context.Context, r researcher, req *provider.Request, terminal models.Turn) (models.Turn, error) {
	res, err := r.Research(ctx, req)
	if err != nil {
		return terminal, err
	}
	terminal.Content = res.Text
	terminal.Sources = res.Sources
	return terminal, nil
}

// replacePending swaps the placeholder for the terminal turn in place.
func (s *Service) replacePending(placeholderID string, terminal models.Turn) {
	for i := range s.turns {
		if s.turns[i].ID == placeholderID {
			s.turns[i] = terminal
			return
		}
	}
	// Reset raced the reply; the conversation was already replaced.
	s.logger.Debug("pending turn vanished before completion", "id", placeholderID)
}

// ResetHistory replaces the conversation with a fresh welcome turn, clears
// the error slot, and invalidates any cached provider session.
func (s *Service) ResetHistory() []models.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = []models.Turn{welcomeTurn(s.active)}
	s.pending = false
	s.lastErr = ""
	s.invalidateActiveLocked()
	return s.historyLocked()
}

// invalidateActiveLocked drops any cached server-side session of the
// active provider. Callers hold mu.
func (s *Service) invalidateActiveLocked() {
	if a, ok := s.providers.Get(s.active); ok {
		if inv, ok := a.(sessionInvalidator); ok {
			inv.InvalidateSession()
		}
	}
}

// History returns a snapshot of the conversation.
func (s *Service) History() []models.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.historyLocked()
}

func (s *Service) historyLocked() []models.Turn {
	out := make([]models.Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// LastError returns the most recent provider failure, empty when the last
// turn succeeded. It is cleared at the start of every SendTurn.
func (s *Service) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// ActiveProvider returns the provider currently receiving turns.
func (s *Service) ActiveProvider() models.ProviderID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// SetProvider switches the active provider. The conversation history
// survives the switch; only provider-held session state is dropped. The
// new provider announces itself with a welcome turn, swapped in place when
// the previous turn was already a welcome. A turn still in flight keeps
// its placeholder and resolves under the old provider's name.
func (s *Service) SetProvider(id models.ProviderID) ([]models.Turn, error) {
	if !id.Valid() {
		return nil, &domain.ValidationError{Message: "unknown provider id: " + string(id)}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidateActiveLocked()
	s.active = id
	s.lastErr = ""

	welcome := welcomeTurn(id)
	if n := len(s.turns); n > 0 && isWelcome(s.turns[n-1]) {
		s.turns[n-1] = welcome
	} else {
		s.turns = append(s.turns, welcome)
	}
	return s.historyLocked(), nil
}
