package handler

import (
	"log/slog"
	"net/http"

	"ckryptbit/internal/httputil"
	"ckryptbit/internal/taskmode"
)

// TaskModeHandler serves the selectable task modes.
type TaskModeHandler struct {
	modes  *taskmode.Registry
	logger *slog.Logger
}

// NewTaskModeHandler creates a new task mode handler
func NewTaskModeHandler(modes *taskmode.Registry, logger *slog.Logger) *TaskModeHandler {
	return &TaskModeHandler{
		modes:  modes,
		logger: logger,
	}
}

// List returns the task modes in registry order. Instructions stay
// server-side; only id, label, and description go out.
func (h *TaskModeHandler) List(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, h.modes.List())
}
