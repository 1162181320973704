package handler

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"ckryptbit/internal/config"
	"ckryptbit/internal/domain/models"
	"ckryptbit/internal/httputil"
	blueprintsvc "ckryptbit/internal/service/blueprint"
)

// BlueprintHandler handles the generator workspace endpoints.
type BlueprintHandler struct {
	blueprints *blueprintsvc.Service
	logger     *slog.Logger
}

// NewBlueprintHandler creates a new blueprint handler
func NewBlueprintHandler(blueprints *blueprintsvc.Service, logger *slog.Logger) *BlueprintHandler {
	return &BlueprintHandler{
		blueprints: blueprints,
		logger:     logger,
	}
}

type synthesizeRequest struct {
	models.StackSelection
	Provider models.ProviderID `json:"provider,omitempty"`
}

// Synthesize generates a blueprint from a stack selection and opens it as
// the current workspace.
func (h *BlueprintHandler) Synthesize(w http.ResponseWriter, r *http.Request) {
	var req synthesizeRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.ProjectName) > config.MaxProjectNameLength {
		httputil.RespondError(w, http.StatusBadRequest, "project name too long")
		return
	}
	if req.Provider == "" {
		req.Provider = models.ProviderGemini
	}

	bp, err := h.blueprints.Synthesize(r.Context(), req.StackSelection, req.Provider)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, bp)
}

// Get returns the current workspace blueprint.
func (h *BlueprintHandler) Get(w http.ResponseWriter, r *http.Request) {
	bp := h.blueprints.Current()
	if bp == nil {
		httputil.RespondError(w, http.StatusNotFound, "no blueprint workspace open")
		return
	}
	httputil.RespondJSON(w, http.StatusOK, bp)
}

type fileOpsRequest struct {
	FileOps []models.FileOperation `json:"fileOps"`
}

// ApplyFileOps applies a batch of file mutations to the workspace.
func (h *BlueprintHandler) ApplyFileOps(w http.ResponseWriter, r *http.Request) {
	var req fileOpsRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.blueprints.ApplyOps(req.FileOps)

	bp := h.blueprints.Current()
	if bp == nil {
		httputil.RespondError(w, http.StatusNotFound, "no blueprint workspace open")
		return
	}
	httputil.RespondJSON(w, http.StatusOK, bp)
}

// SetFileContent replaces one file's content, creating the file if the
// path is new.
func (h *BlueprintHandler) SetFileContent(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if name == "" {
		httputil.RespondError(w, http.StatusBadRequest, "file name is required")
		return
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.blueprints.SetFileContent(name, req.Content); err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, h.blueprints.Current())
}

// GetTree returns the hierarchical view of the workspace files.
func (h *BlueprintHandler) GetTree(w http.ResponseWriter, r *http.Request) {
	if h.blueprints.Current() == nil {
		httputil.RespondError(w, http.StatusNotFound, "no blueprint workspace open")
		return
	}
	httputil.RespondJSON(w, http.StatusOK, h.blueprints.Tree())
}

// Export streams the workspace as a zip archive.
func (h *BlueprintHandler) Export(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	name, err := h.blueprints.ExportArchive(&buf)
	if err != nil {
		handleError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	io.Copy(w, &buf)
}

// Close discards the current workspace.
func (h *BlueprintHandler) Close(w http.ResponseWriter, r *http.Request) {
	h.blueprints.Close()
	w.WriteHeader(http.StatusNoContent)
}
