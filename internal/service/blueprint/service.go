// Package blueprint owns the project blueprint workspace: synthesis from a
// technology selection, the file mutation engine, the derived tree view,
// and archive export.
package blueprint

import (
	"context"
	"io"
	"log/slog"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"ckryptbit/internal/domain"
	"ckryptbit/internal/domain/models"
	"ckryptbit/internal/provider"
)

// treeCacheSize bounds the derived-tree cache. Old revisions are only
// requested by stale readers, so a handful of entries suffices.
const treeCacheSize = 8

// jsonGenerator is the optional adapter capability for one-shot calls with
// a native JSON output mode. The hosted Gemini adapter provides it.
type jsonGenerator interface {
	GenerateJSON(ctx context.Context, prompt string) (string, error)
}

// Service holds at most one open workspace. The blueprint snapshot is
// guarded by mu; every mutation bumps the revision, which keys the
// derived-tree cache.
type Service struct {
	logger    *slog.Logger
	providers *provider.Registry

	mu          sync.Mutex
	current     *models.Blueprint
	projectName string
	revision    uint64
	trees       *lru.Cache[uint64, []*models.TreeNode]
}

// NewService creates the workspace service without an open blueprint.
func NewService(logger *slog.Logger, providers *provider.Registry) (*Service, error) {
	trees, err := lru.New[uint64, []*models.TreeNode](treeCacheSize)
	if err != nil {
		return nil, err
	}
	return &Service{logger: logger, providers: providers, trees: trees}, nil
}

// Synthesize asks the given provider for a fresh blueprint from the
// technology selection and opens it as the current workspace, replacing
// any open one and its unsaved edits.
func (s *Service) Synthesize(ctx context.Context, sel models.StackSelection, id models.ProviderID) (*models.Blueprint, error) {
	adapter, ok := s.providers.Get(id)
	if !ok {
		return nil, provider.NewConfigError(id, "no adapter configured for this provider")
	}

	prompt := stackOverviewPrompt(sel)
	var raw string
	if jg, isJSON := adapter.(jsonGenerator); isJSON {
		text, err := jg.GenerateJSON(ctx, prompt)
		if err != nil {
			return nil, err
		}
		raw = text
	} else {
		res, err := adapter.InvokeStructured(ctx, &provider.Request{Prompt: prompt})
		if err != nil {
			return nil, err
		}
		raw = res.Text
	}

	bp, err := decodeBlueprint(raw)
	if err != nil {
		s.logger.Error("synthesis reply rejected", "provider", id, "error", err)
		return nil, err
	}

	s.logger.Info("blueprint synthesized",
		"provider", id,
		"project", sel.ProjectName,
		"files", len(bp.SuggestedFiles),
	)
	s.open(bp, sel.ProjectName)
	return s.snapshot(), nil
}

// Open installs a blueprint as the current workspace, replacing any open
// one.
func (s *Service) Open(bp models.Blueprint, projectName string) {
	s.open(&bp, projectName)
}

func (s *Service) open(bp *models.Blueprint, projectName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = bp
	s.projectName = projectName
	s.revision++
}

// Close discards the workspace and any unsaved state.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
	s.projectName = ""
	s.revision++
}

// Current returns a snapshot of the open blueprint, or nil when no
// workspace is open.
func (s *Service) Current() *models.Blueprint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Service) snapshot() *models.Blueprint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Service) snapshotLocked() *models.Blueprint {
	if s.current == nil {
		return nil
	}
	out := *s.current
	out.SuggestedFiles = make([]models.BlueprintFile, len(s.current.SuggestedFiles))
	copy(out.SuggestedFiles, s.current.SuggestedFiles)
	out.NextSteps = append([]string(nil), s.current.NextSteps...)
	return &out
}

// ApplyOps runs a model-issued mutation batch against the open blueprint.
// It is a no-op when no workspace is open, so chat-driven file operations
// outside a workspace are safely dropped.
func (s *Service) ApplyOps(ops []models.FileOperation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		s.logger.Debug("file operations dropped, no open workspace", "count", len(ops))
		return
	}
	s.current.SuggestedFiles = Apply(s.current.SuggestedFiles, ops)
	s.revision++
}

// SetFileContent commits an edit buffer into the named file.
func (s *Service) SetFileContent(name, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return &domain.NotFoundError{Message: "no blueprint is open"}
	}
	s.current.SuggestedFiles = SetContent(s.current.SuggestedFiles, name, content)
	s.revision++
	return nil
}

// Tree returns the hierarchical view of the open blueprint's files. The
// tree is recomputed only when the files changed since the last call.
func (s *Service) Tree() []*models.TreeNode {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	if tree, ok := s.trees.Get(s.revision); ok {
		return tree
	}
	tree := DeriveTree(s.current.SuggestedFiles)
	s.trees.Add(s.revision, tree)
	return tree
}

// ExportArchive writes a zip of the open blueprint's files to w and
// returns the archive file name.
func (s *Service) ExportArchive(w io.Writer) (string, error) {
	s.mu.Lock()
	bp := s.snapshotLocked()
	name := s.projectName
	s.mu.Unlock()

	if bp == nil {
		return "", &domain.NotFoundError{Message: "no blueprint is open"}
	}
	if err := writeArchive(w, bp.SuggestedFiles); err != nil {
		return "", err
	}
	return ArchiveName(name), nil
}
