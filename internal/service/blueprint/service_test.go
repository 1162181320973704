package blueprint

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"ckryptbit/internal/domain"
	"ckryptbit/internal/domain/models"
	"ckryptbit/internal/provider"
)

type fakeAdapter struct {
	id    models.ProviderID
	reply string
	err   error
}

func (f *fakeAdapter) ID() models.ProviderID { return f.id }

func (f *fakeAdapter) Invoke(_ context.Context, _ *provider.Request) (*provider.Result, error) {
	return f.InvokeStructured(nil, nil)
}

func (f *fakeAdapter) InvokeStructured(_ context.Context, _ *provider.Request) (*provider.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &provider.Result{Text: f.reply}, nil
}

const validReply = `{"overview":"## Plan","suggestedFiles":[{"name":"src/main.go","language":"go","content":"package main"}],"nextSteps":["build it"]}`

func newTestService(t *testing.T, adapters ...provider.Adapter) *Service {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc, err := NewService(logger, provider.NewRegistry(adapters...))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestSynthesizeOpensWorkspace(t *testing.T) {
	fake := &fakeAdapter{id: models.ProviderLocalLLM, reply: validReply}
	svc := newTestService(t, fake)

	bp, err := svc.Synthesize(context.Background(), models.StackSelection{ProjectName: "Shop"}, models.ProviderLocalLLM)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if bp.Overview != "## Plan" || len(bp.SuggestedFiles) != 1 {
		t.Fatalf("blueprint = %+v", bp)
	}
	if svc.Current() == nil {
		t.Error("workspace not open after synthesis")
	}
}

func TestSynthesizeInvalidStructure(t *testing.T) {
	fake := &fakeAdapter{id: models.ProviderLocalLLM, reply: `{"overview":""}`}
	svc := newTestService(t, fake)

	_, err := svc.Synthesize(context.Background(), models.StackSelection{}, models.ProviderLocalLLM)
	var structErr *InvalidStructureError
	if !errors.As(err, &structErr) {
		t.Fatalf("err = %v, want *InvalidStructureError", err)
	}
	if svc.Current() != nil {
		t.Error("failed synthesis must not open a workspace")
	}
}

func TestSynthesizeUnknownProvider(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Synthesize(context.Background(), models.StackSelection{}, models.ProviderGemini)
	var provErr *provider.Error
	if !errors.As(err, &provErr) || provErr.Kind != provider.KindConfiguration {
		t.Errorf("err = %v, want configuration error", err)
	}
}

func TestApplyOpsWithoutWorkspaceIsNoOp(t *testing.T) {
	svc := newTestService(t)
	svc.ApplyOps([]models.FileOperation{
		{Action: models.FileActionCreate, FileName: "a.txt", Content: strptr("x")},
	})
	if svc.Current() != nil {
		t.Error("ops without workspace must be dropped")
	}
}

func TestApplyOpsMutatesWorkspace(t *testing.T) {
	svc := newTestService(t)
	svc.Open(models.Blueprint{
		Overview:       "o",
		SuggestedFiles: []models.BlueprintFile{{Name: "a.txt", Language: "plaintext", Content: "1"}},
	}, "Shop")

	svc.ApplyOps([]models.FileOperation{
		{Action: models.FileActionCreate, FileName: "b.txt", Content: strptr("2")},
	})
	bp := svc.Current()
	if len(bp.SuggestedFiles) != 2 {
		t.Fatalf("files = %+v", bp.SuggestedFiles)
	}

	// Snapshots are copies; mutating one must not leak back.
	bp.SuggestedFiles[0].Content = "mutated"
	if svc.Current().SuggestedFiles[0].Content != "1" {
		t.Error("Current returned a live view")
	}
}

func TestTreeCacheInvalidation(t *testing.T) {
	svc := newTestService(t)
	svc.Open(models.Blueprint{
		SuggestedFiles: []models.BlueprintFile{{Name: "src/a.go"}},
	}, "")

	first := svc.Tree()
	again := svc.Tree()
	if len(first) != 1 || len(again) != 1 {
		t.Fatalf("tree roots = %d / %d", len(first), len(again))
	}
	if first[0] != again[0] {
		t.Error("unchanged revision should serve the cached tree")
	}

	svc.ApplyOps([]models.FileOperation{
		{Action: models.FileActionCreate, FileName: "src/b.go", Content: strptr("")},
	})
	after := svc.Tree()
	if len(after[0].Children) != 2 {
		t.Errorf("tree not recomputed after mutation: %+v", after[0].Children)
	}
}

func TestSetFileContent(t *testing.T) {
	svc := newTestService(t)
	if err := svc.SetFileContent("a.txt", "x"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("err = %v, want not found without workspace", err)
	}

	svc.Open(models.Blueprint{
		SuggestedFiles: []models.BlueprintFile{{Name: "a.txt", Language: "plaintext", Content: "old"}},
	}, "")
	if err := svc.SetFileContent("a.txt", "new"); err != nil {
		t.Fatalf("SetFileContent: %v", err)
	}
	if got := svc.Current().SuggestedFiles[0].Content; got != "new" {
		t.Errorf("content = %q", got)
	}
}

func TestCloseDiscardsWorkspace(t *testing.T) {
	svc := newTestService(t)
	svc.Open(models.Blueprint{Overview: "o"}, "Shop")
	svc.Close()
	if svc.Current() != nil {
		t.Error("workspace still open after Close")
	}
	if svc.Tree() != nil {
		t.Error("tree should be empty after Close")
	}
}
