package chat

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"ckryptbit/internal/domain"
	"ckryptbit/internal/domain/models"
	"ckryptbit/internal/provider"
	"ckryptbit/internal/taskmode"
)

type fakeAdapter struct {
	id          models.ProviderID
	reply       string
	err         error
	gotRequest  *provider.Request
	researched  bool
	invalidated int
	block       chan struct{}
}

func (f *fakeAdapter) ID() models.ProviderID { return f.id }

func (f *fakeAdapter) Invoke(ctx context.Context, req *provider.Request) (*provider.Result, error) {
	return f.InvokeStructured(ctx, req)
}

func (f *fakeAdapter) InvokeStructured(_ context.Context, req *provider.Request) (*provider.Result, error) {
	if f.block != nil {
		<-f.block
	}
	f.gotRequest = req
	if f.err != nil {
		return nil, f.err
	}
	return &provider.Result{Text: f.reply}, nil
}

func (f *fakeAdapter) Research(_ context.Context, req *provider.Request) (*provider.Result, error) {
	f.researched = true
	f.gotRequest = req
	if f.err != nil {
		return nil, f.err
	}
	return &provider.Result{Text: f.reply, Sources: []models.Source{{URI: "https://example.com", Title: "Example"}}}, nil
}

func (f *fakeAdapter) InvalidateSession() { f.invalidated++ }

type fakeSink struct {
	ops []models.FileOperation
}

func (f *fakeSink) ApplyOps(ops []models.FileOperation) { f.ops = append(f.ops, ops...) }

func newTestService(t *testing.T, adapters ...provider.Adapter) (*Service, *fakeSink) {
	t.Helper()
	modes, err := taskmode.NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	sink := &fakeSink{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(logger, modes, sink, provider.NewRegistry(adapters...), adapters[0].ID()), sink
}

func TestSendTurnTextResponse(t *testing.T) {
	fake := &fakeAdapter{id: models.ProviderGemini, reply: `{"type":"textResponse","message":"hi there"}`}
	svc, _ := newTestService(t, fake)

	turns, err := svc.SendTurn(context.Background(), SendTurnInput{Text: "hello", Mode: models.TaskModeDefault})
	if err != nil {
		t.Fatalf("SendTurn: %v", err)
	}
	// welcome + user + terminal AI
	if len(turns) != 3 {
		t.Fatalf("got %d turns, want 3", len(turns))
	}
	last := turns[2]
	if last.Pending {
		t.Error("terminal turn still pending")
	}
	if last.Content != "hi there" {
		t.Errorf("content = %q", last.Content)
	}
	if last.ProviderName != models.ProviderGemini.DisplayName() {
		t.Errorf("provider name = %q", last.ProviderName)
	}
	if fake.gotRequest.Prompt != "USER_QUERY: hello" {
		t.Errorf("prompt = %q", fake.gotRequest.Prompt)
	}
	if fake.gotRequest.System == "" {
		t.Error("system prompt missing")
	}
	// Only the welcome turn precedes this one.
	if len(fake.gotRequest.History) != 1 {
		t.Errorf("history length = %d, want 1", len(fake.gotRequest.History))
	}
	if svc.LastError() != "" {
		t.Errorf("LastError = %q, want empty", svc.LastError())
	}
}

func TestSendTurnEmptyInputIsNoOp(t *testing.T) {
	fake := &fakeAdapter{id: models.ProviderGemini, reply: "{}"}
	svc, _ := newTestService(t, fake)

	turns, err := svc.SendTurn(context.Background(), SendTurnInput{Text: "   ", Mode: models.TaskModeDefault})
	if err != nil {
		t.Fatalf("SendTurn: %v", err)
	}
	if len(turns) != 1 {
		t.Errorf("got %d turns, want just the welcome turn", len(turns))
	}
	if fake.gotRequest != nil {
		t.Error("adapter should not have been called")
	}
}

func TestSendTurnForwardsFileOps(t *testing.T) {
	fake := &fakeAdapter{
		id:    models.ProviderGemini,
		reply: `{"type":"fileOperation","message":"","fileOps":[{"action":"create","fileName":"a.go","language":"go","content":"package a"}]}`,
	}
	svc, sink := newTestService(t, fake)

	turns, err := svc.SendTurn(context.Background(), SendTurnInput{Text: "make a file", Mode: models.TaskModeDefault})
	if err != nil {
		t.Fatalf("SendTurn: %v", err)
	}
	if len(sink.ops) != 1 || sink.ops[0].FileName != "a.go" {
		t.Fatalf("sink ops = %+v", sink.ops)
	}
	if got := turns[len(turns)-1].Content; got != "File system operation executed." {
		t.Errorf("content = %q", got)
	}
}

func TestSendTurnProviderFailureIsInBand(t *testing.T) {
	fake := &fakeAdapter{id: models.ProviderGemini, err: errors.New("uplink down")}
	svc, _ := newTestService(t, fake)

	turns, err := svc.SendTurn(context.Background(), SendTurnInput{Text: "hello", Mode: models.TaskModeDefault})
	if err != nil {
		t.Fatalf("SendTurn returned out-of-band error: %v", err)
	}
	last := turns[len(turns)-1]
	if !strings.HasPrefix(last.Content, "SYSTEM ALERT: ") {
		t.Errorf("content = %q, want alert prefix", last.Content)
	}
	if svc.LastError() == "" {
		t.Error("LastError not recorded")
	}

	// The next successful turn clears the slot.
	fake.err = nil
	fake.reply = `{"type":"textResponse","message":"ok"}`
	if _, err := svc.SendTurn(context.Background(), SendTurnInput{Text: "again", Mode: models.TaskModeDefault}); err != nil {
		t.Fatalf("SendTurn: %v", err)
	}
	if svc.LastError() != "" {
		t.Errorf("LastError = %q, want cleared", svc.LastError())
	}
}

func TestSendTurnConflictWhilePending(t *testing.T) {
	fake := &fakeAdapter{id: models.ProviderGemini, reply: `{"type":"textResponse","message":"ok"}`, block: make(chan struct{})}
	svc, _ := newTestService(t, fake)

	done := make(chan struct{})
	go func() {
		defer close(done)
		svc.SendTurn(context.Background(), SendTurnInput{Text: "first", Mode: models.TaskModeDefault})
	}()

	// Wait until the first turn's placeholder is visible.
	for len(svc.History()) < 3 {
		time.Sleep(time.Millisecond)
	}

	_, err := svc.SendTurn(context.Background(), SendTurnInput{Text: "second", Mode: models.TaskModeDefault})
	if !errors.Is(err, domain.ErrConflict) {
		t.Errorf("err = %v, want conflict", err)
	}

	close(fake.block)
	<-done
}

func TestSendTurnResearchMode(t *testing.T) {
	fake := &fakeAdapter{id: models.ProviderGemini, reply: `not json, just prose`}
	svc, _ := newTestService(t, fake)

	turns, err := svc.SendTurn(context.Background(), SendTurnInput{Text: "latest news", Mode: models.TaskModeResearch})
	if err != nil {
		t.Fatalf("SendTurn: %v", err)
	}
	if !fake.researched {
		t.Fatal("research path not taken")
	}
	last := turns[len(turns)-1]
	if last.Content != "not json, just prose" {
		t.Errorf("content = %q, want raw text without decode", last.Content)
	}
	if len(last.Sources) != 1 {
		t.Errorf("sources = %+v", last.Sources)
	}
	if !strings.HasPrefix(fake.gotRequest.Prompt, "TASK_MODE: ") {
		t.Errorf("research prompt missing task prefix: %q", fake.gotRequest.Prompt)
	}
}

// plainAdapter has no research or session capability.
type plainAdapter struct {
	id         models.ProviderID
	reply      string
	gotRequest *provider.Request
}

func (p *plainAdapter) ID() models.ProviderID { return p.id }

func (p *plainAdapter) Invoke(ctx context.Context, req *provider.Request) (*provider.Result, error) {
	return p.InvokeStructured(ctx, req)
}

func (p *plainAdapter) InvokeStructured(_ context.Context, req *provider.Request) (*provider.Result, error) {
	p.gotRequest = req
	return &provider.Result{Text: p.reply}, nil
}

func TestSendTurnResearchModeWithoutCapability(t *testing.T) {
	plain := &plainAdapter{id: models.ProviderLocalLLM, reply: `{"type":"textResponse","message":"plain answer"}`}
	svc, _ := newTestService(t, plain)

	turns, err := svc.SendTurn(context.Background(), SendTurnInput{Text: "latest news", Mode: models.TaskModeResearch})
	if err != nil {
		t.Fatalf("SendTurn: %v", err)
	}
	last := turns[len(turns)-1]
	if strings.HasPrefix(last.Content, "SYSTEM ALERT: ") {
		t.Fatalf("research mode failed on plain adapter: %q", last.Content)
	}
	if last.Content != "plain answer" {
		t.Errorf("content = %q, want decoded reply", last.Content)
	}
	if !strings.HasPrefix(plain.gotRequest.Prompt, "TASK_MODE: ") {
		t.Errorf("prompt missing task prefix: %q", plain.gotRequest.Prompt)
	}
	if svc.LastError() != "" {
		t.Errorf("LastError = %q, want empty", svc.LastError())
	}
}

func TestResetHistoryInvalidatesSession(t *testing.T) {
	fake := &fakeAdapter{id: models.ProviderGemini, reply: `{"type":"textResponse","message":"ok"}`}
	svc, _ := newTestService(t, fake)

	if _, err := svc.SendTurn(context.Background(), SendTurnInput{Text: "hello", Mode: models.TaskModeDefault}); err != nil {
		t.Fatalf("SendTurn: %v", err)
	}
	turns := svc.ResetHistory()
	if len(turns) != 1 {
		t.Errorf("got %d turns after reset, want 1", len(turns))
	}
	if !strings.Contains(turns[0].Content, "Connection established") {
		t.Errorf("welcome content = %q", turns[0].Content)
	}
	if fake.invalidated != 1 {
		t.Errorf("invalidated = %d, want 1", fake.invalidated)
	}
}

func TestSetProviderPreservesHistory(t *testing.T) {
	gem := &fakeAdapter{id: models.ProviderGemini, reply: `{"type":"textResponse","message":"ok"}`}
	local := &fakeAdapter{id: models.ProviderLocalLLM, reply: `{"type":"textResponse","message":"ok"}`}
	svc, _ := newTestService(t, gem, local)

	if _, err := svc.SendTurn(context.Background(), SendTurnInput{Text: "hello", Mode: models.TaskModeDefault}); err != nil {
		t.Fatalf("SendTurn: %v", err)
	}
	turns, err := svc.SetProvider(models.ProviderLocalLLM)
	if err != nil {
		t.Fatalf("SetProvider: %v", err)
	}
	// welcome + user + AI reply survive; the new provider announces itself.
	if len(turns) != 4 {
		t.Fatalf("got %d turns, want 4", len(turns))
	}
	if turns[1].Content != "hello" || turns[2].Content != "ok" {
		t.Errorf("conversation not preserved: %q, %q", turns[1].Content, turns[2].Content)
	}
	if !strings.Contains(turns[3].Content, models.ProviderLocalLLM.DisplayName()) {
		t.Errorf("welcome turn = %q", turns[3].Content)
	}
	if svc.ActiveProvider() != models.ProviderLocalLLM {
		t.Errorf("active = %q", svc.ActiveProvider())
	}
	if gem.invalidated != 1 {
		t.Errorf("old provider session invalidated %d times, want 1", gem.invalidated)
	}

	// Switching again before any new turn swaps the trailing welcome
	// instead of stacking announcements.
	turns, err = svc.SetProvider(models.ProviderGemini)
	if err != nil {
		t.Fatalf("SetProvider: %v", err)
	}
	if len(turns) != 4 {
		t.Errorf("got %d turns after second switch, want 4", len(turns))
	}
	if !strings.Contains(turns[3].Content, models.ProviderGemini.DisplayName()) {
		t.Errorf("welcome turn = %q", turns[3].Content)
	}

	if _, err := svc.SetProvider("bogus"); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("err = %v, want validation error", err)
	}
}

func TestSetProviderMidFlightKeepsAttribution(t *testing.T) {
	gem := &fakeAdapter{id: models.ProviderGemini, reply: `{"type":"textResponse","message":"done"}`, block: make(chan struct{})}
	local := &fakeAdapter{id: models.ProviderLocalLLM, reply: `{"type":"textResponse","message":"ok"}`}
	svc, _ := newTestService(t, gem, local)

	done := make(chan struct{})
	go func() {
		defer close(done)
		svc.SendTurn(context.Background(), SendTurnInput{Text: "slow one", Mode: models.TaskModeDefault})
	}()

	for len(svc.History()) < 3 {
		time.Sleep(time.Millisecond)
	}

	if _, err := svc.SetProvider(models.ProviderLocalLLM); err != nil {
		t.Fatalf("SetProvider: %v", err)
	}

	close(gem.block)
	<-done

	turns := svc.History()
	if len(turns) != 4 {
		t.Fatalf("got %d turns, want 4", len(turns))
	}
	// The in-flight reply settles into its placeholder under the provider
	// that produced it, not the newly selected one.
	resolved := turns[2]
	if resolved.Pending {
		t.Error("in-flight turn never resolved")
	}
	if resolved.Content != "done" {
		t.Errorf("content = %q", resolved.Content)
	}
	if resolved.ProviderName != models.ProviderGemini.DisplayName() {
		t.Errorf("provider name = %q, want %q", resolved.ProviderName, models.ProviderGemini.DisplayName())
	}
	if !strings.Contains(turns[3].Content, models.ProviderLocalLLM.DisplayName()) {
		t.Errorf("welcome turn = %q", turns[3].Content)
	}
}
