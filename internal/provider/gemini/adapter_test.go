package gemini

import (
	"errors"
	"testing"

	genai "google.golang.org/genai"

	"ckryptbit/internal/domain/models"
	"ckryptbit/internal/provider"
)

func TestHistoryContentsRoleMapping(t *testing.T) {
	contents := historyContents([]provider.Message{
		{Role: provider.RoleUser, Content: "first question"},
		{Role: provider.RoleAssistant, Content: "first answer"},
		{Role: provider.RoleUser, Content: "second question"},
	})

	wantRoles := []genai.Role{genai.RoleUser, genai.RoleModel, genai.RoleUser}
	if len(contents) != len(wantRoles) {
		t.Fatalf("got %d contents, want %d", len(contents), len(wantRoles))
	}
	for i, c := range contents {
		if genai.Role(c.Role) != wantRoles[i] {
			t.Errorf("content %d role = %q, want %q", i, c.Role, wantRoles[i])
		}
	}
	if contents[1].Parts[0].Text != "first answer" {
		t.Errorf("content 1 text = %q", contents[1].Parts[0].Text)
	}
}

func TestMessageParts(t *testing.T) {
	parts, err := messageParts(&provider.Request{
		Prompt: "describe this",
		Image:  &models.ImageData{MimeType: "image/png", Data: "aGVsbG8="},
	})
	if err != nil {
		t.Fatalf("messageParts: %v", err)
	}
	if len(parts) != 2 {
		t.Fatalf("got %d parts, want 2", len(parts))
	}
	if parts[0].Text != "describe this" {
		t.Errorf("text part = %q", parts[0].Text)
	}
	if parts[1].InlineData == nil || string(parts[1].InlineData.Data) != "hello" {
		t.Errorf("inline data part = %+v", parts[1].InlineData)
	}
}

func TestMessagePartsRejectsBadBase64(t *testing.T) {
	_, err := messageParts(&provider.Request{
		Prompt: "describe this",
		Image:  &models.ImageData{MimeType: "image/png", Data: "not base64!!!"},
	})
	if err == nil {
		t.Fatal("expected error for invalid base64")
	}
	var provErr *provider.Error
	if !errors.As(err, &provErr) || provErr.Kind != provider.KindConfiguration {
		t.Fatalf("error = %v, want configuration kind", err)
	}
}
