package chat

import (
	"strings"
	"testing"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		wantType    string
		wantMessage string
		wantOps     int
		wantCoerced bool
	}{
		{
			name:        "plain text response",
			raw:         `{"type":"textResponse","message":"hello"}`,
			wantType:    TypeText,
			wantMessage: "hello",
		},
		{
			name:        "fenced json with language tag",
			raw:         "```json\n{\"type\":\"textResponse\",\"message\":\"fenced\"}\n```",
			wantType:    TypeText,
			wantMessage: "fenced",
		},
		{
			name:        "fenced json without language tag",
			raw:         "```\n{\"type\":\"textResponse\",\"message\":\"bare fence\"}\n```",
			wantType:    TypeText,
			wantMessage: "bare fence",
		},
		{
			name:     "file operation",
			raw:      `{"type":"fileOperation","message":"done","fileOps":[{"action":"create","fileName":"a.go","language":"go","content":"package a"}]}`,
			wantType: TypeFileOperation, wantMessage: "done", wantOps: 1,
		},
		{
			name:        "file operation missing fileOps falls back to raw",
			raw:         `{"type":"fileOperation","message":"done"}`,
			wantType:    TypeText,
			wantMessage: `{"type":"fileOperation","message":"done"}`,
			wantCoerced: true,
		},
		{
			name:        "file operation with non-array fileOps falls back to raw",
			raw:         `{"type":"fileOperation","fileOps":"nope"}`,
			wantType:    TypeText,
			wantMessage: `{"type":"fileOperation","fileOps":"nope"}`,
			wantCoerced: true,
		},
		{
			name:        "non-json prose",
			raw:         "Sure! Here is how you do it.",
			wantType:    TypeText,
			wantMessage: "Sure! Here is how you do it.",
			wantCoerced: true,
		},
		{
			name:        "missing type tag",
			raw:         `{"message":"no tag"}`,
			wantType:    TypeText,
			wantMessage: `{"message":"no tag"}`,
			wantCoerced: true,
		},
		{
			name:        "unknown tag kept",
			raw:         `{"type":"statusUpdate","message":"hmm"}`,
			wantType:    "statusUpdate",
			wantMessage: "hmm",
		},
		{
			name:        "empty input",
			raw:         "",
			wantType:    TypeText,
			wantMessage: "",
			wantCoerced: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decode(tt.raw)
			if got.Type != tt.wantType {
				t.Errorf("Type = %q, want %q", got.Type, tt.wantType)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("Message = %q, want %q", got.Message, tt.wantMessage)
			}
			if len(got.FileOps) != tt.wantOps {
				t.Errorf("len(FileOps) = %d, want %d", len(got.FileOps), tt.wantOps)
			}
			if coerced := got.Malformed != ""; coerced != tt.wantCoerced {
				t.Errorf("Malformed = %q, coerced = %v, want %v", got.Malformed, coerced, tt.wantCoerced)
			}
		})
	}
}

func TestDecodeFallbackKeepsFencedRaw(t *testing.T) {
	// A fence around non-JSON must fall back to the raw text including the
	// fence, not the stripped interior.
	raw := "```\nnot json at all\n```"
	got := Decode(raw)
	if got.Message != raw {
		t.Errorf("Message = %q, want the original raw text", got.Message)
	}
}

func TestDisplayText(t *testing.T) {
	tests := []struct {
		name string
		resp Response
		want string
	}{
		{"message wins", Response{Type: TypeText, Message: "hi"}, "hi"},
		{"empty file op", Response{Type: TypeFileOperation}, "File system operation executed."},
		{"empty text", Response{Type: TypeText}, "No verbal response from AI matrix."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.resp.DisplayText(); got != tt.want {
				t.Errorf("DisplayText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodeIsTotal(t *testing.T) {
	inputs := []string{
		"{", "```", "null", "[]", `"just a string"`, strings.Repeat("x", 1<<16),
	}
	for _, in := range inputs {
		got := Decode(in)
		if got.Type == "" {
			t.Errorf("Decode(%.20q) produced empty type", in)
		}
	}
}
