package chat

import (
	"encoding/json"

	"ckryptbit/internal/domain/models"
	"ckryptbit/internal/jsonutil"
)

// Response type tags. Exactly two variants exist on the wire.
const (
	TypeText          = "textResponse"
	TypeFileOperation = "fileOperation"
)

// Response is the decoded form of a model reply. Type is always one of the
// two tags above; FileOps is populated only for file operations. Malformed
// notes why a reply was coerced to a text response, empty when it decoded
// cleanly.
type Response struct {
	Type      string                 `json:"type"`
	Message   string                 `json:"message"`
	FileOps   []models.FileOperation `json:"fileOps,omitempty"`
	Malformed string                 `json:"-"`
}

// DisplayText is what the conversation shows for this response.
func (r *Response) DisplayText() string {
	if r.Message != "" {
		return r.Message
	}
	if r.Type == TypeFileOperation {
		return "File system operation executed."
	}
	return "No verbal response from AI matrix."
}

// Decode turns raw model output into a Response. It is total: any input
// that does not parse as one of the two variants is wrapped as a text
// response carrying the original raw text, with the failure noted in
// Malformed.
func Decode(raw string) Response {
	cleaned := jsonutil.StripFence(raw)

	var parsed struct {
		Type    string          `json:"type"`
		Message string          `json:"message"`
		FileOps json.RawMessage `json:"fileOps"`
	}
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return fallback(raw, "not valid JSON: "+err.Error())
	}
	if parsed.Type == "" {
		return fallback(raw, "missing type tag")
	}

	switch parsed.Type {
	case TypeFileOperation:
		if len(parsed.FileOps) == 0 {
			return fallback(raw, "fileOperation without fileOps")
		}
		var ops []models.FileOperation
		if err := json.Unmarshal(parsed.FileOps, &ops); err != nil {
			return fallback(raw, "malformed fileOps: "+err.Error())
		}
		return Response{Type: TypeFileOperation, Message: parsed.Message, FileOps: ops}
	default:
		// Anything with a string tag that is not a file operation is
		// treated as textual; the tag is kept for observability.
		return Response{Type: parsed.Type, Message: parsed.Message}
	}
}

// fallback wraps the ORIGINAL raw text, not the fence-stripped form, so no
// model output is ever discarded.
func fallback(raw, note string) Response {
	return Response{Type: TypeText, Message: raw, Malformed: note}
}
