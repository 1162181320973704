package models

import "time"

// Sender identifies who authored a conversation turn.
type Sender string

const (
	SenderUser Sender = "user"
	SenderAI   Sender = "ai"
)

// ImageData is an inline image attachment on a user turn.
type ImageData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"` // base64 payload
}

// Source is a web citation attached to a research-mode answer.
type Source struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// Turn is a single conversation entry. Turns are immutable once terminal;
// the one pending placeholder is replaced in place when its result arrives.
type Turn struct {
	ID           string     `json:"id"`
	Sender       Sender     `json:"sender"`
	Content      string     `json:"content"`
	Image        *ImageData `json:"image,omitempty"`
	Sources      []Source   `json:"sources,omitempty"`
	Pending      bool       `json:"pending,omitempty"`
	ProviderName string     `json:"provider_name,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// TaskMode names an instruction template prefixed onto a chat turn.
type TaskMode string

// TaskModeDefault adds no framing; any other mode prepends its instruction.
const TaskModeDefault TaskMode = "default"

// TaskModeResearch switches the hosted-SDK provider into free-form
// web-grounded answering for that single call.
const TaskModeResearch TaskMode = "research_oracle"
