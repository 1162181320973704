package models

// FileAction is the kind of mutation a model asked for.
type FileAction string

const (
	FileActionCreate FileAction = "create"
	FileActionUpdate FileAction = "update"
	FileActionDelete FileAction = "delete"
)

// FileOperation is a single model-issued mutation against the blueprint
// file set, keyed by relative slash-separated path.
//
// Content is a pointer so that "update without content change" is
// distinguishable from "update to empty content".
type FileOperation struct {
	Action   FileAction `json:"action"`
	FileName string     `json:"fileName"`
	Language string     `json:"language,omitempty"`
	Content  *string    `json:"content,omitempty"`
}

// BlueprintFile is one generated source file. Name is unique within a
// blueprint.
type BlueprintFile struct {
	Name     string `json:"name"`
	Language string `json:"language"`
	Content  string `json:"content"`
}

// Blueprint is the overview + file set + next-steps bundle produced by a
// synthesis request and mutated by chat-driven file operations.
type Blueprint struct {
	Overview       string          `json:"overview"`
	SuggestedFiles []BlueprintFile `json:"suggestedFiles"`
	NextSteps      []string        `json:"nextSteps"`
}

// TreeNodeType distinguishes folder nodes from file leaves.
type TreeNodeType string

const (
	TreeNodeFolder TreeNodeType = "folder"
	TreeNodeFile   TreeNodeType = "file"
)

// TreeNode is a node of the hierarchical view derived from the flat file
// list. It is recomputed from the file list and never mutated directly.
type TreeNode struct {
	Name     string         `json:"name"`
	Path     string         `json:"path"`
	Type     TreeNodeType   `json:"type"`
	Children []*TreeNode    `json:"children,omitempty"`
	File     *BlueprintFile `json:"file,omitempty"`
}

// StackSelection is the technology-selection configuration a synthesis
// request is built from. Every field is optional; blanks render as
// "Not specified" in the prompt.
type StackSelection struct {
	ProjectName    string `json:"project_name"`
	Frontend       string `json:"frontend"`
	UILibrary      string `json:"ui_library"`
	Backend        string `json:"backend"`
	Database       string `json:"database"`
	Deployment     string `json:"deployment"`
	AIProviderName string `json:"ai_provider_name"`
}
