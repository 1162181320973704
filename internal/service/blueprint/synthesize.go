package blueprint

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"ckryptbit/internal/domain/models"
	"ckryptbit/internal/jsonutil"
)

// InvalidStructureError reports a synthesis reply that decoded but does
// not carry the required blueprint shape. It is distinct from transport
// failures and never degrades to an empty blueprint.
type InvalidStructureError struct {
	Reason string
}

func (e *InvalidStructureError) Error() string {
	return "invalid blueprint structure: " + e.Reason
}

// StatusCode implements domain.HTTPError. The model produced unusable
// output, which is an upstream fault from the caller's point of view.
func (e *InvalidStructureError) StatusCode() int { return http.StatusBadGateway }

// stackOverviewPrompt builds the one-shot synthesis prompt from the
// user's technology selections. Unset selections render as "Not
// specified" so the model knows they were deliberately left open.
func stackOverviewPrompt(sel models.StackSelection) string {
	projectName := sel.ProjectName
	if projectName == "" {
		projectName = "Unnamed Project"
	}

	var b strings.Builder
	b.WriteString(`You are an expert software architect and helpful AI assistant.
A user is planning a new project and has selected the following technologies:

`)
	fmt.Fprintf(&b, "Project Name: %s\n", projectName)
	b.WriteString(formatTechnology("Frontend Framework", sel.Frontend))
	b.WriteString(formatTechnology("UI Library", sel.UILibrary))
	b.WriteString(formatTechnology("Backend Platform", sel.Backend))
	b.WriteString(formatTechnology("Database", sel.Database))
	b.WriteString(formatTechnology("Deployment Platform", sel.Deployment))
	if sel.AIProviderName != "" {
		fmt.Fprintf(&b, "(The user is considering %s for AI/ML tasks.)\n", sel.AIProviderName)
	}

	b.WriteString(`
Please provide a comprehensive project blueprint. Your response MUST be a JSON object with the following structure:
{
  "overview": "A multi-paragraph summary of the chosen stack, its suitability, key synergies, considerations, initial setup best practices, tooling, learning curve, and scalability prospects. Format this overview using Markdown for readability (e.g., ## Heading, * item).",
  "suggestedFiles": [
    { "name": "package.json", "language": "json", "content": "..." },
    { "name": "src/index.js_or_main.py_or_equivalent", "language": "javascript_or_python_etc", "content": "..." },
    { "name": "README.md", "language": "markdown", "content": "..." }
  ],
  "nextSteps": [
    "Example: Run 'npm install' to get dependencies.",
    "Set up your database connection string in a '.env' file.",
    "Initialize a git repository with 'git init' and make an initial commit."
  ]
}

Ensure the 'overview' is detailed and well-formatted Markdown.
Ensure 'suggestedFiles' includes a few key files with appropriate 'name', 'language', and example 'content'. JSON content within the 'content' field must be properly escaped.
For 'nextSteps', provide actionable advice. If a step involves a common CLI command (like 'npm install', 'git init', 'docker build -t myapp .', 'python -m venv .venv'), please include the command directly in the string, preferably enclosed in backticks for easy identification.
Respond ONLY with the JSON object. Do not include any other text or explanations outside the JSON structure.`)
	return b.String()
}

func formatTechnology(label, value string) string {
	if value == "" {
		value = "Not specified"
	}
	return label + ": " + value + "\n"
}

// decodeBlueprint parses a synthesis reply. A reply without a non-empty
// overview or without an array-typed suggestedFiles is a hard structural
// failure.
func decodeBlueprint(raw string) (*models.Blueprint, error) {
	cleaned := jsonutil.StripFence(raw)

	var parsed struct {
		Overview       string          `json:"overview"`
		SuggestedFiles json.RawMessage `json:"suggestedFiles"`
		NextSteps      []string        `json:"nextSteps"`
	}
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return nil, &InvalidStructureError{Reason: "not valid JSON: " + err.Error()}
	}
	if parsed.Overview == "" {
		return nil, &InvalidStructureError{Reason: "missing overview"}
	}
	if len(parsed.SuggestedFiles) == 0 {
		return nil, &InvalidStructureError{Reason: "missing suggestedFiles"}
	}
	if !strings.HasPrefix(strings.TrimSpace(string(parsed.SuggestedFiles)), "[") {
		return nil, &InvalidStructureError{Reason: "suggestedFiles is not an array"}
	}

	var files []models.BlueprintFile
	if err := json.Unmarshal(parsed.SuggestedFiles, &files); err != nil {
		return nil, &InvalidStructureError{Reason: "suggestedFiles is not a file array: " + err.Error()}
	}
	for i := range files {
		if files[i].Language == "" {
			files[i].Language = defaultLanguage
		}
	}

	return &models.Blueprint{
		Overview:       parsed.Overview,
		SuggestedFiles: files,
		NextSteps:      parsed.NextSteps,
	}, nil
}
