package chat

import (
	"strings"

	"ckryptbit/internal/domain/models"
	"ckryptbit/internal/taskmode"
)

// systemCommandMarker marks input synthesized by the workspace itself (for
// example "add this file for me"). Such input carries its own full framing
// and must not receive a TASK_MODE prefix.
const systemCommandMarker = "SYSTEM_COMMAND:"

// chatSystemPrompt is the default system instruction. It binds the model to
// the two-variant JSON envelope every non-research reply must use.
const chatSystemPrompt = `You are a versatile and helpful AI assistant.
You can receive text and, optionally, images. If an image is provided, consider its content in your response.
The user's message might be prefixed with "TASK_MODE: [Specific Task Instruction]" and/or "SELECTED_CODE:\n---\n[code snippet]\n---\nUSER_QUERY: [actual query]".
If these prefixes are present, focus on the specific task (e.g., explaining code, generating docs) using the provided code snippet and user query.
If the user asks you to create, update, or delete files for their project (based on text, image, or task mode input), your response MUST be a JSON object with the following structure:
{
  "type": "fileOperation",
  "message": "Okay, I've [created/updated/deleted] the file(s) as requested based on the task.",
  "fileOps": [
    {"action": "create", "fileName": "src/utils/newUtil.js", "language": "javascript", "content": "// New utility function content..."},
    {"action": "update", "fileName": "README.md", "content": "# Project Title\nUpdated description..."},
    {"action": "delete", "fileName": "oldFile.txt"}
  ]
}
The 'fileName' should be a relative path from the project root (e.g., 'src/components/Button.tsx').
Ensure 'content' for 'create' or 'update' is a string. For JSON file content, ensure the string is properly escaped.
For all other requests (general conversation, questions, explanations not directly resulting in file changes, image descriptions, or when a task mode results in a textual answer), your response MUST be a JSON object with the following structure:
{
  "type": "textResponse",
  "message": "Your textual answer here. You can use Markdown for formatting."
}
Respond ONLY with one of these JSON objects. Do not include any other text outside the JSON structure.`

// BuildPrompt assembles the outbound prompt for one turn. A non-default
// task mode or an attached code selection adds a TASK_MODE prefix, except
// for system-command input which takes precedence and keeps only its own
// framing. The user's text always closes the prompt as USER_QUERY.
func BuildPrompt(userText string, mode taskmode.Mode, selectedCode string) string {
	var b strings.Builder

	isSystemCommand := strings.HasPrefix(userText, systemCommandMarker)
	if !isSystemCommand && (mode.ID != models.TaskModeDefault || selectedCode != "") {
		b.WriteString("TASK_MODE: ")
		b.WriteString(mode.Instruction)
		b.WriteString("\n")
	}
	if selectedCode != "" {
		b.WriteString("SELECTED_CODE:\n---\n")
		b.WriteString(selectedCode)
		b.WriteString("\n---\n")
	}
	b.WriteString("USER_QUERY: ")
	b.WriteString(userText)
	return b.String()
}
