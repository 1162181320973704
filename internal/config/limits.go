package config

const (
	// MaxPromptLength is the maximum length for a chat message. Large
	// enough for pasted code fragments, small enough to keep provider
	// requests bounded.
	MaxPromptLength = 32_000

	// MaxSelectedCodeLength is the maximum length for a code selection
	// attached to a chat message.
	MaxSelectedCodeLength = 64_000

	// MaxProjectNameLength is the maximum length for blueprint project
	// names. Names feed into archive file names, so keep them short.
	MaxProjectNameLength = 255

	// MaxUsernameLength is the maximum length for login usernames.
	MaxUsernameLength = 64

	// MaxFeedbackCommentLength is the maximum length for report feedback
	// comments.
	MaxFeedbackCommentLength = 2000
)
