package prompts

// Renderer produces the prompt texts an operator pastes into an external
// summarization tool.
type Renderer interface {
	// Render fills the named template with data.
	Render(kind Kind, data Data) (string, error)
	// Save writes text to path, creating parent directories.
	Save(text, path string) error
	// Copy puts text on the system clipboard.
	Copy(text string) error
}
