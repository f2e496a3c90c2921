package driven

// PromptStore provides access to scanner prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt has no override, implementations return the built-in default.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names.
const (
	// PromptScanItems instructs the scanner to extract line items from a
	// receipt or invoice photo. The template has no format placeholders.
	PromptScanItems = "scan_items"
)
