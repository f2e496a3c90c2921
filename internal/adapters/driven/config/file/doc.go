// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem under ~/.finvoice.
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage
//   - PromptStore: user-editable scanner prompts with embedded defaults
package file
