// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data under ~/.sampann.
//
// Adapters:
//   - ConfigStore: TOML configuration with environment fallback
//   - PromptStore: user-editable answer prompts
package file
