// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data under ~/.lexmerge.
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage
//   - PromptStore: user-editable generation instructions
package file
