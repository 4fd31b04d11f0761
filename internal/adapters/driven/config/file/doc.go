// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem.
//
// Adapters:
//   - SettingsStore: TOML-based engine configuration
//   - PersonaStore: TOML-based character profile with live reload
package file
