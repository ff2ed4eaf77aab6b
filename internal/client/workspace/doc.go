// Package workspace keeps the editor-side state of the CLI on local
// storage: per-problem code drafts written with a debounce, starter code
// per language and the split-pane layout preference.
package workspace
