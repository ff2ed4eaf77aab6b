// Package cli provides the interactive CodeForge command-line client.
//
// It wires configuration, local storage, the session manager, the API
// services and the editor workspace behind a REPL. Typical flow: restore the
// persisted session, pick a problem, edit or load a draft, then run, submit
// or ask for a review.
//
// Key features:
//   - Register / Login / Logout with tokens persisted between runs
//   - Problem list and statements, admin problem creation
//   - Per-user, per-problem, per-language drafts with starter code
//   - Run with custom input, submit for a verdict, AI review
//   - Submissions, dashboard, leaderboard and upcoming contests
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
