// Package cli provides the interactive SkillSwap command-line client.
//
// It wires configuration, the local token database, the backend client and
// the session and skills services behind a line-oriented REPL. On start it
// restores the previous session, then serves commands while a background
// watcher tracks whether the server is reachable.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
