// Package cli provides the interactive agentdeck command-line client.
//
// It wires configuration, the local token store, the backend API client,
// the auth state provider and the dual-mode data store, then runs a REPL.
// Typical flow: the stored session is probed in the background while the
// prompt comes up; protected commands wait for that probe and redirect to
// login when a configured deployment has nobody signed in.
//
// Key features:
//   - register / login / logout / whoami
//   - projects: list, add, show, delete
//   - tasks: list, add, show, status change, chat
//   - preferences: show and update (cached locally without a remote store)
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
