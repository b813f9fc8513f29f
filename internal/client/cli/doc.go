// Package cli provides the interactive ProfileKeeper command-line client.
//
// It wires configuration, the local store, the remote client, the biometric
// pipeline and the session coordinator, then runs a REPL. The connectivity
// watcher and the session loop run in the background so edits made offline
// sync on their own once the server comes back.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
