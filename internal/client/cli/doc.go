// Package cli provides the interactive guIA command-line client.
//
// It wires configuration, the local session database, the API client, the
// auth manager and the feature services into a REPL. Typical flow: restore
// the stored session, start the token refresh watcher, then execute user
// commands.
//
// Every command maps to a location of the route table and goes through its
// guard, so signed-out users are sent to the sign-in page and signed-in
// users away from it. Notifications raised by a command are printed after
// it runs.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, Go and runREPL for details.
package cli
