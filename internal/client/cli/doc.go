// Package cli provides the interactive todokeeper command-line client.
//
// The REPL keeps one authenticated API client for the whole run. Session
// cookies live only in that client's memory, so every run starts logged
// out. A background watcher pings the server and shows online/offline in
// the prompt.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See runREPL for the command set.
package cli
