// Package cli implements the interactive TimeBoard command-line client. It
// opens a session on the gRPC API and offers a small REPL to list, add, edit
// and delete timeline events.
package cli
