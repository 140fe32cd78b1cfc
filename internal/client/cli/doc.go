// Package cli provides the interactive Vimesta command-line client.
//
// It wires configuration, the local session database, the REST client,
// the upload transport and queue, and an interactive REPL. The prompt shows
// the signed-in user and whether the backend answered its last health
// check; an expired session drops the prompt back to the logged-out state.
//
// Commands:
//   - login / login-telegram / logout / whoami
//   - ls / rm / share / download / storage
//   - folders / mkdir / rmdir / cd
//   - upload / status / cancel / cancel-all / wait / watch / history
//
// The shell is started by running the root command without arguments (see
// NewRootCommand); the same commands are available as one-shot subcommands.
package cli
