// Package cli provides the gophauth command-line client.
//
// Invoked with a subcommand (register, login, otp, whoami, ping) it runs that
// command once and exits. Invoked without one it starts a REPL that remembers
// the challenge and access tokens between commands, so a two-factor login is
// simply "login" followed by "otp".
package cli
