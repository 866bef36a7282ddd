// Package cli provides the interactive gophauth command-line client.
//
// The REPL signs in against the REST API, keeps the token pair in memory and
// refreshes the access token when the server reports it expired. Secrets
// (passwords, nickname) are encrypted client-side with a one-shot public key
// fetched from the server before every call that carries them.
//
// Commands: login, info, nickname, passwd, refresh, logout, withdraw, help,
// exit.
package cli
