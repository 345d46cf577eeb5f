// Command parley is a terminal client for a streaming chat backend.
//
// Usage:
//
//	parley [flags]              interactive chat
//	parley send <text>          stream one reply to stdout
//	parley history              print the stored conversation
//	parley clear                delete the stored conversation
//	parley token <jwt>          store the bearer token
//	parley init                 write a default config file
//	parley fake-backend         serve a local backend for development
//
// Settings come from ~/.config/parley/config.toml, PARLEY_* environment
// variables and flags, in increasing priority.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "parley: %v\n", err)
		os.Exit(1)
	}
}
