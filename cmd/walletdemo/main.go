// Command walletdemo creates a backend wallet on the configured engine and
// lists every wallet it holds.
//
// ENGINE_URL and ENGINE_TOKEN are read from the environment or a .env file.
//
//	walletdemo                 # create "USER_ID", then list wallets
//	walletdemo --label alice   # create "alice", then list wallets
//	walletdemo create bob
//	walletdemo list
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
