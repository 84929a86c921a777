// Command veda asks VedaAI questions from the terminal.
//
// Usage:
//
//	veda                  interactive chat
//	veda ask QUESTION     stream one answer to stdout
//	veda login            sign in (prompts unless --email/--password)
//	veda register         create an account
//	veda logout           end the session
//	veda whoami           print the signed-in user
//
// Settings come from $HOME/.veda/config.yaml, VEDA_* environment
// variables and flags, in increasing precedence.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "veda: %v\n", err)
		os.Exit(1)
	}
}
