// Command fanout runs shell commands in parallel and prints their output
// in the order the commands were given.
//
//	fanout 'sleep 1; echo a' 'echo b'
//	fanout --each 'gzip -k {}' a.txt b.txt c.txt
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := newRootCommand(os.Stdout, os.Stderr).ExecuteContext(ctx)
	switch {
	case err == nil:
	case errors.Is(err, errCommandsFailed):
		stop()
		os.Exit(1)
	default:
		fmt.Fprintln(os.Stderr, "fanout:", err)
		stop()
		os.Exit(2)
	}
}
