package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCommand().ExecuteContext(ctx)
	stop()
	if err != nil {
		// An interrupted lookup or scan exits non-zero without an error line.
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintf(os.Stderr, "cinerate: %v\n", err)
		}
		os.Exit(1)
	}
}
