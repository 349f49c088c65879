package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/lance6716/sql-data-compare/cmd"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	var sig os.Signal
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		select {
		case <-ctx.Done():
			return
		case sig = <-sigCh:
			cancel()
		}
	}()

	err := cmd.Execute(ctx)
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, context.Canceled) && sig != nil:
		fmt.Printf("cancel sql-data-compare by user signal %s\n", sig.String())
	case errors.Is(err, cmd.ErrComparisonFailed):
		// already reported by the log
	default:
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
	}
	os.Exit(1)
}
