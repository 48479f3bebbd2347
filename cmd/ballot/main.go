package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/yourusername/ballot-cli/pkg/flows"
)

// Exit codes
const (
	exitOK         = 0
	exitOther      = 1
	exitValidation = 2
	exitContract   = 3
	exitTimeout    = 4
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	stop()
	os.Exit(exitCode(err))
}

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	switch flows.Classify(err) {
	case flows.KindValidation:
		return exitValidation
	case flows.KindContract:
		return exitContract
	case flows.KindTimeout:
		return exitTimeout
	default:
		return exitOther
	}
}
