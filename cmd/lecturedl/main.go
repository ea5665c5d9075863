package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"lecturedl/internal/download"
	"lecturedl/internal/services"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	cmd := newRootCommand()
	err := cmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
			if hint := errorHint(err); hint != "" {
				fmt.Fprintf(os.Stderr, "hint: %s\n", hint)
			}
		}
		os.Exit(1)
	}
}

func errorHint(err error) string {
	var hinter interface{ Hint() string }
	if errors.As(err, &hinter) {
		if hint := hinter.Hint(); hint != "" {
			return hint
		}
	}
	if errors.Is(err, download.ErrPartialFailure) {
		return "rerun with --skip-downloaded to fetch only the missing recordings"
	}
	return services.Hint(err)
}
