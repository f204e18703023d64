// Command mutaprobe probes web targets with request mutants.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/waftester/mutaprobe/pkg/ui"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		exitWithError("%v", err)
	}
}

// exitWithError prints a formatted error message and exits with code 1.
func exitWithError(format string, args ...any) {
	ui.PrintError(fmt.Sprintf(format, args...))
	os.Exit(1)
}
