// cmd/vision-researcher/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/law-makers/vision-researcher/internal/cli"
	"github.com/rs/zerolog/log"
)

func main() {
	// Cancel the session on interrupt; the controller stops after the
	// current step and the summary is still printed.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	go func() {
		<-ctx.Done()
		if ctx.Err() == context.Canceled {
			log.Warn().Msg("Interrupt received, finishing current page...")
		}
	}()

	code := cli.Execute(ctx)
	stop()
	os.Exit(code)
}
