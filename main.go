package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"betbot/cmd"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := cmd.Migrate(os.Args[2:]); err != nil {
			log.Fatalf("migrate: %v", err)
		}
		return
	}

	// SIGINT/SIGTERM cancel the root context; everything downstream shuts
	// down off that cancellation.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Run(ctx); err != nil {
		log.Fatalf("betbot: %v", err)
	}
}
