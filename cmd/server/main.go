// Package main implements the entry point for the bidwriter server,
// which generates bid proposal documents through an LLM behind an
// in-process task queue.
package main

import (
	"context"
	"log"
)

func main() {
	ctx := context.Background()

	app, err := newApplication(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
