// Package main provides the arcade maintenance command.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pixelfount/arcade/internal/platform/config"
	"github.com/pixelfount/arcade/internal/platform/otel"
	"github.com/pixelfount/arcade/internal/tools/arcadectl"
)

func main() {
	cfg, err := arcadectl.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("Error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := otel.Setup(ctx, "arcade")
	if err != nil {
		config.Exitf("Error: %v", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			fmt.Fprintf(os.Stderr, "otel shutdown: %v\n", err)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	if err := arcadectl.Run(ctx, cfg, os.Stdout, os.Stderr); err != nil {
		config.Exitf("Error: %v", err)
	}
}
