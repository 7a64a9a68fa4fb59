package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/aussiebroadwan/accounts/internal/accounts/app"
)

const usage = `usage: accounts [serve|shell]

  serve   run the HTTP API (default)
  shell   run the interactive terminal front end

Configuration is read from .env and the environment.
`

func main() {
	flag.Usage = func() { fmt.Fprint(flag.CommandLine.Output(), usage) }
	flag.Parse()

	cmd := "serve"
	if flag.NArg() > 0 {
		cmd = flag.Arg(0)
	}

	cfg, err := app.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	switch cmd {
	case "serve":
		serve(cfg)
	case "shell":
		runShell(cfg)
	default:
		flag.Usage()
		os.Exit(2)
	}
}

func serve(cfg app.Config) {
	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}

	if err := application.Run(); err != nil {
		log.Fatalf("application error: %v", err)
	}
}

func runShell(cfg app.Config) {
	// Logs go to stderr so they don't interleave with the prompts.
	cfg.LogOutput = os.Stderr
	cfg.LogFormat = "text"

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := application.RunShell(ctx, os.Stdin, os.Stdout); err != nil {
		log.Fatalf("shell error: %v", err)
	}
}
