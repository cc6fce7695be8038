package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"fieldsync/internal/client"
	"fieldsync/internal/config"
	"fieldsync/internal/domain"
)

const usage = `usage: fieldsync <command> [flags]

commands:
  login -u USER -p PASS     sign in and save the session
  logout                    end the session
  whoami                    show the saved session and token claims
  incidents list|create|update|delete
  users list|create|delete  (SUPER_USER only)
  boundary [-user ID]       show a patrol boundary
  analytics                 show incident aggregates
  nav PATH                  show where navigating to PATH ends up
  metrics COMMAND ...       run COMMAND, then print gateway counters
                            (requires FIELDSYNC_METRICS=true)
`

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("env: %v", err)
	}
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if os.Getenv("FIELDSYNC_DEBUG") == "" {
		log.SetOutput(io.Discard)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	var reg *prometheus.Registry
	if cfg.Metrics {
		reg = prometheus.NewRegistry()
	}
	c, closer, err := client.FromConfig(ctx, cfg, registerer(reg))
	if err != nil {
		fmt.Fprintf(os.Stderr, "fieldsync: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = closer.Close() }()

	if _, err := c.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fieldsync: %v\n", err)
		os.Exit(1)
	}

	a := &cli{c: c, reg: reg, out: os.Stdout}
	if err := a.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, describe(err))
		os.Exit(1)
	}
}

func registerer(reg *prometheus.Registry) prometheus.Registerer {
	if reg == nil {
		return nil
	}
	return reg
}

// describe turns err into a single user-facing line.
func describe(err error) string {
	var usageErr usageError
	if errors.As(err, &usageErr) {
		return string(usageErr) + "\n\n" + strings.TrimRight(usage, "\n")
	}
	if domain.KindOf(err) == domain.KindUnknown {
		return "fieldsync: " + err.Error()
	}
	return domain.Description(err)
}
