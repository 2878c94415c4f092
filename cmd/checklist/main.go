package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"

	"checklistapi/internal/cli"
	"checklistapi/internal/config"
	"checklistapi/internal/logging"
)

func main() {
	cfg := config.LoadClient()
	// command output goes to stdout; logs stay on stderr
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "warn"
	}
	logger := logging.New(os.Stderr, config.Location(cfg.Timezone), level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx, &cli.App{Config: cfg, Log: logger})
	stop()
	_ = logger.Sync()
	os.Exit(code)
}
