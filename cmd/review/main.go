// Command review is a terminal review session against the review API. It
// keeps a local prefetch queue filled from POST /api/review/batch so the
// next question is ready as soon as the current one is answered.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/tianzhicdev/dogetionary-sub002/internal/config"
	"github.com/tianzhicdev/dogetionary-sub002/internal/events"
	"github.com/tianzhicdev/dogetionary-sub002/internal/platform/logger"
	"github.com/tianzhicdev/dogetionary-sub002/internal/prefetch"
	"github.com/tianzhicdev/dogetionary-sub002/internal/source"
)

func main() {
	configFile := flag.String("config", "", "path to a config file (default: ./config.yaml if present)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configFile); err != nil {
		stop()
		log.Printf("review: %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configFile string) error {
	cfg, err := config.LoadClient(config.LoadOptions{ConfigFile: configFile})
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.Client.Token == "" {
		return fmt.Errorf("client.token is required; generate one with cmd/tokengen")
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	src := source.NewHTTPSourceFromConfig(cfg.Client, source.WithSourceLogger(appLogger))

	emitter := events.NewInMemoryEventEmitter(appLogger)
	emitter.RegisterHandler(events.NewLoggingHandler(appLogger))

	queue := prefetch.NewQueue(src,
		prefetch.WithID("review-cli"),
		prefetch.WithEmitter(emitter),
		prefetch.WithLogger(appLogger),
	)

	session := newSession(queue, src, os.Stdin, os.Stdout)
	err = session.Run(ctx)
	queue.Wait()
	return err
}
