// Command tokengen prints a signed access token for a user, for use as
// client.token by the review client.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/tianzhicdev/dogetionary-sub002/internal/config"
	"github.com/tianzhicdev/dogetionary-sub002/internal/service/auth"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Printf("tokengen: %v", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("tokengen", flag.ContinueOnError)
	userFlag := fs.String("user", "", "user ID to issue the token for (default: a new random ID)")
	configFile := fs.String("config", "", "path to a config file (default: ./config.yaml if present)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	userID := uuid.New()
	if *userFlag != "" {
		parsed, err := uuid.Parse(*userFlag)
		if err != nil {
			return fmt.Errorf("invalid -user: %w", err)
		}
		userID = parsed
	}

	cfg, err := config.LoadWithOptions(config.LoadOptions{ConfigFile: *configFile})
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return err
	}
	token, err := jwtService.GenerateToken(context.Background(), userID)
	if err != nil {
		return fmt.Errorf("failed to generate token: %w", err)
	}

	fmt.Fprintf(out, "user:  %s\ntoken: %s\n", userID, token)
	return nil
}
