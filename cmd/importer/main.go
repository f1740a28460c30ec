// Command importer loads review questions for one user from an .xlsx
// workbook into the configured question store.
//
//	importer -user <uuid> [-sheet Words] questions.xlsx
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/tianzhicdev/dogetionary-sub002/internal/config"
	"github.com/tianzhicdev/dogetionary-sub002/internal/importer"
	"github.com/tianzhicdev/dogetionary-sub002/internal/platform/database"
	"github.com/tianzhicdev/dogetionary-sub002/internal/platform/logger"
)

var errUsage = errors.New("usage: importer -user <uuid> [-sheet name] [-config file] <workbook.xlsx>")

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		log.Printf("importer: %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("importer", flag.ContinueOnError)
	userFlag := fs.String("user", "", "user ID the questions belong to")
	sheet := fs.String("sheet", "", "sheet name (default: first sheet)")
	configFile := fs.String("config", "", "path to a config file (default: ./config.yaml if present)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 || *userFlag == "" {
		return errUsage
	}
	userID, err := uuid.Parse(*userFlag)
	if err != nil {
		return fmt.Errorf("invalid -user: %w", err)
	}

	cfg, err := config.LoadDatabase(config.LoadOptions{ConfigFile: *configFile})
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	questions, db, err := database.OpenQuestionStore(ctx, cfg.Database, appLogger)
	if err != nil {
		return fmt.Errorf("failed to open question store: %w", err)
	}
	defer func() { _ = db.Close() }()

	result, err := importer.New(questions, appLogger).ImportFile(ctx, userID, fs.Arg(0), *sheet)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "sheet %q: %d rows, %d imported, %d skipped\n",
		result.Sheet, result.TotalProcessed, result.Imported, result.Skipped)
	for _, rowErr := range result.Errors {
		fmt.Fprintf(out, "  %v\n", rowErr)
	}
	return nil
}
