package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"lexicon/internal/cache"
	"lexicon/internal/config"
	"lexicon/internal/database"
	"lexicon/internal/logger"
	"lexicon/internal/repository"
	"lexicon/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	input := flag.String("input", cfg.Import.File, "CSV file with word and definition columns")
	batchSize := flag.Int("batch-size", cfg.Import.BatchSize, "Rows per transaction")
	assumeYes := flag.Bool("yes", cfg.Import.AssumeYes, "Delete existing words without asking (WARNING: destructive)")
	flag.Usage = printUsage
	flag.Parse()

	logger.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *input, *batchSize, confirmer(*assumeYes, os.Stdin, os.Stdout), os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Import failed: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, input string, batchSize int, confirm service.Confirmer, out io.Writer) error {
	log := logger.WithComponent("import")

	// Open the source first so a bad path fails before anything is touched.
	src, err := service.OpenCSV(input)
	if err != nil {
		return err
	}
	defer src.Close()

	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.EnsureSchema(ctx); err != nil {
		return err
	}

	importer := service.NewImportService(repository.NewWordRepository(db), confirm).
		WithProgress(func(imported int) {
			fmt.Fprintf(out, "Imported %d words...\n", imported)
		})

	if cfg.Redis.Enabled {
		store, err := cache.NewRedisStore(ctx, cfg.Redis)
		if err != nil {
			log.Warn("redis unavailable, cached lookups may be stale until they expire", "error", err)
		} else {
			defer store.Close()
			importer.WithInvalidator(cache.NewLookupCache(store, cfg.Redis.CacheTTL))
		}
	}

	fmt.Fprintf(out, "Importing %s in batches of %d\n", input, batchSize)
	result, err := importer.Import(ctx, src, batchSize)
	if err != nil {
		fmt.Fprintf(out, "Stopped after %d words in %d batches\n", result.Imported, result.Batches)
		return err
	}

	if result.Declined {
		fmt.Fprintln(out, "Import cancelled")
		return nil
	}

	fmt.Fprintf(out, "Successfully imported %d words (%d skipped) in %s\n",
		result.Imported, result.Skipped, result.Duration.Round(time.Millisecond))
	return nil
}

// confirmer returns the purge decision for existing rows: always yes with
// -yes, otherwise a typed "yes" in any case on in.
func confirmer(assumeYes bool, in io.Reader, out io.Writer) service.Confirmer {
	if assumeYes {
		return func(_ context.Context, existing int) (bool, error) {
			fmt.Fprintf(out, "Deleting %d existing words\n", existing)
			return true, nil
		}
	}

	reader := bufio.NewReader(in)
	return func(_ context.Context, existing int) (bool, error) {
		fmt.Fprintf(out, "WARNING: The dictionary already contains %d words. Type 'yes' to delete them and import again: ", existing)
		line, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return false, fmt.Errorf("reading confirmation: %w", err)
		}
		return strings.EqualFold(strings.TrimSpace(line), "yes"), nil
	}
}

func printUsage() {
	fmt.Println("Dictionary import tool")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  import [options]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -input <file>       CSV file path (default: IMPORT_FILE or dictionary.csv)")
	fmt.Println("  -batch-size <n>     Rows per transaction (default: IMPORT_BATCH_SIZE or 1000)")
	fmt.Println("  -yes                Replace existing words without asking (WARNING: destructive)")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  import -input dictionary.csv")
	fmt.Println("  import -input dictionary.csv -batch-size 500 -yes")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  DATABASE_TYPE    Database type: mysql, postgres, or sqlite (default: mysql)")
	fmt.Println("  DB_HOST, DB_PORT, DB_USER, DB_PASSWORD, DB_NAME    MySQL connection settings")
	fmt.Println("  DATABASE_URL     Connection URL, overrides the discrete settings")
	fmt.Println("  DB_PATH          SQLite database path (default: ./lexicon.db)")
}
