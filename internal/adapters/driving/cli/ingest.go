package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/kush-lhmm/sampann-search/internal/core/domain"
)

var (
	ingestWatch      bool
	ingestNoProgress bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [catalog.csv]",
	Short: "Load a product catalog",
	Long: `Reads a catalog CSV, stores one card per product and indexes its
passages for search.

Expected columns (case-insensitive): Product Name, Category, Weight, USP,
Price, Link, Description and optionally Brand. Rows without a product name
or category are skipped.

With --watch the catalog is re-ingested every time the file changes.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVarP(&ingestWatch, "watch", "w", false, "re-ingest when the file changes")
	ingestCmd.Flags().BoolVar(&ingestNoProgress, "no-progress", false, "hide the progress bar")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if err := loadServices(cmd); err != nil {
		return err
	}
	if ingestFactory == nil {
		return errNotConfigured("ingest")
	}
	path := args[0]

	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("catalog %s: %w", path, err)
	}

	if !ingestWatch {
		ctx, cancel := commandContext(cmd)
		defer cancel()
		return ingestOnce(ctx, cmd, path)
	}

	if err := ingestOnce(cmd.Context(), cmd, path); err != nil {
		return err
	}
	cmd.Printf("Watching %s for changes (Ctrl+C to stop)\n", path)
	return watchFile(cmd.Context(), path, watchDebounce, func(ctx context.Context) error {
		cmd.Println("Catalog changed, re-ingesting...")
		return ingestOnce(ctx, cmd, path)
	})
}

func ingestOnce(ctx context.Context, cmd *cobra.Command, path string) error {
	var bar *progressbar.ProgressBar
	progress := func(done, total int) {
		if ingestNoProgress {
			return
		}
		if bar == nil {
			bar = newProgressBar(cmd, total)
		}
		_ = bar.Set(done)
	}

	stats, err := ingestFactory(progress).IngestFile(ctx, path)
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	printIngestStats(cmd, stats)

	if resultCache != nil {
		if err := resultCache.Flush(ctx); err != nil {
			warnStyle.Fprintf(cmd.ErrOrStderr(), "Warning: could not flush result cache: %v\n", err) //nolint:errcheck
		}
	}
	return nil
}

func newProgressBar(cmd *cobra.Command, total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(
		total,
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionSetDescription("Embedding passages"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(cmd.ErrOrStderr())
		}),
	)
}

func printIngestStats(cmd *cobra.Command, stats *domain.IngestStats) {
	cmd.Printf("Ingested %d products (%d passages)", stats.Cards, stats.Passages)
	if stats.Skipped > 0 {
		cmd.Printf(", skipped %d rows", stats.Skipped)
	}
	cmd.Println()
}
