// Command index embeds a product catalog file into the vector store.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"voice-shopping-be/internal/bootstrap"
	"voice-shopping-be/internal/config"
	"voice-shopping-be/internal/model"
	"voice-shopping-be/pkg/catalog"
	"voice-shopping-be/pkg/database"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "index <catalog-file>",
	Short: "Index a product catalog into the vector store",
	Long: `index reads a CSV export or YAML fixture of products, fills missing
category, brand and material fields with the LLM, embeds each product and
upserts it into Postgres.

Example usage:
  index data/amazon_products.csv
  index --no-enrich --batch-size 100 data/products.yaml`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runIndex,
}

func init() {
	rootCmd.Flags().Int("batch-size", 50, "products per transaction")
	rootCmd.Flags().Int("limit", 0, "index at most this many products (0 means all)")
	rootCmd.Flags().Bool("no-enrich", false, "skip LLM metadata extraction")
	rootCmd.Flags().Bool("skip-migrate", false, "do not run the schema migration first")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func runIndex(cmd *cobra.Command, args []string) error {
	batchSize, _ := cmd.Flags().GetInt("batch-size")
	limit, _ := cmd.Flags().GetInt("limit")
	noEnrich, _ := cmd.Flags().GetBool("no-enrich")
	skipMigrate, _ := cmd.Flags().GetBool("skip-migrate")

	if batchSize <= 0 {
		return fmt.Errorf("batch-size must be positive, got %d", batchSize)
	}

	rows, err := catalog.ReadFile(args[0])
	if err != nil {
		return err
	}
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	if len(rows) == 0 {
		fmt.Println("No products found, nothing to index")
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	if noEnrich {
		cfg.Ai.EnrichCatalog = false
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, false)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	if !skipMigrate {
		if err := database.Migrate(db, &model.Product{}); err != nil {
			return err
		}
	}

	container, err := bootstrap.NewContainer(ctx, db, cfg)
	if err != nil {
		return err
	}
	defer container.Close()

	total := 0
	for _, batch := range batches(rows, batchSize) {
		n, err := container.CatalogService.IndexProducts(ctx, batch)
		if err != nil {
			return fmt.Errorf("after %d products: %w", total, err)
		}
		total += n
		fmt.Printf("Indexed %d/%d products\n", total, len(rows))
	}

	fmt.Printf("Done: %d indexed, %d skipped\n", total, len(rows)-total)
	return nil
}

func batches(rows []catalog.Row, size int) [][]catalog.Row {
	var out [][]catalog.Row
	for start := 0; start < len(rows); start += size {
		end := start + size
		if end > len(rows) {
			end = len(rows)
		}
		out = append(out, rows[start:end])
	}
	return out
}
