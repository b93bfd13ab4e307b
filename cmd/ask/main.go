// Command ask runs one shopping query through the pipeline and prints the step log.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"voice-shopping-be/internal/bootstrap"
	"voice-shopping-be/internal/config"
	"voice-shopping-be/internal/service"
	"voice-shopping-be/pkg/database"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ask <query>",
	Short: "Ask the shopping assistant a question",
	Long: `ask sends a query through intent extraction, planning, retrieval and
answering, then prints every stage of the step log.

Example usage:
  ask "organic shampoo under $15"
  ask --json "compare stainless steel kettles"`,
	Args:          cobra.MinimumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runAsk,
}

func init() {
	rootCmd.Flags().Bool("json", false, "print the full pipeline state as JSON")
	rootCmd.Flags().Bool("verbose", false, "include stage inputs and outputs")
	rootCmd.Flags().Bool("no-color", false, "disable colored output")
	rootCmd.Flags().Duration("timeout", 2*time.Minute, "give up after this long")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func runAsk(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	verbose, _ := cmd.Flags().GetBool("verbose")
	noColor, _ := cmd.Flags().GetBool("no-color")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	if noColor {
		color.NoColor = true
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cfg := config.Load()
	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, false)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}

	container, err := bootstrap.NewContainer(ctx, db, cfg)
	if err != nil {
		return err
	}
	defer container.Close()

	state, cached, err := container.AssistantService.Ask(ctx, strings.Join(args, " "), service.ChannelCLI)
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(state)
	}

	printState(os.Stdout, state, cached, verbose)
	return nil
}
