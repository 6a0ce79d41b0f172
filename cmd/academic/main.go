// Package main - точка входа CLI academic.
//
// CLI синхронизирует ledger студента с порталом, показывает сохранённые
// данные, подбирает предметы на следующий семестр и строит отчёт об
// успеваемости. Каждая подкоманда собирает только те зависимости,
// которые ей нужны.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	configPath string
	jsonOutput bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "academic",
	Short: "Academic ledger for UIT students",
	Long: `academic keeps a per-student academic ledger built from the student
portal transcript and the current course registration.

Typical flow:
  academic migrate up
  academic curriculum import programs.yaml
  academic sync 21520001 --cookie <session>
  academic recommend 21520001
  academic review 21520001`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print results as JSON")

	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(ledgerCmd)
	rootCmd.AddCommand(recommendCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(curriculumCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(migrateCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
