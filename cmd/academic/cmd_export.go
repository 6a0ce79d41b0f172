package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/uit-hub/academic-ledger/internal/application/query"
	"github.com/uit-hub/academic-ledger/internal/domain/curriculum"
	"github.com/uit-hub/academic-ledger/internal/domain/ledger"
	"github.com/uit-hub/academic-ledger/internal/domain/shared"
	"github.com/uit-hub/academic-ledger/internal/infrastructure/export"
	"github.com/uit-hub/academic-ledger/pkg/logger"
)

var (
	exportOutput string
	exportMajor  string
)

// exportCmd writes the ledger and the review to an Excel workbook
var exportCmd = &cobra.Command{
	Use:   "export <mssv>",
	Short: "Export the ledger and performance review to Excel",
	Long: `Write the stored ledger to an .xlsx workbook. When a program is available
for the student's major, a review sheet is added.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default: <mssv>.xlsx)")
	exportCmd.Flags().StringVar(&exportMajor, "major", "", "Major (default: from the stored profile)")
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	var (
		l      *ledger.Ledger
		report *curriculum.Report
	)
	review, err := query.NewGetPerformanceReviewHandler(a.ledgers, a.ledgerCache, a.programs, a.profiles, a.policy(), a.log).
		Handle(ctx, query.GetPerformanceReviewQuery{MSSV: args[0], Major: exportMajor})
	switch {
	case err == nil:
		l, report = review.Ledger, &review.Report
	case errors.Is(err, shared.ErrInvalidMajor), errors.Is(err, shared.ErrCurriculumNotFound):
		// No major or no program: export the ledger alone.
		a.log.Warn("review unavailable, exporting ledger only", logger.Err(err))
		dto, lerr := query.NewGetLedgerHandler(a.ledgers, a.ledgerCache, a.log).
			Handle(ctx, query.GetLedgerQuery{MSSV: args[0]})
		if lerr != nil {
			return lerr
		}
		l = dto.Ledger
	default:
		return err
	}

	path := exportOutput
	if path == "" {
		path = l.MSSV + ".xlsx"
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := export.Workbook(f, l, report); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "written %s\n", path)
	return nil
}
