package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/uit-hub/academic-ledger/internal/application/query"
)

var reviewMajor string

// recommendCmd suggests subjects for the next semester
var recommendCmd = &cobra.Command{
	Use:   "recommend <mssv>",
	Short: "Suggest subjects for the next semester",
	Long: `Suggest every not-yet-completed subject of the student's program whose
prerequisites are all completed. When nothing qualifies, the graduation
courses are suggested instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runRecommend,
}

// reviewCmd prints the performance review
var reviewCmd = &cobra.Command{
	Use:   "review <mssv>",
	Short: "Show the performance review and graduation outlook",
	Args:  cobra.ExactArgs(1),
	RunE:  runReview,
}

func init() {
	for _, c := range []*cobra.Command{recommendCmd, reviewCmd} {
		c.Flags().StringVar(&reviewMajor, "major", "", "Major (default: from the stored profile)")
	}
}

func runRecommend(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	h := query.NewGetRecommendationsHandler(a.ledgers, a.ledgerCache, a.programs, a.profiles, a.policy(), a.log)
	dto, err := h.Handle(ctx, query.GetRecommendationsQuery{MSSV: args[0], Major: reviewMajor})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, dto)
	}
	fmt.Fprintf(out, "%s (%s)\n\n", dto.MSSV, dto.Major)
	printRecommendation(out, dto.Recommendation)
	return nil
}

func runReview(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	h := query.NewGetPerformanceReviewHandler(a.ledgers, a.ledgerCache, a.programs, a.profiles, a.policy(), a.log)
	dto, err := h.Handle(ctx, query.GetPerformanceReviewQuery{MSSV: args[0], Major: reviewMajor})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, dto)
	}
	fmt.Fprintf(out, "%s (%s)\n\n", dto.MSSV, dto.Major)
	printReport(out, dto.Report)
	return nil
}
