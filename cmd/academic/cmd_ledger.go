package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/uit-hub/academic-ledger/internal/application/command"
	"github.com/uit-hub/academic-ledger/internal/application/query"
)

var (
	listLimit  int
	listOffset int
)

// ledgerCmd groups read access to stored ledgers
var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Inspect stored ledgers",
}

var ledgerShowCmd = &cobra.Command{
	Use:   "show <mssv>",
	Short: "Show a student's ledger",
	Args:  cobra.ExactArgs(1),
	RunE:  runLedgerShow,
}

var ledgerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored ledgers, most recently synced first",
	Args:  cobra.NoArgs,
	RunE:  runLedgerList,
}

var ledgerRecomputeCmd = &cobra.Command{
	Use:   "recompute <mssv>",
	Short: "Recompute semester credits, averages and the summary",
	Args:  cobra.ExactArgs(1),
	RunE:  runLedgerRecompute,
}

func init() {
	ledgerListCmd.Flags().IntVar(&listLimit, "limit", 50, "Maximum rows")
	ledgerListCmd.Flags().IntVar(&listOffset, "offset", 0, "Rows to skip")

	ledgerCmd.AddCommand(ledgerShowCmd)
	ledgerCmd.AddCommand(ledgerListCmd)
	ledgerCmd.AddCommand(ledgerRecomputeCmd)
}

func runLedgerShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	dto, err := query.NewGetLedgerHandler(a.ledgers, a.ledgerCache, a.log).
		Handle(ctx, query.GetLedgerQuery{MSSV: args[0]})
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), dto)
	}
	printLedger(cmd.OutOrStdout(), dto.Ledger)
	return nil
}

func runLedgerList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	infos, err := query.NewListLedgersHandler(a.ledgers).
		Handle(ctx, query.ListLedgersQuery{Limit: listLimit, Offset: listOffset})
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), infos)
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "MSSV\tSemesters\tCredits\tAverage\tSynced")
	for _, i := range infos {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\n",
			i.MSSV, i.Semesters, i.CreditsTaken, optional(i.OverallAverage), i.SyncedAt.Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}

func runLedgerRecompute(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	l, err := command.NewRecomputeSummaryHandler(a.ledgers, a.locker, a.ledgerCache, a.log).
		Handle(ctx, command.RecomputeSummaryCommand{MSSV: args[0]})
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), l)
	}
	printLedger(cmd.OutOrStdout(), l)
	return nil
}
