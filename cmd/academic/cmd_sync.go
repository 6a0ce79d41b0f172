package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/uit-hub/academic-ledger/internal/application/command"
	"github.com/uit-hub/academic-ledger/internal/domain/shared"
)

// sessionEnv is read when --cookie is not given.
const sessionEnv = "PORTAL_SESSION"

var (
	syncCookie string
	syncMajor  string
)

// syncCmd rebuilds a ledger from the portal
var syncCmd = &cobra.Command{
	Use:   "sync <mssv>",
	Short: "Sync a student's ledger from the portal",
	Long: `Fetch the transcript and the current registration with the given
session cookie, reconcile them with the stored ledger and save the result.

The cookie may also be passed in the ` + sessionEnv + ` environment variable.`,
	Args: cobra.ExactArgs(1),
	RunE: runSync,
}

func init() {
	syncCmd.Flags().StringVar(&syncCookie, "cookie", "", "Portal session cookie value")
	syncCmd.Flags().StringVar(&syncMajor, "major", "", "Major, overrides the one on the profile page")
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cookie := syncCookie
	if cookie == "" {
		cookie = os.Getenv(sessionEnv)
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()
	if err := a.migrateIfEnabled(); err != nil {
		return err
	}

	h := command.NewSyncLedgerHandler(
		a.ledgers,
		a.profiles,
		a.portalClient(),
		a.locker,
		a.ledgerCache,
		a.log,
		command.SyncLedgerHandlerConfig{CreditsRequired: a.cfg.Policy.TotalCreditsRequired},
	)

	res, err := h.Handle(ctx, command.SyncLedgerCommand{
		MSSV:   args[0],
		Cookie: cookie,
		Major:  syncMajor,
	})
	if err != nil {
		return explainSyncError(err)
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, res.Ledger)
	}
	printLedger(out, res.Ledger)
	fmt.Fprintf(out, "\nsync %s: %d conflicts, %d skipped rows, %d dropped lab rows\n",
		res.SyncID, len(res.Conflicts), res.SkippedRows, res.DroppedLabRows)
	return nil
}

// explainSyncError marks failures that are worth retrying.
func explainSyncError(err error) error {
	if shared.IsRetryable(err) {
		return fmt.Errorf("%w (temporary failure, nothing was saved; try again later)", err)
	}
	return err
}
