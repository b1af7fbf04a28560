package main

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"nbaio/internal/gate"
)

// Process exit codes for the wait command. Unblocked maps to success; the
// remaining outcomes and state errors each get a distinct code so scripts
// can branch on how the wait ended.
const (
	exitUnblocked   = 0
	exitInterrupted = 2
	exitTimedOut    = 3
	exitCancelled   = 4
	exitStateError  = 5
)

var waitCmd = &cobra.Command{
	Use:   "wait [flags]",
	Short: "Block until unblocked, interrupted, cancelled, or timed out",
	Long: `Wait on an interruptible gate and exit with a code describing the outcome.

An unblock signal (` + unblockSignalName + `) releases the wait with exit code 0;
SIGINT/SIGTERM interrupt it (exit 2); --timeout expires it (exit 3);
--cancel-after cancels it (exit 4).`,
	Args: cobra.NoArgs,
	RunE: runWait,
}

func init() {
	waitCmd.Flags().Duration("timeout", 0, "give up after this long (0 waits forever)")
	waitCmd.Flags().Duration("cancel-after", 0, "cancel the waiter after this long (0 never)")
}

func runWait(cmd *cobra.Command, args []string) error {
	timeout, err := cmd.Flags().GetDuration("timeout")
	if err != nil {
		return fmt.Errorf("failed to get timeout flag: %w", err)
	}
	cancelAfter, err := cmd.Flags().GetDuration("cancel-after")
	if err != nil {
		return fmt.Errorf("failed to get cancel-after flag: %w", err)
	}

	g := gate.NewThreaded()

	sigs := make(chan os.Signal, 4)
	notifyWaitSignals(sigs)
	defer signal.Stop(sigs)
	go func() {
		for s := range sigs {
			if isUnblockSignal(s) {
				g.Unblock()
			} else {
				g.Interrupt()
			}
		}
	}()

	out := g.WaitRegistered(timeout, func(id gate.WaiterID) {
		if cancelAfter > 0 {
			time.AfterFunc(cancelAfter, func() {
				_, _ = g.Cancel(id)
			})
		}
	})

	if !quietEnabled(cmd) {
		fmt.Fprintln(cmd.OutOrStdout(), out)
	}
	os.Exit(waitExitCode(out))
	return nil
}

func waitExitCode(out gate.Outcome) int {
	switch out {
	case gate.OutcomeUnblocked:
		return exitUnblocked
	case gate.OutcomeInterrupted:
		return exitInterrupted
	case gate.OutcomeTimedOut:
		return exitTimedOut
	case gate.OutcomeCancelled:
		return exitCancelled
	default:
		return exitStateError
	}
}
