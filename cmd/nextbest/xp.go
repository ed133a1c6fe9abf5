package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/hyperengineering/nextbest/internal/ledger"
	"github.com/hyperengineering/nextbest/internal/types"
	"github.com/hyperengineering/nextbest/internal/validation"
)

var (
	awardGame  string
	awardLabel string
	resetPurge bool
)

var xpCmd = &cobra.Command{
	Use:   "xp",
	Short: "Inspect and adjust the experience ledger",
}

var xpShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the XP total and recent wins",
	Args:  cobra.NoArgs,
	RunE:  runXPShow,
}

var xpAwardCmd = &cobra.Command{
	Use:   "award <amount>",
	Short: "Add (or subtract) XP, optionally recording a win",
	Args:  cobra.ExactArgs(1),
	RunE:  runXPAward,
}

var xpResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset XP to zero and clear recent wins",
	Args:  cobra.NoArgs,
	RunE:  runXPReset,
}

func init() {
	xpAwardCmd.Flags().StringVar(&awardGame, "game", "", "Game to credit (randomizer, swipe, claw)")
	xpAwardCmd.Flags().StringVar(&awardLabel, "label", "", "Win label; requires --game")
	xpResetCmd.Flags().BoolVar(&resetPurge, "purge", false, "Delete the stored ledger keys instead of writing zeros")

	xpCmd.AddCommand(xpShowCmd)
	xpCmd.AddCommand(xpAwardCmd)
	xpCmd.AddCommand(xpResetCmd)
}

func runXPShow(cmd *cobra.Command, args []string) error {
	return withLedger(cmd.Context(), func(l *ledger.Ledger) error {
		return printSnapshot(cmd, l.Snapshot())
	})
}

func runXPAward(cmd *cobra.Command, args []string) error {
	amount, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("amount must be an integer: %q", args[0])
	}

	req := types.AwardRequest{Amount: amount}
	if awardGame != "" || awardLabel != "" {
		req.Win = &types.WinInfo{Game: types.GameName(awardGame), Label: awardLabel}
	}
	if errs := validation.ValidateAwardRequest(req); len(errs) > 0 {
		return fmt.Errorf("invalid award: %s", errs[0].Error())
	}

	return withLedger(cmd.Context(), func(l *ledger.Ledger) error {
		l.Award(req.Amount, req.Win)
		return printSnapshot(cmd, l.Snapshot())
	})
}

func runXPReset(cmd *cobra.Command, args []string) error {
	if resetPurge {
		db, _, err := openLocalStore()
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.DeleteValues(cmd.Context(), ledger.KeyXP, ledger.KeyWins); err != nil {
			return fmt.Errorf("purge ledger: %w", err)
		}
		return printSnapshot(cmd, types.LedgerSnapshot{RecentWins: []types.Win{}, Ready: true})
	}
	return withLedger(cmd.Context(), func(l *ledger.Ledger) error {
		l.Reset()
		return printSnapshot(cmd, l.Snapshot())
	})
}

func printSnapshot(cmd *cobra.Command, snap types.LedgerSnapshot) error {
	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, snap)
	}

	fmt.Fprintf(out, "XP: %d\n", snap.XP)
	if len(snap.RecentWins) == 0 {
		fmt.Fprintln(out, "No recent wins.")
		return nil
	}

	tw := newTabWriter(out)
	fmt.Fprintln(tw, "WHEN\tGAME\tXP\tLABEL")
	for _, w := range snap.RecentWins {
		fmt.Fprintf(tw, "%s\t%s\t%+d\t%s\n",
			w.Time().Local().Format("2006-01-02 15:04"), w.Game, w.XP, w.Label)
	}
	return tw.Flush()
}
