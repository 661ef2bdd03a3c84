package commands

import (
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/tally-dev/tally/internal/analysis"
	"github.com/tally-dev/tally/internal/config"
	"github.com/tally-dev/tally/internal/ledger"
	"github.com/tally-dev/tally/internal/period"
)

func newBudgetCommand(opts *rootOptions) *cobra.Command {
	budgetCmd := &cobra.Command{
		Use:   "budget",
		Short: "Monthly category budgets",
	}
	budgetCmd.AddCommand(newBudgetSetCommand(opts))
	budgetCmd.AddCommand(newBudgetReportCommand(opts))
	return budgetCmd
}

func newBudgetSetCommand(opts *rootOptions) *cobra.Command {
	var repoDir string

	cmd := &cobra.Command{
		Use:   "set <YYYY-MM> <category> <limit>",
		Short: "Set the spending limit for a category in a month",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(repoDir, opts)
			if err != nil {
				return err
			}
			defer r.close()
			return runBudgetSet(cmd.OutOrStdout(), r, args[0], args[1], args[2])
		},
	}

	cmd.Flags().StringVar(&repoDir, "repo", ".", "tally directory")
	return cmd
}

func runBudgetSet(w io.Writer, r *repo, month, category, rawLimit string) error {
	ym, err := period.Parse(month)
	if err != nil {
		return err
	}
	limit, err := decimal.NewFromString(rawLimit)
	if err != nil {
		return fmt.Errorf("parsing limit %q: %w", rawLimit, err)
	}

	if limit.IsNegative() {
		return fmt.Errorf("%w: %s for %s in %s is negative", ledger.ErrInvalidLimit, limit.StringFixed(2), category, ym)
	}

	r.cfg.SetBudget(ym, category, limit)
	if err := config.Save(filepath.Join(r.root, config.FileName), r.cfg); err != nil {
		return err
	}

	fmt.Fprintf(w, "Budget for %s in %s set to $%s\n", category, ym, limit.StringFixed(2))
	return nil
}

func newBudgetReportCommand(opts *rootOptions) *cobra.Command {
	var repoDir string
	var month string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show spending against budget and overspend alerts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(repoDir, opts)
			if err != nil {
				return err
			}
			defer r.close()
			return runBudgetReport(cmd.OutOrStdout(), r, month)
		},
	}

	cmd.Flags().StringVar(&repoDir, "repo", ".", "tally directory")
	cmd.Flags().StringVar(&month, "month", "", "month to report, YYYY-MM (default: latest month with transactions)")
	return cmd
}

func runBudgetReport(w io.Writer, r *repo, month string) error {
	_, txns, err := r.transactions()
	if err != nil {
		return err
	}

	var ym period.YearMonth
	if month != "" {
		if ym, err = period.Parse(month); err != nil {
			return err
		}
	} else {
		ym = analysis.LatestMonth(txns)
		if ym.IsZero() {
			fmt.Fprintln(w, "No transactions found in import/.")
			return nil
		}
	}

	l, err := analysis.BuildLedger(r.cfg.Budgets, txns)
	if err != nil {
		return err
	}
	report := analysis.MonthlyReport(l, ym)

	fmt.Fprintf(w, "Budget report for %s\n\n", ym)
	if len(report.Rows) == 0 {
		fmt.Fprintln(w, "No spending or budgets for this month.")
	} else {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "CATEGORY\tSPENT\tLIMIT\tREMAINING\t")
		for _, row := range report.Rows {
			limit, remaining := "-", "-"
			if !row.Limit.IsZero() {
				limit = row.Limit.StringFixed(2)
				remaining = row.Remaining().StringFixed(2)
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n", row.Category, row.Spent.StringFixed(2), limit, remaining)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	fmt.Fprintln(w)

	if len(report.Notifications) == 0 {
		color.New(color.FgGreen).Fprintln(w, "No budget alerts.")
		return nil
	}
	alert := color.New(color.FgRed, color.Bold)
	for _, n := range report.Notifications {
		alert.Fprintln(w, n.Message)
	}
	return nil
}
