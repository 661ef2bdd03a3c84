package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tally-dev/tally/internal/advisor"
	"github.com/tally-dev/tally/internal/analysis"
	"github.com/tally-dev/tally/internal/mailer"
	"github.com/tally-dev/tally/internal/normalize"
)

type billsOptions struct {
	repoDir   string
	days      int
	today     string
	important bool
	send      bool
	to        string
}

func newBillsCommand(opts *rootOptions) *cobra.Command {
	bo := &billsOptions{}

	cmd := &cobra.Command{
		Use:   "bills",
		Short: "List recurring payments and upcoming bill reminders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(bo.repoDir, opts)
			if err != nil {
				return err
			}
			defer r.close()
			if !cmd.Flags().Changed("days") {
				bo.days = r.cfg.Reminders.HorizonDays
			}
			return runBills(cmd.Context(), cmd.OutOrStdout(), r, bo)
		},
	}

	cmd.Flags().StringVar(&bo.repoDir, "repo", ".", "tally directory")
	cmd.Flags().IntVar(&bo.days, "days", 5, "reminder horizon in days (default from tally.yaml)")
	cmd.Flags().StringVar(&bo.today, "today", "", "reference date, YYYY-MM-DD (default: today)")
	cmd.Flags().BoolVar(&bo.important, "important", false, "only remind about important obligations (uses Gemini)")
	cmd.Flags().BoolVar(&bo.send, "send", false, "email the reminders")
	cmd.Flags().StringVar(&bo.to, "to", "", "reminder recipient (default: profile email)")

	return cmd
}

func runBills(ctx context.Context, w io.Writer, r *repo, bo *billsOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	today := time.Now()
	if bo.today != "" {
		d, err := normalize.ParseDate(bo.today)
		if err != nil {
			return fmt.Errorf("parsing --today: %w", err)
		}
		today = d
	}

	svc, txns, err := r.transactions()
	if err != nil {
		return err
	}

	billOpts := analysis.BillOptions{HorizonDays: bo.days, Today: today}
	if bo.important || r.cfg.Advisor.Enabled {
		classifier, err := advisor.NewGeminiClassifier(ctx, r.secrets.GeminiAPIKey, r.cfg.Advisor.Model)
		switch {
		case errors.Is(err, advisor.ErrNoAPIKey):
			warn(w, "GEMINI_API_KEY not set, showing all recurring payments")
		case err != nil:
			return err
		default:
			defer classifier.Close()
			billOpts.Classifier = classifier
		}
	}

	res, err := svc.Bills(ctx, txns, billOpts)
	if err != nil {
		return err
	}

	if len(res.Candidates) == 0 {
		fmt.Fprintln(w, "No recurring payments detected.")
	} else {
		fmt.Fprintln(w, "Recurring payments:")
		for _, c := range res.Candidates {
			fmt.Fprintf(w, "  %-24s $%9s  next due %s  (%d payments)\n",
				c.MerchantName, c.TypicalAmount.StringFixed(2), c.NextDue.Format("2006-01-02"), c.Observations)
		}
	}
	fmt.Fprintln(w)

	if len(res.Reminders) == 0 {
		color.New(color.FgGreen).Fprintf(w, "No recurring bills due in the next %d days.\n", bo.days)
		return nil
	}
	fmt.Fprintf(w, "Due in the next %d days:\n", bo.days)
	for _, rem := range res.Reminders {
		color.New(color.FgYellow).Fprintf(w, "  %s\n", rem.Message)
	}

	if !bo.send {
		return nil
	}
	return sendReminders(ctx, w, r, bo.to, res)
}

func sendReminders(ctx context.Context, w io.Writer, r *repo, to string, res analysis.BillsResult) error {
	if to == "" {
		to = r.cfg.Profile.Email
	}
	if to == "" {
		return fmt.Errorf("no recipient: pass --to or set profile.email in tally.yaml")
	}
	if r.cfg.SMTP.Host == "" {
		return fmt.Errorf("smtp.host is not set in tally.yaml")
	}

	sender := &mailer.SMTPSender{
		Host:     r.cfg.SMTP.Host,
		Port:     r.cfg.SMTP.Port,
		Username: r.cfg.SMTP.Username,
		Password: r.secrets.SMTPPassword,
		From:     r.cfg.SMTP.From,
	}
	d := mailer.NewDispatcher(sender, r.root, r.logger)

	sent, err := d.Dispatch(ctx, to, res.Reminders)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "\nEmailed %d reminder(s) to %s", len(sent.Sent), to)
	if len(sent.Skipped) > 0 {
		fmt.Fprintf(w, ", %d already sent", len(sent.Skipped))
	}
	fmt.Fprintln(w)
	if len(sent.Failed) > 0 {
		r.logger.Error("some reminders were not sent", zap.Int("failed", len(sent.Failed)))
		return fmt.Errorf("%d reminder(s) failed to send", len(sent.Failed))
	}
	return nil
}

func warn(w io.Writer, msg string) {
	color.New(color.FgYellow).Fprintf(w, "warning: %s\n", msg)
}
