package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"fatura/internal/core"
	"fatura/internal/ledger"
	"fatura/internal/services"
	"fatura/internal/sheets"
)

func newAddCmd(opts *rootOptions) *cobra.Command {
	var req ledger.AddRequest

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an invoice",
		Example: `  faturactl add --customer "Acme Ltd" --amount 150.50 --due 2025-07-01
  faturactl add --customer Beta --amount 90 --due 2025-05-01 --status Ödendi`,
		Args: cobra.NoArgs,
		RunE: opts.withSession(func(cmd *cobra.Command, _ []string, s *session) error {
			inv, err := s.svc.CreateInvoice(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Fatura eklendi: %d\n", inv.ID)
			return printRows(cmd.OutOrStdout(), services.BuildRows([]core.Invoice{inv}, s.svc.Ledger().Now()), s.cfg.CurrencyLabel)
		}),
	}

	cmd.Flags().StringVar(&req.CustomerName, "customer", "", "Customer name")
	cmd.Flags().StringVar(&req.Amount, "amount", "", "Amount, e.g. 150.50")
	cmd.Flags().StringVar(&req.DueDate, "due", "", "Due date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&req.Status, "status", "", "Initial status: Bekliyor, Ödendi or Gecikti (default Bekliyor)")
	return cmd
}

func newListCmd(opts *rootOptions) *cobra.Command {
	var status, due string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List invoices with their effective status",
		Args:  cobra.NoArgs,
		RunE: opts.withSession(func(cmd *cobra.Command, _ []string, s *session) error {
			f, err := parseFilter(status, due)
			if err != nil {
				return err
			}
			view := s.svc.List(f)
			out := cmd.OutOrStdout()
			if err := printRows(out, view.Rows, s.cfg.CurrencyLabel); err != nil {
				return err
			}
			fmt.Fprintf(out, "\n%d / %d fatura\n", len(view.Rows), view.Total)
			return printSummary(out, view.Summary, s.cfg.CurrencyLabel)
		}),
	}

	cmd.Flags().StringVar(&status, "status", "", "Effective status to show (Bekliyor, Ödendi, Gecikti or Tümü)")
	cmd.Flags().StringVar(&due, "due", "", "Exact due date (YYYY-MM-DD)")
	return cmd
}

func parseFilter(status, due string) (core.Filter, error) {
	sf, err := core.ParseStatusFilter(status)
	if err != nil {
		return core.Filter{}, err
	}
	f := core.Filter{Status: sf}
	if due = strings.TrimSpace(due); due != "" {
		if _, err := core.ParseDate(due); err != nil {
			return core.Filter{}, err
		}
		f.DueDate = due
	}
	return f, nil
}

// statusChange picks the service operation a status command applies.
type statusChange func(*services.InvoiceService) func(context.Context, int64) error

func markPaid(s *services.InvoiceService) func(context.Context, int64) error {
	return s.MarkPaid
}

func markOverdue(s *services.InvoiceService) func(context.Context, int64) error {
	return s.MarkOverdue
}

func newStatusCmd(opts *rootOptions, use, short string, change statusChange) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: opts.withSession(func(cmd *cobra.Command, args []string, s *session) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := change(s.svc)(cmd.Context(), id); err != nil {
				return err
			}
			inv, err := s.svc.Get(id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Fatura güncellendi: %d (%s)\n", id, inv.Status)
			return nil
		}),
	}
}

func newRemoveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete an invoice",
		Args:    cobra.ExactArgs(1),
		RunE: opts.withSession(func(cmd *cobra.Command, args []string, s *session) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			removed, err := s.svc.DeleteInvoice(cmd.Context(), id)
			if err != nil {
				return err
			}
			if !removed {
				fmt.Fprintf(cmd.OutOrStdout(), "Fatura bulunamadı: %d\n", id)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Fatura silindi: %d\n", id)
			return nil
		}),
	}
}

func newSummaryCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show receivable, collected and overdue totals",
		Args:  cobra.NoArgs,
		RunE: opts.withSession(func(cmd *cobra.Command, _ []string, s *session) error {
			return printSummary(cmd.OutOrStdout(), s.svc.Summary(), s.cfg.CurrencyLabel)
		}),
	}
}

func printRows(w io.Writer, rows []services.Row, currency string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tMÜŞTERİ\tTUTAR\tVADE\tDURUM\tİŞLEMLER")
	for _, r := range rows {
		actions := make([]string, len(r.Actions))
		for i, a := range r.Actions {
			actions[i] = string(a)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.CustomerName, r.Amount.Format(currency), r.DueDate, r.Effective, strings.Join(actions, ","))
	}
	return tw.Flush()
}

func printSummary(w io.Writer, sum core.Summary, currency string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\n", sheets.LabelReceivable, sum.Receivable.Format(currency))
	fmt.Fprintf(tw, "%s\t%s\n", sheets.LabelCollected, sum.Collected.Format(currency))
	fmt.Fprintf(tw, "%s\t%s\n", sheets.LabelOverdue, sum.Overdue.Format(currency))
	return tw.Flush()
}
