package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	applog "fatura/internal/log"
	"fatura/internal/sheets"
	"fatura/internal/sheets/excel"
	gsheet "fatura/internal/sheets/google"
)

func newExportCmd(opts *rootOptions) *cobra.Command {
	var (
		xlsxPath string
		toSheets bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the ledger to an .xlsx file or Google Sheets",
		Long: `Export writes every invoice with its effective status, followed by the
receivable, collected and overdue totals.

--sheets uses GOOGLE_SPREADSHEET_ID, GOOGLE_SHEET_NAME and the service account
credentials from the environment.`,
		Example: `  faturactl export --xlsx faturalar.xlsx
  faturactl export --sheets`,
		Args: cobra.NoArgs,
		RunE: opts.withSession(func(cmd *cobra.Command, _ []string, s *session) error {
			l := s.svc.Ledger()
			snap := sheets.Snapshot{
				Invoices:      l.List(),
				Now:           l.Now(),
				CurrencyLabel: s.cfg.CurrencyLabel,
			}
			logger := s.logger.WithComponent(applog.ComponentSheets).Slog()

			var (
				exporter sheets.Exporter
				target   string
			)
			if toSheets {
				if !s.cfg.SheetsEnabled() {
					return errors.New("GOOGLE_SPREADSHEET_ID is not set")
				}
				g, err := gsheet.New(cmd.Context(), gsheet.Options{
					SpreadsheetID:   s.cfg.GoogleSpreadsheetID,
					SheetName:       s.cfg.GoogleSheetName,
					CredentialsJSON: s.cfg.GoogleServiceAccountJSON,
					CredentialsFile: s.cfg.GoogleServiceAccountFile,
				}, logger)
				if err != nil {
					return fmt.Errorf("google sheets: %w", err)
				}
				exporter, target = g, "Google Sheets"
			} else {
				exporter, target = excel.New(xlsxPath, excel.DefaultSheet, logger), xlsxPath
			}

			if err := exporter.Export(cmd.Context(), snap); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d fatura aktarıldı: %s\n", len(snap.Invoices), target)
			return nil
		}),
	}

	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "Write an .xlsx workbook to this path")
	cmd.Flags().BoolVar(&toSheets, "sheets", false, "Replace the configured Google Sheet")
	cmd.MarkFlagsOneRequired("xlsx", "sheets")
	cmd.MarkFlagsMutuallyExclusive("xlsx", "sheets")
	return cmd
}
