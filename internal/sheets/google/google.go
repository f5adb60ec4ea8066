// Package google exports the ledger to a Google Sheets tab.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	ports "fatura/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Options configure the exporter. One of CredentialsJSON or CredentialsFile is required.
type Options struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
}

// valuesAPI is the part of the Sheets values service the exporter needs.
type valuesAPI interface {
	Clear(ctx context.Context, spreadsheetID, rng string) error
	Update(ctx context.Context, spreadsheetID, rng string, values [][]any) error
}

type Exporter struct {
	values        valuesAPI
	spreadsheetID string
	sheetName     string
	logger        *slog.Logger
}

var _ ports.Exporter = (*Exporter)(nil)

// New builds an exporter authenticated with a service account.
func New(ctx context.Context, opts Options, logger *slog.Logger) (*Exporter, error) {
	if strings.TrimSpace(opts.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	if strings.TrimSpace(opts.SheetName) == "" {
		return nil, errors.New("missing sheet name")
	}
	if logger == nil {
		logger = slog.Default()
	}

	credentialsJSON, err := loadCredentials(opts)
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	logger.InfoContext(ctx, "Google Sheets service created",
		"spreadsheet_id", opts.SpreadsheetID,
		"sheet", opts.SheetName)

	return newExporter(&sheetsValues{svc: svc}, opts, logger), nil
}

func newExporter(values valuesAPI, opts Options, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{
		values:        values,
		spreadsheetID: opts.SpreadsheetID,
		sheetName:     opts.SheetName,
		logger:        logger,
	}
}

func loadCredentials(opts Options) ([]byte, error) {
	switch {
	case strings.TrimSpace(opts.CredentialsJSON) != "":
		return []byte(opts.CredentialsJSON), nil
	case strings.TrimSpace(opts.CredentialsFile) != "":
		b, err := os.ReadFile(opts.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}
}

// Export clears the tab and writes the rendered snapshot from A1.
func (e *Exporter) Export(ctx context.Context, snap ports.Snapshot) error {
	values := ports.BuildTable(snap).Values()

	if err := e.values.Clear(ctx, e.spreadsheetID, sheetRange(e.sheetName, "A:Z")); err != nil {
		return fmt.Errorf("clear sheet %s: %w", e.sheetName, err)
	}
	if err := e.values.Update(ctx, e.spreadsheetID, sheetRange(e.sheetName, "A1"), values); err != nil {
		return fmt.Errorf("update sheet %s: %w", e.sheetName, err)
	}

	e.logger.InfoContext(ctx, "Ledger exported to Google Sheets",
		"sheet", e.sheetName,
		"rows", len(values),
		"snapshot", ports.Caption(snap))
	return nil
}

// sheetRange quotes the tab name for A1 notation.
func sheetRange(sheet, cells string) string {
	return fmt.Sprintf("'%s'!%s", strings.ReplaceAll(sheet, "'", "''"), cells)
}

type sheetsValues struct {
	svc *gsheet.Service
}

func (s *sheetsValues) Clear(ctx context.Context, spreadsheetID, rng string) error {
	_, err := s.svc.Spreadsheets.Values.Clear(spreadsheetID, rng, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	return err
}

func (s *sheetsValues) Update(ctx context.Context, spreadsheetID, rng string, values [][]any) error {
	vr := &gsheet.ValueRange{Values: values}
	_, err := s.svc.Spreadsheets.Values.Update(spreadsheetID, rng, vr).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	return err
}
