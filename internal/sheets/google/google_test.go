package google

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"fatura/internal/core"
	ports "fatura/internal/sheets"
)

type fakeValues struct {
	calls     []string
	updated   [][]any
	updateErr error
}

func (f *fakeValues) Clear(_ context.Context, id, rng string) error {
	f.calls = append(f.calls, "clear "+id+" "+rng)
	return nil
}

func (f *fakeValues) Update(_ context.Context, id, rng string, values [][]any) error {
	f.calls = append(f.calls, "update "+id+" "+rng)
	f.updated = values
	return f.updateErr
}

func TestExporter_Export(t *testing.T) {
	fake := &fakeValues{}
	e := newExporter(fake, Options{SpreadsheetID: "sheet-1", SheetName: "Faturalar"}, nil)

	snap := ports.Snapshot{
		Now: time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC),
		Invoices: []core.Invoice{
			{ID: 1, CustomerName: "Acme", Amount: core.Money{Cents: 15000}, DueDate: core.NewDate(2025, 6, 1), Status: core.Pending},
		},
	}
	if err := e.Export(context.Background(), snap); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	want := []string{"clear sheet-1 'Faturalar'!A:Z", "update sheet-1 'Faturalar'!A1"}
	if strings.Join(fake.calls, "|") != strings.Join(want, "|") {
		t.Errorf("calls = %v, want %v", fake.calls, want)
	}
	if len(fake.updated) != 6 {
		t.Fatalf("updated %d rows, want 6", len(fake.updated))
	}
	if fake.updated[1][4] != "Gecikti" {
		t.Errorf("status cell = %v, want Gecikti", fake.updated[1][4])
	}
}

func TestExporter_ExportUpdateError(t *testing.T) {
	fake := &fakeValues{updateErr: errors.New("quota exceeded")}
	e := newExporter(fake, Options{SpreadsheetID: "sheet-1", SheetName: "Faturalar"}, nil)

	err := e.Export(context.Background(), ports.Snapshot{Now: time.Now()})
	if err == nil || !strings.Contains(err.Error(), "quota exceeded") {
		t.Errorf("Export() error = %v, want quota error", err)
	}
}

func TestSheetRange(t *testing.T) {
	tests := map[string]string{
		"Faturalar":  "'Faturalar'!A1",
		"2025 Liste": "'2025 Liste'!A1",
		"Ali's":      "'Ali''s'!A1",
	}
	for sheet, want := range tests {
		if got := sheetRange(sheet, "A1"); got != want {
			t.Errorf("sheetRange(%q) = %q, want %q", sheet, got, want)
		}
	}
}

func TestNew_Validation(t *testing.T) {
	ctx := context.Background()
	if _, err := New(ctx, Options{SheetName: "Faturalar"}, nil); err == nil {
		t.Error("expected error for missing spreadsheet ID")
	}
	if _, err := New(ctx, Options{SpreadsheetID: "x"}, nil); err == nil {
		t.Error("expected error for missing sheet name")
	}
	_, err := New(ctx, Options{SpreadsheetID: "x", SheetName: "Faturalar"}, nil)
	if err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Errorf("expected credentials error, got %v", err)
	}
}

func TestLoadCredentials(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sa.json")
	if err := os.WriteFile(path, []byte(`{"type":"service_account"}`), 0600); err != nil {
		t.Fatal(err)
	}

	b, err := loadCredentials(Options{CredentialsFile: path})
	if err != nil || string(b) != `{"type":"service_account"}` {
		t.Errorf("loadCredentials(file) = %q, %v", b, err)
	}

	b, err = loadCredentials(Options{CredentialsJSON: `{"inline":true}`, CredentialsFile: path})
	if err != nil || string(b) != `{"inline":true}` {
		t.Errorf("inline JSON should win, got %q, %v", b, err)
	}

	if _, err := loadCredentials(Options{CredentialsFile: "/missing/sa.json"}); err == nil {
		t.Error("expected error for missing file")
	}
}
