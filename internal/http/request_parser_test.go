package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"fatura/internal/core"
)

func TestParseFilter(t *testing.T) {
	tests := []struct {
		name       string
		query      url.Values
		wantStatus core.StatusFilter
		wantDue    string
		wantErr    bool
	}{
		{
			name:       "empty selects everything",
			query:      url.Values{},
			wantStatus: core.AllStatuses,
		},
		{
			name:       "sentinel label",
			query:      url.Values{"status": {"Tümü"}},
			wantStatus: core.AllStatuses,
		},
		{
			name:       "stored label",
			query:      url.Values{"status": {"Gecikti"}},
			wantStatus: core.StatusFilter(core.Overdue),
		},
		{
			name:       "english name",
			query:      url.Values{"status": {"paid"}},
			wantStatus: core.StatusFilter(core.Paid),
		},
		{
			name:       "unknown status falls back to all",
			query:      url.Values{"status": {"Archived"}},
			wantStatus: core.AllStatuses,
		},
		{
			name:       "due date",
			query:      url.Values{"dueDate": {"2025-06-01"}},
			wantStatus: core.AllStatuses,
			wantDue:    "2025-06-01",
		},
		{
			name:       "malformed due date",
			query:      url.Values{"status": {"Bekliyor"}, "dueDate": {"01/06/2025"}},
			wantStatus: core.StatusFilter(core.Pending),
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := ParseFilter(tt.query)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFilter() error = %v, wantErr %v", err, tt.wantErr)
			}
			if f.Status != tt.wantStatus {
				t.Errorf("Status = %q, want %q", f.Status, tt.wantStatus)
			}
			if f.DueDate != tt.wantDue {
				t.Errorf("DueDate = %q, want %q", f.DueDate, tt.wantDue)
			}
		})
	}
}

func TestFilterQuery(t *testing.T) {
	if got := FilterQuery(core.Filter{Status: core.AllStatuses}).Encode(); got != "" {
		t.Errorf("default filter encoded as %q, want empty", got)
	}

	f := core.Filter{Status: core.StatusFilter(core.Paid), DueDate: "2025-06-01"}
	back, err := ParseFilter(FilterQuery(f))
	if err != nil {
		t.Fatalf("ParseFilter() error = %v", err)
	}
	if back != f {
		t.Errorf("filter round trip = %+v, want %+v", back, f)
	}
}

func TestParseInvoiceID(t *testing.T) {
	tests := []struct {
		raw     string
		want    int64
		wantErr bool
	}{
		{"1718000000000", 1718000000000, false},
		{"0", 0, true},
		{"-4", 0, true},
		{"abc", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/invoices/x/pay", nil)
			req.SetPathValue("id", tt.raw)

			got, err := ParseInvoiceID(req)
			if tt.wantErr {
				if !errors.Is(err, errInvalidID) {
					t.Errorf("ParseInvoiceID(%q) error = %v, want errInvalidID", tt.raw, err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ParseInvoiceID(%q) = %d, %v; want %d", tt.raw, got, err, tt.want)
			}
		})
	}
}

func TestRequestBodyParser_JSON(t *testing.T) {
	body := `{"customerName": "Acme", "amount": 150.5, "dueDate": "2025-07-01", "status": "Ödendi"}`
	req := httptest.NewRequest(http.MethodPost, "/api/invoices", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	parser := NewRequestBodyParser(req)
	if err := parser.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !parser.IsJSON() {
		t.Error("Expected IsJSON() to be true")
	}

	got := parser.AddRequest()
	if got.CustomerName != "Acme" || got.Amount != "150.5" || got.DueDate != "2025-07-01" || got.Status != "Ödendi" {
		t.Errorf("AddRequest() = %+v", got)
	}
}

func TestRequestBodyParser_JSONStringAmount(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/invoices", strings.NewReader(`{"amount": "99.99"}`))

	parser := NewRequestBodyParser(req)
	if err := parser.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if amount := parser.Get("amount"); amount != "99.99" {
		t.Errorf("Get('amount') = %q, want '99.99'", amount)
	}
	if missing := parser.Get("customerName"); missing != "" {
		t.Errorf("Get('customerName') = %q, want empty", missing)
	}
}

func TestRequestBodyParser_InvalidJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/invoices", strings.NewReader(`{"amount": `))
	req.Header.Set("Content-Type", "application/json")

	if err := NewRequestBodyParser(req).Parse(); err == nil {
		t.Error("Parse() should fail on truncated JSON")
	}
}

func TestRequestBodyParser_FormData(t *testing.T) {
	body := "customerName=+Acme+Ltd%01+&amount=150&dueDate=2025-07-01"
	req := httptest.NewRequest(http.MethodPost, "/invoices", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	parser := NewRequestBodyParser(req)
	if err := parser.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if parser.IsJSON() {
		t.Error("Expected IsJSON() to be false for form data")
	}

	got := parser.AddRequest()
	if got.CustomerName != "Acme Ltd" {
		t.Errorf("CustomerName = %q, want 'Acme Ltd'", got.CustomerName)
	}
	if got.Amount != "150" || got.Status != "" {
		t.Errorf("AddRequest() = %+v", got)
	}
}

func TestRequestBodyParser_EmptyBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/invoices", strings.NewReader(""))

	parser := NewRequestBodyParser(req)
	if err := parser.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if val := parser.Get("customerName"); val != "" {
		t.Errorf("Get('customerName') = %q, want empty string", val)
	}
}

func TestSanitizeInput(t *testing.T) {
	tests := map[string]string{
		"  Acme  ":         "Acme",
		"A\x00c\x07me":     "Acme",
		"line\nbreak\ttab": "line\nbreak\ttab",
		"Müşteri":          "Müşteri",
	}
	for in, want := range tests {
		if got := sanitizeInput(in); got != want {
			t.Errorf("sanitizeInput(%q) = %q, want %q", in, got, want)
		}
	}
}
