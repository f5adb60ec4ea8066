package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHTMXResponseBuilder_Basic(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		Status(http.StatusOK).
		BodyHTML([]byte("<p>ok</p>")).
		Write(w)

	if w.Code != http.StatusOK {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusOK)
	}
	if w.Body.String() != "<p>ok</p>" {
		t.Errorf("Body = %q, want %q", w.Body.String(), "<p>ok</p>")
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	if w.Header().Get("HX-Trigger") != "" {
		t.Error("HX-Trigger should be absent without triggers")
	}
}

func TestHTMXResponseBuilder_Triggers(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		TriggerLedgerChanged("mark_paid", 42).
		TriggerFormReset().
		TriggerSuccessNotification("Fatura eklendi").
		Write(w)

	var triggers map[string]json.RawMessage
	if err := json.Unmarshal([]byte(w.Header().Get("HX-Trigger")), &triggers); err != nil {
		t.Fatalf("HX-Trigger is not JSON: %v", err)
	}
	for _, name := range []string{EventLedgerChanged, EventFormReset, EventShowNotification} {
		if _, ok := triggers[name]; !ok {
			t.Errorf("HX-Trigger missing %q", name)
		}
	}

	var changed struct {
		Operation string `json:"operation"`
		ID        int64  `json:"id"`
	}
	if err := json.Unmarshal(triggers[EventLedgerChanged], &changed); err != nil {
		t.Fatalf("ledger:changed payload: %v", err)
	}
	if changed.Operation != "mark_paid" || changed.ID != 42 {
		t.Errorf("ledger:changed = %+v", changed)
	}
}

func TestHTMXResponseBuilder_CustomHeader(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		Header("X-Custom", "value").
		Status(http.StatusCreated).
		Write(w)

	if w.Header().Get("X-Custom") != "value" {
		t.Errorf("Custom header not set")
	}
	if w.Code != http.StatusCreated {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusCreated)
	}
}

func TestErrorResponse(t *testing.T) {
	tests := []struct {
		name       string
		builder    *HTMXResponseBuilder
		wantStatus int
		wantBody   string
	}{
		{
			name:       "bad request",
			builder:    BadRequestError("Geçersiz istek"),
			wantStatus: http.StatusBadRequest,
			wantBody:   `<div class="error" role="alert">Geçersiz istek</div>`,
		},
		{
			name:       "unprocessable entity",
			builder:    UnprocessableEntityError("Geçersiz tutar"),
			wantStatus: http.StatusUnprocessableEntity,
			wantBody:   `<div class="error" role="alert">Geçersiz tutar</div>`,
		},
		{
			name:       "internal server error",
			builder:    InternalServerError("boom"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `<div class="error" role="alert">boom</div>`,
		},
		{
			name:       "not found",
			builder:    NotFoundError("Fatura bulunamadı"),
			wantStatus: http.StatusNotFound,
			wantBody:   `<div class="error" role="alert">Fatura bulunamadı</div>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.builder.Write(w)

			if w.Code != tt.wantStatus {
				t.Errorf("Status code = %d, want %d", w.Code, tt.wantStatus)
			}
			if w.Body.String() != tt.wantBody {
				t.Errorf("Body = %q, want %q", w.Body.String(), tt.wantBody)
			}
			if !strings.Contains(w.Header().Get("HX-Trigger"), `"type":"error"`) {
				t.Errorf("missing error notification: %s", w.Header().Get("HX-Trigger"))
			}
		})
	}
}

func TestErrorResponse_EscapesHTML(t *testing.T) {
	w := httptest.NewRecorder()

	BadRequestError("<script>alert('xss')</script>").Write(w)

	body := w.Body.String()
	if strings.Contains(body, "<script>") {
		t.Error("Error response did not escape HTML")
	}
	if !strings.Contains(body, "&lt;script&gt;") {
		t.Error("Error response did not properly escape HTML entities")
	}
}

func TestNotificationTypes(t *testing.T) {
	tests := []struct {
		build func(*HTMXResponseBuilder) *HTMXResponseBuilder
		want  string
	}{
		{func(b *HTMXResponseBuilder) *HTMXResponseBuilder { return b.TriggerSuccessNotification("x") }, "success"},
		{func(b *HTMXResponseBuilder) *HTMXResponseBuilder { return b.TriggerWarningNotification("x") }, "warning"},
		{func(b *HTMXResponseBuilder) *HTMXResponseBuilder { return b.TriggerErrorNotification("x") }, "error"},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		tt.build(NewHTMXResponse()).Write(w)

		trigger := w.Header().Get("HX-Trigger")
		if !strings.Contains(trigger, `"type":"`+tt.want+`"`) {
			t.Errorf("Notification type %q not found in trigger: %s", tt.want, trigger)
		}
	}
}

func TestWriteJSON(t *testing.T) {
	w := httptest.NewRecorder()
	writeJSONError(w, http.StatusUnprocessableEntity, apiError{Error: "invalid amount", Field: "amount"})

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("Status code = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("Content-Type = %q", ct)
	}
	if got := strings.TrimSpace(w.Body.String()); got != `{"error":"invalid amount","field":"amount"}` {
		t.Errorf("Body = %s", got)
	}
}
