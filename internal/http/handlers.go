package http

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"fatura/internal/core"
	"fatura/internal/ledger"
	applog "fatura/internal/log"
	"fatura/internal/services"
	"fatura/internal/sheets"
	"fatura/internal/sheets/excel"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// User-facing messages.
const (
	msgCreated         = "Fatura eklendi"
	msgMarkedPaid      = "Fatura ödendi olarak işaretlendi"
	msgMarkedOverdue   = "Fatura gecikti olarak işaretlendi"
	msgDeleted         = "Fatura silindi"
	msgNotFound        = "Fatura bulunamadı"
	msgNotSaved        = "Değişiklik uygulandı ancak kaydedilemedi"
	msgInvalidID       = "Geçersiz fatura numarası"
	msgInvalidFilter   = "Geçersiz tarih filtresi"
	msgInvalidRequest  = "Geçersiz istek"
	msgTemplateFailure = "Sayfa oluşturulamadı"
)

var fieldMessages = map[string]string{
	"customerName": "Müşteri adı boş olamaz",
	"amount":       "Geçersiz tutar",
	"dueDate":      "Geçersiz son ödeme tarihi",
	"status":       "Geçersiz durum",
}

// formValues echoes the add form back after a failed submit.
type formValues struct {
	CustomerName string
	Amount       string
	DueDate      string
	Status       string
}

// pageData is rendered by index.html and the "ledger" partial.
type pageData struct {
	Rows        []services.Row
	Summary     core.Summary
	Filter      core.Filter
	FilterQuery string
	Statuses    []core.Status
	AllLabel    core.StatusFilter
	Total       int
	Today       string
	Form        formValues
	Error       string
}

func (s *Server) pageData(f core.Filter) pageData {
	view := s.svc.List(f)
	q := FilterQuery(view.Filter).Encode()
	if q != "" {
		q = "?" + q
	}
	return pageData{
		Rows:        view.Rows,
		Summary:     view.Summary,
		Filter:      view.Filter,
		FilterQuery: q,
		Statuses:    []core.Status{core.Pending, core.Paid, core.Overdue},
		AllLabel:    core.AllStatuses,
		Total:       view.Total,
		Today:       view.Now.UTC().Format(core.DateLayout),
	}
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

func isAPI(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/")
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data pageData) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Template execution failed",
			applog.FieldError, err, "template", name)
		http.Error(w, msgTemplateFailure, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) renderLedger(r *http.Request, data pageData) ([]byte, error) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "ledger", data); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Template execution failed",
			applog.FieldError, err, "template", "ledger")
		return nil, err
	}
	return buf.Bytes(), nil
}

// handleIndex renders the full page, or only the ledger section for htmx.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	f, err := ParseFilter(r.URL.Query())
	data := s.pageData(f)
	if err != nil {
		data.Error = msgInvalidFilter
	}

	name := "index.html"
	if isHTMX(r) {
		name = "ledger"
	}
	s.render(w, r, http.StatusOK, name, data)
}

func (s *Server) handleCreateInvoice(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		s.respondFailure(w, r, http.StatusBadRequest, msgInvalidRequest, formValues{})
		return
	}
	req := p.AddRequest()
	form := formValues(req)

	inv, err := s.svc.CreateInvoice(r.Context(), req)
	if err != nil && !ledger.IsPersistence(err) {
		status, msg := classify(err)
		s.respondFailure(w, r, status, msg, form)
		return
	}
	s.respondChanged(w, r, applog.OpCreate, inv.ID, msgCreated, err)
}

func (s *Server) handleMarkPaid(w http.ResponseWriter, r *http.Request) {
	s.statusChange(w, r, applog.OpMarkPaid, msgMarkedPaid, s.svc.MarkPaid)
}

func (s *Server) handleMarkOverdue(w http.ResponseWriter, r *http.Request) {
	s.statusChange(w, r, applog.OpMarkOverdue, msgMarkedOverdue, s.svc.MarkOverdue)
}

func (s *Server) statusChange(w http.ResponseWriter, r *http.Request, op, okMsg string, apply func(context.Context, int64) error) {
	id, err := ParseInvoiceID(r)
	if err != nil {
		s.respondFailure(w, r, http.StatusBadRequest, msgInvalidID, formValues{})
		return
	}
	err = apply(r.Context(), id)
	if err != nil && !ledger.IsPersistence(err) {
		status, msg := classify(err)
		s.respondFailure(w, r, status, msg, formValues{})
		return
	}
	s.respondChanged(w, r, op, id, okMsg, err)
}

// handleDeleteInvoice removes an invoice. Deleting an unknown id is not an error.
func (s *Server) handleDeleteInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := ParseInvoiceID(r)
	if err != nil {
		s.respondFailure(w, r, http.StatusBadRequest, msgInvalidID, formValues{})
		return
	}
	_, err = s.svc.DeleteInvoice(r.Context(), id)
	if err != nil && !ledger.IsPersistence(err) {
		status, msg := classify(err)
		s.respondFailure(w, r, status, msg, formValues{})
		return
	}
	s.respondChanged(w, r, applog.OpDelete, id, msgDeleted, err)
}

// respondChanged answers a mutation that took effect. saveErr is the
// persistence failure, if any: the page still shows the change but warns
// that it was not saved.
func (s *Server) respondChanged(w http.ResponseWriter, r *http.Request, op string, id int64, okMsg string, saveErr error) {
	f, _ := ParseFilter(r.URL.Query())
	data := s.pageData(f)

	if saveErr != nil {
		data.Error = msgNotSaved
		if !isHTMX(r) {
			s.render(w, r, http.StatusInternalServerError, "index.html", data)
			return
		}
	}

	if !isHTMX(r) {
		http.Redirect(w, r, "/"+data.FilterQuery, http.StatusSeeOther)
		return
	}

	body, err := s.renderLedger(r, data)
	if err != nil {
		InternalServerError(msgTemplateFailure).Write(w)
		return
	}

	resp := NewHTMXResponse().TriggerLedgerChanged(op, id).BodyHTML(body)
	if saveErr != nil {
		resp.TriggerWarningNotification(msgNotSaved)
	} else {
		resp.TriggerSuccessNotification(okMsg)
	}
	if op == applog.OpCreate && saveErr == nil {
		resp.TriggerFormReset()
	}
	resp.Write(w)
}

// respondFailure answers a request that changed nothing.
func (s *Server) respondFailure(w http.ResponseWriter, r *http.Request, status int, msg string, form formValues) {
	if isHTMX(r) {
		ErrorResponse(status, msg).Write(w)
		return
	}
	f, _ := ParseFilter(r.URL.Query())
	data := s.pageData(f)
	data.Error = msg
	data.Form = form
	s.render(w, r, status, "index.html", data)
}

// classify maps service errors to an HTTP status and a user-facing message.
func classify(err error) (int, string) {
	var ve *ledger.ValidationError
	switch {
	case errors.As(err, &ve):
		if msg, ok := fieldMessages[ve.Field]; ok {
			return http.StatusUnprocessableEntity, msg
		}
		return http.StatusUnprocessableEntity, msgInvalidRequest
	case errors.Is(err, ledger.ErrNotFound):
		return http.StatusNotFound, msgNotFound
	case ledger.IsPersistence(err):
		return http.StatusInternalServerError, msgNotSaved
	default:
		return http.StatusInternalServerError, msgInvalidRequest
	}
}

// handleExportXLSX streams the whole ledger as a workbook.
func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	l := s.svc.Ledger()
	snap := sheets.Snapshot{
		Invoices:      l.List(),
		Now:           l.Now(),
		CurrencyLabel: s.currency,
	}

	var buf bytes.Buffer
	if err := excel.WriteTo(&buf, snap, excel.DefaultSheet); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Workbook export failed",
			applog.FieldOperation, applog.OpExport,
			applog.FieldError, err)
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}

	filename := "faturalar-" + snap.Now.UTC().Format(core.DateLayout) + ".xlsx"
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = w.Write(buf.Bytes())
}
