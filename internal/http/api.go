package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"fatura/internal/core"
	"fatura/internal/ledger"
	applog "fatura/internal/log"
	"fatura/internal/services"
)

// invoiceJSON is the API view of one invoice. Field names follow the stored
// record; effectiveStatus and actions are evaluated at request time.
type invoiceJSON struct {
	ID              int64         `json:"id"`
	CustomerName    string        `json:"customerName"`
	Amount          core.Money    `json:"amount"`
	DueDate         core.Date     `json:"dueDate"`
	Status          core.Status   `json:"status"`
	EffectiveStatus core.Status   `json:"effectiveStatus"`
	PastDue         bool          `json:"pastDue"`
	Actions         []core.Action `json:"actions"`
}

type summaryJSON struct {
	Receivable core.Money `json:"receivable"`
	Collected  core.Money `json:"collected"`
	Overdue    core.Money `json:"overdue"`
	Currency   string     `json:"currency"`
}

type listJSON struct {
	Invoices []invoiceJSON `json:"invoices"`
	Summary  summaryJSON   `json:"summary"`
	Total    int           `json:"total"`
	Now      time.Time     `json:"now"`
}

func toInvoiceJSON(row services.Row) invoiceJSON {
	return invoiceJSON{
		ID:              row.ID,
		CustomerName:    row.CustomerName,
		Amount:          row.Amount,
		DueDate:         row.DueDate,
		Status:          row.Status,
		EffectiveStatus: row.Effective,
		PastDue:         row.PastDue,
		Actions:         row.Actions,
	}
}

func (s *Server) toSummaryJSON(sum core.Summary) summaryJSON {
	return summaryJSON{
		Receivable: sum.Receivable,
		Collected:  sum.Collected,
		Overdue:    sum.Overdue,
		Currency:   s.currency,
	}
}

// handleAPIList returns the filtered invoices and the whole-ledger summary.
func (s *Server) handleAPIList(w http.ResponseWriter, r *http.Request) {
	f, err := ParseFilter(r.URL.Query())
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, apiError{Error: err.Error(), Field: paramDueDate})
		return
	}

	view := s.svc.List(f)
	out := listJSON{
		Invoices: make([]invoiceJSON, 0, len(view.Rows)),
		Summary:  s.toSummaryJSON(view.Summary),
		Total:    view.Total,
		Now:      view.Now.UTC(),
	}
	for _, row := range view.Rows {
		out.Invoices = append(out.Invoices, toInvoiceJSON(row))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAPIGet(w http.ResponseWriter, r *http.Request) {
	id, err := ParseInvoiceID(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, apiError{Error: err.Error()})
		return
	}
	inv, err := s.svc.Get(id)
	if err != nil {
		s.writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.row(inv))
}

func (s *Server) handleAPICreate(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		writeJSONError(w, http.StatusBadRequest, apiError{Error: err.Error()})
		return
	}

	inv, err := s.svc.CreateInvoice(r.Context(), p.AddRequest())
	if err != nil {
		s.writeAPIError(w, err)
		return
	}
	w.Header().Set("Location", "/api/invoices/"+strconv.FormatInt(inv.ID, 10))
	writeJSON(w, http.StatusCreated, s.row(inv))
}

func (s *Server) handleAPIMarkPaid(w http.ResponseWriter, r *http.Request) {
	s.apiStatusChange(w, r, s.svc.MarkPaid)
}

func (s *Server) handleAPIMarkOverdue(w http.ResponseWriter, r *http.Request) {
	s.apiStatusChange(w, r, s.svc.MarkOverdue)
}

func (s *Server) apiStatusChange(w http.ResponseWriter, r *http.Request, apply func(context.Context, int64) error) {
	id, err := ParseInvoiceID(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, apiError{Error: err.Error()})
		return
	}
	if err := apply(r.Context(), id); err != nil {
		s.writeAPIError(w, err)
		return
	}
	inv, err := s.svc.Get(id)
	if err != nil {
		s.writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.row(inv))
}

// handleAPIDelete answers 204 whether or not the id existed.
func (s *Server) handleAPIDelete(w http.ResponseWriter, r *http.Request) {
	id, err := ParseInvoiceID(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, apiError{Error: err.Error()})
		return
	}
	if _, err := s.svc.DeleteInvoice(r.Context(), id); err != nil {
		s.writeAPIError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAPISummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.toSummaryJSON(s.svc.Summary()))
}

func (s *Server) row(inv core.Invoice) invoiceJSON {
	return toInvoiceJSON(services.BuildRows([]core.Invoice{inv}, s.svc.Ledger().Now())[0])
}

func (s *Server) writeAPIError(w http.ResponseWriter, err error) {
	var ve *ledger.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSONError(w, http.StatusUnprocessableEntity, apiError{Error: err.Error(), Field: ve.Field})
	case errors.Is(err, ledger.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, apiError{Error: err.Error()})
	case ledger.IsPersistence(err):
		writeJSONError(w, http.StatusInternalServerError, apiError{
			Error:   "change applied but not saved: " + err.Error(),
			Applied: true,
		})
	default:
		s.logger.Error("Unexpected API error", applog.FieldError, err)
		writeJSONError(w, http.StatusInternalServerError, apiError{Error: "internal error"})
	}
}
