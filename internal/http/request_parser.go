// Package http serves the invoice ledger as an HTML page and a JSON API.
//
// This file holds the request parsing helpers shared by both surfaces: filter
// query parameters, invoice ids from the path, and add-invoice bodies sent as
// either form data or JSON.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"fatura/internal/core"
	"fatura/internal/ledger"
)

// maxBodyBytes bounds add-invoice request bodies.
const maxBodyBytes = 64 << 10

// Query and form field names. They match the element ids of the page.
const (
	paramStatus       = "status"
	paramDueDate      = "dueDate"
	paramCustomerName = "customerName"
	paramAmount       = "amount"
)

var errInvalidID = errors.New("invalid invoice id")

// ParseFilter reads the status and dueDate selectors. An empty or unknown
// status selects everything; a malformed date is reported.
func ParseFilter(query url.Values) (core.Filter, error) {
	f := core.Filter{Status: core.AllStatuses}

	if sf, err := core.ParseStatusFilter(query.Get(paramStatus)); err == nil {
		f.Status = sf
	}

	due := strings.TrimSpace(query.Get(paramDueDate))
	if due == "" {
		return f, nil
	}
	d, err := core.ParseDate(due)
	if err != nil {
		return f, err
	}
	f.DueDate = d.String()
	return f, nil
}

// FilterQuery renders f back into query parameters, omitting defaults.
func FilterQuery(f core.Filter) url.Values {
	q := url.Values{}
	if f.Status != "" && f.Status != core.AllStatuses {
		q.Set(paramStatus, string(f.Status))
	}
	if f.DueDate != "" {
		q.Set(paramDueDate, f.DueDate)
	}
	return q
}

// ParseInvoiceID reads the {id} path value.
func ParseInvoiceID(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(r.PathValue("id"))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", errInvalidID, raw)
	}
	return id, nil
}

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data, commonly used with HTMX.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]interface{}
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser reads at most maxBodyBytes of the request body once.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if p.body[0] == '{' || strings.HasPrefix(p.contentType, "application/json") {
		p.jsonData = make(map[string]interface{})
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.jsonData = nil
			p.err = fmt.Errorf("decode JSON body: %w", err)
			return p.err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// Get returns a string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

// AddRequest maps the parsed body onto a ledger add request. Field names
// follow the persisted record: customerName, amount, dueDate, status.
func (p *RequestBodyParser) AddRequest() ledger.AddRequest {
	return ledger.AddRequest{
		CustomerName: p.Get(paramCustomerName),
		Amount:       p.Get(paramAmount),
		DueDate:      p.Get(paramDueDate),
		Status:       p.Get(paramStatus),
	}
}

// stringValue converts a decoded JSON value to its string form. Numbers keep
// their shortest decimal spelling so 150.5 stays "150.5".
func stringValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// sanitizeInput trims whitespace and drops control characters other than
// tab, newline and carriage return.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}
