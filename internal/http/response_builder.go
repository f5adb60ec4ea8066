// This file implements the Builder Pattern for constructing HTMX responses and
// the small JSON writers used by the API.

package http

import (
	"encoding/json"
	"html/template"
	"net/http"
)

// HTMX events the page listens to.
const (
	EventLedgerChanged    = "ledger:changed"
	EventFormReset        = "form:reset"
	EventShowNotification = "show-notification"
)

// HTMXResponseBuilder provides a fluent API for building HTMX responses.
// It encapsulates the construction of HX-Trigger headers and response bodies.
type HTMXResponseBuilder struct {
	triggers   map[string]interface{}
	statusCode int
	body       []byte
	headers    map[string]string
}

// NewHTMXResponse creates a new response builder with default 200 status.
func NewHTMXResponse() *HTMXResponseBuilder {
	return &HTMXResponseBuilder{
		triggers:   make(map[string]interface{}),
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *HTMXResponseBuilder) Status(code int) *HTMXResponseBuilder {
	b.statusCode = code
	return b
}

// Trigger adds a named trigger with optional data to the HX-Trigger header.
func (b *HTMXResponseBuilder) Trigger(name string, data interface{}) *HTMXResponseBuilder {
	b.triggers[name] = data
	return b
}

// TriggerLedgerChanged tells listeners which operation touched which invoice.
func (b *HTMXResponseBuilder) TriggerLedgerChanged(op string, id int64) *HTMXResponseBuilder {
	return b.Trigger(EventLedgerChanged, map[string]interface{}{"operation": op, "id": id})
}

// TriggerFormReset clears the add-invoice form.
func (b *HTMXResponseBuilder) TriggerFormReset() *HTMXResponseBuilder {
	return b.Trigger(EventFormReset, struct{}{})
}

// NotificationType represents the type of notification to display.
type NotificationType string

const (
	NotificationSuccess NotificationType = "success"
	NotificationError   NotificationType = "error"
	NotificationWarning NotificationType = "warning"
)

// TriggerNotification adds a show-notification trigger with the specified parameters.
func (b *HTMXResponseBuilder) TriggerNotification(notifType NotificationType, message string, durationMs int) *HTMXResponseBuilder {
	return b.Trigger(EventShowNotification, map[string]interface{}{
		"type":     string(notifType),
		"message":  message,
		"duration": durationMs,
	})
}

func (b *HTMXResponseBuilder) TriggerSuccessNotification(message string) *HTMXResponseBuilder {
	return b.TriggerNotification(NotificationSuccess, message, 3000)
}

// TriggerWarningNotification is used when a change was applied but not saved.
func (b *HTMXResponseBuilder) TriggerWarningNotification(message string) *HTMXResponseBuilder {
	return b.TriggerNotification(NotificationWarning, message, 8000)
}

func (b *HTMXResponseBuilder) TriggerErrorNotification(message string) *HTMXResponseBuilder {
	return b.TriggerNotification(NotificationError, message, 5000)
}

// Header adds a custom header to the response.
func (b *HTMXResponseBuilder) Header(name, value string) *HTMXResponseBuilder {
	b.headers[name] = value
	return b
}

// BodyHTML sets the response body as HTML content.
func (b *HTMXResponseBuilder) BodyHTML(html []byte) *HTMXResponseBuilder {
	b.headers["Content-Type"] = "text/html; charset=utf-8"
	b.body = html
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *HTMXResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}

	if len(b.triggers) > 0 {
		if triggerJSON, err := json.Marshal(b.triggers); err == nil {
			w.Header().Set("HX-Trigger", string(triggerJSON))
		}
	}

	w.WriteHeader(b.statusCode)
	if len(b.body) > 0 {
		_, _ = w.Write(b.body)
	}
}

// ErrorResponse creates a standard error response with HTML formatting.
// The message is HTML-escaped and also sent as an error notification.
func ErrorResponse(statusCode int, message string) *HTMXResponseBuilder {
	escapedMsg := template.HTMLEscapeString(message)
	return NewHTMXResponse().
		Status(statusCode).
		TriggerErrorNotification(message).
		BodyHTML([]byte(`<div class="error" role="alert">` + escapedMsg + `</div>`))
}

func BadRequestError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

func UnprocessableEntityError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusUnprocessableEntity, message)
}

func NotFoundError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

func InternalServerError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, message)
}

// apiError is the JSON error body.
type apiError struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
	// Applied is set when the change took effect in memory but was not saved.
	Applied bool `json:"applied,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(true)
	_ = enc.Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, body apiError) {
	writeJSON(w, status, body)
}
