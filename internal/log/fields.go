package log

// Common field names for structured logging
const (
	FieldComponent     = "component"
	FieldRequestID     = "request_id"
	FieldClientIP      = "client_ip"
	FieldMethod        = "method"
	FieldPath          = "path"
	FieldQuery         = "query"
	FieldStatusCode    = "status_code"
	FieldDuration      = "duration_ms"
	FieldDurationHuman = "duration_human"
	FieldUserAgent     = "user_agent"
	FieldSuccess       = "success"
	FieldError         = "error"
	FieldErrorType     = "error_type"
	FieldOperation     = "operation"
	FieldInvoiceID     = "invoice_id"
	FieldCustomer      = "customer_name"
	FieldAmountCents   = "amount_cents"
	FieldDueDate       = "due_date"
	FieldStatus        = "status"
	FieldBackend       = "backend"
	FieldLedgerKey     = "ledger_key"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentLedger    = "ledger"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentSheets    = "sheets"
	ComponentSecurity  = "security"
	ComponentRateLimit = "rate_limit"
	ComponentBackend   = "backend"
	ComponentCLI       = "cli"
)

// Operations defines standard operation names
const (
	OpCreate      = "create"
	OpList        = "list"
	OpMarkPaid    = "mark_paid"
	OpMarkOverdue = "mark_overdue"
	OpDelete      = "delete"
	OpSummary     = "summary"
	OpExport      = "export"
	OpSync        = "sync"
	OpShutdown    = "shutdown"
	OpStartup     = "startup"
)

// ErrorTypes defines standard error type categories
const (
	ErrorTypeValidation    = "validation_error"
	ErrorTypeConfiguration = "configuration_error"
	ErrorTypePersistence   = "persistence_error"
	ErrorTypeNotFound      = "not_found_error"
	ErrorTypeInternal      = "internal_error"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithComponent adds component field
func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithRequestID adds request ID field
func (f LogFields) WithRequestID(requestID string) LogFields {
	f[FieldRequestID] = requestID
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithErrorType adds the error category
func (f LogFields) WithErrorType(errorType string) LogFields {
	f[FieldErrorType] = errorType
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithInvoiceID adds the invoice id
func (f LogFields) WithInvoiceID(id int64) LogFields {
	f[FieldInvoiceID] = id
	return f
}

// WithInvoice adds invoice-related fields
func (f LogFields) WithInvoice(id int64, customer string, amountCents int64, dueDate, status string) LogFields {
	f[FieldInvoiceID] = id
	f[FieldCustomer] = customer
	f[FieldAmountCents] = amountCents
	f[FieldDueDate] = dueDate
	f[FieldStatus] = status
	return f
}

// WithHTTPRequest adds HTTP request fields
func (f LogFields) WithHTTPRequest(method, path, query, userAgent string) LogFields {
	f[FieldMethod] = method
	f[FieldPath] = path
	f[FieldQuery] = query
	f[FieldUserAgent] = userAgent
	return f
}

// WithHTTPResponse adds HTTP response fields
func (f LogFields) WithHTTPResponse(statusCode int, durationMs int64, success bool) LogFields {
	f[FieldStatusCode] = statusCode
	f[FieldDuration] = durationMs
	f[FieldSuccess] = success
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
