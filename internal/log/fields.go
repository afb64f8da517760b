package log

// Common field names for structured logging. Raw passwords and token
// strings must never appear as values for any of these.
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldOperation  = "operation"

	FieldUserID      = "user_id"
	FieldEmail       = "email"
	FieldExpenseID   = "expense_id"
	FieldItem        = "item"
	FieldAmountCents = "amount_cents"
	FieldCategory    = "category"
	FieldYear        = "year"
	FieldMonth       = "month"
	FieldEventID     = "event_id"
	FieldEventAction = "event_action"
)

// Standard component names.
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentAuth    = "auth"
	ComponentExpense = "expense"
	ComponentAccount = "account"
	ComponentStorage = "storage"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentCache   = "cache"
)
