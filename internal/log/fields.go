package log

import "github.com/shopspring/decimal"

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldCategory    = "category"
	FieldCategoryID  = "category_id"
	FieldTarget      = "target"
	FieldAmount      = "amount"
	FieldBalance     = "balance"
	FieldDescription = "description"
	FieldSeq         = "seq"
	FieldEntries     = "entries"
	FieldSuccess     = "success"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldBackend     = "backend"
	FieldPath        = "path"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentBook    = "book"
	ComponentStorage = "storage"
	ComponentAMQP    = "amqp"
	ComponentKafka   = "kafka"
	ComponentWorker  = "worker"
	ComponentExport  = "export"
)

// Operations defines standard operation names
const (
	OpOpen     = "open"
	OpDeposit  = "deposit"
	OpWithdraw = "withdraw"
	OpTransfer = "transfer"
	OpChart    = "chart"
	OpLoad     = "load"
	OpPublish  = "publish"
	OpExport   = "export"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithMovement adds the fields describing one ledger movement.
func (f LogFields) WithMovement(category string, amount decimal.Decimal, description string) LogFields {
	f[FieldCategory] = category
	f[FieldAmount] = amount.String()
	if description != "" {
		f[FieldDescription] = description
	}
	return f
}

// WithTarget adds the receiving category of a transfer.
func (f LogFields) WithTarget(target string) LogFields {
	f[FieldTarget] = target
	return f
}

// WithSuccess records whether a guarded movement went through.
func (f LogFields) WithSuccess(ok bool) LogFields {
	f[FieldSuccess] = ok
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
