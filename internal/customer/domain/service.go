package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Cab6701/WaterService/pkg/db/pagination"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound        = errors.New("not_found")
	ErrReadingNotFound = errors.New("reading_not_found")
	ErrHasInvoices     = errors.New("cannot delete customer with existing invoices")
	ErrIDMismatch      = errors.New("id_mismatch")
)

// FieldError describes a single failed validation.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationError carries every failing field of a rejected request.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 1 {
		return fmt.Sprintf("validation failed: %s %s", e.Fields[0].Field, e.Fields[0].Code)
	}
	return fmt.Sprintf("validation failed: %d fields", len(e.Fields))
}

// NewValidationError builds a single-field validation error.
func NewValidationError(field, code, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Code: code, Message: message}}}
}

// InitialReading seeds a customer's first billing period at creation time.
type InitialReading struct {
	Year          int
	Quarter       int
	PreviousIndex decimal.Decimal
	CurrentIndex  decimal.Decimal
	RatePerUnit   decimal.Decimal
	Notes         string

	// InvoicePaid marks the paired invoice as already settled, with the
	// paid date set to creation time. Used for historical imports and
	// sample data.
	InvoicePaid bool
}

type CreateCustomerRequest struct {
	Name             string
	Address          string
	PhoneNumber      string
	Notes            string
	Status           CustomerStatus
	RegistrationDate *time.Time

	// Optional: when present the registry also issues the paired invoice.
	InitialReading *InitialReading
}

// UpdateCustomerRequest carries only the mutable fields. ID, CustomerCode,
// and RegistrationDate are fixed at creation and never edited.
type UpdateCustomerRequest struct {
	ID          int64
	Name        string
	Address     string
	PhoneNumber string
	Notes       string
	Status      CustomerStatus
}

// ListCustomersRequest filters are lenient: status strings that do not parse
// and period halves that are absent simply do not constrain the result.
type ListCustomersRequest struct {
	Search   string
	Status   string
	Year     *int
	Quarter  *int
	Page     int
	PageSize int
}

type ListCustomersResponse struct {
	pagination.PageInfo
	Customers []Customer `json:"customers"`
}

type UpsertReadingRequest struct {
	CustomerID    int64
	ReadingID     int64 // zero means create
	Year          int
	Quarter       int
	PreviousIndex decimal.Decimal
	CurrentIndex  decimal.Decimal
	RatePerUnit   decimal.Decimal
	Notes         string
}

type BulkSetStatusRequest struct {
	IDs    []int64
	Status CustomerStatus
}

type BulkSetStatusResponse struct {
	UpdatedCount int `json:"updated_count"`
}

// Service is the billing core's boundary contract. The presentation layer
// supplies type-coerced values and maps the error taxonomy onto responses.
type Service interface {
	List(ctx context.Context, req ListCustomersRequest) (ListCustomersResponse, error)
	GetByID(ctx context.Context, id int64) (Customer, error)
	Create(ctx context.Context, req CreateCustomerRequest) (Customer, error)
	Update(ctx context.Context, req UpdateCustomerRequest) (Customer, error)
	Delete(ctx context.Context, id int64) error
	BulkSetStatus(ctx context.Context, req BulkSetStatusRequest) (BulkSetStatusResponse, error)
	UpsertReading(ctx context.Context, req UpsertReadingRequest) (MeterReading, error)
	DeleteReading(ctx context.Context, customerID, readingID int64) error
	ExportCSV(ctx context.Context, ids []int64) ([]byte, error)
}

// Store is the optional persistence collaborator. The registry owns all
// state in memory; a store only mirrors it across restarts.
type Store interface {
	LoadAll(ctx context.Context) ([]Customer, error)
	SaveCustomer(ctx context.Context, customer Customer) error
	DeleteCustomer(ctx context.Context, id int64) error
}
