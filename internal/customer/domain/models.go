// Package domain contains the water-billing customer model.
package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CustomerStatus represents customer lifecycle states.
type CustomerStatus string

const (
	CustomerStatusActive   CustomerStatus = "ACTIVE"
	CustomerStatusInactive CustomerStatus = "INACTIVE"
)

// ParseCustomerStatus reports the canonical status for a filter value.
// Unknown values return false so callers can degrade to "no filter".
func ParseCustomerStatus(value string) (CustomerStatus, bool) {
	switch CustomerStatus(strings.ToUpper(strings.TrimSpace(value))) {
	case CustomerStatusActive:
		return CustomerStatusActive, true
	case CustomerStatusInactive:
		return CustomerStatusInactive, true
	default:
		return "", false
	}
}

// InvoiceStatus represents invoice lifecycle states.
type InvoiceStatus string

const (
	InvoiceStatusPending   InvoiceStatus = "PENDING"
	InvoiceStatusPaid      InvoiceStatus = "PAID"
	InvoiceStatusOverdue   InvoiceStatus = "OVERDUE"
	InvoiceStatusCancelled InvoiceStatus = "CANCELLED"
)

// ParseInvoiceStatus reports the canonical status for a filter value.
func ParseInvoiceStatus(value string) (InvoiceStatus, bool) {
	switch InvoiceStatus(strings.ToUpper(strings.TrimSpace(value))) {
	case InvoiceStatusPending:
		return InvoiceStatusPending, true
	case InvoiceStatusPaid:
		return InvoiceStatusPaid, true
	case InvoiceStatusOverdue:
		return InvoiceStatusOverdue, true
	case InvoiceStatusCancelled:
		return InvoiceStatusCancelled, true
	default:
		return "", false
	}
}

// Customer is the aggregate root owning meter readings and invoices.
// CustomerCode is assigned once at creation and never changes.
type Customer struct {
	ID               int64          `json:"id" gorm:"primaryKey"`
	CustomerCode     string         `json:"customer_code" gorm:"type:text;not null;uniqueIndex"`
	Name             string         `json:"name" gorm:"type:text;not null"`
	Address          string         `json:"address" gorm:"type:text;not null"`
	PhoneNumber      string         `json:"phone_number" gorm:"type:text;not null"`
	Notes            string         `json:"notes,omitempty" gorm:"type:text"`
	Status           CustomerStatus `json:"status" gorm:"type:text;not null;default:'ACTIVE'"`
	RegistrationDate *time.Time     `json:"registration_date,omitempty"`
	CreatedAt        time.Time      `json:"created_at" gorm:"not null"`
	UpdatedAt        time.Time      `json:"updated_at" gorm:"not null"`

	MeterReadings []MeterReading `json:"meter_readings" gorm:"foreignKey:CustomerID"`
	Invoices      []Invoice      `json:"invoices" gorm:"foreignKey:CustomerID"`
}

// TableName sets the database table name.
func (Customer) TableName() string { return "customers" }

// MeterReading records one customer's consumption for one billing period.
// Consumption and the billable total are always derived from the stored
// indexes, never persisted, so they cannot drift.
type MeterReading struct {
	ID            int64           `json:"id" gorm:"primaryKey"`
	CustomerID    int64           `json:"customer_id" gorm:"not null;index"`
	Year          int             `json:"year" gorm:"not null"`
	Quarter       int             `json:"quarter" gorm:"not null"`
	PreviousIndex decimal.Decimal `json:"previous_index" gorm:"type:numeric;not null"`
	CurrentIndex  decimal.Decimal `json:"current_index" gorm:"type:numeric;not null"`
	RatePerUnit   decimal.Decimal `json:"rate_per_unit" gorm:"type:numeric;not null"`
	Notes         string          `json:"notes,omitempty" gorm:"type:text"`
	CreatedAt     time.Time       `json:"created_at" gorm:"not null"`
	UpdatedAt     time.Time       `json:"updated_at" gorm:"not null"`
}

// TableName sets the database table name.
func (MeterReading) TableName() string { return "meter_readings" }

// Consumption is the metered usage for the period.
func (r MeterReading) Consumption() decimal.Decimal {
	return r.CurrentIndex.Sub(r.PreviousIndex)
}

// TotalAmount is the billable amount for the period.
func (r MeterReading) TotalAmount() decimal.Decimal {
	return r.Consumption().Mul(r.RatePerUnit)
}

// Period reports the reading's billing period.
func (r MeterReading) Period() Period {
	return Period{Year: r.Year, Quarter: r.Quarter}
}

// Invoice is a billing statement derived from one meter reading. Amount is
// captured from the reading at creation time and kept as its own field; the
// reading back-reference stays available for reconciliation.
type Invoice struct {
	ID             int64           `json:"id" gorm:"primaryKey"`
	CustomerID     int64           `json:"customer_id" gorm:"not null;index"`
	InvoiceNumber  string          `json:"invoice_number" gorm:"type:text;not null;uniqueIndex"`
	Year           int             `json:"year" gorm:"not null"`
	Quarter        int             `json:"quarter" gorm:"not null"`
	Amount         decimal.Decimal `json:"amount" gorm:"type:numeric;not null"`
	Status         InvoiceStatus   `json:"status" gorm:"type:text;not null;default:'PENDING'"`
	DueDate        time.Time       `json:"due_date" gorm:"not null"`
	PaidDate       *time.Time      `json:"paid_date,omitempty"`
	MeterReadingID *int64          `json:"meter_reading_id,omitempty" gorm:"index"`
	CreatedAt      time.Time       `json:"created_at" gorm:"not null"`
	UpdatedAt      time.Time       `json:"updated_at" gorm:"not null"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }
