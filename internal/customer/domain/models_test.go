package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestReadingDerivedValues(t *testing.T) {
	reading := MeterReading{
		PreviousIndex: decimal.NewFromInt(100),
		CurrentIndex:  decimal.NewFromInt(150),
		RatePerUnit:   decimal.NewFromInt(10000),
	}

	assert.True(t, reading.Consumption().Equal(decimal.NewFromInt(50)))
	assert.True(t, reading.TotalAmount().Equal(decimal.NewFromInt(500000)))

	// Derived values follow the stored fields immediately.
	reading.CurrentIndex = decimal.NewFromInt(160)
	assert.True(t, reading.Consumption().Equal(decimal.NewFromInt(60)))
	assert.True(t, reading.TotalAmount().Equal(decimal.NewFromInt(600000)))
}

func TestReadingDerivedValuesFractional(t *testing.T) {
	reading := MeterReading{
		PreviousIndex: decimal.RequireFromString("100.5"),
		CurrentIndex:  decimal.RequireFromString("103.25"),
		RatePerUnit:   decimal.RequireFromString("10000"),
	}

	assert.True(t, reading.Consumption().Equal(decimal.RequireFromString("2.75")))
	assert.True(t, reading.TotalAmount().Equal(decimal.RequireFromString("27500")))
}

func TestParseCustomerStatus(t *testing.T) {
	status, ok := ParseCustomerStatus("active")
	assert.True(t, ok)
	assert.Equal(t, CustomerStatusActive, status)

	status, ok = ParseCustomerStatus(" INACTIVE ")
	assert.True(t, ok)
	assert.Equal(t, CustomerStatusInactive, status)

	_, ok = ParseCustomerStatus("bogus")
	assert.False(t, ok)

	_, ok = ParseCustomerStatus("")
	assert.False(t, ok)
}

func TestParseInvoiceStatus(t *testing.T) {
	for _, value := range []string{"pending", "paid", "overdue", "cancelled"} {
		status, ok := ParseInvoiceStatus(value)
		assert.True(t, ok, value)
		assert.NotEmpty(t, status)
	}

	_, ok := ParseInvoiceStatus("abandoned")
	assert.False(t, ok)
}
