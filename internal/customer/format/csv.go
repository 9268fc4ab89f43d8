// Package format renders customer collections for export.
package format

import (
	"bytes"
	"encoding/csv"

	"github.com/Cab6701/WaterService/internal/customer/domain"
)

var csvHeader = []string{"Customer Code", "Name", "Phone", "Address", "Status", "Registration Date"}

// WriteCSV renders one row per customer in header order. Fields are quoted
// per RFC 4180, so embedded commas survive the round trip.
func WriteCSV(customers []domain.Customer) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, customer := range customers {
		registration := ""
		if customer.RegistrationDate != nil {
			registration = customer.RegistrationDate.UTC().Format("2006-01-02")
		}
		row := []string{
			customer.CustomerCode,
			customer.Name,
			customer.PhoneNumber,
			customer.Address,
			string(customer.Status),
			registration,
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
