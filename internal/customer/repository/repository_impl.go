// Package repository persists registry snapshots through gorm.
package repository

import (
	"context"

	"github.com/Cab6701/WaterService/internal/customer/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type store struct {
	db *gorm.DB
}

// Provide builds the snapshot store. A nil database handle means snapshots
// are disabled; the registry then runs purely in memory.
func Provide(db *gorm.DB) (domain.Store, error) {
	if db == nil {
		return nil, nil
	}
	if err := db.AutoMigrate(&domain.Customer{}, &domain.MeterReading{}, &domain.Invoice{}); err != nil {
		return nil, err
	}
	return &store{db: db}, nil
}

func (s *store) LoadAll(ctx context.Context) ([]domain.Customer, error) {
	var customers []domain.Customer
	err := s.db.WithContext(ctx).
		Preload("MeterReadings").
		Preload("Invoices").
		Order("id").
		Find(&customers).Error
	if err != nil {
		return nil, err
	}
	return customers, nil
}

// SaveCustomer replaces the customer's snapshot wholesale. The registry is
// the authority; rows here only mirror its state.
func (s *store) SaveCustomer(ctx context.Context, customer domain.Customer) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		readings := customer.MeterReadings
		invoices := customer.Invoices
		customer.MeterReadings = nil
		customer.Invoices = nil

		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&customer).Error; err != nil {
			return err
		}
		if err := tx.Where("customer_id = ?", customer.ID).Delete(&domain.MeterReading{}).Error; err != nil {
			return err
		}
		if err := tx.Where("customer_id = ?", customer.ID).Delete(&domain.Invoice{}).Error; err != nil {
			return err
		}
		if len(readings) > 0 {
			if err := tx.Create(&readings).Error; err != nil {
				return err
			}
		}
		if len(invoices) > 0 {
			if err := tx.Create(&invoices).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *store) DeleteCustomer(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("customer_id = ?", id).Delete(&domain.MeterReading{}).Error; err != nil {
			return err
		}
		if err := tx.Where("customer_id = ?", id).Delete(&domain.Invoice{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&domain.Customer{}).Error
	})
}
