// Package seed populates sample customers for local development.
package seed

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/Cab6701/WaterService/internal/clock"
	"github.com/Cab6701/WaterService/internal/config"
	"github.com/Cab6701/WaterService/internal/customer/domain"
	"github.com/Cab6701/WaterService/internal/customer/registry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	sampleFirstNames = []string{"Nguyen", "Tran", "Le", "Pham", "Hoang", "Dang", "Bui", "Do", "Phan", "Vu"}
	sampleLastNames  = []string{"Anh", "Binh", "Cuong", "Dung", "Hoa", "Hung", "Khanh", "Linh", "Minh", "Nam", "Phong", "Quang", "Son", "Trang", "Tuan"}
	sampleStreets    = []string{"Tran Phu", "Le Loi", "Hai Ba Trung", "Nguyen Hue", "Ly Thuong Kiet", "Dien Bien Phu", "Cach Mang Thang Tam", "Vo Thi Sau", "Pham Ngu Lao", "Ba Trieu"}
)

var sampleRate = decimal.NewFromInt(10000)

// EnsureSampleCustomers is the idempotent bootstrap call: it creates the
// configured number of sample customers, each with one reading for the
// current period and its paired invoice already settled, and does nothing
// when the registry already holds data.
func EnsureSampleCustomers(ctx context.Context, cfg config.Config, reg *registry.Registry, clk clock.Clock, log *zap.Logger) error {
	if !cfg.Seed.Enabled {
		return nil
	}
	if reg.Count() > 0 {
		return nil
	}

	period := domain.CurrentPeriod(clk)
	rng := rand.New(rand.NewSource(clk.Now().UnixNano()))

	created := 0
	for i := 0; i < cfg.Seed.Customers; i++ {
		firstName := sampleFirstNames[rng.Intn(len(sampleFirstNames))]
		lastName := sampleLastNames[rng.Intn(len(sampleLastNames))]
		street := sampleStreets[rng.Intn(len(sampleStreets))]

		previous := decimal.NewFromInt(int64(rng.Intn(400) + 100))
		current := previous.Add(decimal.NewFromInt(int64(rng.Intn(500) + 1)))
		registered := clk.Now().UTC().AddDate(0, 0, -rng.Intn(400))

		_, err := reg.Create(ctx, domain.CreateCustomerRequest{
			Name:             fmt.Sprintf("%s %s", firstName, lastName),
			Address:          fmt.Sprintf("%d %s", rng.Intn(200)+1, street),
			PhoneNumber:      fmt.Sprintf("09%08d", rng.Intn(100000000)),
			Notes:            "sample",
			Status:           domain.CustomerStatusActive,
			RegistrationDate: &registered,
			InitialReading: &domain.InitialReading{
				Year:          period.Year,
				Quarter:       period.Quarter,
				PreviousIndex: previous,
				CurrentIndex:  current,
				RatePerUnit:   sampleRate,
				InvoicePaid:   true,
			},
		})
		if err != nil {
			return err
		}
		created++
	}

	log.Info("sample customers seeded", zap.Int("count", created))
	return nil
}
