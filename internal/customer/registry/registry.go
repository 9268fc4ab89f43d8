// Package registry holds the in-memory customer store and implements the
// billing core's service contract. All state lives in one guarded map; an
// optional Store mirrors it across restarts.
package registry

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/Cab6701/WaterService/internal/clock"
	"github.com/Cab6701/WaterService/internal/customer/domain"
	"github.com/Cab6701/WaterService/internal/customer/format"
	"github.com/Cab6701/WaterService/internal/observability/metrics"
	"github.com/Cab6701/WaterService/internal/sequence"
	"github.com/Cab6701/WaterService/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	maxNameLen         = 100
	maxAddressLen      = 500
	maxPhoneLen        = 15
	maxNotesLen        = 1000
	maxReadingNotesLen = 500

	invoiceDueDays = 30
)

var phonePattern = regexp.MustCompile(`^[0-9]{10,11}$`)

type Params struct {
	fx.In

	Log     *zap.Logger
	Clock   clock.Clock
	Store   domain.Store     `optional:"true"`
	Metrics *metrics.Metrics `optional:"true"`
}

// Registry owns all customers and the identifier sequences. One mutex
// serializes mutations; list and get run under the read lock and return
// deep copies, so callers never observe a torn write.
type Registry struct {
	mu      sync.RWMutex
	log     *zap.Logger
	clock   clock.Clock
	store   domain.Store
	metrics *metrics.Metrics
	seq     *sequence.Sequencer

	customers map[int64]*domain.Customer
}

func New(p Params) *Registry {
	return &Registry{
		log:       p.Log.Named("customer.registry"),
		clock:     p.Clock,
		store:     p.Store,
		metrics:   p.Metrics,
		seq:       sequence.New(),
		customers: make(map[int64]*domain.Customer),
	}
}

// Load restores state from the snapshot store and advances the sequences
// past every restored identifier. A registry without a store starts empty.
func (r *Registry) Load(ctx context.Context) error {
	if r.store == nil {
		return nil
	}

	customers, err := r.store.LoadAll(ctx)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range customers {
		customer := customers[i]
		r.customers[customer.ID] = &customer
		r.seq.Resume(sequence.KindCustomer, customer.ID)
		r.seq.Resume(sequence.KindCode, codeValue(customer.CustomerCode, "C"))
		for _, reading := range customer.MeterReadings {
			r.seq.Resume(sequence.KindReading, reading.ID)
		}
		for _, invoice := range customer.Invoices {
			r.seq.Resume(sequence.KindInvoice, invoice.ID)
			r.seq.Resume(sequence.KindCode, codeValue(invoice.InvoiceNumber, "INV"))
		}
	}

	r.log.Info("registry loaded", zap.Int("customers", len(customers)))
	return nil
}

// Count reports how many customers the registry holds.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.customers)
}

// List applies search, status, and period filters, sorts ascending by
// customer code, and paginates.
//
// The period filter matches customers owning a meter reading for the
// requested (year, quarter). It applies only when at least one half is
// supplied; the missing half defaults to the clock's current period.
// Status values that do not parse are ignored, not rejected.
func (r *Registry) List(ctx context.Context, req domain.ListCustomersRequest) (domain.ListCustomersResponse, error) {
	_ = ctx

	status, filterStatus := domain.ParseCustomerStatus(req.Status)
	period, filterPeriod := r.resolvePeriodFilter(req.Year, req.Quarter)
	search := strings.ToLower(strings.TrimSpace(req.Search))

	r.mu.RLock()
	matched := make([]domain.Customer, 0, len(r.customers))
	for _, customer := range r.customers {
		if search != "" && !matchesSearch(customer, search) {
			continue
		}
		if filterStatus && customer.Status != status {
			continue
		}
		if filterPeriod && !hasReadingFor(customer, period) {
			continue
		}
		matched = append(matched, cloneCustomer(customer))
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CustomerCode < matched[j].CustomerCode
	})

	page := pagination.Pagination{Page: req.Page, PageSize: req.PageSize}
	return domain.ListCustomersResponse{
		PageInfo:  pagination.BuildPageInfo(page, len(matched)),
		Customers: pagination.Slice(matched, page),
	}, nil
}

func (r *Registry) GetByID(ctx context.Context, id int64) (domain.Customer, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	customer, ok := r.customers[id]
	if !ok {
		return domain.Customer{}, domain.ErrNotFound
	}
	return cloneCustomer(customer), nil
}

// Create validates the fields, assigns the id, code, and timestamps, and,
// when an initial reading is supplied, issues the paired invoice.
func (r *Registry) Create(ctx context.Context, req domain.CreateCustomerRequest) (domain.Customer, error) {
	status := req.Status
	if status == "" {
		status = domain.CustomerStatusActive
	}
	if err := validateCustomerFields(req.Name, req.Address, req.PhoneNumber, req.Notes, status); err != nil {
		return domain.Customer{}, err
	}
	if req.InitialReading != nil {
		if err := validateReadingFields(req.InitialReading.Year, req.InitialReading.Quarter, req.InitialReading.Notes); err != nil {
			return domain.Customer{}, err
		}
	}

	now := r.clock.Now().UTC()

	r.mu.Lock()
	defer r.mu.Unlock()

	customer := &domain.Customer{
		ID:               r.seq.NextID(sequence.KindCustomer),
		CustomerCode:     fmt.Sprintf("C%06d", r.seq.NextID(sequence.KindCode)),
		Name:             strings.TrimSpace(req.Name),
		Address:          strings.TrimSpace(req.Address),
		PhoneNumber:      strings.TrimSpace(req.PhoneNumber),
		Notes:            strings.TrimSpace(req.Notes),
		Status:           status,
		RegistrationDate: req.RegistrationDate,
		CreatedAt:        now,
		UpdatedAt:        now,
		MeterReadings:    []domain.MeterReading{},
		Invoices:         []domain.Invoice{},
	}

	if init := req.InitialReading; init != nil {
		reading := domain.MeterReading{
			ID:            r.seq.NextID(sequence.KindReading),
			CustomerID:    customer.ID,
			Year:          init.Year,
			Quarter:       init.Quarter,
			PreviousIndex: init.PreviousIndex,
			CurrentIndex:  init.CurrentIndex,
			RatePerUnit:   init.RatePerUnit,
			Notes:         strings.TrimSpace(init.Notes),
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		customer.MeterReadings = append(customer.MeterReadings, reading)

		readingID := reading.ID
		invoice := domain.Invoice{
			ID:             r.seq.NextID(sequence.KindInvoice),
			CustomerID:     customer.ID,
			InvoiceNumber:  fmt.Sprintf("INV%06d", r.seq.NextID(sequence.KindCode)),
			Year:           reading.Year,
			Quarter:        reading.Quarter,
			Amount:         reading.TotalAmount(),
			Status:         domain.InvoiceStatusPending,
			DueDate:        now.AddDate(0, 0, invoiceDueDays),
			MeterReadingID: &readingID,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if init.InvoicePaid {
			paid := now
			invoice.Status = domain.InvoiceStatusPaid
			invoice.PaidDate = &paid
		}
		customer.Invoices = append(customer.Invoices, invoice)
	}

	r.customers[customer.ID] = customer
	r.writeThrough(ctx, customer)
	r.record(ctx, "customer.create")

	return cloneCustomer(customer), nil
}

// Update overwrites the mutable fields only. ID, CustomerCode, and
// RegistrationDate are immutable; values supplied for them are ignored.
func (r *Registry) Update(ctx context.Context, req domain.UpdateCustomerRequest) (domain.Customer, error) {
	if err := validateCustomerFields(req.Name, req.Address, req.PhoneNumber, req.Notes, req.Status); err != nil {
		return domain.Customer{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	customer, ok := r.customers[req.ID]
	if !ok {
		return domain.Customer{}, domain.ErrNotFound
	}

	customer.Name = strings.TrimSpace(req.Name)
	customer.Address = strings.TrimSpace(req.Address)
	customer.PhoneNumber = strings.TrimSpace(req.PhoneNumber)
	customer.Notes = strings.TrimSpace(req.Notes)
	customer.Status = req.Status
	customer.UpdatedAt = r.clock.Now().UTC()

	r.writeThrough(ctx, customer)
	r.record(ctx, "customer.update")

	return cloneCustomer(customer), nil
}

// Delete removes the customer and cascades to its readings and invoices.
// A customer still owning invoices cannot be deleted.
func (r *Registry) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	customer, ok := r.customers[id]
	if !ok {
		return domain.ErrNotFound
	}
	if len(customer.Invoices) > 0 {
		return domain.ErrHasInvoices
	}

	delete(r.customers, id)
	r.dropSnapshot(ctx, id)
	r.record(ctx, "customer.delete")
	return nil
}

// BulkSetStatus applies the status to every matching customer; ids that do
// not resolve are skipped, not an error.
func (r *Registry) BulkSetStatus(ctx context.Context, req domain.BulkSetStatusRequest) (domain.BulkSetStatusResponse, error) {
	if _, ok := domain.ParseCustomerStatus(string(req.Status)); !ok {
		return domain.BulkSetStatusResponse{}, domain.NewValidationError("status", "invalid_status", "unknown customer status")
	}

	now := r.clock.Now().UTC()

	r.mu.Lock()
	defer r.mu.Unlock()

	updated := 0
	for _, id := range req.IDs {
		customer, ok := r.customers[id]
		if !ok {
			continue
		}
		customer.Status = req.Status
		customer.UpdatedAt = now
		r.writeThrough(ctx, customer)
		updated++
	}

	r.record(ctx, "customer.bulk_status")
	return domain.BulkSetStatusResponse{UpdatedCount: updated}, nil
}

// UpsertReading creates a reading when no id is supplied and edits the
// matching reading in place otherwise. A customer holds at most one reading
// per (year, quarter); inserts and moves into an occupied period are
// rejected.
func (r *Registry) UpsertReading(ctx context.Context, req domain.UpsertReadingRequest) (domain.MeterReading, error) {
	if err := validateReadingFields(req.Year, req.Quarter, req.Notes); err != nil {
		return domain.MeterReading{}, err
	}

	now := r.clock.Now().UTC()

	r.mu.Lock()
	defer r.mu.Unlock()

	customer, ok := r.customers[req.CustomerID]
	if !ok {
		return domain.MeterReading{}, domain.ErrNotFound
	}

	period := domain.Period{Year: req.Year, Quarter: req.Quarter}
	if holder := occupiedBy(customer, period); holder != 0 && holder != req.ReadingID {
		return domain.MeterReading{}, domain.NewValidationError(
			"quarter", "period_taken", fmt.Sprintf("a reading already exists for %s", period))
	}

	if req.ReadingID > 0 {
		for i := range customer.MeterReadings {
			reading := &customer.MeterReadings[i]
			if reading.ID != req.ReadingID {
				continue
			}
			reading.Year = req.Year
			reading.Quarter = req.Quarter
			reading.PreviousIndex = req.PreviousIndex
			reading.CurrentIndex = req.CurrentIndex
			reading.RatePerUnit = req.RatePerUnit
			reading.Notes = strings.TrimSpace(req.Notes)
			reading.UpdatedAt = now
			customer.UpdatedAt = now

			r.writeThrough(ctx, customer)
			r.record(ctx, "reading.update")
			return *reading, nil
		}
		return domain.MeterReading{}, domain.ErrReadingNotFound
	}

	reading := domain.MeterReading{
		ID:            r.seq.NextID(sequence.KindReading),
		CustomerID:    customer.ID,
		Year:          req.Year,
		Quarter:       req.Quarter,
		PreviousIndex: req.PreviousIndex,
		CurrentIndex:  req.CurrentIndex,
		RatePerUnit:   req.RatePerUnit,
		Notes:         strings.TrimSpace(req.Notes),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	customer.MeterReadings = append(customer.MeterReadings, reading)
	customer.UpdatedAt = now

	r.writeThrough(ctx, customer)
	r.record(ctx, "reading.create")
	return reading, nil
}

func (r *Registry) DeleteReading(ctx context.Context, customerID, readingID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	customer, ok := r.customers[customerID]
	if !ok {
		return domain.ErrNotFound
	}

	for i := range customer.MeterReadings {
		if customer.MeterReadings[i].ID != readingID {
			continue
		}
		customer.MeterReadings = append(customer.MeterReadings[:i], customer.MeterReadings[i+1:]...)
		customer.UpdatedAt = r.clock.Now().UTC()

		r.writeThrough(ctx, customer)
		r.record(ctx, "reading.delete")
		return nil
	}
	return domain.ErrReadingNotFound
}

// ExportCSV renders the selected customers, sorted by code. An empty id
// list exports everything; ids that do not resolve are skipped.
func (r *Registry) ExportCSV(ctx context.Context, ids []int64) ([]byte, error) {
	_ = ctx

	r.mu.RLock()
	var selected []domain.Customer
	if len(ids) == 0 {
		selected = make([]domain.Customer, 0, len(r.customers))
		for _, customer := range r.customers {
			selected = append(selected, cloneCustomer(customer))
		}
	} else {
		selected = make([]domain.Customer, 0, len(ids))
		for _, id := range ids {
			if customer, ok := r.customers[id]; ok {
				selected = append(selected, cloneCustomer(customer))
			}
		}
	}
	r.mu.RUnlock()

	sort.Slice(selected, func(i, j int) bool {
		return selected[i].CustomerCode < selected[j].CustomerCode
	})
	return format.WriteCSV(selected)
}

func (r *Registry) resolvePeriodFilter(year, quarter *int) (domain.Period, bool) {
	if year == nil && quarter == nil {
		return domain.Period{}, false
	}
	current := domain.CurrentPeriod(r.clock)
	period := current
	if year != nil {
		period.Year = *year
	}
	if quarter != nil {
		period.Quarter = *quarter
	}
	if !period.Valid() {
		// Same leniency as unparseable status filters.
		return domain.Period{}, false
	}
	return period, true
}

// writeThrough mirrors a mutated customer into the snapshot store. Snapshot
// failures are logged, not surfaced: in-memory state is the authority.
func (r *Registry) writeThrough(ctx context.Context, customer *domain.Customer) {
	if r.store == nil {
		return
	}
	if err := r.store.SaveCustomer(ctx, cloneCustomer(customer)); err != nil {
		r.log.Warn("snapshot write failed",
			zap.Int64("customer_id", customer.ID),
			zap.Error(err),
		)
	}
}

func (r *Registry) dropSnapshot(ctx context.Context, id int64) {
	if r.store == nil {
		return
	}
	if err := r.store.DeleteCustomer(ctx, id); err != nil {
		r.log.Warn("snapshot delete failed",
			zap.Int64("customer_id", id),
			zap.Error(err),
		)
	}
}

func (r *Registry) record(ctx context.Context, op string) {
	if r.metrics != nil {
		r.metrics.RecordRegistryOp(ctx, op)
	}
}

func matchesSearch(customer *domain.Customer, search string) bool {
	return strings.Contains(strings.ToLower(customer.CustomerCode), search) ||
		strings.Contains(strings.ToLower(customer.Name), search) ||
		strings.Contains(strings.ToLower(customer.PhoneNumber), search)
}

func hasReadingFor(customer *domain.Customer, period domain.Period) bool {
	return occupiedBy(customer, period) != 0
}

// occupiedBy reports the id of the reading holding the period, zero if free.
func occupiedBy(customer *domain.Customer, period domain.Period) int64 {
	for _, reading := range customer.MeterReadings {
		if reading.Year == period.Year && reading.Quarter == period.Quarter {
			return reading.ID
		}
	}
	return 0
}

func cloneCustomer(customer *domain.Customer) domain.Customer {
	out := *customer
	out.MeterReadings = make([]domain.MeterReading, len(customer.MeterReadings))
	copy(out.MeterReadings, customer.MeterReadings)
	out.Invoices = make([]domain.Invoice, len(customer.Invoices))
	for i, invoice := range customer.Invoices {
		if invoice.MeterReadingID != nil {
			readingID := *invoice.MeterReadingID
			invoice.MeterReadingID = &readingID
		}
		if invoice.PaidDate != nil {
			paid := *invoice.PaidDate
			invoice.PaidDate = &paid
		}
		out.Invoices[i] = invoice
	}
	if customer.RegistrationDate != nil {
		registered := *customer.RegistrationDate
		out.RegistrationDate = &registered
	}
	return out
}

func validateCustomerFields(name, address, phone, notes string, status domain.CustomerStatus) error {
	var fields []domain.FieldError

	name = strings.TrimSpace(name)
	switch {
	case name == "":
		fields = append(fields, domain.FieldError{Field: "name", Code: "required", Message: "name is required"})
	case len(name) > maxNameLen:
		fields = append(fields, domain.FieldError{Field: "name", Code: "too_long", Message: fmt.Sprintf("name exceeds %d characters", maxNameLen)})
	}

	address = strings.TrimSpace(address)
	switch {
	case address == "":
		fields = append(fields, domain.FieldError{Field: "address", Code: "required", Message: "address is required"})
	case len(address) > maxAddressLen:
		fields = append(fields, domain.FieldError{Field: "address", Code: "too_long", Message: fmt.Sprintf("address exceeds %d characters", maxAddressLen)})
	}

	phone = strings.TrimSpace(phone)
	switch {
	case phone == "":
		fields = append(fields, domain.FieldError{Field: "phone_number", Code: "required", Message: "phone number is required"})
	case len(phone) > maxPhoneLen || !phonePattern.MatchString(phone):
		fields = append(fields, domain.FieldError{Field: "phone_number", Code: "invalid_phone", Message: "phone number must be 10-11 digits"})
	}

	if len(strings.TrimSpace(notes)) > maxNotesLen {
		fields = append(fields, domain.FieldError{Field: "notes", Code: "too_long", Message: fmt.Sprintf("notes exceed %d characters", maxNotesLen)})
	}

	if _, ok := domain.ParseCustomerStatus(string(status)); !ok {
		fields = append(fields, domain.FieldError{Field: "status", Code: "invalid_status", Message: "unknown customer status"})
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

func validateReadingFields(year, quarter int, notes string) error {
	var fields []domain.FieldError

	if year < 1 {
		fields = append(fields, domain.FieldError{Field: "year", Code: "invalid_year", Message: "year is required"})
	}
	if quarter < 1 || quarter > 4 {
		fields = append(fields, domain.FieldError{Field: "quarter", Code: "invalid_quarter", Message: "quarter must be between 1 and 4"})
	}
	if len(strings.TrimSpace(notes)) > maxReadingNotesLen {
		fields = append(fields, domain.FieldError{Field: "notes", Code: "too_long", Message: fmt.Sprintf("notes exceed %d characters", maxReadingNotesLen)})
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

func codeValue(code, prefix string) int64 {
	var value int64
	if _, err := fmt.Sscanf(code, prefix+"%d", &value); err != nil {
		return 0
	}
	return value
}
