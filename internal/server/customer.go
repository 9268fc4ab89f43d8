package server

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	customerdomain "github.com/Cab6701/WaterService/internal/customer/domain"
	"github.com/Cab6701/WaterService/pkg/db/pagination"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type initialReadingRequest struct {
	Year          int             `json:"year"`
	Quarter       int             `json:"quarter"`
	PreviousIndex decimal.Decimal `json:"previous_index"`
	CurrentIndex  decimal.Decimal `json:"current_index"`
	RatePerUnit   decimal.Decimal `json:"rate_per_unit"`
	Notes         string          `json:"notes"`
}

type customerRequest struct {
	ID               int64                  `json:"id"`
	Name             string                 `json:"name"`
	Address          string                 `json:"address"`
	PhoneNumber      string                 `json:"phone_number"`
	Notes            string                 `json:"notes"`
	Status           string                 `json:"status"`
	RegistrationDate *time.Time             `json:"registration_date"`
	InitialReading   *initialReadingRequest `json:"initial_reading"`
}

type readingRequest struct {
	ID            int64           `json:"id"`
	Year          int             `json:"year"`
	Quarter       int             `json:"quarter"`
	PreviousIndex decimal.Decimal `json:"previous_index"`
	CurrentIndex  decimal.Decimal `json:"current_index"`
	RatePerUnit   decimal.Decimal `json:"rate_per_unit"`
	Notes         string          `json:"notes"`
}

type bulkStatusRequest struct {
	IDs    []int64 `json:"ids"`
	Status string  `json:"status"`
}

type exportRequest struct {
	IDs []int64 `json:"ids"`
}

// ListCustomers lists customers with search, status, and period filters.
// Unknown status values and invalid periods behave as "no filter".
func (s *Server) ListCustomers(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Search  string `form:"search"`
		Status  string `form:"status"`
		Year    *int   `form:"year"`
		Quarter *int   `form:"quarter"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.customerSvc.List(c.Request.Context(), customerdomain.ListCustomersRequest{
		Search:   strings.TrimSpace(query.Search),
		Status:   strings.TrimSpace(query.Status),
		Year:     query.Year,
		Quarter:  query.Quarter,
		Page:     query.Page,
		PageSize: query.PageSize,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetCustomerByID(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.customerSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CreateCustomer(c *gin.Context) {
	var req customerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.customerSvc.Create(c.Request.Context(), customerdomain.CreateCustomerRequest{
		Name:             req.Name,
		Address:          req.Address,
		PhoneNumber:      req.PhoneNumber,
		Notes:            req.Notes,
		Status:           normalizeStatus(req.Status),
		RegistrationDate: req.RegistrationDate,
		InitialReading:   req.InitialReading.toDomain(),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

// UpdateCustomer edits the mutable fields. A body id that disagrees with
// the path id does not resolve.
func (s *Server) UpdateCustomer(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req customerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if req.ID != 0 && req.ID != id {
		AbortWithError(c, customerdomain.ErrIDMismatch)
		return
	}

	resp, err := s.customerSvc.Update(c.Request.Context(), customerdomain.UpdateCustomerRequest{
		ID:          id,
		Name:        req.Name,
		Address:     req.Address,
		PhoneNumber: req.PhoneNumber,
		Notes:       req.Notes,
		Status:      normalizeStatus(req.Status),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteCustomer(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.customerSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) BulkSetStatus(c *gin.Context) {
	var req bulkStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.customerSvc.BulkSetStatus(c.Request.Context(), customerdomain.BulkSetStatusRequest{
		IDs:    req.IDs,
		Status: normalizeStatus(req.Status),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpsertReading(c *gin.Context) {
	customerID, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req readingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.customerSvc.UpsertReading(c.Request.Context(), customerdomain.UpsertReadingRequest{
		CustomerID:    customerID,
		ReadingID:     req.ID,
		Year:          req.Year,
		Quarter:       req.Quarter,
		PreviousIndex: req.PreviousIndex,
		CurrentIndex:  req.CurrentIndex,
		RatePerUnit:   req.RatePerUnit,
		Notes:         req.Notes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteReading(c *gin.Context) {
	customerID, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	readingID, err := pathID(c, "readingId")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.customerSvc.DeleteReading(c.Request.Context(), customerID, readingID); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ExportCustomers streams the CSV export of the selected customers; an
// empty id list exports everything.
func (s *Server) ExportCustomers(c *gin.Context) {
	var req exportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	data, err := s.customerSvc.ExportCSV(c.Request.Context(), req.IDs)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	filename := fmt.Sprintf("customers_export_%s.csv", time.Now().UTC().Format("20060102_150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv", data)
}

func (r *initialReadingRequest) toDomain() *customerdomain.InitialReading {
	if r == nil {
		return nil
	}
	return &customerdomain.InitialReading{
		Year:          r.Year,
		Quarter:       r.Quarter,
		PreviousIndex: r.PreviousIndex,
		CurrentIndex:  r.CurrentIndex,
		RatePerUnit:   r.RatePerUnit,
		Notes:         r.Notes,
	}
}

func normalizeStatus(value string) customerdomain.CustomerStatus {
	return customerdomain.CustomerStatus(strings.ToUpper(strings.TrimSpace(value)))
}

// pathID parses an integer path parameter; unparseable ids do not resolve.
func pathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(c.Param(name)), 10, 64)
	if err != nil || id <= 0 {
		return 0, customerdomain.ErrNotFound
	}
	return id, nil
}
