package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Cab6701/WaterService/internal/clock"
	"github.com/Cab6701/WaterService/internal/config"
	customerdomain "github.com/Cab6701/WaterService/internal/customer/domain"
	"github.com/Cab6701/WaterService/internal/customer/registry"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T) (*gin.Engine, *registry.Registry) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	clk := clock.NewFakeClock(time.Date(2025, time.August, 15, 10, 0, 0, 0, time.UTC))
	reg := registry.New(registry.Params{Log: zap.NewNop(), Clock: clk})

	s := NewServer(Params{
		Config:      config.Config{},
		Log:         zap.NewNop(),
		CustomerSvc: reg,
	})

	r := gin.New()
	r.Use(ErrorHandlingMiddleware())
	s.RegisterRoutes(r)
	return r, reg
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func createCustomerHTTP(t *testing.T, r *gin.Engine) map[string]any {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/v1/customers", `{
		"name": "Nguyen Anh",
		"address": "12 Tran Phu",
		"phone_number": "0901234567"
	}`)
	require.Equal(t, http.StatusCreated, w.Code)
	return decodeBody(t, w)["data"].(map[string]any)
}

func TestCreateCustomerEndpoint(t *testing.T) {
	r, _ := newTestServer(t)

	data := createCustomerHTTP(t, r)
	assert.Equal(t, "C001001", data["customer_code"])
	assert.Equal(t, "ACTIVE", data["status"])
}

func TestCreateCustomerValidationError(t *testing.T) {
	r, _ := newTestServer(t)

	w := doJSON(t, r, http.MethodPost, "/v1/customers", `{
		"name": "Nguyen Anh",
		"address": "12 Tran Phu",
		"phone_number": "090123456"
	}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	body := decodeBody(t, w)["error"].(map[string]any)
	assert.Equal(t, "validation_error", body["type"])
	fields := body["fields"].([]any)
	require.Len(t, fields, 1)
	assert.Equal(t, "phone_number", fields[0].(map[string]any)["field"])
}

func TestCreateCustomerMalformedJSON(t *testing.T) {
	r, _ := newTestServer(t)

	w := doJSON(t, r, http.MethodPost, "/v1/customers", `{"name": `)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetCustomerNotFound(t *testing.T) {
	r, _ := newTestServer(t)

	w := doJSON(t, r, http.MethodGet, "/v1/customers/99", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	body := decodeBody(t, w)["error"].(map[string]any)
	assert.Equal(t, "not_found", body["type"])

	// Unparseable ids behave the same as missing ones.
	w = doJSON(t, r, http.MethodGet, "/v1/customers/abc", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateCustomerIDMismatch(t *testing.T) {
	r, _ := newTestServer(t)
	createCustomerHTTP(t, r)

	w := doJSON(t, r, http.MethodPut, "/v1/customers/1", `{
		"id": 2,
		"name": "Nguyen Anh",
		"address": "12 Tran Phu",
		"phone_number": "0901234567",
		"status": "active"
	}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateCustomerEndpoint(t *testing.T) {
	r, _ := newTestServer(t)
	createCustomerHTTP(t, r)

	w := doJSON(t, r, http.MethodPut, "/v1/customers/1", `{
		"name": "Nguyen Van Anh",
		"address": "34 Le Loi",
		"phone_number": "0912345678",
		"status": "inactive"
	}`)
	require.Equal(t, http.StatusOK, w.Code)

	data := decodeBody(t, w)["data"].(map[string]any)
	assert.Equal(t, "Nguyen Van Anh", data["name"])
	assert.Equal(t, "INACTIVE", data["status"])
	assert.Equal(t, "C001001", data["customer_code"])
}

func TestDeleteCustomerEndpoint(t *testing.T) {
	r, _ := newTestServer(t)
	createCustomerHTTP(t, r)

	w := doJSON(t, r, http.MethodDelete, "/v1/customers/1", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, r, http.MethodGet, "/v1/customers/1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteCustomerWithInvoicesConflicts(t *testing.T) {
	r, _ := newTestServer(t)

	w := doJSON(t, r, http.MethodPost, "/v1/customers", `{
		"name": "Nguyen Anh",
		"address": "12 Tran Phu",
		"phone_number": "0901234567",
		"initial_reading": {
			"year": 2025,
			"quarter": 3,
			"previous_index": "100",
			"current_index": "150",
			"rate_per_unit": "10000"
		}
	}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodDelete, "/v1/customers/1", "")
	require.Equal(t, http.StatusConflict, w.Code)

	body := decodeBody(t, w)["error"].(map[string]any)
	assert.Equal(t, "conflict", body["type"])
	assert.Equal(t, "cannot delete customer with existing invoices", body["message"])

	// The customer survives the rejected delete.
	w = doJSON(t, r, http.MethodGet, "/v1/customers/1", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBulkStatusEndpoint(t *testing.T) {
	r, reg := newTestServer(t)
	createCustomerHTTP(t, r)

	w := doJSON(t, r, http.MethodPost, "/v1/customers/bulk-status", `{
		"ids": [1, 99],
		"status": "inactive"
	}`)
	require.Equal(t, http.StatusOK, w.Code)

	data := decodeBody(t, w)["data"].(map[string]any)
	assert.Equal(t, float64(1), data["updated_count"])

	customer, err := reg.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, customerdomain.CustomerStatusInactive, customer.Status)
}

func TestReadingEndpoints(t *testing.T) {
	r, _ := newTestServer(t)
	createCustomerHTTP(t, r)

	w := doJSON(t, r, http.MethodPut, "/v1/customers/1/readings", `{
		"year": 2025,
		"quarter": 3,
		"previous_index": "100",
		"current_index": "150",
		"rate_per_unit": "10000"
	}`)
	require.Equal(t, http.StatusOK, w.Code)

	data := decodeBody(t, w)["data"].(map[string]any)
	readingID := int64(data["id"].(float64))
	current, err := decimal.NewFromString(fmt.Sprintf("%v", data["current_index"]))
	require.NoError(t, err)
	assert.True(t, current.Equal(decimal.NewFromInt(150)))

	// Edits carry the reading id and land on the same entity.
	w = doJSON(t, r, http.MethodPut, "/v1/customers/1/readings", fmt.Sprintf(`{
		"id": %d,
		"year": 2025,
		"quarter": 3,
		"previous_index": "100",
		"current_index": "160",
		"rate_per_unit": "10000"
	}`, readingID))
	require.Equal(t, http.StatusOK, w.Code)
	data = decodeBody(t, w)["data"].(map[string]any)
	assert.Equal(t, float64(readingID), data["id"])

	w = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/v1/customers/1/readings/%d", readingID), "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/v1/customers/1/readings/%d", readingID), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListCustomersEndpoint(t *testing.T) {
	r, reg := newTestServer(t)
	createCustomerHTTP(t, r)

	_, err := reg.Create(context.Background(), customerdomain.CreateCustomerRequest{
		Name:        "Tran Binh",
		Address:     "34 Le Loi",
		PhoneNumber: "0987654321",
	})
	require.NoError(t, err)

	w := doJSON(t, r, http.MethodGet, "/v1/customers?search=binh", "")
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]any)
	assert.Equal(t, float64(1), data["total_count"])

	// A status nobody recognizes filters nothing out.
	w = doJSON(t, r, http.MethodGet, "/v1/customers?status=bogus", "")
	require.Equal(t, http.StatusOK, w.Code)
	data = decodeBody(t, w)["data"].(map[string]any)
	assert.Equal(t, float64(2), data["total_count"])

	w = doJSON(t, r, http.MethodGet, "/v1/customers?page=1&page_size=1", "")
	require.Equal(t, http.StatusOK, w.Code)
	data = decodeBody(t, w)["data"].(map[string]any)
	assert.Equal(t, float64(2), data["total_pages"])
	assert.Len(t, data["customers"].([]any), 1)
}

func TestExportCustomersEndpoint(t *testing.T) {
	r, _ := newTestServer(t)
	createCustomerHTTP(t, r)

	w := doJSON(t, r, http.MethodPost, "/v1/customers/export", `{"ids": []}`)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	disposition := w.Header().Get("Content-Disposition")
	assert.True(t, strings.HasPrefix(disposition, `attachment; filename="customers_export_`))
	assert.True(t, strings.HasSuffix(disposition, `.csv"`))

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Customer Code,Name,Phone,Address,Status,Registration Date", lines[0])
	assert.Contains(t, lines[1], "C001001")
}
