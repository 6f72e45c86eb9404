package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"freshbulk-service/internal/mailer"
	"freshbulk-service/internal/model"
	"freshbulk-service/internal/storage"
	"freshbulk-service/pkg/config"
	"freshbulk-service/prometheus"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	prometheus.InitMetrics(&config.Config{Metrics: config.MetricsConfig{Prefix: "test"}})
	mailer.Init(&config.MailConfig{})
	os.Exit(m.Run())
}

// newContext builds an echo context for a handler call
func newContext(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func seedStore(t *testing.T) *storage.MemStorage {
	t.Helper()
	s := storage.NewMemStorage()
	_, err := s.CreateProduct(&model.Product{
		Name:     "Tomatoes",
		Category: model.CategoryVegetables,
		Price:    decimal.NewFromInt(25),
		Unit:     "kg",
	})
	require.NoError(t, err)
	storage.Use(s)
	return s
}

func asCustomer(c echo.Context, email string) {
	c.Set("user_role", model.RoleCustomer)
	c.Set("email", email)
}

func asAdmin(c echo.Context) {
	c.Set("user_role", model.RoleAdmin)
	c.Set("email", "admin@freshbulk.com")
}

func TestCreateOrderComputesTotals(t *testing.T) {
	seedStore(t)

	body := `{
		"customerName": "Asha",
		"customerEmail": "asha@example.com",
		"customerPhone": "9876543210",
		"deliveryAddress": "12 Market Road",
		"deliveryCity": "Pune",
		"deliveryPincode": "411001",
		"items": [{"productId": 1, "quantity": 4}]
	}`
	c, rec := newContext(t, http.MethodPost, "/api/orders", body)

	require.NoError(t, CreateOrder(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var order model.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order))
	assert.Equal(t, "FBO-00001", order.OrderNumber)
	assert.Equal(t, model.StatusPending, order.Status)
	assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(100)))
	require.Len(t, order.Items, 1)
	assert.Equal(t, "Tomatoes", order.Items[0].ProductName)
	assert.True(t, order.Items[0].Total.Equal(decimal.NewFromInt(100)))
}

func TestCreateOrderUnknownProduct(t *testing.T) {
	seedStore(t)

	body := `{
		"customerName": "Asha",
		"customerEmail": "asha@example.com",
		"customerPhone": "9876543210",
		"deliveryAddress": "12 Market Road",
		"deliveryCity": "Pune",
		"deliveryPincode": "411001",
		"items": [{"productId": 99, "quantity": 1}]
	}`
	c, rec := newContext(t, http.MethodPost, "/api/orders", body)

	require.NoError(t, CreateOrder(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateOrderValidation(t *testing.T) {
	seedStore(t)

	c, rec := newContext(t, http.MethodPost, "/api/orders", `{"customerName": "Asha"}`)
	require.NoError(t, CreateOrder(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTrackOrder(t *testing.T) {
	s := seedStore(t)
	order, err := s.CreateOrder(&model.Order{CustomerEmail: "asha@example.com"})
	require.NoError(t, err)

	c, rec := newContext(t, http.MethodGet, "/api/orders/track/"+order.OrderNumber, "")
	c.SetParamNames("orderNumber")
	c.SetParamValues(order.OrderNumber)

	require.NoError(t, TrackOrder(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	c, rec = newContext(t, http.MethodGet, "/api/orders/track/FBO-99999", "")
	c.SetParamNames("orderNumber")
	c.SetParamValues("FBO-99999")

	require.NoError(t, TrackOrder(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetOrderOwnership(t *testing.T) {
	s := seedStore(t)
	order, err := s.CreateOrder(&model.Order{CustomerEmail: "asha@example.com"})
	require.NoError(t, err)

	// The owner can view their order
	c, rec := newContext(t, http.MethodGet, "/api/orders/1", "")
	c.SetParamNames("id")
	c.SetParamValues("1")
	asCustomer(c, order.CustomerEmail)
	require.NoError(t, GetOrder(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	// Another customer cannot
	c, rec = newContext(t, http.MethodGet, "/api/orders/1", "")
	c.SetParamNames("id")
	c.SetParamValues("1")
	asCustomer(c, "other@example.com")
	require.NoError(t, GetOrder(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Admin can view any order
	c, rec = newContext(t, http.MethodGet, "/api/orders/1", "")
	c.SetParamNames("id")
	c.SetParamValues("1")
	asAdmin(c)
	require.NoError(t, GetOrder(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUpdateOrderStatus(t *testing.T) {
	s := seedStore(t)
	_, err := s.CreateOrder(&model.Order{CustomerEmail: "asha@example.com"})
	require.NoError(t, err)

	c, rec := newContext(t, http.MethodPatch, "/api/orders/1/status", `{"status": "Delivered"}`)
	c.SetParamNames("id")
	c.SetParamValues("1")
	asAdmin(c)

	require.NoError(t, UpdateOrderStatus(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var order model.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order))
	assert.Equal(t, model.StatusDelivered, order.Status)
}

func TestUpdateOrderStatusNotFound(t *testing.T) {
	seedStore(t)

	c, rec := newContext(t, http.MethodPatch, "/api/orders/42/status", `{"status": "Delivered"}`)
	c.SetParamNames("id")
	c.SetParamValues("42")
	asAdmin(c)

	require.NoError(t, UpdateOrderStatus(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateOrderStatusUnknownValue(t *testing.T) {
	s := seedStore(t)
	_, err := s.CreateOrder(&model.Order{CustomerEmail: "asha@example.com"})
	require.NoError(t, err)

	c, rec := newContext(t, http.MethodPatch, "/api/orders/1/status", `{"status": "Teleported"}`)
	c.SetParamNames("id")
	c.SetParamValues("1")
	asAdmin(c)

	require.NoError(t, UpdateOrderStatus(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateProductValidation(t *testing.T) {
	seedStore(t)

	c, rec := newContext(t, http.MethodPost, "/api/products",
		`{"name": "Mangoes", "category": "Dairy", "price": 80, "unit": "kg"}`)
	asAdmin(c)
	require.NoError(t, CreateProduct(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	c, rec = newContext(t, http.MethodPost, "/api/products",
		`{"name": "Mangoes", "category": "Fruits", "price": -5, "unit": "kg"}`)
	asAdmin(c)
	require.NoError(t, CreateProduct(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	c, rec = newContext(t, http.MethodPost, "/api/products",
		`{"name": "Mangoes", "category": "Fruits", "price": 80, "unit": "kg"}`)
	asAdmin(c)
	require.NoError(t, CreateProduct(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestUpdateProductPartial(t *testing.T) {
	seedStore(t)

	c, rec := newContext(t, http.MethodPut, "/api/products/1", `{"price": 30}`)
	c.SetParamNames("id")
	c.SetParamValues("1")
	asAdmin(c)

	require.NoError(t, UpdateProduct(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var product model.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &product))
	assert.True(t, product.Price.Equal(decimal.NewFromInt(30)))
	assert.Equal(t, "Tomatoes", product.Name)
}

func TestDeleteProduct(t *testing.T) {
	seedStore(t)

	c, rec := newContext(t, http.MethodDelete, "/api/products/1", "")
	c.SetParamNames("id")
	c.SetParamValues("1")
	asAdmin(c)
	require.NoError(t, DeleteProduct(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	c, rec = newContext(t, http.MethodDelete, "/api/products/1", "")
	c.SetParamNames("id")
	c.SetParamValues("1")
	asAdmin(c)
	require.NoError(t, DeleteProduct(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateAddressScopedToOwnEmail(t *testing.T) {
	seedStore(t)

	body := `{
		"customerName": "Asha",
		"customerEmail": "asha@example.com",
		"customerPhone": "9876543210",
		"addressLine": "12 Market Road",
		"city": "Pune",
		"pincode": "411001"
	}`

	// A customer cannot create an address for someone else
	c, rec := newContext(t, http.MethodPost, "/api/addresses", body)
	asCustomer(c, "other@example.com")
	require.NoError(t, CreateAddress(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Creating their own works, and the first address becomes default
	c, rec = newContext(t, http.MethodPost, "/api/addresses", body)
	asCustomer(c, "asha@example.com")
	require.NoError(t, CreateAddress(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var address model.Address
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &address))
	assert.True(t, address.IsDefault)
}

func TestSetDefaultAddressHandler(t *testing.T) {
	s := seedStore(t)

	a1, err := s.CreateAddress(&model.Address{CustomerName: "Asha", CustomerEmail: "asha@example.com",
		CustomerPhone: "9876543210", AddressLine: "12 Market Road", City: "Pune", Pincode: "411001"})
	require.NoError(t, err)
	a2, err := s.CreateAddress(&model.Address{CustomerName: "Asha", CustomerEmail: "asha@example.com",
		CustomerPhone: "9876543210", AddressLine: "7 Hill View", City: "Pune", Pincode: "411002"})
	require.NoError(t, err)

	c, rec := newContext(t, http.MethodPatch, "/api/addresses/2/set-default", "")
	c.SetParamNames("id")
	c.SetParamValues("2")
	asCustomer(c, "asha@example.com")

	require.NoError(t, SetDefaultAddress(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var address model.Address
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &address))
	assert.Equal(t, a2.ID, address.ID)
	assert.True(t, address.IsDefault)

	former, err := s.GetAddressByID(a1.ID)
	require.NoError(t, err)
	assert.False(t, former.IsDefault)
}
