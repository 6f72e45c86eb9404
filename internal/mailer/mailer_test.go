package mailer

import (
	"testing"
	"time"

	"freshbulk-service/internal/model"
	"freshbulk-service/pkg/config"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func testOrder() *model.Order {
	return &model.Order{
		ID:              1,
		OrderNumber:     "FBO-00001",
		CustomerName:    "Asha",
		CustomerEmail:   "asha@example.com",
		DeliveryAddress: "12 Market Road",
		DeliveryCity:    "Pune",
		DeliveryPincode: "411001",
		Status:          model.StatusPending,
		TotalAmount:     decimal.NewFromInt(100),
		CreatedAt:       time.Date(2025, time.March, 14, 10, 0, 0, 0, time.UTC),
		Items: model.OrderItems{{
			ProductID:   1,
			ProductName: "Tomatoes",
			Price:       decimal.NewFromInt(25),
			Quantity:    4,
			Unit:        "kg",
			Total:       decimal.NewFromInt(100),
		}},
	}
}

func initTestMailer() {
	Init(&config.MailConfig{
		SupportEmail: "support@freshbulk.com",
		SupportPhone: "+91 1234567890",
	})
}

func TestBuildOrderConfirmation(t *testing.T) {
	initTestMailer()
	order := testOrder()

	subject, text, html := buildOrderConfirmation(order)

	assert.Contains(t, subject, "FBO-00001")
	assert.Contains(t, text, "Hello Asha")
	assert.Contains(t, text, "Tomatoes: 4 x ₹25.00 = ₹100.00")
	assert.Contains(t, text, "Total Amount: ₹100.00")
	assert.Contains(t, text, "12 Market Road")
	assert.Contains(t, html, "Order Confirmation - #FBO-00001")
	assert.Contains(t, html, "<li>Tomatoes: 4 x ₹25.00 = ₹100.00</li>")
	assert.Contains(t, html, "Pune, 411001")
}

func TestBuildOrderStatusUpdate(t *testing.T) {
	initTestMailer()
	order := testOrder()

	subject, text, html := buildOrderStatusUpdate(order, model.StatusShipped)

	assert.Contains(t, subject, "Status Update")
	assert.Contains(t, text, "has been shipped")
	assert.Contains(t, html, model.StatusShipped)
}

func TestStatusMessages(t *testing.T) {
	assert.Contains(t, statusMessageFor(model.StatusProcessing), "being processed")
	assert.Contains(t, statusMessageFor(model.StatusDelivered), "delivered successfully")
	assert.Contains(t, statusMessageFor(model.StatusCancelled), "cancelled")
	assert.Contains(t, statusMessageFor(model.StatusInProgress), "updated to In Progress")
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "₹100.00", formatPrice(decimal.NewFromInt(100)))
	assert.Equal(t, "₹1,234.50", formatPrice(decimal.RequireFromString("1234.5")))

	// Large totals must render exactly, not through a lossy float
	assert.Equal(t, "₹92,233,720,368,547,758.07",
		formatPrice(decimal.RequireFromString("92233720368547758.07")))
}

func TestSendSkippedWhenDisabled(t *testing.T) {
	initTestMailer()

	// No API key configured: send must be a logged no-op, never a panic
	SendOrderConfirmation(testOrder())
	SendOrderStatusUpdate(testOrder(), model.StatusDelivered)
}
