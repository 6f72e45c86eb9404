package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Order statuses. Pending, In Progress and Delivered form the usual
// progression; the extended set is also accepted by the store.
const (
	StatusPending    = "Pending"
	StatusInProgress = "In Progress"
	StatusProcessing = "Processing"
	StatusShipped    = "Shipped"
	StatusDelivered  = "Delivered"
	StatusCancelled  = "Cancelled"
)

// ValidStatus reports whether the status is one of the known set
func ValidStatus(status string) bool {
	switch status {
	case StatusPending, StatusInProgress, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// OrderItem is a snapshot of a product line taken at order creation.
// Later product changes never affect placed orders.
type OrderItem struct {
	ProductID   uint            `json:"productId"`
	ProductName string          `json:"productName"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Unit        string          `json:"unit"`
	Total       decimal.Decimal `json:"total"`
}

// OrderItems is stored as a JSON column on the order row
type OrderItems []OrderItem

// Value implements driver.Valuer for the JSON items column
func (items OrderItems) Value() (driver.Value, error) {
	return json.Marshal(items)
}

// Scan implements sql.Scanner for the JSON items column
func (items *OrderItems) Scan(value interface{}) error {
	if value == nil {
		*items = nil
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for order items", value)
	}

	return json.Unmarshal(raw, items)
}

// Order represents a placed order with its item snapshot
type Order struct {
	ID              uint            `json:"id" gorm:"primarykey"`
	OrderNumber     string          `json:"orderNumber" gorm:"type:varchar(20);uniqueIndex;not null"`
	CustomerName    string          `json:"customerName" gorm:"type:varchar(255);not null"`
	CustomerEmail   string          `json:"customerEmail" gorm:"type:varchar(100);index;not null"`
	CustomerPhone   string          `json:"customerPhone" gorm:"type:varchar(30);not null"`
	DeliveryAddress string          `json:"deliveryAddress" gorm:"type:text;not null"`
	DeliveryCity    string          `json:"deliveryCity" gorm:"type:varchar(100);not null"`
	DeliveryPincode string          `json:"deliveryPincode" gorm:"type:varchar(20);not null"`
	Status          string          `json:"status" gorm:"type:varchar(30);not null;default:'Pending'"`
	Notes           string          `json:"notes" gorm:"type:text"`
	TotalAmount     decimal.Decimal `json:"totalAmount" gorm:"type:numeric;not null"`
	Items           OrderItems      `json:"items" gorm:"type:jsonb;not null"`
	CreatedAt       time.Time       `json:"createdAt"`
}
