package model

import "time"

// Address is a saved delivery address. Addresses are keyed by customer
// email rather than user id so guests can reuse them at checkout.
// At most one address per email carries IsDefault.
type Address struct {
	ID            uint      `json:"id" gorm:"primarykey"`
	CustomerName  string    `json:"customerName" gorm:"type:varchar(255);not null"`
	CustomerEmail string    `json:"customerEmail" gorm:"type:varchar(100);index;not null"`
	CustomerPhone string    `json:"customerPhone" gorm:"type:varchar(30);not null"`
	AddressLine   string    `json:"addressLine" gorm:"type:text;not null"`
	City          string    `json:"city" gorm:"type:varchar(100);not null"`
	Pincode       string    `json:"pincode" gorm:"type:varchar(20);not null"`
	IsDefault     bool      `json:"isDefault" gorm:"not null;default:false"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
