package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product categories offered in the catalog
const (
	CategoryVegetables  = "Vegetables"
	CategoryFruits      = "Fruits"
	CategoryLeafyGreens = "Leafy Greens"
)

// Categories returns the fixed set of product categories
func Categories() []string {
	return []string{CategoryVegetables, CategoryFruits, CategoryLeafyGreens}
}

// ValidCategory reports whether the category is one of the known set
func ValidCategory(category string) bool {
	switch category {
	case CategoryVegetables, CategoryFruits, CategoryLeafyGreens:
		return true
	}
	return false
}

// Product represents a catalog item sold in bulk
type Product struct {
	ID          uint            `json:"id" gorm:"primarykey"`
	Name        string          `json:"name" gorm:"type:varchar(255);not null"`
	Category    string          `json:"category" gorm:"type:varchar(100);not null"`
	Price       decimal.Decimal `json:"price" gorm:"type:numeric;not null"`
	Unit        string          `json:"unit" gorm:"type:varchar(50);not null"`
	Description string          `json:"description" gorm:"type:text"`
	ImageURL    string          `json:"imageUrl" gorm:"type:text"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
