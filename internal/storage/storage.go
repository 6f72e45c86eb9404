package storage

import (
	"fmt"

	"freshbulk-service/internal/model"
	"freshbulk-service/pkg/config"
	"freshbulk-service/pkg/database"

	"github.com/shopspring/decimal"
)

// ProductUpdate carries a partial product update; nil fields are left untouched
type ProductUpdate struct {
	Name        *string          `json:"name"`
	Category    *string          `json:"category"`
	Price       *decimal.Decimal `json:"price"`
	Unit        *string          `json:"unit"`
	Description *string          `json:"description"`
	ImageURL    *string          `json:"imageUrl"`
}

// AddressUpdate carries a partial address update; nil fields are left untouched
type AddressUpdate struct {
	CustomerName  *string `json:"customerName"`
	CustomerEmail *string `json:"customerEmail"`
	CustomerPhone *string `json:"customerPhone"`
	AddressLine   *string `json:"addressLine"`
	City          *string `json:"city"`
	Pincode       *string `json:"pincode"`
	IsDefault     *bool   `json:"isDefault"`
}

// Storage is the entity store contract. Both implementations behave
// identically: not-found is a nil (or false) return, never an error.
type Storage interface {
	// Products
	GetAllProducts() ([]model.Product, error)
	GetProductByID(id uint) (*model.Product, error)
	CreateProduct(product *model.Product) (*model.Product, error)
	UpdateProduct(id uint, update ProductUpdate) (*model.Product, error)
	DeleteProduct(id uint) (bool, error)

	// Orders
	GetAllOrders() ([]model.Order, error)
	GetOrderByID(id uint) (*model.Order, error)
	GetOrderByNumber(orderNumber string) (*model.Order, error)
	CreateOrder(order *model.Order) (*model.Order, error)
	UpdateOrderStatus(id uint, status string) (*model.Order, error)

	// Addresses
	GetAllAddresses() ([]model.Address, error)
	GetAddressesByEmail(email string) ([]model.Address, error)
	GetAddressByID(id uint) (*model.Address, error)
	CreateAddress(address *model.Address) (*model.Address, error)
	UpdateAddress(id uint, update AddressUpdate) (*model.Address, error)
	DeleteAddress(id uint) (bool, error)
	SetDefaultAddress(id uint) (bool, error)

	// Users
	GetUserByID(id uint) (*model.User, error)
	GetUserByUsername(username string) (*model.User, error)
	GetUserByEmail(email string) (*model.User, error)
	CreateUser(user *model.User) (*model.User, error)
}

// orderNumberPrefix plus a zero-padded sequence forms the external order id
const orderNumberPrefix = "FBO-"

func formatOrderNumber(seq uint) string {
	return fmt.Sprintf("%s%05d", orderNumberPrefix, seq)
}

var store Storage

// Init selects and initializes the storage backend from configuration
func Init(cfg *config.Config) error {
	switch cfg.Storage.Driver {
	case "memory", "":
		mem := NewMemStorage()
		mem.Seed(LoadSeedProducts(cfg.Storage.SeedFile))
		store = mem
	case "postgres":
		if err := database.InitDB(cfg); err != nil {
			return err
		}
		store = NewDBStorage(database.GetDB())
	default:
		return fmt.Errorf("unknown storage driver: %q", cfg.Storage.Driver)
	}
	return nil
}

// Get returns the active storage backend
func Get() Storage {
	return store
}

// Use swaps the active storage backend (used by tests)
func Use(s Storage) {
	store = s
}
