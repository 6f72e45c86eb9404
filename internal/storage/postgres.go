package storage

import (
	"encoding/hex"
	"errors"

	"freshbulk-service/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DBStorage is the relational store. Multi-statement default-address
// sequences run in a transaction so no request observes zero or two
// defaults for an email.
type DBStorage struct {
	db *gorm.DB
}

// NewDBStorage wraps a gorm connection in the storage contract
func NewDBStorage(db *gorm.DB) *DBStorage {
	return &DBStorage{db: db}
}

func notFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// placeholderOrderNumber returns a unique stand-in that satisfies the
// order_number unique index until the real number is derived from the
// row id. The column is varchar(20), so it must stay within 20 chars.
func placeholderOrderNumber() string {
	id := uuid.New()
	return "tmp-" + hex.EncodeToString(id[:8])
}

// Product methods

func (s *DBStorage) GetAllProducts() ([]model.Product, error) {
	var products []model.Product
	if err := s.db.Order("id").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (s *DBStorage) GetProductByID(id uint) (*model.Product, error) {
	var product model.Product
	if err := s.db.First(&product, id).Error; err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

func (s *DBStorage) CreateProduct(product *model.Product) (*model.Product, error) {
	created := *product
	created.ID = 0
	if err := s.db.Create(&created).Error; err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *DBStorage) UpdateProduct(id uint, update ProductUpdate) (*model.Product, error) {
	var product model.Product
	if err := s.db.First(&product, id).Error; err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, err
	}

	if update.Name != nil {
		product.Name = *update.Name
	}
	if update.Category != nil {
		product.Category = *update.Category
	}
	if update.Price != nil {
		product.Price = *update.Price
	}
	if update.Unit != nil {
		product.Unit = *update.Unit
	}
	if update.Description != nil {
		product.Description = *update.Description
	}
	if update.ImageURL != nil {
		product.ImageURL = *update.ImageURL
	}

	if err := s.db.Save(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *DBStorage) DeleteProduct(id uint) (bool, error) {
	result := s.db.Delete(&model.Product{}, id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Order methods

func (s *DBStorage) GetAllOrders() ([]model.Order, error) {
	var orders []model.Order
	if err := s.db.Order("id").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *DBStorage) GetOrderByID(id uint) (*model.Order, error) {
	var order model.Order
	if err := s.db.First(&order, id).Error; err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (s *DBStorage) GetOrderByNumber(orderNumber string) (*model.Order, error) {
	var order model.Order
	if err := s.db.Where("order_number = ?", orderNumber).First(&order).Error; err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (s *DBStorage) CreateOrder(order *model.Order) (*model.Order, error) {
	created := *order
	created.ID = 0
	if created.Status == "" {
		created.Status = model.StatusPending
	}
	created.Items = finalizeItems(order.Items)
	created.TotalAmount = sumItems(created.Items)

	// The order number derives from the row id, which is only known
	// after insert, so insert with a unique placeholder and fix it up
	// inside the same transaction.
	created.OrderNumber = placeholderOrderNumber()
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&created).Error; err != nil {
			return err
		}
		created.OrderNumber = formatOrderNumber(created.ID)
		return tx.Model(&model.Order{}).Where("id = ?", created.ID).
			Update("order_number", created.OrderNumber).Error
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *DBStorage) UpdateOrderStatus(id uint, status string) (*model.Order, error) {
	var order model.Order
	if err := s.db.First(&order, id).Error; err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, err
	}

	order.Status = status
	if err := s.db.Model(&model.Order{}).Where("id = ?", id).Update("status", status).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// Address methods

func (s *DBStorage) GetAllAddresses() ([]model.Address, error) {
	var addresses []model.Address
	if err := s.db.Order("id").Find(&addresses).Error; err != nil {
		return nil, err
	}
	return addresses, nil
}

func (s *DBStorage) GetAddressesByEmail(email string) ([]model.Address, error) {
	var addresses []model.Address
	if err := s.db.Where("customer_email = ?", email).Order("id").Find(&addresses).Error; err != nil {
		return nil, err
	}
	return addresses, nil
}

func (s *DBStorage) GetAddressByID(id uint) (*model.Address, error) {
	var address model.Address
	if err := s.db.First(&address, id).Error; err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &address, nil
}

func (s *DBStorage) CreateAddress(address *model.Address) (*model.Address, error) {
	created := *address
	created.ID = 0

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var siblings int64
		if err := tx.Model(&model.Address{}).
			Where("customer_email = ?", created.CustomerEmail).
			Count(&siblings).Error; err != nil {
			return err
		}
		if siblings == 0 {
			created.IsDefault = true
		}
		if created.IsDefault {
			if err := tx.Model(&model.Address{}).
				Where("customer_email = ?", created.CustomerEmail).
				Update("is_default", false).Error; err != nil {
				return err
			}
		}
		return tx.Create(&created).Error
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *DBStorage) UpdateAddress(id uint, update AddressUpdate) (*model.Address, error) {
	var address model.Address

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&address, id).Error; err != nil {
			return err
		}
		prevEmail := address.CustomerEmail
		wasDefault := address.IsDefault

		if update.CustomerName != nil {
			address.CustomerName = *update.CustomerName
		}
		if update.CustomerEmail != nil {
			address.CustomerEmail = *update.CustomerEmail
		}
		if update.CustomerPhone != nil {
			address.CustomerPhone = *update.CustomerPhone
		}
		if update.AddressLine != nil {
			address.AddressLine = *update.AddressLine
		}
		if update.City != nil {
			address.City = *update.City
		}
		if update.Pincode != nil {
			address.Pincode = *update.Pincode
		}
		if update.IsDefault != nil {
			address.IsDefault = *update.IsDefault
		}

		if address.IsDefault {
			if err := tx.Model(&model.Address{}).
				Where("customer_email = ? AND id <> ?", address.CustomerEmail, address.ID).
				Update("is_default", false).Error; err != nil {
				return err
			}
		}
		if err := tx.Save(&address).Error; err != nil {
			return err
		}

		// Moving the default to another email leaves the old group
		// without one; promote its first remaining address.
		if wasDefault && address.CustomerEmail != prevEmail {
			var next model.Address
			err := tx.Where("customer_email = ?", prevEmail).Order("id").First(&next).Error
			if err != nil {
				if notFound(err) {
					return nil
				}
				return err
			}
			return tx.Model(&model.Address{}).Where("id = ?", next.ID).
				Update("is_default", true).Error
		}
		return nil
	})
	if err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &address, nil
}

func (s *DBStorage) DeleteAddress(id uint) (bool, error) {
	deleted := false

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var address model.Address
		if err := tx.First(&address, id).Error; err != nil {
			if notFound(err) {
				return nil
			}
			return err
		}

		if err := tx.Delete(&model.Address{}, id).Error; err != nil {
			return err
		}
		deleted = true

		if address.IsDefault {
			// Promote the first remaining address for the email, if any
			var next model.Address
			err := tx.Where("customer_email = ?", address.CustomerEmail).
				Order("id").First(&next).Error
			if err != nil {
				if notFound(err) {
					return nil
				}
				return err
			}
			return tx.Model(&model.Address{}).Where("id = ?", next.ID).
				Update("is_default", true).Error
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

func (s *DBStorage) SetDefaultAddress(id uint) (bool, error) {
	updated := false

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var address model.Address
		if err := tx.First(&address, id).Error; err != nil {
			if notFound(err) {
				return nil
			}
			return err
		}

		if err := tx.Model(&model.Address{}).
			Where("customer_email = ? AND id <> ?", address.CustomerEmail, address.ID).
			Update("is_default", false).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.Address{}).Where("id = ?", address.ID).
			Update("is_default", true).Error; err != nil {
			return err
		}
		updated = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return updated, nil
}

// User methods

func (s *DBStorage) GetUserByID(id uint) (*model.User, error) {
	var user model.User
	if err := s.db.First(&user, id).Error; err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (s *DBStorage) GetUserByUsername(username string) (*model.User, error) {
	var user model.User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (s *DBStorage) GetUserByEmail(email string) (*model.User, error) {
	var user model.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (s *DBStorage) CreateUser(user *model.User) (*model.User, error) {
	created := *user
	created.ID = 0
	if created.Role == "" {
		created.Role = model.RoleCustomer
	}
	if err := s.db.Create(&created).Error; err != nil {
		return nil, err
	}
	return &created, nil
}
