package storage

import (
	"sort"
	"sync"
	"time"

	"freshbulk-service/internal/model"

	"github.com/shopspring/decimal"
)

// MemStorage is the map-backed store. A single mutex guards every map:
// the default-address bookkeeping is a read-modify-write sequence and is
// not safe under concurrent requests without it.
type MemStorage struct {
	mu sync.Mutex

	products  map[uint]model.Product
	orders    map[uint]model.Order
	addresses map[uint]model.Address
	users     map[uint]model.User

	nextProductID uint
	nextOrderID   uint
	nextAddressID uint
	nextUserID    uint
}

// NewMemStorage returns an empty in-memory store
func NewMemStorage() *MemStorage {
	return &MemStorage{
		products:      make(map[uint]model.Product),
		orders:        make(map[uint]model.Order),
		addresses:     make(map[uint]model.Address),
		users:         make(map[uint]model.User),
		nextProductID: 1,
		nextOrderID:   1,
		nextAddressID: 1,
		nextUserID:    1,
	}
}

// Seed inserts catalog products, typically at startup
func (s *MemStorage) Seed(products []model.Product) {
	for i := range products {
		s.CreateProduct(&products[i])
	}
}

// Product methods

func (s *MemStorage) GetAllProducts() ([]model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	products := make([]model.Product, 0, len(s.products))
	for _, p := range s.products {
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return products, nil
}

func (s *MemStorage) GetProductByID(id uint) (*model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (s *MemStorage) CreateProduct(product *model.Product) (*model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	created := *product
	created.ID = s.nextProductID
	created.CreatedAt = now
	created.UpdatedAt = now
	s.nextProductID++

	s.products[created.ID] = created
	return &created, nil
}

func (s *MemStorage) UpdateProduct(id uint, update ProductUpdate) (*model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.products[id]
	if !ok {
		return nil, nil
	}

	if update.Name != nil {
		existing.Name = *update.Name
	}
	if update.Category != nil {
		existing.Category = *update.Category
	}
	if update.Price != nil {
		existing.Price = *update.Price
	}
	if update.Unit != nil {
		existing.Unit = *update.Unit
	}
	if update.Description != nil {
		existing.Description = *update.Description
	}
	if update.ImageURL != nil {
		existing.ImageURL = *update.ImageURL
	}
	existing.UpdatedAt = time.Now()

	s.products[id] = existing
	return &existing, nil
}

func (s *MemStorage) DeleteProduct(id uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Unconditional: placed orders keep their item snapshots
	if _, ok := s.products[id]; !ok {
		return false, nil
	}
	delete(s.products, id)
	return true, nil
}

// Order methods

func (s *MemStorage) GetAllOrders() ([]model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	orders := make([]model.Order, 0, len(s.orders))
	for _, o := range s.orders {
		orders = append(orders, o)
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID < orders[j].ID })
	return orders, nil
}

func (s *MemStorage) GetOrderByID(id uint) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (s *MemStorage) GetOrderByNumber(orderNumber string) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range s.orders {
		if o.OrderNumber == orderNumber {
			return &o, nil
		}
	}
	return nil, nil
}

func (s *MemStorage) CreateOrder(order *model.Order) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created := *order
	created.ID = s.nextOrderID
	created.OrderNumber = formatOrderNumber(s.nextOrderID)
	created.CreatedAt = time.Now()
	s.nextOrderID++

	if created.Status == "" {
		created.Status = model.StatusPending
	}

	created.Items = finalizeItems(order.Items)
	created.TotalAmount = sumItems(created.Items)

	s.orders[created.ID] = created
	return &created, nil
}

func (s *MemStorage) UpdateOrderStatus(id uint, status string) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Status overwrites unconditionally; there is no transition guard
	o, ok := s.orders[id]
	if !ok {
		return nil, nil
	}
	o.Status = status
	s.orders[id] = o
	return &o, nil
}

// Address methods

func (s *MemStorage) GetAllAddresses() ([]model.Address, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	addresses := make([]model.Address, 0, len(s.addresses))
	for _, a := range s.addresses {
		addresses = append(addresses, a)
	}
	sort.Slice(addresses, func(i, j int) bool { return addresses[i].ID < addresses[j].ID })
	return addresses, nil
}

func (s *MemStorage) GetAddressesByEmail(email string) ([]model.Address, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addressesByEmailLocked(email), nil
}

func (s *MemStorage) GetAddressByID(id uint) (*model.Address, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.addresses[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (s *MemStorage) CreateAddress(address *model.Address) (*model.Address, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	created := *address
	created.ID = s.nextAddressID
	created.CreatedAt = now
	created.UpdatedAt = now
	s.nextAddressID++

	// First address on file for the email always becomes the default
	siblings := s.addressesByEmailLocked(created.CustomerEmail)
	if len(siblings) == 0 {
		created.IsDefault = true
	}
	if created.IsDefault {
		s.clearDefaultsLocked(created.CustomerEmail)
	}

	s.addresses[created.ID] = created
	return &created, nil
}

func (s *MemStorage) UpdateAddress(id uint, update AddressUpdate) (*model.Address, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.addresses[id]
	if !ok {
		return nil, nil
	}
	prevEmail := existing.CustomerEmail
	wasDefault := existing.IsDefault

	if update.CustomerName != nil {
		existing.CustomerName = *update.CustomerName
	}
	if update.CustomerEmail != nil {
		existing.CustomerEmail = *update.CustomerEmail
	}
	if update.CustomerPhone != nil {
		existing.CustomerPhone = *update.CustomerPhone
	}
	if update.AddressLine != nil {
		existing.AddressLine = *update.AddressLine
	}
	if update.City != nil {
		existing.City = *update.City
	}
	if update.Pincode != nil {
		existing.Pincode = *update.Pincode
	}
	if update.IsDefault != nil {
		existing.IsDefault = *update.IsDefault
	}
	existing.UpdatedAt = time.Now()

	// Becoming the default clears the flag on every sibling.
	// Stripping the default leaves no default; that is the one
	// allowed transient state.
	if existing.IsDefault {
		s.clearDefaultsLocked(existing.CustomerEmail)
	}

	s.addresses[id] = existing

	// Moving the default to another email leaves the old group without
	// one; promote its first remaining address.
	if wasDefault && existing.CustomerEmail != prevEmail {
		if remaining := s.addressesByEmailLocked(prevEmail); len(remaining) > 0 {
			promoted := remaining[0]
			promoted.IsDefault = true
			s.addresses[promoted.ID] = promoted
		}
	}
	return &existing, nil
}

func (s *MemStorage) DeleteAddress(id uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.addresses[id]
	if !ok {
		return false, nil
	}
	delete(s.addresses, id)

	// Deleting the default promotes the first remaining address
	if existing.IsDefault {
		remaining := s.addressesByEmailLocked(existing.CustomerEmail)
		if len(remaining) > 0 {
			promoted := remaining[0]
			promoted.IsDefault = true
			s.addresses[promoted.ID] = promoted
		}
	}
	return true, nil
}

func (s *MemStorage) SetDefaultAddress(id uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.addresses[id]
	if !ok {
		return false, nil
	}

	s.clearDefaultsLocked(existing.CustomerEmail)
	existing.IsDefault = true
	existing.UpdatedAt = time.Now()
	s.addresses[id] = existing
	return true, nil
}

// addressesByEmailLocked returns the addresses for an email ordered by id.
// Callers must hold s.mu.
func (s *MemStorage) addressesByEmailLocked(email string) []model.Address {
	var addresses []model.Address
	for _, a := range s.addresses {
		if a.CustomerEmail == email {
			addresses = append(addresses, a)
		}
	}
	sort.Slice(addresses, func(i, j int) bool { return addresses[i].ID < addresses[j].ID })
	return addresses
}

// clearDefaultsLocked drops the default flag for every address of the email.
// Callers must hold s.mu.
func (s *MemStorage) clearDefaultsLocked(email string) {
	for id, a := range s.addresses {
		if a.CustomerEmail == email && a.IsDefault {
			a.IsDefault = false
			s.addresses[id] = a
		}
	}
}

// User methods

func (s *MemStorage) GetUserByID(id uint) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (s *MemStorage) GetUserByUsername(username string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, nil
}

func (s *MemStorage) GetUserByEmail(email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

func (s *MemStorage) CreateUser(user *model.User) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	created := *user
	created.ID = s.nextUserID
	created.CreatedAt = now
	created.UpdatedAt = now
	s.nextUserID++

	if created.Role == "" {
		created.Role = model.RoleCustomer
	}

	s.users[created.ID] = created
	return &created, nil
}

// finalizeItems recomputes every line total from the snapshotted price
// and quantity so totals hold regardless of what the caller sent
func finalizeItems(items model.OrderItems) model.OrderItems {
	finalized := make(model.OrderItems, len(items))
	for i, item := range items {
		item.Total = item.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		finalized[i] = item
	}
	return finalized
}

// sumItems adds up the line totals into the order total
func sumItems(items model.OrderItems) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Total)
	}
	return total
}
