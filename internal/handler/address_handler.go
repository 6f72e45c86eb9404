package handler

import (
	"net/http"

	"freshbulk-service/internal/middleware"
	"freshbulk-service/internal/model"
	"freshbulk-service/internal/storage"
	"freshbulk-service/pkg/logger"
	"freshbulk-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AddressRequest defines the structure for address creation requests
type AddressRequest struct {
	CustomerName  string `json:"customerName"`
	CustomerEmail string `json:"customerEmail"`
	CustomerPhone string `json:"customerPhone"`
	AddressLine   string `json:"addressLine"`
	City          string `json:"city"`
	Pincode       string `json:"pincode"`
	IsDefault     bool   `json:"isDefault"`
}

func (r *AddressRequest) validate() string {
	if r.CustomerName == "" || r.CustomerEmail == "" || r.CustomerPhone == "" {
		return "customer name, email and phone are required"
	}
	if r.AddressLine == "" || r.City == "" || r.Pincode == "" {
		return "address line, city and pincode are required"
	}
	return ""
}

// ListAddresses returns addresses for an email, or all of them for admins
func ListAddresses(c echo.Context) error {
	log := logger.FromContext(c)

	// If email is provided, the caller must be admin or asking for their own
	if email := c.QueryParam("email"); email != "" {
		if !middleware.IsAdmin(c) && middleware.CallerEmail(c) != email {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "you don't have permission to view these addresses"})
		}

		addresses, err := storage.Get().GetAddressesByEmail(email)
		if err != nil {
			log.Error("Failed to list addresses", zap.String("email", email), zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve addresses"})
		}
		prometheus.RecordAddressOperation("list")
		return c.JSON(http.StatusOK, addresses)
	}

	// Only admins can view the full address book
	if !middleware.IsAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "admin access required"})
	}

	addresses, err := storage.Get().GetAllAddresses()
	if err != nil {
		log.Error("Failed to list addresses", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve addresses"})
	}

	prometheus.RecordAddressOperation("list")
	return c.JSON(http.StatusOK, addresses)
}

// GetAddress handles retrieving a single address by ID
func GetAddress(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid address ID"})
	}

	address, err := storage.Get().GetAddressByID(id)
	if err != nil {
		log.Error("Failed to get address", zap.Uint("address_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve address"})
	}
	if address == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "address not found"})
	}

	if !middleware.IsAdmin(c) && middleware.CallerEmail(c) != address.CustomerEmail {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "you don't have permission to view this address"})
	}

	prometheus.RecordAddressOperation("get")
	return c.JSON(http.StatusOK, address)
}

// CreateAddress handles saving a delivery address. The first address for
// an email, or one explicitly marked default, becomes the default.
func CreateAddress(c echo.Context) error {
	log := logger.FromContext(c)

	var req AddressRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid address data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid address data"})
	}
	if msg := req.validate(); msg != "" {
		log.Warn("Address validation failed", zap.String("reason", msg))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	if !middleware.IsAdmin(c) && middleware.CallerEmail(c) != req.CustomerEmail {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "you can only create addresses for your own account"})
	}

	address := model.Address{
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		AddressLine:   req.AddressLine,
		City:          req.City,
		Pincode:       req.Pincode,
		IsDefault:     req.IsDefault,
	}

	created, err := storage.Get().CreateAddress(&address)
	if err != nil {
		log.Error("Failed to create address", zap.String("email", req.CustomerEmail), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create address"})
	}

	prometheus.RecordAddressOperation("create")
	log.Info("Address created",
		zap.Uint("address_id", created.ID),
		zap.String("email", created.CustomerEmail),
		zap.Bool("is_default", created.IsDefault))
	return c.JSON(http.StatusCreated, created)
}

// UpdateAddress handles a partial update of an existing address
func UpdateAddress(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid address ID"})
	}

	address, err := storage.Get().GetAddressByID(id)
	if err != nil {
		log.Error("Failed to get address", zap.Uint("address_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve address"})
	}
	if address == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "address not found"})
	}

	if !middleware.IsAdmin(c) && middleware.CallerEmail(c) != address.CustomerEmail {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "you don't have permission to update this address"})
	}

	var update storage.AddressUpdate
	if err := c.Bind(&update); err != nil {
		log.Error("Invalid address data", zap.Uint("address_id", id), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid address data"})
	}

	updated, err := storage.Get().UpdateAddress(id, update)
	if err != nil {
		log.Error("Failed to update address", zap.Uint("address_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update address"})
	}
	if updated == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "address not found"})
	}

	prometheus.RecordAddressOperation("update")
	log.Info("Address updated", zap.Uint("address_id", id), zap.Bool("is_default", updated.IsDefault))
	return c.JSON(http.StatusOK, updated)
}

// DeleteAddress handles removing an address. Deleting the default
// promotes the first remaining address for the same email.
func DeleteAddress(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid address ID"})
	}

	address, err := storage.Get().GetAddressByID(id)
	if err != nil {
		log.Error("Failed to get address", zap.Uint("address_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve address"})
	}
	if address == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "address not found"})
	}

	if !middleware.IsAdmin(c) && middleware.CallerEmail(c) != address.CustomerEmail {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "you don't have permission to delete this address"})
	}

	if _, err := storage.Get().DeleteAddress(id); err != nil {
		log.Error("Failed to delete address", zap.Uint("address_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete address"})
	}

	prometheus.RecordAddressOperation("delete")
	log.Info("Address deleted", zap.Uint("address_id", id), zap.String("email", address.CustomerEmail))
	return c.NoContent(http.StatusNoContent)
}

// SetDefaultAddress makes the target address the single default for its email
func SetDefaultAddress(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid address ID"})
	}

	address, err := storage.Get().GetAddressByID(id)
	if err != nil {
		log.Error("Failed to get address", zap.Uint("address_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve address"})
	}
	if address == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "address not found"})
	}

	if !middleware.IsAdmin(c) && middleware.CallerEmail(c) != address.CustomerEmail {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "you don't have permission to modify this address"})
	}

	ok, err := storage.Get().SetDefaultAddress(id)
	if err != nil {
		log.Error("Failed to set default address", zap.Uint("address_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to set default address"})
	}
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "address not found"})
	}

	updated, err := storage.Get().GetAddressByID(id)
	if err != nil || updated == nil {
		log.Error("Failed to reload address after set-default", zap.Uint("address_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve address"})
	}

	prometheus.RecordAddressOperation("set_default")
	log.Info("Default address set", zap.Uint("address_id", id), zap.String("email", updated.CustomerEmail))
	return c.JSON(http.StatusOK, updated)
}
