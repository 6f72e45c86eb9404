package handler

import (
	"net/http"

	"freshbulk-service/internal/mailer"
	"freshbulk-service/internal/middleware"
	"freshbulk-service/internal/model"
	"freshbulk-service/internal/storage"
	"freshbulk-service/pkg/logger"
	"freshbulk-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// OrderItemRequest references a catalog product; the handler snapshots
// name, unit and price from the catalog at creation time
type OrderItemRequest struct {
	ProductID uint `json:"productId"`
	Quantity  int  `json:"quantity"`
}

// OrderRequest defines the structure for order placement requests
type OrderRequest struct {
	CustomerName    string             `json:"customerName"`
	CustomerEmail   string             `json:"customerEmail"`
	CustomerPhone   string             `json:"customerPhone"`
	DeliveryAddress string             `json:"deliveryAddress"`
	DeliveryCity    string             `json:"deliveryCity"`
	DeliveryPincode string             `json:"deliveryPincode"`
	Notes           string             `json:"notes"`
	Items           []OrderItemRequest `json:"items"`
}

func (r *OrderRequest) validate() string {
	if r.CustomerName == "" || r.CustomerEmail == "" || r.CustomerPhone == "" {
		return "customer name, email and phone are required"
	}
	if r.DeliveryAddress == "" || r.DeliveryCity == "" || r.DeliveryPincode == "" {
		return "delivery address, city and pincode are required"
	}
	if len(r.Items) == 0 {
		return "order must contain at least one item"
	}
	for _, item := range r.Items {
		if item.Quantity <= 0 {
			return "item quantity must be positive"
		}
	}
	return ""
}

// ListOrders handles retrieving all orders (admin only)
func ListOrders(c echo.Context) error {
	log := logger.FromContext(c)

	orders, err := storage.Get().GetAllOrders()
	if err != nil {
		log.Error("Failed to list orders", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve orders"})
	}

	prometheus.RecordOrderOperation("list")
	return c.JSON(http.StatusOK, orders)
}

// GetOrder handles retrieving a single order; customers may only view
// orders placed with their own email
func GetOrder(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order ID"})
	}

	order, err := storage.Get().GetOrderByID(id)
	if err != nil {
		log.Error("Failed to get order", zap.Uint("order_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve order"})
	}
	if order == nil {
		log.Warn("Order not found", zap.Uint("order_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
	}

	if !middleware.IsAdmin(c) && middleware.CallerEmail(c) != order.CustomerEmail {
		log.Warn("Order access denied",
			zap.Uint("order_id", id),
			zap.String("caller", middleware.CallerEmail(c)))
		return c.JSON(http.StatusForbidden, echo.Map{"error": "you don't have permission to view this order"})
	}

	prometheus.RecordOrderOperation("get")
	return c.JSON(http.StatusOK, order)
}

// TrackOrder handles public order tracking by order number
func TrackOrder(c echo.Context) error {
	log := logger.FromContext(c)
	orderNumber := c.Param("orderNumber")

	order, err := storage.Get().GetOrderByNumber(orderNumber)
	if err != nil {
		log.Error("Failed to track order", zap.String("order_number", orderNumber), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve order"})
	}
	if order == nil {
		log.Warn("Order not found for tracking", zap.String("order_number", orderNumber))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
	}

	prometheus.RecordOrderOperation("track")
	return c.JSON(http.StatusOK, order)
}

// CreateOrder handles order placement. Authentication is optional so
// guests can check out. Each item is snapshotted from the catalog; the
// store computes line totals and the order total.
func CreateOrder(c echo.Context) error {
	log := logger.FromContext(c)

	var req OrderRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid order data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order data"})
	}
	if msg := req.validate(); msg != "" {
		log.Warn("Order validation failed", zap.String("reason", msg))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	items := make(model.OrderItems, 0, len(req.Items))
	for _, item := range req.Items {
		product, err := storage.Get().GetProductByID(item.ProductID)
		if err != nil {
			log.Error("Failed to resolve order item", zap.Uint("product_id", item.ProductID), zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create order"})
		}
		if product == nil {
			log.Warn("Order references unknown product", zap.Uint("product_id", item.ProductID))
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "order references an unknown product"})
		}
		items = append(items, model.OrderItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			Price:       product.Price,
			Quantity:    item.Quantity,
			Unit:        product.Unit,
		})
	}

	order := model.Order{
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		DeliveryAddress: req.DeliveryAddress,
		DeliveryCity:    req.DeliveryCity,
		DeliveryPincode: req.DeliveryPincode,
		Notes:           req.Notes,
		Items:           items,
	}

	created, err := storage.Get().CreateOrder(&order)
	if err != nil {
		log.Error("Failed to create order", zap.String("customer_email", req.CustomerEmail), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create order"})
	}

	// Confirmation email is fire-and-forget; the order stands either way
	go mailer.SendOrderConfirmation(created)

	prometheus.RecordOrderOperation("create")
	log.Info("Order created",
		zap.Uint("order_id", created.ID),
		zap.String("order_number", created.OrderNumber),
		zap.String("customer_email", created.CustomerEmail),
		zap.String("total_amount", created.TotalAmount.String()))
	return c.JSON(http.StatusCreated, created)
}

// UpdateOrderStatus handles a status change (admin only). The store
// overwrites the status unconditionally; a notification email goes out
// fire-and-forget on success.
func UpdateOrderStatus(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order ID"})
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid status data", zap.Uint("order_id", id), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status data"})
	}
	if !model.ValidStatus(req.Status) {
		log.Warn("Unknown order status", zap.Uint("order_id", id), zap.String("status", req.Status))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown order status"})
	}

	updated, err := storage.Get().UpdateOrderStatus(id, req.Status)
	if err != nil {
		log.Error("Failed to update order status", zap.Uint("order_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update order status"})
	}
	if updated == nil {
		log.Warn("Order not found for status update", zap.Uint("order_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
	}

	go mailer.SendOrderStatusUpdate(updated, req.Status)

	prometheus.RecordOrderOperation("status_update")
	prometheus.RecordOrderStatus(req.Status)
	log.Info("Order status updated",
		zap.Uint("order_id", id),
		zap.String("order_number", updated.OrderNumber),
		zap.String("status", req.Status))
	return c.JSON(http.StatusOK, updated)
}
