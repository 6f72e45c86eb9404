package handler

import (
	"net/http"
	"strconv"

	"freshbulk-service/internal/model"
	"freshbulk-service/internal/storage"
	"freshbulk-service/pkg/logger"
	"freshbulk-service/prometheus"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductRequest defines the structure for product creation requests
type ProductRequest struct {
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Unit        string          `json:"unit"`
	Description string          `json:"description"`
	ImageURL    string          `json:"imageUrl"`
}

func (r *ProductRequest) validate() string {
	if r.Name == "" || r.Unit == "" {
		return "name and unit are required"
	}
	if !model.ValidCategory(r.Category) {
		return "unknown product category"
	}
	if !r.Price.IsPositive() {
		return "price must be positive"
	}
	return ""
}

// ListProducts handles retrieving the full catalog, optionally by category
func ListProducts(c echo.Context) error {
	log := logger.FromContext(c)

	products, err := storage.Get().GetAllProducts()
	if err != nil {
		log.Error("Failed to list products", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve products"})
	}

	// Filter by category if specified
	if category := c.QueryParam("category"); category != "" {
		filtered := make([]model.Product, 0, len(products))
		for _, p := range products {
			if p.Category == category {
				filtered = append(filtered, p)
			}
		}
		products = filtered
	}

	prometheus.RecordProductOperation("list")
	return c.JSON(http.StatusOK, products)
}

// ListCategories returns the fixed set of product categories
func ListCategories(c echo.Context) error {
	return c.JSON(http.StatusOK, model.Categories())
}

// GetProduct handles retrieving a single product by ID
func GetProduct(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product ID"})
	}

	product, err := storage.Get().GetProductByID(id)
	if err != nil {
		log.Error("Failed to get product", zap.Uint("product_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve product"})
	}
	if product == nil {
		log.Warn("Product not found", zap.Uint("product_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
	}

	prometheus.RecordProductOperation("get")
	return c.JSON(http.StatusOK, product)
}

// CreateProduct handles creating a new catalog product (admin only)
func CreateProduct(c echo.Context) error {
	log := logger.FromContext(c)

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid product data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product data"})
	}
	if msg := req.validate(); msg != "" {
		log.Warn("Product validation failed", zap.String("reason", msg))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	product := model.Product{
		Name:        req.Name,
		Category:    req.Category,
		Price:       req.Price,
		Unit:        req.Unit,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	}

	created, err := storage.Get().CreateProduct(&product)
	if err != nil {
		log.Error("Failed to create product", zap.String("name", req.Name), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create product"})
	}

	prometheus.RecordProductOperation("create")
	log.Info("Product created",
		zap.Uint("product_id", created.ID),
		zap.String("name", created.Name),
		zap.String("category", created.Category))
	return c.JSON(http.StatusCreated, created)
}

// UpdateProduct handles a partial update of an existing product (admin only)
func UpdateProduct(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product ID"})
	}

	var update storage.ProductUpdate
	if err := c.Bind(&update); err != nil {
		log.Error("Invalid product data", zap.Uint("product_id", id), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product data"})
	}
	if update.Price != nil && !update.Price.IsPositive() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "price must be positive"})
	}
	if update.Category != nil && !model.ValidCategory(*update.Category) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown product category"})
	}

	updated, err := storage.Get().UpdateProduct(id, update)
	if err != nil {
		log.Error("Failed to update product", zap.Uint("product_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update product"})
	}
	if updated == nil {
		log.Warn("Product not found for update", zap.Uint("product_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
	}

	prometheus.RecordProductOperation("update")
	log.Info("Product updated", zap.Uint("product_id", id), zap.String("name", updated.Name))
	return c.JSON(http.StatusOK, updated)
}

// DeleteProduct handles deleting a product (admin only). Orders keep their
// item snapshots, so deletion has no referential check.
func DeleteProduct(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product ID"})
	}

	deleted, err := storage.Get().DeleteProduct(id)
	if err != nil {
		log.Error("Failed to delete product", zap.Uint("product_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete product"})
	}
	if !deleted {
		log.Warn("Product not found for deletion", zap.Uint("product_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
	}

	prometheus.RecordProductOperation("delete")
	log.Info("Product deleted", zap.Uint("product_id", id))
	return c.NoContent(http.StatusNoContent)
}

// parseID parses a numeric path parameter
func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
