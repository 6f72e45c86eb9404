package storage

import (
	"os"

	"freshbulk-service/internal/model"
	"freshbulk-service/pkg/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// seedProduct is the YAML shape of a catalog seed entry
type seedProduct struct {
	Name        string `yaml:"name"`
	Category    string `yaml:"category"`
	Price       string `yaml:"price"`
	Unit        string `yaml:"unit"`
	Description string `yaml:"description"`
	ImageURL    string `yaml:"image_url"`
}

type seedFile struct {
	Products []seedProduct `yaml:"products"`
}

// LoadSeedProducts reads catalog products from a YAML seed file. An empty
// path or an unreadable file falls back to the built-in catalog.
func LoadSeedProducts(path string) []model.Product {
	log := logger.GetLogger()

	if path == "" {
		return defaultSeedProducts()
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		log.Warn("Seed file not readable, using built-in catalog",
			zap.String("path", path), zap.Error(err))
		return defaultSeedProducts()
	}

	var file seedFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		log.Warn("Seed file not parseable, using built-in catalog",
			zap.String("path", path), zap.Error(err))
		return defaultSeedProducts()
	}

	products := make([]model.Product, 0, len(file.Products))
	for _, entry := range file.Products {
		price, err := decimal.NewFromString(entry.Price)
		if err != nil {
			log.Warn("Skipping seed product with invalid price",
				zap.String("name", entry.Name), zap.String("price", entry.Price))
			continue
		}
		products = append(products, model.Product{
			Name:        entry.Name,
			Category:    entry.Category,
			Price:       price,
			Unit:        entry.Unit,
			Description: entry.Description,
			ImageURL:    entry.ImageURL,
		})
	}

	log.Info("Loaded catalog seed", zap.String("path", path), zap.Int("count", len(products)))
	return products
}

// defaultSeedProducts mirrors the stock catalog the service ships with
func defaultSeedProducts() []model.Product {
	return []model.Product{
		{
			Name:        "Tomatoes",
			Category:    model.CategoryVegetables,
			Price:       decimal.NewFromInt(25),
			Unit:        "kg",
			Description: "Fresh, ripe tomatoes perfect for sauces and salads.",
		},
		{
			Name:        "Apples",
			Category:    model.CategoryFruits,
			Price:       decimal.NewFromInt(120),
			Unit:        "kg",
			Description: "Sweet and crunchy apples, perfect for snacking or baking.",
		},
		{
			Name:        "Spinach",
			Category:    model.CategoryLeafyGreens,
			Price:       decimal.NewFromInt(40),
			Unit:        "bunch",
			Description: "Nutrient-rich spinach leaves for salads and cooking.",
		},
		{
			Name:        "Onions",
			Category:    model.CategoryVegetables,
			Price:       decimal.NewFromInt(30),
			Unit:        "kg",
			Description: "Essential kitchen staple for adding flavor to any dish.",
		},
	}
}
