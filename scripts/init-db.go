package main

import (
	"context"
	"fmt"
	"log"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/migrations"
	"storefront/internal/models"
	"storefront/internal/repository"
	"storefront/internal/services"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type seedProduct struct {
	title    string
	price    string
	stock    int
	discount int
	category string
}

var demoCatalog = map[models.Division][]seedProduct{
	models.DivisionJugueteria: {
		{title: "Peluche Oso Panda", price: "59.90", stock: 12, category: "Peluches"},
		{title: "Bloques de Construcción 120 piezas", price: "89.00", stock: 8, discount: 10, category: "Didácticos"},
		{title: "Muñeca Articulada", price: "45.50", stock: 15, category: "Muñecas"},
	},
	models.DivisionFiestas: {
		{title: "Globos Metalizados x50", price: "25.00", stock: 40, category: "Globos"},
		{title: "Piñata Estrella", price: "38.00", stock: 6, category: "Piñatas"},
		{title: "Vela Número Dorada", price: "7.50", stock: 60, category: "Velas"},
	},
}

func main() {
	fmt.Println("Initializing database...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Initialize database
	db, err := database.Initialize(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	ctx := context.Background()
	logger := zap.NewNop()

	fmt.Println("Migrating schema...")
	err = migrations.RunMigrations(ctx, db, migrations.SeedOptions{
		AdminEmail:    cfg.AdminSeedEmail,
		AdminPassword: cfg.AdminSeedPassword,
		NotifyEmail:   cfg.AdminEmail,
		NotifyPhone:   cfg.WhatsAppAdminPhone,
	}, logger)
	if err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	store := repository.NewStore(db)
	catalog := services.NewCatalogService(store, logger)

	for division, products := range demoCatalog {
		existing, err := catalog.ListProducts(ctx, repository.ProductFilter{Division: division})
		if err != nil {
			log.Fatal("Failed to list products:", err)
		}
		if len(existing) > 0 {
			fmt.Printf("%s already has %d products, skipping\n", division, len(existing))
			continue
		}

		fmt.Printf("Creating demo catalog for %s...\n", division)
		categories := map[string]string{}
		for _, p := range products {
			categoryID, ok := categories[p.category]
			if !ok {
				category, err := catalog.CreateCategory(ctx, services.CategoryInput{Name: p.category, Division: division})
				if err != nil {
					log.Fatal("Failed to create category:", err)
				}
				categoryID = category.ID
				categories[p.category] = categoryID
			}

			_, err := catalog.CreateProduct(ctx, services.ProductInput{
				Title:              p.title,
				Price:              decimal.RequireFromString(p.price),
				Stock:              p.stock,
				DiscountPercentage: p.discount,
				IsAvailable:        true,
				CategoryID:         categoryID,
				Division:           division,
			})
			if err != nil {
				log.Fatal("Failed to create product:", err)
			}
			fmt.Printf("  + %s\n", p.title)
		}
	}

	fmt.Println("Database initialization completed successfully!")
}
