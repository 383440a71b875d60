package database

import (
	"fmt"
	"log"
	"os"

	"unified-saas-backend/internal/domain/apps"
	"unified-saas-backend/internal/domain/customers"
	"unified-saas-backend/internal/domain/products"
	"unified-saas-backend/internal/domain/subscriptions"
	"unified-saas-backend/internal/domain/templates"
	"unified-saas-backend/internal/domain/users"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func InitDB() {
	dsn := os.Getenv("DB_URL")
	if dsn == "" {
		log.Fatal("❌ DB_URL not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("❌ Failed to connect to database:", err)
	}

	DB = db

	if err := DB.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto;`).Error; err != nil {
		log.Fatal("❌ Failed to enable pgcrypto extension:", err)
	}

	if err := DB.AutoMigrate(
		// identity
		&users.User{},
		&users.VerificationToken{},

		// tenant storefronts
		&templates.Template{},
		&apps.App{},
		&products.Product{},

		// billing state synced from Stripe
		&customers.Customer{},
		&subscriptions.Subscription{},
	); err != nil {
		log.Fatal("❌ AutoMigrate error:", err)
	}

	fmt.Println("✅ Connected and migrated successfully")
}
