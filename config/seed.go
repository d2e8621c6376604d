package config

import (
	"fmt"
	"strings"

	"near-expiry-api/models"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultCategories are inserted on every boot if missing
var DefaultCategories = []string{
	"Bakery", "Dairy", "Fruits & Vegetables", "Meat & Seafood",
	"Prepared Meals", "Beverages", "Snacks", "Other",
}

// DefaultCommissionPercentage applies until an admin sets one
const DefaultCommissionPercentage = "10"

// Migrate creates or updates every table
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Restaurant{},
		&models.Category{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderStatusHistory{},
		&models.Setting{},
		&models.EmailVerificationToken{},
		&models.PasswordResetToken{},
	)
}

// Seed inserts lookup rows and, when configured, the first admin
func Seed(db *gorm.DB, admin AdminConfig, log *zap.Logger) error {
	for _, name := range DefaultCategories {
		if err := db.Where(models.Category{Name: name}).FirstOrCreate(&models.Category{}).Error; err != nil {
			return fmt.Errorf("seed category %s: %w", name, err)
		}
	}

	commission := models.Setting{Key: models.SettingCommissionPercentage, Value: DefaultCommissionPercentage}
	if err := db.Where(models.Setting{Key: commission.Key}).FirstOrCreate(&commission).Error; err != nil {
		return fmt.Errorf("seed commission: %w", err)
	}

	return seedAdmin(db, admin, log)
}

func seedAdmin(db *gorm.DB, admin AdminConfig, log *zap.Logger) error {
	if admin.Email == "" || admin.Password == "" {
		log.Info("skip seeding admin: ADMIN_EMAIL/ADMIN_PASSWORD not set")
		return nil
	}
	email := strings.ToLower(strings.TrimSpace(admin.Email))

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user := models.User{
		Email:         email,
		PasswordHash:  string(hash),
		FullName:      "Administrator",
		Role:          models.RoleAdmin,
		IsActive:      true,
		EmailVerified: true,
	}
	if err := db.Create(&user).Error; err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	log.Info("admin account seeded", zap.String("email", email))
	return nil
}
