package config

import (
	"testing"
	"time"

	"near-expiry-api/models"

	"go.uber.org/zap"
	"gorm.io/gorm/logger"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "DB_DRIVER", "DB_SOURCE", "JWT_EXPIRE", "CORS_ORIGINS", "DB_LOG_LEVEL"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.Server.Port != "8080" {
		t.Errorf("port = %q, want 8080", cfg.Server.Port)
	}
	if cfg.DB.Driver != "sqlite" {
		t.Errorf("driver = %q, want sqlite", cfg.DB.Driver)
	}
	if cfg.JWT.TTL != 7*24*time.Hour {
		t.Errorf("jwt ttl = %v", cfg.JWT.TTL)
	}
	if len(cfg.CORS.AllowOrigins) != 1 || cfg.CORS.AllowOrigins[0] != "*" {
		t.Errorf("cors origins = %v", cfg.CORS.AllowOrigins)
	}
	if cfg.DB.LogLevel != logger.Warn {
		t.Errorf("db log level = %v", cfg.DB.LogLevel)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_MAX_OPEN_CONNS", "3")
	t.Setenv("JWT_EXPIRE", "2h")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test,")
	t.Setenv("DB_LOG_LEVEL", "silent")

	cfg := Load()

	if cfg.Server.Port != "9090" {
		t.Errorf("port = %q", cfg.Server.Port)
	}
	if cfg.DB.MaxOpenConns != 3 {
		t.Errorf("max open conns = %d", cfg.DB.MaxOpenConns)
	}
	if cfg.JWT.TTL != 2*time.Hour {
		t.Errorf("jwt ttl = %v", cfg.JWT.TTL)
	}
	if got := cfg.CORS.AllowOrigins; len(got) != 2 || got[1] != "http://b.test" {
		t.Errorf("cors origins = %v", got)
	}
	if cfg.DB.LogLevel != logger.Silent {
		t.Errorf("db log level = %v", cfg.DB.LogLevel)
	}
}

func TestOpenDatabaseRejectsUnknownDriver(t *testing.T) {
	if _, err := OpenDatabase(DBConfig{Driver: "oracle"}); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestMigrateAndSeed(t *testing.T) {
	db, err := OpenDatabase(DBConfig{Driver: "sqlite", Source: "file::memory:", MaxOpenConns: 1, LogLevel: logger.Silent})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	admin := AdminConfig{Email: "Admin@Example.com", Password: "Secret#123"}
	// Seeding twice must not duplicate rows.
	for i := 0; i < 2; i++ {
		if err := Seed(db, admin, zap.NewNop()); err != nil {
			t.Fatalf("seed #%d: %v", i+1, err)
		}
	}

	var categories int64
	db.Model(&models.Category{}).Count(&categories)
	if int(categories) != len(DefaultCategories) {
		t.Errorf("categories = %d, want %d", categories, len(DefaultCategories))
	}

	var setting models.Setting
	if err := db.First(&setting, "key = ?", models.SettingCommissionPercentage).Error; err != nil {
		t.Fatalf("commission setting: %v", err)
	}
	if setting.Value != DefaultCommissionPercentage {
		t.Errorf("commission = %q", setting.Value)
	}

	var user models.User
	if err := db.First(&user, "email = ?", "admin@example.com").Error; err != nil {
		t.Fatalf("admin: %v", err)
	}
	if user.Role != models.RoleAdmin || !user.IsActive || !user.EmailVerified {
		t.Errorf("unexpected admin row: %+v", user)
	}
}
