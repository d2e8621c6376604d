package repository

import (
	"context"
	"errors"
	"fmt"

	"near-expiry-api/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultCommissionPercentage is used while no setting row exists
var DefaultCommissionPercentage = decimal.NewFromInt(10)

type SettingRepository struct {
	DB *gorm.DB
}

func NewSettingRepository(db *gorm.DB) *SettingRepository {
	return &SettingRepository{DB: db}
}

// Get returns the value for key, or "" with ok=false when unset
func (r *SettingRepository) Get(ctx context.Context, tx *gorm.DB, key string) (string, bool, error) {
	var s models.Setting
	err := r.conn(tx).WithContext(ctx).Where("key = ?", key).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return s.Value, true, nil
}

// Set upserts key = value
func (r *SettingRepository) Set(ctx context.Context, tx *gorm.DB, key, value string) error {
	s := models.Setting{Key: key, Value: value}
	return r.conn(tx).WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&s).Error
}

// CommissionPercentage reads the platform commission, falling back to the
// default when unset. A nil tx reads outside any transaction.
func (r *SettingRepository) CommissionPercentage(ctx context.Context, tx *gorm.DB) (decimal.Decimal, error) {
	raw, ok, err := r.Get(ctx, tx, models.SettingCommissionPercentage)
	if err != nil {
		return decimal.Zero, err
	}
	if !ok {
		return DefaultCommissionPercentage, nil
	}
	pct, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse %s %q: %w", models.SettingCommissionPercentage, raw, err)
	}
	return pct, nil
}

func (r *SettingRepository) SetCommissionPercentage(ctx context.Context, pct decimal.Decimal) error {
	return r.Set(ctx, nil, models.SettingCommissionPercentage, pct.String())
}

func (r *SettingRepository) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.DB
}
