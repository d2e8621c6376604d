package models

import "time"

const SettingCommissionPercentage = "commission_percentage"

// Setting is a key/value row for platform-wide knobs
type Setting struct {
	Key       string    `json:"key" gorm:"primaryKey;size:100"`
	Value     string    `json:"value" gorm:"not null"`
	UpdatedAt time.Time `json:"updatedAt"`
}
