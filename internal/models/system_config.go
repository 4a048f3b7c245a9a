package models

import (
	"time"

	"github.com/wrdo/mailrouter/internal/enum"
)

// SystemConfig is one admin-editable feature setting. Values are stored as text and
// interpreted according to Type.
type SystemConfig struct {
	ID          uint64                `gorm:"primary_key;autoIncrement" json:"id"`
	Key         string                `gorm:"column:key;type:varchar(255);uniqueIndex;not null" json:"key"`
	Value       string                `gorm:"column:value;type:text" json:"value"`
	Type        enum.SystemConfigType `gorm:"column:type;type:varchar(50);not null;default:STRING" json:"type"`
	Description string                `gorm:"column:description;type:text" json:"description"`
	CreatedAt   time.Time             `gorm:"column:created_at;type:timestamp;default:current_timestamp" json:"createdAt"`
	UpdatedAt   time.Time             `gorm:"column:updated_at;type:timestamp;default:current_timestamp" json:"updatedAt"`
}

func (SystemConfig) TableName() string {
	return "system_configs"
}
