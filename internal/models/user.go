package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/wrdo/mailrouter/internal/utils"
)

type User struct {
	ID        string    `gorm:"column:id;type:varchar(50);primaryKey" json:"id"`
	Name      string    `gorm:"column:name;type:varchar(255)" json:"name"`
	Email     string    `gorm:"column:email;type:varchar(255);uniqueIndex" json:"email"`
	APIKey    string    `gorm:"column:api_key;type:varchar(255);uniqueIndex" json:"-"`
	Active    int       `gorm:"column:active;not null;default:1" json:"active"`
	Role      string    `gorm:"column:role;type:varchar(50);not null;default:USER" json:"role"`
	CreatedAt time.Time `gorm:"column:created_at;type:timestamp;default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamp;default:current_timestamp" json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

func (m *User) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = utils.GenerateNanoIDWithPrefix("usr", 16)
	}
	return nil
}

func (m *User) IsActive() bool {
	return m.Active != 0
}
