package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/wrdo/mailrouter/internal/utils"
)

// UserEmail is a mailbox address owned by a user. Soft deletion only hides it from owners;
// inbound mail keeps being stored for it.
type UserEmail struct {
	ID           string     `gorm:"column:id;type:varchar(50);primaryKey" json:"id"`
	UserID       string     `gorm:"column:user_id;type:varchar(50);index;not null" json:"userId"`
	EmailAddress string     `gorm:"column:email_address;type:varchar(255);uniqueIndex;not null" json:"emailAddress"`
	CreatedAt    time.Time  `gorm:"column:created_at;type:timestamp;default:current_timestamp" json:"createdAt"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;type:timestamp;default:current_timestamp" json:"updatedAt"`
	DeletedAt    *time.Time `gorm:"column:deleted_at;type:timestamp;index" json:"deletedAt"`
}

func (UserEmail) TableName() string {
	return "user_emails"
}

func (m *UserEmail) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = utils.GenerateNanoIDWithPrefix("mbx", 16)
	}
	return nil
}

func (m *UserEmail) IsDeleted() bool {
	return m.DeletedAt != nil
}
