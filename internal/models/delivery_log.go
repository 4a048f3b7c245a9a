package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/wrdo/mailrouter/internal/utils"
)

const (
	DeliveryStatusDelivered = "delivered"
	DeliveryStatusFailed    = "failed"
)

// DeliveryLog records the outcome of one dispatch, including best-effort push failures.
type DeliveryLog struct {
	ID         string    `gorm:"column:id;type:varchar(50);primaryKey" json:"id"`
	DispatchID string    `gorm:"column:dispatch_id;type:varchar(64);uniqueIndex" json:"dispatchId"`
	Source     string    `gorm:"column:source;type:varchar(50)" json:"source"`
	Recipient  string    `gorm:"column:recipient;type:varchar(255);index" json:"recipient"`
	MessageID  string    `gorm:"column:message_id;type:varchar(255)" json:"messageId"`
	Actions    string    `gorm:"column:actions;type:varchar(255)" json:"actions"`
	Status     string    `gorm:"column:status;type:varchar(50);index" json:"status"`
	Failures   JSONMap   `gorm:"column:failures;type:text" json:"failures"`
	CreatedAt  time.Time `gorm:"column:created_at;type:timestamp(6);index" json:"createdAt"`
}

func (DeliveryLog) TableName() string {
	return "delivery_logs"
}

func (m *DeliveryLog) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = utils.GenerateNanoIDWithPrefix("dlog", 12)
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = utils.Now()
	}
	return nil
}
