package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/wrdo/mailrouter/internal/utils"
)

// ForwardEmail is one inbound message stored in a mailbox inbox.
type ForwardEmail struct {
	ID          string     `gorm:"column:id;type:varchar(50);primaryKey" json:"id"`
	From        string     `gorm:"column:from;type:varchar(255)" json:"from"`
	FromName    string     `gorm:"column:from_name;type:varchar(255)" json:"fromName"`
	To          string     `gorm:"column:to;type:varchar(255);index;not null" json:"to"`
	Subject     string     `gorm:"column:subject;type:text" json:"subject"`
	Text        string     `gorm:"column:text;type:text" json:"text"`
	HTML        string     `gorm:"column:html;type:text" json:"html"`
	Date        string     `gorm:"column:date;type:varchar(255)" json:"date"`
	MessageID   string     `gorm:"column:message_id;type:varchar(255)" json:"messageId"`
	ReplyTo     string     `gorm:"column:reply_to;type:varchar(255)" json:"replyTo"`
	Cc          string     `gorm:"column:cc;type:text" json:"cc"`
	Headers     string     `gorm:"column:headers;type:text" json:"headers"`
	Attachments string     `gorm:"column:attachments;type:text" json:"attachments"`
	ReadAt      *time.Time `gorm:"column:read_at;type:timestamp" json:"readAt"`
	CreatedAt   time.Time  `gorm:"column:created_at;type:timestamp(6);index" json:"createdAt"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;type:timestamp;default:current_timestamp" json:"updatedAt"`
}

func (ForwardEmail) TableName() string {
	return "forward_emails"
}

func (m *ForwardEmail) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = utils.GenerateNanoIDWithPrefix("fwd", 16)
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = utils.Now()
	}
	return nil
}
