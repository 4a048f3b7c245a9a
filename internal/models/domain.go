package models

import (
	"time"
)

// Domain is a custom domain served by the product. Domains with EnableEmail set can be used
// as the sender domain for forwarded mail.
type Domain struct {
	ID          uint64    `gorm:"primary_key;autoIncrement" json:"id"`
	DomainName  string    `gorm:"column:domain_name;type:varchar(255);NOT NULL;uniqueIndex" json:"domainName"`
	EnableEmail bool      `gorm:"column:enable_email;type:boolean;NOT NULL;DEFAULT:false" json:"enableEmail"`
	Active      bool      `gorm:"column:active;type:boolean;NOT NULL;DEFAULT:true" json:"active"`
	CreatedAt   time.Time `gorm:"column:created_at;type:timestamp;DEFAULT:current_timestamp" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"column:updated_at;type:timestamp;DEFAULT:current_timestamp" json:"updatedAt"`
}

func (Domain) TableName() string {
	return "domains"
}
