package repository

import (
	"gorm.io/gorm"

	"github.com/wrdo/mailrouter/interfaces"
	"github.com/wrdo/mailrouter/internal/models"
)

type Repositories struct {
	SystemConfigRepository interfaces.SystemConfigRepository
	UserRepository         interfaces.UserRepository
	UserEmailRepository    interfaces.UserEmailRepository
	ForwardEmailRepository interfaces.ForwardEmailRepository
	DomainRepository       interfaces.DomainRepository
	DeliveryLogRepository  interfaces.DeliveryLogRepository
}

func InitRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		SystemConfigRepository: NewSystemConfigRepository(db),
		UserRepository:         NewUserRepository(db),
		UserEmailRepository:    NewUserEmailRepository(db),
		ForwardEmailRepository: NewForwardEmailRepository(db),
		DomainRepository:       NewDomainRepository(db),
		DeliveryLogRepository:  NewDeliveryLogRepository(db),
	}
}

func MigrateDB(db *gorm.DB) error {
	return db.AutoMigrate(models.AllModels()...)
}
