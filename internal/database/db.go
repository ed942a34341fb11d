package database

import (
	"compras-backend/internal/model"

	gormlogrus "github.com/onrik/gorm-logrus"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewConnection initializes the GORM connection pool. The handle is
// constructed here once and injected into every repository; nothing imports
// it as ambient state.
func NewConnection(dsn string, log *logrus.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogrus.New(),
	})
	if err != nil {
		return nil, err
	}

	// Auto-migrate core models
	err = db.AutoMigrate(
		&model.User{},
		&model.Supplier{},
		&model.Approver{},
		&model.Category{},
		&model.Unit{},
		&model.PaymentTerm{},
		&model.Order{},
		&model.OrderItem{},
		&model.SequenceCounter{},
		&model.AuditLog{},
	)
	if err != nil {
		log.WithError(err).Warn("failed to auto-migrate models")
	}

	return db, nil
}
