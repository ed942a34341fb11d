package repository

import (
	"context"

	"compras-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MasterDataRepository covers the flat reference tables: categories, units and
// payment terms. They share the same shape so the access layer is generic over
// the three models.
type MasterDataRepository interface {
	ListCategories(ctx context.Context, includeInactive bool) ([]model.Category, error)
	CreateCategory(ctx context.Context, c *model.Category) error
	UpdateCategory(ctx context.Context, c *model.Category) error
	FindCategory(ctx context.Context, id uuid.UUID) (*model.Category, error)

	ListUnits(ctx context.Context, includeInactive bool) ([]model.Unit, error)
	CreateUnit(ctx context.Context, u *model.Unit) error
	UpdateUnit(ctx context.Context, u *model.Unit) error
	FindUnit(ctx context.Context, id uuid.UUID) (*model.Unit, error)

	ListPaymentTerms(ctx context.Context, includeInactive bool) ([]model.PaymentTerm, error)
	CreatePaymentTerm(ctx context.Context, p *model.PaymentTerm) error
	UpdatePaymentTerm(ctx context.Context, p *model.PaymentTerm) error
	FindPaymentTerm(ctx context.Context, id uuid.UUID) (*model.PaymentTerm, error)
}

type masterDataRepository struct {
	db *gorm.DB
}

func NewMasterDataRepository(db *gorm.DB) MasterDataRepository {
	return &masterDataRepository{db: db}
}

func listActive[T any](ctx context.Context, db *gorm.DB, includeInactive bool) ([]T, error) {
	var rows []T
	query := db.WithContext(ctx).Order("name ASC")
	if !includeInactive {
		query = query.Where("is_active = true")
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *masterDataRepository) ListCategories(ctx context.Context, includeInactive bool) ([]model.Category, error) {
	return listActive[model.Category](ctx, GetDB(ctx, r.db), includeInactive)
}

func (r *masterDataRepository) CreateCategory(ctx context.Context, c *model.Category) error {
	return GetDB(ctx, r.db).Create(c).Error
}

func (r *masterDataRepository) UpdateCategory(ctx context.Context, c *model.Category) error {
	return GetDB(ctx, r.db).Save(c).Error
}

func (r *masterDataRepository) FindCategory(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	var c model.Category
	if err := GetDB(ctx, r.db).First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *masterDataRepository) ListUnits(ctx context.Context, includeInactive bool) ([]model.Unit, error) {
	return listActive[model.Unit](ctx, GetDB(ctx, r.db), includeInactive)
}

func (r *masterDataRepository) CreateUnit(ctx context.Context, u *model.Unit) error {
	return GetDB(ctx, r.db).Create(u).Error
}

func (r *masterDataRepository) UpdateUnit(ctx context.Context, u *model.Unit) error {
	return GetDB(ctx, r.db).Save(u).Error
}

func (r *masterDataRepository) FindUnit(ctx context.Context, id uuid.UUID) (*model.Unit, error) {
	var u model.Unit
	if err := GetDB(ctx, r.db).First(&u, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *masterDataRepository) ListPaymentTerms(ctx context.Context, includeInactive bool) ([]model.PaymentTerm, error) {
	return listActive[model.PaymentTerm](ctx, GetDB(ctx, r.db), includeInactive)
}

func (r *masterDataRepository) CreatePaymentTerm(ctx context.Context, p *model.PaymentTerm) error {
	return GetDB(ctx, r.db).Create(p).Error
}

func (r *masterDataRepository) UpdatePaymentTerm(ctx context.Context, p *model.PaymentTerm) error {
	return GetDB(ctx, r.db).Save(p).Error
}

func (r *masterDataRepository) FindPaymentTerm(ctx context.Context, id uuid.UUID) (*model.PaymentTerm, error) {
	var p model.PaymentTerm
	if err := GetDB(ctx, r.db).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}
