package repository

import (
	"context"

	"compras-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ApproverRepository interface {
	Create(ctx context.Context, approver *model.Approver) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Approver, error)
	List(ctx context.Context, onlyEligible bool) ([]model.Approver, error)
	Update(ctx context.Context, approver *model.Approver) error
	SetPINHash(ctx context.Context, id uuid.UUID, hash string) error
}

type approverRepository struct {
	db *gorm.DB
}

func NewApproverRepository(db *gorm.DB) ApproverRepository {
	return &approverRepository{db: db}
}

func (r *approverRepository) Create(ctx context.Context, approver *model.Approver) error {
	return GetDB(ctx, r.db).Create(approver).Error
}

func (r *approverRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Approver, error) {
	var approver model.Approver
	if err := GetDB(ctx, r.db).First(&approver, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &approver, nil
}

func (r *approverRepository) List(ctx context.Context, onlyEligible bool) ([]model.Approver, error) {
	var approvers []model.Approver
	query := GetDB(ctx, r.db).Order("name ASC")
	if onlyEligible {
		query = query.Where("is_approver = true")
	}
	if err := query.Find(&approvers).Error; err != nil {
		return nil, err
	}
	return approvers, nil
}

func (r *approverRepository) Update(ctx context.Context, approver *model.Approver) error {
	return GetDB(ctx, r.db).Save(approver).Error
}

func (r *approverRepository) SetPINHash(ctx context.Context, id uuid.UUID, hash string) error {
	return GetDB(ctx, r.db).Model(&model.Approver{}).Where("id = ?", id).Update("pin_hash", hash).Error
}
