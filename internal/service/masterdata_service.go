package service

import (
	"context"
	"fmt"

	"compras-backend/internal/model"
	"compras-backend/internal/repository"

	"github.com/google/uuid"
)

// --- DTOs ---

type MasterDataPayload struct {
	Name         string `json:"name" binding:"required"`
	Abbreviation string `json:"abbreviation"` // units only
	Days         int    `json:"days"`         // payment terms only
}

type MasterDataUpdate struct {
	Name         *string `json:"name"`
	Abbreviation *string `json:"abbreviation"`
	Days         *int    `json:"days"`
	IsActive     *bool   `json:"is_active"`
}

// MasterDataService covers the reference tables consumed by order line items
// and header fields: categories, units of measure and payment terms.
type MasterDataService interface {
	ListCategories(ctx context.Context, includeInactive bool) ([]model.Category, error)
	CreateCategory(ctx context.Context, req MasterDataPayload) (*model.Category, error)
	UpdateCategory(ctx context.Context, id string, req MasterDataUpdate) (*model.Category, error)

	ListUnits(ctx context.Context, includeInactive bool) ([]model.Unit, error)
	CreateUnit(ctx context.Context, req MasterDataPayload) (*model.Unit, error)
	UpdateUnit(ctx context.Context, id string, req MasterDataUpdate) (*model.Unit, error)

	ListPaymentTerms(ctx context.Context, includeInactive bool) ([]model.PaymentTerm, error)
	CreatePaymentTerm(ctx context.Context, req MasterDataPayload) (*model.PaymentTerm, error)
	UpdatePaymentTerm(ctx context.Context, id string, req MasterDataUpdate) (*model.PaymentTerm, error)
}

type masterDataService struct {
	repo repository.MasterDataRepository
}

func NewMasterDataService(repo repository.MasterDataRepository) MasterDataService {
	return &masterDataService{repo: repo}
}

func parseMasterID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("identificador inválido: %w", err)
	}
	return parsed, nil
}

func (s *masterDataService) ListCategories(ctx context.Context, includeInactive bool) ([]model.Category, error) {
	return s.repo.ListCategories(ctx, includeInactive)
}

func (s *masterDataService) CreateCategory(ctx context.Context, req MasterDataPayload) (*model.Category, error) {
	c := &model.Category{Name: req.Name, IsActive: true}
	if err := s.repo.CreateCategory(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *masterDataService) UpdateCategory(ctx context.Context, id string, req MasterDataUpdate) (*model.Category, error) {
	parsed, err := parseMasterID(id)
	if err != nil {
		return nil, err
	}
	c, err := s.repo.FindCategory(ctx, parsed)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		c.Name = *req.Name
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}
	if err := s.repo.UpdateCategory(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *masterDataService) ListUnits(ctx context.Context, includeInactive bool) ([]model.Unit, error) {
	return s.repo.ListUnits(ctx, includeInactive)
}

func (s *masterDataService) CreateUnit(ctx context.Context, req MasterDataPayload) (*model.Unit, error) {
	u := &model.Unit{Name: req.Name, Abbreviation: req.Abbreviation, IsActive: true}
	if err := s.repo.CreateUnit(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *masterDataService) UpdateUnit(ctx context.Context, id string, req MasterDataUpdate) (*model.Unit, error) {
	parsed, err := parseMasterID(id)
	if err != nil {
		return nil, err
	}
	u, err := s.repo.FindUnit(ctx, parsed)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		u.Name = *req.Name
	}
	if req.Abbreviation != nil {
		u.Abbreviation = *req.Abbreviation
	}
	if req.IsActive != nil {
		u.IsActive = *req.IsActive
	}
	if err := s.repo.UpdateUnit(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *masterDataService) ListPaymentTerms(ctx context.Context, includeInactive bool) ([]model.PaymentTerm, error) {
	return s.repo.ListPaymentTerms(ctx, includeInactive)
}

func (s *masterDataService) CreatePaymentTerm(ctx context.Context, req MasterDataPayload) (*model.PaymentTerm, error) {
	p := &model.PaymentTerm{Name: req.Name, Days: req.Days, IsActive: true}
	if err := s.repo.CreatePaymentTerm(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *masterDataService) UpdatePaymentTerm(ctx context.Context, id string, req MasterDataUpdate) (*model.PaymentTerm, error) {
	parsed, err := parseMasterID(id)
	if err != nil {
		return nil, err
	}
	p, err := s.repo.FindPaymentTerm(ctx, parsed)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Days != nil {
		p.Days = *req.Days
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	if err := s.repo.UpdatePaymentTerm(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}
