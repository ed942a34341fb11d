package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"

	"compras-backend/internal/model"
	"compras-backend/internal/repository"

	"github.com/google/uuid"
)

// --- DTOs ---

type CreateSupplierRequest struct {
	Name          string `json:"name" binding:"required"`
	TaxID         string `json:"tax_id"`
	ContactPerson string `json:"contact_person"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	Address       string `json:"address"`
	BankAccount   string `json:"bank_account"`
}

type UpdateSupplierRequest struct {
	Name          *string `json:"name"`
	TaxID         *string `json:"tax_id"`
	ContactPerson *string `json:"contact_person"`
	Phone         *string `json:"phone"`
	Email         *string `json:"email"`
	Address       *string `json:"address"`
	BankAccount   *string `json:"bank_account"`
	IsActive      *bool   `json:"is_active"`
}

// --- Interface ---

type SupplierService interface {
	CreateSupplier(ctx context.Context, req CreateSupplierRequest) (*model.Supplier, error)
	GetSupplier(ctx context.Context, id string) (*model.Supplier, error)
	ListSuppliers(ctx context.Context, search string, page, limit int) ([]model.Supplier, int64, error)
	UpdateSupplier(ctx context.Context, id string, req UpdateSupplierRequest) (*model.Supplier, error)
	DeleteSupplier(ctx context.Context, id string) error
}

type supplierService struct {
	repo repository.SupplierRepository
}

func NewSupplierService(repo repository.SupplierRepository) SupplierService {
	return &supplierService{repo: repo}
}

func validateSupplierEmail(email string) error {
	if email == "" {
		return nil
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return errors.New("correo electrónico inválido")
	}
	return nil
}

func (s *supplierService) CreateSupplier(ctx context.Context, req CreateSupplierRequest) (*model.Supplier, error) {
	if err := validateSupplierEmail(req.Email); err != nil {
		return nil, err
	}

	supplier := &model.Supplier{
		Name:          req.Name,
		TaxID:         req.TaxID,
		ContactPerson: req.ContactPerson,
		Phone:         req.Phone,
		Email:         req.Email,
		Address:       req.Address,
		BankAccount:   req.BankAccount,
		IsActive:      true,
	}
	if err := s.repo.Create(ctx, supplier); err != nil {
		return nil, err
	}
	return supplier, nil
}

func (s *supplierService) GetSupplier(ctx context.Context, id string) (*model.Supplier, error) {
	supplierID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("identificador de proveedor inválido: %w", err)
	}
	return s.repo.FindByID(ctx, supplierID)
}

func (s *supplierService) ListSuppliers(ctx context.Context, search string, page, limit int) ([]model.Supplier, int64, error) {
	return s.repo.List(ctx, search, page, limit)
}

func (s *supplierService) UpdateSupplier(ctx context.Context, id string, req UpdateSupplierRequest) (*model.Supplier, error) {
	supplierID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("identificador de proveedor inválido: %w", err)
	}

	supplier, err := s.repo.FindByID(ctx, supplierID)
	if err != nil {
		return nil, err
	}

	if req.Email != nil {
		if err := validateSupplierEmail(*req.Email); err != nil {
			return nil, err
		}
		supplier.Email = *req.Email
	}
	if req.Name != nil {
		supplier.Name = *req.Name
	}
	if req.TaxID != nil {
		supplier.TaxID = *req.TaxID
	}
	if req.ContactPerson != nil {
		supplier.ContactPerson = *req.ContactPerson
	}
	if req.Phone != nil {
		supplier.Phone = *req.Phone
	}
	if req.Address != nil {
		supplier.Address = *req.Address
	}
	if req.BankAccount != nil {
		supplier.BankAccount = *req.BankAccount
	}
	if req.IsActive != nil {
		supplier.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, supplier); err != nil {
		return nil, err
	}
	return supplier, nil
}

func (s *supplierService) DeleteSupplier(ctx context.Context, id string) error {
	supplierID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("identificador de proveedor inválido: %w", err)
	}
	return s.repo.Delete(ctx, supplierID)
}
