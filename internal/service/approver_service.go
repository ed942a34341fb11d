package service

import (
	"context"
	"errors"
	"fmt"

	"compras-backend/internal/model"
	"compras-backend/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// --- DTOs ---

type CreateApproverRequest struct {
	Name              string `json:"name" binding:"required"`
	Title             string `json:"title"`
	Email             string `json:"email"`
	PIN               string `json:"pin" binding:"required,min=4"`
	UnlimitedApproval bool   `json:"unlimited_approval"`
}

type UpdateApproverRequest struct {
	Name              *string `json:"name"`
	Title             *string `json:"title"`
	Email             *string `json:"email"`
	IsApprover        *bool   `json:"is_approver"`
	UnlimitedApproval *bool   `json:"unlimited_approval"`
}

type SetPINRequest struct {
	PIN string `json:"pin" binding:"required,min=4"`
}

// ApproverService administers the approver roster. The PIN is bcrypt-hashed
// before it ever reaches the repository and is never returned.
type ApproverService interface {
	CreateApprover(ctx context.Context, req CreateApproverRequest) (*model.Approver, error)
	ListApprovers(ctx context.Context, onlyEligible bool) ([]model.Approver, error)
	UpdateApprover(ctx context.Context, id string, req UpdateApproverRequest) (*model.Approver, error)
	SetPIN(ctx context.Context, id string, req SetPINRequest) error
}

type approverService struct {
	repo repository.ApproverRepository
}

func NewApproverService(repo repository.ApproverRepository) ApproverService {
	return &approverService{repo: repo}
}

func hashPIN(pin string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.New("no se pudo procesar el PIN")
	}
	return string(hash), nil
}

func (s *approverService) CreateApprover(ctx context.Context, req CreateApproverRequest) (*model.Approver, error) {
	hash, err := hashPIN(req.PIN)
	if err != nil {
		return nil, err
	}

	approver := &model.Approver{
		Name:              req.Name,
		Title:             req.Title,
		Email:             req.Email,
		PINHash:           hash,
		IsApprover:        true,
		UnlimitedApproval: req.UnlimitedApproval,
	}
	if err := s.repo.Create(ctx, approver); err != nil {
		return nil, err
	}
	return approver, nil
}

func (s *approverService) ListApprovers(ctx context.Context, onlyEligible bool) ([]model.Approver, error) {
	return s.repo.List(ctx, onlyEligible)
}

func (s *approverService) UpdateApprover(ctx context.Context, id string, req UpdateApproverRequest) (*model.Approver, error) {
	approverID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("identificador de aprobador inválido: %w", err)
	}

	approver, err := s.repo.FindByID(ctx, approverID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		approver.Name = *req.Name
	}
	if req.Title != nil {
		approver.Title = *req.Title
	}
	if req.Email != nil {
		approver.Email = *req.Email
	}
	if req.IsApprover != nil {
		approver.IsApprover = *req.IsApprover
	}
	if req.UnlimitedApproval != nil {
		approver.UnlimitedApproval = *req.UnlimitedApproval
	}

	if err := s.repo.Update(ctx, approver); err != nil {
		return nil, err
	}
	return approver, nil
}

func (s *approverService) SetPIN(ctx context.Context, id string, req SetPINRequest) error {
	approverID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("identificador de aprobador inválido: %w", err)
	}

	hash, err := hashPIN(req.PIN)
	if err != nil {
		return err
	}
	return s.repo.SetPINHash(ctx, approverID, hash)
}
