package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"compras-backend/internal/model"
	"compras-backend/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	// DefaultTokenTTLHours is how long an approval link stays valid unless
	// configured otherwise.
	DefaultTokenTTLHours = 12

	// tokenLength is the hex length of a 256-bit token.
	tokenLength = 64
)

// TokenService issues and validates the single-use approval tokens stored on
// the order row. Validity is never a stored boolean: it is computed at read
// time from the value match, the used flag, the expiry and the order status,
// so no background job is needed to expire tokens.
type TokenService interface {
	// Issue writes a fresh 256-bit token onto the order, overwriting any prior
	// one. Only the newest token is ever valid. ttlHours <= 0 means the
	// default TTL.
	Issue(ctx context.Context, orderID uuid.UUID, ttlHours int) (token string, expiresAt time.Time, err error)

	// Validate resolves a token to its order. On failure it returns a
	// *FlowError tagged TOKEN_INVALIDO, TOKEN_USADO, TOKEN_EXPIRADO or
	// ORDEN_PROCESADA; malformed input is rejected before touching the store.
	Validate(ctx context.Context, token string) (*model.Order, error)

	// MarkUsed consumes the token with a conditional single-statement update.
	// Returns false when the token was already consumed (the caller surfaces
	// TOKEN_USADO); at most one of two racing callers gets true.
	MarkUsed(ctx context.Context, orderID uuid.UUID, token string) (bool, error)

	// Invalidate withdraws an order from the approval flow outside the token
	// path: clears the token value and forces used=true.
	Invalidate(ctx context.Context, orderID uuid.UUID) error
}

type tokenService struct {
	orders repository.OrderRepository
}

func NewTokenService(orders repository.OrderRepository) TokenService {
	return &tokenService{orders: orders}
}

func (s *tokenService) Issue(ctx context.Context, orderID uuid.UUID, ttlHours int) (string, time.Time, error) {
	if ttlHours <= 0 {
		ttlHours = DefaultTokenTTLHours
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", time.Time{}, err
	}
	token := hex.EncodeToString(raw)

	now := time.Now()
	expiresAt := now.Add(time.Duration(ttlHours) * time.Hour)
	if err := s.orders.SetToken(ctx, orderID, token, now, expiresAt); err != nil {
		return "", time.Time{}, err
	}

	return token, expiresAt, nil
}

// wellFormedToken reports whether the input is exactly 64 lowercase hex chars.
// Anything else is rejected without a database round-trip.
func wellFormedToken(token string) bool {
	if len(token) != tokenLength {
		return false
	}
	for i := 0; i < len(token); i++ {
		c := token[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

func (s *tokenService) Validate(ctx context.Context, token string) (*model.Order, error) {
	if !wellFormedToken(token) {
		return nil, flowErr(CodeTokenInvalid, "El enlace de aprobación no es válido")
	}

	order, err := s.orders.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, flowErr(CodeTokenInvalid, "El enlace de aprobación no es válido")
		}
		return nil, err
	}

	// Order of checks matters: a used token reports TOKEN_USADO even if it has
	// also expired since, and a resolved order reports ORDEN_PROCESADA only
	// when the token itself would otherwise still be live.
	if order.TokenUsed {
		return order, flowErr(CodeTokenUsed, "Este enlace ya fue utilizado")
	}
	if order.TokenExpiresAt == nil || time.Now().After(*order.TokenExpiresAt) {
		return order, flowErr(CodeTokenExpired, "El enlace de aprobación ha expirado")
	}
	if !order.Status.Resolvable() {
		return order, flowErr(CodeOrderProcessed, "La orden ya fue procesada")
	}

	return order, nil
}

func (s *tokenService) MarkUsed(ctx context.Context, orderID uuid.UUID, token string) (bool, error) {
	return s.orders.ConsumeToken(ctx, orderID, token)
}

func (s *tokenService) Invalidate(ctx context.Context, orderID uuid.UUID) error {
	return s.orders.ClearToken(ctx, orderID)
}
