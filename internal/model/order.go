package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the single authoritative encoding of the purchase-order
// lifecycle. The numeric codes are stored in the database.
type OrderStatus int

const (
	StatusCreated   OrderStatus = 1
	StatusInReview  OrderStatus = 2
	StatusApproved  OrderStatus = 3
	StatusCompleted OrderStatus = 4
	StatusCancelled OrderStatus = 5
)

// Label returns the Spanish display name used on documents and the UI.
func (s OrderStatus) Label() string {
	switch s {
	case StatusCreated:
		return "Creada"
	case StatusInReview:
		return "En Revisión"
	case StatusApproved:
		return "Aprobada"
	case StatusCompleted:
		return "Completada"
	case StatusCancelled:
		return "Cancelada"
	default:
		return "Desconocido"
	}
}

// Resolvable reports whether the order can still be approved or rejected
// through the token flow.
func (s OrderStatus) Resolvable() bool {
	return s == StatusCreated || s == StatusInReview
}

// Order represents a purchase order. The approval token lives directly on the
// order row: validity is derived from the token columns plus the status, so an
// order can never reference an orphaned token. Token columns are retained
// after use for audit.
type Order struct {
	ID          uuid.UUID   `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderNumber string      `gorm:"type:varchar(30);uniqueIndex;not null" json:"order_number"`
	Status      OrderStatus `gorm:"type:smallint;not null;default:1;index" json:"status"`

	SupplierID *uuid.UUID `gorm:"type:uuid;index" json:"supplier_id"`
	Supplier   *Supplier  `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`

	ApproverID *uuid.UUID `gorm:"type:uuid;index" json:"approver_id"`
	Approver   *Approver  `gorm:"foreignKey:ApproverID" json:"approver,omitempty"`

	PaymentTermID *uuid.UUID   `gorm:"type:uuid" json:"payment_term_id"`
	PaymentTerm   *PaymentTerm `gorm:"foreignKey:PaymentTermID" json:"payment_term,omitempty"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`

	Subtotal  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"subtotal"`
	TaxRate   decimal.Decimal `gorm:"type:decimal(6,4);not null;default:0" json:"tax_rate"`
	TaxAmount decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"tax_amount"`
	Total     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"total"`

	Notes        string     `gorm:"type:text" json:"notes"`
	DeliveryDate *time.Time `json:"delivery_date"`

	// Approval token columns (nullable timestamps: no token issued yet).
	ApprovalToken  string     `gorm:"type:varchar(64);index" json:"-"`
	TokenCreatedAt *time.Time `json:"-"`
	TokenExpiresAt *time.Time `json:"-"`
	TokenUsed      bool       `gorm:"not null;default:false" json:"-"`

	// Resolution metadata, written once when the order is approved or rejected.
	ResolvedBy      string     `gorm:"type:varchar(255)" json:"resolved_by"`
	ResolvedAt      *time.Time `json:"resolved_at"`
	ResolvedIP      string     `gorm:"type:varchar(45)" json:"resolved_ip"`
	RejectionReason string     `gorm:"type:text" json:"rejection_reason"`
	Observations    string     `gorm:"type:text" json:"observations"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasActiveToken reports whether an unexpired, unused token is live at the
// given instant. At most one token can be live per order because issuing
// overwrites the previous columns.
func (o *Order) HasActiveToken(now time.Time) bool {
	return o.ApprovalToken != "" && !o.TokenUsed &&
		o.TokenExpiresAt != nil && !now.After(*o.TokenExpiresAt)
}

// OrderItem is a purchase-order line item.
type OrderItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	Description string          `gorm:"type:varchar(500);not null" json:"description"`
	CategoryID  *uuid.UUID      `gorm:"type:uuid" json:"category_id"`
	Category    *Category       `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	UnitID      *uuid.UUID      `gorm:"type:uuid" json:"unit_id"`
	Unit        *Unit           `gorm:"foreignKey:UnitID" json:"unit,omitempty"`
	Quantity    decimal.Decimal `gorm:"type:decimal(14,4);not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"unit_price"`
	Total       decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"total"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
