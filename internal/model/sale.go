package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Payment methods accepted at checkout
const (
	PaymentCash     = "cash"
	PaymentTransfer = "transfer"
	PaymentQR       = "qr"
	PaymentCredit   = "credit"
)

// SaleItem - one cart line frozen into a sale. Name and price are
// snapshots taken from the catalog at validation time, so later catalog
// edits do not alter historical sales. The "id" JSON key is the product
// id, matching the client's cart line shape.
type SaleItem struct {
	ProductID uint            `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// SaleItems is stored as a JSON column
type SaleItems []SaleItem

func (s *SaleItems) Scan(value interface{}) error {
	if value == nil {
		*s = SaleItems{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("failed to scan SaleItems: %v", value)
	}
	return json.Unmarshal(bytes, s)
}

func (s SaleItems) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	raw, err := json.Marshal(s)
	return string(raw), err
}

// PaymentDetails - the per-method payment arm. Which fields are required
// depends on the payment method; ValidateFor enforces the arm shape.
type PaymentDetails struct {
	// cash
	Received decimal.Decimal `json:"received,omitempty"`
	Change   decimal.Decimal `json:"change,omitempty"`
	// transfer
	Bank string `json:"bank,omitempty"`
	// transfer, qr
	Reference string `json:"reference,omitempty"`
	// qr
	Provider string `json:"provider,omitempty"`
	// credit
	CardType string `json:"cardType,omitempty"`
	Last4    string `json:"last4,omitempty"`
}

// ValidateFor checks the fields required by the given payment method.
// Cash sufficiency against the sale total is checked by the checkout
// engine once the net total is known.
func (p PaymentDetails) ValidateFor(method string) error {
	switch method {
	case PaymentCash:
		if p.Received.IsNegative() {
			return fmt.Errorf("received amount must not be negative")
		}
		return nil
	case PaymentTransfer:
		if p.Bank == "" || p.Reference == "" {
			return fmt.Errorf("transfer payment requires bank and reference")
		}
		return nil
	case PaymentQR:
		if p.Provider == "" || p.Reference == "" {
			return fmt.Errorf("qr payment requires provider and reference")
		}
		return nil
	case PaymentCredit:
		if p.CardType == "" || p.Last4 == "" {
			return fmt.Errorf("credit payment requires cardType and last4")
		}
		return nil
	default:
		return fmt.Errorf("unknown payment method %q", method)
	}
}

func (p *PaymentDetails) Scan(value interface{}) error {
	if value == nil {
		*p = PaymentDetails{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("failed to scan PaymentDetails: %v", value)
	}
	return json.Unmarshal(bytes, p)
}

func (p PaymentDetails) Value() (driver.Value, error) {
	raw, err := json.Marshal(p)
	return string(raw), err
}

// Sale - an immutable transaction record created by the checkout engine
type Sale struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	Items          SaleItems       `gorm:"type:text" json:"items"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(12,2)" json:"subtotal"`
	MemberID       *uint           `gorm:"index" json:"memberId,omitempty"`
	MemberDiscount decimal.Decimal `gorm:"type:decimal(12,2)" json:"memberDiscount"`
	PointsEarned   int             `json:"pointsEarned"`
	Total          decimal.Decimal `gorm:"type:decimal(12,2)" json:"total"`
	PaymentMethod  string          `gorm:"size:16" json:"paymentMethod"`
	PaymentDetails PaymentDetails  `gorm:"type:text" json:"paymentDetails"`
	Timestamp      time.Time       `gorm:"index" json:"timestamp"`
}
