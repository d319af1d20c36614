package model

import "github.com/shopspring/decimal"

func init() {
	// Money fields go over the wire as plain JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// Movement types recorded in the stock ledger
const (
	MovementAdd     = "add"
	MovementReceive = "receive"
	MovementSale    = "sale"
)

// Product - a catalog entry with its current stock count
type Product struct {
	ID       uint            `gorm:"primaryKey" json:"id"`
	Name     string          `json:"name"`
	Barcode  string          `gorm:"index;size:64" json:"barcode"`
	Category string          `json:"category"`
	Price    decimal.Decimal `gorm:"type:decimal(12,2)" json:"price"`
	Unit     string          `json:"unit"`
	Stock    int             `json:"stock"`
	ImageURL string          `json:"imageUrl,omitempty"`
}
