package model

import "time"

// StockMovement - an append-only ledger entry for a stock change.
// Exactly one movement is written per product touched per operation;
// entries are never updated or deleted.
type StockMovement struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProductID uint      `gorm:"index" json:"productId"`
	Type      string    `gorm:"size:16" json:"type"` // add | receive | sale
	Amount    int       `json:"amount"`
	Date      time.Time `json:"date"`
	Note      string    `json:"note"`
}
