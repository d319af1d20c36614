package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Member - a loyalty member with a point balance and discount tier.
// The "discount" JSON key carries the discount percent, matching the
// wire contract the web client already speaks.
type Member struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	Name       string          `json:"name"`
	Phone      string          `gorm:"size:32" json:"phone"`
	Points     int             `json:"points"`
	MemberType string          `gorm:"size:32" json:"memberType"`
	Discount   decimal.Decimal `gorm:"type:decimal(5,2)" json:"discount"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// MemberTransaction - a member-scoped record of a qualifying sale,
// created alongside the Sale when a member is attached to a checkout
type MemberTransaction struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	MemberID     uint            `gorm:"index" json:"memberId"`
	Items        SaleItems       `gorm:"type:text" json:"items"`
	Total        decimal.Decimal `gorm:"type:decimal(12,2)" json:"total"`
	Discount     decimal.Decimal `gorm:"type:decimal(12,2)" json:"discount"`
	PointsEarned int             `json:"pointsEarned"`
	Timestamp    time.Time       `json:"timestamp"`
}
