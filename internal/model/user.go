package model

import "time"

// User - a cashier or admin account
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:50" json:"username"`
	PasswordHash string    `json:"-"` // Never return this in JSON
	Role         string    `gorm:"size:16" json:"role"` // 'admin', 'employee'
	CreatedAt    time.Time `json:"created_at"`
}
