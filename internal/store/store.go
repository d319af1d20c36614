// Package store defines the persistence boundary: one repository per
// entity plus a transaction wrapper. The checkout engine only ever talks
// to these interfaces, so storage can be postgres in production and the
// in-memory store in tests.
package store

import (
	"context"
	"errors"
	"time"

	"pos-service/internal/model"
)

// ErrNotFound is returned when a record does not exist
var ErrNotFound = errors.New("record not found")

// Store bundles the per-entity repositories
type Store interface {
	Products() ProductRepository
	Movements() MovementRepository
	Members() MemberRepository
	Sales() SaleRepository
	MemberTransactions() MemberTransactionRepository
	Users() UserRepository

	// WithinTx runs fn against a transactional view of the store. Either
	// every mutation made by fn is applied, or none is. Implementations
	// must allow reads inside fn to observe fn's own writes.
	WithinTx(ctx context.Context, fn func(tx Store) error) error
}

// ProductRepository owns the product catalog
type ProductRepository interface {
	List(ctx context.Context) ([]model.Product, error)
	Get(ctx context.Context, id uint) (*model.Product, error)
	// GetForUpdate reads a product with a write lock when the backend
	// supports row locking. Only meaningful inside WithinTx.
	GetForUpdate(ctx context.Context, id uint) (*model.Product, error)
	FindByBarcode(ctx context.Context, barcode string) (*model.Product, error)
	Create(ctx context.Context, p *model.Product) error
	Update(ctx context.Context, p *model.Product) error
	Delete(ctx context.Context, id uint) error
}

// MovementRepository owns the append-only stock ledger
type MovementRepository interface {
	Append(ctx context.Context, m *model.StockMovement) error
	List(ctx context.Context) ([]model.StockMovement, error)
}

// MemberRepository owns loyalty member records
type MemberRepository interface {
	List(ctx context.Context) ([]model.Member, error)
	Get(ctx context.Context, id uint) (*model.Member, error)
	Create(ctx context.Context, m *model.Member) error
	Update(ctx context.Context, m *model.Member) error
}

// SaleRepository owns immutable sale records
type SaleRepository interface {
	Create(ctx context.Context, s *model.Sale) error
	// ListInRange returns sales with from <= timestamp <= to, in insertion
	// order. A zero from or to leaves that bound open.
	ListInRange(ctx context.Context, from, to time.Time) ([]model.Sale, error)
}

// MemberTransactionRepository owns the member-scoped sale history
type MemberTransactionRepository interface {
	Append(ctx context.Context, t *model.MemberTransaction) error
	ListByMember(ctx context.Context, memberID uint) ([]model.MemberTransaction, error)
}

// UserRepository owns login accounts
type UserRepository interface {
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	Create(ctx context.Context, u *model.User) error
	Count(ctx context.Context) (int64, error)
}
