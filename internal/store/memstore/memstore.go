// Package memstore is a mutex-guarded in-memory implementation of the
// store interfaces. It backs tests and the demo mode; postgres via
// gormstore is the production backend.
package memstore

import (
	"context"
	"log"
	"time"

	"sync"

	"golang.org/x/crypto/bcrypt"

	"pos-service/internal/model"
	"pos-service/internal/store"

	"github.com/shopspring/decimal"
)

type state struct {
	products  []model.Product
	movements []model.StockMovement
	members   []model.Member
	sales     []model.Sale
	memberTxs []model.MemberTransaction
	users     []model.User

	nextProductID  uint
	nextMovementID uint
	nextMemberID   uint
	nextSaleID     uint
	nextMemberTxID uint
	nextUserID     uint
}

// Existing records are never mutated in place (updates replace whole
// elements, ledgers are append-only), so copying the slice headers into
// fresh backing arrays is a sufficient snapshot.
func (st *state) clone() *state {
	cp := *st
	cp.products = append([]model.Product(nil), st.products...)
	cp.movements = append([]model.StockMovement(nil), st.movements...)
	cp.members = append([]model.Member(nil), st.members...)
	cp.sales = append([]model.Sale(nil), st.sales...)
	cp.memberTxs = append([]model.MemberTransaction(nil), st.memberTxs...)
	cp.users = append([]model.User(nil), st.users...)
	return &cp
}

// Store holds everything behind one mutex. A transactional view (inTx)
// shares the state but skips locking; WithinTx holds the lock for the
// whole transaction and rolls back by restoring a snapshot.
type Store struct {
	mu   *sync.Mutex
	st   *state
	inTx bool
}

// New returns an empty in-memory store
func New() *Store {
	return &Store{
		mu: &sync.Mutex{},
		st: &state{
			nextProductID:  1,
			nextMovementID: 1,
			nextMemberID:   1,
			nextSaleID:     1,
			nextMemberTxID: 1,
			nextUserID:     1,
		},
	}
}

// NewSeeded returns a store preloaded with the demo catalog, a sample
// member and the two login accounts, mirroring the dataset the web
// client was developed against
func NewSeeded(adminPassword, employeePassword string) *Store {
	s := New()
	now := time.Now()

	s.st.products = append(s.st.products, model.Product{
		ID:       s.st.nextProductID,
		Name:     "Drinking Water",
		Barcode:  "6291003085116",
		Category: "Beverages",
		Price:    decimal.NewFromInt(10),
		Unit:     "bottle",
		Stock:    100,
	})
	s.st.nextProductID++

	s.st.members = append(s.st.members, model.Member{
		ID:         s.st.nextMemberID,
		Name:       "Somchai Jaidee",
		Phone:      "0812345678",
		Points:     100,
		MemberType: "silver",
		Discount:   decimal.NewFromInt(5),
		CreatedAt:  now,
	})
	s.st.nextMemberID++

	for _, u := range []struct {
		username string
		password string
		role     string
	}{
		{"admin", adminPassword, "admin"},
		{"employee", employeePassword, "employee"},
	} {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("memstore: failed to hash seed password for %s: %v", u.username, err)
		}
		s.st.users = append(s.st.users, model.User{
			ID:           s.st.nextUserID,
			Username:     u.username,
			PasswordHash: string(hash),
			Role:         u.role,
			CreatedAt:    now,
		})
		s.st.nextUserID++
	}

	return s
}

func (s *Store) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// WithinTx serializes the whole store for the duration of fn and restores
// a pre-transaction snapshot when fn fails
func (s *Store) WithinTx(_ context.Context, fn func(tx store.Store) error) error {
	if s.inTx {
		// Nested transactions share the outer view.
		return fn(s)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	tx := &Store{mu: s.mu, st: s.st, inTx: true}
	if err := fn(tx); err != nil {
		*s.st = *snapshot
		return err
	}
	return nil
}

func (s *Store) Products() store.ProductRepository                     { return productRepo{s} }
func (s *Store) Movements() store.MovementRepository                   { return movementRepo{s} }
func (s *Store) Members() store.MemberRepository                       { return memberRepo{s} }
func (s *Store) Sales() store.SaleRepository                           { return saleRepo{s} }
func (s *Store) MemberTransactions() store.MemberTransactionRepository { return memberTxRepo{s} }
func (s *Store) Users() store.UserRepository                           { return userRepo{s} }

// --- products ---

type productRepo struct{ s *Store }

func (r productRepo) List(_ context.Context) ([]model.Product, error) {
	defer r.s.lock()()
	out := make([]model.Product, len(r.s.st.products))
	copy(out, r.s.st.products)
	return out, nil
}

func (r productRepo) Get(_ context.Context, id uint) (*model.Product, error) {
	defer r.s.lock()()
	for _, p := range r.s.st.products {
		if p.ID == id {
			cp := p
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (r productRepo) GetForUpdate(ctx context.Context, id uint) (*model.Product, error) {
	// The store-wide mutex already serializes writers.
	return r.Get(ctx, id)
}

func (r productRepo) FindByBarcode(_ context.Context, barcode string) (*model.Product, error) {
	defer r.s.lock()()
	for _, p := range r.s.st.products {
		if p.Barcode == barcode {
			cp := p
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (r productRepo) Create(_ context.Context, p *model.Product) error {
	defer r.s.lock()()
	p.ID = r.s.st.nextProductID
	r.s.st.nextProductID++
	r.s.st.products = append(r.s.st.products, *p)
	return nil
}

func (r productRepo) Update(_ context.Context, p *model.Product) error {
	defer r.s.lock()()
	for i, existing := range r.s.st.products {
		if existing.ID == p.ID {
			r.s.st.products[i] = *p
			return nil
		}
	}
	return store.ErrNotFound
}

func (r productRepo) Delete(_ context.Context, id uint) error {
	defer r.s.lock()()
	for i, existing := range r.s.st.products {
		if existing.ID == id {
			r.s.st.products = append(r.s.st.products[:i:i], r.s.st.products[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

// --- stock movements ---

type movementRepo struct{ s *Store }

func (r movementRepo) Append(_ context.Context, m *model.StockMovement) error {
	defer r.s.lock()()
	m.ID = r.s.st.nextMovementID
	r.s.st.nextMovementID++
	r.s.st.movements = append(r.s.st.movements, *m)
	return nil
}

func (r movementRepo) List(_ context.Context) ([]model.StockMovement, error) {
	defer r.s.lock()()
	out := make([]model.StockMovement, len(r.s.st.movements))
	copy(out, r.s.st.movements)
	return out, nil
}

// --- members ---

type memberRepo struct{ s *Store }

func (r memberRepo) List(_ context.Context) ([]model.Member, error) {
	defer r.s.lock()()
	out := make([]model.Member, len(r.s.st.members))
	copy(out, r.s.st.members)
	return out, nil
}

func (r memberRepo) Get(_ context.Context, id uint) (*model.Member, error) {
	defer r.s.lock()()
	for _, m := range r.s.st.members {
		if m.ID == id {
			cp := m
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (r memberRepo) Create(_ context.Context, m *model.Member) error {
	defer r.s.lock()()
	m.ID = r.s.st.nextMemberID
	r.s.st.nextMemberID++
	r.s.st.members = append(r.s.st.members, *m)
	return nil
}

func (r memberRepo) Update(_ context.Context, m *model.Member) error {
	defer r.s.lock()()
	for i, existing := range r.s.st.members {
		if existing.ID == m.ID {
			r.s.st.members[i] = *m
			return nil
		}
	}
	return store.ErrNotFound
}

// --- sales ---

type saleRepo struct{ s *Store }

func (r saleRepo) Create(_ context.Context, sale *model.Sale) error {
	defer r.s.lock()()
	sale.ID = r.s.st.nextSaleID
	r.s.st.nextSaleID++
	r.s.st.sales = append(r.s.st.sales, *sale)
	return nil
}

func (r saleRepo) ListInRange(_ context.Context, from, to time.Time) ([]model.Sale, error) {
	defer r.s.lock()()
	out := make([]model.Sale, 0, len(r.s.st.sales))
	for _, sale := range r.s.st.sales {
		if !from.IsZero() && sale.Timestamp.Before(from) {
			continue
		}
		if !to.IsZero() && sale.Timestamp.After(to) {
			continue
		}
		out = append(out, sale)
	}
	return out, nil
}

// --- member transactions ---

type memberTxRepo struct{ s *Store }

func (r memberTxRepo) Append(_ context.Context, t *model.MemberTransaction) error {
	defer r.s.lock()()
	t.ID = r.s.st.nextMemberTxID
	r.s.st.nextMemberTxID++
	r.s.st.memberTxs = append(r.s.st.memberTxs, *t)
	return nil
}

func (r memberTxRepo) ListByMember(_ context.Context, memberID uint) ([]model.MemberTransaction, error) {
	defer r.s.lock()()
	out := make([]model.MemberTransaction, 0)
	for _, t := range r.s.st.memberTxs {
		if t.MemberID == memberID {
			out = append(out, t)
		}
	}
	return out, nil
}

// --- users ---

type userRepo struct{ s *Store }

func (r userRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	defer r.s.lock()()
	for _, u := range r.s.st.users {
		if u.Username == username {
			cp := u
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (r userRepo) Create(_ context.Context, u *model.User) error {
	defer r.s.lock()()
	u.ID = r.s.st.nextUserID
	r.s.st.nextUserID++
	r.s.st.users = append(r.s.st.users, *u)
	return nil
}

func (r userRepo) Count(_ context.Context) (int64, error) {
	defer r.s.lock()()
	return int64(len(r.s.st.users)), nil
}
