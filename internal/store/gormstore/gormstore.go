// Package gormstore implements the store interfaces on top of gorm with
// the postgres driver. Checkout transactions map to database
// transactions; stock rows are read with SELECT ... FOR UPDATE inside
// them so concurrent checkouts on the same product serialize at the
// database as well.
package gormstore

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pos-service/internal/model"
	"pos-service/internal/store"
)

// Store wraps a gorm DB handle (or transaction) as a store.Store
type Store struct {
	db *gorm.DB
}

// New returns a postgres-backed store
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// WithinTx maps the store transaction onto a database transaction
func (s *Store) WithinTx(ctx context.Context, fn func(tx store.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

func (s *Store) Products() store.ProductRepository                     { return productRepo{s.db} }
func (s *Store) Movements() store.MovementRepository                   { return movementRepo{s.db} }
func (s *Store) Members() store.MemberRepository                       { return memberRepo{s.db} }
func (s *Store) Sales() store.SaleRepository                           { return saleRepo{s.db} }
func (s *Store) MemberTransactions() store.MemberTransactionRepository { return memberTxRepo{s.db} }
func (s *Store) Users() store.UserRepository                           { return userRepo{s.db} }

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return store.ErrNotFound
	}
	return err
}

// --- products ---

type productRepo struct{ db *gorm.DB }

func (r productRepo) List(ctx context.Context) ([]model.Product, error) {
	products := make([]model.Product, 0)
	if err := r.db.WithContext(ctx).Order("id").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r productRepo) Get(ctx context.Context, id uint) (*model.Product, error) {
	var p model.Product
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r productRepo) GetForUpdate(ctx context.Context, id uint) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&p, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r productRepo) FindByBarcode(ctx context.Context, barcode string) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).Where("barcode = ?", barcode).Order("id").First(&p).Error
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r productRepo) Create(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r productRepo) Update(ctx context.Context, p *model.Product) error {
	res := r.db.WithContext(ctx).Save(p)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r productRepo) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// --- stock movements ---

type movementRepo struct{ db *gorm.DB }

func (r movementRepo) Append(ctx context.Context, m *model.StockMovement) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r movementRepo) List(ctx context.Context) ([]model.StockMovement, error) {
	movements := make([]model.StockMovement, 0)
	if err := r.db.WithContext(ctx).Order("id").Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// --- members ---

type memberRepo struct{ db *gorm.DB }

func (r memberRepo) List(ctx context.Context) ([]model.Member, error) {
	members := make([]model.Member, 0)
	if err := r.db.WithContext(ctx).Order("id").Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

func (r memberRepo) Get(ctx context.Context, id uint) (*model.Member, error) {
	var m model.Member
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

func (r memberRepo) Create(ctx context.Context, m *model.Member) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r memberRepo) Update(ctx context.Context, m *model.Member) error {
	res := r.db.WithContext(ctx).Save(m)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// --- sales ---

type saleRepo struct{ db *gorm.DB }

func (r saleRepo) Create(ctx context.Context, s *model.Sale) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r saleRepo) ListInRange(ctx context.Context, from, to time.Time) ([]model.Sale, error) {
	q := r.db.WithContext(ctx).Order("id")
	if !from.IsZero() {
		q = q.Where("timestamp >= ?", from)
	}
	if !to.IsZero() {
		q = q.Where("timestamp <= ?", to)
	}
	sales := make([]model.Sale, 0)
	if err := q.Find(&sales).Error; err != nil {
		return nil, err
	}
	return sales, nil
}

// --- member transactions ---

type memberTxRepo struct{ db *gorm.DB }

func (r memberTxRepo) Append(ctx context.Context, t *model.MemberTransaction) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r memberTxRepo) ListByMember(ctx context.Context, memberID uint) ([]model.MemberTransaction, error) {
	txs := make([]model.MemberTransaction, 0)
	err := r.db.WithContext(ctx).Where("member_id = ?", memberID).Order("id").Find(&txs).Error
	if err != nil {
		return nil, err
	}
	return txs, nil
}

// --- users ---

type userRepo struct{ db *gorm.DB }

func (r userRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&u).Error
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r userRepo) Create(ctx context.Context, u *model.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r userRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.User{}).Count(&count).Error
	return count, err
}
