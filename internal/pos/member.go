package pos

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"pos-service/internal/model"
	"pos-service/internal/store"
)

// Default tier for new members
const (
	defaultMemberType     = "silver"
	defaultMemberDiscount = 5
)

// MemberService owns loyalty member records and their purchase history.
// Point balances only change through the checkout engine.
type MemberService struct {
	store store.Store
	log   *zap.Logger
}

// NewMemberService builds a member service
func NewMemberService(st store.Store, log *zap.Logger) *MemberService {
	return &MemberService{store: st, log: log}
}

// List returns all members in insertion order
func (s *MemberService) List(ctx context.Context) ([]model.Member, error) {
	return s.store.Members().List(ctx)
}

// Get returns one member by id
func (s *MemberService) Get(ctx context.Context, id uint) (*model.Member, error) {
	return s.store.Members().Get(ctx, id)
}

// Create registers a new member on the default tier with zero points
func (s *MemberService) Create(ctx context.Context, name, phone string) (*model.Member, error) {
	if name == "" || phone == "" {
		return nil, Invalid("Name and phone are required")
	}

	member := &model.Member{
		Name:       name,
		Phone:      phone,
		Points:     0,
		MemberType: defaultMemberType,
		Discount:   decimal.NewFromInt(defaultMemberDiscount),
		CreatedAt:  time.Now(),
	}
	if err := s.store.Members().Create(ctx, member); err != nil {
		return nil, err
	}

	s.log.Info("Member created", zap.Uint("member_id", member.ID), zap.String("name", member.Name))
	return member, nil
}

// Transactions returns a member's purchase history in stored order
func (s *MemberService) Transactions(ctx context.Context, memberID uint) ([]model.MemberTransaction, error) {
	return s.store.MemberTransactions().ListByMember(ctx, memberID)
}
