package pos

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"pos-service/internal/model"
	"pos-service/internal/store"
	"pos-service/pkg/cache"
	"pos-service/prometheus"
)

// CheckoutService turns a cart into a persisted sale. The commit is a
// single store transaction: stock validation and decrement, ledger
// movements, the sale record, member points and the member transaction
// either all happen or none do. Commits touching the same products are
// additionally serialized in-process so validation cannot race a
// concurrent decrement.
type CheckoutService struct {
	store store.Store
	cache *cache.Cache
	locks *productLocks
	log   *zap.Logger

	pointsDivisor decimal.Decimal
}

// NewCheckoutService builds a checkout service. pointsDivisor is the
// number of currency units that earn one loyalty point.
func NewCheckoutService(st store.Store, c *cache.Cache, log *zap.Logger, pointsDivisor int) *CheckoutService {
	if pointsDivisor <= 0 {
		pointsDivisor = 100
	}
	return &CheckoutService{
		store:         st,
		cache:         c,
		locks:         newProductLocks(),
		log:           log,
		pointsDivisor: decimal.NewFromInt(int64(pointsDivisor)),
	}
}

// CartLine is one product/quantity pair submitted for checkout. The
// client also sends name and price but both are ignored: snapshots are
// taken from the catalog at validation time.
type CartLine struct {
	ID       uint `json:"id"`
	Quantity int  `json:"quantity"`
}

// CheckoutRequest is a cart plus payment and optional member
type CheckoutRequest struct {
	Items          []CartLine           `json:"items"`
	PaymentMethod  string               `json:"paymentMethod"`
	PaymentDetails model.PaymentDetails `json:"paymentDetails"`
	MemberID       *uint                `json:"memberId"`
	Timestamp      *time.Time           `json:"timestamp"`
}

// Receipt is the result of a committed checkout
type Receipt struct {
	Sale           *model.Sale
	MemberDiscount decimal.Decimal
	PointsEarned   int
}

// Checkout validates the cart, computes totals, discount and points, and
// commits the sale atomically. Any validation failure leaves the store
// untouched.
func (s *CheckoutService) Checkout(ctx context.Context, req CheckoutRequest) (*Receipt, error) {
	if len(req.Items) == 0 {
		prometheus.RecordCheckout("rejected")
		return nil, Invalid("Cart is empty")
	}
	for _, line := range req.Items {
		if line.Quantity <= 0 {
			prometheus.RecordCheckout("rejected")
			return nil, Invalid("Invalid quantity for product id %d", line.ID)
		}
	}
	if err := req.PaymentDetails.ValidateFor(req.PaymentMethod); err != nil {
		prometheus.RecordCheckout("rejected")
		return nil, Invalid("%s", err.Error())
	}

	timestamp := time.Now()
	if req.Timestamp != nil {
		timestamp = *req.Timestamp
	}

	ids := make([]uint, 0, len(req.Items))
	for _, line := range req.Items {
		ids = append(ids, line.ID)
	}
	unlock := s.locks.lockAll(ids)
	defer unlock()

	var receipt *Receipt
	err := s.store.WithinTx(ctx, func(tx store.Store) error {
		items := make(model.SaleItems, 0, len(req.Items))
		subtotal := decimal.Zero

		// Validate every line against current stock before writing
		// anything; decrements are staged on the fetched copies so
		// repeated ids in one cart are counted cumulatively.
		fetched := make(map[uint]*model.Product)
		order := make([]uint, 0, len(req.Items))
		quantity := make(map[uint]int)
		for _, line := range req.Items {
			p, ok := fetched[line.ID]
			if !ok {
				var err error
				p, err = tx.Products().GetForUpdate(ctx, line.ID)
				if err != nil {
					if errors.Is(err, store.ErrNotFound) {
						return Invalid("Product id %d not found", line.ID)
					}
					return err
				}
				fetched[line.ID] = p
				order = append(order, line.ID)
			}
			if p.Stock < line.Quantity {
				return &InsufficientStockError{ProductID: p.ID, Name: p.Name, Stock: p.Stock, Requested: line.Quantity}
			}
			p.Stock -= line.Quantity
			quantity[line.ID] += line.Quantity
			items = append(items, model.SaleItem{
				ProductID: p.ID,
				Name:      p.Name,
				Price:     p.Price,
				Quantity:  line.Quantity,
			})
			subtotal = subtotal.Add(p.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
		}

		var member *model.Member
		if req.MemberID != nil {
			m, err := tx.Members().Get(ctx, *req.MemberID)
			switch {
			case err == nil:
				member = m
			case errors.Is(err, store.ErrNotFound):
				// An unknown member id does not block the sale; it is
				// treated as a checkout without a member, matching what
				// the cashier terminal expects.
				s.log.Warn("Checkout references unknown member", zap.Uint("member_id", *req.MemberID))
			default:
				return err
			}
		}

		memberDiscount := decimal.Zero
		pointsEarned := 0
		if member != nil {
			memberDiscount = subtotal.Mul(member.Discount).Div(decimal.NewFromInt(100))
			pointsEarned = int(subtotal.Sub(memberDiscount).Div(s.pointsDivisor).IntPart())
		}
		netTotal := subtotal.Sub(memberDiscount)

		details := req.PaymentDetails
		if req.PaymentMethod == model.PaymentCash {
			if details.Received.LessThan(netTotal) {
				return &InsufficientPaymentError{Due: netTotal, Received: details.Received}
			}
			details.Change = details.Received.Sub(netTotal)
		}

		// All checks passed; apply the staged decrements with one
		// ledger movement per distinct product.
		for _, id := range order {
			if err := tx.Products().Update(ctx, fetched[id]); err != nil {
				return err
			}
			if err := tx.Movements().Append(ctx, &model.StockMovement{
				ProductID: id,
				Type:      model.MovementSale,
				Amount:    quantity[id],
				Date:      timestamp,
				Note:      "Product sold (POS)",
			}); err != nil {
				return err
			}
		}

		if member != nil {
			member.Points += pointsEarned
			if err := tx.Members().Update(ctx, member); err != nil {
				return err
			}
			if err := tx.MemberTransactions().Append(ctx, &model.MemberTransaction{
				MemberID:     member.ID,
				Items:        items,
				Total:        netTotal,
				Discount:     memberDiscount,
				PointsEarned: pointsEarned,
				Timestamp:    timestamp,
			}); err != nil {
				return err
			}
		}

		sale := &model.Sale{
			Items:          items,
			Subtotal:       subtotal,
			MemberDiscount: memberDiscount,
			PointsEarned:   pointsEarned,
			Total:          netTotal,
			PaymentMethod:  req.PaymentMethod,
			PaymentDetails: details,
			Timestamp:      timestamp,
		}
		if member != nil {
			sale.MemberID = &member.ID
		}
		if err := tx.Sales().Create(ctx, sale); err != nil {
			return err
		}

		receipt = &Receipt{
			Sale:           sale,
			MemberDiscount: memberDiscount,
			PointsEarned:   pointsEarned,
		}
		return nil
	})
	if err != nil {
		prometheus.RecordCheckout("rejected")
		return nil, err
	}

	prometheus.RecordCheckout("committed")
	total, _ := receipt.Sale.Total.Float64()
	prometheus.RecordSaleAmount(total)
	for range receipt.Sale.Items {
		prometheus.RecordStockMovement(model.MovementSale)
	}
	s.cache.Invalidate(ctx, cache.ProductListKey)
	s.cache.InvalidatePrefix(ctx, cache.SummaryKeyPrefix)

	s.log.Info("Checkout committed",
		zap.Uint("sale_id", receipt.Sale.ID),
		zap.Int("items", len(req.Items)),
		zap.String("payment_method", req.PaymentMethod),
		zap.String("total", receipt.Sale.Total.String()),
		zap.Int("points_earned", receipt.PointsEarned))
	return receipt, nil
}
