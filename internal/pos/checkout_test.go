package pos

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"pos-service/internal/model"
	"pos-service/internal/store"
	"pos-service/internal/store/memstore"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	return memstore.NewSeeded("admin123", "emp123")
}

func newTestCheckout(st store.Store) *CheckoutService {
	return NewCheckoutService(st, nil, zap.NewNop(), 100)
}

func cashDetails(received int64) model.PaymentDetails {
	return model.PaymentDetails{Received: decimal.NewFromInt(received)}
}

func noTime() time.Time { return time.Time{} }

func mustEqualDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	if !got.Equal(decimal.RequireFromString(want)) {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestCheckoutMemberDiscountAndPoints(t *testing.T) {
	st := newTestStore(t)
	svc := newTestCheckout(st)
	ctx := context.Background()

	// Seeded product: id 1, price 10, stock 100. Seeded member: id 1,
	// 5% discount, 100 points.
	memberID := uint(1)
	receipt, err := svc.Checkout(ctx, CheckoutRequest{
		Items:          []CartLine{{ID: 1, Quantity: 25}},
		PaymentMethod:  model.PaymentCash,
		PaymentDetails: cashDetails(300),
		MemberID:       &memberID,
	})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	mustEqualDecimal(t, "250", receipt.Sale.Subtotal)
	mustEqualDecimal(t, "12.5", receipt.MemberDiscount)
	mustEqualDecimal(t, "237.5", receipt.Sale.Total)
	if receipt.PointsEarned != 2 {
		t.Fatalf("expected 2 points, got %d", receipt.PointsEarned)
	}
	mustEqualDecimal(t, "62.5", receipt.Sale.PaymentDetails.Change)

	product, err := st.Products().Get(ctx, 1)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if product.Stock != 75 {
		t.Fatalf("expected stock 75, got %d", product.Stock)
	}

	member, err := st.Members().Get(ctx, memberID)
	if err != nil {
		t.Fatalf("get member: %v", err)
	}
	if member.Points != 102 {
		t.Fatalf("expected 102 points, got %d", member.Points)
	}

	txs, err := st.MemberTransactions().ListByMember(ctx, memberID)
	if err != nil {
		t.Fatalf("list member transactions: %v", err)
	}
	if len(txs) != 1 {
		t.Fatalf("expected 1 member transaction, got %d", len(txs))
	}
	mustEqualDecimal(t, "237.5", txs[0].Total)

	movements, err := st.Movements().List(ctx)
	if err != nil {
		t.Fatalf("list movements: %v", err)
	}
	if len(movements) != 1 {
		t.Fatalf("expected 1 movement, got %d", len(movements))
	}
	if movements[0].Type != model.MovementSale || movements[0].Amount != 25 {
		t.Fatalf("unexpected movement %+v", movements[0])
	}
}

func TestCheckoutItemSnapshotsImmutable(t *testing.T) {
	st := newTestStore(t)
	svc := newTestCheckout(st)
	ctx := context.Background()

	receipt, err := svc.Checkout(ctx, CheckoutRequest{
		Items:          []CartLine{{ID: 1, Quantity: 1}},
		PaymentMethod:  model.PaymentCash,
		PaymentDetails: cashDetails(10),
	})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	if receipt.Sale.Items[0].Name != "Drinking Water" {
		t.Fatalf("expected snapshot name, got %q", receipt.Sale.Items[0].Name)
	}

	// A later catalog edit must not alter the stored sale.
	product, _ := st.Products().Get(ctx, 1)
	product.Name = "Sparkling Water"
	product.Price = decimal.NewFromInt(99)
	if err := st.Products().Update(ctx, product); err != nil {
		t.Fatalf("update product: %v", err)
	}

	sales, err := st.Sales().ListInRange(ctx, noTime(), noTime())
	if err != nil {
		t.Fatalf("list sales: %v", err)
	}
	if sales[0].Items[0].Name != "Drinking Water" {
		t.Fatalf("sale snapshot changed: %q", sales[0].Items[0].Name)
	}
	mustEqualDecimal(t, "10", sales[0].Items[0].Price)
}

func TestCheckoutInsufficientStockLeavesStoreUntouched(t *testing.T) {
	st := newTestStore(t)
	svc := newTestCheckout(st)
	ctx := context.Background()

	_, err := svc.Checkout(ctx, CheckoutRequest{
		Items:          []CartLine{{ID: 1, Quantity: 150}},
		PaymentMethod:  model.PaymentCash,
		PaymentDetails: cashDetails(2000),
	})
	if !IsInsufficientStock(err) {
		t.Fatalf("expected insufficient stock error, got %v", err)
	}

	product, _ := st.Products().Get(ctx, 1)
	if product.Stock != 100 {
		t.Fatalf("stock changed on rejected checkout: %d", product.Stock)
	}
	sales, _ := st.Sales().ListInRange(ctx, noTime(), noTime())
	if len(sales) != 0 {
		t.Fatalf("sale persisted on rejected checkout")
	}
	movements, _ := st.Movements().List(ctx)
	if len(movements) != 0 {
		t.Fatalf("movement persisted on rejected checkout")
	}
}

func TestCheckoutDuplicateLinesValidateCumulatively(t *testing.T) {
	st := newTestStore(t)
	svc := newTestCheckout(st)
	ctx := context.Background()

	// 60 + 60 exceeds the stock of 100 even though each line alone fits.
	_, err := svc.Checkout(ctx, CheckoutRequest{
		Items:          []CartLine{{ID: 1, Quantity: 60}, {ID: 1, Quantity: 60}},
		PaymentMethod:  model.PaymentCash,
		PaymentDetails: cashDetails(5000),
	})
	if !IsInsufficientStock(err) {
		t.Fatalf("expected insufficient stock error, got %v", err)
	}
	product, _ := st.Products().Get(ctx, 1)
	if product.Stock != 100 {
		t.Fatalf("stock changed on rejected checkout: %d", product.Stock)
	}

	// 40 + 40 fits and produces a single movement for the combined amount.
	receipt, err := svc.Checkout(ctx, CheckoutRequest{
		Items:          []CartLine{{ID: 1, Quantity: 40}, {ID: 1, Quantity: 40}},
		PaymentMethod:  model.PaymentCash,
		PaymentDetails: cashDetails(800),
	})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	mustEqualDecimal(t, "800", receipt.Sale.Subtotal)

	product, _ = st.Products().Get(ctx, 1)
	if product.Stock != 20 {
		t.Fatalf("expected stock 20, got %d", product.Stock)
	}
	movements, _ := st.Movements().List(ctx)
	if len(movements) != 1 {
		t.Fatalf("expected 1 movement for duplicate lines, got %d", len(movements))
	}
	if movements[0].Amount != 80 {
		t.Fatalf("expected combined movement of 80, got %d", movements[0].Amount)
	}
}

func TestCheckoutCashPayment(t *testing.T) {
	st := newTestStore(t)
	svc := newTestCheckout(st)
	ctx := context.Background()

	_, err := svc.Checkout(ctx, CheckoutRequest{
		Items:          []CartLine{{ID: 1, Quantity: 15}},
		PaymentMethod:  model.PaymentCash,
		PaymentDetails: cashDetails(100),
	})
	if !IsInsufficientPayment(err) {
		t.Fatalf("expected insufficient payment error, got %v", err)
	}
	product, _ := st.Products().Get(ctx, 1)
	if product.Stock != 100 {
		t.Fatalf("stock changed on rejected checkout: %d", product.Stock)
	}

	receipt, err := svc.Checkout(ctx, CheckoutRequest{
		Items:          []CartLine{{ID: 1, Quantity: 15}},
		PaymentMethod:  model.PaymentCash,
		PaymentDetails: cashDetails(200),
	})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	mustEqualDecimal(t, "50", receipt.Sale.PaymentDetails.Change)
}

func TestCheckoutNonCashPaymentArms(t *testing.T) {
	st := newTestStore(t)
	svc := newTestCheckout(st)
	ctx := context.Background()

	cases := []struct {
		name    string
		method  string
		details model.PaymentDetails
		wantErr bool
	}{
		{"transfer missing reference", model.PaymentTransfer, model.PaymentDetails{Bank: "KBank"}, true},
		{"transfer complete", model.PaymentTransfer, model.PaymentDetails{Bank: "KBank", Reference: "TRX-1"}, false},
		{"qr missing provider", model.PaymentQR, model.PaymentDetails{Reference: "QR-1"}, true},
		{"qr complete", model.PaymentQR, model.PaymentDetails{Provider: "PromptPay", Reference: "QR-2"}, false},
		{"credit missing last4", model.PaymentCredit, model.PaymentDetails{CardType: "visa"}, true},
		{"credit complete", model.PaymentCredit, model.PaymentDetails{CardType: "visa", Last4: "4242"}, false},
		{"unknown method", "barter", model.PaymentDetails{}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Checkout(ctx, CheckoutRequest{
				Items:          []CartLine{{ID: 1, Quantity: 1}},
				PaymentMethod:  tc.method,
				PaymentDetails: tc.details,
			})
			if tc.wantErr {
				if !IsValidation(err) {
					t.Fatalf("expected validation error, got %v", err)
				}
			} else if err != nil {
				t.Fatalf("checkout failed: %v", err)
			}
		})
	}
}

func TestCheckoutUnknownMemberProceedsWithoutDiscount(t *testing.T) {
	st := newTestStore(t)
	svc := newTestCheckout(st)
	ctx := context.Background()

	memberID := uint(999)
	receipt, err := svc.Checkout(ctx, CheckoutRequest{
		Items:          []CartLine{{ID: 1, Quantity: 10}},
		PaymentMethod:  model.PaymentCash,
		PaymentDetails: cashDetails(100),
		MemberID:       &memberID,
	})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	if !receipt.MemberDiscount.IsZero() {
		t.Fatalf("expected zero discount, got %s", receipt.MemberDiscount)
	}
	if receipt.PointsEarned != 0 {
		t.Fatalf("expected zero points, got %d", receipt.PointsEarned)
	}
	if receipt.Sale.MemberID != nil {
		t.Fatalf("expected sale without member")
	}
}

func TestCheckoutRejectsBadCarts(t *testing.T) {
	st := newTestStore(t)
	svc := newTestCheckout(st)
	ctx := context.Background()

	_, err := svc.Checkout(ctx, CheckoutRequest{
		PaymentMethod:  model.PaymentCash,
		PaymentDetails: cashDetails(100),
	})
	if !IsValidation(err) {
		t.Fatalf("expected validation error for empty cart, got %v", err)
	}

	_, err = svc.Checkout(ctx, CheckoutRequest{
		Items:          []CartLine{{ID: 1, Quantity: 0}},
		PaymentMethod:  model.PaymentCash,
		PaymentDetails: cashDetails(100),
	})
	if !IsValidation(err) {
		t.Fatalf("expected validation error for zero quantity, got %v", err)
	}

	_, err = svc.Checkout(ctx, CheckoutRequest{
		Items:          []CartLine{{ID: 42, Quantity: 1}},
		PaymentMethod:  model.PaymentCash,
		PaymentDetails: cashDetails(100),
	})
	if !IsValidation(err) {
		t.Fatalf("expected validation error for unknown product, got %v", err)
	}
}
