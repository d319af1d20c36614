package pos

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"pos-service/internal/model"
	"pos-service/internal/store"
	"pos-service/internal/store/memstore"
)

func newTestCatalog(st store.Store) *CatalogService {
	return NewCatalogService(st, nil, zap.NewNop())
}

func decimalPtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func TestCreateProductRecordsInitialStockMovement(t *testing.T) {
	st := memstore.New()
	svc := newTestCatalog(st)
	ctx := context.Background()

	product, err := svc.Create(ctx, CreateProductInput{
		Name:     "Instant Noodles",
		Barcode:  "8850987101083",
		Category: "Food",
		Price:    decimalPtr(6),
		Unit:     "pack",
		Stock:    intPtr(20),
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if product.ID == 0 {
		t.Fatalf("expected assigned id")
	}
	if product.Stock != 20 {
		t.Fatalf("expected stock 20, got %d", product.Stock)
	}

	movements, err := st.Movements().List(ctx)
	if err != nil {
		t.Fatalf("list movements: %v", err)
	}
	if len(movements) != 1 {
		t.Fatalf("expected 1 movement, got %d", len(movements))
	}
	m := movements[0]
	if m.ProductID != product.ID || m.Type != model.MovementAdd || m.Amount != 20 {
		t.Fatalf("unexpected movement %+v", m)
	}
}

func TestCreateProductZeroStockSkipsMovement(t *testing.T) {
	st := memstore.New()
	svc := newTestCatalog(st)
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateProductInput{
		Name:     "Gum",
		Barcode:  "0000000000017",
		Category: "Snacks",
		Price:    decimalPtr(2),
		Unit:     "pack",
		Stock:    intPtr(0),
	}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	movements, _ := st.Movements().List(ctx)
	if len(movements) != 0 {
		t.Fatalf("expected no movement for zero stock, got %d", len(movements))
	}
}

func TestCreateProductRejectsMissingFields(t *testing.T) {
	svc := newTestCatalog(memstore.New())
	ctx := context.Background()

	cases := []CreateProductInput{
		{Barcode: "1", Category: "c", Price: decimalPtr(1), Unit: "u", Stock: intPtr(1)},
		{Name: "n", Category: "c", Price: decimalPtr(1), Unit: "u", Stock: intPtr(1)},
		{Name: "n", Barcode: "1", Price: decimalPtr(1), Unit: "u", Stock: intPtr(1)},
		{Name: "n", Barcode: "1", Category: "c", Unit: "u", Stock: intPtr(1)},
		{Name: "n", Barcode: "1", Category: "c", Price: decimalPtr(1), Stock: intPtr(1)},
		{Name: "n", Barcode: "1", Category: "c", Price: decimalPtr(1), Unit: "u"},
	}
	for i, in := range cases {
		if _, err := svc.Create(ctx, in); !IsValidation(err) {
			t.Fatalf("case %d: expected validation error, got %v", i, err)
		}
	}
}

func TestUpdateProductMergesPartialFields(t *testing.T) {
	st := memstore.NewSeeded("admin123", "emp123")
	svc := newTestCatalog(st)
	ctx := context.Background()

	product, err := svc.Update(ctx, 1, UpdateProductInput{
		Name:  strPtr("Mineral Water"),
		Price: decimalPtr(12),
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if product.Name != "Mineral Water" {
		t.Fatalf("expected updated name, got %q", product.Name)
	}
	mustEqualDecimal(t, "12", product.Price)
	if product.Barcode != "6291003085116" {
		t.Fatalf("untouched field changed: %q", product.Barcode)
	}
	if product.Stock != 100 {
		t.Fatalf("untouched stock changed: %d", product.Stock)
	}
}

func TestAdjustStock(t *testing.T) {
	st := memstore.NewSeeded("admin123", "emp123")
	svc := newTestCatalog(st)
	ctx := context.Background()

	product, err := svc.AdjustStock(ctx, 1, model.MovementReceive, 50, "")
	if err != nil {
		t.Fatalf("receive failed: %v", err)
	}
	if product.Stock != 150 {
		t.Fatalf("expected stock 150, got %d", product.Stock)
	}

	product, err = svc.AdjustStock(ctx, 1, model.MovementSale, 30, "")
	if err != nil {
		t.Fatalf("sale failed: %v", err)
	}
	if product.Stock != 120 {
		t.Fatalf("expected stock 120, got %d", product.Stock)
	}

	if _, err := svc.AdjustStock(ctx, 1, model.MovementSale, 500, ""); !IsInsufficientStock(err) {
		t.Fatalf("expected insufficient stock error, got %v", err)
	}
	if _, err := svc.AdjustStock(ctx, 1, "restock", 5, ""); !IsValidation(err) {
		t.Fatalf("expected validation error for bad type, got %v", err)
	}
	if _, err := svc.AdjustStock(ctx, 1, model.MovementSale, 0, ""); !IsValidation(err) {
		t.Fatalf("expected validation error for zero amount, got %v", err)
	}

	movements, _ := st.Movements().List(ctx)
	if len(movements) != 2 {
		t.Fatalf("expected 2 movements, got %d", len(movements))
	}
	if movements[0].Note != "Stock received" || movements[1].Note != "Product sold" {
		t.Fatalf("unexpected default notes: %q, %q", movements[0].Note, movements[1].Note)
	}
}

func TestScanInIncrementsKnownProduct(t *testing.T) {
	st := memstore.NewSeeded("admin123", "emp123")
	svc := newTestCatalog(st)
	ctx := context.Background()

	product, created, err := svc.ScanIn(ctx, "6291003085116")
	if err != nil {
		t.Fatalf("scan-in failed: %v", err)
	}
	if created {
		t.Fatalf("expected existing product")
	}
	if product.Stock != 101 {
		t.Fatalf("expected stock 101, got %d", product.Stock)
	}

	movements, _ := st.Movements().List(ctx)
	if len(movements) != 1 || movements[0].Type != model.MovementReceive || movements[0].Amount != 1 {
		t.Fatalf("unexpected movements %+v", movements)
	}
}

func TestScanInCreatesUnknownBarcode(t *testing.T) {
	st := memstore.New()
	svc := newTestCatalog(st)
	ctx := context.Background()

	product, created, err := svc.ScanIn(ctx, "0000000000031")
	if err != nil {
		t.Fatalf("scan-in failed: %v", err)
	}
	if !created {
		t.Fatalf("expected created product")
	}
	if product.Barcode != "0000000000031" || product.Stock != 1 {
		t.Fatalf("unexpected placeholder %+v", product)
	}

	movements, _ := st.Movements().List(ctx)
	if len(movements) != 1 || movements[0].Type != model.MovementAdd {
		t.Fatalf("unexpected movements %+v", movements)
	}
}

func TestBulkDecrementAllOrNothing(t *testing.T) {
	st := memstore.NewSeeded("admin123", "emp123")
	svc := newTestCatalog(st)
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateProductInput{
		Name:     "Green Tea",
		Barcode:  "8851234567890",
		Category: "Beverages",
		Price:    decimalPtr(20),
		Unit:     "bottle",
		Stock:    intPtr(5),
	}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// Second line fails, so the first product must stay untouched too.
	err := svc.BulkDecrement(ctx, []StockLine{
		{ID: 1, Quantity: 10},
		{ID: 2, Quantity: 6},
	})
	if !IsInsufficientStock(err) {
		t.Fatalf("expected insufficient stock error, got %v", err)
	}
	first, _ := st.Products().Get(ctx, 1)
	if first.Stock != 100 {
		t.Fatalf("first product decremented on failed bulk: %d", first.Stock)
	}

	if err := svc.BulkDecrement(ctx, []StockLine{
		{ID: 1, Quantity: 10},
		{ID: 2, Quantity: 5},
	}); err != nil {
		t.Fatalf("bulk decrement failed: %v", err)
	}
	first, _ = st.Products().Get(ctx, 1)
	second, _ := st.Products().Get(ctx, 2)
	if first.Stock != 90 || second.Stock != 0 {
		t.Fatalf("expected stocks 90/0, got %d/%d", first.Stock, second.Stock)
	}

	// Empty input is a no-op, matching the terminal's sync calls.
	if err := svc.BulkDecrement(ctx, nil); err != nil {
		t.Fatalf("empty bulk decrement failed: %v", err)
	}
}

func TestDeleteProductKeepsLedger(t *testing.T) {
	st := memstore.NewSeeded("admin123", "emp123")
	svc := newTestCatalog(st)
	ctx := context.Background()

	if _, err := svc.AdjustStock(ctx, 1, model.MovementReceive, 5, ""); err != nil {
		t.Fatalf("receive failed: %v", err)
	}
	if err := svc.Delete(ctx, 1); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := st.Products().Get(ctx, 1); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	movements, _ := st.Movements().List(ctx)
	if len(movements) != 1 {
		t.Fatalf("ledger lost on product delete")
	}

	if err := svc.Delete(ctx, 42); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found for unknown id, got %v", err)
	}
}
