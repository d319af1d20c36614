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

func newTestReports(st store.Store) *ReportService {
	return NewReportService(st, nil, zap.NewNop(), 10, 5, 10)
}

func addSale(t *testing.T, st store.Store, ts time.Time, total int64, method string, memberID *uint, items ...model.SaleItem) {
	t.Helper()
	err := st.Sales().Create(context.Background(), &model.Sale{
		Items:         items,
		Subtotal:      decimal.NewFromInt(total),
		Total:         decimal.NewFromInt(total),
		PaymentMethod: method,
		MemberID:      memberID,
		Timestamp:     ts,
	})
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}
}

func TestSummaryEmptyStore(t *testing.T) {
	svc := newTestReports(memstore.New())

	summary, err := svc.Summary(context.Background(), "today")
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if summary.TotalTransactions != 0 {
		t.Fatalf("expected 0 transactions, got %d", summary.TotalTransactions)
	}
	if !summary.AverageTransaction.IsZero() {
		t.Fatalf("expected zero average, got %s", summary.AverageTransaction)
	}
	if summary.TopSellingProducts == nil || summary.LowStockProducts == nil || summary.DailySales == nil {
		t.Fatalf("expected empty slices, not nil")
	}
}

func TestSummaryAggregates(t *testing.T) {
	st := memstore.NewSeeded("admin123", "emp123")
	svc := newTestReports(st)
	ctx := context.Background()

	now := time.Now()
	addSale(t, st, now, 100, model.PaymentCash, nil,
		model.SaleItem{ProductID: 1, Name: "Drinking Water", Price: decimal.NewFromInt(10), Quantity: 10})
	addSale(t, st, now, 300, model.PaymentQR, nil,
		model.SaleItem{ProductID: 1, Name: "Drinking Water", Price: decimal.NewFromInt(10), Quantity: 30})
	// Outside "today", inside "week".
	addSale(t, st, now.AddDate(0, 0, -2), 50, model.PaymentCash, nil)

	summary, err := svc.Summary(ctx, "today")
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if summary.TotalTransactions != 2 {
		t.Fatalf("expected 2 transactions today, got %d", summary.TotalTransactions)
	}
	mustEqualDecimal(t, "400", summary.TotalSales)
	mustEqualDecimal(t, "200", summary.AverageTransaction)
	if len(summary.TopSellingProducts) != 1 {
		t.Fatalf("expected 1 top seller, got %d", len(summary.TopSellingProducts))
	}
	if summary.TopSellingProducts[0].Quantity != 40 {
		t.Fatalf("expected 40 sold, got %d", summary.TopSellingProducts[0].Quantity)
	}
	if len(summary.DailySales) != 1 {
		t.Fatalf("expected 1 daily bucket, got %d", len(summary.DailySales))
	}

	week, err := svc.Summary(ctx, "week")
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if week.TotalTransactions != 3 {
		t.Fatalf("expected 3 transactions this week, got %d", week.TotalTransactions)
	}
	mustEqualDecimal(t, "450", week.TotalSales)
}

func TestSummaryLowStockSortedAscending(t *testing.T) {
	st := memstore.New()
	svc := newTestReports(st)
	ctx := context.Background()

	for _, p := range []model.Product{
		{Name: "A", Barcode: "1", Stock: 8},
		{Name: "B", Barcode: "2", Stock: 3},
		{Name: "C", Barcode: "3", Stock: 50},
		{Name: "D", Barcode: "4", Stock: 3},
	} {
		cp := p
		if err := st.Products().Create(ctx, &cp); err != nil {
			t.Fatalf("create product: %v", err)
		}
	}

	summary, err := svc.Summary(ctx, "today")
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if len(summary.LowStockProducts) != 3 {
		t.Fatalf("expected 3 low stock products, got %d", len(summary.LowStockProducts))
	}
	got := []string{
		summary.LowStockProducts[0].Name,
		summary.LowStockProducts[1].Name,
		summary.LowStockProducts[2].Name,
	}
	// Ties keep insertion order, so B before D.
	want := []string{"B", "D", "A"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}
}

func TestTopSellersTieOrderDeterministic(t *testing.T) {
	st := memstore.New()
	svc := newTestReports(st)
	ctx := context.Background()

	for _, name := range []string{"First", "Second", "Third"} {
		p := model.Product{Name: name, Barcode: name, Stock: 100}
		if err := st.Products().Create(ctx, &p); err != nil {
			t.Fatalf("create product: %v", err)
		}
	}

	now := time.Now()
	// Product 2 leads; 1 and 3 tie and must keep encounter order.
	addSale(t, st, now, 10, model.PaymentCash, nil,
		model.SaleItem{ProductID: 1, Quantity: 5},
		model.SaleItem{ProductID: 2, Quantity: 9})
	addSale(t, st, now, 10, model.PaymentCash, nil,
		model.SaleItem{ProductID: 3, Quantity: 5})

	summary, err := svc.Summary(ctx, "today")
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	ids := make([]uint, 0, len(summary.TopSellingProducts))
	for _, tp := range summary.TopSellingProducts {
		ids = append(ids, tp.Product.ID)
	}
	want := []uint{2, 1, 3}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, ids)
		}
	}
}

func TestSalesBetween(t *testing.T) {
	st := memstore.New()
	svc := newTestReports(st)
	ctx := context.Background()

	memberID := uint(1)
	day := func(d string, hour int) time.Time {
		t0, _ := time.ParseInLocation("2006-01-02", d, time.Local)
		return t0.Add(time.Duration(hour) * time.Hour)
	}
	addSale(t, st, day("2026-08-01", 9), 100, model.PaymentCash, nil)
	addSale(t, st, day("2026-08-10", 12), 200, model.PaymentQR, &memberID)
	// Late on the end date, still inside the inclusive bound.
	addSale(t, st, day("2026-08-15", 23), 300, model.PaymentCash, nil)
	addSale(t, st, day("2026-08-20", 9), 400, model.PaymentCash, nil)

	report, err := svc.SalesBetween(ctx, "2026-08-01", "2026-08-15")
	if err != nil {
		t.Fatalf("report failed: %v", err)
	}
	if report.Summary.TotalTransactions != 3 {
		t.Fatalf("expected 3 sales in range, got %d", report.Summary.TotalTransactions)
	}
	mustEqualDecimal(t, "600", report.Summary.TotalSales)
	mustEqualDecimal(t, "200", report.Summary.AverageTransaction)
	mustEqualDecimal(t, "400", report.Summary.SalesByPaymentMethod[model.PaymentCash])
	mustEqualDecimal(t, "200", report.Summary.SalesByPaymentMethod[model.PaymentQR])
	mustEqualDecimal(t, "200", report.Summary.SalesByMember["member"])
	mustEqualDecimal(t, "400", report.Summary.SalesByMember["non-member"])
	if len(report.Sales) != 3 {
		t.Fatalf("expected 3 sales listed, got %d", len(report.Sales))
	}

	if _, err := svc.SalesBetween(ctx, "", "2026-08-15"); !IsValidation(err) {
		t.Fatalf("expected validation error for missing startDate, got %v", err)
	}
	if _, err := svc.SalesBetween(ctx, "2026-08-01", "not-a-date"); !IsValidation(err) {
		t.Fatalf("expected validation error for bad endDate, got %v", err)
	}
}

func TestProductReportTypes(t *testing.T) {
	st := memstore.New()
	svc := newTestReports(st)
	ctx := context.Background()

	low := model.Product{Name: "Low", Barcode: "1", Stock: 2}
	high := model.Product{Name: "High", Barcode: "2", Stock: 90}
	for _, p := range []*model.Product{&low, &high} {
		if err := st.Products().Create(ctx, p); err != nil {
			t.Fatalf("create product: %v", err)
		}
	}
	addSale(t, st, time.Now(), 10, model.PaymentCash, nil,
		model.SaleItem{ProductID: high.ID, Quantity: 7})

	all, err := svc.Products(ctx, "all")
	if err != nil {
		t.Fatalf("all report failed: %v", err)
	}
	if products, ok := all.([]model.Product); !ok || len(products) != 2 {
		t.Fatalf("unexpected all report %T", all)
	}

	lowReport, err := svc.Products(ctx, "low-stock")
	if err != nil {
		t.Fatalf("low-stock report failed: %v", err)
	}
	products, ok := lowReport.([]model.Product)
	if !ok || len(products) != 1 || products[0].Name != "Low" {
		t.Fatalf("unexpected low-stock report %+v", lowReport)
	}

	topReport, err := svc.Products(ctx, "top-selling")
	if err != nil {
		t.Fatalf("top-selling report failed: %v", err)
	}
	top, ok := topReport.([]TopSoldProduct)
	if !ok || len(top) != 1 {
		t.Fatalf("unexpected top-selling report %+v", topReport)
	}
	if top[0].Name != "High" || top[0].TotalSold != 7 {
		t.Fatalf("unexpected top seller %+v", top[0])
	}
}
