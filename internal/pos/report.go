package pos

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"pos-service/internal/model"
	"pos-service/internal/store"
	"pos-service/pkg/cache"
	"pos-service/prometheus"
)

// ReportService derives dashboard and report views by scanning the sale
// and product collections. Pure read side; nothing here mutates state.
type ReportService struct {
	store store.Store
	cache *cache.Cache
	log   *zap.Logger

	lowStockThreshold int
	topSellingLimit   int
	reportTopLimit    int
}

// NewReportService builds a report service
func NewReportService(st store.Store, c *cache.Cache, log *zap.Logger, lowStockThreshold, topSellingLimit, reportTopLimit int) *ReportService {
	return &ReportService{
		store:             st,
		cache:             c,
		log:               log,
		lowStockThreshold: lowStockThreshold,
		topSellingLimit:   topSellingLimit,
		reportTopLimit:    reportTopLimit,
	}
}

// TopSellingProduct pairs a product with its quantity sold. Product is
// nil when the catalog entry was deleted after the sales happened.
type TopSellingProduct struct {
	Product  *model.Product `json:"product"`
	Quantity int            `json:"quantity"`
}

// DailySales is one calendar-date bucket of sale totals
type DailySales struct {
	Date  string          `json:"date"`
	Total decimal.Decimal `json:"total"`
}

// DashboardSummary is the aggregate view behind the dashboard
type DashboardSummary struct {
	TotalSales         decimal.Decimal     `json:"totalSales"`
	TotalTransactions  int                 `json:"totalTransactions"`
	AverageTransaction decimal.Decimal     `json:"averageTransaction"`
	TopSellingProducts []TopSellingProduct `json:"topSellingProducts"`
	LowStockProducts   []model.Product     `json:"lowStockProducts"`
	DailySales         []DailySales        `json:"dailySales"`
}

// SalesSummary aggregates a filtered sale list
type SalesSummary struct {
	TotalSales           decimal.Decimal            `json:"totalSales"`
	TotalTransactions    int                        `json:"totalTransactions"`
	AverageTransaction   decimal.Decimal            `json:"averageTransaction"`
	SalesByPaymentMethod map[string]decimal.Decimal `json:"salesByPaymentMethod"`
	SalesByMember        map[string]decimal.Decimal `json:"salesByMember"`
}

// SalesReport is the date-range sales report payload
type SalesReport struct {
	Summary SalesSummary `json:"summary"`
	Sales   []model.Sale `json:"sales"`
}

// TopSoldProduct is a catalog entry annotated with its total quantity
// sold, used by the product report
type TopSoldProduct struct {
	model.Product
	TotalSold int `json:"totalSold"`
}

// rangeStart resolves a named dashboard range to its inclusive lower
// bound: today is local midnight, the others walk back from now.
func rangeStart(rng string, now time.Time) time.Time {
	switch rng {
	case "week":
		return now.AddDate(0, 0, -7)
	case "month":
		return now.AddDate(0, -1, 0)
	case "year":
		return now.AddDate(-1, 0, 0)
	default: // today
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	}
}

// Summary builds the dashboard summary for a named range
// (today/week/month/year)
func (s *ReportService) Summary(ctx context.Context, rng string) (*DashboardSummary, error) {
	if rng == "" {
		rng = "today"
	}

	cacheKey := cache.SummaryKeyPrefix + rng
	var cached DashboardSummary
	if s.cache.GetJSON(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	sales, err := s.store.Sales().ListInRange(ctx, rangeStart(rng, time.Now()), time.Time{})
	if err != nil {
		return nil, err
	}
	products, err := s.store.Products().List(ctx)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, sale := range sales {
		total = total.Add(sale.Total)
	}
	average := decimal.Zero
	if len(sales) > 0 {
		average = total.Div(decimal.NewFromInt(int64(len(sales))))
	}

	byID := make(map[uint]*model.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	top := topSellers(sales, byID, s.topSellingLimit)

	low := make([]model.Product, 0)
	for _, p := range products {
		if p.Stock < s.lowStockThreshold {
			low = append(low, p)
		}
	}
	sort.SliceStable(low, func(i, j int) bool { return low[i].Stock < low[j].Stock })
	prometheus.SetLowStockCount(len(low))

	summary := &DashboardSummary{
		TotalSales:         total,
		TotalTransactions:  len(sales),
		AverageTransaction: average,
		TopSellingProducts: top,
		LowStockProducts:   low,
		DailySales:         dailyBuckets(sales),
	}
	s.cache.SetJSON(ctx, cacheKey, summary, cache.TTLShort)
	return summary, nil
}

// topSellers groups sale items by product, sums quantities and returns
// the top n in descending quantity with ties kept in first-encountered
// order
func topSellers(sales []model.Sale, byID map[uint]*model.Product, n int) []TopSellingProduct {
	quantities := make(map[uint]int)
	order := make([]uint, 0)
	for _, sale := range sales {
		for _, item := range sale.Items {
			if _, seen := quantities[item.ProductID]; !seen {
				order = append(order, item.ProductID)
			}
			quantities[item.ProductID] += item.Quantity
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return quantities[order[i]] > quantities[order[j]]
	})
	if len(order) > n {
		order = order[:n]
	}

	top := make([]TopSellingProduct, 0, len(order))
	for _, id := range order {
		top = append(top, TopSellingProduct{Product: byID[id], Quantity: quantities[id]})
	}
	return top
}

// dailyBuckets sums sale totals per calendar date, ascending by date
func dailyBuckets(sales []model.Sale) []DailySales {
	totals := make(map[string]decimal.Decimal)
	for _, sale := range sales {
		date := sale.Timestamp.Format("2006-01-02")
		totals[date] = totals[date].Add(sale.Total)
	}
	dates := make([]string, 0, len(totals))
	for date := range totals {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	out := make([]DailySales, 0, len(dates))
	for _, date := range dates {
		out = append(out, DailySales{Date: date, Total: totals[date]})
	}
	return out
}

// SalesBetween builds the sales report for an explicit date range, both
// bounds inclusive
func (s *ReportService) SalesBetween(ctx context.Context, startDate, endDate string) (*SalesReport, error) {
	if startDate == "" || endDate == "" {
		return nil, Invalid("startDate and endDate are required")
	}
	start, err := parseDate(startDate)
	if err != nil {
		return nil, Invalid("Invalid startDate")
	}
	end, err := parseDateEnd(endDate)
	if err != nil {
		return nil, Invalid("Invalid endDate")
	}

	sales, err := s.store.Sales().ListInRange(ctx, start, end)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	byMethod := make(map[string]decimal.Decimal)
	byMember := make(map[string]decimal.Decimal)
	for _, sale := range sales {
		total = total.Add(sale.Total)

		method := sale.PaymentMethod
		if method == "" {
			method = model.PaymentCash
		}
		byMethod[method] = byMethod[method].Add(sale.Total)

		bucket := "non-member"
		if sale.MemberID != nil {
			bucket = "member"
		}
		byMember[bucket] = byMember[bucket].Add(sale.Total)
	}
	average := decimal.Zero
	if len(sales) > 0 {
		average = total.Div(decimal.NewFromInt(int64(len(sales))))
	}

	return &SalesReport{
		Summary: SalesSummary{
			TotalSales:           total,
			TotalTransactions:    len(sales),
			AverageTransaction:   average,
			SalesByPaymentMethod: byMethod,
			SalesByMember:        byMember,
		},
		Sales: sales,
	}, nil
}

func parseDate(v string) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02", v, time.Local); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, v)
}

// parseDateEnd resolves an upper bound. A bare date covers the whole
// calendar day.
func parseDateEnd(v string) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02", v, time.Local); err == nil {
		return t.AddDate(0, 0, 1).Add(-time.Nanosecond), nil
	}
	return time.Parse(time.RFC3339, v)
}

// Products builds the product report: "low-stock", "top-selling" or the
// whole catalog
func (s *ReportService) Products(ctx context.Context, reportType string) (interface{}, error) {
	products, err := s.store.Products().List(ctx)
	if err != nil {
		return nil, err
	}

	switch reportType {
	case "low-stock":
		low := make([]model.Product, 0)
		for _, p := range products {
			if p.Stock < s.lowStockThreshold {
				low = append(low, p)
			}
		}
		return low, nil

	case "top-selling":
		sales, err := s.store.Sales().ListInRange(ctx, time.Time{}, time.Time{})
		if err != nil {
			return nil, err
		}
		byID := make(map[uint]*model.Product, len(products))
		for i := range products {
			byID[products[i].ID] = &products[i]
		}
		top := topSellers(sales, byID, s.reportTopLimit)
		out := make([]TopSoldProduct, 0, len(top))
		for _, t := range top {
			if t.Product == nil {
				continue
			}
			out = append(out, TopSoldProduct{Product: *t.Product, TotalSold: t.Quantity})
		}
		return out, nil

	default:
		return products, nil
	}
}
