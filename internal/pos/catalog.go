package pos

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"pos-service/internal/model"
	"pos-service/internal/store"
	"pos-service/pkg/cache"
	"pos-service/prometheus"
)

// CatalogService owns product CRUD, barcode lookups and direct stock
// adjustments. Every stock change appends exactly one ledger movement in
// the same transaction as the product update.
type CatalogService struct {
	store store.Store
	cache *cache.Cache
	log   *zap.Logger
}

// NewCatalogService builds a catalog service
func NewCatalogService(st store.Store, c *cache.Cache, log *zap.Logger) *CatalogService {
	return &CatalogService{store: st, cache: c, log: log}
}

// CreateProductInput carries the fields for a new product. Price and
// Stock are pointers so a missing field is distinguishable from zero.
type CreateProductInput struct {
	Name     string           `json:"name"`
	Barcode  string           `json:"barcode"`
	Category string           `json:"category"`
	Price    *decimal.Decimal `json:"price"`
	Unit     string           `json:"unit"`
	Stock    *int             `json:"stock"`
	ImageURL string           `json:"imageUrl"`
}

// UpdateProductInput carries a partial product update; nil fields are
// left unchanged
type UpdateProductInput struct {
	Name     *string          `json:"name"`
	Barcode  *string          `json:"barcode"`
	Category *string          `json:"category"`
	Price    *decimal.Decimal `json:"price"`
	Unit     *string          `json:"unit"`
	Stock    *int             `json:"stock"`
	ImageURL *string          `json:"imageUrl"`
}

// StockLine identifies one product/quantity pair in a bulk decrement
type StockLine struct {
	ID       uint `json:"id"`
	Quantity int  `json:"quantity"`
}

func (s *CatalogService) invalidate(ctx context.Context) {
	s.cache.Invalidate(ctx, cache.ProductListKey)
	s.cache.InvalidatePrefix(ctx, cache.SummaryKeyPrefix)
}

// List returns all products in insertion order
func (s *CatalogService) List(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	if s.cache.GetJSON(ctx, cache.ProductListKey, &products) {
		return products, nil
	}
	products, err := s.store.Products().List(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.SetJSON(ctx, cache.ProductListKey, products, cache.TTLMedium)
	return products, nil
}

// Get returns one product by id
func (s *CatalogService) Get(ctx context.Context, id uint) (*model.Product, error) {
	return s.store.Products().Get(ctx, id)
}

// Create validates and stores a new product. A starting stock above zero
// is recorded as an "add" movement in the same transaction.
func (s *CatalogService) Create(ctx context.Context, in CreateProductInput) (*model.Product, error) {
	if in.Name == "" || in.Barcode == "" || in.Category == "" || in.Unit == "" || in.Price == nil || in.Stock == nil {
		return nil, Invalid("Missing required fields")
	}
	if in.Price.IsNegative() {
		return nil, Invalid("Price must not be negative")
	}
	if *in.Stock < 0 {
		return nil, Invalid("Stock must not be negative")
	}

	product := &model.Product{
		Name:     in.Name,
		Barcode:  in.Barcode,
		Category: in.Category,
		Price:    *in.Price,
		Unit:     in.Unit,
		Stock:    *in.Stock,
		ImageURL: in.ImageURL,
	}

	err := s.store.WithinTx(ctx, func(tx store.Store) error {
		if err := tx.Products().Create(ctx, product); err != nil {
			return err
		}
		if product.Stock > 0 {
			return tx.Movements().Append(ctx, &model.StockMovement{
				ProductID: product.ID,
				Type:      model.MovementAdd,
				Amount:    product.Stock,
				Date:      time.Now(),
				Note:      "New product added",
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	prometheus.RecordStockMovement(model.MovementAdd)
	s.invalidate(ctx)
	s.log.Info("Product created",
		zap.Uint("product_id", product.ID),
		zap.String("name", product.Name),
		zap.String("barcode", product.Barcode),
		zap.Int("stock", product.Stock))
	return product, nil
}

// Update merges the provided fields into an existing product
func (s *CatalogService) Update(ctx context.Context, id uint, in UpdateProductInput) (*model.Product, error) {
	product, err := s.store.Products().Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		product.Name = *in.Name
	}
	if in.Barcode != nil {
		product.Barcode = *in.Barcode
	}
	if in.Category != nil {
		product.Category = *in.Category
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return nil, Invalid("Price must not be negative")
		}
		product.Price = *in.Price
	}
	if in.Unit != nil {
		product.Unit = *in.Unit
	}
	if in.Stock != nil {
		if *in.Stock < 0 {
			return nil, Invalid("Stock must not be negative")
		}
		product.Stock = *in.Stock
	}
	if in.ImageURL != nil {
		product.ImageURL = *in.ImageURL
	}

	if err := s.store.Products().Update(ctx, product); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	s.log.Info("Product updated", zap.Uint("product_id", product.ID), zap.String("name", product.Name))
	return product, nil
}

// Delete removes a product from the catalog. Ledger entries and sale
// snapshots referencing it are kept.
func (s *CatalogService) Delete(ctx context.Context, id uint) error {
	if err := s.store.Products().Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	s.log.Info("Product deleted", zap.Uint("product_id", id))
	return nil
}

// FindByBarcode looks a product up by its barcode
func (s *CatalogService) FindByBarcode(ctx context.Context, barcode string) (*model.Product, error) {
	if barcode == "" {
		return nil, Invalid("Barcode is required")
	}
	return s.store.Products().FindByBarcode(ctx, barcode)
}

// AdjustStock applies a manual sale or receive adjustment and appends
// the matching ledger movement atomically
func (s *CatalogService) AdjustStock(ctx context.Context, id uint, movementType string, amount int, note string) (*model.Product, error) {
	if movementType != model.MovementSale && movementType != model.MovementReceive {
		return nil, Invalid("Invalid type or amount")
	}
	if amount <= 0 {
		return nil, Invalid("Invalid type or amount")
	}

	var product *model.Product
	err := s.store.WithinTx(ctx, func(tx store.Store) error {
		p, err := tx.Products().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		switch movementType {
		case model.MovementSale:
			if p.Stock < amount {
				return &InsufficientStockError{ProductID: p.ID, Name: p.Name, Stock: p.Stock, Requested: amount}
			}
			p.Stock -= amount
		case model.MovementReceive:
			p.Stock += amount
		}
		if err := tx.Products().Update(ctx, p); err != nil {
			return err
		}
		if note == "" {
			if movementType == model.MovementSale {
				note = "Product sold"
			} else {
				note = "Stock received"
			}
		}
		if err := tx.Movements().Append(ctx, &model.StockMovement{
			ProductID: p.ID,
			Type:      movementType,
			Amount:    amount,
			Date:      time.Now(),
			Note:      note,
		}); err != nil {
			return err
		}
		product = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	prometheus.RecordStockMovement(movementType)
	s.invalidate(ctx)
	s.log.Info("Stock adjusted",
		zap.Uint("product_id", product.ID),
		zap.String("type", movementType),
		zap.Int("amount", amount),
		zap.Int("stock", product.Stock))
	return product, nil
}

// ScanIn increments a product's stock by one scan unit, creating a
// placeholder product when the barcode is unknown. Returns the product
// and whether it was created.
func (s *CatalogService) ScanIn(ctx context.Context, barcode string) (*model.Product, bool, error) {
	if barcode == "" {
		return nil, false, Invalid("Barcode is required")
	}

	var (
		product *model.Product
		created bool
	)
	err := s.store.WithinTx(ctx, func(tx store.Store) error {
		p, err := tx.Products().FindByBarcode(ctx, barcode)
		switch {
		case err == nil:
			p.Stock++
			if err := tx.Products().Update(ctx, p); err != nil {
				return err
			}
			if err := tx.Movements().Append(ctx, &model.StockMovement{
				ProductID: p.ID,
				Type:      model.MovementReceive,
				Amount:    1,
				Date:      time.Now(),
				Note:      "Stock added from scan",
			}); err != nil {
				return err
			}
			product = p
			return nil
		case err == store.ErrNotFound:
			p = &model.Product{Barcode: barcode, Price: decimal.Zero, Stock: 1}
			if err := tx.Products().Create(ctx, p); err != nil {
				return err
			}
			if err := tx.Movements().Append(ctx, &model.StockMovement{
				ProductID: p.ID,
				Type:      model.MovementAdd,
				Amount:    1,
				Date:      time.Now(),
				Note:      "Product created from scan",
			}); err != nil {
				return err
			}
			product = p
			created = true
			return nil
		default:
			return err
		}
	})
	if err != nil {
		return nil, false, err
	}

	if created {
		prometheus.RecordStockMovement(model.MovementAdd)
	} else {
		prometheus.RecordStockMovement(model.MovementReceive)
	}
	s.invalidate(ctx)
	s.log.Info("Scan-in processed",
		zap.String("barcode", barcode),
		zap.Uint("product_id", product.ID),
		zap.Bool("created", created))
	return product, created, nil
}

// BulkDecrement applies a multi-product stock decrement all-or-nothing:
// every line is validated against current stock inside the transaction
// before any product is touched
func (s *CatalogService) BulkDecrement(ctx context.Context, lines []StockLine) error {
	if len(lines) == 0 {
		return nil
	}
	for _, line := range lines {
		if line.Quantity <= 0 {
			return Invalid("Invalid items")
		}
	}

	err := s.store.WithinTx(ctx, func(tx store.Store) error {
		// Stage decrements on fetched copies so repeated ids validate
		// cumulatively, then write once per distinct product.
		fetched := make(map[uint]*model.Product)
		order := make([]uint, 0, len(lines))
		quantity := make(map[uint]int)
		for _, line := range lines {
			p, ok := fetched[line.ID]
			if !ok {
				var err error
				p, err = tx.Products().GetForUpdate(ctx, line.ID)
				if err != nil {
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
		}
		now := time.Now()
		for _, id := range order {
			if err := tx.Products().Update(ctx, fetched[id]); err != nil {
				return err
			}
			if err := tx.Movements().Append(ctx, &model.StockMovement{
				ProductID: id,
				Type:      model.MovementSale,
				Amount:    quantity[id],
				Date:      now,
				Note:      "Product sold (POS)",
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	for range lines {
		prometheus.RecordStockMovement(model.MovementSale)
	}
	s.invalidate(ctx)
	s.log.Info("Bulk stock decrement applied", zap.Int("lines", len(lines)))
	return nil
}

// Movements returns the full stock ledger in chronological order
func (s *CatalogService) Movements(ctx context.Context) ([]model.StockMovement, error) {
	return s.store.Movements().List(ctx)
}
