package orders

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/andesgear/tienda-backend/internal/customers"
	"github.com/andesgear/tienda-backend/internal/inventory"
	"github.com/andesgear/tienda-backend/internal/shipping"
	"github.com/andesgear/tienda-backend/pkg/config"
	"github.com/andesgear/tienda-backend/pkg/db"
	"github.com/andesgear/tienda-backend/pkg/db/models"
	"github.com/andesgear/tienda-backend/pkg/enums"
	pkgerrors "github.com/andesgear/tienda-backend/pkg/errors"
	"github.com/andesgear/tienda-backend/pkg/logger"
	"github.com/andesgear/tienda-backend/pkg/metrics"
	"github.com/andesgear/tienda-backend/pkg/types"
)

const (
	orderNumberPrefix  = "ORD-"
	orderNumberLength  = 10
	orderNumberCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// Service assembles orders: customer resolution, re-pricing, the restriction
// gate, stock decrement and persistence all happen in one transaction.
type Service struct {
	tx       txRunner
	repo     Repository
	custRepo customers.Repository
	calc     *shipping.Calculator
	cfg      config.CheckoutConfig
	logg     *logger.Logger
	metrics  *metrics.CheckoutMetrics
}

// NewService wires the order service. calc may be nil only when the checkout
// shipping mode is paid_on_delivery.
func NewService(tx txRunner, repo Repository, custRepo customers.Repository, calc *shipping.Calculator, cfg config.CheckoutConfig, logg *logger.Logger, m *metrics.CheckoutMetrics) (*Service, error) {
	if tx == nil {
		return nil, errors.New("orders: tx runner is required")
	}
	if repo == nil {
		return nil, errors.New("orders: repository is required")
	}
	if custRepo == nil {
		return nil, errors.New("orders: customers repository is required")
	}
	if logg == nil {
		return nil, errors.New("orders: logger is required")
	}
	if cfg.ShippingMode == config.ShippingModeQuoted && calc == nil {
		return nil, errors.New("orders: shipping calculator is required in quoted mode")
	}
	return &Service{
		tx:       tx,
		repo:     repo,
		custRepo: custRepo,
		calc:     calc,
		cfg:      cfg,
		logg:     logg,
		metrics:  m,
	}, nil
}

// CreateOrder runs the whole checkout pipeline atomically. Any failure after
// the stock decrement rolls the decrement back with the rest of the
// transaction.
func (s *Service) CreateOrder(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one item is required")
	}
	for _, item := range input.Items {
		if item.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be positive")
		}
	}
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method")
	}

	started := time.Now()
	var created *models.Order

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		custRepo := s.custRepo.WithTx(tx)

		customer, err := custRepo.FindOrCreateByEmail(ctx, input.Customer)
		if err != nil {
			return err
		}
		ctx := s.logg.WithCustomerID(ctx, customer.ID.String())

		address, err := custRepo.UpsertAddress(ctx, customers.AddressInput{
			CustomerID:   customer.ID,
			AddressLine1: input.Address.AddressLine1,
			AddressLine2: input.Address.AddressLine2,
			CommuneID:    input.Address.CommuneID,
		})
		if err != nil {
			return err
		}

		variants, err := s.loadVariants(ctx, repo, input.Items)
		if err != nil {
			return err
		}

		// restriction gate runs before any stock mutation
		if hasRestricted(variants) && !customer.IsVerified {
			return pkgerrors.New(pkgerrors.CodeVerificationRequired,
				"se requiere verificación de edad para productos restringidos")
		}

		lines := make([]inventory.LineRequest, 0, len(input.Items))
		for _, item := range input.Items {
			lines = append(lines, inventory.LineRequest{VariantID: item.VariantID, Qty: item.Quantity})
		}
		if err := inventory.Decrement(ctx, tx, lines); err != nil {
			return err
		}

		grossSubtotal, items := s.priceItems(input.Items, variants)
		net, tax := s.extractTax(grossSubtotal)

		shippingCost := 0
		if s.cfg.ShippingMode == config.ShippingModeQuoted {
			shippingCost, err = s.quoteShipping(ctx, input, variants)
			if err != nil {
				return err
			}
		}

		order := &models.Order{
			CustomerID:              customer.ID,
			ShippingAddressID:       address.ID,
			CarrierID:               input.CarrierID,
			Status:                  enums.OrderStatusPending,
			PaymentStatus:           enums.PaymentStatusPending,
			SubtotalCLP:             net,
			ShippingCostCLP:         shippingCost,
			TaxCLP:                  tax,
			TotalCLP:                net + shippingCost + tax,
			AgeVerificationComplete: customer.IsVerified,
			Metadata: types.JSONMap{
				"payment_method": input.PaymentMethod.String(),
				"customer_ip":    input.CustomerIP,
				"shipping_mode":  s.cfg.ShippingMode,
			},
		}

		if err := s.persistWithFreshNumber(ctx, repo, order); err != nil {
			return err
		}

		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := repo.CreateOrderItems(ctx, items); err != nil {
			return err
		}
		order.Items = items

		created = order
		return nil
	})
	if err != nil {
		s.metrics.IncOrder("failed")
		s.metrics.ObserveCheckout("failed", time.Since(started))
		return nil, err
	}

	s.metrics.IncOrder("created")
	s.metrics.ObserveCheckout("created", time.Since(started))
	s.logg.Info(s.logg.WithOrderNumber(ctx, created.OrderNumber), "order created")
	return created, nil
}

// Cancel transitions an order to cancelled and restores stock. Restocking
// happens exactly once, on the not-cancelled to cancelled edge.
func (s *Service) Cancel(ctx context.Context, orderNumber string) (*models.Order, error) {
	var cancelled *models.Order

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindByOrderNumber(ctx, orderNumber)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return err
		}

		switch order.Status {
		case enums.OrderStatusCancelled:
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is already cancelled")
		case enums.OrderStatusShipped, enums.OrderStatusDelivered:
			return pkgerrors.New(pkgerrors.CodeStateConflict, "shipped orders cannot be cancelled")
		}

		if err := repo.UpdateOrder(ctx, order.ID, map[string]any{"status": enums.OrderStatusCancelled}); err != nil {
			return err
		}

		lines := restockLines(order.Items)
		if len(lines) > 0 {
			if err := inventory.Restore(ctx, tx, lines); err != nil {
				return multierr.Append(fmt.Errorf("restoring stock for %s", order.OrderNumber), err)
			}
		}

		order.Status = enums.OrderStatusCancelled
		cancelled = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithOrderNumber(ctx, cancelled.OrderNumber), "order cancelled, stock restored")
	return cancelled, nil
}

// Track returns the public status projection for an order number.
func (s *Service) Track(ctx context.Context, orderNumber string) (*TrackingView, error) {
	order, err := s.repo.FindByOrderNumber(ctx, orderNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound,
				"no encontramos un pedido con ese número")
		}
		return nil, err
	}

	view := &TrackingView{
		OrderNumber:        order.OrderNumber,
		Status:             order.Status.String(),
		StatusLabel:        order.Status.Label(),
		PaymentStatus:      order.PaymentStatus.String(),
		PaymentStatusLabel: order.PaymentStatus.Label(),
		TotalCLP:           order.TotalCLP,
		CreatedAt:          order.CreatedAt,
		ItemsCount:         len(order.Items),
	}
	if method, ok := order.Metadata.GetString("payment_method"); ok {
		view.PaymentMethod = &method
	}
	if code, ok := order.Metadata.GetString("tracking_code"); ok {
		view.TrackingCode = &code
	}
	if msg, ok := order.Metadata.GetString("seller_message"); ok {
		view.SellerMessage = &msg
	}
	if order.Carrier != nil {
		view.Carrier = &order.Carrier.Name
	}
	for _, item := range order.Items {
		view.Items = append(view.Items, TrackingItem{
			Name:     item.ProductName,
			Quantity: item.Quantity,
			Price:    item.UnitPriceCLP,
		})
	}
	return view, nil
}

func (s *Service) loadVariants(ctx context.Context, repo Repository, items []ItemInput) (map[uuid.UUID]models.ProductVariant, error) {
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.VariantID)
	}

	rows, err := repo.FindVariantsForSale(ctx, ids)
	if err != nil {
		return nil, err
	}
	variants := make(map[uuid.UUID]models.ProductVariant, len(rows))
	for _, row := range rows {
		variants[row.ID] = row
	}

	for _, item := range items {
		if _, ok := variants[item.VariantID]; !ok {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product variant not available").
				WithDetails(map[string]any{"variant_id": item.VariantID.String()})
		}
	}
	return variants, nil
}

// priceItems re-fetches prices server-side; client-submitted amounts are
// never trusted.
func (s *Service) priceItems(items []ItemInput, variants map[uuid.UUID]models.ProductVariant) (int, []models.OrderItem) {
	subtotal := 0
	orderItems := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		variant := variants[item.VariantID]
		lineTotal := variant.PriceCLP * item.Quantity
		subtotal += lineTotal

		name := variant.Name
		if variant.Product != nil {
			name = variant.Product.Name + " - " + variant.Name
		}
		variantID := variant.ID
		orderItems = append(orderItems, models.OrderItem{
			ProductVariantID: &variantID,
			ProductName:      name,
			SKU:              variant.SKU,
			Quantity:         item.Quantity,
			UnitPriceCLP:     variant.PriceCLP,
			SubtotalCLP:      lineTotal,
		})
	}
	return subtotal, orderItems
}

// extractTax splits a tax-inclusive gross amount into net and IVA. Catalog
// prices include IVA, so the order stores net in subtotal_clp and the
// extracted tax in tax_clp.
func (s *Service) extractTax(gross int) (net int, tax int) {
	rate := decimal.NewFromInt(int64(s.cfg.TaxRatePercent)).
		Div(decimal.NewFromInt(100)).
		Add(decimal.NewFromInt(1))
	netDec := decimal.NewFromInt(int64(gross)).Div(rate).Round(0)
	net = int(netDec.IntPart())
	return net, gross - net
}

func (s *Service) quoteShipping(ctx context.Context, input CreateOrderInput, variants map[uuid.UUID]models.ProductVariant) (int, error) {
	lines := make([]shipping.CartLine, 0, len(input.Items))
	for _, item := range input.Items {
		lines = append(lines, shipping.CartLine{
			WeightKg: variants[item.VariantID].WeightKg,
			Quantity: item.Quantity,
		})
	}

	communeID := input.Address.CommuneID
	quote, err := s.calc.Quote(ctx, shipping.QuoteInput{
		RegionID:  input.Address.RegionID,
		CommuneID: &communeID,
		CarrierID: input.CarrierID,
		WeightKg:  shipping.TotalWeightKg(lines),
	})
	if err != nil {
		return 0, err
	}
	if quote.Method == enums.QuoteMethodError {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "shipping destination cannot be quoted").
			WithDetails(map[string]any{"reason": quote.Reason})
	}
	return quote.CostCLP, nil
}

// persistWithFreshNumber retries on order-number collisions. The keyspace is
// 36^10 so collisions are rare; the unique index is the authority.
func (s *Service) persistWithFreshNumber(ctx context.Context, repo Repository, order *models.Order) error {
	attempts := s.cfg.OrderNumberAttempts
	if attempts <= 0 {
		attempts = 1
	}

	for attempt := 0; attempt < attempts; attempt++ {
		number, err := generateOrderNumber()
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generating order number")
		}
		order.OrderNumber = number

		_, err = repo.CreateOrder(ctx, order)
		if err == nil {
			return nil
		}
		if !db.IsUniqueViolation(err, "uq_orders_order_number") {
			return err
		}
		order.ID = uuid.Nil
	}
	return pkgerrors.New(pkgerrors.CodeInternal, "could not allocate a unique order number")
}

func generateOrderNumber() (string, error) {
	buf := make([]byte, orderNumberLength)
	charsetLen := big.NewInt(int64(len(orderNumberCharset)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, charsetLen)
		if err != nil {
			return "", err
		}
		buf[i] = orderNumberCharset[n.Int64()]
	}
	return orderNumberPrefix + string(buf), nil
}

func hasRestricted(variants map[uuid.UUID]models.ProductVariant) bool {
	for _, variant := range variants {
		if variant.Product != nil && variant.Product.IsRestricted {
			return true
		}
	}
	return false
}

func restockLines(items []models.OrderItem) []inventory.LineRequest {
	lines := make([]inventory.LineRequest, 0, len(items))
	for _, item := range items {
		if item.ProductVariantID == nil {
			continue
		}
		lines = append(lines, inventory.LineRequest{VariantID: *item.ProductVariantID, Qty: item.Quantity})
	}
	return lines
}
