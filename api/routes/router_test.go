package routes

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	ordersvc "github.com/andesgear/tienda-backend/internal/orders"
	paymentsvc "github.com/andesgear/tienda-backend/internal/payments"
	shippingsvc "github.com/andesgear/tienda-backend/internal/shipping"
	pkgauth "github.com/andesgear/tienda-backend/pkg/auth"
	"github.com/andesgear/tienda-backend/pkg/config"
	"github.com/andesgear/tienda-backend/pkg/db/models"
	"github.com/andesgear/tienda-backend/pkg/logger"
	"github.com/andesgear/tienda-backend/pkg/metrics"
	"github.com/andesgear/tienda-backend/pkg/webpay"

	"github.com/andesgear/tienda-backend/internal/customers"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubGateway struct{}

func (stubGateway) Create(context.Context, webpay.CreateRequest) (*webpay.CreateResponse, error) {
	return nil, errors.New("gateway not wired in tests")
}

func (stubGateway) Commit(context.Context, string) (*webpay.CommitResponse, error) {
	return nil, errors.New("gateway not wired in tests")
}

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "tienda",
			ExpirationMinutes: 60,
		},
		Checkout: config.CheckoutConfig{
			ShippingMode:        config.ShippingModePaidOnDelivery,
			TaxRatePercent:      19,
			OrderNumberAttempts: 5,
		},
	}
}

func newTestRouter(t *testing.T, cfg *config.Config) (http.Handler, *gorm.DB) {
	t.Helper()

	dsn := "file:routes_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	err = db.AutoMigrate(
		&models.Region{},
		&models.Commune{},
		&models.Customer{},
		&models.CustomerAddress{},
		&models.Carrier{},
		&models.CarrierCapability{},
		&models.ShippingZone{},
		&models.ShippingClass{},
		&models.Product{},
		&models.ProductVariant{},
		&models.Order{},
		&models.OrderItem{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	tx := gormTxRunner{db: db}

	shipRepo := shippingsvc.NewRepository(db)
	calc, err := shippingsvc.NewCalculator(shipRepo, nil)
	if err != nil {
		t.Fatalf("calculator: %v", err)
	}
	shipSvc, err := shippingsvc.NewService(shipRepo, logg)
	if err != nil {
		t.Fatalf("shipping service: %v", err)
	}

	ordersRepo := ordersvc.NewRepository(db)
	orderSvc, err := ordersvc.NewService(tx, ordersRepo, customers.NewRepository(db), calc, cfg.Checkout, logg, nil)
	if err != nil {
		t.Fatalf("orders service: %v", err)
	}

	paySvc, err := paymentsvc.NewService(tx, ordersRepo, stubGateway{}, nil, "https://shop.test/return", logg, nil)
	if err != nil {
		t.Fatalf("payments service: %v", err)
	}

	registry := prometheus.NewRegistry()
	router := NewRouter(Dependencies{
		Config:     cfg,
		Logger:     logg,
		DB:         stubPinger{},
		Redis:      nil,
		Registry:   registry,
		Orders:     orderSvc,
		Payments:   paySvc,
		Shipping:   shipSvc,
		Calculator: calc,
		Metrics:    metrics.NewCheckoutMetrics(registry),
	})
	return router, db
}

func TestHealthEndpoints(t *testing.T) {
	router, _ := newTestRouter(t, testConfig())

	live := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, live)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for live got %d", resp.Code)
	}

	ready := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, ready)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for ready got %d", resp.Code)
	}
}

func TestMetricsEndpointExposed(t *testing.T) {
	router, _ := newTestRouter(t, testConfig())
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for metrics got %d", resp.Code)
	}
}

func TestCheckoutRejectsInvalidBody(t *testing.T) {
	router, _ := newTestRouter(t, testConfig())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid payload got %d", resp.Code)
	}
}

func TestCheckoutAcceptsShippingAddressPayload(t *testing.T) {
	router, db := newTestRouter(t, testConfig())

	region := models.Region{ID: uuid.New(), Name: "Metropolitana", Code: "RM"}
	if err := db.Create(&region).Error; err != nil {
		t.Fatalf("seed region: %v", err)
	}
	commune := models.Commune{ID: uuid.New(), RegionID: region.ID, Name: "Providencia"}
	if err := db.Create(&commune).Error; err != nil {
		t.Fatalf("seed commune: %v", err)
	}
	product := models.Product{ID: uuid.New(), Name: "Polera", SKU: "P-POL", BasePriceCLP: 10000, IsActive: true}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	variant := models.ProductVariant{
		ID:            uuid.New(),
		ProductID:     product.ID,
		SKU:           "POL-M",
		Name:          "Polera M",
		PriceCLP:      10000,
		StockQuantity: 3,
		WeightKg:      decimal.NewFromFloat(0.5),
		IsActive:      true,
	}
	if err := db.Create(&variant).Error; err != nil {
		t.Fatalf("seed variant: %v", err)
	}

	body := `{
		"customer": {"first_name": "Amanda", "last_name": "Rojas", "email": "amanda@example.com"},
		"shipping_address": {"address_line1": "Av. Providencia 1234", "region_id": "` + region.ID.String() + `", "commune_id": "` + commune.ID.String() + `"},
		"items": [{"variant_id": "` + variant.ID.String() + `", "quantity": 1}],
		"payment_method": "transfer"
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if !strings.Contains(resp.Body.String(), "ORD-") {
		t.Fatalf("expected an order number in the response, got %s", resp.Body.String())
	}
}

func TestShippingQuoteRequiresRegion(t *testing.T) {
	router, _ := newTestRouter(t, testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/shipping/quote", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without region got %d", resp.Code)
	}
}

func TestTrackingValidatesAndLooksUp(t *testing.T) {
	router, _ := newTestRouter(t, testConfig())

	missing := httptest.NewRequest(http.MethodGet, "/api/v1/orders/track", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, missing)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without order number got %d", resp.Code)
	}

	unknown := httptest.NewRequest(http.MethodGet, "/api/v1/orders/track?order_number=ORD-MISSING123", nil)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, unknown)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown order got %d", resp.Code)
	}
}

func TestAdminCancelRequiresStaffToken(t *testing.T) {
	cfg := testConfig()
	router, _ := newTestRouter(t, cfg)

	anon := httptest.NewRequest(http.MethodPost, "/api/admin/v1/orders/ORD-ABC123XYZ0/cancel", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, anon)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}

	support := httptest.NewRequest(http.MethodPost, "/api/admin/v1/orders/ORD-ABC123XYZ0/cancel", nil)
	support.Header.Set("Authorization", "Bearer "+buildStaffToken(t, cfg, pkgauth.StaffRoleSupport))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, support)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for support role got %d", resp.Code)
	}

	// operator clears the role gate; the order simply does not exist
	operator := httptest.NewRequest(http.MethodPost, "/api/admin/v1/orders/ORD-ABC123XYZ0/cancel", nil)
	operator.Header.Set("Authorization", "Bearer "+buildStaffToken(t, cfg, pkgauth.StaffRoleOperator))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, operator)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for operator on missing order got %d", resp.Code)
	}
}

func TestWebpayReturnWithoutTokenIsAborted(t *testing.T) {
	router, _ := newTestRouter(t, testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/payments/webpay/return?TBK_TOKEN=tbk_123", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for aborted return got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "aborted") {
		t.Fatalf("expected aborted outcome, got %s", resp.Body.String())
	}
}

func buildStaffToken(t *testing.T, cfg *config.Config, role pkgauth.StaffRole) string {
	t.Helper()
	token, err := pkgauth.MintStaffToken(cfg.JWT, time.Now(), pkgauth.StaffTokenPayload{
		StaffID: uuid.New(),
		Role:    role,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}
