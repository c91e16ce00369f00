package payments

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/andesgear/tienda-backend/internal/orders"
	"github.com/andesgear/tienda-backend/pkg/enums"
	pkgerrors "github.com/andesgear/tienda-backend/pkg/errors"
	"github.com/andesgear/tienda-backend/pkg/logger"
	"github.com/andesgear/tienda-backend/pkg/metrics"
	"github.com/andesgear/tienda-backend/pkg/types"
	"github.com/andesgear/tienda-backend/pkg/webpay"
)

// Outcome classifies a processed gateway return.
type Outcome string

const (
	OutcomeApproved  Outcome = "approved"
	OutcomeRejected  Outcome = "rejected"
	OutcomeAborted   Outcome = "aborted"
	OutcomeDuplicate Outcome = "duplicate"
)

// gateway is the slice of the Webpay client the service needs.
type gateway interface {
	Create(ctx context.Context, req webpay.CreateRequest) (*webpay.CreateResponse, error)
	Commit(ctx context.Context, token string) (*webpay.CommitResponse, error)
}

// callbackGuard deduplicates return tokens. Implementations may be advisory.
type callbackGuard interface {
	CheckAndMark(ctx context.Context, token string) (bool, error)
	Delete(ctx context.Context, token string) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// StartResult carries the redirect data for the hosted payment form.
type StartResult struct {
	Token       string `json:"token"`
	URL         string `json:"url"`
	RedirectURL string `json:"redirect_url"`
}

// ReturnParams are the form/query values Transbank sends back. TokenWS is
// absent when the shopper aborted at the payment form.
type ReturnParams struct {
	TokenWS  string
	TBKToken string
}

// ReturnResult is the processed outcome of a gateway return.
type ReturnResult struct {
	Outcome     Outcome `json:"outcome"`
	OrderNumber string  `json:"order_number,omitempty"`
}

// Service drives the Webpay Plus payment lifecycle for orders.
type Service struct {
	tx        txRunner
	repo      orders.Repository
	gw        gateway
	guard     callbackGuard
	returnURL string
	logg      *logger.Logger
	metrics   *metrics.CheckoutMetrics
}

// NewService wires the payments service. guard may be nil; duplicate returns
// are then caught only by the payment_status check.
func NewService(tx txRunner, repo orders.Repository, gw gateway, guard callbackGuard, returnURL string, logg *logger.Logger, m *metrics.CheckoutMetrics) (*Service, error) {
	if tx == nil {
		return nil, errors.New("payments: tx runner is required")
	}
	if repo == nil {
		return nil, errors.New("payments: orders repository is required")
	}
	if gw == nil {
		return nil, errors.New("payments: gateway is required")
	}
	if returnURL == "" {
		return nil, errors.New("payments: return url is required")
	}
	if logg == nil {
		return nil, errors.New("payments: logger is required")
	}
	return &Service{
		tx:        tx,
		repo:      repo,
		gw:        gw,
		guard:     guard,
		returnURL: returnURL,
		logg:      logg,
		metrics:   m,
	}, nil
}

// Start opens a gateway transaction for a pending order and returns the
// hosted payment form redirect.
func (s *Service) Start(ctx context.Context, orderNumber string) (*StartResult, error) {
	order, err := s.repo.FindByOrderNumber(ctx, orderNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, err
	}

	if order.Status != enums.OrderStatusPending || order.PaymentStatus != enums.PaymentStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is not pending payment")
	}
	if method, _ := order.Metadata.GetString("payment_method"); method != enums.PaymentMethodWebpay.String() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order was not placed with webpay")
	}
	if order.TotalCLP <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order total must be positive")
	}

	created, err := s.gw.Create(ctx, webpay.CreateRequest{
		BuyOrder:  order.OrderNumber,
		SessionID: order.ID.String(),
		Amount:    int64(order.TotalCLP),
		ReturnURL: s.returnURL,
	})
	if err != nil {
		return nil, err
	}

	err = s.repo.UpdateOrder(ctx, order.ID, map[string]any{
		"metadata": order.Metadata.Merge(types.JSONMap{"webpay_token": created.Token}),
	})
	if err != nil {
		return nil, err
	}

	ctx = s.logg.WithOrderNumber(ctx, order.OrderNumber)
	s.logg.Info(ctx, "webpay transaction created")

	return &StartResult{
		Token:       created.Token,
		URL:         created.URL,
		RedirectURL: created.RedirectURL(),
	}, nil
}

// HandleReturn processes the shopper's return from the payment form. It is
// safe to call repeatedly with the same token: duplicates become no-ops.
func (s *Service) HandleReturn(ctx context.Context, params ReturnParams) (*ReturnResult, error) {
	if params.TokenWS == "" {
		// Transbank sends TBK_TOKEN instead of token_ws when the shopper
		// aborts at the form.
		s.metrics.IncCallback(string(OutcomeAborted))
		s.logg.Warn(ctx, "webpay return without token_ws, treating as aborted")
		return &ReturnResult{Outcome: OutcomeAborted}, nil
	}

	if s.guard != nil {
		seen, err := s.guard.CheckAndMark(ctx, params.TokenWS)
		if err != nil {
			// redis being down must not block payment confirmation
			s.logg.Error(ctx, "idempotency guard unavailable", err)
		} else if seen {
			s.metrics.IncCallback(string(OutcomeDuplicate))
			return &ReturnResult{Outcome: OutcomeDuplicate}, nil
		}
	}

	committed, err := s.gw.Commit(ctx, params.TokenWS)
	if err != nil {
		if s.guard != nil {
			if delErr := s.guard.Delete(ctx, params.TokenWS); delErr != nil {
				s.logg.Error(ctx, "releasing idempotency mark failed", delErr)
			}
		}
		// Transbank sends TBK_TOKEN alongside token_ws when the shopper
		// backed out; the commit failure is then the abort, not an outage.
		if params.TBKToken != "" {
			s.metrics.IncCallback(string(OutcomeAborted))
			s.logg.Warn(ctx, "webpay return carried TBK_TOKEN and commit failed, treating as aborted")
			return &ReturnResult{Outcome: OutcomeAborted}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeGatewayRejected, err, "committing webpay transaction")
	}

	result := &ReturnResult{OrderNumber: committed.BuyOrder}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindByOrderNumber(ctx, committed.BuyOrder)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order for gateway return not found").
					WithDetails(map[string]any{"buy_order": committed.BuyOrder})
			}
			return err
		}

		// authoritative duplicate defense
		if order.PaymentStatus == enums.PaymentStatusPaid {
			result.Outcome = OutcomeDuplicate
			return nil
		}

		if committed.Approved() {
			result.Outcome = OutcomeApproved
			return repo.UpdateOrder(ctx, order.ID, map[string]any{
				"payment_status": enums.PaymentStatusPaid,
				"status":         enums.OrderStatusProcessing,
				"metadata": order.Metadata.Merge(types.JSONMap{
					"webpay_token":       params.TokenWS,
					"authorization_code": committed.AuthorizationCode,
					"card_number":        committed.CardDetail.CardNumber,
					"transaction_date":   committed.TransactionDate,
				}),
			})
		}

		// the order stays pending so the shopper can retry payment;
		// only the rejection detail is recorded
		result.Outcome = OutcomeRejected
		return repo.UpdateOrder(ctx, order.ID, map[string]any{
			"metadata": order.Metadata.Merge(types.JSONMap{
				"webpay_token":         params.TokenWS,
				"webpay_response_code": committed.ResponseCode,
				"webpay_status":        committed.Status,
			}),
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncCallback(string(result.Outcome))
	ctx = s.logg.WithOrderNumber(ctx, result.OrderNumber)
	s.logg.Info(ctx, "webpay return processed: "+string(result.Outcome))
	return result, nil
}
