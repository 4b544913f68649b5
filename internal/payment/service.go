package payment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/marcosvbento/storefront-backend/internal/apperr"
	"github.com/marcosvbento/storefront-backend/internal/order"
)

// OrderService is the slice of the order service payments need: ownership
// checks plus the status cascade driven by gateway notifications.
type OrderService interface {
	Get(id, userID string, isAdmin bool) (order.Order, error)
	Confirm(id string) error
	Cancel(id string) error
}

const currencyBRL = "BRL"

// Service drives the payment lifecycle against the gateway and applies
// gateway notifications back onto payments and orders.
type Service struct {
	repo     Repository
	orders   OrderService
	gateway  Gateway
	logger   *zap.Logger
	handlers map[string]func(Event) error
}

func NewService(repo Repository, orders OrderService, gateway Gateway, logger *zap.Logger) *Service {
	s := &Service{repo: repo, orders: orders, gateway: gateway, logger: logger}
	s.handlers = map[string]func(Event) error{
		EventIntentSucceeded: s.applySucceeded,
		EventIntentFailed:    s.applyFailed,
	}
	return s
}

// Create registers a PENDING payment for an order the caller owns. An order
// can only ever have one payment.
func (s *Service) Create(userID string, isAdmin bool, orderID string, method Method) (Payment, error) {
	if method == "" {
		method = MethodCard
	}
	if !ValidMethod(method) {
		return Payment{}, apperr.Validationf("unknown payment method %q", method)
	}

	o, err := s.orders.Get(orderID, userID, isAdmin)
	if err != nil {
		return Payment{}, err
	}
	if o.Status != order.StatusPending {
		return Payment{}, apperr.Conflict("order is not awaiting payment")
	}

	now := time.Now().UTC().Format(time.RFC3339)
	p := Payment{
		ID:        uuid.NewString(),
		OrderID:   o.ID,
		Amount:    o.Total,
		Method:    method,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return s.repo.Create(p)
}

// Process submits an order's payment to the gateway, moving it to
// PROCESSING. The payment is created on the fly when the order has none yet,
// and a FAILED payment may be processed again. A gateway failure marks the
// payment FAILED and surfaces the error.
func (s *Service) Process(ctx context.Context, userID string, isAdmin bool, orderID string, method Method) (Payment, error) {
	p, err := s.repo.GetByOrderID(orderID)
	switch {
	case err == nil:
		if _, oerr := s.orders.Get(p.OrderID, userID, isAdmin); oerr != nil {
			return Payment{}, oerr
		}
	case apperr.KindOf(err) == apperr.KindNotFound:
		p, err = s.Create(userID, isAdmin, orderID, method)
		if err != nil {
			return Payment{}, err
		}
	default:
		return Payment{}, err
	}
	if p.Status == StatusCompleted || p.Status == StatusCanceled {
		return Payment{}, apperr.Conflictf("payment is %s and can no longer be processed", p.Status)
	}

	cents := p.Amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	intent, err := s.gateway.CreateIntent(ctx, cents, currencyBRL, map[string]string{
		"orderId":   p.OrderID,
		"paymentId": p.ID,
	})
	if err != nil {
		p.Status = StatusFailed
		p.ErrorMessage = err.Error()
		p.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
		if _, uerr := s.repo.Update(p); uerr != nil {
			s.logger.Error("mark payment failed", zap.String("paymentId", p.ID), zap.Error(uerr))
		}
		return Payment{}, apperr.Upstream("payment gateway rejected the request", err)
	}

	p.Status = StatusProcessing
	p.IntentID = intent.ID
	p.ClientSecret = intent.ClientSecret
	p.ErrorMessage = ""
	p.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	return s.repo.Update(p)
}

// GetByOrder returns the payment of an order the caller may see.
func (s *Service) GetByOrder(orderID, userID string, isAdmin bool) (Payment, error) {
	if _, err := s.orders.Get(orderID, userID, isAdmin); err != nil {
		return Payment{}, err
	}
	return s.repo.GetByOrderID(orderID)
}

// Cancel voids a payment and its order. The gateway cancelation is best
// effort: a provider error is logged, not surfaced, since the local state is
// authoritative.
func (s *Service) Cancel(ctx context.Context, userID string, isAdmin bool, paymentID string) (Payment, error) {
	p, err := s.getOwned(paymentID, userID, isAdmin)
	if err != nil {
		return Payment{}, err
	}
	if p.Status == StatusCanceled {
		return p, nil
	}
	if p.Status == StatusCompleted {
		return Payment{}, apperr.Conflict("completed payments cannot be canceled")
	}

	if p.IntentID != "" {
		if err := s.gateway.CancelIntent(ctx, p.IntentID); err != nil {
			s.logger.Warn("gateway cancel failed",
				zap.String("paymentId", p.ID),
				zap.String("intentId", p.IntentID),
				zap.Error(err))
		}
	}

	p.Status = StatusCanceled
	p.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	p, err = s.repo.Update(p)
	if err != nil {
		return Payment{}, err
	}

	if err := s.orders.Cancel(p.OrderID); err != nil {
		return Payment{}, err
	}
	return p, nil
}

// HandleWebhook verifies a gateway delivery and applies it. Unknown event
// types and notifications for unknown intents are acknowledged without
// effect; replayed or out-of-order deliveries for a settled payment are
// no-ops.
func (s *Service) HandleWebhook(payload []byte, signature string) error {
	event, err := s.gateway.ParseEvent(payload, signature)
	if err != nil {
		return apperr.Wrap(apperr.KindValidation, "invalid webhook payload", err)
	}

	handler, ok := s.handlers[event.Type]
	if !ok {
		s.logger.Debug("ignoring webhook event", zap.String("type", event.Type))
		return nil
	}
	return handler(event)
}

func (s *Service) applySucceeded(event Event) error {
	p, err := s.repo.GetByIntentID(event.IntentID)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			s.logger.Warn("webhook for unknown intent", zap.String("intentId", event.IntentID))
			return nil
		}
		return err
	}
	if p.Status.Terminal() {
		return nil
	}

	p.Status = StatusCompleted
	p.ReceiptURL = event.ReceiptURL
	p.ErrorMessage = ""
	p.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	if _, err := s.repo.Update(p); err != nil {
		return err
	}
	return s.orders.Confirm(p.OrderID)
}

func (s *Service) applyFailed(event Event) error {
	p, err := s.repo.GetByIntentID(event.IntentID)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			s.logger.Warn("webhook for unknown intent", zap.String("intentId", event.IntentID))
			return nil
		}
		return err
	}
	if p.Status.Terminal() {
		return nil
	}

	p.Status = StatusFailed
	p.ErrorMessage = event.Message
	p.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	_, err = s.repo.Update(p)
	return err
}

func (s *Service) getOwned(paymentID, userID string, isAdmin bool) (Payment, error) {
	p, err := s.repo.GetByID(paymentID)
	if err != nil {
		return Payment{}, err
	}
	if _, err := s.orders.Get(p.OrderID, userID, isAdmin); err != nil {
		return Payment{}, err
	}
	return p, nil
}
