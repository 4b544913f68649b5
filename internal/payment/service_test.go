package payment

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/marcosvbento/storefront-backend/internal/apperr"
	"github.com/marcosvbento/storefront-backend/internal/order"
)

type fakeGateway struct {
	intent    Intent
	createErr error
	cancelErr error
	event     Event
	parseErr  error

	createdCents []int64
	canceled     []string
	metadata     map[string]string
}

func (g *fakeGateway) CreateIntent(_ context.Context, amountCents int64, _ string, metadata map[string]string) (Intent, error) {
	g.createdCents = append(g.createdCents, amountCents)
	g.metadata = metadata
	if g.createErr != nil {
		return Intent{}, g.createErr
	}
	return g.intent, nil
}

func (g *fakeGateway) CancelIntent(_ context.Context, intentID string) error {
	g.canceled = append(g.canceled, intentID)
	return g.cancelErr
}

func (g *fakeGateway) ParseEvent(_ []byte, _ string) (Event, error) {
	if g.parseErr != nil {
		return Event{}, g.parseErr
	}
	return g.event, nil
}

type fakeOrders struct {
	orders    map[string]order.Order
	confirmed []string
	canceled  []string
}

func newFakeOrders(orders ...order.Order) *fakeOrders {
	f := &fakeOrders{orders: make(map[string]order.Order)}
	for _, o := range orders {
		f.orders[o.ID] = o
	}
	return f
}

func (f *fakeOrders) Get(id, userID string, isAdmin bool) (order.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return order.Order{}, order.ErrNotFound
	}
	if !isAdmin && o.UserID != userID {
		return order.Order{}, apperr.Forbidden("order belongs to another user")
	}
	return o, nil
}

func (f *fakeOrders) Confirm(id string) error {
	f.confirmed = append(f.confirmed, id)
	return nil
}

func (f *fakeOrders) Cancel(id string) error {
	f.canceled = append(f.canceled, id)
	return nil
}

func pendingOrder() order.Order {
	return order.Order{
		ID:     "order-1",
		UserID: "user-1",
		Status: order.StatusPending,
		Total:  decimal.RequireFromString("215.50"),
	}
}

func newPaymentService(orders OrderService, gw Gateway) *Service {
	return NewService(NewInMemoryRepository(), orders, gw, zap.NewNop())
}

func TestCreatePayment(t *testing.T) {
	s := newPaymentService(newFakeOrders(pendingOrder()), &fakeGateway{})

	p, err := s.Create("user-1", false, "order-1", "")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, p.Status)
	assert.Equal(t, MethodCard, p.Method)
	assert.True(t, p.Amount.Equal(decimal.RequireFromString("215.50")))

	_, err = s.Create("user-1", false, "order-1", MethodCard)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err), "second payment for the same order must conflict")
}

func TestCreatePaymentValidation(t *testing.T) {
	s := newPaymentService(newFakeOrders(pendingOrder()), &fakeGateway{})

	_, err := s.Create("user-1", false, "order-1", "CASH")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = s.Create("intruder", false, "order-1", MethodCard)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err), "foreign orders are off limits")

	confirmed := pendingOrder()
	confirmed.ID = "order-2"
	confirmed.Status = order.StatusConfirmed
	s = newPaymentService(newFakeOrders(confirmed), &fakeGateway{})
	_, err = s.Create("user-1", false, "order-2", MethodCard)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err), "only pending orders accept payments")
}

func TestProcessPayment(t *testing.T) {
	gw := &fakeGateway{intent: Intent{ID: "pi_123", ClientSecret: "pi_123_secret", Status: "requires_payment_method"}}
	s := newPaymentService(newFakeOrders(pendingOrder()), gw)

	// no Create beforehand: Process creates the record on the fly
	processed, err := s.Process(context.Background(), "user-1", false, "order-1", MethodCard)
	require.NoError(t, err)
	assert.Equal(t, StatusProcessing, processed.Status)
	assert.Equal(t, "pi_123", processed.IntentID)
	assert.Equal(t, "pi_123_secret", processed.ClientSecret)

	// 215.50 converts to 21550 cents
	require.Len(t, gw.createdCents, 1)
	assert.Equal(t, int64(21550), gw.createdCents[0])
	assert.Equal(t, "order-1", gw.metadata["orderId"])
	assert.Equal(t, processed.ID, gw.metadata["paymentId"])
}

func TestProcessGatewayFailureThenRetry(t *testing.T) {
	gw := &fakeGateway{createErr: errors.New("card network down")}
	s := newPaymentService(newFakeOrders(pendingOrder()), gw)

	_, err := s.Process(context.Background(), "user-1", false, "order-1", MethodCard)
	assert.Equal(t, apperr.KindUpstream, apperr.KindOf(err))

	stored, err := s.GetByOrder("order-1", "user-1", false)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, stored.Status)
	assert.Contains(t, stored.ErrorMessage, "card network down")

	// a FAILED payment may be processed again once the gateway recovers
	gw.createErr = nil
	gw.intent = Intent{ID: "pi_retry", ClientSecret: "pi_retry_secret"}
	retried, err := s.Process(context.Background(), "user-1", false, "order-1", MethodCard)
	require.NoError(t, err)
	assert.Equal(t, StatusProcessing, retried.Status)
	assert.Equal(t, "pi_retry", retried.IntentID)
	assert.Empty(t, retried.ErrorMessage)
}

func TestWebhookSucceeded(t *testing.T) {
	gw := &fakeGateway{intent: Intent{ID: "pi_123", ClientSecret: "secret"}}
	orders := newFakeOrders(pendingOrder())
	s := newPaymentService(orders, gw)

	_, err := s.Process(context.Background(), "user-1", false, "order-1", MethodCard)
	require.NoError(t, err)

	gw.event = Event{Type: EventIntentSucceeded, IntentID: "pi_123", ReceiptURL: "https://pay.example/r/1"}
	require.NoError(t, s.HandleWebhook([]byte(`{}`), "sig"))

	stored, err := s.GetByOrder("order-1", "user-1", false)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, stored.Status)
	assert.Equal(t, "https://pay.example/r/1", stored.ReceiptURL)
	assert.Equal(t, []string{"order-1"}, orders.confirmed)

	// replaying the delivery must not confirm the order twice
	require.NoError(t, s.HandleWebhook([]byte(`{}`), "sig"))
	assert.Equal(t, []string{"order-1"}, orders.confirmed)
}

func TestWebhookFailed(t *testing.T) {
	gw := &fakeGateway{intent: Intent{ID: "pi_123"}}
	orders := newFakeOrders(pendingOrder())
	s := newPaymentService(orders, gw)

	_, err := s.Process(context.Background(), "user-1", false, "order-1", MethodCard)
	require.NoError(t, err)

	gw.event = Event{Type: EventIntentFailed, IntentID: "pi_123", Message: "insufficient funds"}
	require.NoError(t, s.HandleWebhook([]byte(`{}`), "sig"))

	stored, err := s.GetByOrder("order-1", "user-1", false)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, stored.Status)
	assert.Equal(t, "insufficient funds", stored.ErrorMessage)
	assert.Empty(t, orders.confirmed)
}

func TestWebhookFailedAfterSucceededIgnored(t *testing.T) {
	gw := &fakeGateway{intent: Intent{ID: "pi_123"}}
	orders := newFakeOrders(pendingOrder())
	s := newPaymentService(orders, gw)

	_, err := s.Process(context.Background(), "user-1", false, "order-1", MethodCard)
	require.NoError(t, err)

	gw.event = Event{Type: EventIntentSucceeded, IntentID: "pi_123"}
	require.NoError(t, s.HandleWebhook([]byte(`{}`), "sig"))

	// a late failure notification must not demote the settled payment
	gw.event = Event{Type: EventIntentFailed, IntentID: "pi_123", Message: "stale delivery"}
	require.NoError(t, s.HandleWebhook([]byte(`{}`), "sig"))

	stored, err := s.GetByOrder("order-1", "user-1", false)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, stored.Status)
	assert.Empty(t, stored.ErrorMessage)
}

func TestWebhookSucceededAfterCancelIgnored(t *testing.T) {
	gw := &fakeGateway{intent: Intent{ID: "pi_123"}}
	orders := newFakeOrders(pendingOrder())
	s := newPaymentService(orders, gw)

	p, err := s.Process(context.Background(), "user-1", false, "order-1", MethodCard)
	require.NoError(t, err)
	_, err = s.Cancel(context.Background(), "user-1", false, p.ID)
	require.NoError(t, err)

	// the order was canceled and restocked, a late success must not revive it
	gw.event = Event{Type: EventIntentSucceeded, IntentID: "pi_123", ReceiptURL: "https://pay.example/r/9"}
	require.NoError(t, s.HandleWebhook([]byte(`{}`), "sig"))

	stored, err := s.GetByOrder("order-1", "user-1", false)
	require.NoError(t, err)
	assert.Equal(t, StatusCanceled, stored.Status)
	assert.Empty(t, stored.ReceiptURL)
	assert.Empty(t, orders.confirmed)
}

func TestWebhookUnknownEventAcknowledged(t *testing.T) {
	gw := &fakeGateway{event: Event{Type: "charge.refunded"}}
	s := newPaymentService(newFakeOrders(pendingOrder()), gw)
	assert.NoError(t, s.HandleWebhook([]byte(`{}`), "sig"))
}

func TestWebhookUnknownIntentAcknowledged(t *testing.T) {
	gw := &fakeGateway{event: Event{Type: EventIntentSucceeded, IntentID: "pi_ghost"}}
	orders := newFakeOrders(pendingOrder())
	s := newPaymentService(orders, gw)
	assert.NoError(t, s.HandleWebhook([]byte(`{}`), "sig"))
	assert.Empty(t, orders.confirmed)
}

func TestWebhookBadSignature(t *testing.T) {
	gw := &fakeGateway{parseErr: errors.New("signature mismatch")}
	s := newPaymentService(newFakeOrders(pendingOrder()), gw)
	err := s.HandleWebhook([]byte(`{}`), "bad")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestCancelPayment(t *testing.T) {
	gw := &fakeGateway{
		intent:    Intent{ID: "pi_123"},
		cancelErr: errors.New("already canceled upstream"),
	}
	orders := newFakeOrders(pendingOrder())
	s := newPaymentService(orders, gw)

	p, err := s.Process(context.Background(), "user-1", false, "order-1", MethodCard)
	require.NoError(t, err)

	// the gateway error is swallowed, local state still moves to CANCELED
	canceled, err := s.Cancel(context.Background(), "user-1", false, p.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCanceled, canceled.Status)
	assert.Equal(t, []string{"pi_123"}, gw.canceled)
	assert.Equal(t, []string{"order-1"}, orders.canceled)

	// canceling again is a no-op
	again, err := s.Cancel(context.Background(), "user-1", false, p.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCanceled, again.Status)
	assert.Len(t, gw.canceled, 1)
}

func TestCancelCompletedPaymentRejected(t *testing.T) {
	gw := &fakeGateway{intent: Intent{ID: "pi_123"}}
	s := newPaymentService(newFakeOrders(pendingOrder()), gw)

	p, err := s.Process(context.Background(), "user-1", false, "order-1", MethodCard)
	require.NoError(t, err)

	gw.event = Event{Type: EventIntentSucceeded, IntentID: "pi_123"}
	require.NoError(t, s.HandleWebhook([]byte(`{}`), "sig"))

	_, err = s.Cancel(context.Background(), "user-1", false, p.ID)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	// a completed payment cannot be driven through the gateway again either
	_, err = s.Process(context.Background(), "user-1", false, "order-1", MethodCard)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}
