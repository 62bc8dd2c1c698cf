package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/just-smsm/storefront/internal/order"
)

type mockLedger struct {
	calls   []PaymentConfirmed
	markErr error
}

func (m *mockLedger) MarkPaid(_ context.Context, id uuid.UUID, paymentIntentID string) error {
	m.calls = append(m.calls, PaymentConfirmed{OrderID: id.String(), PaymentIntentID: paymentIntentID})
	return m.markErr
}

func confirmationPayload(t *testing.T, event PaymentConfirmed) []byte {
	t.Helper()
	payload, err := json.Marshal(event)
	require.NoError(t, err)
	return payload
}

func TestApply_MarksOrderPaid(t *testing.T) {
	ledger := &mockLedger{}
	sut := &Consumer{ledger: ledger}

	orderID := uuid.New()
	payload := confirmationPayload(t, PaymentConfirmed{
		OrderID:         orderID.String(),
		SessionID:       "cs_123",
		PaymentIntentID: "pi_456",
	})

	err := sut.apply(context.Background(), payload)
	require.NoError(t, err)
	require.Len(t, ledger.calls, 1)
	assert.Equal(t, orderID.String(), ledger.calls[0].OrderID)
	assert.Equal(t, "pi_456", ledger.calls[0].PaymentIntentID)
}

func TestApply_MalformedPayload(t *testing.T) {
	ledger := &mockLedger{}
	sut := &Consumer{ledger: ledger}

	err := sut.apply(context.Background(), []byte(`{"order_id": `))
	assert.Error(t, err)
	assert.Empty(t, ledger.calls)
}

func TestApply_InvalidOrderID(t *testing.T) {
	ledger := &mockLedger{}
	sut := &Consumer{ledger: ledger}

	payload := confirmationPayload(t, PaymentConfirmed{OrderID: "not-a-uuid", PaymentIntentID: "pi_456"})
	err := sut.apply(context.Background(), payload)
	assert.Error(t, err)
	assert.Empty(t, ledger.calls)
}

func TestApply_IllegalTransitionSkipped(t *testing.T) {
	ledger := &mockLedger{markErr: order.ErrIllegalTransition}
	sut := &Consumer{ledger: ledger}

	payload := confirmationPayload(t, PaymentConfirmed{
		OrderID:         uuid.New().String(),
		PaymentIntentID: "pi_456",
	})

	// a redelivered or stale confirmation must not error the consume loop
	err := sut.apply(context.Background(), payload)
	assert.NoError(t, err)
	assert.Len(t, ledger.calls, 1)
}

func TestPause_WaitsRetryInterval(t *testing.T) {
	sut := &Consumer{retryWait: 20 * time.Millisecond}

	start := time.Now()
	sut.pause(context.Background())
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestPause_ReturnsOnCancel(t *testing.T) {
	sut := &Consumer{retryWait: time.Hour}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	sut.pause(ctx)
	assert.Less(t, time.Since(start), time.Second, "pause must not block after cancellation")
}

func TestApply_LedgerErrorPropagates(t *testing.T) {
	ledger := &mockLedger{markErr: errors.New("db down")}
	sut := &Consumer{ledger: ledger}

	payload := confirmationPayload(t, PaymentConfirmed{
		OrderID:         uuid.New().String(),
		PaymentIntentID: "pi_456",
	})

	err := sut.apply(context.Background(), payload)
	assert.ErrorContains(t, err, "db down")
}
