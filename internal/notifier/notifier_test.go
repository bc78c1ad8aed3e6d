package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/madstore/madstore-api/internal/domain"
)

type mockWriter struct {
	messages []kafkaGo.Message
	err      error
}

func (m *mockWriter) WriteMessages(_ context.Context, msgs ...kafkaGo.Message) error {
	if m.err != nil {
		return m.err
	}
	m.messages = append(m.messages, msgs...)
	return nil
}

func testOrder() *domain.Order {
	return &domain.Order{
		OrderID:       "ORD-ABC1234567",
		CustomerEmail: "buyer@example.com",
		BuyerName:     "Asha Rao",
		Amount:        decimal.RequireFromString("1278.00"),
		Currency:      "inr",
		PaymentMethod: domain.PaymentMethodCard,
	}
}

func TestSendOrderConfirmation_PayloadShape(t *testing.T) {
	writer := &mockWriter{}
	n := &KafkaNotifier{writer: writer}

	err := n.SendOrderConfirmation(context.Background(), testOrder())
	require.NoError(t, err)
	require.Len(t, writer.messages, 1)

	msg := writer.messages[0]
	assert.Equal(t, "ORD-ABC1234567", string(msg.Key))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "event_type", msg.Headers[0].Key)
	assert.Equal(t, "OrderConfirmed", string(msg.Headers[0].Value))

	var payload OrderConfirmation
	require.NoError(t, json.Unmarshal(msg.Value, &payload))
	assert.Equal(t, "ORD-ABC1234567", payload.OrderID)
	assert.Equal(t, "buyer@example.com", payload.CustomerEmail)
	assert.Equal(t, "CARD", payload.PaymentMethod)
	assert.True(t, payload.Amount.Equal(decimal.RequireFromString("1278.00")))
}

func TestSendOrderConfirmation_WriteError(t *testing.T) {
	writer := &mockWriter{err: errors.New("broker unreachable")}
	n := &KafkaNotifier{writer: writer}

	err := n.SendOrderConfirmation(context.Background(), testOrder())
	assert.ErrorContains(t, err, "publish order confirmation")
}

func setupKafka(t *testing.T) (string, func()) {
	ctx := context.Background()

	kafkaContainer, err := kafka.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err)

	brokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers, "broker address should not be empty")

	cleanup := func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate kafka container: %v", err)
		}
	}

	return brokers[0], cleanup
}

func TestKafkaNotifier_PublishesToBroker(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping kafka integration test in short mode")
	}

	brokerAddr, cleanup := setupKafka(t)
	defer cleanup()

	n := NewKafkaNotifier(brokerAddr)
	defer n.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	require.NoError(t, n.SendOrderConfirmation(ctx, testOrder()))

	reader := kafkaGo.NewReader(kafkaGo.ReaderConfig{
		Brokers:  []string{brokerAddr},
		Topic:    ConfirmationTopic,
		GroupID:  "test-consumer",
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	defer reader.Close()

	msg, err := reader.ReadMessage(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ORD-ABC1234567", string(msg.Key))

	var payload OrderConfirmation
	require.NoError(t, json.Unmarshal(msg.Value, &payload))
	assert.Equal(t, "buyer@example.com", payload.CustomerEmail)
}
