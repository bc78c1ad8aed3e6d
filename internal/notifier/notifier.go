package notifier

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"

	"github.com/madstore/madstore-api/internal/domain"
)

const ConfirmationTopic = "order-confirmations"

// OrderConfirmation is the payload consumed by the mailer service.
type OrderConfirmation struct {
	OrderID       string          `json:"order_id"`
	CustomerEmail string          `json:"customer_email"`
	BuyerName     string          `json:"buyer_name"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	PaymentMethod string          `json:"payment_method"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type KafkaNotifier struct {
	writer messageWriter
}

func NewKafkaNotifier(brokers ...string) *KafkaNotifier {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  ConfirmationTopic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &KafkaNotifier{writer: w}
}

// SendOrderConfirmation publishes a confirmation event keyed by order id.
// Callers treat a failure here as best-effort: it is logged, never fatal
// to the order itself.
func (n *KafkaNotifier) SendOrderConfirmation(ctx context.Context, order *domain.Order) error {
	payload, err := json.Marshal(OrderConfirmation{
		OrderID:       order.OrderID,
		CustomerEmail: order.CustomerEmail,
		BuyerName:     order.BuyerName,
		Amount:        order.Amount,
		Currency:      order.Currency,
		PaymentMethod: string(order.PaymentMethod),
	})
	if err != nil {
		return fmt.Errorf("marshal order confirmation: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(order.OrderID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte("OrderConfirmed")},
		},
	}
	if err := n.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish order confirmation: %w", err)
	}
	return nil
}

func (n *KafkaNotifier) Close() error {
	if w, ok := n.writer.(*kafka.Writer); ok {
		return w.Close()
	}
	return nil
}
