package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// WelcomePayload és el que viatja per la cua quan un lead queda
// registrat amb weekly_updates actiu.
type WelcomePayload struct {
	LeadID        string `json:"lead_id"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	WeeklyUpdates bool   `json:"weekly_updates"`
}

type QueueProducerInterface interface {
	PublishWelcome(ctx context.Context, payload WelcomePayload) error
}

type RabbitMQProducer struct {
	Conn *amqp.Connection
	Ch   *amqp.Channel
}

func NewProducer(conn *amqp.Connection, ch *amqp.Channel) *RabbitMQProducer {
	return &RabbitMQProducer{
		Conn: conn,
		Ch:   ch,
	}
}

func (p *RabbitMQProducer) PublishWelcome(ctx context.Context, payload WelcomePayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("welcome payload marshal: %w", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("publish welcome: %w", err)
	}

	return nil
}
