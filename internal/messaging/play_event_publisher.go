package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"lingo-server/internal/interfaces"
	"lingo-server/internal/models"
)

const (
	playEventExchangeType   = "topic"
	playCompletedRoutingKey = "play.completed"
)

// Compile-time check to ensure implementation satisfies the interface.
var _ interfaces.PlayEventPublisher = (*RabbitMQPlayEventPublisher)(nil)

// RabbitMQPlayEventPublisher публикует события прохождений в topic exchange.
type RabbitMQPlayEventPublisher struct {
	conn         *amqp091.Connection
	ch           *amqp091.Channel
	logger       *zap.Logger
	exchangeName string
}

// NewRabbitMQPlayEventPublisher создает издателя событий прохождений.
// Exchange объявляется durable: консьюмеры (XP, нотификации) переживают рестарты.
func NewRabbitMQPlayEventPublisher(conn *amqp091.Connection, exchangeName string, logger *zap.Logger) (*RabbitMQPlayEventPublisher, error) {
	if conn == nil {
		return nil, fmt.Errorf("rabbitmq connection is nil")
	}

	ch, err := conn.Channel()
	if err != nil {
		logger.Error("Failed to open a channel for play events", zap.Error(err))
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchangeName,
		playEventExchangeType,
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		_ = ch.Close()
		logger.Error("Failed to declare play event exchange", zap.String("exchange", exchangeName), zap.Error(err))
		return nil, fmt.Errorf("failed to declare exchange '%s': %w", exchangeName, err)
	}

	logger.Info("Play event exchange declared", zap.String("exchange", exchangeName))

	return &RabbitMQPlayEventPublisher{
		conn:         conn,
		ch:           ch,
		logger:       logger.Named("PlayEventPublisher"),
		exchangeName: exchangeName,
	}, nil
}

// PublishPlayCompleted отправляет событие о завершении прохождения.
func (p *RabbitMQPlayEventPublisher) PublishPlayCompleted(ctx context.Context, event models.PlayCompletedEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal play completed event: %w", err)
	}

	err = p.ch.PublishWithContext(ctx,
		p.exchangeName,
		playCompletedRoutingKey,
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType: "application/json",
			Body:        body,
			Timestamp:   time.Now(),
			MessageId:   event.PlayEpisodeID.String(),
		},
	)
	if err != nil {
		p.logger.Error("Failed to publish play completed event",
			zap.Stringer("playID", event.PlayEpisodeID), zap.Error(err))
		return fmt.Errorf("failed to publish play completed event: %w", err)
	}

	p.logger.Debug("Play completed event published",
		zap.Stringer("playID", event.PlayEpisodeID), zap.String("routingKey", playCompletedRoutingKey))
	return nil
}

// Close закрывает канал RabbitMQ.
func (p *RabbitMQPlayEventPublisher) Close() error {
	if p.ch != nil {
		return p.ch.Close()
	}
	return nil
}
