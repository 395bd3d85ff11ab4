package interfaces

import (
	"context"

	"lingo-server/internal/models"
)

// PlayEventPublisher публикует события жизненного цикла прохождений в брокер.
//
//go:generate mockery --name PlayEventPublisher --output ./mocks --outpkg mocks --case=underscore
type PlayEventPublisher interface {
	// PublishPlayCompleted отправляет событие о завершении прохождения.
	PublishPlayCompleted(ctx context.Context, event models.PlayCompletedEvent) error
}
