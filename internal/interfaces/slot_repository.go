package interfaces

import (
	"context"
	"time"

	"github.com/google/uuid"

	"lingo-server/internal/models"
)

// SlotRepository defines the interface for slot and slot dialogue persistence.
//
//go:generate mockery --name SlotRepository --output ./mocks --outpkg mocks --case=underscore
type SlotRepository interface {
	// Create inserts a new ACTIVE slot. The partial unique index on active slots
	// makes a second concurrent creation fail with models.ErrActiveSlotExists.
	Create(ctx context.Context, querier DBTX, slot *models.PlaySlot) error

	// GetByID retrieves a slot by its unique ID.
	GetByID(ctx context.Context, querier DBTX, id uuid.UUID) (*models.PlaySlot, error)

	// End помечает слот ENDED и записывает его данные (оценка, ввод пользователя).
	End(ctx context.Context, querier DBTX, slotID uuid.UUID, data models.SlotData, endedAt time.Time) error

	// ForceEndActive завершает все зависшие ACTIVE слоты прохождения.
	// Возвращает количество закрытых слотов.
	ForceEndActive(ctx context.Context, querier DBTX, playID uuid.UUID, endedAt time.Time) (int, error)

	// ListEndedByPlay возвращает все ENDED слоты прохождения по возрастанию order.
	ListEndedByPlay(ctx context.Context, querier DBTX, playID uuid.UUID) ([]models.PlaySlot, error)

	// CreateDialogues сохраняет реплики слота одним батчем.
	CreateDialogues(ctx context.Context, querier DBTX, dialogues []models.SlotDialogue) error

	// ListDialoguesBySlotIDs возвращает реплики указанных слотов,
	// сгруппированные по id слота, внутри группы по возрастанию order.
	ListDialoguesBySlotIDs(ctx context.Context, querier DBTX, slotIDs []uuid.UUID) (map[uuid.UUID][]models.SlotDialogue, error)
}
