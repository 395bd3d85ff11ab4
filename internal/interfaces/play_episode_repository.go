package interfaces

import (
	"context"
	"time"

	"github.com/google/uuid"

	"lingo-server/internal/models"
)

// PlayEpisodeRepository defines the interface for interacting with play episode records.
//
//go:generate mockery --name PlayEpisodeRepository --output ./mocks --outpkg mocks --case=underscore
type PlayEpisodeRepository interface {
	// Create inserts a new play episode record.
	Create(ctx context.Context, querier DBTX, play *models.PlayEpisode) error

	// GetByID retrieves a play episode by its unique ID.
	GetByID(ctx context.Context, querier DBTX, id uuid.UUID) (*models.PlayEpisode, error)

	// FindInProgress returns the user's IN_PROGRESS play for the episode, if any.
	// Returns models.ErrNotFound when there is none.
	FindInProgress(ctx context.Context, querier DBTX, userID uuid.UUID, episodeID int64) (*models.PlayEpisode, error)

	// ListByUserID retrieves a cursor-paginated list of the user's plays,
	// newest first. Returns the page and the cursor for the next one ("" if exhausted).
	ListByUserID(ctx context.Context, querier DBTX, userID uuid.UUID, cursor string, limit int) ([]models.PlayEpisodeSummary, string, error)

	// NextSlotOrder атомарно выдает следующий порядковый номер слота.
	// Инкремент выполняется только пока прохождение IN_PROGRESS,
	// иначе возвращается models.ErrPlayNotActive.
	NextSlotOrder(ctx context.Context, querier DBTX, playID uuid.UUID) (int, error)

	// SetLastSlot записывает id последнего завершенного слота.
	SetLastSlot(ctx context.Context, querier DBTX, playID, slotID uuid.UUID) error

	// MergeData сливает state bag по правилу last-write-wins на верхнем уровне ключей
	// и инкрементирует data_version.
	MergeData(ctx context.Context, querier DBTX, playID uuid.UUID, data map[string]interface{}) error

	// UpdateProgress применяет чекпоинт прогресса (сцена, слот, этап).
	UpdateProgress(ctx context.Context, querier DBTX, playID uuid.UUID, lastSceneID *int64, lastSlotID *uuid.UUID, stage *models.PlayStage) error

	// AdvanceRotation читает и сдвигает указатель round_robin ротации для маркера,
	// возвращая значение до сдвига.
	AdvanceRotation(ctx context.Context, querier DBTX, playID uuid.UUID, markerID int64) (int, error)

	// Complete переводит прохождение в COMPLETED и записывает результат.
	// Результат записывается ровно один раз.
	Complete(ctx context.Context, querier DBTX, playID uuid.UUID, stage models.PlayStage, result *models.PlayResult, completedAt time.Time) error
}
