package interfaces

import (
	"context"

	"lingo-server/internal/models"
)

// StoryRepository provides read-only access to static episode content.
//
//go:generate mockery --name StoryRepository --output ./mocks --outpkg mocks --case=underscore
type StoryRepository interface {
	// GetEpisode retrieves a static episode by ID.
	GetEpisode(ctx context.Context, querier DBTX, episodeID int64) (*models.Episode, error)

	// GetScript возвращает сцены эпизода с упорядоченными записями сценария,
	// включая маркеры генерации.
	GetScript(ctx context.Context, querier DBTX, episodeID int64) ([]models.Scene, error)

	// GetDialogue retrieves a single script entry (used to resolve markers).
	GetDialogue(ctx context.Context, querier DBTX, dialogueID int64) (*models.Dialogue, error)
}

// CharacterRepository provides access to the character directory.
//
//go:generate mockery --name CharacterRepository --output ./mocks --outpkg mocks --case=underscore
type CharacterRepository interface {
	// GetByIDs возвращает профили персонажей по списку id.
	GetByIDs(ctx context.Context, querier DBTX, ids []int64) ([]models.Character, error)

	// GetImageMaps возвращает карту label -> URL изображений для каждого персонажа.
	GetImageMaps(ctx context.Context, querier DBTX, ids []int64) (map[int64]map[string]string, error)
}

// CharacterImageCache кэширует карты изображений персонажей.
//
//go:generate mockery --name CharacterImageCache --output ./mocks --outpkg mocks --case=underscore
type CharacterImageCache interface {
	// Get возвращает закэшированную карту изображений персонажа или models.ErrNotFound.
	Get(ctx context.Context, characterID int64) (map[string]string, error)

	// Set сохраняет карту изображений персонажа с TTL.
	Set(ctx context.Context, characterID int64, images map[string]string) error
}

// QuizRepository persists materialized quizzes.
//
//go:generate mockery --name QuizRepository --output ./mocks --outpkg mocks --case=underscore
type QuizRepository interface {
	// CreateBatch сохраняет упражнения прохождения одним батчем.
	CreateBatch(ctx context.Context, querier DBTX, quizzes []models.Quiz) error
}
