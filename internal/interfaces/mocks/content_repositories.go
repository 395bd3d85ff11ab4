package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"lingo-server/internal/interfaces"
	"lingo-server/internal/models"
)

// StoryRepository is a mock type for the StoryRepository interface
type StoryRepository struct {
	mock.Mock
}

var _ interfaces.StoryRepository = (*StoryRepository)(nil)

func (_m *StoryRepository) GetEpisode(ctx context.Context, querier interfaces.DBTX, episodeID int64) (*models.Episode, error) {
	ret := _m.Called(ctx, querier, episodeID)

	var r0 *models.Episode
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.Episode)
	}
	return r0, ret.Error(1)
}

func (_m *StoryRepository) GetScript(ctx context.Context, querier interfaces.DBTX, episodeID int64) ([]models.Scene, error) {
	ret := _m.Called(ctx, querier, episodeID)

	var r0 []models.Scene
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]models.Scene)
	}
	return r0, ret.Error(1)
}

func (_m *StoryRepository) GetDialogue(ctx context.Context, querier interfaces.DBTX, dialogueID int64) (*models.Dialogue, error) {
	ret := _m.Called(ctx, querier, dialogueID)

	var r0 *models.Dialogue
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.Dialogue)
	}
	return r0, ret.Error(1)
}

// CharacterRepository is a mock type for the CharacterRepository interface
type CharacterRepository struct {
	mock.Mock
}

var _ interfaces.CharacterRepository = (*CharacterRepository)(nil)

func (_m *CharacterRepository) GetByIDs(ctx context.Context, querier interfaces.DBTX, ids []int64) ([]models.Character, error) {
	ret := _m.Called(ctx, querier, ids)

	var r0 []models.Character
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]models.Character)
	}
	return r0, ret.Error(1)
}

func (_m *CharacterRepository) GetImageMaps(ctx context.Context, querier interfaces.DBTX, ids []int64) (map[int64]map[string]string, error) {
	ret := _m.Called(ctx, querier, ids)

	var r0 map[int64]map[string]string
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(map[int64]map[string]string)
	}
	return r0, ret.Error(1)
}

// CharacterImageCache is a mock type for the CharacterImageCache interface
type CharacterImageCache struct {
	mock.Mock
}

var _ interfaces.CharacterImageCache = (*CharacterImageCache)(nil)

func (_m *CharacterImageCache) Get(ctx context.Context, characterID int64) (map[string]string, error) {
	ret := _m.Called(ctx, characterID)

	var r0 map[string]string
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(map[string]string)
	}
	return r0, ret.Error(1)
}

func (_m *CharacterImageCache) Set(ctx context.Context, characterID int64, images map[string]string) error {
	ret := _m.Called(ctx, characterID, images)
	return ret.Error(0)
}

// QuizRepository is a mock type for the QuizRepository interface
type QuizRepository struct {
	mock.Mock
}

var _ interfaces.QuizRepository = (*QuizRepository)(nil)

func (_m *QuizRepository) CreateBatch(ctx context.Context, querier interfaces.DBTX, quizzes []models.Quiz) error {
	ret := _m.Called(ctx, querier, quizzes)
	return ret.Error(0)
}
