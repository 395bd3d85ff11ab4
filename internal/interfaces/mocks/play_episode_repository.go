package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"lingo-server/internal/interfaces"
	"lingo-server/internal/models"
)

// PlayEpisodeRepository is a mock type for the PlayEpisodeRepository interface
type PlayEpisodeRepository struct {
	mock.Mock
}

var _ interfaces.PlayEpisodeRepository = (*PlayEpisodeRepository)(nil)

func (_m *PlayEpisodeRepository) Create(ctx context.Context, querier interfaces.DBTX, play *models.PlayEpisode) error {
	ret := _m.Called(ctx, querier, play)
	return ret.Error(0)
}

func (_m *PlayEpisodeRepository) GetByID(ctx context.Context, querier interfaces.DBTX, id uuid.UUID) (*models.PlayEpisode, error) {
	ret := _m.Called(ctx, querier, id)

	var r0 *models.PlayEpisode
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.PlayEpisode)
	}
	return r0, ret.Error(1)
}

func (_m *PlayEpisodeRepository) FindInProgress(ctx context.Context, querier interfaces.DBTX, userID uuid.UUID, episodeID int64) (*models.PlayEpisode, error) {
	ret := _m.Called(ctx, querier, userID, episodeID)

	var r0 *models.PlayEpisode
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.PlayEpisode)
	}
	return r0, ret.Error(1)
}

func (_m *PlayEpisodeRepository) ListByUserID(ctx context.Context, querier interfaces.DBTX, userID uuid.UUID, cursor string, limit int) ([]models.PlayEpisodeSummary, string, error) {
	ret := _m.Called(ctx, querier, userID, cursor, limit)

	var r0 []models.PlayEpisodeSummary
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]models.PlayEpisodeSummary)
	}
	return r0, ret.String(1), ret.Error(2)
}

func (_m *PlayEpisodeRepository) NextSlotOrder(ctx context.Context, querier interfaces.DBTX, playID uuid.UUID) (int, error) {
	ret := _m.Called(ctx, querier, playID)
	return ret.Int(0), ret.Error(1)
}

func (_m *PlayEpisodeRepository) SetLastSlot(ctx context.Context, querier interfaces.DBTX, playID, slotID uuid.UUID) error {
	ret := _m.Called(ctx, querier, playID, slotID)
	return ret.Error(0)
}

func (_m *PlayEpisodeRepository) MergeData(ctx context.Context, querier interfaces.DBTX, playID uuid.UUID, data map[string]interface{}) error {
	ret := _m.Called(ctx, querier, playID, data)
	return ret.Error(0)
}

func (_m *PlayEpisodeRepository) UpdateProgress(ctx context.Context, querier interfaces.DBTX, playID uuid.UUID, lastSceneID *int64, lastSlotID *uuid.UUID, stage *models.PlayStage) error {
	ret := _m.Called(ctx, querier, playID, lastSceneID, lastSlotID, stage)
	return ret.Error(0)
}

func (_m *PlayEpisodeRepository) AdvanceRotation(ctx context.Context, querier interfaces.DBTX, playID uuid.UUID, markerID int64) (int, error) {
	ret := _m.Called(ctx, querier, playID, markerID)
	return ret.Int(0), ret.Error(1)
}

func (_m *PlayEpisodeRepository) Complete(ctx context.Context, querier interfaces.DBTX, playID uuid.UUID, stage models.PlayStage, result *models.PlayResult, completedAt time.Time) error {
	ret := _m.Called(ctx, querier, playID, stage, result, completedAt)
	return ret.Error(0)
}
