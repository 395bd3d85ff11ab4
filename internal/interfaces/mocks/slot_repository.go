package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"lingo-server/internal/interfaces"
	"lingo-server/internal/models"
)

// SlotRepository is a mock type for the SlotRepository interface
type SlotRepository struct {
	mock.Mock
}

var _ interfaces.SlotRepository = (*SlotRepository)(nil)

func (_m *SlotRepository) Create(ctx context.Context, querier interfaces.DBTX, slot *models.PlaySlot) error {
	ret := _m.Called(ctx, querier, slot)
	return ret.Error(0)
}

func (_m *SlotRepository) GetByID(ctx context.Context, querier interfaces.DBTX, id uuid.UUID) (*models.PlaySlot, error) {
	ret := _m.Called(ctx, querier, id)

	var r0 *models.PlaySlot
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.PlaySlot)
	}
	return r0, ret.Error(1)
}

func (_m *SlotRepository) End(ctx context.Context, querier interfaces.DBTX, slotID uuid.UUID, data models.SlotData, endedAt time.Time) error {
	ret := _m.Called(ctx, querier, slotID, data, endedAt)
	return ret.Error(0)
}

func (_m *SlotRepository) ForceEndActive(ctx context.Context, querier interfaces.DBTX, playID uuid.UUID, endedAt time.Time) (int, error) {
	ret := _m.Called(ctx, querier, playID, endedAt)
	return ret.Int(0), ret.Error(1)
}

func (_m *SlotRepository) ListEndedByPlay(ctx context.Context, querier interfaces.DBTX, playID uuid.UUID) ([]models.PlaySlot, error) {
	ret := _m.Called(ctx, querier, playID)

	var r0 []models.PlaySlot
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]models.PlaySlot)
	}
	return r0, ret.Error(1)
}

func (_m *SlotRepository) CreateDialogues(ctx context.Context, querier interfaces.DBTX, dialogues []models.SlotDialogue) error {
	ret := _m.Called(ctx, querier, dialogues)
	return ret.Error(0)
}

func (_m *SlotRepository) ListDialoguesBySlotIDs(ctx context.Context, querier interfaces.DBTX, slotIDs []uuid.UUID) (map[uuid.UUID][]models.SlotDialogue, error) {
	ret := _m.Called(ctx, querier, slotIDs)

	var r0 map[uuid.UUID][]models.SlotDialogue
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(map[uuid.UUID][]models.SlotDialogue)
	}
	return r0, ret.Error(1)
}
