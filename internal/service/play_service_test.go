package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"lingo-server/internal/models"
)

func testScript() []models.Scene {
	return []models.Scene{
		{
			ID:    100,
			Order: 1,
			Title: "At the cafe",
			Dialogues: []models.Dialogue{
				{ID: 10, SceneID: 100, Order: 1, Type: models.DialogueTypeLine, CharacterName: "Mia", EnglishText: "Hello!"},
				{ID: 11, SceneID: 100, Order: 2, Type: models.DialogueTypeAIInputSlot,
					Payload: &models.MarkerPayload{CharacterID: 1, NpcIDs: []int64{2}}},
			},
		},
	}
}

func TestStartPlayEpisode(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("Creates a new play", func(t *testing.T) {
		env := newTestEnv()
		episode := &models.Episode{ID: 7, Title: "Cafe Talk", Mode: models.PlayModeChatWithQuiz}

		env.storyRepo.On("GetEpisode", ctx, mock.Anything, int64(7)).Return(episode, nil).Once()
		env.playRepo.On("FindInProgress", ctx, mock.Anything, userID, int64(7)).Return(nil, models.ErrNotFound).Once()
		env.playRepo.On("Create", ctx, mock.Anything, mock.MatchedBy(func(play *models.PlayEpisode) bool {
			// Режим наследуется от эпизода, прохождение стартует с первого этапа
			return play.UserID == userID &&
				play.Mode == models.PlayModeChatWithQuiz &&
				play.Status == models.PlayStatusInProgress &&
				play.CurrentStage == models.StageStoryInProgress &&
				play.Data != nil
		})).Return(nil).Once()
		env.storyRepo.On("GetScript", ctx, mock.Anything, int64(7)).Return(testScript(), nil).Once()
		env.slotRepo.On("ListEndedByPlay", ctx, mock.Anything, mock.Anything).Return(nil, nil).Once()
		env.slotRepo.On("ListDialoguesBySlotIDs", ctx, mock.Anything, mock.Anything).
			Return(map[uuid.UUID][]models.SlotDialogue{}, nil).Once()

		view, err := env.svc.StartPlayEpisode(ctx, userID, 7)

		require.NoError(t, err)
		require.Len(t, view.Scenes, 1)
		// Свежее прохождение: только статический сценарий, без слотов
		assert.Len(t, view.Scenes[0].Entries, 2)
		env.playRepo.AssertExpectations(t)
	})

	t.Run("Resumes an existing play", func(t *testing.T) {
		env := newTestEnv()
		episode := &models.Episode{ID: 7, Title: "Cafe Talk", Mode: models.PlayModeChat}
		existing := inProgressPlay(userID)

		env.storyRepo.On("GetEpisode", ctx, mock.Anything, int64(7)).Return(episode, nil).Once()
		env.playRepo.On("FindInProgress", ctx, mock.Anything, userID, int64(7)).Return(existing, nil).Once()
		env.storyRepo.On("GetScript", ctx, mock.Anything, existing.EpisodeID).Return(testScript(), nil).Once()
		env.slotRepo.On("ListEndedByPlay", ctx, mock.Anything, existing.ID).Return(nil, nil).Once()
		env.slotRepo.On("ListDialoguesBySlotIDs", ctx, mock.Anything, mock.Anything).
			Return(map[uuid.UUID][]models.SlotDialogue{}, nil).Once()

		view, err := env.svc.StartPlayEpisode(ctx, userID, 7)

		require.NoError(t, err)
		assert.Equal(t, existing.ID, view.Play.ID)
		env.playRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Unknown episode", func(t *testing.T) {
		env := newTestEnv()

		env.storyRepo.On("GetEpisode", ctx, mock.Anything, int64(404)).Return(nil, models.ErrEpisodeNotFound).Once()

		_, err := env.svc.StartPlayEpisode(ctx, userID, 404)

		assert.ErrorIs(t, err, models.ErrEpisodeNotFound)
	})
}

func TestGetPlayEpisodeReplayCutoff(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	newEndedSlot := func(playID uuid.UUID, order int) models.PlaySlot {
		return models.PlaySlot{
			ID: uuid.New(), PlayEpisodeID: playID, DialogueID: 11,
			Order: order, Status: models.SlotStatusEnded,
		}
	}

	t.Run("In progress play shows slots up to the checkpoint", func(t *testing.T) {
		env := newTestEnv()
		play := inProgressPlay(userID)
		slotA := newEndedSlot(play.ID, 0)
		slotB := newEndedSlot(play.ID, 1)
		slotC := newEndedSlot(play.ID, 2)
		play.LastSlotID = &slotB.ID

		env.playRepo.On("GetByID", ctx, mock.Anything, play.ID).Return(play, nil).Once()
		env.storyRepo.On("GetScript", ctx, mock.Anything, play.EpisodeID).Return(testScript(), nil).Once()
		env.slotRepo.On("ListEndedByPlay", ctx, mock.Anything, play.ID).
			Return([]models.PlaySlot{slotA, slotB, slotC}, nil).Once()
		// Реплики запрашиваются только для видимых слотов
		env.slotRepo.On("ListDialoguesBySlotIDs", ctx, mock.Anything, []uuid.UUID{slotA.ID, slotB.ID}).
			Return(map[uuid.UUID][]models.SlotDialogue{
				slotA.ID: {{SlotID: slotA.ID, EnglishText: "a"}},
				slotB.ID: {{SlotID: slotB.ID, EnglishText: "b"}},
			}, nil).Once()

		view, err := env.svc.GetPlayEpisode(ctx, userID, play.ID)

		require.NoError(t, err)
		entries := view.Scenes[0].Entries
		// Маркер замещен слотами A и B, LINE остается
		require.Len(t, entries, 3)
		require.NotNil(t, entries[0].Dialogue)
		assert.Equal(t, int64(10), entries[0].Dialogue.ID)
		assert.Equal(t, slotA.ID, entries[1].Slot.SlotID)
		assert.Equal(t, slotB.ID, entries[2].Slot.SlotID)
	})

	t.Run("No checkpoint hides all slots", func(t *testing.T) {
		env := newTestEnv()
		play := inProgressPlay(userID)
		slotA := newEndedSlot(play.ID, 0)

		env.playRepo.On("GetByID", ctx, mock.Anything, play.ID).Return(play, nil).Once()
		env.storyRepo.On("GetScript", ctx, mock.Anything, play.EpisodeID).Return(testScript(), nil).Once()
		env.slotRepo.On("ListEndedByPlay", ctx, mock.Anything, play.ID).Return([]models.PlaySlot{slotA}, nil).Once()
		env.slotRepo.On("ListDialoguesBySlotIDs", ctx, mock.Anything, []uuid.UUID{}).
			Return(map[uuid.UUID][]models.SlotDialogue{}, nil).Once()

		view, err := env.svc.GetPlayEpisode(ctx, userID, play.ID)

		require.NoError(t, err)
		// Слоты скрыты, поэтому маркер остается видимым
		entries := view.Scenes[0].Entries
		require.Len(t, entries, 2)
		require.NotNil(t, entries[1].Dialogue)
		assert.Equal(t, int64(11), entries[1].Dialogue.ID)
	})

	t.Run("Completed play shows everything", func(t *testing.T) {
		env := newTestEnv()
		play := inProgressPlay(userID)
		play.Status = models.PlayStatusCompleted
		slotA := newEndedSlot(play.ID, 0)
		slotB := newEndedSlot(play.ID, 1)

		env.playRepo.On("GetByID", ctx, mock.Anything, play.ID).Return(play, nil).Once()
		env.storyRepo.On("GetScript", ctx, mock.Anything, play.EpisodeID).Return(testScript(), nil).Once()
		env.slotRepo.On("ListEndedByPlay", ctx, mock.Anything, play.ID).
			Return([]models.PlaySlot{slotA, slotB}, nil).Once()
		env.slotRepo.On("ListDialoguesBySlotIDs", ctx, mock.Anything, []uuid.UUID{slotA.ID, slotB.ID}).
			Return(map[uuid.UUID][]models.SlotDialogue{}, nil).Once()

		view, err := env.svc.GetPlayEpisode(ctx, userID, play.ID)

		require.NoError(t, err)
		entries := view.Scenes[0].Entries
		require.Len(t, entries, 3)
		// Разрешенный маркер не должен дублироваться рядом со своими слотами
		for _, entry := range entries {
			if entry.Dialogue != nil {
				assert.NotEqual(t, int64(11), entry.Dialogue.ID)
			}
		}
		assert.Equal(t, slotA.ID, entries[1].Slot.SlotID)
		assert.Equal(t, slotB.ID, entries[2].Slot.SlotID)
	})
}

func TestUpdateProgress(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("Checkpoint with valid slot", func(t *testing.T) {
		env := newTestEnv()
		play := inProgressPlay(userID)
		slotID := uuid.New()
		sceneID := int64(100)

		env.playRepo.On("GetByID", ctx, mock.Anything, play.ID).Return(play, nil).Once()
		env.slotRepo.On("GetByID", ctx, mock.Anything, slotID).Return(&models.PlaySlot{
			ID: slotID, PlayEpisodeID: play.ID, Status: models.SlotStatusEnded,
		}, nil).Once()
		env.txManager.PassthroughTx()
		env.playRepo.On("UpdateProgress", mock.Anything, mock.Anything, play.ID, &sceneID, &slotID, (*models.PlayStage)(nil)).Return(nil).Once()
		env.playRepo.On("MergeData", mock.Anything, mock.Anything, play.ID,
			map[string]interface{}{"coffee": "latte"}).Return(nil).Once()

		err := env.svc.UpdateProgress(ctx, userID, play.ID, models.ProgressUpdate{
			LastSceneID: &sceneID,
			LastSlotID:  &slotID,
			Data:        map[string]interface{}{"coffee": "latte"},
		})

		require.NoError(t, err)
		env.playRepo.AssertExpectations(t)
	})

	t.Run("Slot from another play rejected", func(t *testing.T) {
		env := newTestEnv()
		play := inProgressPlay(userID)
		slotID := uuid.New()

		env.playRepo.On("GetByID", ctx, mock.Anything, play.ID).Return(play, nil).Once()
		env.slotRepo.On("GetByID", ctx, mock.Anything, slotID).Return(&models.PlaySlot{
			ID: slotID, PlayEpisodeID: uuid.New(), Status: models.SlotStatusEnded,
		}, nil).Once()

		err := env.svc.UpdateProgress(ctx, userID, play.ID, models.ProgressUpdate{LastSlotID: &slotID})

		assert.ErrorIs(t, err, models.ErrInvalidInput)
		env.playRepo.AssertNotCalled(t, "UpdateProgress",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Active slot cannot be a checkpoint", func(t *testing.T) {
		env := newTestEnv()
		play := inProgressPlay(userID)
		slotID := uuid.New()

		env.playRepo.On("GetByID", ctx, mock.Anything, play.ID).Return(play, nil).Once()
		env.slotRepo.On("GetByID", ctx, mock.Anything, slotID).Return(&models.PlaySlot{
			ID: slotID, PlayEpisodeID: play.ID, Status: models.SlotStatusActive,
		}, nil).Once()

		err := env.svc.UpdateProgress(ctx, userID, play.ID, models.ProgressUpdate{LastSlotID: &slotID})

		assert.ErrorIs(t, err, models.ErrInvalidInput)
	})

	t.Run("Completed play rejected", func(t *testing.T) {
		env := newTestEnv()
		play := inProgressPlay(userID)
		play.Status = models.PlayStatusCompleted

		env.playRepo.On("GetByID", ctx, mock.Anything, play.ID).Return(play, nil).Once()

		err := env.svc.UpdateProgress(ctx, userID, play.ID, models.ProgressUpdate{})

		assert.ErrorIs(t, err, models.ErrPlayNotActive)
	})
}

func TestListMyPlayEpisodes(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("Default and max limits", func(t *testing.T) {
		env := newTestEnv()

		env.playRepo.On("ListByUserID", ctx, mock.Anything, userID, "", 20).
			Return([]models.PlayEpisodeSummary{}, "", nil).Once()
		_, _, err := env.svc.ListMyPlayEpisodes(ctx, userID, "", 0)
		require.NoError(t, err)

		env.playRepo.On("ListByUserID", ctx, mock.Anything, userID, "", 100).
			Return([]models.PlayEpisodeSummary{}, "", nil).Once()
		_, _, err = env.svc.ListMyPlayEpisodes(ctx, userID, "", 500)
		require.NoError(t, err)

		env.playRepo.AssertExpectations(t)
	})
}
