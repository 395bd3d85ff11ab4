package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"lingo-server/internal/ai"
	"lingo-server/internal/models"
)

func evaluatedSlot(playID uuid.UUID, order, overall int) models.PlaySlot {
	return models.PlaySlot{
		ID:            uuid.New(),
		PlayEpisodeID: playID,
		DialogueID:    11,
		Order:         order,
		Status:        models.SlotStatusEnded,
		Data: models.SlotData{
			UserInput: "my input",
			Evaluation: &models.Evaluation{
				OverallScore:     overall,
				GrammarScore:     overall - 2,
				FluencyScore:     overall + 2,
				NaturalnessScore: overall,
				Cefr:             "B1",
			},
		},
	}
}

func TestCompletePlay(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("Aggregates only evaluated slots", func(t *testing.T) {
		env := newTestEnv()
		play := inProgressPlay(userID)

		slotA := evaluatedSlot(play.ID, 0, 80)
		slotB := evaluatedSlot(play.ID, 1, 90)
		slotC := models.PlaySlot{ID: uuid.New(), PlayEpisodeID: play.ID, Order: 2, Status: models.SlotStatusEnded}
		slots := []models.PlaySlot{slotA, slotB, slotC}

		turns := map[uuid.UUID][]models.SlotDialogue{
			slotA.ID: {
				{SlotID: slotA.ID, SpeakerClass: models.SpeakerUser, Kind: models.TurnKindDialogue, EnglishText: "I went home."},
				{SlotID: slotA.ID, SpeakerClass: models.SpeakerNPC, Kind: models.TurnKindDialogue, EnglishText: "See you!"},
			},
			slotB.ID: {
				{SlotID: slotB.ID, SpeakerClass: models.SpeakerUser, Kind: models.TurnKindDialogue, EnglishText: "Good morning."},
			},
			slotC.ID: {
				{SlotID: slotC.ID, SpeakerClass: models.SpeakerSystem, Kind: models.TurnKindNarration, EnglishText: "Doors open."},
			},
		}

		env.playRepo.On("GetByID", ctx, mock.Anything, play.ID).Return(play, nil).Once()
		env.slotRepo.On("ListEndedByPlay", mock.Anything, mock.Anything, play.ID).Return(slots, nil)
		env.slotRepo.On("ListDialoguesBySlotIDs", mock.Anything, mock.Anything, mock.Anything).Return(turns, nil)
		env.txManager.PassthroughTx()
		env.slotRepo.On("ForceEndActive", mock.Anything, mock.Anything, play.ID, mock.Anything).Return(0, nil).Once()
		env.playRepo.On("Complete", mock.Anything, mock.Anything, play.ID, models.StageStoryCompleted,
			mock.MatchedBy(func(result *models.PlayResult) bool {
				require.NotNil(t, result.OverallScore)
				assert.Equal(t, 85, *result.OverallScore)     // (80+90)/2
				assert.Equal(t, 83, *result.GrammarScore)     // (78+88)/2
				assert.Equal(t, 87, *result.FluencyScore)     // (82+92)/2
				assert.Equal(t, 85, *result.NaturalnessScore) // (80+90)/2
				assert.Equal(t, 2, result.EvaluatedSlots)
				assert.Equal(t, 4, result.TurnsCount)
				return true
			}), mock.Anything).Return(nil).Once()
		env.publisher.On("PublishPlayCompleted", mock.Anything, mock.MatchedBy(func(e models.PlayCompletedEvent) bool {
			return e.PlayEpisodeID == play.ID && e.Stage == models.StageStoryCompleted
		})).Return(nil).Once()

		view, err := env.svc.CompletePlay(ctx, userID, play.ID)

		require.NoError(t, err)
		assert.Equal(t, models.PlayStatusCompleted, view.Status)
		require.NotNil(t, view.Result)
		// Исправленные реплики собираются только из оцененных слотов
		require.Len(t, view.CorrectedDialogues, 2)
		assert.Equal(t, "my input", view.CorrectedDialogues[0].UserInput)
		assert.Equal(t, "I went home.", view.CorrectedDialogues[0].EnglishText)

		env.playRepo.AssertExpectations(t)
		env.publisher.AssertExpectations(t)
		env.quizRepo.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("No evaluated slots leaves the result null", func(t *testing.T) {
		env := newTestEnv()
		play := inProgressPlay(userID)

		// Единственный слот без оценки (чистая генерация)
		slot := models.PlaySlot{ID: uuid.New(), PlayEpisodeID: play.ID, Order: 0, Status: models.SlotStatusEnded}
		turns := map[uuid.UUID][]models.SlotDialogue{
			slot.ID: {{SlotID: slot.ID, SpeakerClass: models.SpeakerNPC, Kind: models.TurnKindDialogue, EnglishText: "Hi!"}},
		}

		env.playRepo.On("GetByID", ctx, mock.Anything, play.ID).Return(play, nil).Once()
		env.slotRepo.On("ListEndedByPlay", mock.Anything, mock.Anything, play.ID).Return([]models.PlaySlot{slot}, nil)
		env.slotRepo.On("ListDialoguesBySlotIDs", mock.Anything, mock.Anything, mock.Anything).Return(turns, nil)
		env.txManager.PassthroughTx()
		env.slotRepo.On("ForceEndActive", mock.Anything, mock.Anything, play.ID, mock.Anything).Return(0, nil).Once()
		env.playRepo.On("Complete", mock.Anything, mock.Anything, play.ID, models.StageStoryCompleted,
			(*models.PlayResult)(nil), mock.Anything).Return(nil).Once()
		env.publisher.On("PublishPlayCompleted", mock.Anything, mock.MatchedBy(func(e models.PlayCompletedEvent) bool {
			return e.Result == nil
		})).Return(nil).Once()

		view, err := env.svc.CompletePlay(ctx, userID, play.ID)

		require.NoError(t, err)
		assert.Equal(t, models.PlayStatusCompleted, view.Status)
		assert.Nil(t, view.Result)
		assert.Empty(t, view.CorrectedDialogues)
		env.playRepo.AssertExpectations(t)
	})

	t.Run("Idempotent for completed play", func(t *testing.T) {
		env := newTestEnv()
		play := inProgressPlay(userID)
		play.Status = models.PlayStatusCompleted
		play.CurrentStage = models.StageStoryCompleted
		score := 77
		play.Result = &models.PlayResult{OverallScore: &score, EvaluatedSlots: 1, GeneratedAt: time.Now().UTC()}

		env.playRepo.On("GetByID", ctx, mock.Anything, play.ID).Return(play, nil).Once()
		env.slotRepo.On("ListEndedByPlay", mock.Anything, mock.Anything, play.ID).Return(nil, nil).Once()
		env.slotRepo.On("ListDialoguesBySlotIDs", mock.Anything, mock.Anything, mock.Anything).
			Return(map[uuid.UUID][]models.SlotDialogue{}, nil).Once()

		view, err := env.svc.CompletePlay(ctx, userID, play.ID)

		require.NoError(t, err)
		assert.Equal(t, 77, *view.Result.OverallScore)
		env.playRepo.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		env.publisher.AssertNotCalled(t, "PublishPlayCompleted", mock.Anything, mock.Anything)
	})

	t.Run("Quiz mode seeds five quizzes", func(t *testing.T) {
		env := newTestEnv()
		play := inProgressPlay(userID)
		play.Mode = models.PlayModeChatWithQuiz

		slot := evaluatedSlot(play.ID, 0, 90)
		turns := map[uuid.UUID][]models.SlotDialogue{
			slot.ID: {
				{SlotID: slot.ID, SpeakerClass: models.SpeakerUser, Kind: models.TurnKindDialogue, EnglishText: "I have been studying hard."},
				{SlotID: slot.ID, SpeakerClass: models.SpeakerNPC, Kind: models.TurnKindDialogue, EnglishText: "Keep going, you will succeed."},
			},
		}

		quizPickJSON := `{"results":[
			{"englishText":"I have been studying hard","koreanText":"열심히 공부해왔다","description":"현재완료진행"},
			{"englishText":"You should keep practicing daily","koreanText":"매일 연습해야 한다","description":"조동사 should"},
			{"englishText":"The book I read was great","koreanText":"내가 읽은 책은 훌륭했다","description":"관계절"},
			{"englishText":"Having finished, she left early","koreanText":"끝내고 일찍 떠났다","description":"분사구문"},
			{"englishText":"If I were you, go now","koreanText":"내가 너라면 지금 가","description":"가정법"}]}`

		env.playRepo.On("GetByID", ctx, mock.Anything, play.ID).Return(play, nil).Once()
		env.slotRepo.On("ListEndedByPlay", mock.Anything, mock.Anything, play.ID).Return([]models.PlaySlot{slot}, nil)
		env.slotRepo.On("ListDialoguesBySlotIDs", mock.Anything, mock.Anything, mock.Anything).Return(turns, nil)
		env.aiClient.On("GenerateText", mock.Anything, "quiz_pick", mock.Anything, "").
			Return(quizPickJSON, ai.UsageInfo{}, nil).Once()
		env.txManager.PassthroughTx()
		env.slotRepo.On("ForceEndActive", mock.Anything, mock.Anything, play.ID, mock.Anything).Return(1, nil).Once()
		env.playRepo.On("Complete", mock.Anything, mock.Anything, play.ID, models.StageQuizInProgress,
			mock.Anything, mock.Anything).Return(nil).Once()
		env.quizRepo.On("CreateBatch", mock.Anything, mock.Anything, mock.MatchedBy(func(quizzes []models.Quiz) bool {
			require.Len(t, quizzes, 5)
			// Архетипы чередуются по кругу
			assert.Equal(t, models.QuizTypeSentenceBuild, quizzes[0].Type)
			assert.Equal(t, models.QuizTypeSentenceClozeBuild, quizzes[1].Type)
			assert.Equal(t, models.QuizTypeSpeakRepeat, quizzes[2].Type)
			assert.Equal(t, models.QuizTypeSentenceBuild, quizzes[3].Type)
			assert.Equal(t, 1, quizzes[0].Order)
			assert.Equal(t, 5, quizzes[4].Order)
			return true
		})).Return(nil).Once()
		env.publisher.On("PublishPlayCompleted", mock.Anything, mock.Anything).Return(nil).Once()

		view, err := env.svc.CompletePlay(ctx, userID, play.ID)

		require.NoError(t, err)
		assert.Equal(t, models.StageQuizInProgress, view.CurrentStage)
		env.quizRepo.AssertExpectations(t)
	})

	t.Run("Quiz pick with wrong count fails completion", func(t *testing.T) {
		env := newTestEnv()
		play := inProgressPlay(userID)
		play.Mode = models.PlayModeChatWithQuiz

		slot := evaluatedSlot(play.ID, 0, 90)
		turns := map[uuid.UUID][]models.SlotDialogue{
			slot.ID: {{SlotID: slot.ID, Kind: models.TurnKindDialogue, EnglishText: "Hello there."}},
		}

		env.playRepo.On("GetByID", ctx, mock.Anything, play.ID).Return(play, nil).Once()
		env.slotRepo.On("ListEndedByPlay", mock.Anything, mock.Anything, play.ID).Return([]models.PlaySlot{slot}, nil)
		env.slotRepo.On("ListDialoguesBySlotIDs", mock.Anything, mock.Anything, mock.Anything).Return(turns, nil)
		env.aiClient.On("GenerateText", mock.Anything, "quiz_pick", mock.Anything, "").
			Return(`{"results":[{"englishText":"Only one","koreanText":"하나"}]}`, ai.UsageInfo{}, nil).Once()

		_, err := env.svc.CompletePlay(ctx, userID, play.ID)

		assert.ErrorIs(t, err, models.ErrAIInvalidShape)
		env.playRepo.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestGetPlayResult(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("Not ready while in progress", func(t *testing.T) {
		env := newTestEnv()
		play := inProgressPlay(userID)

		env.playRepo.On("GetByID", ctx, mock.Anything, play.ID).Return(play, nil).Once()

		_, err := env.svc.GetPlayResult(ctx, userID, play.ID)

		assert.ErrorIs(t, err, models.ErrResultNotReady)
	})

	t.Run("Returns stored result", func(t *testing.T) {
		env := newTestEnv()
		play := inProgressPlay(userID)
		play.Status = models.PlayStatusCompleted
		score := 91
		play.Result = &models.PlayResult{OverallScore: &score, EvaluatedSlots: 1}

		slot := evaluatedSlot(play.ID, 0, 91)
		turns := map[uuid.UUID][]models.SlotDialogue{
			slot.ID: {{SlotID: slot.ID, SpeakerClass: models.SpeakerUser, Kind: models.TurnKindDialogue, EnglishText: "Corrected."}},
		}

		env.playRepo.On("GetByID", ctx, mock.Anything, play.ID).Return(play, nil).Once()
		env.slotRepo.On("ListEndedByPlay", mock.Anything, mock.Anything, play.ID).Return([]models.PlaySlot{slot}, nil).Once()
		env.slotRepo.On("ListDialoguesBySlotIDs", mock.Anything, mock.Anything, []uuid.UUID{slot.ID}).Return(turns, nil).Once()

		view, err := env.svc.GetPlayResult(ctx, userID, play.ID)

		require.NoError(t, err)
		assert.Equal(t, 91, *view.Result.OverallScore)
		require.Len(t, view.CorrectedDialogues, 1)
		assert.Equal(t, "Corrected.", view.CorrectedDialogues[0].EnglishText)
	})
}
