package service

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"lingo-server/internal/interfaces"
	"lingo-server/internal/models"
	"lingo-server/internal/schemas"
	"lingo-server/internal/utils"
)

// CompletePlay завершает прохождение: закрывает зависшие слоты, агрегирует
// оценки и записывает результат ровно один раз. Повторный вызов для уже
// завершенного прохождения возвращает сохраненный результат.
// В режиме CHAT_WITH_QUIZ перед фиксацией из транскрипта материализуется квиз.
func (s *PlayService) CompletePlay(ctx context.Context, userID, playID uuid.UUID) (*models.PlayResultView, error) {
	play, err := s.getOwnedPlay(ctx, userID, playID)
	if err != nil {
		return nil, err
	}
	if play.Status == models.PlayStatusCompleted {
		return s.buildResultView(ctx, play)
	}

	slots, err := s.slotRepo.ListEndedByPlay(ctx, s.db, playID)
	if err != nil {
		return nil, err
	}
	slotIDs := make([]uuid.UUID, len(slots))
	for i, slot := range slots {
		slotIDs[i] = slot.ID
	}
	turnsBySlot, err := s.slotRepo.ListDialoguesBySlotIDs(ctx, s.db, slotIDs)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	result := aggregateResult(slots, turnsBySlot, now)

	// Квиз сеется до транзакции: вызов модели не должен держать соединение с БД
	stage := models.StageStoryCompleted
	var quizzes []models.Quiz
	if play.Mode == models.PlayModeChatWithQuiz {
		quizzes, err = s.seedQuiz(ctx, play, slots, turnsBySlot)
		if err != nil {
			return nil, err
		}
		stage = models.StageQuizInProgress
	}

	err = s.txManager.WithTransaction(ctx, func(ctx context.Context, tx interfaces.DBTX) error {
		if _, err := s.slotRepo.ForceEndActive(ctx, tx, playID, now); err != nil {
			return err
		}
		if err := s.playRepo.Complete(ctx, tx, playID, stage, result, now); err != nil {
			return err
		}
		if len(quizzes) > 0 {
			return s.quizRepo.CreateBatch(ctx, tx, quizzes)
		}
		return nil
	})
	if err != nil {
		// Конкурентное завершение: отдаем уже записанный результат
		if errors.Is(err, models.ErrPlayNotActive) {
			refreshed, getErr := s.getOwnedPlay(ctx, userID, playID)
			if getErr == nil && refreshed.Status == models.PlayStatusCompleted {
				return s.buildResultView(ctx, refreshed)
			}
		}
		return nil, err
	}

	evaluatedSlots := 0
	if result != nil {
		evaluatedSlots = result.EvaluatedSlots
	}
	s.logger.Info("Play episode completed",
		zap.Stringer("playID", playID), zap.String("stage", string(stage)),
		zap.Int("evaluatedSlots", evaluatedSlots), zap.Int("quizzes", len(quizzes)))

	s.publishCompleted(ctx, play, stage, result, now)

	play.Status = models.PlayStatusCompleted
	play.CurrentStage = stage
	play.CompletedAt = &now
	play.Result = result
	return s.buildResultView(ctx, play)
}

// GetPlayResult возвращает результат завершенного прохождения.
func (s *PlayService) GetPlayResult(ctx context.Context, userID, playID uuid.UUID) (*models.PlayResultView, error) {
	play, err := s.getOwnedPlay(ctx, userID, playID)
	if err != nil {
		return nil, err
	}
	if play.Status != models.PlayStatusCompleted {
		return nil, models.ErrResultNotReady
	}
	return s.buildResultView(ctx, play)
}

// buildResultView собирает результат с исправленными репликами пользователя.
func (s *PlayService) buildResultView(ctx context.Context, play *models.PlayEpisode) (*models.PlayResultView, error) {
	slots, err := s.slotRepo.ListEndedByPlay(ctx, s.db, play.ID)
	if err != nil {
		return nil, err
	}

	var evaluated []models.PlaySlot
	slotIDs := make([]uuid.UUID, 0, len(slots))
	for _, slot := range slots {
		if slot.Data.Evaluation != nil {
			evaluated = append(evaluated, slot)
			slotIDs = append(slotIDs, slot.ID)
		}
	}

	turnsBySlot, err := s.slotRepo.ListDialoguesBySlotIDs(ctx, s.db, slotIDs)
	if err != nil {
		return nil, err
	}

	corrected := make([]models.CorrectedDialogue, 0, len(evaluated))
	for _, slot := range evaluated {
		for _, turn := range turnsBySlot[slot.ID] {
			if turn.SpeakerClass != models.SpeakerUser {
				continue
			}
			corrected = append(corrected, models.CorrectedDialogue{
				SlotID:      slot.ID,
				UserInput:   slot.Data.UserInput,
				EnglishText: turn.EnglishText,
				KoreanText:  turn.KoreanText,
				Evaluation:  slot.Data.Evaluation,
			})
			break
		}
	}

	return &models.PlayResultView{
		PlayEpisodeID:      play.ID,
		Status:             play.Status,
		CurrentStage:       play.CurrentStage,
		Result:             play.Result,
		CorrectedDialogues: corrected,
	}, nil
}

// seedQuiz отбирает моделью 5 предложений из транскрипта и материализует упражнения.
func (s *PlayService) seedQuiz(ctx context.Context, play *models.PlayEpisode, slots []models.PlaySlot, turnsBySlot map[uuid.UUID][]models.SlotDialogue) ([]models.Quiz, error) {
	var transcript []string
	for _, slot := range slots {
		for _, turn := range turnsBySlot[slot.ID] {
			if turn.Kind == models.TurnKindDialogue && turn.EnglishText != "" {
				transcript = append(transcript, turn.EnglishText)
			}
		}
	}
	if len(transcript) == 0 {
		s.logger.Warn("Empty transcript, skipping quiz seeding", zap.Stringer("playID", play.ID))
		return nil, nil
	}

	prompt, err := utils.FormatQuizPickPrompt(transcript)
	if err != nil {
		return nil, err
	}

	raw, usage, err := s.aiClient.GenerateText(ctx, flowQuizPick, prompt, "")
	if err != nil {
		return nil, err
	}
	s.logger.Debug("Quiz pick response received",
		zap.Stringer("playID", play.ID), zap.Int("totalTokens", usage.TotalTokens))

	resp, err := schemas.ParseQuizPickResponse(raw)
	if err != nil {
		return nil, err
	}

	return s.materializer.Materialize(play.ID, resp.Results), nil
}

// publishCompleted отправляет событие завершения. Ошибка публикации не
// откатывает уже зафиксированное завершение.
func (s *PlayService) publishCompleted(ctx context.Context, play *models.PlayEpisode, stage models.PlayStage, result *models.PlayResult, completedAt time.Time) {
	event := models.PlayCompletedEvent{
		PlayEpisodeID: play.ID,
		UserID:        play.UserID,
		EpisodeID:     play.EpisodeID,
		Mode:          play.Mode,
		Stage:         stage,
		Result:        result,
		CompletedAt:   completedAt,
	}
	if err := s.publisher.PublishPlayCompleted(ctx, event); err != nil {
		s.logger.Error("Failed to publish play.completed event",
			zap.Stringer("playID", play.ID), zap.Error(err))
	}
}

// aggregateResult усредняет оценки по слотам с ненулевой evaluation.
// Слоты без оценки (чистая генерация, translation) в среднее не входят.
// Если оцененных слотов нет, результата нет вовсе (nil).
func aggregateResult(slots []models.PlaySlot, turnsBySlot map[uuid.UUID][]models.SlotDialogue, generatedAt time.Time) *models.PlayResult {
	result := &models.PlayResult{GeneratedAt: generatedAt}

	var overall, grammar, fluency, naturalness int
	for _, slot := range slots {
		result.TurnsCount += len(turnsBySlot[slot.ID])
		e := slot.Data.Evaluation
		if e == nil {
			continue
		}
		result.EvaluatedSlots++
		overall += e.OverallScore
		grammar += e.GrammarScore
		fluency += e.FluencyScore
		naturalness += e.NaturalnessScore
	}

	if result.EvaluatedSlots == 0 {
		return nil
	}

	n := float64(result.EvaluatedSlots)
	result.OverallScore = roundMean(overall, n)
	result.GrammarScore = roundMean(grammar, n)
	result.FluencyScore = roundMean(fluency, n)
	result.NaturalnessScore = roundMean(naturalness, n)
	return result
}

func roundMean(sum int, n float64) *int {
	v := int(math.Round(float64(sum) / n))
	return &v
}
