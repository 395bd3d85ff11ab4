package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"lingo-server/internal/interfaces"
	"lingo-server/internal/models"
	"lingo-server/internal/schemas"
	"lingo-server/internal/utils"
)

// Метки потоков вызова AI для метрик.
const (
	flowGeneration = "generation"
	flowCorrection = "correction"
	flowQuizPick   = "quiz_pick"
)

// Сколько последних реплик сцены попадает в контекст correction-промта.
const maxSceneHistory = 20

// GenerateSlot выполняет чистую генерацию реплик для маркера AI_SLOT.
// Весь слот (выдача порядка, вызов модели, сохранение реплик, слияние state bag)
// выполняется в одной транзакции, ограниченной таймаутом.
func (s *PlayService) GenerateSlot(ctx context.Context, claims *models.Claims, playID uuid.UUID, dialogueID int64) (*models.SlotGenerationView, error) {
	play, err := s.getOwnedActivePlay(ctx, claims.UserID, playID)
	if err != nil {
		return nil, err
	}

	marker, payload, err := s.getMarker(ctx, dialogueID, models.DialogueTypeAISlot)
	if err != nil {
		return nil, err
	}

	var view *models.SlotGenerationView

	txCtx, cancel := context.WithTimeout(ctx, s.slotTxTimeout)
	defer cancel()

	err = s.txManager.WithTransaction(txCtx, func(ctx context.Context, tx interfaces.DBTX) error {
		slot, userChar, npcs, err := s.openSlot(ctx, tx, play, marker, payload, claims)
		if err != nil {
			return err
		}

		prompt, err := utils.FormatGenerationPrompt(userChar, npcs, payload.Situation, payload.Constraints, play.Data)
		if err != nil {
			return err
		}

		raw, usage, err := s.aiClient.GenerateText(ctx, flowGeneration, prompt, "")
		if err != nil {
			return err
		}
		s.logger.Debug("Generation response received",
			zap.Stringer("slotID", slot.ID), zap.Int("totalTokens", usage.TotalTokens))

		resp, err := schemas.ParseGenerationResponse(raw)
		if err != nil {
			return err
		}

		turns := s.classifyMessages(slot.ID, payload.CharacterID, claims, resp.Messages)
		if err := s.slotRepo.CreateDialogues(ctx, tx, turns); err != nil {
			return err
		}
		if err := s.closeSlot(ctx, tx, play.ID, slot, models.SlotData{}, resp.DataTable); err != nil {
			return err
		}

		view = &models.SlotGenerationView{
			Slot: &models.ResolvedSlot{
				SlotID:     slot.ID,
				DialogueID: dialogueID,
				Order:      slot.Order,
				Turns:      turns,
			},
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.resolveImageURLs(ctx, view.Slot.Turns)
	return view, nil
}

// GenerateReplySlot обрабатывает ввод пользователя в маркере AI_INPUT_SLOT:
// английский ввод исправляется и оценивается, любой другой переводится,
// затем модель добавляет ответы NPC по политике маркера.
func (s *PlayService) GenerateReplySlot(ctx context.Context, claims *models.Claims, playID uuid.UUID, dialogueID int64, userText string) (*models.SlotGenerationView, error) {
	userText = strings.TrimSpace(userText)
	if userText == "" {
		return nil, models.ErrEmptyUserInput
	}

	play, err := s.getOwnedActivePlay(ctx, claims.UserID, playID)
	if err != nil {
		return nil, err
	}

	marker, payload, err := s.getMarker(ctx, dialogueID, models.DialogueTypeAIInputSlot)
	if err != nil {
		return nil, err
	}

	var history []utils.SceneMessage
	if payload.IncludeHistory {
		history, err = s.sceneHistory(ctx, play.EpisodeID, marker)
		if err != nil {
			return nil, err
		}
	}

	var view *models.SlotGenerationView

	txCtx, cancel := context.WithTimeout(ctx, s.slotTxTimeout)
	defer cancel()

	err = s.txManager.WithTransaction(txCtx, func(ctx context.Context, tx interfaces.DBTX) error {
		slot, userChar, npcs, err := s.openSlot(ctx, tx, play, marker, payload, claims)
		if err != nil {
			return err
		}

		// Указатель ротации сдвигается в той же транзакции, что и слот:
		// откат слота откатывает и ротацию.
		var nextReplier *models.Character
		if payload.ReplyPolicy == models.ReplyPolicyRoundRobin && len(npcs) > 0 {
			idx, err := s.playRepo.AdvanceRotation(ctx, tx, play.ID, marker.ID)
			if err != nil {
				return err
			}
			nextReplier = &npcs[idx%len(npcs)]
		}

		prompt, err := utils.FormatCorrectionPrompt(utils.CorrectionPromptArgs{
			UserCharacter: userChar,
			NPCs:          npcs,
			Situation:     payload.Situation,
			UserText:      userText,
			ReplyPolicy:   payload.ReplyPolicy,
			MustReplyIDs:  payload.MustReplyIDs,
			NextReplier:   nextReplier,
			Constraints:   payload.Constraints,
			DataTable:     play.Data,
			SceneMessages: history,
		})
		if err != nil {
			return err
		}

		raw, usage, err := s.aiClient.GenerateText(ctx, flowCorrection, prompt, "")
		if err != nil {
			return err
		}
		s.logger.Debug("Correction response received",
			zap.Stringer("slotID", slot.ID), zap.Int("totalTokens", usage.TotalTokens))

		resp, err := schemas.ParseCorrectionResponse(raw)
		if err != nil {
			return err
		}

		turns := s.classifyMessages(slot.ID, payload.CharacterID, claims, resp.Messages)
		if err := s.slotRepo.CreateDialogues(ctx, tx, turns); err != nil {
			return err
		}

		slotData := models.SlotData{Evaluation: resp.Evaluation, UserInput: userText}
		if err := s.closeSlot(ctx, tx, play.ID, slot, slotData, resp.DataTable); err != nil {
			return err
		}

		view = &models.SlotGenerationView{
			Slot: &models.ResolvedSlot{
				SlotID:     slot.ID,
				DialogueID: dialogueID,
				Order:      slot.Order,
				Turns:      turns,
			},
			Type:       string(resp.Type),
			Evaluation: resp.Evaluation,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.resolveImageURLs(ctx, view.Slot.Turns)
	return view, nil
}

// getMarker загружает запись сценария и проверяет, что это маркер нужного типа.
func (s *PlayService) getMarker(ctx context.Context, dialogueID int64, wantType models.DialogueType) (*models.Dialogue, *models.MarkerPayload, error) {
	dialogue, err := s.storyRepo.GetDialogue(ctx, s.db, dialogueID)
	if err != nil {
		return nil, nil, err
	}
	if dialogue.Type != wantType {
		return nil, nil, fmt.Errorf("%w: dialogue %d is %s, expected %s",
			models.ErrBadRequest, dialogueID, dialogue.Type, wantType)
	}
	if dialogue.Payload == nil {
		return nil, nil, fmt.Errorf("%w: marker %d has no payload", models.ErrBadRequest, dialogueID)
	}
	return dialogue, dialogue.Payload, nil
}

// openSlot выдает порядковый номер, создает ACTIVE слот и загружает персонажей маркера.
func (s *PlayService) openSlot(ctx context.Context, tx interfaces.DBTX, play *models.PlayEpisode, marker *models.Dialogue, payload *models.MarkerPayload, claims *models.Claims) (*models.PlaySlot, models.Character, []models.Character, error) {
	var userChar models.Character

	order, err := s.playRepo.NextSlotOrder(ctx, tx, play.ID)
	if err != nil {
		return nil, userChar, nil, err
	}

	slot := &models.PlaySlot{
		ID:            uuid.New(),
		PlayEpisodeID: play.ID,
		DialogueID:    marker.ID,
		Order:         order,
		Status:        models.SlotStatusActive,
	}
	if err := s.slotRepo.Create(ctx, tx, slot); err != nil {
		return nil, userChar, nil, err
	}

	ids := append([]int64{payload.CharacterID}, payload.NpcIDs...)
	characters, err := s.charRepo.GetByIDs(ctx, tx, ids)
	if err != nil {
		return nil, userChar, nil, err
	}

	npcs := make([]models.Character, 0, len(payload.NpcIDs))
	found := false
	for _, c := range characters {
		if c.ID == payload.CharacterID {
			userChar = c
			found = true
			continue
		}
		npcs = append(npcs, c)
	}
	if !found {
		return nil, userChar, nil, fmt.Errorf("%w: marker character %d not found",
			models.ErrBadRequest, payload.CharacterID)
	}

	// Выбранный персонаж игрока говорит от имени якорного персонажа маркера
	if claims.SelectedCharacterName != "" {
		userChar.Name = claims.SelectedCharacterName
	}

	return slot, userChar, npcs, nil
}

// closeSlot завершает слот, двигает чекпоинт и сливает state bag.
func (s *PlayService) closeSlot(ctx context.Context, tx interfaces.DBTX, playID uuid.UUID, slot *models.PlaySlot, data models.SlotData, dataTable map[string]interface{}) error {
	if err := s.slotRepo.End(ctx, tx, slot.ID, data, time.Now().UTC()); err != nil {
		return err
	}
	if err := s.playRepo.SetLastSlot(ctx, tx, playID, slot.ID); err != nil {
		return err
	}
	if len(dataTable) > 0 {
		return s.playRepo.MergeData(ctx, tx, playID, dataTable)
	}
	return nil
}

// classifyMessages превращает проверенные сообщения модели в реплики слота.
// Реплика якорного персонажа маркера принадлежит пользователю, остальные
// реплики с characterId идут NPC, а повествование без персонажа - системе.
func (s *PlayService) classifyMessages(slotID uuid.UUID, anchorCharID int64, claims *models.Claims, messages []models.GeneratedMessage) []models.SlotDialogue {
	turns := make([]models.SlotDialogue, 0, len(messages))
	for i, m := range messages {
		turn := models.SlotDialogue{
			ID:            uuid.New(),
			SlotID:        slotID,
			Order:         i,
			Kind:          m.Type,
			CharacterID:   m.CharacterID,
			CharacterName: m.CharacterName,
			EnglishText:   m.EnglishText,
			KoreanText:    m.KoreanText,
			ImageLabel:    m.ImageLabel,
		}

		switch {
		case m.CharacterID == nil:
			turn.SpeakerClass = models.SpeakerSystem
		case *m.CharacterID == anchorCharID:
			turn.SpeakerClass = models.SpeakerUser
			if claims.SelectedCharacterID != 0 {
				selected := claims.SelectedCharacterID
				turn.CharacterID = &selected
			}
			if claims.SelectedCharacterName != "" {
				turn.CharacterName = claims.SelectedCharacterName
			}
		default:
			turn.SpeakerClass = models.SpeakerNPC
		}

		turns = append(turns, turn)
	}
	return turns
}

// sceneHistory собирает последние фиксированные реплики сцены до маркера.
func (s *PlayService) sceneHistory(ctx context.Context, episodeID int64, marker *models.Dialogue) ([]utils.SceneMessage, error) {
	scenes, err := s.storyRepo.GetScript(ctx, s.db, episodeID)
	if err != nil {
		return nil, err
	}

	var history []utils.SceneMessage
	for _, scene := range scenes {
		if scene.ID != marker.SceneID {
			continue
		}
		for _, d := range scene.Dialogues {
			if d.Order >= marker.Order || d.Type != models.DialogueTypeLine || d.EnglishText == "" {
				continue
			}
			history = append(history, utils.SceneMessage{
				CharacterName: d.CharacterName,
				EnglishText:   d.EnglishText,
			})
		}
		break
	}

	if len(history) > maxSceneHistory {
		history = history[len(history)-maxSceneHistory:]
	}
	return history, nil
}
