package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"lingo-server/internal/models"
)

// buildReplayView накладывает завершенные слоты на статический сценарий.
//
// Пока прохождение IN_PROGRESS, видимость слотов ограничена чекпоинтом:
// показываются только слоты с порядком не больше порядка слота last_slot_id.
// Без чекпоинта слоты не показываются вовсе. После COMPLETED ограничение снимается.
func (s *PlayService) buildReplayView(ctx context.Context, play *models.PlayEpisode) (*models.PlayEpisodeView, error) {
	scenes, err := s.storyRepo.GetScript(ctx, s.db, play.EpisodeID)
	if err != nil {
		return nil, err
	}

	slots, err := s.slotRepo.ListEndedByPlay(ctx, s.db, play.ID)
	if err != nil {
		return nil, err
	}
	slots = s.applyProgressCutoff(play, slots)

	slotIDs := make([]uuid.UUID, len(slots))
	for i, slot := range slots {
		slotIDs[i] = slot.ID
	}
	turnsBySlot, err := s.slotRepo.ListDialoguesBySlotIDs(ctx, s.db, slotIDs)
	if err != nil {
		return nil, err
	}

	// Слоты группируются по маркеру, породившему их, с сохранением порядка.
	slotsByMarker := make(map[int64][]models.ResolvedSlot)
	for _, slot := range slots {
		turns := turnsBySlot[slot.ID]
		s.resolveImageURLs(ctx, turns)
		slotsByMarker[slot.DialogueID] = append(slotsByMarker[slot.DialogueID], models.ResolvedSlot{
			SlotID:     slot.ID,
			DialogueID: slot.DialogueID,
			Order:      slot.Order,
			Turns:      turns,
		})
	}

	replayScenes := make([]models.ReplayScene, 0, len(scenes))
	for _, scene := range scenes {
		rs := models.ReplayScene{
			ID:    scene.ID,
			Order: scene.Order,
			Title: scene.Title,
		}
		for i := range scene.Dialogues {
			d := scene.Dialogues[i]
			resolved := slotsByMarker[d.ID]
			// Маркер с завершенными слотами замещается их репликами.
			// Неразрешенный маркер остается виден как запись сценария.
			if !d.IsAISlot() || len(resolved) == 0 {
				rs.Entries = append(rs.Entries, models.ReplayEntry{Dialogue: &d})
				continue
			}
			for j := range resolved {
				slot := resolved[j]
				rs.Entries = append(rs.Entries, models.ReplayEntry{Slot: &slot})
			}
		}
		replayScenes = append(replayScenes, rs)
	}

	return &models.PlayEpisodeView{Play: play, Scenes: replayScenes}, nil
}

// applyProgressCutoff отбрасывает слоты за пределами чекпоинта прогресса.
func (s *PlayService) applyProgressCutoff(play *models.PlayEpisode, slots []models.PlaySlot) []models.PlaySlot {
	if play.Status == models.PlayStatusCompleted {
		return slots
	}
	if play.LastSlotID == nil {
		return nil
	}

	cutoff := -1
	for _, slot := range slots {
		if slot.ID == *play.LastSlotID {
			cutoff = slot.Order
			break
		}
	}
	if cutoff < 0 {
		// Чекпоинт указывает на неизвестный слот: ничего не показываем
		s.logger.Warn("Progress checkpoint references unknown slot",
			zap.Stringer("playID", play.ID), zap.Stringer("lastSlotID", *play.LastSlotID))
		return nil
	}

	visible := slots[:0]
	for _, slot := range slots {
		if slot.Order <= cutoff {
			visible = append(visible, slot)
		}
	}
	return visible
}

// resolveImageURLs подставляет URL изображений персонажей по меткам реплик.
// Карты изображений читаются из кэша, промахи добираются из БД и кэшируются.
// Ошибки кэша не фатальны: реплика остается без URL.
func (s *PlayService) resolveImageURLs(ctx context.Context, turns []models.SlotDialogue) {
	images := make(map[int64]map[string]string)
	var missing []int64

	for _, t := range turns {
		if t.CharacterID == nil || t.ImageLabel == "" {
			continue
		}
		id := *t.CharacterID
		if _, seen := images[id]; seen {
			continue
		}
		cached, err := s.imageCache.Get(ctx, id)
		if err != nil {
			if !errors.Is(err, models.ErrNotFound) {
				s.logger.Warn("Image cache read failed", zap.Int64("characterID", id), zap.Error(err))
			}
			images[id] = nil
			missing = append(missing, id)
			continue
		}
		images[id] = cached
	}

	if len(missing) > 0 {
		fetched, err := s.charRepo.GetImageMaps(ctx, s.db, missing)
		if err != nil {
			s.logger.Warn("Failed to load character images", zap.Error(err))
		} else {
			for id, m := range fetched {
				images[id] = m
				if err := s.imageCache.Set(ctx, id, m); err != nil {
					s.logger.Warn("Image cache write failed", zap.Int64("characterID", id), zap.Error(err))
				}
			}
		}
	}

	for i := range turns {
		t := &turns[i]
		if t.CharacterID == nil || t.ImageLabel == "" {
			continue
		}
		m := images[*t.CharacterID]
		if m == nil {
			continue
		}
		if url, ok := m[t.ImageLabel]; ok {
			t.ImageURL = url
		} else if url, ok := m["default"]; ok {
			t.ImageURL = url
		}
	}
}
