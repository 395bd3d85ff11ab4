package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"lingo-server/internal/interfaces"
	"lingo-server/internal/models"
	"lingo-server/internal/utils"
)

// Compile-time check to ensure implementation satisfies the interface.
var _ interfaces.SlotRepository = (*pgSlotRepository)(nil)

// Код ошибки нарушения уникальности в PostgreSQL.
const pgUniqueViolationCode = "23505"

type pgSlotRepository struct {
	logger *zap.Logger
}

// NewPgSlotRepository creates a new repository instance.
func NewPgSlotRepository(logger *zap.Logger) interfaces.SlotRepository {
	return &pgSlotRepository{
		logger: logger.Named("PgSlotRepo"),
	}
}

const insertSlotQuery = `
INSERT INTO play_slots (id, play_episode_id, dialogue_id, slot_order, status, data)
VALUES ($1, $2, $3, $4, $5, $6)`

const getSlotQuery = `
SELECT id, play_episode_id, dialogue_id, slot_order, status, ended_at, data
FROM play_slots
WHERE id = $1`

const endSlotQuery = `
UPDATE play_slots
SET status = 'ENDED', ended_at = $2, data = $3
WHERE id = $1 AND status = 'ACTIVE'`

const forceEndActiveSlotsQuery = `
UPDATE play_slots
SET status = 'ENDED', ended_at = $2
WHERE play_episode_id = $1 AND status = 'ACTIVE'`

const listEndedSlotsQuery = `
SELECT id, play_episode_id, dialogue_id, slot_order, status, ended_at, data
FROM play_slots
WHERE play_episode_id = $1 AND status = 'ENDED'
ORDER BY slot_order ASC`

const insertSlotDialogueQuery = `
INSERT INTO slot_dialogues (id, slot_id, turn_order, kind, speaker_class, character_id, character_name, english_text, korean_text, image_label)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

const listSlotDialoguesQuery = `
SELECT id, slot_id, turn_order, kind, speaker_class, character_id, character_name, english_text, korean_text, image_label
FROM slot_dialogues
WHERE slot_id = ANY($1)
ORDER BY slot_id, turn_order ASC`

func (r *pgSlotRepository) Create(ctx context.Context, querier interfaces.DBTX, slot *models.PlaySlot) error {
	dataJSON, err := utils.MarshalMap(slot.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal slot data: %w", err)
	}

	_, err = querier.Exec(ctx, insertSlotQuery,
		slot.ID, slot.PlayEpisodeID, slot.DialogueID, slot.Order, slot.Status, dataJSON)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolationCode {
			// Сработал частичный уникальный индекс на ACTIVE слотах
			return models.ErrActiveSlotExists
		}
		r.logger.Error("Failed to create slot",
			zap.Stringer("slotID", slot.ID), zap.Stringer("playID", slot.PlayEpisodeID), zap.Error(err))
		return err
	}

	r.logger.Debug("Slot created",
		zap.Stringer("slotID", slot.ID), zap.Int("order", slot.Order))
	return nil
}

func (r *pgSlotRepository) scanSlot(row pgx.Row) (*models.PlaySlot, error) {
	slot := &models.PlaySlot{}
	var dataJSON []byte

	err := row.Scan(&slot.ID, &slot.PlayEpisodeID, &slot.DialogueID, &slot.Order,
		&slot.Status, &slot.EndedAt, &dataJSON)
	if err != nil {
		return nil, err
	}

	if len(dataJSON) > 0 {
		if err := utils.UnmarshalMap(dataJSON, &slot.Data); err != nil {
			return nil, fmt.Errorf("failed to unmarshal slot data: %w", err)
		}
	}
	return slot, nil
}

func (r *pgSlotRepository) GetByID(ctx context.Context, querier interfaces.DBTX, id uuid.UUID) (*models.PlaySlot, error) {
	slot, err := r.scanSlot(querier.QueryRow(ctx, getSlotQuery, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		r.logger.Error("Failed to get slot", zap.Stringer("slotID", id), zap.Error(err))
		return nil, err
	}
	return slot, nil
}

func (r *pgSlotRepository) End(ctx context.Context, querier interfaces.DBTX, slotID uuid.UUID, data models.SlotData, endedAt time.Time) error {
	dataJSON, err := utils.MarshalMap(data)
	if err != nil {
		return fmt.Errorf("failed to marshal slot data: %w", err)
	}

	tag, err := querier.Exec(ctx, endSlotQuery, slotID, endedAt, dataJSON)
	if err != nil {
		r.logger.Error("Failed to end slot", zap.Stringer("slotID", slotID), zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *pgSlotRepository) ForceEndActive(ctx context.Context, querier interfaces.DBTX, playID uuid.UUID, endedAt time.Time) (int, error) {
	tag, err := querier.Exec(ctx, forceEndActiveSlotsQuery, playID, endedAt)
	if err != nil {
		r.logger.Error("Failed to force-end active slots", zap.Stringer("playID", playID), zap.Error(err))
		return 0, err
	}
	ended := int(tag.RowsAffected())
	if ended > 0 {
		r.logger.Warn("Force-ended lingering active slots",
			zap.Stringer("playID", playID), zap.Int("count", ended))
	}
	return ended, nil
}

func (r *pgSlotRepository) ListEndedByPlay(ctx context.Context, querier interfaces.DBTX, playID uuid.UUID) ([]models.PlaySlot, error) {
	rows, err := querier.Query(ctx, listEndedSlotsQuery, playID)
	if err != nil {
		r.logger.Error("Failed to list ended slots", zap.Stringer("playID", playID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var slots []models.PlaySlot
	for rows.Next() {
		slot, err := r.scanSlot(rows)
		if err != nil {
			return nil, err
		}
		slots = append(slots, *slot)
	}
	return slots, rows.Err()
}

func (r *pgSlotRepository) CreateDialogues(ctx context.Context, querier interfaces.DBTX, dialogues []models.SlotDialogue) error {
	for _, d := range dialogues {
		_, err := querier.Exec(ctx, insertSlotDialogueQuery,
			d.ID, d.SlotID, d.Order, d.Kind, d.SpeakerClass,
			d.CharacterID, d.CharacterName, d.EnglishText, d.KoreanText, d.ImageLabel)
		if err != nil {
			r.logger.Error("Failed to insert slot dialogue",
				zap.Stringer("slotID", d.SlotID), zap.Int("order", d.Order), zap.Error(err))
			return err
		}
	}
	return nil
}

func (r *pgSlotRepository) ListDialoguesBySlotIDs(ctx context.Context, querier interfaces.DBTX, slotIDs []uuid.UUID) (map[uuid.UUID][]models.SlotDialogue, error) {
	result := make(map[uuid.UUID][]models.SlotDialogue, len(slotIDs))
	if len(slotIDs) == 0 {
		return result, nil
	}

	rows, err := querier.Query(ctx, listSlotDialoguesQuery, slotIDs)
	if err != nil {
		r.logger.Error("Failed to list slot dialogues", zap.Int("slots", len(slotIDs)), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var d models.SlotDialogue
		if err := rows.Scan(&d.ID, &d.SlotID, &d.Order, &d.Kind, &d.SpeakerClass,
			&d.CharacterID, &d.CharacterName, &d.EnglishText, &d.KoreanText, &d.ImageLabel); err != nil {
			return nil, err
		}
		result[d.SlotID] = append(result[d.SlotID], d)
	}
	return result, rows.Err()
}
