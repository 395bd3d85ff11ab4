package database

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"lingo-server/internal/interfaces"
	"lingo-server/internal/models"
	"lingo-server/internal/utils"
)

// Compile-time check to ensure implementation satisfies the interface.
var _ interfaces.PlayEpisodeRepository = (*pgPlayEpisodeRepository)(nil)

type pgPlayEpisodeRepository struct {
	logger *zap.Logger
}

// NewPgPlayEpisodeRepository creates a new repository instance.
func NewPgPlayEpisodeRepository(logger *zap.Logger) interfaces.PlayEpisodeRepository {
	return &pgPlayEpisodeRepository{
		logger: logger.Named("PgPlayEpisodeRepo"),
	}
}

const insertPlayEpisodeQuery = `
INSERT INTO play_episodes (id, user_id, episode_id, mode, status, current_stage, started_at, data, rotation_state)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, '{}')`

const getPlayEpisodeQuery = `
SELECT id, user_id, episode_id, mode, status, current_stage, started_at, completed_at,
       last_scene_id, last_slot_id, result, data, data_version, slot_counter, rotation_state
FROM play_episodes
WHERE id = $1`

const findInProgressPlayQuery = `
SELECT id, user_id, episode_id, mode, status, current_stage, started_at, completed_at,
       last_scene_id, last_slot_id, result, data, data_version, slot_counter, rotation_state
FROM play_episodes
WHERE user_id = $1 AND episode_id = $2 AND status = 'IN_PROGRESS'
ORDER BY started_at DESC
LIMIT 1`

const listPlayEpisodesQuery = `
SELECT p.id, p.episode_id, e.title, p.mode, p.status, p.current_stage, p.started_at, p.completed_at
FROM play_episodes p
JOIN episodes e ON e.id = p.episode_id
WHERE p.user_id = $1 AND ($2::timestamptz IS NULL OR (p.started_at, p.id) < ($2, $3))
ORDER BY p.started_at DESC, p.id DESC
LIMIT $4`

// Инкремент выполняется только пока прохождение активно, поэтому
// гонка двух конкурентных генераций не может выдать одинаковый порядок.
const nextSlotOrderQuery = `
UPDATE play_episodes
SET slot_counter = slot_counter + 1
WHERE id = $1 AND status = 'IN_PROGRESS'
RETURNING slot_counter - 1`

const setLastSlotQuery = `
UPDATE play_episodes
SET last_slot_id = $2
WHERE id = $1`

// Оператор || дает last-write-wins по верхнеуровневым ключам.
const mergeDataQuery = `
UPDATE play_episodes
SET data = data || $2::jsonb, data_version = data_version + 1
WHERE id = $1`

const updateProgressQuery = `
UPDATE play_episodes
SET last_scene_id = COALESCE($2, last_scene_id),
    last_slot_id  = COALESCE($3, last_slot_id),
    current_stage = COALESCE($4, current_stage)
WHERE id = $1`

const advanceRotationQuery = `
UPDATE play_episodes
SET rotation_state = jsonb_set(rotation_state, ARRAY[$2::text],
        to_jsonb(COALESCE((rotation_state->>$2)::int, 0) + 1))
WHERE id = $1
RETURNING (rotation_state->>$2)::int - 1`

// Guard по статусу гарантирует, что результат записывается ровно один раз.
const completePlayQuery = `
UPDATE play_episodes
SET status = 'COMPLETED', completed_at = $2, current_stage = $3, result = $4
WHERE id = $1 AND status = 'IN_PROGRESS'`

func (r *pgPlayEpisodeRepository) Create(ctx context.Context, querier interfaces.DBTX, play *models.PlayEpisode) error {
	dataJSON, err := utils.MarshalMap(play.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal play data: %w", err)
	}

	_, err = querier.Exec(ctx, insertPlayEpisodeQuery,
		play.ID, play.UserID, play.EpisodeID, play.Mode, play.Status,
		play.CurrentStage, play.StartedAt, dataJSON)
	if err != nil {
		r.logger.Error("Failed to create play episode", zap.Stringer("playID", play.ID), zap.Error(err))
		return err
	}

	r.logger.Debug("Play episode created", zap.Stringer("playID", play.ID), zap.Stringer("userID", play.UserID))
	return nil
}

func (r *pgPlayEpisodeRepository) scanPlay(row pgx.Row) (*models.PlayEpisode, error) {
	play := &models.PlayEpisode{}
	var resultJSON, dataJSON, rotationJSON []byte

	err := row.Scan(
		&play.ID, &play.UserID, &play.EpisodeID, &play.Mode, &play.Status,
		&play.CurrentStage, &play.StartedAt, &play.CompletedAt,
		&play.LastSceneID, &play.LastSlotID, &resultJSON, &dataJSON,
		&play.DataVersion, &play.SlotCounter, &rotationJSON,
	)
	if err != nil {
		return nil, err
	}

	if len(resultJSON) > 0 {
		play.Result = &models.PlayResult{}
		if err := utils.UnmarshalMap(resultJSON, play.Result); err != nil {
			return nil, fmt.Errorf("failed to unmarshal play result: %w", err)
		}
	}
	if err := utils.UnmarshalMap(dataJSON, &play.Data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal play data: %w", err)
	}
	if err := utils.UnmarshalMap(rotationJSON, &play.RotationState); err != nil {
		return nil, fmt.Errorf("failed to unmarshal rotation state: %w", err)
	}

	return play, nil
}

func (r *pgPlayEpisodeRepository) GetByID(ctx context.Context, querier interfaces.DBTX, id uuid.UUID) (*models.PlayEpisode, error) {
	play, err := r.scanPlay(querier.QueryRow(ctx, getPlayEpisodeQuery, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrPlayNotFound
		}
		r.logger.Error("Failed to get play episode", zap.Stringer("playID", id), zap.Error(err))
		return nil, err
	}
	return play, nil
}

func (r *pgPlayEpisodeRepository) FindInProgress(ctx context.Context, querier interfaces.DBTX, userID uuid.UUID, episodeID int64) (*models.PlayEpisode, error) {
	play, err := r.scanPlay(querier.QueryRow(ctx, findInProgressPlayQuery, userID, episodeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		r.logger.Error("Failed to find in-progress play",
			zap.Stringer("userID", userID), zap.Int64("episodeID", episodeID), zap.Error(err))
		return nil, err
	}
	return play, nil
}

func (r *pgPlayEpisodeRepository) ListByUserID(ctx context.Context, querier interfaces.DBTX, userID uuid.UUID, cursor string, limit int) ([]models.PlayEpisodeSummary, string, error) {
	cursorTime, cursorID, err := utils.DecodeCursor(cursor)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", models.ErrInvalidCursor, err)
	}

	var cursorTimeArg interface{}
	if cursorID != uuid.Nil {
		cursorTimeArg = cursorTime
	}

	// limit+1 чтобы узнать, есть ли следующая страница
	rows, err := querier.Query(ctx, listPlayEpisodesQuery, userID, cursorTimeArg, cursorID, limit+1)
	if err != nil {
		r.logger.Error("Failed to list play episodes", zap.Stringer("userID", userID), zap.Error(err))
		return nil, "", err
	}
	defer rows.Close()

	summaries := make([]models.PlayEpisodeSummary, 0, limit+1)
	for rows.Next() {
		var s models.PlayEpisodeSummary
		if err := rows.Scan(&s.ID, &s.EpisodeID, &s.EpisodeTitle, &s.Mode, &s.Status,
			&s.CurrentStage, &s.StartedAt, &s.CompletedAt); err != nil {
			return nil, "", err
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, "", err
	}

	nextCursor := ""
	if len(summaries) > limit {
		summaries = summaries[:limit]
		last := summaries[len(summaries)-1]
		nextCursor = utils.EncodeCursor(last.StartedAt, last.ID)
	}

	return summaries, nextCursor, nil
}

func (r *pgPlayEpisodeRepository) NextSlotOrder(ctx context.Context, querier interfaces.DBTX, playID uuid.UUID) (int, error) {
	var order int
	err := querier.QueryRow(ctx, nextSlotOrderQuery, playID).Scan(&order)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Либо прохождения нет, либо оно уже завершено
			if _, getErr := r.GetByID(ctx, querier, playID); getErr != nil {
				return 0, getErr
			}
			return 0, models.ErrPlayNotActive
		}
		r.logger.Error("Failed to advance slot counter", zap.Stringer("playID", playID), zap.Error(err))
		return 0, err
	}
	return order, nil
}

func (r *pgPlayEpisodeRepository) SetLastSlot(ctx context.Context, querier interfaces.DBTX, playID, slotID uuid.UUID) error {
	tag, err := querier.Exec(ctx, setLastSlotQuery, playID, slotID)
	if err != nil {
		r.logger.Error("Failed to set last slot", zap.Stringer("playID", playID), zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrPlayNotFound
	}
	return nil
}

func (r *pgPlayEpisodeRepository) MergeData(ctx context.Context, querier interfaces.DBTX, playID uuid.UUID, data map[string]interface{}) error {
	if len(data) == 0 {
		return nil
	}
	dataJSON, err := utils.MarshalMap(data)
	if err != nil {
		return fmt.Errorf("failed to marshal data table: %w", err)
	}

	tag, err := querier.Exec(ctx, mergeDataQuery, playID, dataJSON)
	if err != nil {
		r.logger.Error("Failed to merge play data", zap.Stringer("playID", playID), zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrPlayNotFound
	}
	return nil
}

func (r *pgPlayEpisodeRepository) UpdateProgress(ctx context.Context, querier interfaces.DBTX, playID uuid.UUID, lastSceneID *int64, lastSlotID *uuid.UUID, stage *models.PlayStage) error {
	tag, err := querier.Exec(ctx, updateProgressQuery, playID, lastSceneID, lastSlotID, stage)
	if err != nil {
		r.logger.Error("Failed to update play progress", zap.Stringer("playID", playID), zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrPlayNotFound
	}
	return nil
}

func (r *pgPlayEpisodeRepository) AdvanceRotation(ctx context.Context, querier interfaces.DBTX, playID uuid.UUID, markerID int64) (int, error) {
	markerKey := strconv.FormatInt(markerID, 10)
	var index int
	err := querier.QueryRow(ctx, advanceRotationQuery, playID, markerKey).Scan(&index)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, models.ErrPlayNotFound
		}
		r.logger.Error("Failed to advance rotation state",
			zap.Stringer("playID", playID), zap.Int64("markerID", markerID), zap.Error(err))
		return 0, err
	}
	return index, nil
}

func (r *pgPlayEpisodeRepository) Complete(ctx context.Context, querier interfaces.DBTX, playID uuid.UUID, stage models.PlayStage, result *models.PlayResult, completedAt time.Time) error {
	var resultJSON []byte
	if result != nil {
		var err error
		resultJSON, err = utils.MarshalMap(result)
		if err != nil {
			return fmt.Errorf("failed to marshal play result: %w", err)
		}
	}

	tag, err := querier.Exec(ctx, completePlayQuery, playID, completedAt, stage, resultJSON)
	if err != nil {
		r.logger.Error("Failed to complete play episode", zap.Stringer("playID", playID), zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		// Уже завершено или не существует
		return models.ErrPlayNotActive
	}

	r.logger.Info("Play episode completed",
		zap.Stringer("playID", playID), zap.String("stage", string(stage)))
	return nil
}
