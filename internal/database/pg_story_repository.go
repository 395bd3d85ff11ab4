package database

import (
	"context"
	"errors"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"lingo-server/internal/interfaces"
	"lingo-server/internal/models"
)

// Compile-time check to ensure implementation satisfies the interface.
var _ interfaces.StoryRepository = (*pgStoryRepository)(nil)

type pgStoryRepository struct {
	logger *zap.Logger
}

// NewPgStoryRepository creates a new repository instance.
func NewPgStoryRepository(logger *zap.Logger) interfaces.StoryRepository {
	return &pgStoryRepository{
		logger: logger.Named("PgStoryRepo"),
	}
}

const getEpisodeQuery = `
SELECT id, title, mode, tags
FROM episodes
WHERE id = $1`

const listScenesQuery = `
SELECT id, episode_id, scene_order, title
FROM scenes
WHERE episode_id = $1
ORDER BY scene_order ASC`

const listSceneDialoguesQuery = `
SELECT id, scene_id, dialogue_order, type, character_id, character_name,
       english_text, korean_text, image_label, payload
FROM dialogues
WHERE scene_id = ANY($1)
ORDER BY scene_id, dialogue_order ASC`

const getDialogueQuery = `
SELECT id, scene_id, dialogue_order, type, character_id, character_name,
       english_text, korean_text, image_label, payload
FROM dialogues
WHERE id = $1`

func (r *pgStoryRepository) GetEpisode(ctx context.Context, querier interfaces.DBTX, episodeID int64) (*models.Episode, error) {
	episode := &models.Episode{}
	var tags pq.StringArray

	err := querier.QueryRow(ctx, getEpisodeQuery, episodeID).Scan(
		&episode.ID, &episode.Title, &episode.Mode, &tags)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrEpisodeNotFound
		}
		r.logger.Error("Failed to get episode", zap.Int64("episodeID", episodeID), zap.Error(err))
		return nil, err
	}
	episode.Tags = []string(tags)

	return episode, nil
}

func (r *pgStoryRepository) GetScript(ctx context.Context, querier interfaces.DBTX, episodeID int64) ([]models.Scene, error) {
	var scenes []models.Scene
	if err := pgxscan.Select(ctx, querier, &scenes, listScenesQuery, episodeID); err != nil {
		r.logger.Error("Failed to list scenes", zap.Int64("episodeID", episodeID), zap.Error(err))
		return nil, err
	}
	if len(scenes) == 0 {
		return nil, models.ErrEpisodeNotFound
	}

	sceneIDs := make([]int64, len(scenes))
	sceneIndex := make(map[int64]int, len(scenes))
	for i, s := range scenes {
		sceneIDs[i] = s.ID
		sceneIndex[s.ID] = i
	}

	var dialogues []models.Dialogue
	if err := pgxscan.Select(ctx, querier, &dialogues, listSceneDialoguesQuery, sceneIDs); err != nil {
		r.logger.Error("Failed to list scene dialogues", zap.Int64("episodeID", episodeID), zap.Error(err))
		return nil, err
	}

	for _, d := range dialogues {
		i := sceneIndex[d.SceneID]
		scenes[i].Dialogues = append(scenes[i].Dialogues, d)
	}

	return scenes, nil
}

func (r *pgStoryRepository) GetDialogue(ctx context.Context, querier interfaces.DBTX, dialogueID int64) (*models.Dialogue, error) {
	dialogue := &models.Dialogue{}
	if err := pgxscan.Get(ctx, querier, dialogue, getDialogueQuery, dialogueID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrDialogueNotFound
		}
		r.logger.Error("Failed to get dialogue", zap.Int64("dialogueID", dialogueID), zap.Error(err))
		return nil, err
	}
	return dialogue, nil
}
