package database

import (
	"context"

	"go.uber.org/zap"

	"lingo-server/internal/interfaces"
	"lingo-server/internal/models"
)

// Compile-time check to ensure implementation satisfies the interface.
var _ interfaces.CharacterRepository = (*pgCharacterRepository)(nil)

type pgCharacterRepository struct {
	logger *zap.Logger
}

// NewPgCharacterRepository creates a new repository instance.
func NewPgCharacterRepository(logger *zap.Logger) interfaces.CharacterRepository {
	return &pgCharacterRepository{
		logger: logger.Named("PgCharacterRepo"),
	}
}

const listCharactersQuery = `
SELECT id, name, personality, instructions
FROM characters
WHERE id = ANY($1)
ORDER BY id ASC`

const listCharacterImagesQuery = `
SELECT character_id, label, url
FROM character_images
WHERE character_id = ANY($1)`

func (r *pgCharacterRepository) GetByIDs(ctx context.Context, querier interfaces.DBTX, ids []int64) ([]models.Character, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := querier.Query(ctx, listCharactersQuery, ids)
	if err != nil {
		r.logger.Error("Failed to list characters", zap.Int("count", len(ids)), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var characters []models.Character
	for rows.Next() {
		var c models.Character
		if err := rows.Scan(&c.ID, &c.Name, &c.Personality, &c.Instructions); err != nil {
			return nil, err
		}
		characters = append(characters, c)
	}
	return characters, rows.Err()
}

func (r *pgCharacterRepository) GetImageMaps(ctx context.Context, querier interfaces.DBTX, ids []int64) (map[int64]map[string]string, error) {
	result := make(map[int64]map[string]string, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	rows, err := querier.Query(ctx, listCharacterImagesQuery, ids)
	if err != nil {
		r.logger.Error("Failed to list character images", zap.Int("count", len(ids)), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var characterID int64
		var label, url string
		if err := rows.Scan(&characterID, &label, &url); err != nil {
			return nil, err
		}
		if result[characterID] == nil {
			result[characterID] = make(map[string]string)
		}
		result[characterID][label] = url
	}
	return result, rows.Err()
}
