package database

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"lingo-server/internal/interfaces"
	"lingo-server/internal/models"
	"lingo-server/internal/utils"
)

// Compile-time check to ensure implementation satisfies the interface.
var _ interfaces.QuizRepository = (*pgQuizRepository)(nil)

type pgQuizRepository struct {
	logger *zap.Logger
}

// NewPgQuizRepository creates a new repository instance.
func NewPgQuizRepository(logger *zap.Logger) interfaces.QuizRepository {
	return &pgQuizRepository{
		logger: logger.Named("PgQuizRepo"),
	}
}

const insertQuizQuery = `
INSERT INTO quizzes (id, play_episode_id, quiz_order, quiz_type, payload)
VALUES ($1, $2, $3, $4, $5)`

func (r *pgQuizRepository) CreateBatch(ctx context.Context, querier interfaces.DBTX, quizzes []models.Quiz) error {
	for _, q := range quizzes {
		payloadJSON, err := utils.MarshalMap(q.Payload)
		if err != nil {
			return fmt.Errorf("failed to marshal quiz payload: %w", err)
		}
		if _, err := querier.Exec(ctx, insertQuizQuery,
			q.ID, q.PlayEpisodeID, q.Order, q.Type, payloadJSON); err != nil {
			r.logger.Error("Failed to insert quiz",
				zap.Stringer("playID", q.PlayEpisodeID), zap.Int("order", q.Order), zap.Error(err))
			return err
		}
	}

	r.logger.Debug("Quizzes persisted", zap.Int("count", len(quizzes)))
	return nil
}
