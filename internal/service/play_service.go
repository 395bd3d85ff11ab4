package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"lingo-server/internal/ai"
	"lingo-server/internal/interfaces"
	"lingo-server/internal/models"
	"lingo-server/internal/quiz"
)

// Границы страницы списка прохождений.
const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// PlayService оркестрирует прохождения эпизодов: старт, воспроизведение,
// генерацию слотов, прогресс и завершение.
type PlayService struct {
	db           interfaces.DBTX
	txManager    interfaces.TxManager
	playRepo     interfaces.PlayEpisodeRepository
	slotRepo     interfaces.SlotRepository
	storyRepo    interfaces.StoryRepository
	charRepo     interfaces.CharacterRepository
	imageCache   interfaces.CharacterImageCache
	quizRepo     interfaces.QuizRepository
	aiClient     ai.Client
	materializer *quiz.Materializer
	publisher    interfaces.PlayEventPublisher

	slotTxTimeout time.Duration
	logger        *zap.Logger
}

// NewPlayService создает сервис прохождений.
func NewPlayService(
	db interfaces.DBTX,
	txManager interfaces.TxManager,
	playRepo interfaces.PlayEpisodeRepository,
	slotRepo interfaces.SlotRepository,
	storyRepo interfaces.StoryRepository,
	charRepo interfaces.CharacterRepository,
	imageCache interfaces.CharacterImageCache,
	quizRepo interfaces.QuizRepository,
	aiClient ai.Client,
	materializer *quiz.Materializer,
	publisher interfaces.PlayEventPublisher,
	slotTxTimeout time.Duration,
	logger *zap.Logger,
) *PlayService {
	return &PlayService{
		db:            db,
		txManager:     txManager,
		playRepo:      playRepo,
		slotRepo:      slotRepo,
		storyRepo:     storyRepo,
		charRepo:      charRepo,
		imageCache:    imageCache,
		quizRepo:      quizRepo,
		aiClient:      aiClient,
		materializer:  materializer,
		publisher:     publisher,
		slotTxTimeout: slotTxTimeout,
		logger:        logger.Named("PlayService"),
	}
}

// StartPlayEpisode начинает прохождение эпизода. Если у пользователя уже есть
// незавершенное прохождение этого эпизода, возвращается оно (возобновление).
func (s *PlayService) StartPlayEpisode(ctx context.Context, userID uuid.UUID, episodeID int64) (*models.PlayEpisodeView, error) {
	episode, err := s.storyRepo.GetEpisode(ctx, s.db, episodeID)
	if err != nil {
		return nil, err
	}

	existing, err := s.playRepo.FindInProgress(ctx, s.db, userID, episodeID)
	if err == nil {
		s.logger.Debug("Resuming existing play",
			zap.Stringer("playID", existing.ID), zap.Int64("episodeID", episodeID))
		return s.buildReplayView(ctx, existing)
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	play := &models.PlayEpisode{
		ID:           uuid.New(),
		UserID:       userID,
		EpisodeID:    episodeID,
		Mode:         episode.Mode,
		Status:       models.PlayStatusInProgress,
		CurrentStage: models.StageStoryInProgress,
		StartedAt:    time.Now().UTC(),
		Data:         map[string]interface{}{},
	}
	if err := s.playRepo.Create(ctx, s.db, play); err != nil {
		return nil, err
	}

	s.logger.Info("Play episode started",
		zap.Stringer("playID", play.ID), zap.Stringer("userID", userID),
		zap.Int64("episodeID", episodeID), zap.String("mode", string(play.Mode)))

	return s.buildReplayView(ctx, play)
}

// GetPlayEpisode возвращает прохождение со смерженным сценарием.
// Доступно и для завершенных прохождений (просмотр истории).
func (s *PlayService) GetPlayEpisode(ctx context.Context, userID, playID uuid.UUID) (*models.PlayEpisodeView, error) {
	play, err := s.getOwnedPlay(ctx, userID, playID)
	if err != nil {
		return nil, err
	}
	return s.buildReplayView(ctx, play)
}

// ListMyPlayEpisodes возвращает страницу прохождений пользователя, новые первыми.
func (s *PlayService) ListMyPlayEpisodes(ctx context.Context, userID uuid.UUID, cursor string, limit int) ([]models.PlayEpisodeSummary, string, error) {
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return s.playRepo.ListByUserID(ctx, s.db, userID, cursor, limit)
}

// UpdateProgress применяет чекпоинт прогресса от клиента.
// lastSlotId обязан указывать на ENDED слот этого же прохождения.
func (s *PlayService) UpdateProgress(ctx context.Context, userID, playID uuid.UUID, upd models.ProgressUpdate) error {
	if _, err := s.getOwnedActivePlay(ctx, userID, playID); err != nil {
		return err
	}

	if upd.LastSlotID != nil {
		slot, err := s.slotRepo.GetByID(ctx, s.db, *upd.LastSlotID)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return fmt.Errorf("%w: lastSlotId does not exist", models.ErrInvalidInput)
			}
			return err
		}
		if slot.PlayEpisodeID != playID {
			return fmt.Errorf("%w: lastSlotId belongs to another play", models.ErrInvalidInput)
		}
		if slot.Status != models.SlotStatusEnded {
			return fmt.Errorf("%w: lastSlotId must reference an ended slot", models.ErrInvalidInput)
		}
	}
	if upd.CurrentStage != nil {
		switch *upd.CurrentStage {
		case models.StageStoryInProgress, models.StageStoryCompleted,
			models.StageQuizInProgress, models.StageQuizCompleted:
		default:
			return fmt.Errorf("%w: unknown stage %q", models.ErrInvalidInput, *upd.CurrentStage)
		}
	}

	return s.txManager.WithTransaction(ctx, func(ctx context.Context, tx interfaces.DBTX) error {
		if err := s.playRepo.UpdateProgress(ctx, tx, playID, upd.LastSceneID, upd.LastSlotID, upd.CurrentStage); err != nil {
			return err
		}
		if len(upd.Data) > 0 {
			return s.playRepo.MergeData(ctx, tx, playID, upd.Data)
		}
		return nil
	})
}

// getOwnedPlay загружает прохождение и проверяет владельца.
func (s *PlayService) getOwnedPlay(ctx context.Context, userID, playID uuid.UUID) (*models.PlayEpisode, error) {
	play, err := s.playRepo.GetByID(ctx, s.db, playID)
	if err != nil {
		return nil, err
	}
	if play.UserID != userID {
		return nil, models.ErrNotYourPlay
	}
	return play, nil
}

// getOwnedActivePlay дополнительно требует статус IN_PROGRESS.
func (s *PlayService) getOwnedActivePlay(ctx context.Context, userID, playID uuid.UUID) (*models.PlayEpisode, error) {
	play, err := s.getOwnedPlay(ctx, userID, playID)
	if err != nil {
		return nil, err
	}
	if play.Status != models.PlayStatusInProgress {
		return nil, models.ErrPlayNotActive
	}
	return play, nil
}
