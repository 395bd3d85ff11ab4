package models

import (
	"time"

	"github.com/google/uuid"
)

// PlayCompletedEvent публикуется в брокер после фиксации завершения прохождения.
type PlayCompletedEvent struct {
	PlayEpisodeID uuid.UUID   `json:"playEpisodeId"`
	UserID        uuid.UUID   `json:"userId"`
	EpisodeID     int64       `json:"episodeId"`
	Mode          PlayMode    `json:"mode"`
	Stage         PlayStage   `json:"stage"`
	Result        *PlayResult `json:"result,omitempty"`
	CompletedAt   time.Time   `json:"completedAt"`
}
