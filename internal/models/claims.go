package models

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims - полезная нагрузка access-токена. Токены выпускает внешний auth-сервис,
// здесь они только проверяются.
type Claims struct {
	UserID uuid.UUID `json:"userId"`
	// SelectedCharacterID - персонаж, выбранный пользователем для диалогов.
	SelectedCharacterID   int64  `json:"selectedCharacterId,omitempty"`
	SelectedCharacterName string `json:"selectedCharacterName,omitempty"`
	jwt.RegisteredClaims
}
