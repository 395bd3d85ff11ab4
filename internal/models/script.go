package models

import "github.com/google/uuid"

// DialogueType определяет тип записи сценария.
type DialogueType string

const (
	DialogueTypeLine      DialogueType = "LINE"
	DialogueTypeNarration DialogueType = "NARRATION"
	// Маркеры AI-генерации: чистая генерация и генерация по вводу пользователя.
	DialogueTypeAISlot      DialogueType = "AI_SLOT"
	DialogueTypeAIInputSlot DialogueType = "AI_INPUT_SLOT"
)

// ReplyPolicy определяет, как выбираются отвечающие NPC в AI_INPUT_SLOT.
type ReplyPolicy string

const (
	ReplyPolicyAuto       ReplyPolicy = "auto"
	ReplyPolicySpecific   ReplyPolicy = "specific"
	ReplyPolicyRoundRobin ReplyPolicy = "round_robin"
)

// Episode - статический эпизод контента.
type Episode struct {
	ID    int64    `db:"id" json:"id"`
	Title string   `db:"title" json:"title"`
	Mode  PlayMode `db:"mode" json:"mode"`
	Tags  []string `db:"tags" json:"tags"`
}

// Scene - упорядоченная сцена эпизода.
type Scene struct {
	ID        int64      `db:"id" json:"id"`
	EpisodeID int64      `db:"episode_id" json:"episodeId"`
	Order     int        `db:"scene_order" json:"order"`
	Title     string     `db:"title" json:"title"`
	Dialogues []Dialogue `db:"-" json:"dialogues"`
}

// Dialogue - запись сценария: фиксированная реплика или маркер генерации.
// Контент неизменяемый, здесь читается только.
type Dialogue struct {
	ID            int64          `db:"id" json:"id"`
	SceneID       int64          `db:"scene_id" json:"sceneId"`
	Order         int            `db:"dialogue_order" json:"order"`
	Type          DialogueType   `db:"type" json:"type"`
	CharacterID   *int64         `db:"character_id" json:"characterId,omitempty"`
	CharacterName string         `db:"character_name" json:"characterName,omitempty"`
	EnglishText   string         `db:"english_text" json:"englishText,omitempty"`
	KoreanText    string         `db:"korean_text" json:"koreanText,omitempty"`
	ImageLabel    string         `db:"image_label" json:"charImageLabel,omitempty"`
	Payload       *MarkerPayload `db:"payload" json:"payload,omitempty"`
}

// IsAISlot сообщает, является ли запись маркером генерации.
func (d Dialogue) IsAISlot() bool {
	return d.Type == DialogueTypeAISlot || d.Type == DialogueTypeAIInputSlot
}

// MarkerPayload - JSON-нагрузка маркера генерации.
type MarkerPayload struct {
	// CharacterID - якорный персонаж маркера (персонаж игрока в этой сцене).
	CharacterID    int64       `json:"characterId"`
	NpcIDs         []int64     `json:"npcIds"`
	ReplyPolicy    ReplyPolicy `json:"replyPolicy,omitempty"`
	MustReplyIDs   []int64     `json:"mustReplyIds,omitempty"`
	Situation      string      `json:"situation,omitempty"`
	Constraints    []string    `json:"constraints,omitempty"`
	IncludeHistory bool        `json:"includeHistory,omitempty"`
}

// Character - профиль персонажа из справочника.
type Character struct {
	ID           int64  `db:"id" json:"id"`
	Name         string `db:"name" json:"name"`
	Personality  string `db:"personality" json:"personality,omitempty"`
	Instructions string `db:"instructions" json:"instructions,omitempty"`
}

// ReplayEntry - элемент смерженного представления прохождения:
// либо статическая запись сценария, либо развернутые реплики слота.
type ReplayEntry struct {
	Dialogue *Dialogue     `json:"dialogue,omitempty"`
	Slot     *ResolvedSlot `json:"slot,omitempty"`
}

// ResolvedSlot - завершенный слот с репликами для воспроизведения.
type ResolvedSlot struct {
	SlotID     uuid.UUID      `json:"slotId"`
	DialogueID int64          `json:"dialogueId"`
	Order      int            `json:"order"`
	Turns      []SlotDialogue `json:"turns"`
}

// ReplayScene - сцена с наложенными слотами.
type ReplayScene struct {
	ID      int64         `json:"id"`
	Order   int           `json:"order"`
	Title   string        `json:"title"`
	Entries []ReplayEntry `json:"entries"`
}

// PlayEpisodeView - детальное представление прохождения для клиента.
type PlayEpisodeView struct {
	Play   *PlayEpisode  `json:"playEpisode"`
	Scenes []ReplayScene `json:"scenes"`
}
