package models

import (
	"time"

	"github.com/google/uuid"
)

// PlayMode определяет режим прохождения эпизода.
type PlayMode string

const (
	PlayModeChat         PlayMode = "CHAT"
	PlayModeChatWithQuiz PlayMode = "CHAT_WITH_QUIZ"
)

// PlayStatus определяет статус прохождения.
type PlayStatus string

const (
	PlayStatusInProgress PlayStatus = "IN_PROGRESS"
	PlayStatusCompleted  PlayStatus = "COMPLETED"
)

// PlayStage определяет этап прохождения (история -> квиз).
type PlayStage string

const (
	StageStoryInProgress PlayStage = "STORY_IN_PROGRESS"
	StageStoryCompleted  PlayStage = "STORY_COMPLETED"
	StageQuizInProgress  PlayStage = "QUIZ_IN_PROGRESS"
	StageQuizCompleted   PlayStage = "QUIZ_COMPLETED"
)

// SlotStatus определяет статус слота генерации.
type SlotStatus string

const (
	SlotStatusActive SlotStatus = "ACTIVE"
	SlotStatusEnded  SlotStatus = "ENDED"
)

// SpeakerClass классифицирует говорящего в сгенерированной реплике.
type SpeakerClass string

const (
	SpeakerUser   SpeakerClass = "USER"
	SpeakerNPC    SpeakerClass = "NPC"
	SpeakerSystem SpeakerClass = "SYSTEM"
)

// TurnKind определяет вид сгенерированной строки.
type TurnKind string

const (
	TurnKindDialogue  TurnKind = "DIALOGUE"
	TurnKindNarration TurnKind = "NARRATION"
)

// PlayEpisode - одно прохождение эпизода пользователем.
type PlayEpisode struct {
	ID           uuid.UUID              `json:"id"`
	UserID       uuid.UUID              `json:"userId"`
	EpisodeID    int64                  `json:"episodeId"`
	Mode         PlayMode               `json:"mode"`
	Status       PlayStatus             `json:"status"`
	CurrentStage PlayStage              `json:"currentStage"`
	StartedAt    time.Time              `json:"startedAt"`
	CompletedAt  *time.Time             `json:"completedAt,omitempty"`
	LastSceneID  *int64                 `json:"lastSceneId,omitempty"`
	LastSlotID   *uuid.UUID             `json:"lastSlotId,omitempty"`
	Result       *PlayResult            `json:"result,omitempty"`
	Data         map[string]interface{} `json:"data"`
	// DataVersion монотонно растет при каждом слиянии state bag.
	DataVersion int `json:"dataVersion"`
	// SlotCounter - источник порядковых номеров слотов (атомарный инкремент в БД).
	SlotCounter int `json:"-"`
	// RotationState хранит указатель round_robin ротации по id маркера.
	RotationState map[string]int `json:"-"`
}

// PlaySlot - один вызов AI-генерации для маркера внутри прохождения.
type PlaySlot struct {
	ID            uuid.UUID  `json:"id"`
	PlayEpisodeID uuid.UUID  `json:"playEpisodeId"`
	DialogueID    int64      `json:"dialogueId"`
	Order         int        `json:"order"`
	Status        SlotStatus `json:"status"`
	EndedAt       *time.Time `json:"endedAt,omitempty"`
	Data          SlotData   `json:"data"`
}

// SlotData хранится в jsonb колонке слота.
type SlotData struct {
	Evaluation *Evaluation `json:"evaluation,omitempty"`
	UserInput  string      `json:"userInput,omitempty"`
}

// Evaluation - оценка пользовательского ввода от модели.
// Числовые оценки в диапазоне 0-100.
type Evaluation struct {
	Feedback         string `json:"feedback"`
	OverallScore     int    `json:"overallScore"`
	GrammarScore     int    `json:"grammarScore"`
	FluencyScore     int    `json:"fluencyScore"`
	NaturalnessScore int    `json:"naturalnessScore"`
	Cefr             string `json:"cefr"`
	Summary          string `json:"summary"`
}

// SlotDialogue - одна сохраненная сгенерированная реплика слота.
// После создания не изменяется.
type SlotDialogue struct {
	ID            uuid.UUID    `json:"id"`
	SlotID        uuid.UUID    `json:"slotId"`
	Order         int          `json:"order"`
	Kind          TurnKind     `json:"kind"`
	SpeakerClass  SpeakerClass `json:"speakerClass"`
	CharacterID   *int64       `json:"characterId,omitempty"`
	CharacterName string       `json:"characterName,omitempty"`
	EnglishText   string       `json:"englishText"`
	KoreanText    string       `json:"koreanText,omitempty"`
	ImageLabel    string       `json:"charImageLabel,omitempty"`
	ImageURL      string       `json:"charImageUrl,omitempty"`
}

// PlayResult - агрегат, записываемый ровно один раз при завершении прохождения.
type PlayResult struct {
	OverallScore     *int      `json:"overallScore"`
	GrammarScore     *int      `json:"grammarScore"`
	FluencyScore     *int      `json:"fluencyScore"`
	NaturalnessScore *int      `json:"naturalnessScore"`
	EvaluatedSlots   int       `json:"evaluatedSlots"`
	TurnsCount       int       `json:"turnsCount"`
	GeneratedAt      time.Time `json:"generatedAt"`
}

// CorrectedDialogue - пара "ввод пользователя / исправленная реплика" для экрана результата.
type CorrectedDialogue struct {
	SlotID      uuid.UUID   `json:"slotId"`
	UserInput   string      `json:"userInput"`
	EnglishText string      `json:"englishText"`
	KoreanText  string      `json:"koreanText,omitempty"`
	Evaluation  *Evaluation `json:"evaluation,omitempty"`
}

// PlayResultView - ответ эндпоинта результата.
type PlayResultView struct {
	PlayEpisodeID      uuid.UUID           `json:"playEpisodeId"`
	Status             PlayStatus          `json:"status"`
	CurrentStage       PlayStage           `json:"currentStage"`
	Result             *PlayResult         `json:"result"`
	CorrectedDialogues []CorrectedDialogue `json:"correctedDialogues"`
}

// SlotGenerationView - ответ эндпоинтов генерации слота.
// Type и Evaluation заполняются только для AI_INPUT_SLOT.
type SlotGenerationView struct {
	Slot       *ResolvedSlot `json:"slot"`
	Type       string        `json:"type,omitempty"`
	Evaluation *Evaluation   `json:"evaluation,omitempty"`
}

// ProgressUpdate - чекпоинт прогресса от клиента.
type ProgressUpdate struct {
	LastSceneID  *int64                 `json:"lastSceneId,omitempty"`
	LastSlotID   *uuid.UUID             `json:"lastSlotId,omitempty"`
	CurrentStage *PlayStage             `json:"currentStage,omitempty"`
	Data         map[string]interface{} `json:"data,omitempty"`
}

// PlayEpisodeSummary - элемент списка "мои прохождения".
type PlayEpisodeSummary struct {
	ID           uuid.UUID  `json:"id"`
	EpisodeID    int64      `json:"episodeId"`
	EpisodeTitle string     `json:"episodeTitle"`
	Mode         PlayMode   `json:"mode"`
	Status       PlayStatus `json:"status"`
	CurrentStage PlayStage  `json:"currentStage"`
	StartedAt    time.Time  `json:"startedAt"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
}
