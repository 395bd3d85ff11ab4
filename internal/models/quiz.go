package models

import "github.com/google/uuid"

// QuizType - архетип упражнения.
type QuizType string

const (
	QuizTypeSentenceBuild      QuizType = "SENTENCE_BUILD"
	QuizTypeSentenceClozeBuild QuizType = "SENTENCE_CLOZE_BUILD"
	QuizTypeSpeakRepeat        QuizType = "SPEAK_REPEAT"
)

// Quiz - материализованное упражнение, привязанное к прохождению.
type Quiz struct {
	ID            uuid.UUID   `json:"id"`
	PlayEpisodeID uuid.UUID   `json:"playEpisodeId"`
	Order         int         `json:"order"`
	Type          QuizType    `json:"type"`
	Payload       QuizPayload `json:"payload"`
}

// QuizPayload - полезная нагрузка упражнения; заполненные поля зависят от типа.
type QuizPayload struct {
	EnglishText string `json:"englishText"`
	KoreanText  string `json:"koreanText"`
	Description string `json:"description,omitempty"`

	// SENTENCE_BUILD: перемешанные токены + дистракторы, пунктуация доставляется отдельно.
	Tokens          []string `json:"tokens,omitempty"`
	Distractors     []string `json:"distractors,omitempty"`
	AutoPunctuation string   `json:"autoPunctuation,omitempty"`

	// SENTENCE_CLOZE_BUILD: предложение разбито на части текст/пропуск.
	Parts        []ClozePart    `json:"parts,omitempty"`
	Choices      []string       `json:"choices,omitempty"`
	AnswerBySlot map[int]string `json:"answerBySlot,omitempty"`
}

// ClozePart - фрагмент предложения в cloze-упражнении.
type ClozePart struct {
	Kind string `json:"kind"` // "text" или "slot"
	Text string `json:"text,omitempty"`
	Slot int    `json:"slot,omitempty"`
}
