package models

// CorrectionType - признак ветки обработки пользовательского ввода.
type CorrectionType string

const (
	CorrectionTypeCorrection  CorrectionType = "correction"
	CorrectionTypeTranslation CorrectionType = "translation"
)

// GeneratedMessage - одна реплика из ответа модели (до классификации и сохранения).
type GeneratedMessage struct {
	Type          TurnKind `json:"type"`
	CharacterID   *int64   `json:"characterId"`
	CharacterName string   `json:"characterName"`
	EnglishText   string   `json:"englishText"`
	KoreanText    string   `json:"koreanText"`
	ImageLabel    string   `json:"charImageLabel"`
	// Kind приходит только в correction-ответах: correction|translation|reply.
	Kind string `json:"kind,omitempty"`
}

// GenerationResponse - проверенный ответ модели для чистой генерации.
type GenerationResponse struct {
	Messages  []GeneratedMessage     `json:"messages"`
	DataTable map[string]interface{} `json:"dataTable"`
}

// CorrectionResponse - проверенный ответ модели для исправления ввода + ответов NPC.
// Первое сообщение принадлежит пользователю, далее 1-4 реплики NPC.
// Evaluation обязан быть null для ветки translation.
type CorrectionResponse struct {
	Type       CorrectionType         `json:"type"`
	Messages   []GeneratedMessage     `json:"messages"`
	Evaluation *Evaluation            `json:"evaluation"`
	DataTable  map[string]interface{} `json:"dataTable"`
}

// QuizSentence - одно предложение, отобранное для квиза.
type QuizSentence struct {
	EnglishText string `json:"englishText"`
	KoreanText  string `json:"koreanText"`
	Description string `json:"description"`
}

// QuizPickResponse - проверенный ответ модели для отбора предложений (ровно 5).
type QuizPickResponse struct {
	Results []QuizSentence `json:"results"`
}
