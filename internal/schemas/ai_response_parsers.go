package schemas

import (
	"fmt"
	"regexp"
	"strings"

	"lingo-server/internal/models"
	"lingo-server/internal/utils"
)

// Границы количества сообщений в correction-ответе:
// реплика пользователя + 1-4 ответа NPC (с возможными NARRATION вставками).
const (
	minCorrectionMessages = 2
	maxCorrectionMessages = 10
	quizSentenceCount     = 5
	quizMaxWords          = 7
)

var jsonBlockRegex = regexp.MustCompile("(?s)```(?:json)?\\s*([\\s\\S]*?)\\s*```")

// ExtractJSONContent снимает markdown-обертку вокруг JSON в сыром ответе модели.
// Содержимое не чинится: невалидный JSON останется невалидным.
func ExtractJSONContent(rawText string) string {
	rawText = strings.TrimSpace(rawText)

	if matches := jsonBlockRegex.FindStringSubmatch(rawText); len(matches) > 1 {
		return strings.TrimSpace(matches[1])
	}

	// Берем текст между первой { и последней }
	firstBrace := strings.Index(rawText, "{")
	lastBrace := strings.LastIndex(rawText, "}")
	if firstBrace != -1 && lastBrace > firstBrace {
		return rawText[firstBrace : lastBrace+1]
	}

	return rawText
}

func validateMessage(i int, m models.GeneratedMessage) error {
	switch m.Type {
	case models.TurnKindDialogue:
		if m.CharacterID == nil {
			return fmt.Errorf("message %d: DIALOGUE requires characterId", i)
		}
		if m.CharacterName == "" {
			return fmt.Errorf("message %d: DIALOGUE requires characterName", i)
		}
	case models.TurnKindNarration:
		if m.CharacterID != nil {
			return fmt.Errorf("message %d: NARRATION must not carry characterId", i)
		}
	default:
		return fmt.Errorf("message %d: unknown type %q", i, m.Type)
	}
	if m.EnglishText == "" {
		return fmt.Errorf("message %d: englishText is required", i)
	}
	if m.KoreanText == "" {
		return fmt.Errorf("message %d: koreanText is required", i)
	}
	return nil
}

func validateScore(name string, value int) error {
	if value < 0 || value > 100 {
		return fmt.Errorf("evaluation.%s out of range [0,100]: %d", name, value)
	}
	return nil
}

func validateEvaluation(e *models.Evaluation) error {
	if err := validateScore("overallScore", e.OverallScore); err != nil {
		return err
	}
	if err := validateScore("grammarScore", e.GrammarScore); err != nil {
		return err
	}
	if err := validateScore("fluencyScore", e.FluencyScore); err != nil {
		return err
	}
	if err := validateScore("naturalnessScore", e.NaturalnessScore); err != nil {
		return err
	}
	if e.Cefr == "" {
		return fmt.Errorf("evaluation.cefr is required")
	}
	return nil
}

// ParseGenerationResponse разбирает и проверяет ответ модели для чистой генерации.
// Любое нарушение формы отклоняет ответ целиком.
func ParseGenerationResponse(rawText string) (*models.GenerationResponse, error) {
	cleaned := ExtractJSONContent(rawText)

	// Форма ответа закрытая: неизвестные поля отклоняются
	var resp models.GenerationResponse
	if err := utils.DecodeStrict([]byte(cleaned), &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrAIInvalidJSON, err)
	}

	if len(resp.Messages) == 0 {
		return nil, fmt.Errorf("%w: messages must not be empty", models.ErrAIInvalidShape)
	}
	for i, m := range resp.Messages {
		if err := validateMessage(i, m); err != nil {
			return nil, fmt.Errorf("%w: %v", models.ErrAIInvalidShape, err)
		}
	}
	if resp.DataTable == nil {
		resp.DataTable = make(map[string]interface{})
	}

	return &resp, nil
}

// ParseCorrectionResponse разбирает и проверяет ответ модели для исправления
// ввода + ответов NPC. Для ветки translation evaluation обязан быть null.
func ParseCorrectionResponse(rawText string) (*models.CorrectionResponse, error) {
	cleaned := ExtractJSONContent(rawText)

	var resp models.CorrectionResponse
	if err := utils.DecodeStrict([]byte(cleaned), &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrAIInvalidJSON, err)
	}

	switch resp.Type {
	case models.CorrectionTypeCorrection:
		if resp.Evaluation == nil {
			return nil, fmt.Errorf("%w: correction requires evaluation", models.ErrAIInvalidShape)
		}
	case models.CorrectionTypeTranslation:
		if resp.Evaluation != nil {
			return nil, fmt.Errorf("%w: translation must not carry evaluation", models.ErrAIInvalidShape)
		}
	default:
		return nil, fmt.Errorf("%w: unknown response type %q", models.ErrAIInvalidShape, resp.Type)
	}

	if len(resp.Messages) < minCorrectionMessages || len(resp.Messages) > maxCorrectionMessages {
		return nil, fmt.Errorf("%w: message count %d out of bounds [%d,%d]",
			models.ErrAIInvalidShape, len(resp.Messages), minCorrectionMessages, maxCorrectionMessages)
	}
	for i, m := range resp.Messages {
		if err := validateMessage(i, m); err != nil {
			return nil, fmt.Errorf("%w: %v", models.ErrAIInvalidShape, err)
		}
	}
	// Первая реплика принадлежит пользователю
	if resp.Messages[0].Type != models.TurnKindDialogue {
		return nil, fmt.Errorf("%w: messages[0] must be the user's DIALOGUE", models.ErrAIInvalidShape)
	}

	if resp.Evaluation != nil {
		if err := validateEvaluation(resp.Evaluation); err != nil {
			return nil, fmt.Errorf("%w: %v", models.ErrAIInvalidShape, err)
		}
	}
	if resp.DataTable == nil {
		resp.DataTable = make(map[string]interface{})
	}

	return &resp, nil
}

// ParseQuizPickResponse разбирает и проверяет ответ модели для отбора предложений:
// ровно 5 результатов, английский текст не длиннее 7 слов.
func ParseQuizPickResponse(rawText string) (*models.QuizPickResponse, error) {
	cleaned := ExtractJSONContent(rawText)

	var resp models.QuizPickResponse
	if err := utils.DecodeStrict([]byte(cleaned), &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrAIInvalidJSON, err)
	}

	if len(resp.Results) != quizSentenceCount {
		return nil, fmt.Errorf("%w: expected exactly %d sentences, got %d",
			models.ErrAIInvalidShape, quizSentenceCount, len(resp.Results))
	}
	for i, r := range resp.Results {
		if r.EnglishText == "" {
			return nil, fmt.Errorf("%w: result %d: englishText is required", models.ErrAIInvalidShape, i)
		}
		if words := len(strings.Fields(r.EnglishText)); words > quizMaxWords {
			return nil, fmt.Errorf("%w: result %d: %d words exceeds limit of %d",
				models.ErrAIInvalidShape, i, words, quizMaxWords)
		}
		if r.KoreanText == "" {
			return nil, fmt.Errorf("%w: result %d: koreanText is required", models.ErrAIInvalidShape, i)
		}
	}

	return &resp, nil
}
