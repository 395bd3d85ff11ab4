package quiz

import (
	"math/rand"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"lingo-server/internal/models"
)

// Порядок чередования архетипов по позиции предложения.
var archetypeRotation = []models.QuizType{
	models.QuizTypeSentenceBuild,
	models.QuizTypeSentenceClozeBuild,
	models.QuizTypeSpeakRepeat,
}

// Служебные слова не становятся пропусками в cloze-упражнениях.
var skipWords = map[string]struct{}{
	"a": {}, "an": {}, "the": {},
	"is": {}, "am": {}, "are": {}, "was": {}, "were": {},
	"i": {}, "you": {}, "he": {}, "she": {}, "it": {}, "we": {}, "they": {},
	"in": {}, "on": {}, "at": {}, "to": {}, "for": {}, "of": {},
	"and": {}, "but": {}, "or": {},
	"do": {}, "does": {}, "did": {}, "not": {}, "no": {},
	"my": {}, "your": {}, "his": {}, "her": {},
}

// Пул дистракторов: частотные слова, не несущие смысла предложения.
var distractorPool = []string{
	"always", "never", "often", "very", "really", "just", "about",
	"much", "many", "some", "every", "still", "only", "also", "even",
	"well", "back", "then", "here", "there", "now", "before", "after",
	"again", "around", "between", "under", "above", "without",
	"being", "going", "getting", "making", "having",
	"should", "would", "could", "might", "must",
	"than", "both", "each", "while", "where",
}

var (
	trailingPunctRe = regexp.MustCompile(`[.!?]+$`)
	nonAlphaRe      = regexp.MustCompile(`[^a-zA-Z]`)
)

// Materializer превращает отобранные предложения в упражнения без участия модели.
type Materializer struct {
	rng    *rand.Rand
	logger *zap.Logger
}

// NewMaterializer создает материализатор со случайным сидом.
func NewMaterializer(logger *zap.Logger) *Materializer {
	return NewMaterializerWithRand(rand.New(rand.NewSource(time.Now().UnixNano())), logger)
}

// NewMaterializerWithRand создает материализатор с заданным источником случайности.
func NewMaterializerWithRand(rng *rand.Rand, logger *zap.Logger) *Materializer {
	return &Materializer{
		rng:    rng,
		logger: logger.Named("QuizMaterializer"),
	}
}

// Materialize строит упражнения по кругу архетипов: позиция i получает
// archetypeRotation[i % 3], порядковый номер i+1.
func (m *Materializer) Materialize(playID uuid.UUID, sentences []models.QuizSentence) []models.Quiz {
	quizzes := make([]models.Quiz, 0, len(sentences))
	for i, src := range sentences {
		quizType := archetypeRotation[i%len(archetypeRotation)]

		payload := models.QuizPayload{
			EnglishText: src.EnglishText,
			KoreanText:  src.KoreanText,
			Description: src.Description,
		}
		switch quizType {
		case models.QuizTypeSentenceBuild:
			m.fillSentenceBuild(&payload)
		case models.QuizTypeSentenceClozeBuild:
			m.fillSentenceCloze(&payload)
		case models.QuizTypeSpeakRepeat:
			// Предложение повторяется целиком, дополнительных данных не нужно.
		}

		quizzes = append(quizzes, models.Quiz{
			ID:            uuid.New(),
			PlayEpisodeID: playID,
			Order:         i + 1,
			Type:          quizType,
			Payload:       payload,
		})
	}

	m.logger.Debug("Quizzes materialized",
		zap.Stringer("playID", playID), zap.Int("count", len(quizzes)))
	return quizzes
}

// fillSentenceBuild: собрать предложение из перемешанных карточек слов.
// Конечная пунктуация снимается и доставляется клиенту отдельно.
func (m *Materializer) fillSentenceBuild(p *models.QuizPayload) {
	p.AutoPunctuation = trailingPunctRe.FindString(p.EnglishText)
	clean := strings.TrimSpace(trailingPunctRe.ReplaceAllString(p.EnglishText, ""))

	words := strings.Fields(clean)
	p.Tokens = words
	p.Distractors = m.pickDistractors(words, 2)
}

// fillSentenceCloze: один пропуск для коротких предложений (<=5 слов), иначе два.
// Пропуском может стать только content word длиной от 3 букв.
func (m *Materializer) fillSentenceCloze(p *models.QuizPayload) {
	words := strings.Fields(p.EnglishText)

	var candidates []int
	for i, w := range words {
		if isContentWord(w, 3) {
			candidates = append(candidates, i)
		}
	}

	slotCount := 2
	if len(words) <= 5 {
		slotCount = 1
	}
	if slotCount > len(candidates) {
		slotCount = len(candidates)
	}

	m.rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	slotIndices := make(map[int]struct{}, slotCount)
	for _, idx := range candidates[:slotCount] {
		slotIndices[idx] = struct{}{}
	}

	var parts []models.ClozePart
	choices := []string{}
	answerBySlot := make(map[int]string, slotCount)
	slotNum := 0

	var textBuf strings.Builder
	flush := func() {
		if textBuf.Len() > 0 {
			parts = append(parts, models.ClozePart{Kind: "text", Text: textBuf.String()})
			textBuf.Reset()
		}
	}

	for i, w := range words {
		if _, ok := slotIndices[i]; ok {
			flush()
			slotNum++
			parts = append(parts, models.ClozePart{Kind: "slot", Slot: slotNum})
			answerBySlot[slotNum] = w
			choices = append(choices, w)
			choices = append(choices, m.pickDistractors([]string{w}, 2)...)
			continue
		}
		if textBuf.Len() > 0 {
			textBuf.WriteByte(' ')
		}
		textBuf.WriteString(w)
	}
	flush()

	m.rng.Shuffle(len(choices), func(i, j int) {
		choices[i], choices[j] = choices[j], choices[i]
	})

	p.Parts = parts
	p.Choices = choices
	p.AnswerBySlot = answerBySlot
}

// pickDistractors выбирает count слов из пула, исключая слова предложения.
func (m *Materializer) pickDistractors(exclude []string, count int) []string {
	excluded := make(map[string]struct{}, len(exclude))
	for _, w := range exclude {
		excluded[strings.ToLower(w)] = struct{}{}
	}

	available := make([]string, 0, len(distractorPool))
	for _, w := range distractorPool {
		if _, ok := excluded[w]; !ok {
			available = append(available, w)
		}
	}
	m.rng.Shuffle(len(available), func(i, j int) {
		available[i], available[j] = available[j], available[i]
	})

	if count > len(available) {
		count = len(available)
	}
	return available[:count]
}

func isContentWord(w string, minLen int) bool {
	stripped := nonAlphaRe.ReplaceAllString(w, "")
	if len(stripped) < minLen {
		return false
	}
	_, skip := skipWords[strings.ToLower(stripped)]
	return !skip
}
