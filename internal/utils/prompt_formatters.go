package utils

import (
	"fmt"
	"strings"

	"lingo-server/internal/models"
)

// Допустимые метки изображений персонажей в ответе модели.
const charImageLabels = `"default"|"happy"|"angry"|"sad"`

// Ввод пользователя обрезается до последних 500 символов, чтобы не раздувать промт.
const maxUserInputLen = 500

// SceneMessage - реплика из текущей сцены для контекста correction-промта.
type SceneMessage struct {
	CharacterName string
	EnglishText   string
}

// TruncateTail возвращает последние max символов строки (по рунам).
func TruncateTail(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[len(runes)-max:])
}

func writeCharacterLine(sb *strings.Builder, c models.Character, suffix string) {
	sb.WriteString(fmt.Sprintf("- id=%d, name=%q", c.ID, c.Name))
	if c.Personality != "" {
		sb.WriteString(fmt.Sprintf(", personality=%q", c.Personality))
	}
	sb.WriteString(suffix)
	sb.WriteString("\n")
}

func writeRoster(sb *strings.Builder, userChar models.Character, npcs []models.Character, mustReply map[int64]bool) {
	sb.WriteString(fmt.Sprintf("User: id=%d, name=%q", userChar.ID, userChar.Name))
	if userChar.Personality != "" {
		sb.WriteString(fmt.Sprintf(", personality=%q", userChar.Personality))
	}
	sb.WriteString("\nNPCs:\n")
	for _, npc := range npcs {
		suffix := ""
		if mustReply[npc.ID] {
			suffix = " [MUST REPLY]"
		}
		writeCharacterLine(sb, npc, suffix)
	}
}

func writeConstraints(sb *strings.Builder, constraints []string) {
	if len(constraints) == 0 {
		return
	}
	sb.WriteString("Constraints:\n")
	for _, c := range constraints {
		sb.WriteString(fmt.Sprintf("- %s\n", c))
	}
}

// FormatGenerationPrompt строит промт для чистой генерации реплик слота.
// Формат JSON-ответа прописан в самом промте, чтобы его можно было
// детерминированно декодировать.
func FormatGenerationPrompt(
	userChar models.Character,
	npcs []models.Character,
	situation string,
	constraints []string,
	dataTable map[string]interface{},
) (string, error) {
	if situation == "" {
		return "", fmt.Errorf("situation cannot be empty for generation prompt")
	}

	var sb strings.Builder
	sb.WriteString("Return ONLY valid JSON. English roleplay learning app.\n")
	writeRoster(&sb, userChar, npcs, nil)
	sb.WriteString(fmt.Sprintf("Situation: %s\n", situation))
	writeConstraints(&sb, constraints)

	dataTableJSON, err := MarshalMap(dataTable)
	if err != nil {
		return "", fmt.Errorf("failed to marshal data table: %w", err)
	}
	sb.WriteString("DataTable:\n")
	sb.Write(dataTableJSON)
	sb.WriteString("\n")

	sb.WriteString(`Message type rules:
- type="DIALOGUE": character speaking directly (has characterId, characterName, charImageLabel).
- type="NARRATION": narrator describing scene/action (no characterId, no characterName needed).

Rules:
- koreanText: required for every message.
- charImageLabel: ` + charImageLabels + ` (DIALOGUE only).
- characterId: must match IDs above (DIALOGUE only).

{
  "messages": [
    {"type":"DIALOGUE","characterId":number,"characterName":"...","charImageLabel":"...","englishText":"...","koreanText":"..."},
    {"type":"NARRATION","characterId":null,"characterName":null,"charImageLabel":null,"englishText":"...","koreanText":"..."}
  ],
  "dataTable": {}
}`)

	return strings.TrimSpace(sb.String()), nil
}

// CorrectionPromptArgs - входные данные для промта исправления ввода + ответов NPC.
type CorrectionPromptArgs struct {
	UserCharacter models.Character
	NPCs          []models.Character
	Situation     string
	UserText      string
	ReplyPolicy   models.ReplyPolicy
	MustReplyIDs  []int64
	// NextReplier - NPC, выбранный персистентной round_robin ротацией.
	NextReplier   *models.Character
	Constraints   []string
	DataTable     map[string]interface{}
	SceneMessages []SceneMessage
}

// FormatCorrectionPrompt строит промт для двухветочной обработки пользовательского
// ввода: английский текст исправляется и оценивается, любой другой переводится
// без оценки. Далее модель добавляет 1-4 ответа NPC по политике маркера.
func FormatCorrectionPrompt(args CorrectionPromptArgs) (string, error) {
	if args.UserText == "" {
		return "", fmt.Errorf("user text cannot be empty for correction prompt")
	}

	mustReply := make(map[int64]bool, len(args.MustReplyIDs))
	if args.ReplyPolicy == models.ReplyPolicySpecific {
		for _, id := range args.MustReplyIDs {
			mustReply[id] = true
		}
	}

	var replyInstruction string
	switch args.ReplyPolicy {
	case models.ReplyPolicySpecific:
		replyInstruction = "Only NPC(s) marked [MUST REPLY] respond."
	case models.ReplyPolicyRoundRobin:
		if args.NextReplier != nil {
			replyInstruction = fmt.Sprintf("NPC id=%d (%q) replies first; others may follow.", args.NextReplier.ID, args.NextReplier.Name)
		} else {
			replyInstruction = "Pick the next NPC in order."
		}
	default:
		replyInstruction = "Choose which NPC(s) reply based on context."
	}

	var sb strings.Builder
	sb.WriteString("Return ONLY valid JSON. English roleplay learning app.\n\n")
	writeRoster(&sb, args.UserCharacter, args.NPCs, mustReply)
	sb.WriteString(fmt.Sprintf("Situation: %s\n", args.Situation))
	sb.WriteString(fmt.Sprintf("Reply mode: %s\n", replyInstruction))
	writeConstraints(&sb, args.Constraints)

	if len(args.SceneMessages) > 0 {
		sb.WriteString("Previous messages:\n")
		for _, m := range args.SceneMessages {
			sb.WriteString(fmt.Sprintf("- %s: %s\n", m.CharacterName, m.EnglishText))
		}
	}

	sb.WriteString(fmt.Sprintf("Input: %q\n", TruncateTail(args.UserText, maxUserInputLen)))
	sb.WriteString(fmt.Sprintf(`Step 1 — Detect input language, then branch:
[ENGLISH input]
- type="correction", correct grammar/naturalness. If already good, keep as-is.
- "evaluation": REQUIRED object (all fields in Korean).
[NON-ENGLISH input (Korean etc.)]
- type="translation", translate to natural English.
- "evaluation": MUST be null. Do NOT evaluate. Do NOT generate evaluation object.
Step 2 — messages[0] characterId=%d.
Step 3 — Append 1-4 NPC replies (kind="reply"), matching each NPC's personality.
`, args.UserCharacter.ID))

	if args.DataTable != nil {
		dataTableJSON, err := MarshalMap(args.DataTable)
		if err != nil {
			return "", fmt.Errorf("failed to marshal data table: %w", err)
		}
		sb.WriteString("DataTable:\n")
		sb.Write(dataTableJSON)
		sb.WriteString("\n")
	}

	sb.WriteString(`Message type rules:
- type="DIALOGUE": character is speaking directly (has characterId, characterName, charImageLabel).
- type="NARRATION": narrator describing a scene/action (no characterId, no characterName, no charImageLabel needed).

Rules:
- koreanText: required for every message.
- charImageLabel: ` + charImageLabels + ` (DIALOGUE only).
- characterId: must match IDs above (DIALOGUE only).

`)
	sb.WriteString(fmt.Sprintf(`{
  "type": "correction|translation",
  "messages": [
    {"type":"DIALOGUE","characterId":%d,"characterName":%q,"charImageLabel":"...","kind":"correction|translation","englishText":"...","koreanText":"..."},
    {"type":"NARRATION","characterId":null,"characterName":null,"charImageLabel":null,"kind":"reply","englishText":"...","koreanText":"..."},
    {"type":"DIALOGUE","characterId":number,"characterName":"...","charImageLabel":"...","kind":"reply","englishText":"...","koreanText":"..."}
  ],
  "evaluation":{"feedback":"한국어","overallScore":0-100,"grammarScore":0-100,"fluencyScore":0-100,"naturalnessScore":0-100,"cefr":"A1-C2","summary":"한국어"} or null,
  "dataTable": {}
}`, args.UserCharacter.ID, args.UserCharacter.Name))

	return strings.TrimSpace(sb.String()), nil
}

// FormatQuizPickPrompt строит промт отбора ровно 5 коротких предложений
// из транскрипта прохождения для материализации квиза.
func FormatQuizPickPrompt(sentences []string) (string, error) {
	if len(sentences) == 0 {
		return "", fmt.Errorf("sentences cannot be empty for quiz pick prompt")
	}

	var sb strings.Builder
	sb.WriteString(`# Role
You are an expert English Language Teacher and Content Creator. Your task is to extract and refine exactly 5 sentences from a provided text for educational purposes.
# Task Instructions
1. Selection: Identify EXACTLY 5 sentences from the input text that contain intermediate or higher-level grammar (e.g., relative clauses, participles, perfect tenses, subjunctives) or advanced vocabulary.
2. Length Constraint: Rephrase or shorten the selected sentences so that each sentence is NO MORE THAN 7 WORDS while maintaining the advanced grammatical structure.
3. Translation & Description:
   - "koreanText": Provide a natural Korean translation.
   - "description": Provide a brief explanation in Korean about the specific grammar point or the context in which the sentence is used.
4. Output Format: Return the result ONLY in the following JSON data structure. No extra conversation or text.
# JSON Structure
results: [
  {
    "englishText": "Max 7 words here",
    "koreanText": "한국어 번역",
    "description": "문법 및 용법 설명"
  }
]
# sentences
`)
	for _, s := range sentences {
		sb.WriteString(fmt.Sprintf("- %s\n", s))
	}

	return strings.TrimSpace(sb.String()), nil
}
