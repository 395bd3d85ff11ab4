package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lingo-server/internal/models"
)

func TestExtractJSONContent(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Fenced json block",
			input:    "Here you go:\n```json\n{\"a\": 1}\n```\nhope it helps",
			expected: `{"a": 1}`,
		},
		{
			name:     "Fenced block without language tag",
			input:    "```\n{\"a\": 1}\n```",
			expected: `{"a": 1}`,
		},
		{
			name:     "Prose around bare object",
			input:    `Sure! {"messages": []} Let me know.`,
			expected: `{"messages": []}`,
		},
		{
			name:     "Plain object untouched",
			input:    `{"a": 1}`,
			expected: `{"a": 1}`,
		},
		{
			name:     "No braces returns trimmed input",
			input:    "  not json at all  ",
			expected: "not json at all",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ExtractJSONContent(tc.input))
		})
	}
}

func TestParseGenerationResponse(t *testing.T) {
	valid := `{
		"messages": [
			{"type": "NARRATION", "englishText": "The door opens.", "koreanText": "문이 열린다."},
			{"type": "DIALOGUE", "characterId": 2, "characterName": "Leo", "englishText": "Welcome!", "koreanText": "어서 오세요!", "charImageLabel": "smile"}
		],
		"dataTable": {"mood": "warm"}
	}`

	t.Run("Valid response", func(t *testing.T) {
		resp, err := ParseGenerationResponse("```json\n" + valid + "\n```")

		require.NoError(t, err)
		require.Len(t, resp.Messages, 2)
		assert.Equal(t, models.TurnKindNarration, resp.Messages[0].Type)
		assert.Nil(t, resp.Messages[0].CharacterID)
		require.NotNil(t, resp.Messages[1].CharacterID)
		assert.Equal(t, int64(2), *resp.Messages[1].CharacterID)
		assert.Equal(t, "smile", resp.Messages[1].ImageLabel)
		assert.Equal(t, "warm", resp.DataTable["mood"])
	})

	t.Run("Missing dataTable becomes empty map", func(t *testing.T) {
		resp, err := ParseGenerationResponse(`{"messages": [{"type": "NARRATION", "englishText": "x", "koreanText": "y"}]}`)

		require.NoError(t, err)
		require.NotNil(t, resp.DataTable)
		assert.Empty(t, resp.DataTable)
	})

	testCases := []struct {
		name    string
		input   string
		wantErr error
	}{
		{
			name:    "Broken JSON",
			input:   `{"messages": [`,
			wantErr: models.ErrAIInvalidJSON,
		},
		{
			name:    "Unknown top-level field rejected",
			input:   `{"messages": [{"type": "NARRATION", "englishText": "x", "koreanText": "y"}], "mood": "warm"}`,
			wantErr: models.ErrAIInvalidJSON,
		},
		{
			name:    "Unknown message field rejected",
			input:   `{"messages": [{"type": "NARRATION", "englishText": "x", "koreanText": "y", "voiceId": 3}]}`,
			wantErr: models.ErrAIInvalidJSON,
		},
		{
			name:    "Empty messages",
			input:   `{"messages": []}`,
			wantErr: models.ErrAIInvalidShape,
		},
		{
			name:    "Dialogue without characterId",
			input:   `{"messages": [{"type": "DIALOGUE", "characterName": "Leo", "englishText": "x", "koreanText": "y"}]}`,
			wantErr: models.ErrAIInvalidShape,
		},
		{
			name:    "Narration with characterId",
			input:   `{"messages": [{"type": "NARRATION", "characterId": 2, "englishText": "x", "koreanText": "y"}]}`,
			wantErr: models.ErrAIInvalidShape,
		},
		{
			name:    "Unknown message type",
			input:   `{"messages": [{"type": "SONG", "englishText": "x", "koreanText": "y"}]}`,
			wantErr: models.ErrAIInvalidShape,
		},
		{
			name:    "Missing koreanText",
			input:   `{"messages": [{"type": "NARRATION", "englishText": "x"}]}`,
			wantErr: models.ErrAIInvalidShape,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseGenerationResponse(tc.input)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestParseCorrectionResponse(t *testing.T) {
	valid := `{
		"type": "correction",
		"messages": [
			{"type": "DIALOGUE", "characterId": 1, "characterName": "You", "kind": "correction", "englishText": "I would like a coffee.", "koreanText": "커피 주세요."},
			{"type": "DIALOGUE", "characterId": 2, "characterName": "Leo", "kind": "reply", "englishText": "Coming right up!", "koreanText": "바로 드릴게요!"}
		],
		"evaluation": {
			"feedback": "Nice", "overallScore": 82, "grammarScore": 80,
			"fluencyScore": 84, "naturalnessScore": 82, "cefr": "B1", "summary": "Good"
		},
		"dataTable": {}
	}`

	t.Run("Valid correction", func(t *testing.T) {
		resp, err := ParseCorrectionResponse(valid)

		require.NoError(t, err)
		assert.Equal(t, models.CorrectionTypeCorrection, resp.Type)
		require.NotNil(t, resp.Evaluation)
		assert.Equal(t, 82, resp.Evaluation.OverallScore)
		assert.Equal(t, "correction", resp.Messages[0].Kind)
	})

	t.Run("Valid translation without evaluation", func(t *testing.T) {
		input := `{
			"type": "translation",
			"messages": [
				{"type": "DIALOGUE", "characterId": 1, "characterName": "You", "kind": "translation", "englishText": "Where is the station?", "koreanText": "역이 어디예요?"},
				{"type": "DIALOGUE", "characterId": 2, "characterName": "Leo", "kind": "reply", "englishText": "Just around the corner.", "koreanText": "바로 모퉁이에 있어요."}
			],
			"evaluation": null
		}`

		resp, err := ParseCorrectionResponse(input)

		require.NoError(t, err)
		assert.Equal(t, models.CorrectionTypeTranslation, resp.Type)
		assert.Nil(t, resp.Evaluation)
		require.NotNil(t, resp.DataTable)
	})

	testCases := []struct {
		name    string
		input   string
		wantErr error
	}{
		{
			name:    "Broken JSON",
			input:   `{"type": "correction"`,
			wantErr: models.ErrAIInvalidJSON,
		},
		{
			name: "Unknown evaluation field rejected",
			input: `{"type": "correction", "messages": [
				{"type": "DIALOGUE", "characterId": 1, "characterName": "You", "englishText": "x", "koreanText": "y"},
				{"type": "DIALOGUE", "characterId": 2, "characterName": "Leo", "englishText": "x", "koreanText": "y"}
			], "evaluation": {"overallScore": 80, "grammarScore": 80, "fluencyScore": 80, "naturalnessScore": 80, "cefr": "B1", "vibe": "good"}}`,
			wantErr: models.ErrAIInvalidJSON,
		},
		{
			name: "Correction without evaluation",
			input: `{"type": "correction", "messages": [
				{"type": "DIALOGUE", "characterId": 1, "characterName": "You", "englishText": "x", "koreanText": "y"},
				{"type": "DIALOGUE", "characterId": 2, "characterName": "Leo", "englishText": "x", "koreanText": "y"}
			]}`,
			wantErr: models.ErrAIInvalidShape,
		},
		{
			name: "Translation with evaluation",
			input: `{"type": "translation", "messages": [
				{"type": "DIALOGUE", "characterId": 1, "characterName": "You", "englishText": "x", "koreanText": "y"},
				{"type": "DIALOGUE", "characterId": 2, "characterName": "Leo", "englishText": "x", "koreanText": "y"}
			], "evaluation": {"overallScore": 80, "grammarScore": 80, "fluencyScore": 80, "naturalnessScore": 80, "cefr": "B1"}}`,
			wantErr: models.ErrAIInvalidShape,
		},
		{
			name:    "Unknown type",
			input:   `{"type": "paraphrase", "messages": []}`,
			wantErr: models.ErrAIInvalidShape,
		},
		{
			name: "Single message is too few",
			input: `{"type": "correction", "messages": [
				{"type": "DIALOGUE", "characterId": 1, "characterName": "You", "englishText": "x", "koreanText": "y"}
			], "evaluation": {"overallScore": 80, "grammarScore": 80, "fluencyScore": 80, "naturalnessScore": 80, "cefr": "B1"}}`,
			wantErr: models.ErrAIInvalidShape,
		},
		{
			name: "First message must be a dialogue",
			input: `{"type": "correction", "messages": [
				{"type": "NARRATION", "englishText": "x", "koreanText": "y"},
				{"type": "DIALOGUE", "characterId": 2, "characterName": "Leo", "englishText": "x", "koreanText": "y"}
			], "evaluation": {"overallScore": 80, "grammarScore": 80, "fluencyScore": 80, "naturalnessScore": 80, "cefr": "B1"}}`,
			wantErr: models.ErrAIInvalidShape,
		},
		{
			name: "Score out of range",
			input: `{"type": "correction", "messages": [
				{"type": "DIALOGUE", "characterId": 1, "characterName": "You", "englishText": "x", "koreanText": "y"},
				{"type": "DIALOGUE", "characterId": 2, "characterName": "Leo", "englishText": "x", "koreanText": "y"}
			], "evaluation": {"overallScore": 140, "grammarScore": 80, "fluencyScore": 80, "naturalnessScore": 80, "cefr": "B1"}}`,
			wantErr: models.ErrAIInvalidShape,
		},
		{
			name: "Missing cefr",
			input: `{"type": "correction", "messages": [
				{"type": "DIALOGUE", "characterId": 1, "characterName": "You", "englishText": "x", "koreanText": "y"},
				{"type": "DIALOGUE", "characterId": 2, "characterName": "Leo", "englishText": "x", "koreanText": "y"}
			], "evaluation": {"overallScore": 80, "grammarScore": 80, "fluencyScore": 80, "naturalnessScore": 80}}`,
			wantErr: models.ErrAIInvalidShape,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseCorrectionResponse(tc.input)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestParseQuizPickResponse(t *testing.T) {
	t.Run("Exactly five short sentences", func(t *testing.T) {
		input := `{"results": [
			{"englishText": "I like coffee.", "koreanText": "커피를 좋아해요.", "description": "ordering"},
			{"englishText": "See you tomorrow.", "koreanText": "내일 봐요."},
			{"englishText": "How much is it?", "koreanText": "얼마예요?"},
			{"englishText": "This is delicious.", "koreanText": "맛있어요."},
			{"englishText": "Can I sit here?", "koreanText": "여기 앉아도 돼요?"}
		]}`

		resp, err := ParseQuizPickResponse(input)

		require.NoError(t, err)
		require.Len(t, resp.Results, 5)
		assert.Equal(t, "ordering", resp.Results[0].Description)
	})

	t.Run("Wrong count rejected", func(t *testing.T) {
		input := `{"results": [
			{"englishText": "One.", "koreanText": "하나."},
			{"englishText": "Two.", "koreanText": "둘."}
		]}`

		_, err := ParseQuizPickResponse(input)

		assert.ErrorIs(t, err, models.ErrAIInvalidShape)
	})

	t.Run("Sentence over the word limit rejected", func(t *testing.T) {
		input := `{"results": [
			{"englishText": "This sentence is clearly way too long for a quiz.", "koreanText": "x"},
			{"englishText": "Two.", "koreanText": "둘."},
			{"englishText": "Three.", "koreanText": "셋."},
			{"englishText": "Four.", "koreanText": "넷."},
			{"englishText": "Five.", "koreanText": "다섯."}
		]}`

		_, err := ParseQuizPickResponse(input)

		assert.ErrorIs(t, err, models.ErrAIInvalidShape)
	})

	t.Run("Missing korean text rejected", func(t *testing.T) {
		input := `{"results": [
			{"englishText": "One."},
			{"englishText": "Two.", "koreanText": "둘."},
			{"englishText": "Three.", "koreanText": "셋."},
			{"englishText": "Four.", "koreanText": "넷."},
			{"englishText": "Five.", "koreanText": "다섯."}
		]}`

		_, err := ParseQuizPickResponse(input)

		assert.ErrorIs(t, err, models.ErrAIInvalidShape)
	})

	t.Run("Broken JSON", func(t *testing.T) {
		_, err := ParseQuizPickResponse("results: nope")
		assert.ErrorIs(t, err, models.ErrAIInvalidJSON)
	})

	t.Run("Unknown result field rejected", func(t *testing.T) {
		input := `{"results": [
			{"englishText": "One.", "koreanText": "하나.", "difficulty": "A1"},
			{"englishText": "Two.", "koreanText": "둘."},
			{"englishText": "Three.", "koreanText": "셋."},
			{"englishText": "Four.", "koreanText": "넷."},
			{"englishText": "Five.", "koreanText": "다섯."}
		]}`

		_, err := ParseQuizPickResponse(input)

		assert.ErrorIs(t, err, models.ErrAIInvalidJSON)
	})
}
