package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lingo-server/internal/models"
)

func testRoster() (models.Character, []models.Character) {
	user := models.Character{ID: 1, Name: "Mina", Personality: "curious"}
	npcs := []models.Character{
		{ID: 2, Name: "Leo", Personality: "cheerful barista"},
		{ID: 3, Name: "Sora"},
	}
	return user, npcs
}

func TestTruncateTail(t *testing.T) {
	assert.Equal(t, "short", TruncateTail("short", 10))
	assert.Equal(t, "cdef", TruncateTail("abcdef", 4))
	// Обрезка по рунам, не по байтам
	assert.Equal(t, "세요", TruncateTail("커피 주세요", 2))
}

func TestFormatGenerationPrompt(t *testing.T) {
	user, npcs := testRoster()

	prompt, err := FormatGenerationPrompt(user, npcs, "Ordering coffee", []string{"keep it short"}, map[string]interface{}{"mood": "neutral"})

	require.NoError(t, err)
	assert.Contains(t, prompt, `User: id=1, name="Mina"`)
	assert.Contains(t, prompt, `- id=2, name="Leo", personality="cheerful barista"`)
	assert.Contains(t, prompt, "Situation: Ordering coffee")
	assert.Contains(t, prompt, "- keep it short")
	assert.Contains(t, prompt, `{"mood":"neutral"}`)
	assert.Contains(t, prompt, `"dataTable"`)
}

func TestFormatGenerationPromptEmptySituation(t *testing.T) {
	user, npcs := testRoster()

	_, err := FormatGenerationPrompt(user, npcs, "", nil, nil)

	assert.Error(t, err)
}

func TestFormatCorrectionPrompt(t *testing.T) {
	user, npcs := testRoster()

	t.Run("Auto policy", func(t *testing.T) {
		prompt, err := FormatCorrectionPrompt(CorrectionPromptArgs{
			UserCharacter: user,
			NPCs:          npcs,
			Situation:     "Ordering coffee",
			UserText:      "I wants a coffee",
			ReplyPolicy:   models.ReplyPolicyAuto,
		})

		require.NoError(t, err)
		assert.Contains(t, prompt, `Input: "I wants a coffee"`)
		assert.Contains(t, prompt, "Choose which NPC(s) reply based on context.")
		assert.Contains(t, prompt, "messages[0] characterId=1")
		assert.NotContains(t, prompt, "[MUST REPLY]")
	})

	t.Run("Specific policy marks repliers", func(t *testing.T) {
		prompt, err := FormatCorrectionPrompt(CorrectionPromptArgs{
			UserCharacter: user,
			NPCs:          npcs,
			Situation:     "Ordering coffee",
			UserText:      "hello",
			ReplyPolicy:   models.ReplyPolicySpecific,
			MustReplyIDs:  []int64{3},
		})

		require.NoError(t, err)
		assert.Contains(t, prompt, `- id=3, name="Sora" [MUST REPLY]`)
		assert.NotContains(t, prompt, `name="Leo", personality="cheerful barista" [MUST REPLY]`)
		assert.Contains(t, prompt, "Only NPC(s) marked [MUST REPLY] respond.")
	})

	t.Run("Round robin names the next replier", func(t *testing.T) {
		prompt, err := FormatCorrectionPrompt(CorrectionPromptArgs{
			UserCharacter: user,
			NPCs:          npcs,
			Situation:     "Ordering coffee",
			UserText:      "hello",
			ReplyPolicy:   models.ReplyPolicyRoundRobin,
			NextReplier:   &npcs[1],
		})

		require.NoError(t, err)
		assert.Contains(t, prompt, `NPC id=3 ("Sora") replies first`)
	})

	t.Run("Scene history is listed", func(t *testing.T) {
		prompt, err := FormatCorrectionPrompt(CorrectionPromptArgs{
			UserCharacter: user,
			NPCs:          npcs,
			Situation:     "Ordering coffee",
			UserText:      "hello",
			SceneMessages: []SceneMessage{
				{CharacterName: "Leo", EnglishText: "Welcome in!"},
			},
		})

		require.NoError(t, err)
		assert.Contains(t, prompt, "Previous messages:\n- Leo: Welcome in!")
	})

	t.Run("Long input keeps only the tail", func(t *testing.T) {
		long := strings.Repeat("a", 600) + " tail"
		prompt, err := FormatCorrectionPrompt(CorrectionPromptArgs{
			UserCharacter: user,
			NPCs:          npcs,
			Situation:     "x",
			UserText:      long,
		})

		require.NoError(t, err)
		assert.Contains(t, prompt, "tail")
		assert.NotContains(t, prompt, strings.Repeat("a", 600))
	})

	t.Run("Empty input rejected", func(t *testing.T) {
		_, err := FormatCorrectionPrompt(CorrectionPromptArgs{UserCharacter: user, NPCs: npcs})
		assert.Error(t, err)
	})
}

func TestFormatQuizPickPrompt(t *testing.T) {
	prompt, err := FormatQuizPickPrompt([]string{"I would like a coffee.", "See you tomorrow."})

	require.NoError(t, err)
	assert.Contains(t, prompt, "- I would like a coffee.")
	assert.Contains(t, prompt, "- See you tomorrow.")
	assert.Contains(t, prompt, "EXACTLY 5 sentences")

	_, err = FormatQuizPickPrompt(nil)
	assert.Error(t, err)
}
