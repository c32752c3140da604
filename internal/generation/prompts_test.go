package generation

import (
	"fmt"
	"testing"
	"time"

	"github.com/phrazzld/deckmind/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frontBack(front string) *domain.Flashcard {
	return &domain.Flashcard{ID: "card-" + front, ReviewState: domain.DefaultReviewState(),
		Content: &domain.FrontBack{Front: front, Back: "b"}}
}

func TestSummarizeCards(t *testing.T) {
	t.Parallel()

	cards := []*domain.Flashcard{
		frontBack("What is ATP?"),
		{Content: &domain.Cloze{TextWithGaps: "The {{c1}} stores energy", GapAnswers: map[string]string{"c1": "ATP"}}},
	}
	for i := 0; i < 10; i++ {
		cards = append(cards, frontBack(fmt.Sprintf("q%d", i)))
	}

	lines := SummarizeCards(cards, MaxSummarizedCards)
	require.Len(t, lines, MaxSummarizedCards)
	assert.Equal(t, "Question: 'What is ATP?'", lines[0])
	assert.Equal(t, "Text: 'The {{c1}} stores energy'", lines[1])

	assert.Empty(t, SummarizeCards(nil, MaxSummarizedCards))
}

func TestFlashcardPrompt(t *testing.T) {
	t.Parallel()

	deck := &domain.Deck{Name: "Biology", Description: "Cell biology basics"}

	prompt, err := FlashcardPrompt(deck, []*domain.Flashcard{frontBack("What is ATP?")}, domain.CardTypeFrontBack, "mitochondria")
	require.NoError(t, err)
	assert.Contains(t, prompt, `deck "Biology"`)
	assert.Contains(t, prompt, "Cell biology basics")
	assert.Contains(t, prompt, "- Question: 'What is ATP?'")
	assert.Contains(t, prompt, "User request: mitochondria")
	assert.Contains(t, prompt, `"type": "FRONT_BACK"`)

	prompt, err = FlashcardPrompt(deck, nil, domain.CardTypeCloze, "  ")
	require.NoError(t, err)
	assert.Contains(t, prompt, "This is the first flashcard of the deck.")
	assert.Contains(t, prompt, "pick a relevant topic")
	assert.Contains(t, prompt, `"type": "CLOZE"`)

	_, err = FlashcardPrompt(deck, nil, domain.CardType("BOGUS"), "")
	assert.ErrorIs(t, err, domain.ErrUnsupportedCardType)
}

func TestSkeleton_CoversEveryType(t *testing.T) {
	t.Parallel()

	for _, ct := range domain.CardTypes() {
		s, err := Skeleton(ct)
		require.NoError(t, err)
		assert.Contains(t, s, string(ct))
	}
}

func TestGradingPrompt(t *testing.T) {
	t.Parallel()

	prompt, err := GradingPrompt("Capital of Brazil?", []string{"Brasília", "Brasilia"}, "brasilia")
	require.NoError(t, err)
	assert.Contains(t, prompt, `"Capital of Brazil?"`)
	assert.Contains(t, prompt, `"Brasília, Brasilia"`)
	assert.Contains(t, prompt, `"brasilia"`)
	assert.Contains(t, prompt, `"isCorrect"`)
}

func TestSchedulePrompt(t *testing.T) {
	t.Parallel()

	card := frontBack("q")
	card.ID = "0123456789abcdef"
	card.Repetitions = 3
	card.EasinessFactor = 2.36

	today := time.Date(2026, 10, 17, 15, 0, 0, 0, time.UTC)
	prompt, err := SchedulePrompt(today, "Biology", []*domain.Flashcard{card})
	require.NoError(t, err)
	assert.Contains(t, prompt, "Today's date: 2026-10-17")
	assert.Contains(t, prompt, `"Biology"`)
	assert.Contains(t, prompt, "Card 01234567: 3 reviews, easiness factor 2.36")
	assert.Contains(t, prompt, `"nextReviewDate"`)
}

func TestChatPrompt(t *testing.T) {
	t.Parallel()

	prompt, err := ChatPrompt([]*domain.ChatMessage{
		{Sender: domain.SenderUser, Text: "What is osmosis?"},
		{Sender: domain.SenderLLM, Text: "Diffusion of water."},
		{Sender: domain.SenderUser, Text: "Give an example"},
	})
	require.NoError(t, err)
	assert.Contains(t, prompt, "USER: What is osmosis?\nLLM: Diffusion of water.\nUSER: Give an example\n")
}
