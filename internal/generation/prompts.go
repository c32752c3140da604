package generation

import (
	"embed"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/phrazzld/deckmind/internal/domain"
)

// MaxSummarizedCards bounds how many existing cards are quoted in a
// generation prompt.
const MaxSummarizedCards = 5

//go:embed prompts/*.tmpl
var promptFS embed.FS

var prompts = template.Must(
	template.New("prompts").
		Funcs(template.FuncMap{"join": strings.Join}).
		ParseFS(promptFS, "prompts/*.tmpl"),
)

// skeletons is the JSON shape the model must answer with, per variant.
var skeletons = map[domain.CardType]string{
	domain.CardTypeFrontBack: `{"type": "FRONT_BACK", "front": "question or concept", "back": "answer"}`,
	domain.CardTypeCloze: `{"type": "CLOZE", "textWithGaps": "sentence where each hidden term is written as {{c1}}, {{c2}}", ` +
		`"gapAnswers": {"c1": "first hidden term", "c2": "second hidden term"}}`,
	domain.CardTypeTypedAnswer: `{"type": "TYPED_ANSWER", "question": "question with a short answer", ` +
		`"validAnswers": ["accepted answer", "accepted variation"]}`,
	domain.CardTypeMultipleChoice: `{"type": "MULTIPLE_CHOICE", "question": "question", ` +
		`"choices": [{"text": "option", "isCorrect": false}, {"text": "option", "isCorrect": true}], ` +
		`"correctAnswerText": "text of the correct option"}`,
}

// Skeleton returns the JSON shape requested for cardType.
func Skeleton(cardType domain.CardType) (string, error) {
	s, ok := skeletons[cardType]
	if !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedCardType, cardType)
	}
	return s, nil
}

// SummarizeCards quotes the identifying text of up to limit cards.
func SummarizeCards(cards []*domain.Flashcard, limit int) []string {
	lines := make([]string, 0, min(len(cards), limit))
	for _, card := range cards {
		if len(lines) == limit {
			break
		}
		if card.Content == nil {
			continue
		}
		label := "Question"
		if card.Type() == domain.CardTypeCloze {
			label = "Text"
		}
		lines = append(lines, fmt.Sprintf("%s: '%s'", label, card.Content.PrimaryText()))
	}
	return lines
}

// FlashcardPrompt asks for one new card of cardType in deck.
func FlashcardPrompt(
	deck *domain.Deck,
	existing []*domain.Flashcard,
	cardType domain.CardType,
	userComment string,
) (string, error) {
	skeleton, err := Skeleton(cardType)
	if err != nil {
		return "", err
	}
	return render("flashcard.tmpl", struct {
		CardType        domain.CardType
		DeckName        string
		DeckDescription string
		Existing        []string
		UserComment     string
		Skeleton        string
	}{
		CardType:        cardType,
		DeckName:        deck.Name,
		DeckDescription: strings.TrimSpace(deck.Description),
		Existing:        SummarizeCards(existing, MaxSummarizedCards),
		UserComment:     strings.TrimSpace(userComment),
		Skeleton:        skeleton,
	})
}

// GradingPrompt asks for a verdict on a free-text answer.
func GradingPrompt(question string, acceptedAnswers []string, userAnswer string) (string, error) {
	return render("grading.tmpl", struct {
		Question        string
		AcceptedAnswers []string
		UserAnswer      string
	}{question, acceptedAnswers, userAnswer})
}

// SchedulePrompt asks for the next review date of a deck given per-card
// bookkeeping. today is formatted as YYYY-MM-DD.
func SchedulePrompt(today time.Time, deckName string, cards []*domain.Flashcard) (string, error) {
	performance := make([]string, 0, len(cards))
	for _, card := range cards {
		id := card.ID
		if len(id) > 8 {
			id = id[:8]
		}
		performance = append(performance, fmt.Sprintf("Card %s: %d reviews, easiness factor %.2f",
			id, card.Repetitions, card.EasinessFactor))
	}
	return render("schedule.tmpl", struct {
		Today       string
		DeckName    string
		Performance []string
	}{today.Format(time.DateOnly), deckName, performance})
}

// ChatPrompt renders a conversation, oldest message first, for a reply to
// the last user message.
func ChatPrompt(history []*domain.ChatMessage) (string, error) {
	return render("chat.tmpl", struct {
		Messages []*domain.ChatMessage
	}{history})
}

func render(name string, data any) (string, error) {
	var b strings.Builder
	if err := prompts.ExecuteTemplate(&b, name, data); err != nil {
		return "", fmt.Errorf("failed to execute prompt template %s: %w", name, err)
	}
	return b.String(), nil
}
