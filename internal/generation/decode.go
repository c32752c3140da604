package generation

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/phrazzld/deckmind/internal/domain"
)

// ExtractJSON trims surrounding whitespace and markdown code fences and
// narrows the text to the outermost JSON object when the model added prose
// around it.
func ExtractJSON(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			s = s[nl+1:]
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
		s = strings.TrimSpace(s)
	}
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}

// DecodeFlashcard decodes a generated card and requires it to be of type
// want with every required field present.
func DecodeFlashcard(raw string, want domain.CardType) (*domain.Flashcard, error) {
	var card domain.Flashcard
	if err := json.Unmarshal([]byte(ExtractJSON(raw)), &card); err != nil {
		return nil, malformed(raw, "decode flashcard: %w", err)
	}
	if card.Type() != want {
		return nil, malformed(raw, "expected a %s flashcard, got %s", want, card.Type())
	}
	if err := card.Content.Validate(); err != nil {
		return nil, malformed(raw, "generated flashcard is incomplete: %w", err)
	}
	return &card, nil
}

type verdictPayload struct {
	IsCorrect   *bool  `json:"isCorrect"`
	Score       *int   `json:"score"`
	Explanation string `json:"explanation"`
}

// DecodeVerdict decodes a grading reply. isCorrect and score are required
// and score must lie in [0,100].
func DecodeVerdict(raw string) (*domain.ValidationVerdict, error) {
	var p verdictPayload
	if err := json.Unmarshal([]byte(ExtractJSON(raw)), &p); err != nil {
		return nil, malformed(raw, "decode verdict: %w", err)
	}
	if p.IsCorrect == nil || p.Score == nil {
		return nil, malformed(raw, "verdict is missing isCorrect or score")
	}
	verdict := &domain.ValidationVerdict{
		IsCorrect:   *p.IsCorrect,
		Score:       *p.Score,
		Explanation: p.Explanation,
	}
	if err := verdict.Validate(); err != nil {
		return nil, malformed(raw, "%w", err)
	}
	return verdict, nil
}

type reviewDatePayload struct {
	NextReviewDate string `json:"nextReviewDate"`
	// Older prompts asked for this key.
	LegacyDate string `json:"proximaDataRevisao"`
}

// DecodeReviewDate decodes {"nextReviewDate":"YYYY-MM-DD"} into midnight of
// that day in loc.
func DecodeReviewDate(raw string, loc *time.Location) (time.Time, error) {
	var p reviewDatePayload
	if err := json.Unmarshal([]byte(ExtractJSON(raw)), &p); err != nil {
		return time.Time{}, malformed(raw, "decode review date: %w", err)
	}
	value := p.NextReviewDate
	if value == "" {
		value = p.LegacyDate
	}
	if value == "" {
		return time.Time{}, malformed(raw, "nextReviewDate is missing")
	}
	date, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(value), loc)
	if err != nil {
		return time.Time{}, malformed(raw, "parse nextReviewDate: %w", err)
	}
	return date, nil
}
