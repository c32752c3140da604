package domain

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// CardType is the discriminator stored in a flashcard's "type" field.
type CardType string

// Flashcard variant tags.
const (
	CardTypeFrontBack      CardType = "FRONT_BACK"
	CardTypeCloze          CardType = "CLOZE"
	CardTypeTypedAnswer    CardType = "TYPED_ANSWER"
	CardTypeMultipleChoice CardType = "MULTIPLE_CHOICE"
)

// Bookkeeping defaults for a card that has never been reviewed.
const (
	DefaultEasinessFactor = 2.5
	DefaultRepetitions    = 0
	DefaultIntervalDays   = 1
)

// legacyCardTypes maps tags written by older clients to the canonical ones.
var legacyCardTypes = map[string]CardType{
	"FRENTE_VERSO":     CardTypeFrontBack,
	"DIGITE_RESPOSTA":  CardTypeTypedAnswer,
	"MULTIPLA_ESCOLHA": CardTypeMultipleChoice,
}

// CardTypes lists every variant tag in a stable order.
func CardTypes() []CardType {
	return []CardType{
		CardTypeFrontBack,
		CardTypeCloze,
		CardTypeTypedAnswer,
		CardTypeMultipleChoice,
	}
}

// ParseCardType resolves a tag case-insensitively, accepting legacy aliases.
// It returns ErrUnsupportedCardType for anything else.
func ParseCardType(s string) (CardType, error) {
	tag := strings.ToUpper(strings.TrimSpace(s))
	for _, t := range CardTypes() {
		if string(t) == tag {
			return t, nil
		}
	}
	if t, ok := legacyCardTypes[tag]; ok {
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedCardType, s)
}

// ReviewState is the spaced-repetition bookkeeping carried by every flashcard.
type ReviewState struct {
	EasinessFactor float64 `json:"easinessFactor"`
	Repetitions    int     `json:"repetitions"`
	IntervalDays   int     `json:"intervalDays"`
	NextReviewAt   *int64  `json:"nextReviewAt,omitempty"`
}

// DefaultReviewState returns the bookkeeping of a never-reviewed card.
func DefaultReviewState() ReviewState {
	return ReviewState{
		EasinessFactor: DefaultEasinessFactor,
		Repetitions:    DefaultRepetitions,
		IntervalDays:   DefaultIntervalDays,
	}
}

// CardContent is the variant-specific part of a flashcard.
// The set of implementations is closed: FrontBack, Cloze, TypedAnswer, MultipleChoice.
type CardContent interface {
	// Type returns the discriminator of the variant.
	Type() CardType

	// PrimaryText returns the question or text that identifies the card to a reader.
	PrimaryText() string

	// Validate reports missing required fields.
	Validate() error

	cloneContent() CardContent
}

// FrontBack is a simple recall card.
type FrontBack struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

// Cloze is a text with gaps; GapAnswers maps each gap id to its answer.
type Cloze struct {
	TextWithGaps string            `json:"textWithGaps"`
	GapAnswers   map[string]string `json:"gapAnswers"`
}

// TypedAnswer is a question answered in free text.
type TypedAnswer struct {
	Question     string   `json:"question"`
	ValidAnswers []string `json:"validAnswers"`
}

// Choice is one option of a MultipleChoice card.
type Choice struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}

// MultipleChoice is a question with an ordered list of choices.
type MultipleChoice struct {
	Question          string   `json:"question"`
	Choices           []Choice `json:"choices"`
	CorrectAnswerText string   `json:"correctAnswerText"`
}

func (*FrontBack) Type() CardType      { return CardTypeFrontBack }
func (*Cloze) Type() CardType          { return CardTypeCloze }
func (*TypedAnswer) Type() CardType    { return CardTypeTypedAnswer }
func (*MultipleChoice) Type() CardType { return CardTypeMultipleChoice }

func (c *FrontBack) PrimaryText() string      { return c.Front }
func (c *Cloze) PrimaryText() string          { return c.TextWithGaps }
func (c *TypedAnswer) PrimaryText() string    { return c.Question }
func (c *MultipleChoice) PrimaryText() string { return c.Question }

// Validate implements CardContent.
func (c *FrontBack) Validate() error {
	if strings.TrimSpace(c.Front) == "" {
		return NewValidationError("front", "cannot be empty", ErrEmptyContent)
	}
	if strings.TrimSpace(c.Back) == "" {
		return NewValidationError("back", "cannot be empty", ErrEmptyContent)
	}
	return nil
}

// Validate implements CardContent.
func (c *Cloze) Validate() error {
	if strings.TrimSpace(c.TextWithGaps) == "" {
		return NewValidationError("textWithGaps", "cannot be empty", ErrEmptyContent)
	}
	if len(c.GapAnswers) == 0 {
		return NewValidationError("gapAnswers", "must contain at least one gap", ErrEmptyContent)
	}
	return nil
}

// Validate implements CardContent.
func (c *TypedAnswer) Validate() error {
	if strings.TrimSpace(c.Question) == "" {
		return NewValidationError("question", "cannot be empty", ErrEmptyContent)
	}
	if len(c.ValidAnswers) == 0 {
		return NewValidationError("validAnswers", "must contain at least one answer", ErrEmptyContent)
	}
	return nil
}

// Validate implements CardContent.
func (c *MultipleChoice) Validate() error {
	if strings.TrimSpace(c.Question) == "" {
		return NewValidationError("question", "cannot be empty", ErrEmptyContent)
	}
	if len(c.Choices) < 2 {
		return NewValidationError("choices", "must contain at least two choices", ErrEmptyContent)
	}
	if strings.TrimSpace(c.CorrectAnswerText) == "" {
		return NewValidationError("correctAnswerText", "cannot be empty", ErrEmptyContent)
	}
	return nil
}

func (c *FrontBack) cloneContent() CardContent {
	cp := *c
	return &cp
}

func (c *Cloze) cloneContent() CardContent {
	cp := *c
	cp.GapAnswers = maps.Clone(c.GapAnswers)
	return &cp
}

func (c *TypedAnswer) cloneContent() CardContent {
	cp := *c
	cp.ValidAnswers = slices.Clone(c.ValidAnswers)
	return &cp
}

func (c *MultipleChoice) cloneContent() CardContent {
	cp := *c
	cp.Choices = slices.Clone(c.Choices)
	return &cp
}

// Flashcard is one study item: shared identity and bookkeeping plus exactly one
// variant in Content.
type Flashcard struct {
	ID     string
	DeckID string
	UserID string
	ReviewState
	Content CardContent
}

// NewFlashcard creates a flashcard with a fresh identity and default bookkeeping.
func NewFlashcard(deckID, userID string, content CardContent) (*Flashcard, error) {
	if content == nil {
		return nil, NewValidationError("content", "cannot be nil", ErrValidation)
	}
	if err := content.Validate(); err != nil {
		return nil, err
	}
	return &Flashcard{
		ID:          uuid.NewString(),
		DeckID:      deckID,
		UserID:      userID,
		ReviewState: DefaultReviewState(),
		Content:     content,
	}, nil
}

// Type returns the variant tag, or "" when Content is unset.
func (f *Flashcard) Type() CardType {
	if f.Content == nil {
		return ""
	}
	return f.Content.Type()
}

// Validate checks identity fields and the variant content.
func (f *Flashcard) Validate() error {
	if f.DeckID == "" {
		return NewValidationError("deckId", "cannot be empty", ErrValidation)
	}
	if f.UserID == "" {
		return NewValidationError("userId", "cannot be empty", ErrValidation)
	}
	if f.Content == nil {
		return NewValidationError("type", "is required", ErrValidation)
	}
	return f.Content.Validate()
}

// Clone returns a deep copy. Mutating the copy never affects the original.
func (f *Flashcard) Clone() *Flashcard {
	cp := *f
	if f.NextReviewAt != nil {
		ts := *f.NextReviewAt
		cp.NextReviewAt = &ts
	}
	if f.Content != nil {
		cp.Content = f.Content.cloneContent()
	}
	return &cp
}

// CloneInto copies the card into another deck and owner under a fresh id.
// Variant fields are copied verbatim; bookkeeping starts over.
func (f *Flashcard) CloneInto(deckID, userID string) *Flashcard {
	cp := f.Clone()
	cp.ID = uuid.NewString()
	cp.DeckID = deckID
	cp.UserID = userID
	cp.ReviewState = DefaultReviewState()
	return cp
}

// flashcardHeader holds the fields shared by every variant on the wire.
type flashcardHeader struct {
	Type   CardType `json:"type"`
	ID     string   `json:"id,omitempty"`
	DeckID string   `json:"deckId,omitempty"`
	UserID string   `json:"userId,omitempty"`
	ReviewState
}

// MarshalJSON writes a flat object with the "type" discriminator.
func (f Flashcard) MarshalJSON() ([]byte, error) {
	h := flashcardHeader{
		Type:        f.Type(),
		ID:          f.ID,
		DeckID:      f.DeckID,
		UserID:      f.UserID,
		ReviewState: f.ReviewState,
	}
	switch c := f.Content.(type) {
	case *FrontBack:
		return json.Marshal(struct {
			flashcardHeader
			*FrontBack
		}{h, c})
	case *Cloze:
		return json.Marshal(struct {
			flashcardHeader
			*Cloze
		}{h, c})
	case *TypedAnswer:
		return json.Marshal(struct {
			flashcardHeader
			*TypedAnswer
		}{h, c})
	case *MultipleChoice:
		return json.Marshal(struct {
			flashcardHeader
			*MultipleChoice
		}{h, c})
	case nil:
		return nil, fmt.Errorf("%w: flashcard %s has no content", ErrSerialization, f.ID)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownCardType, c)
	}
}

// UnmarshalJSON dispatches on the "type" discriminator. Unknown or missing
// tags fail with ErrUnknownCardType; there is no default variant.
func (f *Flashcard) UnmarshalJSON(data []byte) error {
	h := flashcardHeader{ReviewState: DefaultReviewState()}
	if err := json.Unmarshal(data, &h); err != nil {
		return fmt.Errorf("%w: %v", ErrSerialization, err)
	}

	var content CardContent
	switch canonicalTag(h.Type) {
	case CardTypeFrontBack:
		content = &FrontBack{}
	case CardTypeCloze:
		content = &Cloze{}
	case CardTypeTypedAnswer:
		content = &TypedAnswer{}
	case CardTypeMultipleChoice:
		content = &MultipleChoice{}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCardType, h.Type)
	}
	if err := json.Unmarshal(data, content); err != nil {
		return fmt.Errorf("%w: %v", ErrSerialization, err)
	}

	*f = Flashcard{
		ID:          h.ID,
		DeckID:      h.DeckID,
		UserID:      h.UserID,
		ReviewState: h.ReviewState,
		Content:     content,
	}
	return nil
}

// canonicalTag maps legacy aliases onto canonical tags. The discriminator is
// matched exactly, unlike ParseCardType which also folds case.
func canonicalTag(t CardType) CardType {
	if c, ok := legacyCardTypes[string(t)]; ok {
		return c
	}
	return t
}
