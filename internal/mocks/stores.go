package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/deckmind/internal/domain"
	"github.com/phrazzld/deckmind/internal/store"
)

// MockDeckStore implements store.DeckStore.
type MockDeckStore struct {
	FindByOwnerFn  func(ctx context.Context, userID string) ([]*domain.Deck, error)
	CreateFn       func(ctx context.Context, deck *domain.Deck, ownerID string) (*domain.Deck, error)
	FindFn         func(ctx context.Context, deckID, ownerID string) (*domain.Deck, error)
	UpdateFieldsFn func(ctx context.Context, deckID, ownerID string, patch store.DeckPatch) error

	mu          sync.Mutex
	UpdateCalls []store.DeckPatch
	CreateCalls int
	FindCalls   int
	touched     bool
}

var _ store.DeckStore = (*MockDeckStore)(nil)

// Touched reports whether any method was called.
func (m *MockDeckStore) Touched() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.touched
}

func (m *MockDeckStore) touch() {
	m.mu.Lock()
	m.touched = true
	m.mu.Unlock()
}

// FindByOwner implements store.DeckStore.
func (m *MockDeckStore) FindByOwner(ctx context.Context, userID string) ([]*domain.Deck, error) {
	m.touch()
	if m.FindByOwnerFn != nil {
		return m.FindByOwnerFn(ctx, userID)
	}
	return []*domain.Deck{}, nil
}

// Create implements store.DeckStore.
func (m *MockDeckStore) Create(ctx context.Context, deck *domain.Deck, ownerID string) (*domain.Deck, error) {
	m.touch()
	m.mu.Lock()
	m.CreateCalls++
	m.mu.Unlock()
	if m.CreateFn != nil {
		return m.CreateFn(ctx, deck, ownerID)
	}
	created := *deck
	created.ID = "deck-new"
	created.UserID = ownerID
	return &created, nil
}

// Find implements store.DeckStore.
func (m *MockDeckStore) Find(ctx context.Context, deckID, ownerID string) (*domain.Deck, error) {
	m.touch()
	m.mu.Lock()
	m.FindCalls++
	m.mu.Unlock()
	if m.FindFn != nil {
		return m.FindFn(ctx, deckID, ownerID)
	}
	return nil, store.ErrDeckNotFound
}

// UpdateFields implements store.DeckStore.
func (m *MockDeckStore) UpdateFields(ctx context.Context, deckID, ownerID string, patch store.DeckPatch) error {
	m.touch()
	m.mu.Lock()
	m.UpdateCalls = append(m.UpdateCalls, patch)
	m.mu.Unlock()
	if m.UpdateFieldsFn != nil {
		return m.UpdateFieldsFn(ctx, deckID, ownerID, patch)
	}
	return nil
}

// MockFlashcardStore implements store.FlashcardStore.
type MockFlashcardStore struct {
	FindFn          func(ctx context.Context, deckID, flashcardID string) (*domain.Flashcard, error)
	FindAllInDeckFn func(ctx context.Context, deckID, ownerID string) ([]*domain.Flashcard, error)
	CreateFn        func(ctx context.Context, deckID, ownerID string, card *domain.Flashcard) (*domain.Flashcard, error)
	SaveAllFn       func(ctx context.Context, cards []*domain.Flashcard) error

	mu           sync.Mutex
	SaveAllCalls [][]*domain.Flashcard
	touched      bool
}

var _ store.FlashcardStore = (*MockFlashcardStore)(nil)

// Touched reports whether any method was called.
func (m *MockFlashcardStore) Touched() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.touched
}

func (m *MockFlashcardStore) touch() {
	m.mu.Lock()
	m.touched = true
	m.mu.Unlock()
}

// Find implements store.FlashcardStore.
func (m *MockFlashcardStore) Find(ctx context.Context, deckID, flashcardID string) (*domain.Flashcard, error) {
	m.touch()
	if m.FindFn != nil {
		return m.FindFn(ctx, deckID, flashcardID)
	}
	return nil, store.ErrFlashcardNotFound
}

// FindAllInDeck implements store.FlashcardStore.
func (m *MockFlashcardStore) FindAllInDeck(ctx context.Context, deckID, ownerID string) ([]*domain.Flashcard, error) {
	m.touch()
	if m.FindAllInDeckFn != nil {
		return m.FindAllInDeckFn(ctx, deckID, ownerID)
	}
	return []*domain.Flashcard{}, nil
}

// Create implements store.FlashcardStore.
func (m *MockFlashcardStore) Create(
	ctx context.Context,
	deckID, ownerID string,
	card *domain.Flashcard,
) (*domain.Flashcard, error) {
	m.touch()
	if m.CreateFn != nil {
		return m.CreateFn(ctx, deckID, ownerID, card)
	}
	created := card.Clone()
	created.ID = "card-new"
	created.DeckID = deckID
	created.UserID = ownerID
	return created, nil
}

// SaveAll implements store.FlashcardStore.
func (m *MockFlashcardStore) SaveAll(ctx context.Context, cards []*domain.Flashcard) error {
	m.touch()
	m.mu.Lock()
	m.SaveAllCalls = append(m.SaveAllCalls, cards)
	m.mu.Unlock()
	if m.SaveAllFn != nil {
		return m.SaveAllFn(ctx, cards)
	}
	return nil
}

// MockChatStore implements store.ChatStore with an in-memory log when no
// functions are set.
type MockChatStore struct {
	AddMessageFn        func(ctx context.Context, userID string, msg *domain.ChatMessage) (*domain.ChatMessage, error)
	GetLatestMessagesFn func(ctx context.Context, userID string, limit int) ([]*domain.ChatMessage, error)

	mu       sync.Mutex
	Messages map[string][]*domain.ChatMessage
}

var _ store.ChatStore = (*MockChatStore)(nil)

// AddMessage implements store.ChatStore.
func (m *MockChatStore) AddMessage(
	ctx context.Context,
	userID string,
	msg *domain.ChatMessage,
) (*domain.ChatMessage, error) {
	if m.AddMessageFn != nil {
		return m.AddMessageFn(ctx, userID, msg)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Messages == nil {
		m.Messages = make(map[string][]*domain.ChatMessage)
	}
	saved := *msg
	saved.ID = formatID(len(m.Messages[userID]) + 1)
	m.Messages[userID] = append(m.Messages[userID], &saved)
	return &saved, nil
}

// GetLatestMessages implements store.ChatStore.
func (m *MockChatStore) GetLatestMessages(ctx context.Context, userID string, limit int) ([]*domain.ChatMessage, error) {
	if m.GetLatestMessagesFn != nil {
		return m.GetLatestMessagesFn(ctx, userID, limit)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	all := m.Messages[userID]
	if len(all) > limit {
		all = all[len(all)-limit:]
	}
	out := make([]*domain.ChatMessage, len(all))
	copy(out, all)
	return out, nil
}

// Snapshot returns the messages saved for userID.
func (m *MockChatStore) Snapshot(userID string) []*domain.ChatMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.ChatMessage, len(m.Messages[userID]))
	copy(out, m.Messages[userID])
	return out
}
