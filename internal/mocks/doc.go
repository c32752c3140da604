// Package mocks provides centralized mock implementations for testing.
//
// Each mock has a function field per interface method. A nil function falls
// back to the mock's default values, so tests only set what they exercise:
//
//	decks := &mocks.MockDeckStore{
//	    FindFn: func(ctx context.Context, deckID, ownerID string) (*domain.Deck, error) {
//	        return nil, store.ErrDeckNotFound
//	    },
//	}
//
// Mocks that are called from background goroutines record their calls under
// a mutex.
package mocks
