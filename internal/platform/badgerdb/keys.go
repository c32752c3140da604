package badgerdb

import (
	"fmt"
	"strings"
)

const (
	deckPrefix      = "decks/"
	flashcardPrefix = "flashcards/"
	chatPrefix      = "chats/"
	chatSequenceKey = "sequences/chats"
)

func deckKey(userID, deckID string) []byte {
	return []byte(deckPrefix + userID + "/" + deckID)
}

func deckOwnerPrefix(userID string) []byte {
	return []byte(deckPrefix + userID + "/")
}

func flashcardKey(deckID, cardID string) []byte {
	return []byte(flashcardPrefix + deckID + "/" + cardID)
}

func flashcardDeckPrefix(deckID string) []byte {
	return []byte(flashcardPrefix + deckID + "/")
}

func chatKey(userID string, seq uint64) []byte {
	return []byte(chatPrefix + userID + "/" + formatSeq(seq))
}

func chatOwnerPrefix(userID string) []byte {
	return []byte(chatPrefix + userID + "/")
}

func formatSeq(seq uint64) string {
	return fmt.Sprintf("%020d", seq)
}

// validKeyPart reports whether s can be used as one key segment.
func validKeyPart(s string) bool {
	return s != "" && !strings.Contains(s, "/")
}
