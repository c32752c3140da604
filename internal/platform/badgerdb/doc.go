// Package badgerdb implements the store interfaces on an embedded Badger
// key-value store. Records are JSON values under path-like keys:
//
//	decks/{userId}/{deckId}
//	flashcards/{deckId}/{flashcardId}
//	chats/{userId}/{seq}
//
// where seq is a zero-padded number leased from a Badger sequence, so that
// lexical key order is insertion order.
package badgerdb
