package storage

import "context"

// MatchStore abstracts persistence for match saves and completed-match
// results. Implementations can be swapped for testing (mocks) or different
// backends.
type MatchStore interface {
	// Read
	LoadMatch(ctx context.Context, matchID string) ([]byte, error)
	ListRecentResults(ctx context.Context, limit int) ([]ResultRecord, error)

	// Write
	SaveMatch(ctx context.Context, matchID string, data []byte) error
	InsertMatchResult(ctx context.Context, matchID, outcome string, mode string, roomsCleared, rounds, treasure int) error

	// Lifecycle
	Close()
}

// Ensure *Store implements MatchStore at compile time.
var _ MatchStore = (*Store)(nil)
