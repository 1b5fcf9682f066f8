package ports

import "go.trai.ch/skip/internal/core/domain"

// HistoryStore persists one execution record per unit-of-work identity.
//
//go:generate go run go.uber.org/mock/mockgen -source=history.go -destination=mocks/mock_history.go -package=mocks
type HistoryStore interface {
	// Get retrieves the record for an identity.
	// Returns nil, nil if no record exists. An unreadable record yields an
	// error matching domain.ErrHistoryCorrupt.
	Get(identity string) (*domain.ExecutionRecord, error)

	// Put stores the record for an identity, replacing any prior record.
	// The replacement is atomic: a concurrent reader observes either the old
	// record or the new one, never a partial write.
	Put(identity string, record domain.ExecutionRecord) error
}
