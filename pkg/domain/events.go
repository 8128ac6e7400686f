package domain

import "time"

// Event is implemented by everything published on the event bus.
type Event interface {
	Type() string
}

// IngestionCompleted is emitted once per ingestion run after the
// post-processing steps have finished.
type IngestionCompleted struct {
	RunID     string
	Files     int
	Failed    int
	Inserted  int
	StartedAt time.Time
}

// Type implements Event.
func (IngestionCompleted) Type() string { return "ingestion.completed" }

// BatchSentToAccounting is emitted after a batch of approved records has
// been moved to the historical tables.
type BatchSentToAccounting struct {
	Family  Family
	Date    string
	Actor   string
	Records int
	SentAt  time.Time
}

// Type implements Event.
func (BatchSentToAccounting) Type() string { return "accounting.batch_sent" }
