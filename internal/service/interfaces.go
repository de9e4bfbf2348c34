// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"io"
	"time"

	"github.com/Veraticus/spice-tally/internal/analysis"
	"github.com/Veraticus/spice-tally/internal/model"
)

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Record operations
	SaveRecords(ctx context.Context, batch string, records []*model.TransactionRecord) (int, error)
	SaveRecordsFrom(ctx context.Context, batch, source string, records []*model.TransactionRecord) (int, error)
	LoadRecords(ctx context.Context, batch string) ([]*model.TransactionRecord, error)
	ListBatches(ctx context.Context) ([]model.Batch, error)
	DeleteBatch(ctx context.Context, batch string) error

	// Database management
	Migrate(ctx context.Context) error
	SchemaVersion(ctx context.Context) (int, error)
	Close() error
}

// RecordParser turns a raw export into transaction records.
type RecordParser interface {
	ParseFile(ctx context.Context, reader io.Reader) ([]*model.TransactionRecord, error)
}

// SummaryWriter publishes an analysis summary somewhere outside the terminal.
type SummaryWriter interface {
	Write(ctx context.Context, batch string, summary *analysis.Summary) error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
