package backend

import (
	"context"

	"acconti/internal/amqp"
	"acconti/internal/services"
)

// Store is the deposit persistence surface a backend must provide.
type Store interface {
	services.DepositStore
	Close() error
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// Result contains the store, the optional sync publisher, and a cleanup
// function. Publisher is nil when AMQP is not configured or the backend
// has no external ledger to sync.
type Result struct {
	Store     Store
	Publisher *amqp.Client
	Cleanup   CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for backend creation
type Config struct {
	// Backend type
	Type Type

	// SQLite specific
	SQLiteDBPath string
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// Type represents the type of backend
type Type string

const (
	SQLiteBackend Type = "sqlite"
	MemoryBackend Type = "memory"
)

// String implements fmt.Stringer
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is valid
func (t Type) IsValid() bool {
	switch t {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
