package directory

import (
	"context"
	"errors"
)

// Error types for repository operations.
var (
	ErrAccountNotFound = errors.New("account not found")
	ErrAccountExists   = errors.New("account already exists")
)

// Repository defines the interface for account directory storage operations.
type Repository interface {
	GetByEmail(ctx context.Context, accountEmail string) (*AccountRecord, error)
	GetOwnerAddress(ctx context.Context, accountEmail string) (string, error)
	GetByNamePrefix(ctx context.Context, baseName string) ([]*AccountRecord, error)
	GetByFullName(ctx context.Context, baseName, enum string) (*AccountRecord, error)
	GetByAccountID(ctx context.Context, accountID string) (*AccountRecord, error)
	Put(ctx context.Context, record *AccountRecord) error
	PutIfAbsent(ctx context.Context, record *AccountRecord) error
}
