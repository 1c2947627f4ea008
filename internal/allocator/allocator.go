// Package allocator vends unique account name and email pairs for new
// AWS accounts being provisioned.
package allocator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/opsfactory/account-mail-service/internal/directory"
)

// DefaultAccountTypes is the allow-list used when no account types are
// configured. Adjust to match the kinds of accounts vended, for example to
// map a new account onto the right OU in AWS Organizations.
var DefaultAccountTypes = []string{
	"Sales",
	"Research",
	"IT",
	"DataEngineering",
}

// DefaultCounterWidth is the number of digits, with leading zeros, in the
// sequence suffix.
const DefaultCounterWidth = 3

// maxAllocateAttempts bounds re-derivation when a conditional write loses a
// race with a concurrent allocation for the same base name.
const maxAllocateAttempts = 3

// Verifier checks or requests verification of an owner email address. The
// returned message is informational and never fails an allocation.
type Verifier interface {
	VerifyEmailAddress(ctx context.Context, address string) string
}

// Config carries the allocator settings.
type Config struct {
	// Domain is the mail domain appended to derived account emails.
	Domain string
	// CounterWidth is the zero-padded width of the sequence suffix.
	// Defaults to DefaultCounterWidth.
	CounterWidth int
	// AccountTypes is the allow-list of account types. Defaults to
	// DefaultAccountTypes.
	AccountTypes []string
}

// Allocator derives, collision-checks and persists account name and email
// pairs against the account directory.
type Allocator struct {
	repo         directory.Repository
	verifier     Verifier
	domain       string
	counterWidth int
	accountTypes []string
	now          func() time.Time
}

// New creates an Allocator backed by the given directory.
func New(repo directory.Repository, verifier Verifier, cfg Config) *Allocator {
	width := cfg.CounterWidth
	if width <= 0 {
		width = DefaultCounterWidth
	}
	accountTypes := cfg.AccountTypes
	if len(accountTypes) == 0 {
		accountTypes = DefaultAccountTypes
	}
	return &Allocator{
		repo:         repo,
		verifier:     verifier,
		domain:       cfg.Domain,
		counterWidth: width,
		accountTypes: accountTypes,
		now:          time.Now,
	}
}

// Result is a successful allocation. AccountName is the full name including
// the sequence suffix.
type Result struct {
	AccountName       string
	AccountEmail      string
	AccountType       string
	EmailVerification string
}

// Allocate validates the request, derives a unique account name and email
// (unless overridden), persists the new record, and requests verification of
// the owner address. On failure nothing is persisted.
func (a *Allocator) Allocate(ctx context.Context, req *Request) (*Result, error) {
	if err := a.validate(req); err != nil {
		return nil, err
	}

	// A lost conditional write can only be recovered by re-deriving the
	// sequence, which requires both the name and the email to be derived.
	attempts := 1
	if req.AccountName == "" && req.AccountEmail == "" {
		attempts = maxAllocateAttempts
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		record, err := a.propose(ctx, req)
		if err != nil {
			return nil, err
		}

		if err := a.repo.PutIfAbsent(ctx, record); err != nil {
			if errors.Is(err, directory.ErrAccountExists) {
				lastErr = &CollisionError{
					Message: fmt.Sprintf("An account with email %s already exists", record.AccountEmail),
				}
				continue
			}
			return nil, fmt.Errorf("storing account record: %w", err)
		}

		return &Result{
			AccountName:       record.FullName(),
			AccountEmail:      record.AccountEmail,
			AccountType:       record.AccountType,
			EmailVerification: a.verifier.VerifyEmailAddress(ctx, req.OwnerAddress),
		}, nil
	}

	return nil, lastErr
}

// propose derives the next candidate record and runs the fast-path collision
// lookups. The conditional write in Allocate remains the uniqueness guard.
func (a *Allocator) propose(ctx context.Context, req *Request) (*directory.AccountRecord, error) {
	fullName := req.AccountName
	if fullName == "" {
		baseName := deriveBaseName(req.Tags)
		sequence, err := a.nextSequence(ctx, baseName)
		if err != nil {
			return nil, err
		}
		fullName = baseName + "-" + sequence
	}

	accountEmail := req.AccountEmail
	if accountEmail == "" {
		accountEmail = fullName + "@" + a.domain
	}

	// Derived values can still violate the rules, for example when the
	// metadata carries characters outside the account name charset or the
	// joined name runs past the limit.
	if err := checkAccountName(fullName); err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}
	if err := checkAccountEmail(accountEmail); err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}

	baseName, enum, err := splitFullName(fullName)
	if err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}

	if _, err := a.repo.GetByEmail(ctx, accountEmail); err == nil {
		return nil, &CollisionError{
			Message: fmt.Sprintf("An account with email %s already exists", accountEmail),
		}
	} else if !errors.Is(err, directory.ErrAccountNotFound) {
		return nil, fmt.Errorf("checking for email collision: %w", err)
	}

	if _, err := a.repo.GetByFullName(ctx, baseName, enum); err == nil {
		return nil, &CollisionError{
			Message: fmt.Sprintf("An account with name %s already exists", fullName),
		}
	} else if !errors.Is(err, directory.ErrAccountNotFound) {
		return nil, fmt.Errorf("checking for name collision: %w", err)
	}

	return &directory.AccountRecord{
		AccountEmail: accountEmail,
		AccountID:    uuid.New().String(),
		AccountName:  baseName,
		Enum:         enum,
		AccountType:  req.AccountType,
		OwnerAddress: req.OwnerAddress,
		Tags:         req.Tags.Map(),
		Status:       directory.StatusNameAllocated,
		LastUpdated:  a.now().UTC().Format(time.RFC3339),
	}, nil
}
