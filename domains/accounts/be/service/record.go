package service

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Errors returned by the accounts service layer. Every failure is terminal for the
// event being processed; the transport's redelivery is the only retry mechanism.
var (
	ErrNotFound              = errors.New("tenant account record not found")
	ErrAlreadyExists         = errors.New("tenant account record already exists")
	ErrCorrelationKeyMissing = errors.New("correlation key missing from event")
	ErrMalformedResourceID   = errors.New("malformed resource identifier")
	ErrAmbiguousCorrelation  = errors.New("account name matches more than one record")
	ErrWriteConflict         = errors.New("record was modified concurrently")
)

// Environment is the deployment environment a tenant account belongs to.
type Environment string

const (
	EnvProd Environment = "Prod"
	EnvUAT  Environment = "UAT"
	EnvDev  Environment = "Dev"
)

// ParseEnvironment validates an environment string against the closed set.
func ParseEnvironment(s string) (Environment, error) {
	switch Environment(s) {
	case EnvProd, EnvUAT, EnvDev:
		return Environment(s), nil
	default:
		return "", fmt.Errorf("%w: unknown environment %q", ErrCorrelationKeyMissing, s)
	}
}

// AccountStatus tracks the account-creation axis of a record. Upstream statuses
// outside the known set are passed through verbatim.
type AccountStatus string

const (
	AccountPending    AccountStatus = "PENDING"
	AccountInProgress AccountStatus = "IN_PROGRESS"
	AccountReady      AccountStatus = "READY"
	AccountFailed     AccountStatus = "FAILED"
)

// RoleStatus tracks the cross-account role deployment axis of a record.
type RoleStatus string

const (
	RolePending RoleStatus = "PENDING"
	RoleReady   RoleStatus = "READY"
)

// Key identifies exactly one tenant account record. Immutable once created.
type Key struct {
	TenantID    string
	Environment Environment
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s", k.TenantID, k.Environment)
}

// Record is the unit of state: one per (tenant, environment) pair. AccountName is a
// secondary correlation attribute populated by the provisioning request; AccountID
// arrives later from the account factory.
type Record struct {
	TenantID      string
	Environment   Environment
	AccountStatus AccountStatus
	AccountID     string
	AccountName   string
	RoleStatus    RoleStatus
	RoleArn       string
	LastModified  time.Time
}

// Key returns the record's primary key.
func (r Record) Key() Key {
	return Key{TenantID: r.TenantID, Environment: r.Environment}
}

// Changes is an attribute-level update: nil fields are left untouched by the store.
type Changes struct {
	AccountStatus *AccountStatus
	AccountID     *string
	AccountName   *string
	RoleStatus    *RoleStatus
	RoleArn       *string
}

// IsZero reports whether no attribute change is requested.
func (c Changes) IsZero() bool {
	return c.AccountStatus == nil && c.AccountID == nil && c.AccountName == nil &&
		c.RoleStatus == nil && c.RoleArn == nil
}

// effectiveOn reports whether applying the changes to rec would alter any externally
// visible field. Writes that change nothing are skipped, never forced.
func (c Changes) effectiveOn(rec Record) bool {
	if c.AccountStatus != nil && *c.AccountStatus != rec.AccountStatus {
		return true
	}
	if c.AccountID != nil && *c.AccountID != rec.AccountID {
		return true
	}
	if c.AccountName != nil && *c.AccountName != rec.AccountName {
		return true
	}
	if c.RoleStatus != nil && *c.RoleStatus != rec.RoleStatus {
		return true
	}
	if c.RoleArn != nil && *c.RoleArn != rec.RoleArn {
		return true
	}
	return false
}

// ListFilter narrows a store scan. A nil AccountName returns every record.
type ListFilter struct {
	AccountName *string
}

// Store abstracts the persistent key-value state store. Update is conditional on the
// record's lastModified matching the value the caller last read, so a losing writer
// in a concurrent race observes ErrWriteConflict instead of silently overwriting.
type Store interface {
	// Create inserts a new record. Returns ErrAlreadyExists when the key is taken;
	// the existing record is left untouched.
	Create(ctx context.Context, rec Record) error
	// Get returns the record for the key, or ErrNotFound.
	Get(ctx context.Context, key Key) (Record, error)
	// Update applies the non-nil changes and advances lastModified, conditioned on
	// the stored lastModified equaling expected. Returns the updated record,
	// ErrWriteConflict on a stale condition, or ErrNotFound.
	Update(ctx context.Context, key Key, ch Changes, expected time.Time) (Record, error)
	// List scans records matching the filter.
	List(ctx context.Context, filter ListFilter) ([]Record, error)
}

// Directory resolves an opaque cloud account identifier to its human-readable
// account name. Returns ErrNotFound when the directory has no such account.
type Directory interface {
	ResolveAccountName(ctx context.Context, accountID string) (string, error)
}
