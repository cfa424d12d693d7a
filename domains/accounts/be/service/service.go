package service

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Service is the state reconciler: it correlates a lifecycle signal to its tenant
// account record and applies an idempotent, order-tolerant conditional update.
// Invocations are stateless; racing writers on the same key are serialized purely by
// the store's conditional-write contract.
type Service struct {
	store      Store
	correlator *Correlator
	roleName   string
	now        func() time.Time
}

// New constructs a Service with required ports. The cross-account role name falls
// back to DefaultRoleName when empty.
func New(store Store, directory Directory, roleName string) *Service {
	if store == nil {
		panic("accounts store is required")
	}
	if directory == nil {
		panic("directory port is required")
	}
	if strings.TrimSpace(roleName) == "" {
		roleName = DefaultRoleName
	}
	return &Service{
		store:      store,
		correlator: NewCorrelator(store, directory),
		roleName:   roleName,
		now:        time.Now,
	}
}

// CreateInput represents the pre-creation step that registers a tenant account
// record before any lifecycle event can arrive for it.
type CreateInput struct {
	TenantID    string
	Environment Environment
}

// Create inserts the placeholder record in PENDING/PENDING. Creation is the only
// allowed insert; an existing key fails with ErrAlreadyExists.
func (s *Service) Create(ctx context.Context, input CreateInput) (Record, error) {
	if strings.TrimSpace(input.TenantID) == "" {
		return Record{}, fmt.Errorf("tenant id is required: %w", ErrCorrelationKeyMissing)
	}
	if _, err := ParseEnvironment(string(input.Environment)); err != nil {
		return Record{}, err
	}

	rec := Record{
		TenantID:      input.TenantID,
		Environment:   input.Environment,
		AccountStatus: AccountPending,
		RoleStatus:    RolePending,
		LastModified:  s.now().UTC(),
	}
	if err := s.store.Create(ctx, rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// Get returns a record by key.
func (s *Service) Get(ctx context.Context, key Key) (Record, error) {
	return s.store.Get(ctx, key)
}

// List returns all records.
func (s *Service) List(ctx context.Context) ([]Record, error) {
	return s.store.List(ctx, ListFilter{})
}

// Outcome describes what Apply did with a signal.
type Outcome struct {
	Key     Key
	Kind    SignalKind
	Written bool
	Record  Record
}

// Apply correlates the signal and applies its transition rule. Every update is
// conditioned on the lastModified value read during correlation; a concurrent writer
// on the same key surfaces as ErrWriteConflict. Writes that would change no
// externally visible field are skipped, which makes re-applying the same signal to
// an already-updated record an observable no-op.
func (s *Service) Apply(ctx context.Context, sig Signal) (Outcome, error) {
	rec, err := s.correlator.Resolve(ctx, sig)
	if err != nil {
		return Outcome{Kind: sig.Kind()}, err
	}

	var ch Changes
	switch sg := sig.(type) {
	case ProvisionRequested:
		ch = s.provisionChanges(sg, rec)
	case AccountCreated:
		ch = s.accountCreatedChanges(sg, rec)
	case RoleDeployed:
		ch = s.roleDeployedChanges(sg, rec)
	default:
		return Outcome{Kind: sig.Kind()}, fmt.Errorf("unsupported signal kind %q", sig.Kind())
	}

	out := Outcome{Key: rec.Key(), Kind: sig.Kind(), Record: rec}
	if !ch.effectiveOn(rec) {
		return out, nil
	}

	updated, err := s.store.Update(ctx, rec.Key(), ch, rec.LastModified)
	if err != nil {
		return out, fmt.Errorf("update %s: %w", rec.Key(), err)
	}
	out.Written = true
	out.Record = updated
	return out, nil
}

// provisionChanges applies the provisioning-request rule: remap the raw status and
// record the account name chosen for the tenant. A non-empty stored name is never
// cleared by a later event that omits it.
func (s *Service) provisionChanges(sig ProvisionRequested, rec Record) Changes {
	status := mapProvisionStatus(sig.RawStatus)
	ch := Changes{AccountStatus: &status}
	if sig.AccountName != "" {
		name := sig.AccountName
		ch.AccountName = &name
	}
	return ch
}

// accountCreatedChanges applies the account-factory rule: record the assigned cloud
// account id and remap the factory state onto the account axis.
func (s *Service) accountCreatedChanges(sig AccountCreated, rec Record) Changes {
	status := mapAccountState(sig.RawState)
	ch := Changes{AccountStatus: &status}
	if sig.AccountID != "" {
		id := sig.AccountID
		ch.AccountID = &id
	}
	return ch
}

// roleDeployedChanges applies the role-deployment rule: remap the raw status onto
// the role axis and, exactly when the role becomes READY, derive the role ARN from
// the account id. A record already READY with a role ARN produces no change, so a
// redelivered success event skips the write entirely.
func (s *Service) roleDeployedChanges(sig RoleDeployed, rec Record) Changes {
	status := mapRoleStatus(sig.RawStatus)
	if status == RoleReady && rec.RoleStatus == RoleReady && rec.RoleArn != "" {
		return Changes{}
	}

	ch := Changes{RoleStatus: &status}
	if status == RoleReady {
		arn := RoleArn(sig.CloudAccountID, s.roleName)
		ch.RoleArn = &arn
	} else if rec.RoleArn != "" {
		// Keep the record invariant: roleArn is set iff the role axis is READY.
		empty := ""
		ch.RoleArn = &empty
	}
	return ch
}
