package service

import (
	"context"
	"fmt"
)

// Correlator resolves a lifecycle signal to exactly one tenant account record,
// either directly from the embedded key or by scanning on the accountName secondary
// attribute.
type Correlator struct {
	store     Store
	directory Directory
}

// NewCorrelator constructs a Correlator with required ports.
func NewCorrelator(store Store, directory Directory) *Correlator {
	if store == nil {
		panic("store is required")
	}
	if directory == nil {
		panic("directory is required")
	}
	return &Correlator{store: store, directory: directory}
}

// Resolve maps a signal to the unique record it must update.
func (c *Correlator) Resolve(ctx context.Context, sig Signal) (Record, error) {
	switch s := sig.(type) {
	case ProvisionRequested:
		rec, err := c.store.Get(ctx, Key{TenantID: s.TenantID, Environment: s.Environment})
		if err != nil {
			return Record{}, fmt.Errorf("lookup %s/%s: %w", s.TenantID, s.Environment, err)
		}
		return rec, nil
	case AccountCreated:
		return c.matchByName(ctx, s.AccountName)
	case RoleDeployed:
		name, err := c.directory.ResolveAccountName(ctx, s.CloudAccountID)
		if err != nil {
			return Record{}, fmt.Errorf("resolve account %s: %w", s.CloudAccountID, err)
		}
		return c.matchByName(ctx, name)
	default:
		return Record{}, fmt.Errorf("unsupported signal kind %q", sig.Kind())
	}
}

// matchByName scans for records carrying the account name. The name is populated
// asynchronously by the provisioning step, so zero matches usually means the event
// arrived before that write landed; more than one match means the secondary
// uniqueness invariant is broken and the update must be withheld.
func (c *Correlator) matchByName(ctx context.Context, name string) (Record, error) {
	if name == "" {
		return Record{}, fmt.Errorf("empty account name: %w", ErrCorrelationKeyMissing)
	}

	matches, err := c.store.List(ctx, ListFilter{AccountName: &name})
	if err != nil {
		return Record{}, fmt.Errorf("scan by account name: %w", err)
	}

	switch len(matches) {
	case 0:
		return Record{}, fmt.Errorf("no record with account name %q: %w", name, ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return Record{}, fmt.Errorf("account name %q held by %d records: %w", name, len(matches), ErrAmbiguousCorrelation)
	}
}
