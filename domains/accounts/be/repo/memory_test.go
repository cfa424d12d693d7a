package repo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/halcyon-cloud/accountflow/domains/accounts/be/service"
)

func newRecord(tenantID string, env service.Environment, name string) service.Record {
	return service.Record{
		TenantID:      tenantID,
		Environment:   env,
		AccountStatus: service.AccountPending,
		AccountName:   name,
		RoleStatus:    service.RolePending,
		LastModified:  time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestMemoryStoreCreateAndGet(t *testing.T) {
	store := NewMemoryStore()
	rec := newRecord("t1", service.EnvDev, "acme-dev")

	require.NoError(t, store.Create(context.Background(), rec))

	got, err := store.Get(context.Background(), rec.Key())
	require.NoError(t, err)
	require.Equal(t, rec, got)

	_, err = store.Get(context.Background(), service.Key{TenantID: "missing", Environment: service.EnvDev})
	require.ErrorIs(t, err, service.ErrNotFound)
}

func TestMemoryStoreCreateRejectsExistingKey(t *testing.T) {
	store := NewMemoryStore()
	rec := newRecord("t1", service.EnvDev, "acme-dev")
	require.NoError(t, store.Create(context.Background(), rec))

	dupe := newRecord("t1", service.EnvDev, "other-name")
	require.ErrorIs(t, store.Create(context.Background(), dupe), service.ErrAlreadyExists)

	got, err := store.Get(context.Background(), rec.Key())
	require.NoError(t, err)
	require.Equal(t, "acme-dev", got.AccountName)
}

func TestMemoryStoreConditionalUpdate(t *testing.T) {
	store := NewMemoryStore()
	rec := newRecord("t1", service.EnvDev, "acme-dev")
	require.NoError(t, store.Create(context.Background(), rec))

	status := service.AccountInProgress
	updated, err := store.Update(context.Background(), rec.Key(), service.Changes{AccountStatus: &status}, rec.LastModified)
	require.NoError(t, err)
	require.Equal(t, service.AccountInProgress, updated.AccountStatus)
	require.True(t, updated.LastModified.After(rec.LastModified) || updated.LastModified.Equal(rec.LastModified))

	// Stale expectation loses.
	ready := service.AccountReady
	_, err = store.Update(context.Background(), rec.Key(), service.Changes{AccountStatus: &ready}, rec.LastModified)
	require.ErrorIs(t, err, service.ErrWriteConflict)

	// Fresh expectation wins.
	_, err = store.Update(context.Background(), rec.Key(), service.Changes{AccountStatus: &ready}, updated.LastModified)
	require.NoError(t, err)
}

func TestMemoryStoreUpdateMissingKey(t *testing.T) {
	store := NewMemoryStore()

	status := service.AccountReady
	_, err := store.Update(context.Background(),
		service.Key{TenantID: "ghost", Environment: service.EnvDev},
		service.Changes{AccountStatus: &status}, time.Now())
	require.ErrorIs(t, err, service.ErrNotFound)
}

func TestMemoryStoreUpdateAppliesOnlyProvidedChanges(t *testing.T) {
	store := NewMemoryStore()
	rec := newRecord("t1", service.EnvDev, "acme-dev")
	require.NoError(t, store.Create(context.Background(), rec))

	id := "111122223333"
	updated, err := store.Update(context.Background(), rec.Key(), service.Changes{AccountID: &id}, rec.LastModified)
	require.NoError(t, err)
	require.Equal(t, id, updated.AccountID)
	require.Equal(t, "acme-dev", updated.AccountName)
	require.Equal(t, service.AccountPending, updated.AccountStatus)
}

func TestMemoryStoreListFiltersByAccountName(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Create(context.Background(), newRecord("t1", service.EnvDev, "shared")))
	require.NoError(t, store.Create(context.Background(), newRecord("t2", service.EnvUAT, "shared")))
	require.NoError(t, store.Create(context.Background(), newRecord("t3", service.EnvProd, "solo")))

	all, err := store.List(context.Background(), service.ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)

	name := "shared"
	shared, err := store.List(context.Background(), service.ListFilter{AccountName: &name})
	require.NoError(t, err)
	require.Len(t, shared, 2)

	missing := "nope"
	none, err := store.List(context.Background(), service.ListFilter{AccountName: &missing})
	require.NoError(t, err)
	require.Empty(t, none)
}
