package repo

import (
	"context"
	"errors"
	"time"

	"github.com/halcyon-cloud/accountflow/domains/accounts/be/service"
	"github.com/halcyon-cloud/accountflow/platform/go/persistence"
)

// PostgresStore implements the accounts store over the shared persistence layer.
type PostgresStore struct {
	store *persistence.AccountStore
	now   func() time.Time
}

// NewPostgresStore constructs a store backed by AccountStore.
func NewPostgresStore(store *persistence.AccountStore) *PostgresStore {
	if store == nil {
		panic("account store is required")
	}
	return &PostgresStore{store: store, now: time.Now}
}

func (s *PostgresStore) Create(ctx context.Context, rec service.Record) error {
	if err := s.store.Create(ctx, toRow(rec)); err != nil {
		return mapStoreError(err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, key service.Key) (service.Record, error) {
	row, err := s.store.Get(ctx, key.TenantID, string(key.Environment))
	if err != nil {
		return service.Record{}, mapStoreError(err)
	}
	return toRecord(row), nil
}

func (s *PostgresStore) Update(ctx context.Context, key service.Key, ch service.Changes, expected time.Time) (service.Record, error) {
	row, err := s.store.Update(ctx, key.TenantID, string(key.Environment), toRowChanges(ch), expected, s.now().UTC())
	if err != nil {
		return service.Record{}, mapStoreError(err)
	}
	return toRecord(row), nil
}

func (s *PostgresStore) List(ctx context.Context, filter service.ListFilter) ([]service.Record, error) {
	name := ""
	if filter.AccountName != nil {
		name = *filter.AccountName
	}
	rows, err := s.store.ListByAccountName(ctx, name)
	if err != nil {
		return nil, mapStoreError(err)
	}

	out := make([]service.Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, toRecord(row))
	}
	return out, nil
}

func toRow(rec service.Record) persistence.AccountRow {
	return persistence.AccountRow{
		TenantID:      rec.TenantID,
		Environment:   string(rec.Environment),
		AccountStatus: string(rec.AccountStatus),
		AccountID:     rec.AccountID,
		AccountName:   rec.AccountName,
		RoleStatus:    string(rec.RoleStatus),
		RoleArn:       rec.RoleArn,
		LastModified:  rec.LastModified,
	}
}

func toRecord(row persistence.AccountRow) service.Record {
	return service.Record{
		TenantID:      row.TenantID,
		Environment:   service.Environment(row.Environment),
		AccountStatus: service.AccountStatus(row.AccountStatus),
		AccountID:     row.AccountID,
		AccountName:   row.AccountName,
		RoleStatus:    service.RoleStatus(row.RoleStatus),
		RoleArn:       row.RoleArn,
		LastModified:  row.LastModified,
	}
}

func toRowChanges(ch service.Changes) persistence.AccountChanges {
	out := persistence.AccountChanges{
		AccountID:   ch.AccountID,
		AccountName: ch.AccountName,
		RoleArn:     ch.RoleArn,
	}
	if ch.AccountStatus != nil {
		v := string(*ch.AccountStatus)
		out.AccountStatus = &v
	}
	if ch.RoleStatus != nil {
		v := string(*ch.RoleStatus)
		out.RoleStatus = &v
	}
	return out
}

func mapStoreError(err error) error {
	switch {
	case errors.Is(err, persistence.ErrNotFound):
		return service.ErrNotFound
	case errors.Is(err, persistence.ErrConflict):
		return service.ErrAlreadyExists
	case errors.Is(err, persistence.ErrStale):
		return service.ErrWriteConflict
	default:
		return err
	}
}

// Ensure interface compliance.
var _ service.Store = (*PostgresStore)(nil)
