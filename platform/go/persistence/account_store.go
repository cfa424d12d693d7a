package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	sqlassets "github.com/halcyon-cloud/accountflow/database"
)

// Errors surfaced by the persistence layer. Callers map these to domain errors.
var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record already exists")
	ErrStale    = errors.New("record changed since it was read")
)

// AccountRow mirrors the tenant_accounts table.
type AccountRow struct {
	TenantID      string
	Environment   string
	AccountStatus string
	AccountID     string
	AccountName   string
	RoleStatus    string
	RoleArn       string
	LastModified  time.Time
}

// AccountChanges carries attribute-level updates; nil fields keep the stored value.
type AccountChanges struct {
	AccountStatus *string
	AccountID     *string
	AccountName   *string
	RoleStatus    *string
	RoleArn       *string
}

// AccountStore persists tenant account records with conditional writes. Updates are
// compare-and-set on last_modified so concurrent reconciler invocations racing on
// the same key cannot lose each other's writes.
type AccountStore struct {
	pool *pgxpool.Pool
}

// NewAccountStore constructs the store and ensures the backing table exists.
func NewAccountStore(ctx context.Context, pool *pgxpool.Pool) (*AccountStore, error) {
	if pool == nil {
		panic("AccountStore requires pool")
	}
	if _, err := pool.Exec(ctx, sqlassets.TenantAccountsSQL); err != nil {
		return nil, fmt.Errorf("ensure tenant_accounts table: %w", err)
	}
	return &AccountStore{pool: pool}, nil
}

const accountColumns = `tenant_id, environment, account_status, account_id, account_name, role_status, role_arn, last_modified`

// Create inserts a new record. The primary key constraint is the only arbiter of
// uniqueness; an existing key returns ErrConflict and leaves the row untouched.
func (s *AccountStore) Create(ctx context.Context, row AccountRow) error {
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO tenant_accounts (`+accountColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (tenant_id, environment) DO NOTHING`,
		row.TenantID, row.Environment, row.AccountStatus, row.AccountID,
		row.AccountName, row.RoleStatus, row.RoleArn, row.LastModified,
	)
	if err != nil {
		return fmt.Errorf("insert tenant account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrConflict
	}
	return nil
}

// Get returns the record for the key.
func (s *AccountStore) Get(ctx context.Context, tenantID, environment string) (AccountRow, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM tenant_accounts
		WHERE tenant_id = $1 AND environment = $2`,
		tenantID, environment,
	)
	rec, err := scanAccountRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return AccountRow{}, ErrNotFound
		}
		return AccountRow{}, fmt.Errorf("select tenant account: %w", err)
	}
	return rec, nil
}

// Update applies the non-nil changes and advances last_modified, conditioned on the
// stored last_modified matching expected. Distinguishes a missing row (ErrNotFound)
// from a lost race (ErrStale).
func (s *AccountStore) Update(ctx context.Context, tenantID, environment string, ch AccountChanges, expected, now time.Time) (AccountRow, error) {
	sets := []string{"last_modified = $3"}
	args := []any{tenantID, environment, now, expected}

	appendSet := func(column string, value *string) {
		if value == nil {
			return
		}
		args = append(args, *value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	appendSet("account_status", ch.AccountStatus)
	appendSet("account_id", ch.AccountID)
	appendSet("account_name", ch.AccountName)
	appendSet("role_status", ch.RoleStatus)
	appendSet("role_arn", ch.RoleArn)

	query := fmt.Sprintf(`
		UPDATE tenant_accounts
		SET %s
		WHERE tenant_id = $1 AND environment = $2 AND last_modified = $4
		RETURNING %s`, strings.Join(sets, ", "), accountColumns)

	row := s.pool.QueryRow(ctx, query, args...)
	rec, err := scanAccountRow(row)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return AccountRow{}, fmt.Errorf("update tenant account: %w", err)
	}

	// Condition failed: decide between a missing row and a concurrent write.
	if _, getErr := s.Get(ctx, tenantID, environment); getErr != nil {
		return AccountRow{}, getErr
	}
	return AccountRow{}, ErrStale
}

// ListByAccountName scans for records carrying the account name. An empty name
// returns every record.
func (s *AccountStore) ListByAccountName(ctx context.Context, accountName string) ([]AccountRow, error) {
	query := `SELECT ` + accountColumns + ` FROM tenant_accounts ORDER BY tenant_id, environment`
	args := []any{}
	if accountName != "" {
		query = `SELECT ` + accountColumns + ` FROM tenant_accounts WHERE account_name = $1 ORDER BY tenant_id, environment`
		args = append(args, accountName)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("scan tenant accounts: %w", err)
	}
	defer rows.Close()

	var out []AccountRow
	for rows.Next() {
		rec, err := scanAccountRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tenant account row: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tenant accounts: %w", err)
	}
	return out, nil
}

func scanAccountRow(row pgx.Row) (AccountRow, error) {
	var rec AccountRow
	err := row.Scan(
		&rec.TenantID, &rec.Environment, &rec.AccountStatus, &rec.AccountID,
		&rec.AccountName, &rec.RoleStatus, &rec.RoleArn, &rec.LastModified,
	)
	return rec, err
}
