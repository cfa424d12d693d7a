package accountcmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/halcyon-cloud/accountflow/domains/accounts/be/directory"
	"github.com/halcyon-cloud/accountflow/domains/accounts/be/repo"
	"github.com/halcyon-cloud/accountflow/domains/accounts/be/service"
	"github.com/halcyon-cloud/accountflow/platform/go/persistence"
)

// Command groups tenant account record helpers.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Tenant account record utilities (create/get/list)",
	}

	cmd.AddCommand(createCommand())
	cmd.AddCommand(getCommand())
	cmd.AddCommand(listCommand())
	return cmd
}

// newService builds a Postgres-backed service. The directory port is not needed
// for record management, so a static empty directory is wired in.
func newService(ctx context.Context, databaseURL string) (*service.Service, func(), error) {
	pool, err := persistence.NewPool(ctx, persistence.PoolConfig{ConnString: databaseURL})
	if err != nil {
		return nil, nil, fmt.Errorf("init pool: %w", err)
	}

	store, err := persistence.NewAccountStore(ctx, pool)
	if err != nil {
		persistence.ClosePool(pool)
		return nil, nil, fmt.Errorf("init account store: %w", err)
	}

	svc := service.New(repo.NewPostgresStore(store), directory.Static{}, "")
	return svc, func() { persistence.ClosePool(pool) }, nil
}

func createCommand() *cobra.Command {
	var (
		databaseURL string
		tenantID    string
		environment string
	)

	c := &cobra.Command{
		Use:   "create",
		Short: "Register the placeholder record for a tenant (PENDING/PENDING)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			svc, cleanup, err := newService(ctx, databaseURL)
			if err != nil {
				return err
			}
			defer cleanup()

			rec, err := svc.Create(ctx, service.CreateInput{
				TenantID:    tenantID,
				Environment: service.Environment(environment),
			})
			if err != nil {
				return fmt.Errorf("create record: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created record %s (%s/%s)\n", rec.Key(), rec.AccountStatus, rec.RoleStatus)
			return nil
		},
	}

	c.Flags().StringVar(&databaseURL, "database-url", "", "PostgreSQL connection string")
	c.Flags().StringVar(&tenantID, "tenant-id", "", "Tenant identifier")
	c.Flags().StringVar(&environment, "environment", "", "Environment (Prod, UAT, Dev)")

	_ = c.MarkFlagRequired("database-url")
	_ = c.MarkFlagRequired("tenant-id")
	_ = c.MarkFlagRequired("environment")

	return c
}

func getCommand() *cobra.Command {
	var (
		databaseURL string
		tenantID    string
		environment string
	)

	c := &cobra.Command{
		Use:   "get",
		Short: "Show one tenant account record",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			svc, cleanup, err := newService(ctx, databaseURL)
			if err != nil {
				return err
			}
			defer cleanup()

			env, err := service.ParseEnvironment(environment)
			if err != nil {
				return err
			}

			rec, err := svc.Get(ctx, service.Key{TenantID: tenantID, Environment: env})
			if err != nil {
				return fmt.Errorf("get record: %w", err)
			}

			printRecord(cmd, rec)
			return nil
		},
	}

	c.Flags().StringVar(&databaseURL, "database-url", "", "PostgreSQL connection string")
	c.Flags().StringVar(&tenantID, "tenant-id", "", "Tenant identifier")
	c.Flags().StringVar(&environment, "environment", "", "Environment (Prod, UAT, Dev)")

	_ = c.MarkFlagRequired("database-url")
	_ = c.MarkFlagRequired("tenant-id")
	_ = c.MarkFlagRequired("environment")

	return c
}

func listCommand() *cobra.Command {
	var databaseURL string

	c := &cobra.Command{
		Use:   "list",
		Short: "List all tenant account records",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			svc, cleanup, err := newService(ctx, databaseURL)
			if err != nil {
				return err
			}
			defer cleanup()

			records, err := svc.List(ctx)
			if err != nil {
				return fmt.Errorf("list records: %w", err)
			}

			for _, rec := range records {
				printRecord(cmd, rec)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d record(s)\n", len(records))
			return nil
		},
	}

	c.Flags().StringVar(&databaseURL, "database-url", "", "PostgreSQL connection string")
	_ = c.MarkFlagRequired("database-url")

	return c
}

func printRecord(cmd *cobra.Command, rec service.Record) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s\taccount=%s (%s %q)\trole=%s %s\tmodified=%s\n",
		rec.Key(), rec.AccountStatus, rec.AccountID, rec.AccountName,
		rec.RoleStatus, rec.RoleArn, rec.LastModified.Format("2006-01-02T15:04:05Z07:00"))
}
