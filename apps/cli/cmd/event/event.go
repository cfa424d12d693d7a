package eventcmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/halcyon-cloud/accountflow/domains/accounts/be/directory"
	"github.com/halcyon-cloud/accountflow/domains/accounts/be/event"
	"github.com/halcyon-cloud/accountflow/domains/accounts/be/repo"
	"github.com/halcyon-cloud/accountflow/domains/accounts/be/service"
	"github.com/halcyon-cloud/accountflow/platform/go/persistence"
	"github.com/halcyon-cloud/accountflow/platform/go/requesttrace"
)

// Command groups event replay helpers.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "event",
		Short: "Lifecycle event utilities (apply raw envelopes)",
	}

	cmd.AddCommand(applyCommand())
	return cmd
}

func applyCommand() *cobra.Command {
	var (
		databaseURL  string
		directoryURL string
		roleName     string
		file         string
	)

	c := &cobra.Command{
		Use:   "apply",
		Short: "Run one raw event envelope through normalize, correlate and reconcile",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := requesttrace.IntoContext(context.Background(), requesttrace.Operator(uuid.NewString()))

			raw, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read event file: %w", err)
			}

			pool, err := persistence.NewPool(ctx, persistence.PoolConfig{ConnString: databaseURL})
			if err != nil {
				return fmt.Errorf("init pool: %w", err)
			}
			defer persistence.ClosePool(pool)

			accountStore, err := persistence.NewAccountStore(ctx, pool)
			if err != nil {
				return fmt.Errorf("init account store: %w", err)
			}

			svc := service.New(repo.NewPostgresStore(accountStore), directory.NewClient(directoryURL, 5*time.Second), roleName)

			normalizer, err := event.NewNormalizer()
			if err != nil {
				return fmt.Errorf("compile event schemas: %w", err)
			}

			sig, err := normalizer.Normalize(raw)
			if err != nil {
				return fmt.Errorf("normalize event: %w", err)
			}
			if sig == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Event ignored: unrecognized source/type")
				return nil
			}

			outcome, err := svc.Apply(ctx, sig)
			if err != nil {
				return fmt.Errorf("apply %s signal: %w", sig.Kind(), err)
			}

			if outcome.Written {
				fmt.Fprintf(cmd.OutOrStdout(), "Applied %s to %s: account=%s role=%s\n",
					outcome.Kind, outcome.Key, outcome.Record.AccountStatus, outcome.Record.RoleStatus)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Skipped %s for %s: record already current\n", outcome.Kind, outcome.Key)
			}
			return nil
		},
	}

	c.Flags().StringVar(&databaseURL, "database-url", "", "PostgreSQL connection string")
	c.Flags().StringVar(&directoryURL, "directory-url", "", "Organization directory endpoint")
	c.Flags().StringVar(&roleName, "role-name", "", "Cross-account role name (defaults to the standard convention)")
	c.Flags().StringVar(&file, "file", "", "Path to the raw event envelope JSON")

	_ = c.MarkFlagRequired("database-url")
	_ = c.MarkFlagRequired("directory-url")
	_ = c.MarkFlagRequired("file")

	return c
}
