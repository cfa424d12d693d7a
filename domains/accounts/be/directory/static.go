package directory

import (
	"context"
	"fmt"

	"github.com/halcyon-cloud/accountflow/domains/accounts/be/service"
)

// Static is a fixed accountID -> accountName mapping, used by tests and the CLI
// when no directory endpoint is available.
type Static map[string]string

func (s Static) ResolveAccountName(ctx context.Context, accountID string) (string, error) {
	name, ok := s[accountID]
	if !ok {
		return "", fmt.Errorf("account %s not in static directory: %w", accountID, service.ErrNotFound)
	}
	return name, nil
}

// Ensure interface compliance.
var _ service.Directory = Static(nil)
