package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/halcyon-cloud/accountflow/domains/accounts/be/service"
)

// Client resolves cloud account identifiers to account names against the
// organization directory's read-only HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a Client for the directory endpoint.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if strings.TrimSpace(baseURL) == "" {
		panic("directory base URL is required")
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type accountResponse struct {
	AccountID   string `json:"accountId"`
	AccountName string `json:"accountName"`
}

// ResolveAccountName looks up the account name for the identifier. A directory
// miss maps to service.ErrNotFound so the correlator treats it like any other
// failed correlation.
func (c *Client) ResolveAccountName(ctx context.Context, accountID string) (string, error) {
	endpoint := fmt.Sprintf("%s/v1/accounts/%s", c.baseURL, url.PathEscape(accountID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("build directory request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("query directory: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return "", fmt.Errorf("account %s not in directory: %w", accountID, service.ErrNotFound)
	default:
		return "", fmt.Errorf("directory returned status %d for account %s", resp.StatusCode, accountID)
	}

	var body accountResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode directory response: %w", err)
	}
	if body.AccountName == "" {
		return "", fmt.Errorf("directory returned empty name for account %s: %w", accountID, service.ErrNotFound)
	}
	return body.AccountName, nil
}

// Ensure interface compliance.
var _ service.Directory = (*Client)(nil)
