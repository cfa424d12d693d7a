package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/halcyon-cloud/accountflow/domains/accounts/be/directory"
	"github.com/halcyon-cloud/accountflow/domains/accounts/be/event"
	"github.com/halcyon-cloud/accountflow/domains/accounts/be/repo"
	"github.com/halcyon-cloud/accountflow/domains/accounts/be/service"
)

func newTestRouter(t *testing.T, dir service.Directory) (chi.Router, *service.Service) {
	t.Helper()

	store := repo.NewMemoryStore()
	svc := service.New(store, dir, "")

	normalizer, err := event.NewNormalizer()
	require.NoError(t, err)

	h := New(svc, normalizer, zap.NewNop(), nil)
	r := chi.NewRouter()
	h.Register(r)
	return r, svc
}

func doJSON(t *testing.T, r chi.Router, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestCreateAccountEndpoint(t *testing.T) {
	r, _ := newTestRouter(t, directory.Static{})

	rr := doJSON(t, r, http.MethodPost, "/accounts", `{"tenantId":"t1","environment":"Dev"}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &payload))
	require.Equal(t, "t1", payload["tenantId"])
	require.Equal(t, "PENDING", payload["accountStatus"])
	require.Equal(t, "PENDING", payload["roleStatus"])

	// Duplicate key conflicts and leaves the record intact.
	rr = doJSON(t, r, http.MethodPost, "/accounts", `{"tenantId":"t1","environment":"Dev"}`)
	require.Equal(t, http.StatusConflict, rr.Code)
}

func TestCreateAccountRejectsBadEnvironment(t *testing.T) {
	r, _ := newTestRouter(t, directory.Static{})

	rr := doJSON(t, r, http.MethodPost, "/accounts", `{"tenantId":"t1","environment":"Staging"}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestIngestAppliesProvisionEvent(t *testing.T) {
	r, _ := newTestRouter(t, directory.Static{})

	rr := doJSON(t, r, http.MethodPost, "/accounts", `{"tenantId":"t1","environment":"Dev"}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	envelope := `{
	  "source": "aws.servicecatalog",
	  "detail": {
	    "eventName": "ProvisionProduct",
	    "requestParameters": {
	      "tags": [
	        {"key": "TenantId", "value": "t1"},
	        {"key": "Environment", "value": "Dev"}
	      ],
	      "provisioningParameters": [{"key": "AccountName", "value": "acme-dev"}]
	    },
	    "responseElements": {"recordDetail": {"status": "CREATED"}}
	  }
	}`
	rr = doJSON(t, r, http.MethodPost, "/events", envelope)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Result string `json:"result"`
		Record struct {
			AccountStatus string `json:"accountStatus"`
			AccountName   string `json:"accountName"`
		} `json:"record"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, "applied", resp.Result)
	require.Equal(t, "IN_PROGRESS", resp.Record.AccountStatus)
	require.Equal(t, "acme-dev", resp.Record.AccountName)

	// Redelivery is an observable no-op.
	rr = doJSON(t, r, http.MethodPost, "/events", envelope)
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, "skipped", resp.Result)
}

func TestIngestIgnoresUnrecognizedEvent(t *testing.T) {
	r, _ := newTestRouter(t, directory.Static{})

	rr := doJSON(t, r, http.MethodPost, "/events",
		`{"source":"aws.ec2","detail-type":"EC2 Instance State-change Notification","detail":{}}`)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Result string `json:"result"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, "ignored", resp.Result)
}

func TestIngestUncorrelatedEventIs404(t *testing.T) {
	r, _ := newTestRouter(t, directory.Static{"111122223333": "ghost-name"})

	envelope := `{
	  "source": "aws.cloudformation",
	  "detail-type": "CloudFormation StackSet StackInstance Status Change",
	  "detail": {
	    "stack-id": "arn:aws:cloudformation:eu-west-1:111122223333:stack/s/1",
	    "status-details": {"detailed-status": "SUCCEEDED"}
	  }
	}`
	rr := doJSON(t, r, http.MethodPost, "/events", envelope)
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestIngestMalformedStackIDIs400(t *testing.T) {
	r, _ := newTestRouter(t, directory.Static{})

	envelope := `{
	  "source": "aws.cloudformation",
	  "detail-type": "CloudFormation StackSet StackInstance Status Change",
	  "detail": {
	    "stack-id": "arn:aws:broken",
	    "status-details": {"detailed-status": "SUCCEEDED"}
	  }
	}`
	rr := doJSON(t, r, http.MethodPost, "/events", envelope)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestIngestAmbiguousCorrelationIs500(t *testing.T) {
	r, _ := newTestRouter(t, directory.Static{})

	for _, body := range []string{
		`{"tenantId":"t1","environment":"Dev"}`,
		`{"tenantId":"t2","environment":"Dev"}`,
	} {
		rr := doJSON(t, r, http.MethodPost, "/accounts", body)
		require.Equal(t, http.StatusCreated, rr.Code)
	}

	for _, tenantID := range []string{"t1", "t2"} {
		envelope := `{
		  "source": "aws.servicecatalog",
		  "detail": {
		    "eventName": "ProvisionProduct",
		    "requestParameters": {
		      "tags": [
		        {"key": "TenantId", "value": "` + tenantID + `"},
		        {"key": "Environment", "value": "Dev"}
		      ],
		      "provisioningParameters": [{"key": "AccountName", "value": "shared-name"}]
		    },
		    "responseElements": {"recordDetail": {"status": "CREATED"}}
		  }
		}`
		rr := doJSON(t, r, http.MethodPost, "/events", envelope)
		require.Equal(t, http.StatusOK, rr.Code)
	}

	envelope := `{
	  "source": "aws.controltower",
	  "detail": {
	    "eventName": "CreateManagedAccount",
	    "serviceEventDetails": {
	      "createManagedAccountStatus": {
	        "state": "SUCCEEDED",
	        "account": {"accountId": "111122223333", "accountName": "shared-name"}
	      }
	    }
	  }
	}`
	rr := doJSON(t, r, http.MethodPost, "/events", envelope)
	require.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestGetAndListAccounts(t *testing.T) {
	r, _ := newTestRouter(t, directory.Static{})

	rr := doJSON(t, r, http.MethodPost, "/accounts", `{"tenantId":"t1","environment":"Dev"}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = doJSON(t, r, http.MethodGet, "/accounts/Dev/t1", "")
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doJSON(t, r, http.MethodGet, "/accounts/Dev/ghost", "")
	require.Equal(t, http.StatusNotFound, rr.Code)

	rr = doJSON(t, r, http.MethodGet, "/accounts/Staging/t1", "")
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doJSON(t, r, http.MethodGet, "/accounts", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var list struct {
		Items []map[string]any `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	require.Len(t, list.Items, 1)
}
