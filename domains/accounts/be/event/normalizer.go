package event

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/halcyon-cloud/accountflow/domains/accounts/be/service"
)

// Recognized (source, event-type) pairs. Anything else is irrelevant, not an error.
const (
	sourceServiceCatalog = "aws.servicecatalog"
	sourceControlTower   = "aws.controltower"
	sourceCloudFormation = "aws.cloudformation"

	eventProvisionProduct     = "ProvisionProduct"
	eventCreateManagedAccount = "CreateManagedAccount"

	detailTypeStackInstance = "CloudFormation StackSet StackInstance Status Change"
)

// Tag and parameter keys the provisioning system embeds in the request.
const (
	tagTenantID      = "TenantId"
	tagEnvironment   = "Environment"
	paramAccountName = "AccountName"
)

// stack-id is a colon-delimited ARN; the owning account id sits at a fixed
// segment position (arn:partition:service:region:account:resource).
const (
	stackIDMinSegments    = 5
	stackIDAccountSegment = 4
)

// Normalizer turns a raw event envelope into a canonical lifecycle signal. Pure
// parsing: no lookups, no writes.
type Normalizer struct {
	provisionSchema *jsonschema.Schema
	accountSchema   *jsonschema.Schema
	stackSchema     *jsonschema.Schema
}

// NewNormalizer compiles the envelope schemas once.
func NewNormalizer() (*Normalizer, error) {
	n := &Normalizer{}
	for _, s := range []struct {
		name   string
		raw    string
		target **jsonschema.Schema
	}{
		{"provision_product.json", provisionProductSchema, &n.provisionSchema},
		{"create_managed_account.json", createManagedAccountSchema, &n.accountSchema},
		{"stack_instance_status.json", stackInstanceStatusSchema, &n.stackSchema},
	} {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(s.name, strings.NewReader(s.raw)); err != nil {
			return nil, fmt.Errorf("add schema %s: %w", s.name, err)
		}
		compiled, err := compiler.Compile(s.name)
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", s.name, err)
		}
		*s.target = compiled
	}
	return n, nil
}

// Normalize parses a raw envelope into a signal. Returns (nil, nil) for envelopes
// from unrecognized (source, event-type) pairs.
func (n *Normalizer) Normalize(raw []byte) (service.Signal, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}

	var schema *jsonschema.Schema
	switch {
	case env.Source == sourceServiceCatalog && env.Detail.EventName == eventProvisionProduct:
		schema = n.provisionSchema
	case env.Source == sourceControlTower && env.Detail.EventName == eventCreateManagedAccount:
		schema = n.accountSchema
	case env.Source == sourceCloudFormation && env.DetailType == detailTypeStackInstance:
		schema = n.stackSchema
	default:
		return nil, nil
	}

	if err := validate(schema, raw); err != nil {
		return nil, err
	}

	switch schema {
	case n.provisionSchema:
		return normalizeProvision(env)
	case n.accountSchema:
		return normalizeAccountCreated(env)
	default:
		return normalizeRoleDeployed(env)
	}
}

func validate(schema *jsonschema.Schema, raw []byte) error {
	var document any
	if err := json.Unmarshal(raw, &document); err != nil {
		return fmt.Errorf("decode envelope: %w", err)
	}
	if err := schema.Validate(document); err != nil {
		return fmt.Errorf("%w: envelope schema: %v", service.ErrCorrelationKeyMissing, err)
	}
	return nil
}

// normalizeProvision requires the tenant id and environment tags embedded in the
// provisioning request. The upstream never redelivers a corrected payload, so a
// missing tag is terminal for the event.
func normalizeProvision(env Envelope) (service.Signal, error) {
	params := env.Detail.RequestParameters
	if params == nil {
		return nil, fmt.Errorf("request parameters absent: %w", service.ErrCorrelationKeyMissing)
	}

	tenantID, ok := lookup(params.Tags, tagTenantID)
	if !ok || tenantID == "" {
		return nil, fmt.Errorf("tag %q absent: %w", tagTenantID, service.ErrCorrelationKeyMissing)
	}
	envTag, ok := lookup(params.Tags, tagEnvironment)
	if !ok || envTag == "" {
		return nil, fmt.Errorf("tag %q absent: %w", tagEnvironment, service.ErrCorrelationKeyMissing)
	}
	environment, err := service.ParseEnvironment(envTag)
	if err != nil {
		return nil, err
	}

	accountName, _ := lookup(params.ProvisioningParameters, paramAccountName)

	return service.ProvisionRequested{
		TenantID:    tenantID,
		Environment: environment,
		AccountName: accountName,
		RawStatus:   env.Detail.ResponseElements.RecordDetail.Status,
	}, nil
}

func normalizeAccountCreated(env Envelope) (service.Signal, error) {
	status := env.Detail.ServiceEventDetails.CreateManagedAccountStatus
	return service.AccountCreated{
		AccountID:   status.Account.AccountID,
		AccountName: status.Account.AccountName,
		RawState:    status.State,
	}, nil
}

func normalizeRoleDeployed(env Envelope) (service.Signal, error) {
	accountID, err := accountIDFromStackID(env.Detail.StackID)
	if err != nil {
		return nil, err
	}

	status := env.Detail.StatusDetails.Status
	if env.Detail.StatusDetails.DetailedStatus != "" {
		status = env.Detail.StatusDetails.DetailedStatus
	}

	return service.RoleDeployed{
		CloudAccountID: accountID,
		RawStatus:      status,
	}, nil
}

func accountIDFromStackID(stackID string) (string, error) {
	segments := strings.Split(stackID, ":")
	if len(segments) < stackIDMinSegments {
		return "", fmt.Errorf("stack id %q has %d segments: %w", stackID, len(segments), service.ErrMalformedResourceID)
	}
	accountID := segments[stackIDAccountSegment]
	if accountID == "" {
		return "", fmt.Errorf("stack id %q has empty account segment: %w", stackID, service.ErrMalformedResourceID)
	}
	return accountID, nil
}
