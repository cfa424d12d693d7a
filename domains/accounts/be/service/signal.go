package service

// SignalKind discriminates the lifecycle signal variants.
type SignalKind string

const (
	KindProvisionRequested SignalKind = "provision_requested"
	KindAccountCreated     SignalKind = "account_created"
	KindRoleDeployed       SignalKind = "role_deployed"
)

// Signal is a normalized, source-agnostic lifecycle event. Exactly one of the three
// concrete types below flows through the correlator and reconciler per invocation.
type Signal interface {
	Kind() SignalKind
}

// ProvisionRequested reports that the product-provisioning request for a tenant was
// accepted by the provisioning system. Carries the primary key directly.
type ProvisionRequested struct {
	TenantID    string
	Environment Environment
	AccountName string
	RawStatus   string
}

func (ProvisionRequested) Kind() SignalKind { return KindProvisionRequested }

// AccountCreated reports that the account factory finished creating the cloud
// account. Carries no tenant key, only the account name chosen at provisioning time.
type AccountCreated struct {
	AccountID   string
	AccountName string
	RawState    string
}

func (AccountCreated) Kind() SignalKind { return KindAccountCreated }

// RoleDeployed reports a status change of the cross-account role deployment into the
// new account. Carries only the cloud account identifier.
type RoleDeployed struct {
	CloudAccountID string
	RawStatus      string
}

func (RoleDeployed) Kind() SignalKind { return KindRoleDeployed }
