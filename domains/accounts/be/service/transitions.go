package service

import "fmt"

// DefaultRoleName is the conventional name of the cross-account role deployed into
// every provisioned account.
const DefaultRoleName = "OrganizationAccountAccessRole"

// Status remap tables, one per signal kind. Raw values without an entry pass through
// verbatim so new upstream statuses remain visible without a deploy.

// The provisioning system reports CREATED once the provisioning *request* is
// accepted, long before the account exists. Remapping it keeps a terminal-looking
// status from appearing mid-flight.
var provisionStatusMap = map[string]AccountStatus{
	"CREATED": AccountInProgress,
}

var accountStateMap = map[string]AccountStatus{
	"SUCCEEDED": AccountReady,
}

var roleStatusMap = map[string]RoleStatus{
	"SUCCEEDED": RoleReady,
	"SUCCESS":   RoleReady,
}

func mapProvisionStatus(raw string) AccountStatus {
	if mapped, ok := provisionStatusMap[raw]; ok {
		return mapped
	}
	return AccountStatus(raw)
}

func mapAccountState(raw string) AccountStatus {
	if mapped, ok := accountStateMap[raw]; ok {
		return mapped
	}
	return AccountStatus(raw)
}

func mapRoleStatus(raw string) RoleStatus {
	if mapped, ok := roleStatusMap[raw]; ok {
		return mapped
	}
	return RoleStatus(raw)
}

// RoleArn builds the deterministic ARN of the cross-account role deployed into the
// given account.
func RoleArn(accountID, roleName string) string {
	return fmt.Sprintf("arn:aws:iam::%s:role/%s", accountID, roleName)
}
