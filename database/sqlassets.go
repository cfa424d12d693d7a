package sqlassets

import _ "embed"

//go:embed schema/tenant_accounts.sql
var TenantAccountsSQL string
