package root

import (
	accountcmd "github.com/halcyon-cloud/accountflow/apps/cli/cmd/account"
	eventcmd "github.com/halcyon-cloud/accountflow/apps/cli/cmd/event"
)

func init() {
	Root().AddCommand(accountcmd.Command())
	Root().AddCommand(eventcmd.Command())
}
