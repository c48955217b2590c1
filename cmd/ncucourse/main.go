package main

import (
	"ncucourse/cmd/ncucourse/commands"
	"ncucourse/lib/util/serviceutil"
)

func main() {
	commands.ExecuteContext(serviceutil.SignalContext())
}
