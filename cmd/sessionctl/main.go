package main

import (
	"context"
	"os"

	"github.com/Skotchmaster/barangay_portal/cmd/sessionctl/commands"
)

func main() {
	if err := commands.NewRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
