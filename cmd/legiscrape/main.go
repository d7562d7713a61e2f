package main

import (
	"legiscrape/lib/serviceutil"
	"legiscrape/lib/telemetry"

	"legiscrape/cmd/legiscrape/commands"
)

func main() {
	ctx := serviceutil.SignalContext()

	telemetry.InitSlog(false)
	tel, err := telemetry.SetupFromEnv(ctx, "legiscrape")
	if err != nil {
		serviceutil.Fatal("failed to set up telemetry", err)
	}
	defer tel.Shutdown(ctx)

	commands.ExecuteContext(ctx)
}
