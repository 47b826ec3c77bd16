package main

import (
	"context"
	"os"

	"macroscan-backend/cmd/macroscan/cmd"
	"macroscan-backend/lib/telemetry"
	"macroscan-backend/lib/util/serviceutil"
)

func main() {
	ctx := serviceutil.SignalContext()

	telemetry.InitSlog(os.Getenv("DEBUG") != "")

	// runs fine without a telemetry.json5, logging only
	t, err := telemetry.SetupFromEnv(ctx, "macroscan")
	if err != nil && !os.IsNotExist(err) {
		serviceutil.Fatal("failed to setup telemetry", err)
	}
	defer t.Shutdown(context.Background())
	telemetry.InstrumentPerfStats(ctx)

	cmd.ExecuteContext(ctx)
}
