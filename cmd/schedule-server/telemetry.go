package main

import (
	"context"
	"log/slog"
	"schedule-backend/lib/restyutil"
	"schedule-backend/lib/scrapers/skola24"
	"schedule-backend/lib/serviceutil"
	"schedule-backend/lib/telemetry"
	"time"
)

func InitTelemetry(ctx context.Context, verbose bool) {
	telemetry.InitSlog(verbose)

	if verbose {
		slog.DebugContext(ctx, "verbose logging enabled")
	}

	tel, err := telemetry.SetupFromEnv(ctx, "schedule-server")
	if err != nil {
		serviceutil.Fatal("setup telemetry", err)
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := tel.Shutdown(shutdownCtx)
		if err != nil {
			slog.Error("failed to shutdown telemetry", "err", err)
		}
	}()
	telemetry.InstrumentPerfStats(ctx)

	if !verbose {
		return
	}

	output, err := restyutil.NewFilesystemOutput(".dev/resty/skola24")
	if err != nil {
		serviceutil.Fatal("create resty output", err)
	}
	skola24.SetRestyInstrumentOutput(output)
}
