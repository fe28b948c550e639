package main

import (
	"flag"
	"log/slog"
	"schedule-backend/lib/configutil"
	"schedule-backend/lib/scrapers/skola24"
	"schedule-backend/lib/serviceutil"
	"schedule-backend/services/schedule"
)

func main() {
	verbose := flag.Bool("v", false, "Enable verbose logging/instrumentation.")
	configPath := flag.String("config", "config.json5", "Path to the config file.")
	flag.Parse()

	ctx := serviceutil.SignalContext()

	InitTelemetry(ctx, *verbose)

	cfg, err := configutil.ReadConfig[Config](*configPath)
	if err != nil {
		serviceutil.Fatal("read config", err)
	}
	settings, err := cfg.resolve()
	if err != nil {
		serviceutil.Fatal("invalid config", err)
	}

	client, err := skola24.NewClient(settings.client)
	if err != nil {
		serviceutil.Fatal("init skola24 client", err)
	}
	service := schedule.NewService(client, settings.service)

	slog.InfoContext(
		ctx, "starting schedule server",
		"upstream", client.Endpoints().Host,
		"lesson_cache", settings.service.LessonCacheSize,
	)
	serviceutil.StartHttpServer(ctx, settings.port, schedule.NewHandler(service, settings.handler))
}
