package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/robfig/cron/v3"

	"fueltrends/internal/config"
	"fueltrends/internal/logger"
	"fueltrends/internal/nswfuel"
	"fueltrends/internal/pipeline"
	"fueltrends/internal/sink"
	"fueltrends/internal/snapshot"
	"fueltrends/internal/state"
)

var (
	configPath = flag.String("config", "configs/config.yaml", "Path to configuration file")
	once       = flag.Bool("once", false, "Run a single report immediately and exit")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("Configuration loaded from %s", *configPath)

	loc, err := cfg.Location()
	if err != nil {
		logger.Fatal("Failed to load timezone: %v", err)
	}
	codes, err := config.LoadCodes(cfg.Paths.CodesFile)
	if err != nil {
		logger.Fatal("Failed to load fuel code table: %v", err)
	}

	st, err := state.New(cfg.Paths.StateDB)
	if err != nil {
		logger.Fatal("Failed to initialize state store: %v", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Error("Failed to close state store: %v", err)
		}
	}()

	client := nswfuel.NewClient(nswfuel.Config{
		BaseURL: cfg.API.BaseURL,
		Key:     cfg.API.Key,
		Secret:  cfg.API.Secret,
		Region:  cfg.API.State,
		Timeout: cfg.API.Timeout,
	}, st)
	store := snapshot.NewStore(cfg.Paths.PricesDir, client)

	sinks, cleanup := buildSinks(cfg)
	defer cleanup()

	pipe := pipeline.New(pipeline.Config{
		FuelTypes:  cfg.Trends.FuelTypes,
		WindowDays: cfg.Trends.WindowDays,
		ArchiveDir: cfg.Paths.ArchiveDir,
	}, codes, store, sinks, loc)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *once {
		if err := pipe.Run(ctx); err != nil {
			logger.Fatal("Report run failed: %v", err)
		}
		return
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, cleaning up...")
		cancel()
	}()

	trigger, err := time.Parse("15:04", cfg.Trends.TriggerTime)
	if err != nil {
		logger.Fatal("Invalid trigger time: %v", err)
	}
	cronSpec := fmt.Sprintf("%d %d * * *", trigger.Minute(), trigger.Hour())

	c := cron.New(cron.WithLocation(loc))
	if _, err := c.AddFunc(cronSpec, func() {
		if err := pipe.Run(ctx); err != nil {
			logger.Error("Scheduled run failed: %v", err)
		}
	}); err != nil {
		logger.Fatal("Failed to schedule daily run: %v", err)
	}

	if cfg.Trends.RunAtStart {
		logger.Info("Running initial report cycle")
		if err := pipe.Run(ctx); err != nil {
			logger.Error("Initial run failed: %v", err)
		}
	}

	logger.Info("Scheduling daily report at %s (%s)", cfg.Trends.TriggerTime, cfg.Trends.Timezone)
	c.Start()
	<-ctx.Done()

	stopCtx := c.Stop()
	<-stopCtx.Done()
	logger.Info("Service stopped")
}

// buildSinks constructs every enabled sink. The returned cleanup
// releases sink resources on shutdown.
func buildSinks(cfg *config.Config) ([]sink.Sink, func()) {
	httpClient := resty.New()
	httpClient.SetTimeout(cfg.API.Timeout)

	var sinks []sink.Sink
	cleanup := func() {}

	if cfg.Discord.Enabled {
		sinks = append(sinks, sink.NewDiscord(cfg.Discord.WebhookURL, httpClient))
	}
	if cfg.Telegram.Enabled {
		tg, err := sink.NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			logger.Fatal("Failed to initialize Telegram sink: %v", err)
		}
		sinks = append(sinks, tg)
	}
	if cfg.Ntfy.Enabled {
		sinks = append(sinks, sink.NewNtfy(cfg.Ntfy.URI, cfg.Ntfy.AttachmentDomain, cfg.Ntfy.Token, httpClient))
	}
	if cfg.Influx.Enabled {
		influx := sink.NewInflux(cfg.Influx.URI, cfg.Influx.Token, cfg.Influx.Organization, cfg.Influx.Bucket, cfg.Influx.Timeout)
		sinks = append(sinks, influx)
		cleanup = influx.Close
	}
	if cfg.Heartbeat.Enabled {
		sinks = append(sinks, sink.NewHeartbeat(cfg.Heartbeat.URI, httpClient))
	}

	if len(sinks) == 0 {
		logger.Warn("No sinks enabled; reports will only be archived locally")
	}
	return sinks, cleanup
}
