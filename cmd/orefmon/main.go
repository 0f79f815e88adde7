// Command orefmon polls the public alert feeds, merges them into a live
// snapshot, and fans the result out over NATS, a local HTTP API, and an
// optional push-subscription side channel.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/oref-monitor/orefmon/internal/alert"
	"github.com/oref-monitor/orefmon/internal/areas"
	"github.com/oref-monitor/orefmon/internal/config"
	"github.com/oref-monitor/orefmon/internal/coordinator"
	"github.com/oref-monitor/orefmon/internal/fanout"
	"github.com/oref-monitor/orefmon/internal/httpapi"
	"github.com/oref-monitor/orefmon/internal/push"
	"github.com/oref-monitor/orefmon/internal/schema"
)

// pushRetryInterval paces subscription attempts after the in-call retry
// budget is exhausted.
const pushRetryInterval = time.Minute

var (
	configPath = flag.String("config", envOr("OREFMON_CONFIG", "orefmon.yaml"), "path to the configuration file")
	logLevel   = flag.String("log-level", envOr("OREFMON_LOG_LEVEL", "info"), "log level (debug, info, warn, error)")
	logJSON    = flag.Bool("log-json", os.Getenv("OREFMON_LOG_JSON") != "", "emit logs as JSON")
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	flag.Parse()

	logger := newLogger(*logLevel, *logJSON)
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("Daemon failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	classifier := schema.NewClassifier(cfg.Feeds.RulesURL, logger.With("component", "schema"))
	if cfg.Feeds.RulesURL != "" {
		classifier.Start()
		defer classifier.Stop()
	}

	client := coordinator.NewFeedClient(
		cfg.Feeds.CurrentURL,
		cfg.Feeds.HistoryURL,
		cfg.Feeds.Referer,
		cfg.Poll.FetchTimeout.Std(),
		logger.With("component", "feed"),
	)
	coord := coordinator.New(client, cfg.Poll.Interval.Std(), cfg.Poll.MaxAge.Std(),
		logger.With("component", "coordinator"))

	geo := fanout.NewGeoManager(cfg.Home.Lat, cfg.Home.Lon, logger.With("component", "geo"))
	coord.AddListener(geo.OnSnapshot)

	var nc *nats.Conn
	var pushEvents *fanout.EventManager
	if cfg.Bus.URL != "" {
		nc, err = nats.Connect(cfg.Bus.URL,
			nats.Name("orefmon"),
			nats.RetryOnFailedConnect(true),
			nats.MaxReconnects(-1),
			nats.ReconnectWait(2*time.Second))
		if err != nil {
			return err
		}
		defer nc.Close()

		publisher := fanout.NewNATSPublisher(nc)
		events := fanout.NewEventManager(publisher, classifier, cfg.Bus.SubjectPrefix, "poll",
			cfg.Home.Lat, cfg.Home.Lon, cfg.Home.Areas, cfg.Home.AllAreas, cfg.Poll.MaxAge.Std(),
			logger.With("component", "fanout"))
		coord.AddListener(events.OnSnapshot)

		pushEvents = fanout.NewEventManager(publisher, classifier, cfg.Bus.SubjectPrefix, "push",
			cfg.Home.Lat, cfg.Home.Lon, cfg.Home.Areas, cfg.Home.AllAreas, cfg.Poll.MaxAge.Std(),
			logger.With("component", "fanout"))
	} else {
		logger.Info("Event bus disabled, no bus.url configured")
	}

	if cfg.Feeds.AreaListURL != "" {
		checker := areas.NewChecker(cfg.Feeds.AreaListURL, 0,
			logger.With("component", "areas"),
			func(summary string) {
				logger.Error("Area list drift advisory", "summary", summary)
			})
		checker.Start()
		defer checker.Stop()
	}

	if cfg.Push.Enabled {
		manager := push.NewManager(cfg.Push.RegisterURL, cfg.Push.SubscribeURL,
			cfg.Push.StatePath, logger.With("component", "push"))
		listener := push.NewListener(cfg.Push.WebsocketURL, pushRecordHandler(pushEvents, logger),
			logger.With("component", "push"))

		// Subscription runs off the startup path: a push outage delays
		// the websocket channel only, never the poll cycle.
		listenerUp := false
		pushDone := make(chan struct{})
		go func() {
			defer close(pushDone)
			if _, err := manager.SubscribeUntilReady(ctx, cfg.Home.Areas, pushRetryInterval); err != nil {
				return
			}
			listenerUp = true
			listener.Start()
		}()
		defer func() {
			<-pushDone
			if listenerUp {
				listener.Stop()
			}
		}()
	}

	if err := coord.Start(ctx); err != nil {
		logger.Warn("First poll cycle failed, continuing in degraded mode", "error", err)
	}
	defer coord.Stop()

	api := httpapi.New(coord, geo, classifier, logger.With("component", "http"))
	srv := &http.Server{
		Addr:              cfg.HTTP.ListenAddr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP API listening", "addr", cfg.HTTP.ListenAddr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// pushRecordHandler routes websocket records into the push event manager,
// or just logs them when the bus is disabled.
func pushRecordHandler(events *fanout.EventManager, logger *slog.Logger) push.RecordHandler {
	if events == nil {
		return func(record alert.Record) {
			logger.Info("Push alert received with no bus configured",
				"area", record.Area, "category", record.Category)
		}
	}
	return events.OnRecord
}

func newLogger(level string, asJSON bool) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var handler slog.Handler
	if asJSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}
