package di

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"SignalDesk/internal/domain/models"
	"SignalDesk/internal/domain/repository"
	"SignalDesk/internal/handler/api"
	"SignalDesk/internal/handler/push"
	internalrepo "SignalDesk/internal/repository"
	"SignalDesk/internal/service/chart"
	"SignalDesk/internal/service/cooldown"
	"SignalDesk/internal/service/locale"
	"SignalDesk/internal/service/market"
	"SignalDesk/internal/usecase"
	"SignalDesk/internal/view"
	pkgch "SignalDesk/pkg/clickhouse"
	"SignalDesk/pkg/clock"
	"SignalDesk/pkg/config"
	xhttp "SignalDesk/pkg/http"
	pkgkafka "SignalDesk/pkg/kafka"
	"SignalDesk/pkg/kvstore"
	applogger "SignalDesk/pkg/logger"
	"SignalDesk/pkg/metrics"
	"SignalDesk/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
}

// ProvideClock provides the system clock.
func ProvideClock() clock.Clock {
	return clock.NewSystem()
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideStore creates the key-value store configured by storage.type.
func ProvideStore(cfg *config.Config) (kvstore.Store, error) {
	switch cfg.Storage.Type {
	case "memory":
		return kvstore.NewMemory(), nil
	case "redis":
		return kvstore.NewRedis(
			kvstore.WithAddr(cfg.Storage.Redis.Host, cfg.Storage.Redis.Port),
			kvstore.WithAuth(cfg.Storage.Redis.Password, cfg.Storage.Redis.DB),
			kvstore.WithPrefix(cfg.Storage.Redis.Prefix),
		)
	case "postgres":
		return kvstore.NewPostgres(cfg.Storage.Postgres.DSN)
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Storage.Type)
	}
}

// ProvideSnapshot loads the startup configuration snapshot. Failure is not
// fatal: the session runs on an empty snapshot and degrades per policy.
func ProvideSnapshot(cfg *config.Config, log *applogger.Logger) *models.Snapshot {
	if cfg.Snapshot.Source == "" {
		log.Warn("no snapshot source configured, starting empty")
		return models.EmptySnapshot()
	}

	loader := internalrepo.NewSnapshotLoader(xhttp.NewClient(xhttp.WithTimeout(cfg.Snapshot.Timeout)))

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Snapshot.Timeout)
	defer cancel()

	snap, err := loader.Load(ctx, cfg.Snapshot.Source)
	if err != nil {
		log.Warn("snapshot load failed, starting empty", applogger.Error(err))
		return models.EmptySnapshot()
	}

	log.Info("snapshot loaded",
		applogger.String("source", cfg.Snapshot.Source),
		applogger.Int("languages", len(snap.Translations)),
		applogger.Int("pairs", len(snap.Markets.Forex)),
	)
	return snap
}

// ProvideHub creates the websocket push hub.
func ProvideHub(log *applogger.Logger) *push.Hub {
	return push.NewHub(log)
}

// ProvideView creates the render state view backed by the push hub.
func ProvideView(hub *push.Hub) *view.View {
	return view.New(hub)
}

// ProvideChartView creates the push-backed chart collaborator.
func ProvideChartView(hub *push.Hub) repository.ChartView {
	return push.NewChartView(hub)
}

// ProvideChartController creates the chart controller.
func ProvideChartController(cv repository.ChartView, log *applogger.Logger) *chart.Controller {
	return chart.NewController(cv, log)
}

// ProvideLocale creates the locale manager.
func ProvideLocale(snap *models.Snapshot, store kvstore.Store, log *applogger.Logger, cfg *config.Config) *locale.Manager {
	return locale.NewManager(snap, store, log, cfg.Session.DefaultLanguage)
}

// ProvideLedger creates the cooldown ledger.
func ProvideLedger(store kvstore.Store, clk clock.Clock, v *view.View, log *applogger.Logger, m repository.Metrics) *cooldown.Ledger {
	return cooldown.NewLedger(store, clk, v, log, m)
}

// ProvideSelector creates the market selector. Closed-market notices go out
// through the view, translated into the active language.
func ProvideSelector(
	snap *models.Snapshot,
	cfg *config.Config,
	ledger *cooldown.Ledger,
	v *view.View,
	clk clock.Clock,
	loc *locale.Manager,
) *market.Selector {
	notify := func(key string) {
		v.Notice(loc.Translate(v.Snapshot().Language, key))
	}
	return market.NewSelector(
		snap,
		cfg.Session.ForexExpirations,
		cfg.Session.OTCExpirations,
		ledger,
		v,
		clk,
		notify,
	)
}

// ProvideArchiver creates the signal archive sink configured by archive.type.
func ProvideArchiver(cfg *config.Config, log *applogger.Logger) (repository.Archiver, error) {
	switch cfg.Archive.Type {
	case "", "none":
		return internalrepo.NoopArchiver{}, nil

	case "kafka":
		producer, err := pkgkafka.NewProducer(
			pkgkafka.WithBrokers(cfg.Archive.Kafka.Brokers),
			pkgkafka.WithCompression(cfg.Archive.Kafka.Compression),
			pkgkafka.WithRequiredAcks(cfg.Archive.Kafka.RequiredAcks),
			pkgkafka.WithMaxAttempts(cfg.Archive.Kafka.MaxAttempts),
			pkgkafka.WithTimeouts(0, cfg.Archive.Kafka.WriteTimeout),
			pkgkafka.WithAsync(cfg.Archive.Kafka.Async),
			pkgkafka.WithHashByKey(true),
		)
		if err != nil {
			return nil, fmt.Errorf("kafka producer: %w", err)
		}
		log.Info("archiving signals to kafka",
			applogger.Strings("brokers", cfg.Archive.Kafka.Brokers),
			applogger.String("topic", cfg.Archive.Kafka.Topic),
		)
		return internalrepo.NewKafkaArchiver(producer, cfg.Archive.Kafka.Topic), nil

	case "clickhouse":
		ch := cfg.Archive.ClickHouse
		client, err := pkgch.NewClient(
			pkgch.WithHost(ch.Host),
			pkgch.WithPort(ch.Port),
			pkgch.WithDatabase(ch.Database),
			pkgch.WithCredentials(ch.User, ch.Password),
			pkgch.WithTimeouts(ch.DialTimeout, ch.ReadTimeout),
		)
		if err != nil {
			return nil, fmt.Errorf("clickhouse client: %w", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		table := ch.Database + ".signals"
		if err := client.InitSchema(ctx, []string{
			"CREATE DATABASE IF NOT EXISTS " + ch.Database,
			"CREATE TABLE IF NOT EXISTS " + table + ` (
				id String,
				ts DateTime64(3),
				market LowCardinality(String),
				pair LowCardinality(String),
				direction LowCardinality(String),
				confidence LowCardinality(String),
				expiration_s UInt32
			) ENGINE = MergeTree ORDER BY (market, pair, ts)`,
		}); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("clickhouse schema: %w", err)
		}

		log.Info("archiving signals to clickhouse", applogger.String("table", table))
		return clickhouseArchiver{
			Archiver: internalrepo.NewClickHouseArchiver(client.DB(), table),
			client:   client,
		}, nil

	default:
		return nil, fmt.Errorf("unknown archive type %q", cfg.Archive.Type)
	}
}

// clickhouseArchiver couples the archiver with its connection pool so Close
// tears both down.
type clickhouseArchiver struct {
	repository.Archiver
	client *pkgch.Client
}

func (a clickhouseArchiver) Close() error {
	return a.client.Close()
}

// ProvideSession creates the session engine. The simulated request latency
// is drawn uniformly from the configured delay window.
func ProvideSession(
	cfg *config.Config,
	snap *models.Snapshot,
	loc *locale.Manager,
	selector *market.Selector,
	ledger *cooldown.Ledger,
	charts *chart.Controller,
	v *view.View,
	store kvstore.Store,
	archiver repository.Archiver,
	m repository.Metrics,
	log *applogger.Logger,
	clk clock.Clock,
) *usecase.Session {
	min := cfg.Session.DelayMin
	max := cfg.Session.DelayMax
	delay := func() time.Duration {
		if max <= min {
			return min
		}
		return min + time.Duration(rand.Int63n(int64(max-min)))
	}

	return usecase.NewSession(usecase.Deps{
		Snapshot: snap,
		Locale:   loc,
		Selector: selector,
		Ledger:   ledger,
		Charts:   charts,
		View:     v,
		Store:    store,
		Archiver: archiver,
		Metrics:  m,
		Log:      log,
		Clock:    clk,
		Delay:    delay,
	})
}

// ProvideSessionHandler creates the HTTP API handler.
func ProvideSessionHandler(log *applogger.Logger, session *usecase.Session) *api.SessionHandler {
	return api.NewSessionHandler(log, session)
}

// ProvideApp assembles the application.
func ProvideApp(
	cfg *config.Config,
	log *applogger.Logger,
	handler *api.SessionHandler,
	hub *push.Hub,
	ledger *cooldown.Ledger,
	store kvstore.Store,
	archiver repository.Archiver,
) *server.App {
	return server.New(cfg, log, xhttp.Handlers(handler, hub), hub, ledger, store, archiver)
}
