package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/pprof"
	"net/url"
	"os"
	"reflect"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/aukilabs/go-tooling/pkg/cli"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/events"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/aukilabs/go-tooling/pkg/metrics"
	"github.com/aukilabs/sprout/featureflag"
	sprouthttp "github.com/aukilabs/sprout/http"
	"github.com/aukilabs/sprout/modules"
	"github.com/aukilabs/sprout/modules/blade"
	"github.com/aukilabs/sprout/modules/scatter"
	"github.com/aukilabs/sprout/smoketest"
	swebsocket "github.com/aukilabs/sprout/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/encoding/json"
	"golang.org/x/net/websocket"
)

var (
	// The Sprout version number. Set at build.
	version = "v0.1.0"

	infoGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name:        "sprout_info",
		Help:        "Sprout information.",
		ConstLabels: prometheus.Labels{"version": version},
	})
)

// This will effectively disable obfuscation of the config struct. Without it, the keys would get obfuscated causing the cli package to generate garbled command-line options.
// https://github.com/burrowers/garble/issues/403
var _ = reflect.TypeOf(config{})

type config struct {
	Addr               string        `cli:""        env:"SPROUT_ADDR"                  help:"Listening address for client connections."`
	AdminAddr          string        `cli:""        env:"SPROUT_ADMIN_ADDR"            help:"Admin listening address."`
	PublicEndpoint     string        `cli:""        env:"SPROUT_PUBLIC_ENDPOINT"       help:"The public endpoint where this Sprout server is reachable."`
	LogLevel           string        `cli:""        env:"SPROUT_LOG_LEVEL"             help:"Log level (debug|info|warning|error)."`
	LogIndent          bool          `cli:""        env:"SPROUT_LOG_INDENT"            help:"Indent logs."`
	ClientIdleTimeout  time.Duration `cli:",hidden" env:"SPROUT_CLIENT_IDLE_TIMEOUT"   help:"Time until an idle client will be disconnected"`
	LogSummaryInterval time.Duration `cli:",hidden" env:"SPROUT_LOG_SUMMARY_INTERVAL"  help:"The duration between each log summary by connection."`
	MaxBatchSize       int           `cli:",hidden" env:"SPROUT_MAX_BATCH_SIZE"        help:"The maximum number of blades generated by a request."`
	MaxScatterPoints   int           `cli:",hidden" env:"SPROUT_MAX_SCATTER_POINTS"    help:"The maximum number of points sampled by a request."`
	Workers            int           `cli:",hidden" env:"SPROUT_WORKERS"               help:"The number of goroutines generating a batch. Zero uses all CPUs."`
	Events             eventsConfig  `cli:",hidden" env:"-"                            help:"Event pusher configuration."`
	FeatureFlags       []string      `cli:",hidden" env:"SPROUT_FEATURE_FLAGS"         help:"Comma separated feature flags"`
	Version            bool          `cli:""        env:"-"                            help:"Show version."`
	Help               bool          `cli:""        env:"-"                            help:"Show help."`
}

type eventsConfig struct {
	Endpoint      string        `cli:",hidden" env:"SPROUT_EVENTS_ENDPOINT"       help:"Endpoint to where events are pushed."`
	FlushInterval time.Duration `cli:",hidden" env:"SPROUT_EVENTS_FLUSH_INTERVAL" help:"The duration between each event flush."`
	BatchSize     int           `cli:",hidden" env:"SPROUT_EVENTS_BATCH_SIZE"     help:"The maximum number of events sent at once."`
	QueueSize     int           `cli:",hidden" env:"SPROUT_EVENTS_QUEUE_SIZE"     help:"The size of the queue where events are stored."`
}

func main() {
	conf := config{
		Addr:               ":4100",
		AdminAddr:          ":18290",
		PublicEndpoint:     "http://localhost:4100",
		LogLevel:           logs.InfoLevel.String(),
		ClientIdleTimeout:  time.Minute * 5,
		LogSummaryInterval: time.Minute,
		MaxBatchSize:       blade.DefaultMaxBatchSize,
		MaxScatterPoints:   scatter.DefaultMaxPoints,
		Events: eventsConfig{
			FlushInterval: events.DefaultFlushInterval,
			BatchSize:     events.DefaultBatchSize,
			QueueSize:     events.DefaultQueueSize,
		},
	}

	// set the information gauge to 1, useful for SUM query
	infoGauge.Set(1)

	ctx, cancel := cli.ContextWithSignals(context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	cli.Register().
		Help("Starts Sprout server.").
		Options(&conf)
	cli.Load()

	if conf.Version {
		fmt.Println(version)
		os.Exit(0)
	}

	if err := validateConfig(conf); err != nil {
		logs.Fatal(err)
	}

	logs.SetLevel(logs.ParseLevel(conf.LogLevel))
	logs.Encoder = json.Marshal
	if conf.LogIndent {
		logs.Encoder = func(v any) ([]byte, error) {
			return json.MarshalIndent(v, "", "  ")
		}
	}

	errors.Encoder = json.Marshal

	if conf.Events.Endpoint != "" {
		eventsPusher := events.Pusher{
			Endpoint:      conf.Events.Endpoint,
			FlushInterval: conf.Events.FlushInterval,
			BatchSize:     conf.Events.BatchSize,
			QueueSize:     conf.Events.QueueSize,
			Transport:     metrics.HTTPTransport(http.DefaultTransport),
		}
		go eventsPusher.Start()
		defer eventsPusher.Close()

		eventsLogger := events.Logger{
			Pusher:           &eventsPusher,
			SDKType:          "sprout",
			SDKVersionFamily: version,
		}
		logs.SetLogger(eventsLogger.Log)
	}

	featureFlags := featureflag.New(conf.FeatureFlags)

	// The server is ready once a smoke test passed.
	var ready atomic.Bool
	readinessCheck := func() bool {
		return ready.Load()
	}

	smokeTest := smoketest.HandleSmokeTest(smoketest.Options{
		Workers: conf.Workers,
		SendResult: func(_ context.Context, r smoketest.Report) error {
			ready.Store(r.OK)
			return nil
		},
	})

	var service http.ServeMux
	service.Handle("/health", sprouthttp.HandleWithCORS(http.HandlerFunc(sprouthttp.HandleHealthCheck)))
	service.Handle("/version", sprouthttp.HandleWithCORS(sprouthttp.HandleVersion(version)))
	service.Handle("/ready", sprouthttp.HandleWithCORS(sprouthttp.HandleReadyCheck(readinessCheck)))

	service.Handle("/", sprouthttp.HandleWithCORS(websocket.Server{
		Handler: func(conn *websocket.Conn) {
			defer conn.Close()

			var rh swebsocket.Handler = &swebsocket.RealtimeHandler{
				ClientIdleTimeout: conf.ClientIdleTimeout,
				Modules: []modules.Module{
					&scatter.Module{
						FeatureFlags: featureFlags,
						MaxPoints:    conf.MaxScatterPoints,
					},
					&blade.Module{
						FeatureFlags: featureFlags,
						MaxBatchSize: conf.MaxBatchSize,
						Workers:      conf.Workers,
					},
				},
			}
			h := swebsocket.HandlerWithLogs(rh, conf.LogSummaryInterval)
			h = swebsocket.HandlerWithMetrics(h, conf.PublicEndpoint)
			defer h.Close()

			swebsocket.Handle(ctx, conn, h)
		},
	}))

	service.Handle("/ping", websocket.Server{
		Handler: func(ws *websocket.Conn) {
			defer ws.Close()
			io.Copy(ws, ws)
		},
	})

	var admin http.ServeMux
	admin.Handle("/metrics", promhttp.Handler())
	admin.HandleFunc("/health", sprouthttp.HandleHealthCheck)
	admin.HandleFunc("/smoke-test", smokeTest)
	admin.HandleFunc("/debug/pprof/", pprof.Index)
	admin.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	admin.HandleFunc("/debug/pprof/profile", pprof.Profile)
	admin.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	admin.HandleFunc("/debug/pprof/trace", pprof.Trace)
	admin.Handle("/debug/pprof/goroutine", pprof.Handler("goroutine"))
	admin.Handle("/debug/pprof/heap", pprof.Handler("heap"))
	admin.Handle("/debug/pprof/threadcreate", pprof.Handler("threadcreate"))
	admin.Handle("/debug/pprof/block", pprof.Handler("block"))
	admin.HandleFunc("/ready", sprouthttp.HandleReadyCheck(readinessCheck))

	// Startup self check. Readiness stays false until it passes.
	go func() {
		report := smoketest.Run(ctx, smoketest.Request{
			Seed:  time.Now().UnixNano(),
			Count: smoketest.DefaultCount,
		}, conf.Workers)
		ready.Store(report.OK)

		if !report.OK {
			logs.WithTag("checks", report.Checks).
				Error(errors.New("startup smoke test failed"))
		}
	}()

	logs.WithTag("version", version).
		WithTag("log_level", conf.LogLevel).
		WithTag("endpoint", conf.PublicEndpoint).
		WithTag("feature_flags", featureFlags.List()).
		Info("starting sprout server")

	sprouthttp.ListenAndServe(ctx,
		&http.Server{Addr: conf.Addr, Handler: metrics.HTTPHandler(&service,
			sprouthttp.MetricsPathFormatter)},
		&http.Server{Addr: conf.AdminAddr, Handler: &admin},
	)
}

func validateConfig(conf config) error {
	if _, err := url.ParseRequestURI(conf.PublicEndpoint); err != nil {
		return errors.New("invalid public endpoint").Wrap(err)
	}

	if conf.MaxBatchSize < 1 {
		return errors.New("max batch size must be at least 1").
			WithTag("max_batch_size", conf.MaxBatchSize)
	}

	if conf.MaxScatterPoints < 1 {
		return errors.New("max scatter points must be at least 1").
			WithTag("max_scatter_points", conf.MaxScatterPoints)
	}

	if conf.Workers < 0 {
		return errors.New("workers must not be negative").
			WithTag("workers", conf.Workers)
	}

	if conf.ClientIdleTimeout <= 0 {
		return errors.New("client idle timeout must be positive").
			WithTag("client_idle_timeout", conf.ClientIdleTimeout)
	}

	return nil
}
