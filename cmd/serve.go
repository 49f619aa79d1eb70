package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bimmerbailey/recase/internal/config"
	"github.com/bimmerbailey/recase/internal/notify"
	"github.com/bimmerbailey/recase/internal/server"
	"github.com/bimmerbailey/recase/internal/worker"
)

const drainTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve [flags]",
	Short: "Serve the transformation API over HTTP",
	Long: `Start the HTTP API. Small texts are transformed synchronously on
POST /v1/transform; large ones can be queued on POST /v1/jobs and polled or
followed over a websocket. Prometheus metrics are exposed on /metrics.

When kafka.enabled is set, every finished job is published to kafka.topic.

Examples:
  recase serve
  recase serve --addr 127.0.0.1:9000 --workers 8
  RECASE_KAFKA_ENABLED=true RECASE_KAFKA_BROKERS=localhost:9092 recase serve`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default from server.addr)")
	serveCmd.Flags().Int("workers", 0, "concurrent background jobs (default from server.workers)")

	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("server.workers", serveCmd.Flags().Lookup("workers"))

	rootCmd.AddCommand(serveCmd)
}

// service is a fully wired API server and the resources it owns.
type service struct {
	server *server.Server
	pool   *worker.Pool
	kafka  *notify.Kafka
	logger *slog.Logger
}

// newService wires pipeline, worker pool, optional Kafka notifier and HTTP
// server from cfg.
func newService(cfg *config.Config, logger *slog.Logger) (*service, error) {
	metrics := prometheus.NewRegistry()
	metrics.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	a, err := newApp(cfg, logger, metrics)
	if err != nil {
		return nil, err
	}

	svc := &service{logger: logger}
	workerOpts := []worker.Option{worker.WithWorkers(cfg.Server.Workers)}
	if cfg.Kafka.Enabled {
		k, err := notify.NewKafka(cfg.Kafka, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to start kafka notifier: %w", err)
		}
		svc.kafka = k
		workerOpts = append(workerOpts, worker.WithNotifier(k))
	}

	svc.pool, err = worker.New(a.pipeline, logger, workerOpts...)
	if err != nil {
		svc.closeKafka()
		return nil, err
	}

	svc.server, err = server.New(a.pipeline, a.registry, logger,
		server.WithAddr(cfg.Server.Addr),
		server.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout),
		server.WithJobs(svc.pool),
		server.WithMetrics(metrics),
		server.WithDefaults(cfg.Preservation.Config),
		server.WithMaxBytes(a.pipeline.MaxBytes()),
		server.WithCheck("style_model", a.ready),
	)
	if err != nil {
		_ = svc.Close(context.Background())
		return nil, err
	}
	return svc, nil
}

// Close drains queued jobs, then closes the notifier they publish to.
func (s *service) Close(ctx context.Context) error {
	err := s.pool.Close(ctx)
	if err != nil {
		s.logger.Warn("jobs still running at shutdown were cancelled", "error", err)
	}
	return errors.Join(err, s.closeKafka())
}

func (s *service) closeKafka() error {
	if s.kafka == nil {
		return nil
	}
	return s.kafka.Close()
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg, cmd.ErrOrStderr())

	svc, err := newService(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := svc.server.ListenAndServe(ctx)

	drainCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	return errors.Join(serveErr, svc.Close(drainCtx))
}
