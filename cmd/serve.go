package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"trv_schedule/internal/config"
	"trv_schedule/internal/handlers"
	"trv_schedule/internal/logger"
	"trv_schedule/internal/metrics"
	"trv_schedule/internal/mqtt"
	"trv_schedule/internal/repository"
	"trv_schedule/internal/repository/db"
	"trv_schedule/internal/server"
	"trv_schedule/internal/service"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the background flusher (default)",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgDir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.Get(cfg.Log.Level)

	conn, err := db.InitDB(cfg.DB.Path)
	if err != nil {
		return fmt.Errorf("init sqlite: %w", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	prom, err := metrics.NewProm(nil)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	opts := service.Options{
		SigningKey: cfg.Auth.SigningKey,
		TokenTTL:   cfg.Auth.TokenTTL,
		Recorder:   prom,
		Logger:     log,
	}
	if cfg.MQTT.Enabled {
		sink, err := mqtt.Dial(mqtt.Options{
			Broker:    cfg.MQTT.Broker,
			ClientID:  cfg.MQTT.ClientID,
			Username:  cfg.MQTT.Username,
			Password:  cfg.MQTT.Password,
			BaseTopic: cfg.MQTT.BaseTopic,
			Device:    cfg.MQTT.Device,
			QoS:       cfg.MQTT.QoS,
		})
		if err != nil {
			return fmt.Errorf("connect mqtt: %w", err)
		}
		defer sink.Close()
		log.Infow("mqtt sink ready", "topic", sink.Topic())
		opts.Sinks = append(opts.Sinks, sink)
	}
	if cfg.Auth.SigningKey == "" {
		log.Warnw("auth.signing_key not set; tokens will not survive a restart")
	}

	repos := repository.NewRepository(conn)
	services := service.NewService(repos, opts)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := services.Schedule.Load(ctx); err != nil {
		log.Warnw("schedule loaded with errors", "err", err)
	}

	flusherDone := make(chan struct{})
	go func() {
		defer close(flusherDone)
		services.Flusher.Run(ctx, cfg.Flush.Interval)
	}()

	srv := &server.Server{}
	srvErr := make(chan error, 1)
	go func() {
		srvErr <- srv.Run(cfg.Port, handlers.NewHandler(services, log).InitRoutes())
	}()
	log.Infow("server started", "port", cfg.Port, "flush_interval", cfg.Flush.Interval)

	var runErr error
	select {
	case <-ctx.Done():
	case err := <-srvErr:
		if err != nil {
			runErr = fmt.Errorf("http server: %w", err)
		}
	}
	stop()
	if err := shutdown(srv, services.Schedule, flusherDone, log); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

// finalFlusher is the part of the schedule service used at shutdown.
type finalFlusher interface {
	Flush(ctx context.Context) (service.FlushReport, error)
}

// shutdown stops the HTTP server, waits for the background flusher to leave
// its loop and then writes out whatever is still dirty.
func shutdown(srv *server.Server, sched finalFlusher, flusherDone <-chan struct{}, log *logger.Logger) error {
	log.Infow("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}

	select {
	case <-flusherDone:
	case <-ctx.Done():
		log.Errorw("flusher did not stop in time", "err", ctx.Err())
	}

	report, err := sched.Flush(ctx)
	if err != nil {
		log.Errorw("final flush failed", "err", err, "failed", report.Failed)
		return err
	}
	log.Infow("final flush done", "written", report.Written)
	return nil
}
