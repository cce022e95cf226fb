// cmd/worker-manager/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"voice-assistant/internal/app"
	"voice-assistant/internal/common/camunda"
	"voice-assistant/internal/common/config"
	"voice-assistant/internal/common/logger"
	"voice-assistant/internal/common/observability"
	"voice-assistant/internal/conversation"
	"voice-assistant/internal/server"
	cs "voice-assistant/internal/workers/assistant/classify-sentiment"
	gr "voice-assistant/internal/workers/assistant/generate-response"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...", zap.String("version", cfg.App.Version))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	obs := observability.New("voice-assistant", log)
	defer obs.Shutdown()

	a, err := app.Build(ctx, cfg, log, app.Options{})
	if err != nil {
		zapLog.Fatal("responder setup failed", zap.Error(err))
	}
	defer a.Close()

	checks := map[string]server.Checker{}
	if a.Redis != nil {
		checks["redis"] = server.CheckerFunc(a.Redis.Ping)
	}

	// --- Zeebe workers ---
	var manager *camunda.Manager
	if anyWorkerEnabled(cfg) {
		client, err := camunda.NewClientWithConfig(ctx, camunda.ConfigFrom(cfg.Camunda))
		if err != nil {
			zapLog.Fatal("zeebe client failed", zap.Error(err))
		}
		zapLog.Info("Zeebe client connected successfully", zap.String("gateway", cfg.Camunda.BrokerAddress))

		manager = camunda.NewManager(client, log)
		checks["zeebe"] = manager

		if wc, ok := cfg.Workers[gr.TaskType]; ok && wc.Enabled {
			handler := gr.NewHandler(gr.FromWorkerConfig(wc), a.Generator, obs, log)
			manager.Register(gr.TaskType, wc.MaxJobsActive, handler)
		}
		if wc, ok := cfg.Workers[cs.TaskType]; ok && wc.Enabled {
			handler := cs.NewHandler(cs.FromAppConfig(cfg), a.Scorer, log)
			manager.Register(cs.TaskType, wc.MaxJobsActive, handler)
		}
		zapLog.Info("workers registered", zap.Strings("taskTypes", manager.TaskTypes()))
	}

	// --- HTTP host ---
	var srv *server.Server
	if cfg.Server.Enabled {
		idle := time.Duration(cfg.Server.SessionIdleTimeout) * time.Second
		sessions := conversation.NewStore(a.Generator, idle, log)
		go sessions.RunPruner(ctx, time.Minute)

		srv = server.New(server.Deps{
			Sessions:      sessions,
			Transcriber:   a.Transcriber,
			Checks:        checks,
			Observability: obs,
		}, log)

		go func() {
			if err := srv.Start(cfg.Server.Address); err != nil {
				zapLog.Error("HTTP server failed", zap.Error(err))
				stop()
			}
		}()
	}

	if manager == nil && srv == nil {
		zapLog.Fatal("nothing to run: enable server or at least one worker")
	}

	// --- Graceful Shutdown ---
	<-ctx.Done()
	zapLog.Info("Shutdown signal received, stopping...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if srv != nil {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			zapLog.Error("Error stopping HTTP server", zap.Error(err))
		}
	}
	if manager != nil {
		manager.Stop()
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func anyWorkerEnabled(cfg *config.Config) bool {
	for _, taskType := range []string{gr.TaskType, cs.TaskType} {
		if wc, ok := cfg.Workers[taskType]; ok && wc.Enabled {
			return true
		}
	}
	return false
}
