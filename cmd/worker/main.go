package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"docdigest/internal/bootstrap"
	"docdigest/internal/config"
	"docdigest/internal/core/domain"
	"docdigest/internal/observability/metrics"
)

const processTimeout = 5 * time.Minute

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics("worker")
	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: workerMetrics.Handler(),
	}
	go func() {
		log.Printf("worker metrics listening on :%s", cfg.WorkerMetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("metrics server error: %v", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	log.Printf("worker subscribed to %s", cfg.NATSIngestSubject)
	err = app.Queue.SubscribeDocumentIngested(ctx, func(handlerCtx context.Context, documentID string) error {
		processCtx, cancel := context.WithTimeout(handlerCtx, processTimeout)
		defer cancel()

		start := time.Now()
		workerMetrics.StartDocument()
		result, err := app.ProcessUC.ProcessByID(processCtx, documentID)
		if err != nil {
			workerMetrics.FinishDocument("worker", "error", time.Since(start))
			return err
		}

		workerMetrics.FinishDocument("worker", string(result.Status), time.Since(start))
		workerMetrics.ObserveQueueLag("worker", time.Since(result.Metadata.UploadedAt))
		if result.Status == domain.StatusFailed {
			workerMetrics.RecordScenario("worker", string(result.ErrorScenario))
		}
		if result.Parse.UsedOCR {
			workerMetrics.RecordOCRFallback("worker", result.Parse.Success)
		}
		if result.Summary.TokensUsed > 0 {
			workerMetrics.AddLLMTokens("worker", result.Summary.Model, result.Summary.TokensUsed)
		}
		return nil
	})
	if err != nil {
		log.Fatalf("worker subscribe error: %v", err)
	}
}
