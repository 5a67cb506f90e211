package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eproba/server/internal/core/events"
	"github.com/eproba/server/internal/notification"
	"github.com/eproba/server/pkg/logger"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start worker pools for various services",
	Long:  `Start and manage worker pools for push notification delivery and event handling.`,
}

var pushWorkerCmd = &cobra.Command{
	Use:   "push",
	Short: "Start push notification worker pool",
	Long:  `Start the push notification worker pool for delivering notifications`,
	Run: func(cmd *cobra.Command, args []string) {
		startPushWorker()
	},
}

var eventWorkerCmd = &cobra.Command{
	Use:   "events",
	Short: "Start event bus worker",
	Long:  `Start the event bus `,
	Run: func(cmd *cobra.Command, args []string) {
		startEventWorker()
	},
}

var (
	maxWorkers   int
	jobQueueSize int
	apiURL       string
	apiKey       string
)

func startPushWorker() {
	config, err := loadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.L()

	// Use command line flags if provided, otherwise use config values
	pushConfig := notification.PushConfig{
		APIURL:       getStringFlag(apiURL, config.Notification.Push.APIURL),
		APIKey:       getStringFlag(apiKey, config.Notification.Push.APIKey),
		SendTimeout:  config.Notification.Push.SendTimeout,
		MaxWorkers:   getIntFlag(maxWorkers, config.Notification.Push.MaxWorkers),
		JobQueueSize: getIntFlag(jobQueueSize, config.Notification.Push.JobQueueSize),
	}

	log.Info("starting push notification worker",
		"max_workers", pushConfig.MaxWorkers,
		"job_queue_size", pushConfig.JobQueueSize,
		"api_url", pushConfig.APIURL)

	client := notification.NewPushClient(pushConfig, log)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	log.Info("push worker is running. Press Ctrl+C to stop.")

	// wait for shutdown signal
	sig := <-sigChan
	log.Info("received signal, shutting down push worker", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	shutdownDone := make(chan struct{})
	go func() {
		client.Shutdown()
		close(shutdownDone)
	}()

	select {
	case <-shutdownDone:
		log.Info("push worker pool shutdown complete")
	case <-ctx.Done():
		log.Warn("shutdown timeout reached, forcing exit")
	}
}

func startEventWorker() {
	_, err := loadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.L()

	eventBus := events.NewEventBus(log)

	eventBus.Subscribe("test.event", func(ctx context.Context, event events.Event) error {
		log.Info("received test event",
			"event_id", event.EventID(),
			"event_type", event.EventType(),
			"payload", event.Payload())
		return nil
	})

	log.Info("event bus worker started. Waiting for events...")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	log.Info("event bus is running. Press Ctrl+C to stop.")

	sig := <-sigChan
	log.Info("received signal, shutting down event bus", "signal", sig)
	log.Info("event bus shutdown complete")
}

func getStringFlag(flagValue, configValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return configValue
}

func getIntFlag(flagValue, configValue int) int {
	if flagValue > 0 {
		return flagValue
	}
	return configValue
}

func init() {
	pushWorkerCmd.Flags().IntVar(&maxWorkers, "max-workers", 0, "Maximum number of workers (overrides config)")
	pushWorkerCmd.Flags().IntVar(&jobQueueSize, "job-queue-size", 0, "Job queue buffer size (overrides config)")
	pushWorkerCmd.Flags().StringVar(&apiURL, "api-url", "", "Push gateway API URL (overrides config)")
	pushWorkerCmd.Flags().StringVar(&apiKey, "api-key", "", "Push gateway API key (overrides config)")

	workerCmd.AddCommand(pushWorkerCmd)
	workerCmd.AddCommand(eventWorkerCmd)

	rootCmd.AddCommand(workerCmd)
}
