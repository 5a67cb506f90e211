package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/eproba/server/internal"
)

type pushJob struct {
	notification Notification
}

type pushWorker struct {
	id         int
	workerPool chan chan pushJob
	jobChannel chan pushJob
	logger     *slog.Logger
}

func newPushWorker(id int, workerPool chan chan pushJob, logger *slog.Logger) *pushWorker {
	return &pushWorker{
		id:         id,
		workerPool: workerPool,
		jobChannel: make(chan pushJob),
		logger:     logger,
	}
}

func (w *pushWorker) start(ctx context.Context, wg *sync.WaitGroup, process func(pushJob)) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		for {
			w.workerPool <- w.jobChannel

			select {
			case job := <-w.jobChannel:
				w.logger.Debug("push worker processing job",
					"worker_id", w.id,
					"recipient_id", job.notification.RecipientID)
				process(job)
			case <-ctx.Done():
				w.logger.Debug("push worker shutting down", "worker_id", w.id)
				return
			}
		}
	}()
}

type PushConfig struct {
	APIURL       string
	APIKey       string
	SendTimeout  time.Duration
	MaxWorkers   int
	JobQueueSize int
}

// PushClient delivers push notifications through an external gateway using a
// bounded worker pool, so a slow gateway never blocks request handling.
type PushClient struct {
	apiURL      string
	apiKey      string
	sendTimeout time.Duration
	logger      *slog.Logger

	jobQueue   chan pushJob
	workerPool chan chan pushJob
	maxWorkers int
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	once       sync.Once
}

func NewPushClient(config PushConfig, logger *slog.Logger) *PushClient {
	ctx, cancel := context.WithCancel(context.Background())

	maxWorkers := config.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 4
	}
	jobQueueSize := config.JobQueueSize
	if jobQueueSize <= 0 {
		jobQueueSize = 100
	}
	sendTimeout := config.SendTimeout
	if sendTimeout <= 0 {
		sendTimeout = 10 * time.Second
	}

	client := &PushClient{
		apiURL:      config.APIURL,
		apiKey:      config.APIKey,
		sendTimeout: sendTimeout,
		logger:      logger,

		maxWorkers: maxWorkers,
		jobQueue:   make(chan pushJob, jobQueueSize),
		workerPool: make(chan chan pushJob, maxWorkers),
		ctx:        ctx,
		cancel:     cancel,
	}

	client.startWorkerPool()
	return client
}

func (c *PushClient) startWorkerPool() {
	c.once.Do(func() {
		for i := 0; i < c.maxWorkers; i++ {
			worker := newPushWorker(i, c.workerPool, c.logger)
			worker.start(c.ctx, &c.wg, c.deliver)
		}

		go c.dispatch()

		c.logger.Info("push notification worker pool started",
			"max_workers", c.maxWorkers,
			"queue_size", cap(c.jobQueue))
	})
}

func (c *PushClient) dispatch() {
	c.wg.Add(1)
	defer c.wg.Done()

	for {
		select {
		case job := <-c.jobQueue:
			select {
			case jobChannel := <-c.workerPool:
				select {
				case jobChannel <- job:
				case <-c.ctx.Done():
					return
				}
			case <-c.ctx.Done():
				return
			}
		case <-c.ctx.Done():
			return
		}
	}
}

func (c *PushClient) Shutdown() {
	c.logger.Info("shutting down push notification client")
	c.cancel()
	c.wg.Wait()
	c.logger.Info("push notification client shutdown complete")
}

// Send queues the notification for background delivery. A full queue drops
// the notification rather than blocking the caller.
func (c *PushClient) Send(ctx context.Context, n Notification) error {
	select {
	case c.jobQueue <- pushJob{notification: n}:
		c.logger.Debug("push notification queued",
			"recipient_id", n.RecipientID,
			"queue_length", len(c.jobQueue))
		return nil
	default:
		return fmt.Errorf("push queue full, dropping notification for %s", n.RecipientID)
	}
}

func (c *PushClient) deliver(job pushJob) {
	payload, err := json.Marshal(job.notification)
	if err != nil {
		c.logger.Error("failed to marshal push payload", "error", err)
		return
	}

	ctx, cancel := internal.WithTimeout(c.ctx, c.sendTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewBuffer(payload))
	if err != nil {
		c.logger.Error("failed to build push request", "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	client := &http.Client{Timeout: c.sendTimeout}
	resp, err := client.Do(req)
	if err != nil {
		c.logger.Error("push delivery failed",
			"error", err,
			"recipient_id", job.notification.RecipientID)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		c.logger.Error("push gateway rejected notification",
			"status", resp.StatusCode,
			"recipient_id", job.notification.RecipientID)
		return
	}

	c.logger.Info("push notification delivered",
		"recipient_id", job.notification.RecipientID)
}
