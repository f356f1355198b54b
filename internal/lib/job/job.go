// Package job runs background work on asynq, a Redis-backed task queue.
//
// The API process both enqueues tasks (asynq.Client) and runs the workers
// that process them (asynq.Server).
package job

import (
	"context"

	"github.com/Nishank-123/biller/internal/config"
	"github.com/Nishank-123/biller/internal/lib/email"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// BillRenderer re-renders the stored PDF of a bill from the database.
type BillRenderer interface {
	RenderDocument(ctx context.Context, billNumber string) error
}

// JobService holds the asynq client (enqueue) and server (workers).
type JobService struct {
	Client *asynq.Client
	server *asynq.Server
	logger *zerolog.Logger

	renderer    BillRenderer
	emailClient *email.Client
}

// NewJobService creates the client and worker server against cfg.Redis.
// PDF rendering runs on the critical queue; notifications on default.
func NewJobService(logger *zerolog.Logger, cfg *config.Config) *JobService {
	redisOpt := asynq.RedisClientOpt{Addr: cfg.Redis.Address}

	client := asynq.NewClient(redisOpt)

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				QueueCritical: 6,
				QueueDefault:  3,
				QueueLow:      1,
			},
		},
	)

	return &JobService{
		Client: client,
		server: server,
		logger: logger,
	}
}

// Start registers task handlers and starts the workers in the background.
// InitHandlers must have been called first.
func (j *JobService) Start() error {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskRenderBillPDF, j.handleRenderBillPDFTask)
	mux.HandleFunc(TaskBillPaidEmail, j.handleBillPaidEmailTask)

	j.logger.Info().Msg("starting background job server")

	return j.server.Start(mux)
}

// Stop waits for running tasks and closes the Redis connections.
func (j *JobService) Stop() {
	j.logger.Info().Msg("stopping background job server")
	j.server.Shutdown()
	if err := j.Client.Close(); err != nil {
		j.logger.Warn().Err(err).Msg("failed to close job client")
	}
}
