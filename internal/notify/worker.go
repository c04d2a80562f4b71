package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ysrc26/footbal-squad-manager/pkg/queue"
)

// Processor consumes push jobs from the Redis queue and delivers them.
type Processor struct {
	queue  *queue.Queue
	sender *Sender
	logger *zap.Logger
}

// NewProcessor creates a push delivery processor.
func NewProcessor(q *queue.Queue, sender *Sender, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{queue: q, sender: sender, logger: logger}
}

// Process executes one push job.
func (p *Processor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypePush {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.PushPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	if !p.sender.Configured() {
		p.logger.Warn("push credentials missing, dropping job", zap.String("job_id", job.ID))
		return nil
	}
	return p.sender.Send(ctx, payload)
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *Processor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("push worker stopping")
			return
		default:
		}

		job, _, err := p.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			p.logger.Warn("dequeue error", zap.Error(err))
			time.Sleep(queue.RetryBackoff)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			time.Sleep(queue.RetryBackoff)
			continue
		}
	}
}
