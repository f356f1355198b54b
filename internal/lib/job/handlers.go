package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Nishank-123/biller/internal/config"
	"github.com/Nishank-123/biller/internal/lib/email"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// InitHandlers wires the dependencies task handlers need. The email client is
// only created when email delivery is configured.
func (j *JobService) InitHandlers(cfg *config.Config, logger *zerolog.Logger, renderer BillRenderer) {
	j.renderer = renderer
	if cfg.Integration.EmailEnabled() {
		j.emailClient = email.NewClient(cfg, logger)
	}
}

func (j *JobService) handleRenderBillPDFTask(ctx context.Context, t *asynq.Task) error {
	var p RenderBillPDFPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("failed to unmarshal render payload: %w: %w", err, asynq.SkipRetry)
	}

	if j.renderer == nil {
		return fmt.Errorf("no bill renderer registered: %w", asynq.SkipRetry)
	}

	err := j.renderer.RenderDocument(ctx, p.BillNumber)
	if errors.Is(err, pgx.ErrNoRows) {
		// Deleted after the task was queued; retrying cannot bring it back.
		j.logger.Warn().
			Str("bill_number", p.BillNumber).
			Msg("bill no longer exists, dropping render task")
		return fmt.Errorf("rendering bill %s: %w: %w", p.BillNumber, err, asynq.SkipRetry)
	}
	if err != nil {
		j.logger.Error().
			Err(err).
			Str("bill_number", p.BillNumber).
			Msg("failed to render bill pdf")
		return err
	}

	j.logger.Info().
		Str("bill_number", p.BillNumber).
		Msg("rendered bill pdf")
	return nil
}

func (j *JobService) handleBillPaidEmailTask(ctx context.Context, t *asynq.Task) error {
	var p BillPaidEmailPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("failed to unmarshal bill paid payload: %w: %w", err, asynq.SkipRetry)
	}

	if j.emailClient == nil {
		j.logger.Warn().
			Str("bill_number", p.BillNumber).
			Msg("email not configured, dropping bill paid notification")
		return nil
	}

	if err := j.emailClient.SendBillPaidEmail(p.To, p.BillNumber, p.CustomerName, p.Total); err != nil {
		j.logger.Error().
			Err(err).
			Str("bill_number", p.BillNumber).
			Str("to", p.To).
			Msg("failed to send bill paid email")
		return err
	}

	j.logger.Info().
		Str("bill_number", p.BillNumber).
		Str("to", p.To).
		Msg("sent bill paid email")
	return nil
}
