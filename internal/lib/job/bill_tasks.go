package job

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
)

const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

const (
	// TaskRenderBillPDF renders <pdf_dir>/<bill_number>.pdf for a committed bill.
	TaskRenderBillPDF = "bill:render_pdf"

	// TaskBillPaidEmail notifies the configured address that a bill is paid.
	TaskBillPaidEmail = "email:bill_paid"
)

// RenderBillPDFPayload is the JSON payload of TaskRenderBillPDF.
type RenderBillPDFPayload struct {
	BillNumber string `json:"bill_number"`
}

// BillPaidEmailPayload is the JSON payload of TaskBillPaidEmail.
type BillPaidEmailPayload struct {
	To           string          `json:"to"`
	BillNumber   string          `json:"bill_number"`
	CustomerName string          `json:"customer_name"`
	Total        decimal.Decimal `json:"total"`
}

// NewRenderBillPDFTask builds a render task. The bill number is also the task
// id so re-enqueuing a bill that is still queued is rejected by asynq.
func NewRenderBillPDFTask(billNumber string) (*asynq.Task, error) {
	payload, err := json.Marshal(RenderBillPDFPayload{BillNumber: billNumber})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskRenderBillPDF,
		payload,
		asynq.TaskID("render:"+billNumber),
		asynq.MaxRetry(5),
		asynq.Queue(QueueCritical),
		asynq.Timeout(time.Minute),
	), nil
}

// NewBillPaidEmailTask builds a notification task.
func NewBillPaidEmailTask(p BillPaidEmailPayload) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskBillPaidEmail,
		payload,
		asynq.MaxRetry(3),
		asynq.Queue(QueueDefault),
		asynq.Timeout(30*time.Second),
	), nil
}

// EnqueueRenderBillPDF queues a PDF render for billNumber.
func (j *JobService) EnqueueRenderBillPDF(ctx context.Context, billNumber string) error {
	task, err := NewRenderBillPDFTask(billNumber)
	if err != nil {
		return fmt.Errorf("building render task: %w", err)
	}

	info, err := j.Client.EnqueueContext(ctx, task)
	if err != nil {
		return fmt.Errorf("enqueueing render task for bill %s: %w", billNumber, err)
	}

	j.logger.Debug().
		Str("task_id", info.ID).
		Str("bill_number", billNumber).
		Msg("render task enqueued")
	return nil
}

// EnqueueBillPaidEmail queues a bill-paid notification.
func (j *JobService) EnqueueBillPaidEmail(ctx context.Context, p BillPaidEmailPayload) error {
	task, err := NewBillPaidEmailTask(p)
	if err != nil {
		return fmt.Errorf("building bill paid email task: %w", err)
	}

	if _, err := j.Client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("enqueueing bill paid email for bill %s: %w", p.BillNumber, err)
	}
	return nil
}
