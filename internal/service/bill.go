package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Nishank-123/biller/internal/errs"
	"github.com/Nishank-123/biller/internal/lib/job"
	"github.com/Nishank-123/biller/internal/lib/pdf"
	"github.com/Nishank-123/biller/internal/model"
	"github.com/Nishank-123/biller/internal/server"
	"github.com/Nishank-123/biller/internal/sqlerr"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// createAttempts bounds retries when a generated bill number is already
// taken, e.g. by another instance sharing the database.
const createAttempts = 3

const billNumberConstraint = "bills_bill_number_key"

type BillStore interface {
	Create(ctx context.Context, b *model.Bill) error
	GetByNumber(ctx context.Context, billNumber string) (*model.Bill, error)
	List(ctx context.Context, status model.PaymentStatus) ([]model.Bill, error)
	ListByNumbers(ctx context.Context, billNumbers []string) ([]model.Bill, error)
	UpdatePayment(ctx context.Context, billNumber string, paid decimal.Decimal, status model.PaymentStatus) error
	// DeletePaid removes the bill only if it is fully paid, returning
	// model.ErrBillNotPaid otherwise.
	DeletePaid(ctx context.Context, billNumber string) error
}

// DocumentStore renders and keeps one PDF per bill.
type DocumentStore interface {
	Render(b *model.Bill) error
	Read(billNumber string) ([]byte, error)
	Remove(billNumber string) error
}

// Enqueuer schedules background work. Implemented by *job.JobService.
type Enqueuer interface {
	EnqueueRenderBillPDF(ctx context.Context, billNumber string) error
	EnqueueBillPaidEmail(ctx context.Context, p job.BillPaidEmailPayload) error
}

type BillService struct {
	logger  *zerolog.Logger
	store   BillStore
	docs    DocumentStore
	jobs    Enqueuer
	numbers *billNumberGenerator

	asyncRender bool
	notifyEmail string
}

func NewBillService(s *server.Server, store BillStore, docs DocumentStore) *BillService {
	svc := &BillService{
		logger:      s.Logger,
		store:       store,
		docs:        docs,
		numbers:     newBillNumberGenerator(),
		asyncRender: s.Config.Storage.AsyncRender,
		notifyEmail: s.Config.Integration.NotifyEmail,
	}
	if s.Job != nil {
		svc.jobs = s.Job
	}
	return svc
}

// WithEnqueuer replaces the background job backend.
func (s *BillService) WithEnqueuer(e Enqueuer) *BillService {
	s.jobs = e
	return s
}

// log prefers the request logger carried by ctx, which already holds the
// request id, and falls back to the service logger for background work.
func (s *BillService) log(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return s.logger
}

func errAmountOutOfRange(field string) error {
	code := errs.CodeAmountOutOfRange
	return errs.NewBadRequestError("Amount is too large", true, &code, []errs.FieldError{
		{Field: field, Error: "must not exceed " + model.MaxAmount.StringFixed(model.MoneyScale)},
	}, nil)
}

func errBillNotPaid(billNumber string) error {
	code := errs.CodeBillNotPaid
	err := errs.NewForbiddenError("Can only delete fully paid bills", true, &code)
	err.Action = errs.NewRedirectAction("Record the remaining payment first", "/bills/"+billNumber)
	return err
}

func errPaidExceedsTotal() error {
	code := errs.CodePaidExceedsTotal
	return errs.NewBadRequestError("Paid amount cannot exceed total amount", true, &code, []errs.FieldError{
		{Field: "paid_amount", Error: "cannot exceed total"},
	}, nil)
}

// Generate creates a bill from the request. The payment status is derived
// from the amounts; a client supplied status is ignored.
func (s *BillService) Generate(ctx context.Context, req *model.GenerateBillRequest) (*model.Bill, error) {
	date, err := time.Parse(model.DateLayout, req.Date)
	if err != nil {
		return nil, errs.NewBadRequestError("Invalid date, expected YYYY-MM-DD", true, nil,
			[]errs.FieldError{{Field: "date", Error: "must be a date in 2006-01-02 format"}}, nil)
	}

	subtotal := model.Money(*req.Subtotal)
	total := model.Money(*req.Total)

	paid := decimal.Zero
	if req.PaidAmount != nil {
		paid = model.Money(*req.PaidAmount)
	}
	if paid.GreaterThan(total) {
		return nil, errPaidExceedsTotal()
	}

	items := make([]model.BillItem, len(req.Items))
	for i, it := range req.Items {
		quantity := it.Quantity.Round(model.QuantityScale)
		rate := model.Money(*it.Rate)
		amount := model.ItemAmount(quantity, rate)
		if !model.InMoneyRange(amount) {
			return nil, errAmountOutOfRange(fmt.Sprintf("items[%d].amount", i))
		}

		items[i] = model.BillItem{
			Description: it.Description,
			Quantity:    quantity,
			Rate:        rate,
			Amount:      amount,
		}
	}

	bill := &model.Bill{
		CustomerName: req.CustomerName,
		PhoneNumber:  req.PhoneNumber,
		Date:         date,
		Subtotal:     subtotal,
		Total:        total,
		Items:        items,
	}
	bill.ApplyPayment(paid)

	if req.PaymentStatus != nil && model.PaymentStatus(*req.PaymentStatus) != bill.PaymentStatus {
		s.log(ctx).Debug().
			Str("requested_status", *req.PaymentStatus).
			Str("derived_status", string(bill.PaymentStatus)).
			Msg("ignoring client payment status")
	}

	if err := s.create(ctx, bill); err != nil {
		return nil, err
	}

	s.log(ctx).Info().
		Str("bill_number", bill.BillNumber).
		Int("items", len(bill.Items)).
		Stringer("total", bill.Total).
		Str("payment_status", string(bill.PaymentStatus)).
		Msg("bill generated")

	s.publish(ctx, bill)
	return bill, nil
}

// List returns bills newest first. status is a payment status or
// model.StatusAll (or empty) for every bill.
func (s *BillService) List(ctx context.Context, status string) ([]model.Bill, error) {
	if status == model.StatusAll {
		status = ""
	}
	ps := model.PaymentStatus(status)
	if ps != "" && !ps.Valid() {
		return nil, errs.NewBadRequestError("Status must be one of: pending partial paid", true, nil, nil, nil)
	}
	return s.store.List(ctx, ps)
}

func (s *BillService) Get(ctx context.Context, billNumber string) (*model.Bill, error) {
	return s.store.GetByNumber(ctx, billNumber)
}

// Merge combines the given bills into a new bill dated today. Amounts are
// summed, items are copied and tagged with their source bill number, and the
// source bills are left untouched.
func (s *BillService) Merge(ctx context.Context, billNumbers []string) (*model.Bill, error) {
	sources, err := s.store.ListByNumbers(ctx, dedupe(billNumbers))
	if err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		return nil, errs.NewNotFoundError("No bills found", true, nil)
	}

	today := time.Now()
	merged := &model.Bill{
		CustomerName: sources[0].CustomerName,
		PhoneNumber:  sources[0].PhoneNumber,
		Date:         time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC),
	}

	paid := decimal.Zero
	for _, src := range sources {
		merged.Subtotal = merged.Subtotal.Add(src.Subtotal)
		merged.Total = merged.Total.Add(src.Total)
		paid = paid.Add(src.PaidAmount)

		for _, it := range src.Items {
			merged.Items = append(merged.Items, model.BillItem{
				Description: fmt.Sprintf("%s (from bill %s)", it.Description, src.BillNumber),
				Quantity:    it.Quantity,
				Rate:        it.Rate,
				Amount:      it.Amount,
			})
		}
	}
	if !model.InMoneyRange(merged.Subtotal) {
		return nil, errAmountOutOfRange("subtotal")
	}
	if !model.InMoneyRange(merged.Total) {
		return nil, errAmountOutOfRange("total")
	}
	merged.ApplyPayment(decimal.Min(paid, merged.Total))

	if err := s.create(ctx, merged); err != nil {
		return nil, err
	}

	s.log(ctx).Info().
		Str("bill_number", merged.BillNumber).
		Strs("sources", billNumbers).
		Stringer("total", merged.Total).
		Msg("bills merged")

	s.publish(ctx, merged)
	return merged, nil
}

// UpdatePayment records the amount paid so far on a bill.
func (s *BillService) UpdatePayment(ctx context.Context, billNumber string, paid decimal.Decimal) (*model.Bill, error) {
	paid = model.Money(paid)
	if paid.IsNegative() {
		return nil, errs.NewBadRequestError("Paid amount cannot be negative", true, nil,
			[]errs.FieldError{{Field: "paid_amount", Error: "must be at least 0"}}, nil)
	}

	bill, err := s.store.GetByNumber(ctx, billNumber)
	if err != nil {
		return nil, err
	}

	if paid.GreaterThan(bill.Total) {
		return nil, errPaidExceedsTotal()
	}

	wasPaid := bill.PaymentStatus == model.PaymentStatusPaid
	bill.ApplyPayment(paid)

	if err := s.store.UpdatePayment(ctx, bill.BillNumber, bill.PaidAmount, bill.PaymentStatus); err != nil {
		return nil, err
	}

	s.log(ctx).Info().
		Str("bill_number", bill.BillNumber).
		Stringer("paid_amount", bill.PaidAmount).
		Str("payment_status", string(bill.PaymentStatus)).
		Msg("payment updated")

	s.publish(ctx, bill)

	if !wasPaid && bill.PaymentStatus == model.PaymentStatusPaid {
		s.notifyPaid(ctx, bill)
	}
	return bill, nil
}

// Delete removes a fully paid bill and its PDF. The paid check and the
// delete are a single statement in the store.
func (s *BillService) Delete(ctx context.Context, billNumber string) error {
	err := s.store.DeletePaid(ctx, billNumber)
	if errors.Is(err, model.ErrBillNotPaid) {
		return errBillNotPaid(billNumber)
	}
	if err != nil {
		return err
	}

	if err := s.docs.Remove(billNumber); err != nil {
		s.log(ctx).Error().Err(err).Str("bill_number", billNumber).Msg("failed to remove bill pdf")
	}

	s.log(ctx).Info().Str("bill_number", billNumber).Msg("bill deleted")
	return nil
}

// Document returns the stored PDF of a bill with its download name.
func (s *BillService) Document(ctx context.Context, billNumber string) (*model.Document, error) {
	bill, err := s.store.GetByNumber(ctx, billNumber)
	if err != nil {
		return nil, err
	}

	data, err := s.docs.Read(bill.BillNumber)
	if errors.Is(err, pdf.ErrNotFound) {
		return nil, errs.NewNotFoundError("PDF not found", true, nil)
	}
	if err != nil {
		return nil, err
	}

	return &model.Document{
		Filename:    pdf.DownloadName(bill),
		ContentType: pdf.ContentType,
		Data:        data,
	}, nil
}

// RenderDocument renders the PDF of a stored bill. It backs the async render job.
func (s *BillService) RenderDocument(ctx context.Context, billNumber string) error {
	bill, err := s.store.GetByNumber(ctx, billNumber)
	if err != nil {
		return err
	}
	return s.docs.Render(bill)
}

// create assigns a bill number and persists b, drawing a fresh number if
// the one issued is already taken.
func (s *BillService) create(ctx context.Context, b *model.Bill) error {
	var err error
	for range createAttempts {
		b.BillNumber = s.numbers.Next()
		err = s.store.Create(ctx, b)
		if !isBillNumberTaken(err) {
			return err
		}
		s.log(ctx).Warn().Str("bill_number", b.BillNumber).Msg("bill number taken, retrying")
	}
	return err
}

func isBillNumberTaken(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) &&
		sqlerr.MapCode(pgErr.Code) == sqlerr.UniqueViolation &&
		pgErr.ConstraintName == billNumberConstraint
}

// publish refreshes the stored PDF after a commit. Failures are logged and
// never reach the caller.
func (s *BillService) publish(ctx context.Context, b *model.Bill) {
	if s.asyncRender && s.jobs != nil {
		err := s.jobs.EnqueueRenderBillPDF(ctx, b.BillNumber)
		if err == nil {
			return
		}
		s.log(ctx).Warn().Err(err).Str("bill_number", b.BillNumber).Msg("failed to enqueue pdf render, rendering inline")
	}

	if err := s.docs.Render(b); err != nil {
		s.log(ctx).Error().Err(err).Str("bill_number", b.BillNumber).Msg("failed to render bill pdf")
	}
}

func (s *BillService) notifyPaid(ctx context.Context, b *model.Bill) {
	if s.notifyEmail == "" || s.jobs == nil {
		return
	}

	err := s.jobs.EnqueueBillPaidEmail(ctx, job.BillPaidEmailPayload{
		To:           s.notifyEmail,
		BillNumber:   b.BillNumber,
		CustomerName: b.CustomerName,
		Total:        b.Total,
	})
	if err != nil {
		s.log(ctx).Error().Err(err).Str("bill_number", b.BillNumber).Msg("failed to enqueue bill paid email")
	}
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
