// Package servicetest provides in-memory stand-ins for the bill store, the
// PDF store and the job queue, for tests of the service and HTTP layers.
package servicetest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Nishank-123/biller/internal/lib/job"
	"github.com/Nishank-123/biller/internal/lib/pdf"
	"github.com/Nishank-123/biller/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// MemoryStore keeps bills in a map keyed by bill number and mimics the
// errors of the Postgres repository.
type MemoryStore struct {
	mu     sync.Mutex
	bills  map[string]model.Bill
	nextID int64

	// Taken makes Create fail with a unique violation for these numbers once.
	Taken map[string]bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		bills: make(map[string]model.Bill),
		Taken: make(map[string]bool),
	}
}

func (m *MemoryStore) Create(_ context.Context, b *model.Bill) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.bills[b.BillNumber]; ok || m.Taken[b.BillNumber] {
		delete(m.Taken, b.BillNumber)
		return fmt.Errorf("inserting bill %s: %w", b.BillNumber, &pgconn.PgError{
			Code:           "23505",
			TableName:      "bills",
			ConstraintName: "bills_bill_number_key",
		})
	}

	m.nextID++
	b.ID = m.nextID
	b.CreatedAt = time.Now()
	for i := range b.Items {
		b.Items[i].BillID = b.ID
		b.Items[i].Position = i
		b.Items[i].ID = b.ID*1000 + int64(i)
	}
	m.bills[b.BillNumber] = clone(*b)
	return nil
}

// Put stores b as is, bypassing number generation.
func (m *MemoryStore) Put(b model.Bill) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	b.ID = m.nextID
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now()
	}
	m.bills[b.BillNumber] = clone(b)
}

func (m *MemoryStore) GetByNumber(_ context.Context, billNumber string) (*model.Bill, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.bills[billNumber]
	if !ok {
		return nil, fmt.Errorf("table:bills:%w", pgx.ErrNoRows)
	}
	out := clone(b)
	return &out, nil
}

func (m *MemoryStore) List(_ context.Context, status model.PaymentStatus) ([]model.Bill, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []model.Bill{}
	for _, b := range m.bills {
		if status == "" || b.PaymentStatus == status {
			out = append(out, clone(b))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *MemoryStore) ListByNumbers(_ context.Context, billNumbers []string) ([]model.Bill, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []model.Bill{}
	for _, n := range billNumbers {
		if b, ok := m.bills[n]; ok {
			out = append(out, clone(b))
		}
	}
	return out, nil
}

func (m *MemoryStore) UpdatePayment(_ context.Context, billNumber string, paid decimal.Decimal, status model.PaymentStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.bills[billNumber]
	if !ok {
		return fmt.Errorf("table:bills:%w", pgx.ErrNoRows)
	}
	b.PaidAmount = paid
	b.PaymentStatus = status
	m.bills[billNumber] = b
	return nil
}

func (m *MemoryStore) DeletePaid(_ context.Context, billNumber string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.bills[billNumber]
	if !ok {
		return fmt.Errorf("table:bills:%w", pgx.ErrNoRows)
	}
	if b.PaymentStatus != model.PaymentStatusPaid {
		return model.ErrBillNotPaid
	}
	delete(m.bills, billNumber)
	return nil
}

func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.bills)
}

func clone(b model.Bill) model.Bill {
	b.Items = append([]model.BillItem(nil), b.Items...)
	return b
}

// MemoryDocs records rendered bills instead of writing files.
type MemoryDocs struct {
	mu       sync.Mutex
	docs     map[string][]byte
	Rendered []string
	Removed  []string
	Err      error
}

func NewMemoryDocs() *MemoryDocs {
	return &MemoryDocs{docs: make(map[string][]byte)}
}

func (d *MemoryDocs) Render(b *model.Bill) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.Rendered = append(d.Rendered, b.BillNumber)
	if d.Err != nil {
		return d.Err
	}
	d.docs[b.BillNumber] = []byte("%PDF-1.3 " + b.BillNumber)
	return nil
}

func (d *MemoryDocs) Read(billNumber string) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	data, ok := d.docs[billNumber]
	if !ok {
		return nil, pdf.ErrNotFound
	}
	return data, nil
}

func (d *MemoryDocs) Remove(billNumber string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.Removed = append(d.Removed, billNumber)
	delete(d.docs, billNumber)
	return nil
}

func (d *MemoryDocs) Has(billNumber string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.docs[billNumber]
	return ok
}

// RecordingQueue captures enqueued jobs.
type RecordingQueue struct {
	mu      sync.Mutex
	Renders []string
	Emails  []job.BillPaidEmailPayload
}

func (q *RecordingQueue) EnqueueRenderBillPDF(_ context.Context, billNumber string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.Renders = append(q.Renders, billNumber)
	return nil
}

func (q *RecordingQueue) EnqueueBillPaidEmail(_ context.Context, p job.BillPaidEmailPayload) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.Emails = append(q.Emails, p)
	return nil
}
