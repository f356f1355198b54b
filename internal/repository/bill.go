package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/Nishank-123/biller/internal/model"
	"github.com/Nishank-123/biller/internal/server"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const billColumns = `id, bill_number, customer_name, phone_number, date, subtotal, total,
	paid_amount, payment_status, created_at`

const itemColumns = `id, bill_id, position, description, quantity, rate, amount`

// BillRepository reads and writes bills and their items in Postgres.
// Missing bills come back as pgx.ErrNoRows tagged with the table name, which
// sqlerr turns into "Bill not found".
type BillRepository struct {
	server *server.Server
}

func NewBillRepository(s *server.Server) *BillRepository {
	return &BillRepository{server: s}
}

func notFound(err error) error {
	return fmt.Errorf("table:bills:%w", err)
}

// Create inserts b and its items in one transaction and fills in the
// generated ids and created_at.
func (r *BillRepository) Create(ctx context.Context, b *model.Bill) error {
	tx, err := r.server.DB.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning bill transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			r.server.Logger.Error().Err(err).Msg("failed to rollback bill transaction")
		}
	}()

	err = tx.QueryRow(ctx, `
		INSERT INTO bills (bill_number, customer_name, phone_number, date, subtotal, total, paid_amount, payment_status)
		VALUES (@bill_number, @customer_name, @phone_number, @date, @subtotal, @total, @paid_amount, @payment_status)
		RETURNING id, created_at`,
		pgx.NamedArgs{
			"bill_number":    b.BillNumber,
			"customer_name":  b.CustomerName,
			"phone_number":   b.PhoneNumber,
			"date":           b.Date,
			"subtotal":       b.Subtotal,
			"total":          b.Total,
			"paid_amount":    b.PaidAmount,
			"payment_status": string(b.PaymentStatus),
		},
	).Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting bill %s: %w", b.BillNumber, err)
	}

	if len(b.Items) > 0 {
		batch := &pgx.Batch{}
		for i := range b.Items {
			item := &b.Items[i]
			item.BillID = b.ID
			item.Position = i
			batch.Queue(`
				INSERT INTO bill_items (bill_id, position, description, quantity, rate, amount)
				VALUES ($1, $2, $3, $4, $5, $6)
				RETURNING id`,
				item.BillID, item.Position, item.Description, item.Quantity, item.Rate, item.Amount,
			).QueryRow(func(row pgx.Row) error {
				return row.Scan(&item.ID)
			})
		}

		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("inserting items of bill %s: %w", b.BillNumber, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing bill %s: %w", b.BillNumber, err)
	}
	return nil
}

func (r *BillRepository) GetByNumber(ctx context.Context, billNumber string) (*model.Bill, error) {
	rows, err := r.server.DB.Pool.Query(ctx,
		`SELECT `+billColumns+` FROM bills WHERE bill_number = $1`, billNumber)
	if err != nil {
		return nil, fmt.Errorf("querying bill %s: %w", billNumber, err)
	}

	bill, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Bill])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound(err)
		}
		return nil, fmt.Errorf("scanning bill %s: %w", billNumber, err)
	}

	bills := []model.Bill{bill}
	if err := r.attachItems(ctx, bills); err != nil {
		return nil, err
	}
	return &bills[0], nil
}

// List returns bills newest first, optionally restricted to one status.
func (r *BillRepository) List(ctx context.Context, status model.PaymentStatus) ([]model.Bill, error) {
	query := `SELECT ` + billColumns + ` FROM bills`
	args := []any{}
	if status != "" {
		query += ` WHERE payment_status = $1`
		args = append(args, string(status))
	}
	query += ` ORDER BY date DESC, created_at DESC`

	rows, err := r.server.DB.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing bills: %w", err)
	}

	bills, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.Bill])
	if err != nil {
		return nil, fmt.Errorf("scanning bills: %w", err)
	}

	if err := r.attachItems(ctx, bills); err != nil {
		return nil, err
	}
	return bills, nil
}

// ListByNumbers returns the bills whose numbers are in billNumbers, in
// the order the numbers were given. Unknown numbers are skipped.
func (r *BillRepository) ListByNumbers(ctx context.Context, billNumbers []string) ([]model.Bill, error) {
	rows, err := r.server.DB.Pool.Query(ctx,
		`SELECT `+billColumns+` FROM bills WHERE bill_number = ANY($1)`, billNumbers)
	if err != nil {
		return nil, fmt.Errorf("querying bills by number: %w", err)
	}

	found, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.Bill])
	if err != nil {
		return nil, fmt.Errorf("scanning bills by number: %w", err)
	}

	bills := orderByNumbers(found, billNumbers)
	if err := r.attachItems(ctx, bills); err != nil {
		return nil, err
	}
	return bills, nil
}

func (r *BillRepository) UpdatePayment(ctx context.Context, billNumber string, paid decimal.Decimal, status model.PaymentStatus) error {
	tag, err := r.server.DB.Pool.Exec(ctx, `
		UPDATE bills SET paid_amount = $2, payment_status = $3
		WHERE bill_number = $1`,
		billNumber, paid, string(status),
	)
	if err != nil {
		return fmt.Errorf("updating payment of bill %s: %w", billNumber, err)
	}
	if tag.RowsAffected() == 0 {
		return notFound(pgx.ErrNoRows)
	}
	return nil
}

// DeletePaid removes the bill if it is fully paid; its items go with it
// through ON DELETE CASCADE. The status check is part of the DELETE, so a
// concurrent payment update cannot slip in between check and delete.
//
// When nothing was deleted it reports whether the bill is missing
// (pgx.ErrNoRows) or unpaid (model.ErrBillNotPaid).
func (r *BillRepository) DeletePaid(ctx context.Context, billNumber string) error {
	tag, err := r.server.DB.Pool.Exec(ctx,
		`DELETE FROM bills WHERE bill_number = $1 AND payment_status = $2`,
		billNumber, string(model.PaymentStatusPaid))
	if err != nil {
		return fmt.Errorf("deleting bill %s: %w", billNumber, err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	err = r.server.DB.Pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM bills WHERE bill_number = $1)`, billNumber).Scan(&exists)
	if err != nil {
		return fmt.Errorf("checking bill %s: %w", billNumber, err)
	}
	if !exists {
		return notFound(pgx.ErrNoRows)
	}
	return model.ErrBillNotPaid
}

func (r *BillRepository) attachItems(ctx context.Context, bills []model.Bill) error {
	if len(bills) == 0 {
		return nil
	}

	ids := make([]int64, len(bills))
	for i := range bills {
		ids[i] = bills[i].ID
	}

	rows, err := r.server.DB.Pool.Query(ctx,
		`SELECT `+itemColumns+` FROM bill_items WHERE bill_id = ANY($1) ORDER BY bill_id, position`, ids)
	if err != nil {
		return fmt.Errorf("querying bill items: %w", err)
	}

	items, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.BillItem])
	if err != nil {
		return fmt.Errorf("scanning bill items: %w", err)
	}

	groupItems(bills, items)
	return nil
}

// groupItems appends each item to the bill it belongs to, in position
// order. Every bill ends up with a non-nil Items slice.
func groupItems(bills []model.Bill, items []model.BillItem) {
	index := make(map[int64]int, len(bills))
	for i := range bills {
		index[bills[i].ID] = i
		bills[i].Items = []model.BillItem{}
	}

	sort.SliceStable(items, func(a, b int) bool {
		if items[a].BillID != items[b].BillID {
			return items[a].BillID < items[b].BillID
		}
		return items[a].Position < items[b].Position
	})

	for _, item := range items {
		if i, ok := index[item.BillID]; ok {
			bills[i].Items = append(bills[i].Items, item)
		}
	}
}

// orderByNumbers returns found in the order of billNumbers, once per bill.
// Numbers with no matching bill are skipped.
func orderByNumbers(found []model.Bill, billNumbers []string) []model.Bill {
	byNumber := make(map[string]model.Bill, len(found))
	for _, b := range found {
		byNumber[b.BillNumber] = b
	}

	bills := make([]model.Bill, 0, len(found))
	for _, n := range billNumbers {
		if b, ok := byNumber[n]; ok {
			bills = append(bills, b)
			delete(byNumber, n)
		}
	}
	return bills
}
