package orders

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PGStore struct{ DB *pgxpool.Pool }

var _ Store = (*PGStore)(nil)

func (s *PGStore) CreateGroup(ctx context.Context, ord *Order, lines []OrderLine, pay *Payment) error {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO orders(id, code, buyer_id, seller_id, class, status, payment_method, payment_status,
		                   subtotal_cents, shipping_fee_cents, discount_cents, total_cents,
		                   ship_recipient, ship_phone, ship_street, ship_city, ship_region,
		                   notes, po_number)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)`,
		ord.ID, ord.Code, ord.BuyerID, ord.SellerID, ord.Class, ord.Status, ord.PaymentMethod, ord.PaymentStatus,
		ord.SubtotalCents, ord.ShippingFeeCents, ord.DiscountCents, ord.TotalCents,
		ord.ShipTo.Recipient, ord.ShipTo.Phone, ord.ShipTo.Street, ord.ShipTo.City, ord.ShipTo.Region,
		ord.Notes, ord.PONumber,
	)
	if err != nil {
		// order codes carry a 4-digit daily suffix, clashes happen; the
		// caller draws a fresh code and retries
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "orders_code_key" {
			return ErrCodeTaken
		}
		return err
	}

	for _, ln := range lines {
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_lines(id, order_id, product_id, product_name, unit, unit_price_cents, qty, line_total_cents)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			ln.ID, ln.OrderID, ln.ProductID, ln.ProductName, ln.Unit, ln.UnitPriceCents, ln.Qty, ln.LineTotalCents,
		); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO payments(id, order_id, amount_cents, gateway, tx_code, status, message)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		pay.ID, pay.OrderID, pay.AmountCents, pay.Gateway, pay.TxCode, pay.Status, pay.Message,
	); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

const orderCols = `id, code, buyer_id, seller_id, class, status, payment_method, payment_status,
	subtotal_cents, shipping_fee_cents, discount_cents, total_cents,
	ship_recipient, ship_phone, ship_street, ship_city, ship_region,
	notes, po_number, created_at, updated_at`

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.Code, &o.BuyerID, &o.SellerID, &o.Class, &o.Status, &o.PaymentMethod, &o.PaymentStatus,
		&o.SubtotalCents, &o.ShippingFeeCents, &o.DiscountCents, &o.TotalCents,
		&o.ShipTo.Recipient, &o.ShipTo.Phone, &o.ShipTo.Street, &o.ShipTo.City, &o.ShipTo.Region,
		&o.Notes, &o.PONumber, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *PGStore) GetOrder(ctx context.Context, id string) (*Order, error) {
	return scanOrder(s.DB.QueryRow(ctx, `SELECT `+orderCols+` FROM orders WHERE id=$1`, id))
}

func (s *PGStore) GetOrderByCode(ctx context.Context, code string) (*Order, error) {
	return scanOrder(s.DB.QueryRow(ctx, `SELECT `+orderCols+` FROM orders WHERE code=$1`, code))
}

func (s *PGStore) ListLines(ctx context.Context, orderID string) ([]OrderLine, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT id, order_id, product_id, product_name, unit, unit_price_cents, qty, line_total_cents
		FROM order_lines WHERE order_id=$1 ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OrderLine
	for rows.Next() {
		var ln OrderLine
		if err := rows.Scan(&ln.ID, &ln.OrderID, &ln.ProductID, &ln.ProductName, &ln.Unit,
			&ln.UnitPriceCents, &ln.Qty, &ln.LineTotalCents); err != nil {
			return nil, err
		}
		out = append(out, ln)
	}
	return out, rows.Err()
}

func (s *PGStore) listPayments(ctx context.Context, orderID string) ([]Payment, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT id, order_id, amount_cents, gateway, tx_code, status, paid_at, message, created_at
		FROM payments WHERE order_id=$1 ORDER BY created_at`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.OrderID, &p.AmountCents, &p.Gateway, &p.TxCode,
			&p.Status, &p.PaidAt, &p.Message, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PGStore) GetDetail(ctx context.Context, id string) (*Detail, error) {
	o, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	lines, err := s.ListLines(ctx, id)
	if err != nil {
		return nil, err
	}
	pays, err := s.listPayments(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Detail{Order: *o, Lines: lines, Payments: pays}, nil
}

func (s *PGStore) TransitionStatus(ctx context.Context, orderID string, from, to Status) error {
	ct, err := s.DB.Exec(ctx, `
		UPDATE orders SET status=$3, updated_at=now() WHERE id=$1 AND status=$2`,
		orderID, from, to)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 1 {
		return nil
	}
	// 0 rows: either the order is gone or someone else moved it first.
	if _, err := s.GetOrder(ctx, orderID); err != nil {
		return err
	}
	return ErrConflict
}

func (s *PGStore) SetPaymentStatus(ctx context.Context, orderID string, ps PaymentStatus) error {
	ct, err := s.DB.Exec(ctx, `
		UPDATE orders SET payment_status=$2, updated_at=now() WHERE id=$1`, orderID, ps)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGStore) FindPaymentByTxCode(ctx context.Context, gateway, txCode string) (*Payment, error) {
	var p Payment
	err := s.DB.QueryRow(ctx, `
		SELECT id, order_id, amount_cents, gateway, tx_code, status, paid_at, message, created_at
		FROM payments WHERE gateway=$1 AND tx_code=$2`, gateway, txCode).
		Scan(&p.ID, &p.OrderID, &p.AmountCents, &p.Gateway, &p.TxCode, &p.Status, &p.PaidAt, &p.Message, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PGStore) FindPendingPayment(ctx context.Context, orderID string) (*Payment, error) {
	var p Payment
	err := s.DB.QueryRow(ctx, `
		SELECT id, order_id, amount_cents, gateway, tx_code, status, paid_at, message, created_at
		FROM payments WHERE order_id=$1 AND status='PENDING'
		ORDER BY created_at LIMIT 1`, orderID).
		Scan(&p.ID, &p.OrderID, &p.AmountCents, &p.Gateway, &p.TxCode, &p.Status, &p.PaidAt, &p.Message, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PGStore) AddPayment(ctx context.Context, p *Payment) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	_, err := s.DB.Exec(ctx, `
		INSERT INTO payments(id, order_id, amount_cents, gateway, tx_code, status, paid_at, message, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		p.ID, p.OrderID, p.AmountCents, p.Gateway, p.TxCode, p.Status, p.PaidAt, p.Message, p.CreatedAt)
	return err
}

func (s *PGStore) SavePayment(ctx context.Context, p *Payment) error {
	ct, err := s.DB.Exec(ctx, `
		UPDATE payments SET amount_cents=$2, gateway=$3, tx_code=$4, status=$5, paid_at=$6, message=$7
		WHERE id=$1 AND status='PENDING'`,
		p.ID, p.AmountCents, p.Gateway, p.TxCode, p.Status, p.PaidAt, p.Message)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 1 {
		return nil
	}
	// 0 rows: payment gone or a concurrent writer settled it first
	var st PayState
	err = s.DB.QueryRow(ctx, `SELECT status FROM payments WHERE id=$1`, p.ID).Scan(&st)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return ErrConflict
}
