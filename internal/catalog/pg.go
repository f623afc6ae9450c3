package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PGStore struct{ DB *pgxpool.Pool }

var _ Store = (*PGStore)(nil)

const productCols = `id, seller_id, name, unit, status, stock, version, price_cents,
	wholesale_enabled, wholesale_base_price_cents, wholesale_unit, region`

func (s *PGStore) scanProduct(ctx context.Context, row pgx.Row) (*Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.SellerID, &p.Name, &p.Unit, &p.Status, &p.Stock, &p.Version,
		&p.PriceCents, &p.WholesaleEnabled, &p.WholesaleBasePriceCents, &p.WholesaleUnit, &p.Region)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	rows, err := s.DB.Query(ctx, `
		SELECT min_qty, price_cents FROM wholesale_tiers WHERE product_id=$1 ORDER BY min_qty`, p.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var t Tier
		if err := rows.Scan(&t.MinQty, &t.PriceCents); err != nil {
			return nil, err
		}
		p.Tiers = append(p.Tiers, t)
	}
	return &p, rows.Err()
}

// GetProduct hides soft-deleted rows behind the same ErrNotFound as missing
// ones; callers cannot tell the difference.
func (s *PGStore) GetProduct(ctx context.Context, id string) (*Product, error) {
	return s.scanProduct(ctx, s.DB.QueryRow(ctx,
		`SELECT `+productCols+` FROM products WHERE id=$1 AND deleted_at IS NULL`, id))
}

func (s *PGStore) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := s.DB.Query(ctx,
		`SELECT `+productCols+` FROM products WHERE deleted_at IS NULL ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.SellerID, &p.Name, &p.Unit, &p.Status, &p.Stock, &p.Version,
			&p.PriceCents, &p.WholesaleEnabled, &p.WholesaleBasePriceCents, &p.WholesaleUnit, &p.Region); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PGStore) GetStock(ctx context.Context, productID string) (int, int, error) {
	var qty, version int
	err := s.DB.QueryRow(ctx,
		`SELECT stock, version FROM products WHERE id=$1 AND deleted_at IS NULL`, productID).
		Scan(&qty, &version)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, 0, ErrNotFound
	}
	return qty, version, err
}

func (s *PGStore) CompareAndSwapStock(ctx context.Context, productID string, newQty, version int) (bool, error) {
	ct, err := s.DB.Exec(ctx, `
		UPDATE products SET stock=$2, version=version+1, updated_at=now()
		WHERE id=$1 AND version=$3 AND deleted_at IS NULL`,
		productID, newQty, version)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() == 1, nil
}
