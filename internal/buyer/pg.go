package buyer

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PGStore struct{ DB *pgxpool.Pool }

var (
	_ CartStore    = (*PGStore)(nil)
	_ AddressStore = (*PGStore)(nil)
)

func (s *PGStore) ListLines(ctx context.Context, buyerID string) ([]Line, error) {
	rows, err := s.DB.Query(ctx,
		`SELECT id, buyer_id, product_id, qty FROM cart_lines WHERE buyer_id=$1 ORDER BY created_at`, buyerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Line
	for rows.Next() {
		var ln Line
		if err := rows.Scan(&ln.ID, &ln.BuyerID, &ln.ProductID, &ln.Qty); err != nil {
			return nil, err
		}
		out = append(out, ln)
	}
	return out, rows.Err()
}

func (s *PGStore) RemoveLines(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.DB.Exec(ctx, `DELETE FROM cart_lines WHERE id = ANY($1)`, ids)
	return err
}

func (s *PGStore) GetAddress(ctx context.Context, id string) (*Address, error) {
	var a Address
	err := s.DB.QueryRow(ctx, `
		SELECT id, user_id, recipient, phone, street, city, region
		FROM addresses WHERE id=$1 AND deleted_at IS NULL`, id).
		Scan(&a.ID, &a.UserID, &a.Recipient, &a.Phone, &a.Street, &a.City, &a.Region)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAddressNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}
