package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/NEXESMISSION/mizeni/internal/domain"
)

type postgresSaleRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

// NewPostgresSaleRepository returns a SaleStore that also satisfies
// domain.TransactionalSaleStore.
func NewPostgresSaleRepository(db *sql.DB, logger *logrus.Logger) domain.SaleStore {
	return &postgresSaleRepository{
		db:  db,
		log: logger,
	}
}

var _ domain.TransactionalSaleStore = (*postgresSaleRepository)(nil)

func (r *postgresSaleRepository) CreateSale(ctx context.Context, sale *domain.Sale) (*domain.Sale, error) {
	query := `
        INSERT INTO sales (owner_id, total_amount, total_cost)
        VALUES ($1, $2, $3)
        RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, sale.OwnerID, sale.TotalAmount, sale.TotalCost).Scan(
		&sale.ID,
		&sale.CreatedAt,
	)
	if err != nil {
		r.log.Errorf("Repository: Failed to insert sale for owner %s: %v", sale.OwnerID, err)
		return nil, fmt.Errorf("could not create sale entry: %w", err)
	}
	r.log.Infof("Repository: Sale entry created with ID: %d for owner: %s", sale.ID, sale.OwnerID)
	return sale, nil
}

func (r *postgresSaleRepository) CreateSaleItems(ctx context.Context, saleID int, items []domain.SaleItem) error {
	itemQuery := `
        INSERT INTO sale_items (sale_id, product_id, quantity, price_at_sale, cost_at_sale)
        VALUES ($1, $2, $3, $4, $5)`

	stmt, err := r.db.PrepareContext(ctx, itemQuery)
	if err != nil {
		r.log.Errorf("Repository: Failed to prepare sale item statement: %v", err)
		return fmt.Errorf("could not prepare item statement: %w", err)
	}
	defer stmt.Close()

	for _, item := range items {
		_, err = stmt.ExecContext(ctx, saleID, item.ProductID, item.Quantity, item.PriceAtSale, item.CostAtSale)
		if err != nil {
			r.log.Errorf("Repository: Failed to insert sale item (product_id: %d, quantity: %d) for sale %d: %v", item.ProductID, item.Quantity, saleID, err)
			return fmt.Errorf("could not create sale item (product_id: %d): %w", item.ProductID, err)
		}
	}
	r.log.Infof("Repository: %d sale items recorded for sale %d", len(items), saleID)
	return nil
}

// CreateSaleWithItems records the sale, its items, and the stock
// decrements in a single transaction. The decrement is an atomic
// GREATEST(stock - qty, 0), so concurrent checkouts cannot drive stock
// negative.
func (r *postgresSaleRepository) CreateSaleWithItems(ctx context.Context, sale *domain.Sale, items []domain.SaleItem) (_ *domain.Sale, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		r.log.Errorf("Repository: Failed to begin checkout transaction: %v", err)
		return nil, fmt.Errorf("could not start transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			r.log.Error("Repository: Recovered from panic, rolling back checkout transaction")
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			r.log.Warnf("Repository: Rolling back checkout transaction due to error: %v", err)
			if rbErr := tx.Rollback(); rbErr != nil {
				r.log.Errorf("Repository: Failed to rollback checkout transaction: %v", rbErr)
			}
		} else {
			if cErr := tx.Commit(); cErr != nil {
				r.log.Errorf("Repository: Failed to commit checkout transaction: %v", cErr)
				err = fmt.Errorf("failed to commit checkout transaction: %w", cErr)
			}
		}
	}()

	saleQuery := `
        INSERT INTO sales (owner_id, total_amount, total_cost)
        VALUES ($1, $2, $3)
        RETURNING id, created_at`
	err = tx.QueryRowContext(ctx, saleQuery, sale.OwnerID, sale.TotalAmount, sale.TotalCost).Scan(
		&sale.ID,
		&sale.CreatedAt,
	)
	if err != nil {
		r.log.Errorf("Repository: Failed to insert sale for owner %s: %v", sale.OwnerID, err)
		return nil, fmt.Errorf("could not create sale entry: %w", err)
	}

	itemQuery := `
        INSERT INTO sale_items (sale_id, product_id, quantity, price_at_sale, cost_at_sale)
        VALUES ($1, $2, $3, $4, $5)`
	stmt, err := tx.PrepareContext(ctx, itemQuery)
	if err != nil {
		r.log.Errorf("Repository: Failed to prepare sale item statement: %v", err)
		return nil, fmt.Errorf("could not prepare item statement: %w", err)
	}
	defer stmt.Close()

	stockQuery := `
        UPDATE products
        SET stock = GREATEST(stock - $1, 0), updated_at = NOW()
        WHERE id = $2 AND owner_id = $3`

	for _, item := range items {
		_, err = stmt.ExecContext(ctx, sale.ID, item.ProductID, item.Quantity, item.PriceAtSale, item.CostAtSale)
		if err != nil {
			r.log.Errorf("Repository: Failed to insert sale item (product_id: %d) for sale %d: %v", item.ProductID, sale.ID, err)
			return nil, fmt.Errorf("could not create sale item (product_id: %d): %w", item.ProductID, err)
		}

		_, err = tx.ExecContext(ctx, stockQuery, item.Quantity, item.ProductID, sale.OwnerID)
		if err != nil {
			r.log.Errorf("Repository: Failed to decrement stock for product %d in sale %d: %v", item.ProductID, sale.ID, err)
			return nil, fmt.Errorf("could not decrement stock for product %d: %w", item.ProductID, err)
		}
	}

	sale.Items = items
	r.log.Infof("Repository: Sale %d created atomically with %d items for owner %s", sale.ID, len(items), sale.OwnerID)
	return sale, nil
}

func (r *postgresSaleRepository) ListSalesByOwner(ctx context.Context, ownerID string) ([]domain.Sale, error) {
	salesQuery := `
        SELECT id, owner_id, total_amount, total_cost, created_at
        FROM sales
        WHERE owner_id = $1
        ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, salesQuery, ownerID)
	if err != nil {
		r.log.Errorf("Repository: Failed to list sales for owner %s: %v", ownerID, err)
		return nil, fmt.Errorf("could not retrieve sales: %w", err)
	}
	defer rows.Close()

	var sales []domain.Sale
	saleIDs := []int{}

	for rows.Next() {
		var sale domain.Sale
		if err := rows.Scan(&sale.ID, &sale.OwnerID, &sale.TotalAmount, &sale.TotalCost, &sale.CreatedAt); err != nil {
			r.log.Errorf("Repository: Failed to scan sale row for owner %s: %v", ownerID, err)
			return nil, fmt.Errorf("error scanning sale data: %w", err)
		}
		sales = append(sales, sale)
		saleIDs = append(saleIDs, sale.ID)
	}
	if err = rows.Err(); err != nil {
		r.log.Errorf("Repository: Error during sales iteration for owner %s: %v", ownerID, err)
		return nil, fmt.Errorf("error iterating sales: %w", err)
	}

	if len(sales) == 0 {
		return []domain.Sale{}, nil
	}

	itemsQuery := `
        SELECT sale_id, product_id, quantity, price_at_sale, cost_at_sale
        FROM sale_items
        WHERE sale_id = ANY($1::int[])
        ORDER BY sale_id`

	itemRows, err := r.db.QueryContext(ctx, itemsQuery, pq.Array(saleIDs))
	if err != nil {
		r.log.Errorf("Repository: Failed to query items for sales %v: %v", saleIDs, err)
		return nil, fmt.Errorf("could not retrieve sale items: %w", err)
	}
	defer itemRows.Close()

	itemsMap := make(map[int][]domain.SaleItem)
	for itemRows.Next() {
		var item domain.SaleItem
		var saleID int
		if err := itemRows.Scan(&saleID, &item.ProductID, &item.Quantity, &item.PriceAtSale, &item.CostAtSale); err != nil {
			r.log.Errorf("Repository: Failed to scan sale item row during multi-sale fetch: %v", err)
			return nil, fmt.Errorf("error scanning sale item data: %w", err)
		}
		itemsMap[saleID] = append(itemsMap[saleID], item)
	}
	if err = itemRows.Err(); err != nil {
		r.log.Errorf("Repository: Error during multi-sale items iteration: %v", err)
		return nil, fmt.Errorf("error iterating sale items: %w", err)
	}

	for i := range sales {
		if items, ok := itemsMap[sales[i].ID]; ok {
			sales[i].Items = items
		} else {
			sales[i].Items = []domain.SaleItem{}
		}
	}

	r.log.Infof("Repository: Retrieved %d sales for owner %s", len(sales), ownerID)
	return sales, nil
}

func (r *postgresSaleRepository) DeleteSalesByOwner(ctx context.Context, ownerID string) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		r.log.Errorf("Repository: Failed to begin history-clear transaction: %v", err)
		return fmt.Errorf("could not start transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				r.log.Errorf("Repository: Failed to rollback history-clear transaction: %v (original error: %v)", rbErr, err)
			}
		} else {
			if cErr := tx.Commit(); cErr != nil {
				err = fmt.Errorf("failed to commit history clear: %w", cErr)
				r.log.Errorf("Repository: %v", err)
			}
		}
	}()

	_, err = tx.ExecContext(ctx, `
        DELETE FROM sale_items
        WHERE sale_id IN (SELECT id FROM sales WHERE owner_id = $1)`, ownerID)
	if err != nil {
		r.log.Errorf("Repository: Failed to delete sale items for owner %s: %v", ownerID, err)
		return fmt.Errorf("could not clear sale items: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM sales WHERE owner_id = $1`, ownerID)
	if err != nil {
		r.log.Errorf("Repository: Failed to delete sales for owner %s: %v", ownerID, err)
		return fmt.Errorf("could not clear sales history: %w", err)
	}

	rowsAffected, raErr := result.RowsAffected()
	if raErr == nil {
		r.log.Infof("Repository: Cleared %d sales for owner %s", rowsAffected, ownerID)
	}
	return err
}
