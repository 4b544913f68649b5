package order

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/marcosvbento/storefront-backend/internal/apperr"
	"github.com/marcosvbento/storefront-backend/internal/product"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	lockStockQuery      = `SELECT stock FROM products WHERE product_id = $1 FOR UPDATE`
	decrementStockQuery = `UPDATE products SET stock = stock - $1 WHERE product_id = $2`
	restoreStockQuery   = `UPDATE products SET stock = stock + $1 WHERE product_id = $2`

	insertOrderQuery = `
		INSERT INTO orders (order_id, user_id, address_id, payment_method, shipping_cost, total, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	insertOrderItemQuery = `
		INSERT INTO order_items (item_id, order_id, product_id, title, quantity, price)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	clearCartItemsQuery = `DELETE FROM cart_items WHERE cart_id = $1`
	resetCartTotalQuery = `UPDATE carts SET total = 0, updated_at = $1 WHERE cart_id = $2`

	getOrderQuery = `
		SELECT order_id, user_id, address_id, payment_method, shipping_cost, total, status, created_at, updated_at
		FROM orders
		WHERE order_id = $1
	`
	listOrderItemsQuery = `
		SELECT item_id, order_id, product_id, title, quantity, price
		FROM order_items
		WHERE order_id = $1
		ORDER BY item_id
	`
	listByUserQuery = `
		SELECT order_id, user_id, address_id, payment_method, shipping_cost, total, status, created_at, updated_at
		FROM orders
		WHERE user_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`
	countByUserQuery = `SELECT COUNT(*) FROM orders WHERE user_id = $1 AND ($2 = '' OR status = $2)`
	listAllQuery     = `
		SELECT order_id, user_id, address_id, payment_method, shipping_cost, total, status, created_at, updated_at
		FROM orders
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	countAllQuery     = `SELECT COUNT(*) FROM orders WHERE ($1 = '' OR status = $1)`
	updateStatusQuery = `UPDATE orders SET status = $1, updated_at = $2 WHERE order_id = $3`
	cancelOrderQuery  = `
		UPDATE orders SET status = 'CANCELED', updated_at = $1
		WHERE order_id = $2 AND status NOT IN ('CANCELED', 'DELIVERED')
	`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// CreateFromCart runs the checkout in a single transaction: each product row
// is locked before its stock is checked and decremented, so two concurrent
// checkouts cannot both consume the last unit.
func (r *PostgresRepository) CreateFromCart(o Order, cartID string) (Order, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return Order{}, err
	}
	defer tx.Rollback()

	for _, it := range o.Items {
		var stock int
		if err := tx.QueryRow(lockStockQuery, it.ProductID).Scan(&stock); err != nil {
			if err == sql.ErrNoRows {
				return Order{}, product.ErrNotFound
			}
			return Order{}, err
		}
		if stock < it.Quantity {
			return Order{}, apperr.Wrap(apperr.KindConflict,
				fmt.Sprintf("insufficient stock for product %s", it.ProductID), product.ErrStockExhausted)
		}
		if _, err := tx.Exec(decrementStockQuery, it.Quantity, it.ProductID); err != nil {
			return Order{}, err
		}
	}

	_, err = tx.Exec(insertOrderQuery,
		o.ID, o.UserID, o.AddressID, o.PaymentMethod,
		o.ShippingCost, o.Total, string(o.Status), o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return Order{}, err
	}
	for _, it := range o.Items {
		if _, err := tx.Exec(insertOrderItemQuery, it.ID, o.ID, it.ProductID, it.Title, it.Quantity, it.Price); err != nil {
			return Order{}, err
		}
	}

	if _, err := tx.Exec(clearCartItemsQuery, cartID); err != nil {
		return Order{}, err
	}
	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.Exec(resetCartTotalQuery, now, cartID); err != nil {
		return Order{}, err
	}

	if err := tx.Commit(); err != nil {
		return Order{}, err
	}
	return o, nil
}

func (r *PostgresRepository) GetByID(id string) (Order, error) {
	o, err := scanOrder(r.db.QueryRow(getOrderQuery, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return Order{}, ErrNotFound
		}
		return Order{}, err
	}
	if err := r.attachItems(&o); err != nil {
		return Order{}, err
	}
	return o, nil
}

func (r *PostgresRepository) ListByUser(userID string, status Status, limit, offset int) ([]Order, int, error) {
	var total int
	if err := r.db.QueryRow(countByUserQuery, userID, string(status)).Scan(&total); err != nil {
		return nil, 0, err
	}
	orders, err := r.queryOrders(listByUserQuery, userID, string(status), limit, offset)
	return orders, total, err
}

func (r *PostgresRepository) ListAll(status Status, limit, offset int) ([]Order, int, error) {
	var total int
	if err := r.db.QueryRow(countAllQuery, string(status)).Scan(&total); err != nil {
		return nil, 0, err
	}
	orders, err := r.queryOrders(listAllQuery, string(status), limit, offset)
	return orders, total, err
}

func (r *PostgresRepository) UpdateStatus(id string, status Status, updatedAt string) error {
	res, err := r.db.Exec(updateStatusQuery, string(status), updatedAt, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Cancel flips the order to CANCELED and restores stock in one transaction.
// The status write is guarded so that only the transition out of a live
// state re-credits stock: replayed or racing cancels see zero affected rows
// and restore nothing.
func (r *PostgresRepository) Cancel(o Order, updatedAt string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.Exec(cancelOrderQuery, updatedAt, o.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil
	}
	for _, it := range o.Items {
		if _, err := tx.Exec(restoreStockQuery, it.Quantity, it.ProductID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *PostgresRepository) queryOrders(query string, args ...any) ([]Order, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		if err := r.attachItems(&orders[i]); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r *PostgresRepository) attachItems(o *Order) error {
	rows, err := r.db.Query(listOrderItemsQuery, o.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	o.Items = make([]Item, 0)
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Title, &it.Quantity, &it.Price); err != nil {
			return err
		}
		it.Subtotal = it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
		o.Items = append(o.Items, it)
	}
	return rows.Err()
}

func scanOrder(row interface{ Scan(dest ...any) error }) (Order, error) {
	var (
		o                    Order
		status               string
		createdAt, updatedAt sql.NullString
	)
	err := row.Scan(&o.ID, &o.UserID, &o.AddressID, &o.PaymentMethod,
		&o.ShippingCost, &o.Total, &status, &createdAt, &updatedAt)
	if err != nil {
		return Order{}, err
	}
	o.Status = Status(status)
	o.CreatedAt = createdAt.String
	o.UpdatedAt = updatedAt.String
	return o, nil
}
