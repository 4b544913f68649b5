package cart

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	getCartByUserQuery = `
		SELECT cart_id, user_id, total, created_at, updated_at
		FROM carts
		WHERE user_id = $1
	`
	insertCartQuery = `
		INSERT INTO carts (cart_id, user_id, total, created_at, updated_at)
		VALUES ($1, $2, 0, $3, $4)
	`
	listItemsQuery = `
		SELECT item_id, cart_id, product_id, quantity, price
		FROM cart_items
		WHERE cart_id = $1
		ORDER BY item_id
	`
	getItemQuery = `
		SELECT item_id, cart_id, product_id, quantity, price
		FROM cart_items
		WHERE item_id = $1 AND cart_id = $2
	`
	getItemByProductQuery = `
		SELECT item_id, cart_id, product_id, quantity, price
		FROM cart_items
		WHERE cart_id = $1 AND product_id = $2
	`
	insertItemQuery     = `INSERT INTO cart_items (item_id, cart_id, product_id, quantity, price) VALUES ($1, $2, $3, $4, $5)`
	updateQuantityQuery = `UPDATE cart_items SET quantity = $1 WHERE item_id = $2`
	updatePriceQuery    = `UPDATE cart_items SET price = $1 WHERE item_id = $2`
	deleteItemQuery     = `DELETE FROM cart_items WHERE item_id = $1`
	clearItemsQuery     = `DELETE FROM cart_items WHERE cart_id = $1`
	setTotalQuery       = `UPDATE carts SET total = $1, updated_at = $2 WHERE cart_id = $3`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetByUser(userID string) (Cart, error) {
	var (
		c                    Cart
		createdAt, updatedAt sql.NullString
	)
	err := r.db.QueryRow(getCartByUserQuery, userID).Scan(&c.ID, &c.UserID, &c.Total, &createdAt, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return Cart{}, ErrCartNotFound
		}
		return Cart{}, err
	}
	c.CreatedAt = createdAt.String
	c.UpdatedAt = updatedAt.String

	rows, err := r.db.Query(listItemsQuery, c.ID)
	if err != nil {
		return Cart{}, err
	}
	defer rows.Close()

	c.Items = make([]Item, 0)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return Cart{}, err
		}
		c.Items = append(c.Items, it)
	}
	return c, rows.Err()
}

func (r *PostgresRepository) Create(c Cart) (Cart, error) {
	if _, err := r.db.Exec(insertCartQuery, c.ID, c.UserID, c.CreatedAt, c.UpdatedAt); err != nil {
		return Cart{}, err
	}
	c.Total = decimal.Zero
	c.Items = []Item{}
	return c, nil
}

func (r *PostgresRepository) GetItem(cartID, itemID string) (Item, error) {
	it, err := scanItem(r.db.QueryRow(getItemQuery, itemID, cartID))
	if err != nil {
		if err == sql.ErrNoRows {
			return Item{}, ErrItemNotFound
		}
		return Item{}, err
	}
	return it, nil
}

func (r *PostgresRepository) GetItemByProduct(cartID, productID string) (Item, error) {
	it, err := scanItem(r.db.QueryRow(getItemByProductQuery, cartID, productID))
	if err != nil {
		if err == sql.ErrNoRows {
			return Item{}, ErrItemNotFound
		}
		return Item{}, err
	}
	return it, nil
}

func (r *PostgresRepository) InsertItem(it Item) error {
	_, err := r.db.Exec(insertItemQuery, it.ID, it.CartID, it.ProductID, it.Quantity, it.Price)
	return err
}

func (r *PostgresRepository) UpdateItemQuantity(itemID string, qty int) error {
	return r.execOnItem(updateQuantityQuery, qty, itemID)
}

func (r *PostgresRepository) UpdateItemPrice(itemID string, price decimal.Decimal) error {
	return r.execOnItem(updatePriceQuery, price, itemID)
}

func (r *PostgresRepository) DeleteItem(itemID string) error {
	res, err := r.db.Exec(deleteItemQuery, itemID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *PostgresRepository) ClearItems(cartID string) error {
	_, err := r.db.Exec(clearItemsQuery, cartID)
	return err
}

func (r *PostgresRepository) SetTotal(cartID string, total decimal.Decimal, updatedAt string) error {
	res, err := r.db.Exec(setTotalQuery, total, updatedAt, cartID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrCartNotFound
	}
	return nil
}

func (r *PostgresRepository) execOnItem(query string, value any, itemID string) error {
	res, err := r.db.Exec(query, value, itemID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrItemNotFound
	}
	return nil
}

func scanItem(row interface{ Scan(dest ...any) error }) (Item, error) {
	var it Item
	if err := row.Scan(&it.ID, &it.CartID, &it.ProductID, &it.Quantity, &it.Price); err != nil {
		return Item{}, err
	}
	return it, nil
}
