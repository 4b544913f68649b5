package product

import (
	"database/sql"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	listProductsQuery = `
		SELECT product_id, title, price, discounted_price, stock, category, featured, created_at, updated_at
		FROM products
		ORDER BY created_at DESC
	`
	listFeaturedQuery = `
		SELECT product_id, title, price, discounted_price, stock, category, featured, created_at, updated_at
		FROM products
		WHERE featured
		ORDER BY created_at DESC
	`
	getProductQuery = `
		SELECT product_id, title, price, discounted_price, stock, category, featured, created_at, updated_at
		FROM products
		WHERE product_id = $1
	`
	listByIDsQuery = `
		SELECT product_id, title, price, discounted_price, stock, category, featured, created_at, updated_at
		FROM products
		WHERE product_id = ANY($1::text[])
	`
	insertProductQuery = `
		INSERT INTO products (product_id, title, price, discounted_price, stock, category, featured, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	updateProductQuery = `
		UPDATE products
		SET title = $1,
			price = $2,
			discounted_price = $3,
			stock = $4,
			category = $5,
			featured = $6,
			updated_at = $7
		WHERE product_id = $8
	`
	deleteProductQuery = `DELETE FROM products WHERE product_id = $1`
	insertImageQuery   = `INSERT INTO product_images (image_id, product_id, url, position) VALUES ($1, $2, $3, $4)`
	deleteImagesQuery  = `DELETE FROM product_images WHERE product_id = $1`
	listImagesQuery    = `
		SELECT image_id, product_id, url, position
		FROM product_images
		WHERE product_id = ANY($1::text[])
		ORDER BY position
	`
	adjustStockQuery = `
		UPDATE products
		SET stock = stock + $1
		WHERE product_id = $2 AND stock + $1 >= 0
	`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List() ([]Product, error) {
	return r.queryMany(listProductsQuery)
}

func (r *PostgresRepository) ListFeatured() ([]Product, error) {
	return r.queryMany(listFeaturedQuery)
}

func (r *PostgresRepository) GetByID(id string) (Product, error) {
	p, err := scanProduct(r.db.QueryRow(getProductQuery, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return Product{}, ErrNotFound
		}
		return Product{}, err
	}
	if err := r.attachImages([]Product{p}); err != nil {
		return Product{}, err
	}
	return p, nil
}

func (r *PostgresRepository) ListByIDs(ids []string) ([]Product, error) {
	if len(ids) == 0 {
		return []Product{}, nil
	}
	return r.queryMany(listByIDsQuery, pq.Array(ids))
}

func (r *PostgresRepository) Create(p Product) (Product, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return Product{}, err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(insertProductQuery,
		p.ID, p.Title, p.Price, decimalPtr(p.DiscountedPrice), p.Stock, p.Category, p.Featured, p.CreatedAt, p.UpdatedAt); err != nil {
		return Product{}, err
	}
	for _, img := range p.Images {
		if _, err := tx.Exec(insertImageQuery, img.ID, p.ID, img.URL, img.Position); err != nil {
			return Product{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return Product{}, err
	}
	return p, nil
}

func (r *PostgresRepository) Update(id string, p Product) (Product, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return Product{}, err
	}
	defer tx.Rollback()

	res, err := tx.Exec(updateProductQuery,
		p.Title, p.Price, decimalPtr(p.DiscountedPrice), p.Stock, p.Category, p.Featured, p.UpdatedAt, id)
	if err != nil {
		return Product{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Product{}, ErrNotFound
	}

	if p.Images != nil {
		if _, err := tx.Exec(deleteImagesQuery, id); err != nil {
			return Product{}, err
		}
		for _, img := range p.Images {
			if _, err := tx.Exec(insertImageQuery, img.ID, id, img.URL, img.Position); err != nil {
				return Product{}, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return Product{}, err
	}
	p.ID = id
	return p, nil
}

func (r *PostgresRepository) Delete(id string) error {
	res, err := r.db.Exec(deleteProductQuery, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) AdjustStock(id string, delta int) error {
	res, err := r.db.Exec(adjustStockQuery, delta, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// either the product is missing or the guard refused a negative
		// stock; disambiguate for the caller
		if _, err := r.GetByID(id); err != nil {
			return err
		}
		return ErrStockExhausted
	}
	return nil
}

func (r *PostgresRepository) queryMany(query string, args ...any) ([]Product, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachImages(out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresRepository) attachImages(products []Product) error {
	if len(products) == 0 {
		return nil
	}
	ids := make([]string, 0, len(products))
	index := make(map[string]int, len(products))
	for i, p := range products {
		ids = append(ids, p.ID)
		index[p.ID] = i
	}

	rows, err := r.db.Query(listImagesQuery, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var img Image
		var productID string
		if err := rows.Scan(&img.ID, &productID, &img.URL, &img.Position); err != nil {
			return err
		}
		if i, ok := index[productID]; ok {
			products[i].Images = append(products[i].Images, img)
		}
	}
	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (Product, error) {
	var (
		p                    Product
		discounted           decimal.NullDecimal
		category             sql.NullString
		createdAt, updatedAt sql.NullString
	)
	if err := row.Scan(&p.ID, &p.Title, &p.Price, &discounted, &p.Stock, &category, &p.Featured, &createdAt, &updatedAt); err != nil {
		return Product{}, err
	}
	if discounted.Valid {
		d := discounted.Decimal
		p.DiscountedPrice = &d
	}
	p.Category = category.String
	p.CreatedAt = createdAt.String
	p.UpdatedAt = updatedAt.String
	return p, nil
}

func decimalPtr(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return *d
}
