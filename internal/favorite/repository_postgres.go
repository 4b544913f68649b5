package favorite

import (
	"database/sql"

	"github.com/lib/pq"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	listFavoritesQuery  = `SELECT user_id, product_id FROM favorites WHERE user_id = $1 ORDER BY product_id`
	insertFavoriteQuery = `INSERT INTO favorites (user_id, product_id) VALUES ($1, $2)`
	deleteFavoriteQuery = `DELETE FROM favorites WHERE user_id = $1 AND product_id = $2`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ListByUser(userID string) ([]Favorite, error) {
	rows, err := r.db.Query(listFavoritesQuery, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Favorite, 0)
	for rows.Next() {
		var f Favorite
		if err := rows.Scan(&f.UserID, &f.ProductID); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Create(f Favorite) error {
	if _, err := r.db.Exec(insertFavoriteQuery, f.UserID, f.ProductID); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *PostgresRepository) Delete(userID, productID string) error {
	res, err := r.db.Exec(deleteFavoriteQuery, userID, productID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
